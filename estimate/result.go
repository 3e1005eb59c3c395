package estimate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNoPDF is returned by Result.PDF when the backend did not include a report.
var ErrNoPDF = errors.New("estimate: response has no PDF report")

// Result is the decoded /estimate response. Only Justification is guaranteed;
// the backend has shipped more than one response shape, so every other field
// is best-effort and left empty when missing or of the wrong type.
type Result struct {
	Justification string
	Message       string
	UUID          string
	PDFHash       string
	TxHash        string
	PDFBase64     string
	PDFURL        string
}

// HasPDF reports whether the response carried a PDF, inline or by URL.
func (r *Result) HasPDF() bool {
	return r != nil && (r.PDFBase64 != "" || r.PDFURL != "")
}

// PDF decodes the inline report. Both standard and URL-safe base64 are
// accepted, with or without a data URL prefix.
func (r *Result) PDF() ([]byte, error) {
	if r == nil || r.PDFBase64 == "" {
		return nil, ErrNoPDF
	}

	payload := strings.TrimSpace(r.PDFBase64)
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("estimate: decode PDF: %w", lastErr)
}

// decodeResult extracts a Result from a 2xx body.
func decodeResult(body []byte) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", errMalformedResponse)
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: body is not a JSON object", errMalformedResponse)
	}

	justification := doc.Get("justification")
	if justification.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing justification", errMalformedResponse)
	}

	return &Result{
		Justification: justification.String(),
		Message:       optionalString(doc, "message"),
		UUID:          optionalString(doc, "uuid"),
		PDFHash:       optionalString(doc, "pdf_hash"),
		TxHash:        optionalString(doc, "tx_hash"),
		PDFBase64:     optionalString(doc, "pdf_base64"),
		PDFURL:        optionalString(doc, "pdf_url"),
	}, nil
}

// optionalString returns the field when it is a JSON string, else "".
func optionalString(doc gjson.Result, path string) string {
	if v := doc.Get(path); v.Type == gjson.String {
		return v.String()
	}
	return ""
}
