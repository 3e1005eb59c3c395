package estimate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient("")
	require.ErrorIs(t, err, ErrMissingBaseURL)

	_, err = NewClient("not a url")
	require.Error(t, err)

	_, err = NewClient("ftp://example.com")
	require.Error(t, err)

	c, err := NewClient("https://api.example.com/")
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/estimate", c.Endpoint())

	c, err = NewClient("http://localhost:8000/api")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/api/estimate", c.Endpoint())
}

func TestEstimate_RequestShape(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/estimate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"text":"3 bed 2 bath house in 90210"}`, string(raw))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"justification":"Estimated value: $500,000"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	res, err := c.Estimate(context.Background(), "3 bed 2 bath house in 90210")
	require.NoError(t, err)
	require.Equal(t, "Estimated value: $500,000", res.Justification)
	require.Empty(t, res.UUID)
	require.False(t, res.HasPDF())
	require.EqualValues(t, 1, calls.Load())
}

func TestEstimate_OptionalFields(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake report")
	body, err := json.Marshal(map[string]any{
		"message":       "ok",
		"justification": "## Valuation\n\n- $450,000",
		"uuid":          "8d3c1f0e-2c1b-4a52-9a55-1d2b7e1a0f00",
		"pdf_hash":      "abc123",
		"tx_hash":       "0xdeadbeef",
		"pdf_base64":    base64.StdEncoding.EncodeToString(pdf),
		"pdf_url":       "https://files.example.com/report.pdf",
		"aggregated":    map[string]any{"average": 450000},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	res, err := c.Estimate(context.Background(), "query")
	require.NoError(t, err)
	require.Equal(t, "ok", res.Message)
	require.Equal(t, "8d3c1f0e-2c1b-4a52-9a55-1d2b7e1a0f00", res.UUID)
	require.Equal(t, "abc123", res.PDFHash)
	require.Equal(t, "0xdeadbeef", res.TxHash)
	require.Equal(t, "https://files.example.com/report.pdf", res.PDFURL)
	require.True(t, res.HasPDF())

	decoded, err := res.PDF()
	require.NoError(t, err)
	require.Equal(t, pdf, decoded)
}

func TestEstimate_MistypedOptionalFieldsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"justification":"fine","uuid":42,"pdf_hash":null,"tx_hash":{"x":1}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	res, err := c.Estimate(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, "fine", res.Justification)
	require.Empty(t, res.UUID)
	require.Empty(t, res.PDFHash)
	require.Empty(t, res.TxHash)
}

func TestEstimate_ServerErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"internal error", http.StatusInternalServerError, `{"detail":"model offline"}`},
		{"bad request", http.StatusBadRequest, `{"detail":"text required"}`},
		{"not json", http.StatusOK, `<html>gateway</html>`},
		{"missing justification", http.StatusOK, `{"message":"ok"}`},
		{"justification not a string", http.StatusOK, `{"justification":123}`},
		{"array body", http.StatusOK, `["justification"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL)
			require.NoError(t, err)

			_, err = c.Estimate(context.Background(), "q")
			require.Error(t, err)
			require.True(t, IsServerError(err))
			require.False(t, IsNetworkError(err))

			var se *ServerError
			require.True(t, errors.As(err, &se))
			require.Equal(t, tt.status, se.HTTPStatusCode())
		})
	}
}

func TestEstimate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)

	_, err = c.Estimate(context.Background(), "q")
	require.Error(t, err)
	require.True(t, IsNetworkError(err))
	require.False(t, IsServerError(err))
}

func TestEstimate_CancelledContextIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"justification":"late"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Estimate(ctx, "q")
	require.True(t, IsNetworkError(err))
	require.ErrorIs(t, err, context.Canceled)
}

func TestEstimate_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Estimate(context.Background(), "q")
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestResultPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7\x00\xff binary")

	tests := []struct {
		name    string
		payload string
	}{
		{"std", base64.StdEncoding.EncodeToString(pdf)},
		{"raw url", base64.RawURLEncoding.EncodeToString(pdf)},
		{"data url", "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&Result{PDFBase64: tt.payload}).PDF()
			require.NoError(t, err)
			require.Equal(t, pdf, got)
		})
	}

	_, err := (&Result{}).PDF()
	require.ErrorIs(t, err, ErrNoPDF)

	_, err = (&Result{PDFBase64: "!!!"}).PDF()
	require.Error(t, err)
}
