package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openLedger(t *testing.T) *ReceiptLedger {
	t.Helper()
	ledger, err := OpenReceiptLedger(filepath.Join(t.TempDir(), "receipts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestReceiptLedger_RecordAndLoad(t *testing.T) {
	ledger := openLedger(t)

	stored, err := ledger.Record(Receipt{
		Query:         "3 bed 2 bath house in 90210",
		Justification: "Estimated value: $500,000",
		BackendUUID:   "8d3c1f0e-2c1b-4a52-9a55-1d2b7e1a0f00",
		PDFHash:       "abc123",
		TxHash:        "0xdeadbeef",
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	require.False(t, stored.CreatedAt.IsZero())

	loaded, err := ledger.Load(stored.ID)
	require.NoError(t, err)
	require.Equal(t, stored.Query, loaded.Query)
	require.Equal(t, "abc123", loaded.PDFHash)
	require.Equal(t, "0xdeadbeef", loaded.TxHash)
	require.Empty(t, loaded.PDFPath)
	require.WithinDuration(t, stored.CreatedAt, loaded.CreatedAt, time.Second)

	_, err = ledger.Load("missing")
	require.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestReceiptLedger_ListNewestFirst(t *testing.T) {
	ledger := openLedger(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, q := range []string{"condo in Austin", "ranch in Boise", "loft in Chicago"} {
		_, err := ledger.Record(Receipt{Query: q, Justification: "j", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	all, err := ledger.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "loft in Chicago", all[0].Query)
	require.Equal(t, "condo in Austin", all[2].Query)

	limited, err := ledger.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	found, err := ledger.Search("boise")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "ranch in Boise", found[0].Query)
}

func TestReceiptLedger_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.db")

	ledger, err := OpenReceiptLedger(path)
	require.NoError(t, err)
	stored, err := ledger.Record(Receipt{Query: "q", Justification: "j", PDFPath: "/tmp/r.pdf"})
	require.NoError(t, err)
	require.NoError(t, ledger.Close())

	ledger, err = OpenReceiptLedger(path)
	require.NoError(t, err)
	defer ledger.Close()

	loaded, err := ledger.Load(stored.ID)
	require.NoError(t, err)
	require.Equal(t, "/tmp/r.pdf", loaded.PDFPath)
}

func TestReports_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	reports, err := NewReports(dir)
	require.NoError(t, err)
	require.DirExists(t, dir)

	path, err := reports.Save("8d3c/1f0e", []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.True(t, strings.HasPrefix(filepath.Base(path), "valuation-8d3c-1f0e-"))
	require.True(t, strings.HasSuffix(path, ".pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(data))

	_, err = reports.Save("empty", nil)
	require.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "abc"},
		{"a/b:c", "a-b-c"},
		{"..hidden..", "hidden"},
		{"", "report"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}

func TestReceiptLedger_Search(t *testing.T) {
	ledger := openLedger(t)

	for _, q := range []string{"condo in Miami", "3 bed 2 bath house in 90210", "ranch near Austin"} {
		_, err := ledger.Record(Receipt{Query: q, Justification: "ok"})
		require.NoError(t, err)
	}

	found, err := ledger.Search("90210")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "3 bed 2 bath house in 90210", found[0].Query)

	all, err := ledger.Search("")
	require.NoError(t, err)
	require.Len(t, all, 3)

	none, err := ledger.Search("zzzz")
	require.NoError(t, err)
	require.Empty(t, none)
}
