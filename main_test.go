package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sterling/config"
	"sterling/storage"
)

func isolateEnv(t *testing.T, backendURL string) string {
	t.Helper()
	home := t.TempDir()
	dataDir := filepath.Join(home, "data")
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(config.EnvBackendURL, backendURL)
	t.Setenv(config.EnvDataDir, dataDir)
	t.Setenv(config.EnvDebug, "")
	return dataDir
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"version"}, 0},
		{"help", []string{"--help"}, 0},
		{"unknown command", []string{"appraise"}, 2},
		{"ask without query", []string{"ask"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, run(tt.args))
		})
	}
}

func TestRun_AskWithoutBackend(t *testing.T) {
	isolateEnv(t, "")
	require.Equal(t, 1, run([]string{"ask", "condo"}))
}

func TestRun_AskFailureClosesLedger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	dataDir := isolateEnv(t, srv.URL)

	require.Equal(t, 1, run([]string{"ask", "condo in Miami"}))

	ledger, err := storage.OpenReceiptLedger(filepath.Join(dataDir, "receipts.db"))
	require.NoError(t, err)
	defer ledger.Close()
	receipts, err := ledger.List(0)
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestRun_Receipts(t *testing.T) {
	isolateEnv(t, "http://valuation.test:8000")
	require.Equal(t, 0, run([]string{"receipts"}))
}
