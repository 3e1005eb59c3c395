package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sterling/cli"
	"sterling/config"
	"sterling/estimate"
	appmodel "sterling/model"
	"sterling/storage"
	"sterling/ui"
)

const Version = "v0.01.00"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup always happens.
func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, cli.Usage)
		return 2
	}

	switch cmd {
	case cli.CmdVersion:
		fmt.Println("sterling", Version)
		return 0
	case cli.CmdHelp:
		fmt.Print(cli.Usage)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		if cmd == cli.CmdChat {
			showConfigError(err)
		} else {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		}
		return 1
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	client, err := estimate.NewClient(cfg.BackendURL, estimate.WithUserAgent("sterling/"+Version))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	ledger, reports := openStorage(cfg)
	if ledger != nil {
		defer func() {
			if err := ledger.Close(); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("Warning: failed to close receipt ledger: %v", err)
			}
		}()
	}

	switch cmd {
	case cli.CmdAsk:
		if err := cli.Ask(cfg, client, ledger, reports, args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case cli.CmdReceipts:
		if err := cli.Receipts(ledger, args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	dataModel := appmodel.NewModel(cfg, client, ledger, reports, Version)
	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running sterling: %v\n", err)
		return 1
	}
	return 0
}

// openStorage opens the optional receipt ledger and report directory. A
// failure disables the feature instead of blocking the chat.
func openStorage(cfg *config.Config) (*storage.ReceiptLedger, *storage.Reports) {
	var (
		ledger  *storage.ReceiptLedger
		reports *storage.Reports
		err     error
	)

	if cfg.Reports.Ledger {
		ledger, err = storage.OpenReceiptLedger(cfg.LedgerPath())
		if err != nil {
			ledger = nil
			fmt.Fprintf(os.Stderr, "Warning: receipts disabled: %v\n", err)
			if config.DebugLog != nil {
				config.DebugLog.Printf("Failed to open receipt ledger: %v", err)
			}
		}
	}

	if cfg.Reports.SavePDF {
		reports, err = storage.NewReports(cfg.ReportsDir())
		if err != nil {
			reports = nil
			fmt.Fprintf(os.Stderr, "Warning: PDF reports will not be saved: %v\n", err)
			if config.DebugLog != nil {
				config.DebugLog.Printf("Failed to create reports directory: %v", err)
			}
		}
	}

	return ledger, reports
}

func showConfigError(err error) {
	msg := err.Error()
	if errors.Is(err, config.ErrMissingBackendURL) {
		msg = fmt.Sprintf("No valuation backend is configured.\n\n"+
			"Set %s or backend_url in\n%s\n\n"+
			"Example: %s=http://localhost:8000",
			config.EnvBackendURL, config.GetSettingsFilePath(), config.EnvBackendURL)
	}

	p := tea.NewProgram(
		ui.NewErrorModal("Configuration Error", msg),
		tea.WithAltScreen(),
	)
	if _, runErr := p.Run(); runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}
}
