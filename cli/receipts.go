package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sterling/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const queryColumnWidth = 48

// Receipts prints recorded estimates, newest first, or the fuzzy matches
// for args.Query.
func Receipts(ledger *storage.ReceiptLedger, args Args, out io.Writer) error {
	if ledger == nil {
		return fmt.Errorf("receipts: the ledger is disabled (reports.ledger = false)")
	}

	var (
		receipts []storage.Receipt
		err      error
	)
	if strings.TrimSpace(args.Query) != "" {
		receipts, err = ledger.Search(args.Query)
		if len(receipts) > args.Limit {
			receipts = receipts[:args.Limit]
		}
	} else {
		receipts, err = ledger.List(args.Limit)
	}
	if err != nil {
		return err
	}

	if len(receipts) == 0 {
		fmt.Fprintln(out, "No receipts recorded yet.")
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-16s  %-*s  %s", "DATE", queryColumnWidth, "QUERY", "REPORT")))
	for _, r := range receipts {
		query := strings.Join(strings.Fields(r.Query), " ")
		query = runewidth.FillRight(runewidth.Truncate(query, queryColumnWidth, "…"), queryColumnWidth)

		report := r.PDFPath
		if report == "" {
			report = r.PDFURL
		}
		if report == "" {
			report = "-"
		}

		fmt.Fprintf(out, "%s  %s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), query, report)
		if r.TxHash != "" {
			fmt.Fprintln(out, dimStyle.Render("  tx "+r.TxHash))
		}
	}
	return nil
}
