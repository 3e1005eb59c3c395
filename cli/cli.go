// Package cli holds the non-interactive entry points: a one-shot estimate
// and a listing of recorded receipts.
package cli

import (
	"fmt"
	"strings"
)

type Command int

const (
	CmdChat Command = iota
	CmdAsk
	CmdReceipts
	CmdVersion
	CmdHelp
)

// Args are the parsed command line options.
type Args struct {
	Query string
	Raw   bool // ask: print the justification without markdown rendering
	Limit int  // receipts: newest N
}

const defaultReceiptLimit = 20

const Usage = `Usage: sterling [command]

Commands:
  (none), chat           Start the interactive chat
  ask [--raw] <query>    Request one estimate and print it
  receipts [-n N] [text] List recorded estimates, fuzzy-filtered by text
  version                Print the version
  help                   Show this help

Environment:
  STERLING_BACKEND_URL   Valuation backend base URL (required)
  STERLING_DATA_DIR      Data directory override
  STERLING_DEBUG=1       Write a debug log to <data_dir>/debug.log
`

// Parse interprets args (without the program name).
func Parse(args []string) (Command, Args, error) {
	parsed := Args{Limit: defaultReceiptLimit}
	if len(args) == 0 {
		return CmdChat, parsed, nil
	}

	switch args[0] {
	case "chat":
		if len(args) > 1 {
			return CmdChat, parsed, fmt.Errorf("chat: unexpected argument %q", args[1])
		}
		return CmdChat, parsed, nil

	case "ask":
		var words []string
		for _, a := range args[1:] {
			switch a {
			case "--raw", "-r":
				parsed.Raw = true
			default:
				words = append(words, a)
			}
		}
		parsed.Query = strings.Join(words, " ")
		if strings.TrimSpace(parsed.Query) == "" {
			return CmdAsk, parsed, fmt.Errorf("ask: missing query")
		}
		return CmdAsk, parsed, nil

	case "receipts":
		rest := args[1:]
		var words []string
		for i := 0; i < len(rest); i++ {
			switch rest[i] {
			case "-n", "--limit":
				if i+1 >= len(rest) {
					return CmdReceipts, parsed, fmt.Errorf("receipts: %s needs a number", rest[i])
				}
				var n int
				if _, err := fmt.Sscanf(rest[i+1], "%d", &n); err != nil || n <= 0 {
					return CmdReceipts, parsed, fmt.Errorf("receipts: invalid limit %q", rest[i+1])
				}
				parsed.Limit = n
				i++
			default:
				words = append(words, rest[i])
			}
		}
		parsed.Query = strings.Join(words, " ")
		return CmdReceipts, parsed, nil

	case "version", "--version", "-v":
		return CmdVersion, parsed, nil

	case "help", "--help", "-h":
		return CmdHelp, parsed, nil
	}

	return CmdHelp, parsed, fmt.Errorf("unknown command %q", args[0])
}
