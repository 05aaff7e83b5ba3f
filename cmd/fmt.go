package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the journal file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cbt fmt

  Validates and formats the journal file. This command reads all transactions,
  replays them through the engine to catch inconsistencies, sorts them by
  date, and writes them back in a canonical JSONL format.
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	txs, err := LoadJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading journal %q: %v\n", *journalFile, err)
		return subcommands.ExitFailure
	}
	if _, err := ReplayJournal(txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: journal does not replay cleanly: %v\n", err)
		return subcommands.ExitFailure
	}

	out, err := os.Create(*journalFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rewriting journal %q: %v\n", *journalFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	if err := taxlot.EncodeJournal(out, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing journal %q: %v\n", *journalFile, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %d transactions in %s.\n", len(txs), *journalFile)
	return subcommands.ExitSuccess
}
