package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

// splitCmd holds the flags for the 'split' subcommand.
type splitCmd struct {
	date     string
	security string
	ratio    string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "apply a stock split to every lot of a security" }
func (*splitCmd) Usage() string {
	return `cbt split -s <security> -ratio <ratio> [-d <date>]

  Applies a stock split: share counts multiply by the ratio while the cost
  basis is unchanged. A ratio below one is a reverse split (e.g. 0.1 for a
  1-for-10 consolidation).
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Effective date")
	f.StringVar(&c.security, "s", "", "Security symbol")
	f.StringVar(&c.ratio, "ratio", "", "New shares per old share, e.g. 2 for a 2-for-1 split")
}

func (c *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.ratio == "" {
		fmt.Fprintln(os.Stderr, "-s and -ratio are required")
		return subcommands.ExitUsageError
	}
	day, err := taxlot.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	ratio, err := parseQuantity(c.ratio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	txs, err := LoadJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading journal %q: %v\n", *journalFile, err)
		return subcommands.ExitFailure
	}
	replay, err := ReplayJournal(txs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying journal: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := replay.Investment(c.security).Split(day, ratio); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return AppendTransaction(taxlot.NewSplit(day, c.security, ratio))
}
