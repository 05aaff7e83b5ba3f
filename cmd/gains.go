package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/etnz/taxlot/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	start    string
	end      string
	security string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized short/long-term gain totals" }
func (*gainsCmd) Usage() string {
	return `cbt gains [-s <security>] [-from <date>] [-to <date>]

  Replays the journal and totals the realized gains and losses, bucketed
  short- and long-term, in the shape a Schedule D / Form 8949 summary needs.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "from", "", "Start of the reporting period (inclusive)")
	f.StringVar(&c.end, "to", "", "End of the reporting period (inclusive)")
	f.StringVar(&c.security, "s", "", "Restrict to one security")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from, to taxlot.Date
	var err error
	if c.start != "" {
		if from, err = taxlot.ParseDate(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.end != "" {
		if to, err = taxlot.ParseDate(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
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

	var results []taxlot.GainLossResult
	for _, sale := range replay.Sales {
		if c.security != "" && sale.Symbol != c.security {
			continue
		}
		if !from.IsZero() && sale.Date.Before(from) {
			continue
		}
		if !to.IsZero() && sale.Date.After(to) {
			continue
		}
		results = append(results, sale.Result)
	}

	title := "all securities"
	if c.security != "" {
		title = c.security
	}
	printMarkdown(renderer.GainsMarkdown(title, results))
	return subcommands.ExitSuccess
}
