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

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	date     string
	security string
	price    string
	currency string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "unrealized gain preview of every open tax lot" }
func (*lotsCmd) Usage() string {
	return `cbt lots -s <security> -p <price> [-d <date>]

  Shows every open tax lot with its unrealized gain at the given price, its
  holding period classification, and the days remaining until long-term
  treatment.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Valuation date")
	f.StringVar(&c.security, "s", "", "Security symbol")
	f.StringVar(&c.price, "p", "", "Current price per share")
	f.StringVar(&c.currency, "c", "USD", "Currency of monetary amounts")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.price == "" {
		fmt.Fprintln(os.Stderr, "-s and -p are required")
		return subcommands.ExitUsageError
	}
	day, err := taxlot.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := parseMoney(c.price, c.currency)
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

	previews := replay.Investment(c.security).Previews(price, day)
	printMarkdown(renderer.LotsMarkdown(c.security, day, price, previews))
	return subcommands.ExitSuccess
}
