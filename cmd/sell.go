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

// sellCmd holds the flags for the 'sell' subcommand.
type sellCmd struct {
	date     string
	security string
	quantity string
	proceeds string
	currency string
	method   string
	lots     string
	dryRun   bool
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record the sale of shares against existing tax lots" }
func (*sellCmd) Usage() string {
	return `cbt sell -s <security> -q <quantity> -proceeds <amount> [-method <method>] [-lots seq:qty,...] [-d <date>] [-n]

  Allocates the sold shares against tax lots per the chosen cost basis method
  and realizes the short/long-term gain or loss. With -n (dry run) the sale is
  previewed, including a wash-sale warning, and nothing is recorded.

  For -method specific-id, -lots designates exactly which lots are sold, by
  lot sequence number as shown by 'cbt lots'.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Sale date")
	f.StringVar(&c.security, "s", "", "Security symbol")
	f.StringVar(&c.quantity, "q", "", "Number of shares to sell")
	f.StringVar(&c.proceeds, "proceeds", "", "Total sale proceeds, net of fees")
	f.StringVar(&c.currency, "c", "USD", "Currency of monetary amounts")
	f.StringVar(&c.method, "method", "fifo", "Cost basis method (fifo, lifo, average, specific-id)")
	f.StringVar(&c.lots, "lots", "", "Specific-ID designation, e.g. 0:10,2:5")
	f.BoolVar(&c.dryRun, "n", false, "Preview the sale without recording it")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity == "" || c.proceeds == "" {
		fmt.Fprintln(os.Stderr, "-s, -q and -proceeds are required")
		return subcommands.ExitUsageError
	}
	day, err := taxlot.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	quantity, err := parseQuantity(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	proceeds, err := parseMoney(c.proceeds, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	method, err := taxlot.ParseCostBasisMethod(c.method)
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
	inv := replay.Investment(c.security)

	var specific taxlot.SpecificSelection
	if method == taxlot.SpecificID {
		specific, err = ParseDesignation(inv, c.lots)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	if c.dryRun {
		preview, err := inv.PreviewSale(day, quantity, proceeds, method, specific)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.SalePreviewMarkdown(c.security, day, preview))
		return subcommands.ExitSuccess
	}

	result, err := inv.ConfirmSale(day, quantity, proceeds, method, specific)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tx := taxlot.NewSell(day, c.security, quantity, proceeds, method)
	tx.SpecificLots = c.lots
	if status := AppendTransaction(tx); status != subcommands.ExitSuccess {
		return status
	}

	printMarkdown(renderer.GainsMarkdown(fmt.Sprintf("%s sale on %s", c.security, day), []taxlot.GainLossResult{result}))
	return subcommands.ExitSuccess
}
