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

// mergerCmd holds the flags for the 'merger' subcommand.
type mergerCmd struct {
	date     string
	security string
	into     string
	ratio    string
	cash     string
	price    string
	currency string
}

func (*mergerCmd) Name() string     { return "merger" }
func (*mergerCmd) Synopsis() string { return "convert a position into another security" }
func (*mergerCmd) Usage() string {
	return `cbt merger -s <security> -into <security> -ratio <ratio> [-cash <amount>] [-p <price>] [-d <date>]

  Converts every open lot into the new security. In a tax-free reorganization
  the basis carries forward and the original purchase dates are preserved.
  With -cash (cash boot per share), gain is recognized per lot up to the
  lesser of the cash received and the built-in gain; -p must then give the
  fair market value of one new share at the effective date.
`
}

func (c *mergerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Effective date")
	f.StringVar(&c.security, "s", "", "Acquired security symbol")
	f.StringVar(&c.into, "into", "", "Acquiring security symbol")
	f.StringVar(&c.ratio, "ratio", "", "New shares per old share")
	f.StringVar(&c.cash, "cash", "0", "Cash boot per old share")
	f.StringVar(&c.price, "p", "0", "Fair market value of one new share")
	f.StringVar(&c.currency, "c", "USD", "Currency of monetary amounts")
}

func (c *mergerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.into == "" || c.ratio == "" {
		fmt.Fprintln(os.Stderr, "-s, -into and -ratio are required")
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
	cash, err := parseMoney(c.cash, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

	result, err := replay.Investment(c.security).MergeInto(replay.Investment(c.into), taxlot.MergerTerms{
		NewSecurityID:   c.into,
		ConversionRatio: ratio,
		CashPerShare:    cash,
		NewSharePrice:   price,
		EffectiveDate:   day,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if status := AppendTransaction(taxlot.NewMerger(day, c.security, c.into, ratio, cash, price)); status != subcommands.ExitSuccess {
		return status
	}

	if !result.TotalGain.IsZero() {
		printMarkdown(renderer.GainsMarkdown(fmt.Sprintf("%s merger boot gain on %s", c.security, day), []taxlot.GainLossResult{result}))
	}
	return subcommands.ExitSuccess
}
