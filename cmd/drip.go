package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

// dripCmd holds the flags for the 'drip' subcommand.
type dripCmd struct {
	date     string
	security string
	quantity string
	price    string
	currency string
}

func (*dripCmd) Name() string     { return "drip" }
func (*dripCmd) Synopsis() string { return "record a dividend reinvestment as a new tax lot" }
func (*dripCmd) Usage() string {
	return `cbt drip -s <security> -q <quantity> -p <price> [-d <date>]

  Records a dividend paid out as shares. The reinvestment always opens a new,
  separate tax lot with its own purchase date and basis.
`
}

func (c *dripCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Reinvestment date")
	f.StringVar(&c.security, "s", "", "Security symbol")
	f.StringVar(&c.quantity, "q", "", "Number of shares received")
	f.StringVar(&c.price, "p", "", "Reinvestment price per share")
	f.StringVar(&c.currency, "c", "USD", "Currency of monetary amounts")
}

func (c *dripCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity == "" || c.price == "" {
		fmt.Fprintln(os.Stderr, "-s, -q and -p are required")
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
	if _, err := replay.Investment(c.security).RecordDividendReinvestment(day, quantity, price); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return AppendTransaction(taxlot.NewDividendReinvestment(day, c.security, quantity, price, ""))
}
