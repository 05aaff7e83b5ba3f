package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

// buyCmd holds the flags for the 'buy' subcommand.
type buyCmd struct {
	date     string
	security string
	quantity string
	price    string
	fees     string
	currency string
	fund     bool
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record the purchase of shares, opening a new tax lot" }
func (*buyCmd) Usage() string {
	return `cbt buy -s <security> -q <quantity> -p <price> [-fees <amount>] [-d <date>] [-fund]

  Records a purchase. Each purchase opens a new, separate tax lot whose basis
  is the share cost plus fees.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", taxlot.Today().String(), "Purchase date")
	f.StringVar(&c.security, "s", "", "Security symbol")
	f.StringVar(&c.quantity, "q", "", "Number of shares")
	f.StringVar(&c.price, "p", "", "Price per share")
	f.StringVar(&c.fees, "fees", "0", "Commission and fees")
	f.StringVar(&c.currency, "c", "USD", "Currency of monetary amounts")
	f.BoolVar(&c.fund, "fund", false, "The security is a mutual fund (enables average cost)")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fees, err := parseMoney(c.fees, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	// Validate against the replayed journal before appending.
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
	if c.fund {
		inv.IsMutualFund = true
	}
	if _, err := inv.RecordBuy(day, quantity, price, fees); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tx := taxlot.NewBuy(day, c.security, quantity, price, fees, "")
	tx.MutualFund = c.fund || inv.IsMutualFund
	return AppendTransaction(tx)
}
