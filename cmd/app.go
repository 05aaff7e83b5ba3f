// Package cmd implements the CLI application to manage a tax-lot journal.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&dripCmd{}, "transactions")

	c.Register(&splitCmd{}, "corporate actions")
	c.Register(&mergerCmd{}, "corporate actions")

	c.Register(&lotsCmd{}, "reports")
	c.Register(&gainsCmd{}, "reports")

	c.Register(&fmtCmd{}, "journal")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var journalFile = flag.String("journal", "journal.jsonl", "Path to the journal file containing transactions (JSONL format)")

// LoadJournal reads the journal file. A missing file is an empty journal.
func LoadJournal() ([]taxlot.Transaction, error) {
	f, err := os.Open(*journalFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return taxlot.DecodeJournal(f)
}

// AppendTransaction appends a single transaction to the app journal file.
func AppendTransaction(tx taxlot.Transaction) subcommands.ExitStatus {
	f, err := os.OpenFile(*journalFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal file %q: %v\n", *journalFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := taxlot.EncodeTransaction(f, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to journal file %q: %v\n", *journalFile, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended transaction to %s\n", *journalFile)
	return subcommands.ExitSuccess
}

// Sale is one realized result captured during a journal replay.
type Sale struct {
	Symbol string
	Date   taxlot.Date
	Result taxlot.GainLossResult
}

// Replay is the full state rebuilt from a journal: one Investment per
// security, and every realized result in journal order.
type Replay struct {
	Investments map[string]*taxlot.Investment
	Sales       []Sale
}

// Investment returns the position for a symbol, creating it on first use.
func (r *Replay) Investment(symbol string) *taxlot.Investment {
	inv, ok := r.Investments[symbol]
	if !ok {
		inv = taxlot.NewInvestment(symbol, taxlot.FIFO, false)
		r.Investments[symbol] = inv
	}
	return inv
}

// ReplayJournal rebuilds ledger state by feeding every journal record through
// the engine. The engine owns no persistence: the journal is replay input,
// not engine state.
func ReplayJournal(txs []taxlot.Transaction) (*Replay, error) {
	r := &Replay{Investments: make(map[string]*taxlot.Investment)}

	for _, tx := range txs {
		inv := r.Investment(tx.SecurityID)
		var err error
		switch tx.Type {
		case taxlot.TxBuy:
			if tx.MutualFund {
				inv.IsMutualFund = true
			}
			_, err = inv.RecordBuy(tx.Date, tx.Shares, tx.PricePerShare, tx.Fees)
		case taxlot.TxDividendReinvestment:
			_, err = inv.RecordDividendReinvestment(tx.Date, tx.Shares, tx.PricePerShare)
		case taxlot.TxSell:
			var method taxlot.CostBasisMethod = taxlot.FIFO
			if tx.Method != "" {
				method, err = taxlot.ParseCostBasisMethod(tx.Method)
				if err != nil {
					break
				}
			}
			var specific taxlot.SpecificSelection
			if method == taxlot.SpecificID {
				specific, err = ParseDesignation(inv, tx.SpecificLots)
				if err != nil {
					break
				}
			}
			_, err = inv.ConfirmSale(tx.Date, tx.Shares, tx.Proceeds, method, specific)
		case taxlot.TxSplit:
			err = inv.Split(tx.Date, tx.Ratio)
		case taxlot.TxMerger:
			dst := r.Investment(tx.NewSecurityID)
			var result taxlot.GainLossResult
			result, err = inv.MergeInto(dst, taxlot.MergerTerms{
				NewSecurityID:   tx.NewSecurityID,
				ConversionRatio: tx.Ratio,
				CashPerShare:    tx.CashPerShare,
				NewSharePrice:   tx.PricePerShare,
				EffectiveDate:   tx.Date,
			})
			if err == nil && !result.TotalGain.IsZero() {
				r.Sales = append(r.Sales, Sale{Symbol: tx.SecurityID, Date: tx.Date, Result: result})
			}
		default:
			err = fmt.Errorf("unsupported transaction type %q", tx.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("replaying %s of %s on %s: %w", tx.Type, tx.SecurityID, tx.Date, err)
		}
	}

	// Collect sale results only after the whole journal has replayed: a buy
	// within 30 days after a loss sale amends that sale's result with the
	// retroactive wash-sale disallowance.
	for symbol, inv := range r.Investments {
		for _, sale := range inv.Sales() {
			r.Sales = append(r.Sales, Sale{Symbol: symbol, Date: sale.Date, Result: sale.Result})
		}
	}
	slices.SortStableFunc(r.Sales, func(a, b Sale) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		default:
			return strings.Compare(a.Symbol, b.Symbol)
		}
	})
	return r, nil
}

// ParseDesignation parses a "seq:qty,seq:qty" lot designation against the
// position's ledger, resolving sequence numbers to lot IDs. Sequence numbers
// are stable across replays, unlike generated lot IDs.
func ParseDesignation(inv *taxlot.Investment, s string) (taxlot.SpecificSelection, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("specific-id sale requires a -lots designation")
	}

	bySeq := make(map[int]*taxlot.TaxLot)
	for lot := range inv.Ledger().AllLots() {
		bySeq[lot.SequenceNumber] = lot
	}

	selection := make(taxlot.SpecificSelection)
	for _, part := range strings.Split(s, ",") {
		seqStr, qtyStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid lot designation %q, want seq:qty", part)
		}
		seq, err := strconv.Atoi(seqStr)
		if err != nil {
			return nil, fmt.Errorf("invalid lot sequence in %q: %w", part, err)
		}
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", part, err)
		}
		lot := bySeq[seq]
		if lot == nil {
			return nil, fmt.Errorf("no lot with sequence %d", seq)
		}
		selection[lot.ID] = taxlot.Q(qty)
	}
	return selection, nil
}

// parseQuantity parses a share quantity flag.
func parseQuantity(s string) (taxlot.Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return taxlot.Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return taxlot.Q(d), nil
}

// parseMoney parses a monetary amount flag.
func parseMoney(s, currency string) (taxlot.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return taxlot.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return taxlot.M(d, currency), nil
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// Fall back to the raw markdown.
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
