// Package renderer builds markdown reports from engine results, for display
// by the cbt command-line tool.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/taxlot"
)

// GainsMarkdown renders realized gain/loss totals in the short/long-term
// layout of a Schedule D / Form 8949 summary.
func GainsMarkdown(title string, results []taxlot.GainLossResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Realized Gains Report: %s\n\n", title)
	fmt.Fprintln(&b, "| Term | Proceeds | Cost Basis | Gain/Loss |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")

	var short, shortBasis, shortGain, long, longBasis, longGain, total, disallowed taxlot.Money
	wash := false
	for _, r := range results {
		short = short.Add(r.ShortTermProceeds)
		shortBasis = shortBasis.Add(r.ShortTermCostBasis)
		shortGain = shortGain.Add(r.ShortTermGain)
		long = long.Add(r.LongTermProceeds)
		longBasis = longBasis.Add(r.LongTermCostBasis)
		longGain = longGain.Add(r.LongTermGain)
		total = total.Add(r.TotalGain)
		if r.IsWashSale {
			wash = true
			disallowed = disallowed.Add(r.WashSaleDisallowedLoss)
		}
	}

	fmt.Fprintf(&b, "| Short-term | %s | %s | %s |\n", short, shortBasis, shortGain.SignedString())
	fmt.Fprintf(&b, "| Long-term | %s | %s | %s |\n", long, longBasis, longGain.SignedString())
	fmt.Fprintf(&b, "| **Total** | **%s** | **%s** | **%s** |\n", short.Add(long), shortBasis.Add(longBasis), total.SignedString())

	if wash {
		fmt.Fprintf(&b, "\n> Wash sale: %s of losses disallowed and added back to replacement lot basis.\n", disallowed)
	}
	return b.String()
}

// LotsMarkdown renders the unrealized standing of every open lot.
func LotsMarkdown(symbol string, asOf taxlot.Date, price taxlot.Money, previews []taxlot.TaxLotPreview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Open Tax Lots: %s at %s on %s\n\n", symbol, price, asOf)

	if len(previews) == 0 {
		fmt.Fprintln(&b, "No open lots.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Purchased | Shares | Cost Basis | Market Value | Unrealized | Term | Days to LT |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|:---|---:|")
	for _, p := range previews {
		term := "short"
		daysToLT := fmt.Sprint(p.DaysUntilLongTerm)
		if p.IsLongTerm {
			term = "long"
			daysToLT = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			p.PurchaseDate, p.RemainingShares, p.CostBasis, p.MarketValue,
			p.UnrealizedGain.SignedString(), term, daysToLT)
	}
	return b.String()
}

// SalePreviewMarkdown renders the dry-run of a pending sale: the allocation,
// the gain/loss it would realize, and a wash-sale warning when triggered.
func SalePreviewMarkdown(symbol string, day taxlot.Date, preview *taxlot.SalePreview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sale Preview: %s on %s\n\n", symbol, day)

	fmt.Fprintln(&b, "| Lot | Shares |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, sel := range preview.Selections {
		fmt.Fprintf(&b, "| %s | %s |\n", sel.LotID, sel.SharesFromLot)
	}
	fmt.Fprintln(&b)

	r := preview.Result
	fmt.Fprintf(&b, "Short-term gain: %s, long-term gain: %s, total: %s\n",
		r.ShortTermGain.SignedString(), r.LongTermGain.SignedString(), r.TotalGain.SignedString())

	if preview.WashSale.WouldTrigger {
		fmt.Fprintf(&b, "\n> Warning: this sale would trigger the wash-sale rule; %s of the loss would be disallowed.\n",
			preview.WashSale.DisallowedLoss.Round())
	}
	return b.String()
}
