package taxlot

import (
	"fmt"
	"slices"
)

// Investment ties the engine together for one security position: the lot
// ledger, the default cost basis method, and the immutable transaction
// history consulted by the wash-sale evaluator.
//
// It is the host-facing boundary: the surrounding application records
// transactions and queries previews, and reads realized short/long-term
// totals off the returned results. Callers must serialize access; every
// operation either completes or fails without partial updates.
type Investment struct {
	Symbol        string
	DefaultMethod CostBasisMethod
	IsMutualFund  bool

	ledger  *Ledger
	history []Transaction
	sales   []*SaleRecord
}

// SaleRecord is one confirmed sale, kept in date order. The Result of a loss
// sale is not final: a replacement purchase within 30 days after the sale
// disallows the loss retroactively, and the record is updated in place.
type SaleRecord struct {
	Date   Date
	Shares Quantity
	Result GainLossResult

	// matchedLotIDs are the lots the sale consumed; their shares are not
	// their own replacement. sharesReplaced tracks how many of the sold
	// shares have been matched to replacement purchases so far.
	matchedLotIDs  []string
	sharesReplaced Quantity
}

// NewInvestment creates an empty position in one security.
func NewInvestment(symbol string, method CostBasisMethod, mutualFund bool) *Investment {
	return &Investment{
		Symbol:        symbol,
		DefaultMethod: method,
		IsMutualFund:  mutualFund,
		ledger:        NewLedger(symbol),
	}
}

// Ledger exposes the underlying lot ledger.
func (inv *Investment) Ledger() *Ledger { return inv.ledger }

// History returns a copy of the recorded transactions, chronological.
func (inv *Investment) History() []Transaction {
	return slices.Clone(inv.history)
}

// Sales returns the confirmed sales in date order. Loss sale results reflect
// every wash-sale disallowance applied so far, including retroactive ones
// from purchases recorded after the sale.
func (inv *Investment) Sales() []SaleRecord {
	out := make([]SaleRecord, 0, len(inv.sales))
	for _, s := range inv.sales {
		out = append(out, *s)
	}
	return out
}

func (inv *Investment) record(tx Transaction) {
	inv.history = append(inv.history, tx)
	slices.SortStableFunc(inv.history, compareTxDates)
}

// RecordBuy opens a new tax lot for a purchase. The lot's basis is the share
// cost plus fees.
func (inv *Investment) RecordBuy(day Date, shares Quantity, pricePerShare, fees Money) (*TaxLot, error) {
	if pricePerShare.IsNegative() {
		return nil, fmt.Errorf("%w: purchase price must not be negative, got %s", ErrValidation, pricePerShare)
	}
	if fees.IsNegative() {
		return nil, fmt.Errorf("%w: fees must not be negative, got %s", ErrValidation, fees)
	}
	basis := pricePerShare.Mul(shares).Add(fees)
	lot, err := inv.ledger.AddLot(shares, basis, day, LotSourceBuy)
	if err != nil {
		return nil, err
	}
	tx := NewBuy(day, inv.Symbol, shares, pricePerShare, fees, lot.ID)
	tx.MutualFund = inv.IsMutualFund
	inv.record(tx)
	if err := inv.replaceSoldShares(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// RecordDividendReinvestment opens a new, separate lot for reinvested
// dividend shares.
func (inv *Investment) RecordDividendReinvestment(day Date, shares Quantity, pricePerShare Money) (*TaxLot, error) {
	lot, err := ApplyDividendReinvestment(inv.ledger, shares, pricePerShare, day)
	if err != nil {
		return nil, err
	}
	inv.record(NewDividendReinvestment(day, inv.Symbol, shares, pricePerShare, lot.ID))
	if err := inv.replaceSoldShares(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// replaceSoldShares re-evaluates past loss sales against a newly acquired
// lot. A purchase inside a sale's wash-sale window replaces sold shares that
// no earlier purchase has replaced yet; the matching slice of the loss is
// disallowed and added to the new lot's basis, and the sale's recorded
// result is updated in place.
func (inv *Investment) replaceSoldShares(lot *TaxLot) error {
	// Each purchased share replaces at most one sold share, even across
	// several past sales.
	capacity := lot.Shares
	for _, sale := range inv.sales {
		if !capacity.IsPositive() {
			break
		}
		if !sale.Result.TotalGain.IsNegative() {
			continue
		}
		if lot.PurchaseDate.Before(sale.Date.Add(-washSaleWindowDays)) ||
			lot.PurchaseDate.After(sale.Date.Add(washSaleWindowDays)) {
			continue
		}
		if slices.Contains(sale.matchedLotIDs, lot.ID) {
			continue
		}
		outstanding := sale.Shares.Sub(sale.sharesReplaced)
		if !outstanding.IsPositive() {
			continue
		}

		replaced := capacity.Min(outstanding)
		disallowed := sale.Result.TotalGain.Abs().Mul(replaced.Div(sale.Shares))
		if err := inv.ledger.AdjustBasis(lot.ID, disallowed); err != nil {
			return err
		}
		capacity = capacity.Sub(replaced)
		sale.sharesReplaced = sale.sharesReplaced.Add(replaced)
		sale.Result.IsWashSale = true
		sale.Result.WashSaleDisallowedLoss = sale.Result.WashSaleDisallowedLoss.Add(disallowed).Round()
	}
	return nil
}

// SalePreview is the dry-run of a pending sale: the allocation it would
// commit, the gain/loss it would realize, and the informational wash-sale
// check. Nothing is mutated.
type SalePreview struct {
	Selections []LotSelection
	Result     GainLossResult
	WashSale   WashSaleCheck
}

// PreviewSale computes what ConfirmSale would do, without mutating the
// ledger. The wash-sale check is informational; hosts typically surface it as
// a non-blocking warning.
func (inv *Investment) PreviewSale(day Date, shares Quantity, totalProceeds Money, method CostBasisMethod, specific SpecificSelection) (*SalePreview, error) {
	if method == AverageCost && !inv.IsMutualFund {
		return nil, fmt.Errorf("%w: average cost applies to mutual fund positions only", ErrValidation)
	}

	lots := inv.ledger.activeLots()
	selections, err := Select(lots, shares, method, specific)
	if err != nil {
		return nil, err
	}
	result, err := ComputeSaleGainLoss(lots, selections, day, totalProceeds, method)
	if err != nil {
		return nil, err
	}

	var check WashSaleCheck
	if result.TotalGain.IsNegative() {
		matched := make([]string, 0, len(selections))
		for _, sel := range selections {
			matched = append(matched, sel.LotID)
		}
		check = EvaluateWashSale(inv.Symbol, day, result.TotalGain, shares, inv.history, matched)
		result.IsWashSale = check.WouldTrigger
		if check.WouldTrigger {
			result.WashSaleDisallowedLoss = check.DisallowedLoss.Round()
		}
	}

	return &SalePreview{Selections: selections, Result: result, WashSale: check}, nil
}

// ConfirmSale commits a sale: the allocation is computed and fully validated,
// the selected lots are consumed, the sale is recorded, and a triggered wash
// sale adds the disallowed loss back to the replacement lot's basis.
func (inv *Investment) ConfirmSale(day Date, shares Quantity, totalProceeds Money, method CostBasisMethod, specific SpecificSelection) (GainLossResult, error) {
	preview, err := inv.PreviewSale(day, shares, totalProceeds, method, specific)
	if err != nil {
		return GainLossResult{}, err
	}
	if shares.IsZero() {
		// Nothing to commit, nothing to record.
		return preview.Result, nil
	}

	// The preview validated every selection against the remaining shares, so
	// consumption cannot fail here and the commit is all-or-nothing.
	for _, sel := range preview.Selections {
		if err := inv.ledger.ConsumeShares(sel.LotID, sel.SharesFromLot); err != nil {
			return GainLossResult{}, err
		}
	}
	inv.record(NewSell(day, inv.Symbol, shares, totalProceeds, method))

	if err := ApplyWashSale(inv.ledger, preview.WashSale); err != nil {
		return GainLossResult{}, err
	}

	matched := make([]string, 0, len(preview.Selections))
	for _, sel := range preview.Selections {
		matched = append(matched, sel.LotID)
	}
	inv.sales = append(inv.sales, &SaleRecord{
		Date:           day,
		Shares:         shares,
		Result:         preview.Result,
		matchedLotIDs:  matched,
		sharesReplaced: preview.WashSale.SharesReplaced,
	})
	return preview.Result, nil
}

// Split applies a stock split to the position.
func (inv *Investment) Split(day Date, ratio Quantity) error {
	if err := ApplySplit(inv.ledger, ratio, day); err != nil {
		return err
	}
	inv.record(NewSplit(day, inv.Symbol, ratio))
	return nil
}

// MergeInto converts this position into dst under the given terms and closes
// it. The recognized cash-boot gain, if any, is returned.
func (inv *Investment) MergeInto(dst *Investment, terms MergerTerms) (GainLossResult, error) {
	result, err := ApplyMerger(inv.ledger, dst.ledger, terms)
	if err != nil {
		return result, err
	}
	tx := NewMerger(terms.EffectiveDate, inv.Symbol, dst.Symbol, terms.ConversionRatio, terms.CashPerShare, terms.NewSharePrice)
	inv.record(tx)
	dst.record(tx)
	return result, nil
}

// Previews returns the unrealized standing of every open lot at a price.
func (inv *Investment) Previews(currentPrice Money, asOf Date) []TaxLotPreview {
	return TaxLotPreviews(inv.ledger.activeLots(), currentPrice, asOf)
}
