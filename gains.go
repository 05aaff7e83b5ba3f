package taxlot

import (
	"fmt"
)

// GainLossResult is the realized outcome of one confirmed sale, bucketed into
// short- and long-term components. All amounts are rounded to the currency's
// display fraction; the proceeds buckets always sum to the sale's total
// proceeds exactly.
type GainLossResult struct {
	ShortTermProceeds  Money
	ShortTermCostBasis Money
	ShortTermGain      Money
	LongTermProceeds   Money
	LongTermCostBasis  Money
	LongTermGain       Money
	TotalGain          Money

	// IsWashSale and WashSaleDisallowedLoss are populated by the wash-sale
	// pre-check on the sale path when the aggregate gain is negative.
	IsWashSale             bool
	WashSaleDisallowedLoss Money
}

// ComputeSaleGainLoss turns a confirmed sale and its allocation into a
// realized gain/loss result.
//
// Proceeds are prorated across selections by share count at full precision,
// rounded per selection to the display unit, with the rounding remainder
// assigned to the last selection so the buckets sum to totalProceeds exactly.
// The cost basis of each selection is the lot's basis prorated by shares
// (or the blended per-share basis for AverageCost); basis is accumulated at
// full precision and rounded only when the buckets are assembled.
//
// A selection is long-term when the sale date is strictly after the first
// anniversary of the lot's purchase; exactly one year held is short-term.
func ComputeSaleGainLoss(lots []*TaxLot, selections []LotSelection, saleDate Date, totalProceeds Money, method CostBasisMethod) (GainLossResult, error) {
	currency := totalProceeds.Currency()
	zero := M(0, currency)
	result := GainLossResult{
		ShortTermProceeds:  zero,
		ShortTermCostBasis: zero,
		ShortTermGain:      zero,
		LongTermProceeds:   zero,
		LongTermCostBasis:  zero,
		LongTermGain:       zero,
		TotalGain:          zero,

		WashSaleDisallowedLoss: zero,
	}
	if len(selections) == 0 {
		return result, nil
	}
	if totalProceeds.IsNegative() {
		return result, fmt.Errorf("%w: sale proceeds must not be negative, got %s", ErrValidation, totalProceeds)
	}

	byID := make(map[string]*TaxLot, len(lots))
	for _, lot := range lots {
		byID[lot.ID] = lot
	}

	var sharesToSell Quantity
	for _, sel := range selections {
		if byID[sel.LotID] == nil {
			return result, fmt.Errorf("%w: selection names unknown lot %q", ErrValidation, sel.LotID)
		}
		if !sel.SharesFromLot.IsPositive() {
			return result, fmt.Errorf("%w: selection for lot %q must be positive, got %s",
				ErrValidation, sel.LotID, sel.SharesFromLot)
		}
		sharesToSell = sharesToSell.Add(sel.SharesFromLot)
	}

	// Blended per-share basis over the open lots, used by AverageCost for
	// the dollar amounts (holding periods still follow the selections).
	var blendedPerShare Money
	if method == AverageCost {
		var remaining Quantity
		remainingBasis := M(0, currency)
		for _, lot := range lots {
			if lot.RemainingShares.IsPositive() {
				remaining = remaining.Add(lot.RemainingShares)
				remainingBasis = remainingBasis.Add(lot.RemainingBasis())
			}
		}
		if !remaining.IsPositive() {
			return result, fmt.Errorf("%w: average cost requires open lots", ErrValidation)
		}
		blendedPerShare = remainingBasis.Div(remaining)
	}

	var shortProceeds, shortBasis, longProceeds, longBasis = zero, zero, zero, zero
	allocated := zero
	for i, sel := range selections {
		lot := byID[sel.LotID]

		var proceeds Money
		if i == len(selections)-1 {
			// The remainder of integer-cent rounding lands on the last
			// selection so the proceeds buckets conserve the total.
			proceeds = totalProceeds.Sub(allocated)
		} else {
			proceeds = totalProceeds.Mul(sel.SharesFromLot).Div(sharesToSell).Round()
			allocated = allocated.Add(proceeds)
		}

		var basis Money
		if method == AverageCost {
			basis = blendedPerShare.Mul(sel.SharesFromLot)
		} else {
			basis = lot.CostBasis.Mul(sel.SharesFromLot).Div(lot.Shares)
		}

		if lot.IsLongTerm(saleDate) {
			longProceeds = longProceeds.Add(proceeds)
			longBasis = longBasis.Add(basis)
		} else {
			shortProceeds = shortProceeds.Add(proceeds)
			shortBasis = shortBasis.Add(basis)
		}
	}

	result.ShortTermProceeds = shortProceeds
	result.ShortTermCostBasis = shortBasis.Round()
	result.ShortTermGain = shortProceeds.Sub(result.ShortTermCostBasis)
	result.LongTermProceeds = longProceeds
	result.LongTermCostBasis = longBasis.Round()
	result.LongTermGain = longProceeds.Sub(result.LongTermCostBasis)
	result.TotalGain = result.ShortTermGain.Add(result.LongTermGain)
	return result, nil
}

// TaxLotPreview is the unrealized standing of one open lot at a price.
type TaxLotPreview struct {
	LotID             string
	PurchaseDate      Date
	RemainingShares   Quantity
	CostBasis         Money // basis of the remaining shares
	MarketValue       Money
	UnrealizedGain    Money
	IsLongTerm        bool
	DaysHeld          int
	DaysUntilLongTerm int // 0 once the lot qualifies for long-term treatment
}

// TaxLotPreviews computes the unrealized gain of every open lot at
// currentPrice, in ledger order. Amounts are rounded for display.
func TaxLotPreviews(lots []*TaxLot, currentPrice Money, asOf Date) []TaxLotPreview {
	var previews []TaxLotPreview
	for _, lot := range lots {
		if !lot.RemainingShares.IsPositive() {
			continue
		}
		value := currentPrice.Mul(lot.RemainingShares)
		basis := lot.RemainingBasis()
		daysHeld := lot.DaysHeld(asOf)
		daysUntil := 0
		if !lot.IsLongTerm(asOf) {
			daysUntil = max(0, 366-daysHeld)
		}
		previews = append(previews, TaxLotPreview{
			LotID:             lot.ID,
			PurchaseDate:      lot.PurchaseDate,
			RemainingShares:   lot.RemainingShares,
			CostBasis:         basis.Round(),
			MarketValue:       value.Round(),
			UnrealizedGain:    value.Sub(basis).Round(),
			IsLongTerm:        lot.IsLongTerm(asOf),
			DaysHeld:          daysHeld,
			DaysUntilLongTerm: daysUntil,
		})
	}
	return previews
}
