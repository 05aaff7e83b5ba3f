package taxlot

import (
	"fmt"
	"slices"
)

// LotSelection allocates part of a sale to one tax lot. It is the output of
// Select and the input to ComputeSaleGainLoss.
type LotSelection struct {
	LotID         string
	SharesFromLot Quantity
}

// SpecificSelection maps lot IDs to the share count the taxpayer designates
// for sale under the Specific Identification method. It is an explicit,
// independently validated structure: selections must sum to exactly the
// shares sold, and no selection may exceed its lot's remaining shares.
type SpecificSelection map[string]Quantity

// Select allocates sharesToSell across the given lots per the chosen cost
// basis method. It is a pure function: the lots are not modified, and the
// same inputs always produce the same allocation (ties on identical purchase
// dates are broken by ascending sequence number).
//
// specific is consulted only for SpecificID and must be nil otherwise.
// Selling zero shares returns an empty allocation.
func Select(lots []*TaxLot, sharesToSell Quantity, method CostBasisMethod, specific SpecificSelection) ([]LotSelection, error) {
	if sharesToSell.IsNegative() {
		return nil, fmt.Errorf("%w: cannot sell a negative quantity %s", ErrValidation, sharesToSell)
	}
	if sharesToSell.IsZero() {
		return nil, nil
	}

	active := make([]*TaxLot, 0, len(lots))
	var available Quantity
	for _, lot := range lots {
		if lot.RemainingShares.IsPositive() {
			active = append(active, lot)
			available = available.Add(lot.RemainingShares)
		}
	}
	if available.LessThan(sharesToSell) {
		return nil, fmt.Errorf("%w: selling %s shares but only %s remain",
			ErrInsufficientShares, sharesToSell, available)
	}
	slices.SortFunc(active, compareLots)

	switch method {
	case FIFO, AverageCost:
		// Average cost blends the dollar basis but still consumes lots in
		// FIFO order for holding-period classification.
		return selectInOrder(active, sharesToSell), nil
	case LIFO:
		slices.Reverse(active)
		return selectInOrder(active, sharesToSell), nil
	case SpecificID:
		return selectSpecific(active, sharesToSell, specific)
	default:
		return nil, fmt.Errorf("%w: unknown cost basis method %d", ErrValidation, method)
	}
}

// selectInOrder consumes lots front to back, partially consuming the last lot
// touched.
func selectInOrder(lots []*TaxLot, sharesToSell Quantity) []LotSelection {
	var selections []LotSelection
	remaining := sharesToSell
	for _, lot := range lots {
		if remaining.IsZero() {
			break
		}
		take := lot.RemainingShares.Min(remaining)
		selections = append(selections, LotSelection{LotID: lot.ID, SharesFromLot: take})
		remaining = remaining.Sub(take)
	}
	return selections
}

// selectSpecific validates the taxpayer's designations and emits them in
// ledger order.
func selectSpecific(lots []*TaxLot, sharesToSell Quantity, specific SpecificSelection) ([]LotSelection, error) {
	if len(specific) == 0 {
		return nil, fmt.Errorf("%w: specific identification requires lot selections", ErrAllocationMismatch)
	}

	byID := make(map[string]*TaxLot, len(lots))
	for _, lot := range lots {
		byID[lot.ID] = lot
	}

	var total Quantity
	for lotID, shares := range specific {
		lot := byID[lotID]
		if lot == nil {
			return nil, fmt.Errorf("%w: selection names lot %q which is unknown or has no remaining shares",
				ErrAllocationMismatch, lotID)
		}
		if !shares.IsPositive() {
			return nil, fmt.Errorf("%w: selection for lot %q must be positive, got %s",
				ErrAllocationMismatch, lotID, shares)
		}
		if shares.GreaterThan(lot.RemainingShares) {
			return nil, fmt.Errorf("%w: selection for lot %q takes %s shares but only %s remain",
				ErrAllocationMismatch, lotID, shares, lot.RemainingShares)
		}
		total = total.Add(shares)
	}
	if !total.Equal(sharesToSell) {
		return nil, fmt.Errorf("%w: selections sum to %s shares, sale is for %s",
			ErrAllocationMismatch, total, sharesToSell)
	}

	// Emit in ledger order so the allocation is deterministic regardless of
	// map iteration.
	var selections []LotSelection
	for _, lot := range lots {
		if shares, ok := specific[lot.ID]; ok {
			selections = append(selections, LotSelection{LotID: lot.ID, SharesFromLot: shares})
		}
	}
	return selections, nil
}
