package taxlot

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
)

// Ledger owns the canonical set of tax lots for one security.
//
// A ledger is the single source of truth for its security for the duration of
// one logical operation; callers must serialize access. Every mutating
// operation validates its inputs completely before touching a lot, so a
// failure never leaves the ledger partially updated.
type Ledger struct {
	securityID string
	lots       []*TaxLot          // in insertion order
	index      map[string]*TaxLot // lots by ID

	// conservation counters, audited by SharesBought/SharesSold:
	// sum(remaining) + sharesSold == sharesBought at all times.
	sharesBought Quantity
	sharesSold   Quantity
}

// NewLedger creates an empty ledger for one security.
func NewLedger(securityID string) *Ledger {
	return &Ledger{
		securityID: securityID,
		index:      make(map[string]*TaxLot),
	}
}

// SecurityID returns the security this ledger accounts for.
func (l *Ledger) SecurityID() string { return l.securityID }

// Lot returns the lot with this ID, or nil if unknown.
func (l *Ledger) Lot(id string) *TaxLot {
	return l.index[id]
}

// AddLot opens a new tax lot. The lot starts fully unsold
// (RemainingShares == Shares).
func (l *Ledger) AddLot(shares Quantity, costBasis Money, purchaseDate Date, source LotSource) (*TaxLot, error) {
	if !shares.IsPositive() {
		return nil, fmt.Errorf("%w: lot shares must be positive, got %s", ErrValidation, shares)
	}
	if costBasis.IsNegative() {
		return nil, fmt.Errorf("%w: lot cost basis must not be negative, got %s", ErrValidation, costBasis)
	}
	lot := &TaxLot{
		ID:              uuid.NewString(),
		SecurityID:      l.securityID,
		PurchaseDate:    purchaseDate,
		Shares:          shares,
		RemainingShares: shares,
		CostBasis:       costBasis,
		Source:          source,
		SequenceNumber:  len(l.lots),
	}
	l.lots = append(l.lots, lot)
	l.index[lot.ID] = lot
	l.sharesBought = l.sharesBought.Add(shares)
	return lot, nil
}

// ConsumeShares decrements a lot's remaining shares after a confirmed sale
// (or a merger conversion).
func (l *Ledger) ConsumeShares(lotID string, shares Quantity) error {
	lot := l.index[lotID]
	if lot == nil {
		return fmt.Errorf("%w: unknown lot %q", ErrValidation, lotID)
	}
	if !shares.IsPositive() {
		return fmt.Errorf("%w: consumed shares must be positive, got %s", ErrValidation, shares)
	}
	if lot.RemainingShares.IsNegative() {
		return fmt.Errorf("%w: lot %q has negative remaining shares %s", ErrInconsistentLedger, lotID, lot.RemainingShares)
	}
	if shares.GreaterThan(lot.RemainingShares) {
		return fmt.Errorf("%w: lot %q holds %s shares, cannot consume %s",
			ErrInsufficientShares, lotID, lot.RemainingShares, shares)
	}
	lot.RemainingShares = lot.RemainingShares.Sub(shares)
	l.sharesSold = l.sharesSold.Add(shares)
	return nil
}

// AdjustBasis adds delta to a lot's cost basis. The delta may be negative,
// but the resulting basis must not be.
func (l *Ledger) AdjustBasis(lotID string, delta Money) error {
	lot := l.index[lotID]
	if lot == nil {
		return fmt.Errorf("%w: unknown lot %q", ErrValidation, lotID)
	}
	adjusted := lot.CostBasis.Add(delta)
	if adjusted.IsNegative() {
		return fmt.Errorf("%w: adjusting lot %q basis %s by %s would make it negative",
			ErrValidation, lotID, lot.CostBasis, delta)
	}
	lot.CostBasis = adjusted
	return nil
}

// ActiveLots returns a restartable sequence of lots with remaining shares,
// ordered by purchase date ascending, ties broken by ascending sequence
// number so the same ledger always yields the same order.
func (l *Ledger) ActiveLots() iter.Seq[*TaxLot] {
	return func(yield func(*TaxLot) bool) {
		for _, lot := range l.activeLots() {
			if !yield(lot) {
				return
			}
		}
	}
}

// activeLots returns the sorted slice backing ActiveLots.
func (l *Ledger) activeLots() []*TaxLot {
	active := make([]*TaxLot, 0, len(l.lots))
	for _, lot := range l.lots {
		if lot.RemainingShares.IsPositive() {
			active = append(active, lot)
		}
	}
	slices.SortFunc(active, compareLots)
	return active
}

// AllLots returns every lot ever opened, including fully consumed ones kept
// for audit, in purchase date then sequence order.
func (l *Ledger) AllLots() iter.Seq[*TaxLot] {
	all := slices.Clone(l.lots)
	slices.SortFunc(all, compareLots)
	return slices.Values(all)
}

func compareLots(a, b *TaxLot) int {
	if a.PurchaseDate.Before(b.PurchaseDate) {
		return -1
	}
	if a.PurchaseDate.After(b.PurchaseDate) {
		return 1
	}
	return a.SequenceNumber - b.SequenceNumber
}

// TotalRemainingShares sums the remaining shares across all lots.
func (l *Ledger) TotalRemainingShares() Quantity {
	var total Quantity
	for _, lot := range l.lots {
		total = total.Add(lot.RemainingShares)
	}
	return total
}

// SharesBought returns the total shares ever added to the ledger.
func (l *Ledger) SharesBought() Quantity { return l.sharesBought }

// SharesSold returns the total shares ever consumed from the ledger.
func (l *Ledger) SharesSold() Quantity { return l.sharesSold }
