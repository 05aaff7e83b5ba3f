package taxlot

import (
	"errors"
	"testing"
	"time"
)

func TestLedgerAddLotValidation(t *testing.T) {
	l := NewLedger("AAPL")
	if _, err := l.AddLot(Q(0), USD(100), day(2024, time.January, 2), LotSourceBuy); !errors.Is(err, ErrValidation) {
		t.Errorf("AddLot with zero shares: got %v, want ErrValidation", err)
	}
	if _, err := l.AddLot(Q(-5), USD(100), day(2024, time.January, 2), LotSourceBuy); !errors.Is(err, ErrValidation) {
		t.Errorf("AddLot with negative shares: got %v, want ErrValidation", err)
	}
	if _, err := l.AddLot(Q(10), USD(-1), day(2024, time.January, 2), LotSourceBuy); !errors.Is(err, ErrValidation) {
		t.Errorf("AddLot with negative basis: got %v, want ErrValidation", err)
	}
}

func TestLedgerConsumeShares(t *testing.T) {
	l := NewLedger("AAPL")
	lot := mustAddLot(l, 100, 5000, day(2024, time.January, 2))

	if err := l.ConsumeShares(lot.ID, Q(40)); err != nil {
		t.Fatalf("ConsumeShares: unexpected error %v", err)
	}
	if !lot.RemainingShares.Equal(Q(60)) {
		t.Errorf("RemainingShares = %s, want 60", lot.RemainingShares)
	}
	// basis is per-lot, a partial sale never rewrites it
	if !lot.CostBasis.Equal(USD(5000)) {
		t.Errorf("CostBasis = %s, want 5000 USD", lot.CostBasis)
	}

	if err := l.ConsumeShares(lot.ID, Q(61)); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("ConsumeShares beyond remaining: got %v, want ErrInsufficientShares", err)
	}
	if err := l.ConsumeShares("no-such-lot", Q(1)); !errors.Is(err, ErrValidation) {
		t.Errorf("ConsumeShares on unknown lot: got %v, want ErrValidation", err)
	}
}

func TestLedgerAdjustBasis(t *testing.T) {
	l := NewLedger("AAPL")
	lot := mustAddLot(l, 100, 4500, day(2024, time.January, 2))

	if err := l.AdjustBasis(lot.ID, USD(1000)); err != nil {
		t.Fatalf("AdjustBasis: unexpected error %v", err)
	}
	if !lot.CostBasis.Equal(USD(5500)) {
		t.Errorf("CostBasis = %s, want 5500 USD", lot.CostBasis)
	}
	if err := l.AdjustBasis(lot.ID, USD(-6000)); !errors.Is(err, ErrValidation) {
		t.Errorf("AdjustBasis below zero: got %v, want ErrValidation", err)
	}
	// the failed adjustment must not have touched the lot
	if !lot.CostBasis.Equal(USD(5500)) {
		t.Errorf("CostBasis after failed adjust = %s, want 5500 USD", lot.CostBasis)
	}
}

func TestLedgerActiveLotsOrder(t *testing.T) {
	l := NewLedger("AAPL")
	// inserted out of date order, plus two lots on the same day
	b := mustAddLot(l, 10, 100, day(2024, time.March, 1))
	c := mustAddLot(l, 10, 100, day(2024, time.March, 1))
	a := mustAddLot(l, 10, 100, day(2024, time.January, 2))
	spent := mustAddLot(l, 10, 100, day(2024, time.February, 1))
	if err := l.ConsumeShares(spent.ID, Q(10)); err != nil {
		t.Fatal(err)
	}

	want := []string{a.ID, b.ID, c.ID}
	var got []string
	for lot := range l.ActiveLots() {
		got = append(got, lot.ID)
	}
	if len(got) != len(want) {
		t.Fatalf("ActiveLots yielded %d lots, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ActiveLots[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	// the sequence is restartable: a second range sees the same lots
	n := 0
	for range l.ActiveLots() {
		n++
	}
	if n != len(want) {
		t.Errorf("second iteration yielded %d lots, want %d", n, len(want))
	}
}

func TestLedgerShareConservation(t *testing.T) {
	l := NewLedger("AAPL")
	lot1 := mustAddLot(l, 100, 5000, day(2024, time.January, 2))
	mustAddLot(l, 50, 3000, day(2024, time.February, 1))
	if err := l.ConsumeShares(lot1.ID, Q(30)); err != nil {
		t.Fatal(err)
	}

	bought, sold := l.SharesBought(), l.SharesSold()
	remaining := l.TotalRemainingShares()
	if !remaining.Add(sold).Equal(bought) {
		t.Errorf("conservation broken: remaining %s + sold %s != bought %s", remaining, sold, bought)
	}
	if !remaining.Equal(Q(120)) {
		t.Errorf("TotalRemainingShares = %s, want 120", remaining)
	}
}
