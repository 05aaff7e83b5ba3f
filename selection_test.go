package taxlot

import (
	"errors"
	"testing"
	"time"
)

// threeLots seeds a ledger with three lots dated Jan, Feb, Mar and returns the
// ledger and the lots in purchase order.
func threeLots(t *testing.T) (*Ledger, []*TaxLot) {
	t.Helper()
	l := NewLedger("AAPL")
	a := mustAddLot(l, 10, 1000, day(2024, time.January, 2))
	b := mustAddLot(l, 10, 1200, day(2024, time.February, 1))
	c := mustAddLot(l, 10, 1400, day(2024, time.March, 1))
	return l, []*TaxLot{a, b, c}
}

func TestSelectFIFO(t *testing.T) {
	l, lots := threeLots(t)

	got, err := Select(l.activeLots(), Q(15), FIFO, nil)
	if err != nil {
		t.Fatalf("Select: unexpected error %v", err)
	}
	want := []LotSelection{
		{LotID: lots[0].ID, SharesFromLot: Q(10)},
		{LotID: lots[1].ID, SharesFromLot: Q(5)},
	}
	assertSelections(t, got, want)

	// same inputs, same allocation
	again, err := Select(l.activeLots(), Q(15), FIFO, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertSelections(t, again, want)
}

func TestSelectLIFO(t *testing.T) {
	l, lots := threeLots(t)

	got, err := Select(l.activeLots(), Q(15), LIFO, nil)
	if err != nil {
		t.Fatalf("Select: unexpected error %v", err)
	}
	want := []LotSelection{
		{LotID: lots[2].ID, SharesFromLot: Q(10)},
		{LotID: lots[1].ID, SharesFromLot: Q(5)},
	}
	assertSelections(t, got, want)
}

func TestSelectSameDayTieBreak(t *testing.T) {
	l := NewLedger("AAPL")
	first := mustAddLot(l, 10, 1000, day(2024, time.January, 2))
	second := mustAddLot(l, 10, 1100, day(2024, time.January, 2))

	got, err := Select(l.activeLots(), Q(12), FIFO, nil)
	if err != nil {
		t.Fatal(err)
	}
	// same purchase date: the earlier sequence number goes first
	want := []LotSelection{
		{LotID: first.ID, SharesFromLot: Q(10)},
		{LotID: second.ID, SharesFromLot: Q(2)},
	}
	assertSelections(t, got, want)
}

func TestSelectEdgeCases(t *testing.T) {
	l, _ := threeLots(t)

	if _, err := Select(l.activeLots(), Q(-1), FIFO, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("negative quantity: got %v, want ErrValidation", err)
	}
	if got, err := Select(l.activeLots(), Q(0), FIFO, nil); err != nil || len(got) != 0 {
		t.Errorf("zero quantity: got (%v, %v), want empty allocation", got, err)
	}
	if _, err := Select(l.activeLots(), Q(31), FIFO, nil); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("oversell: got %v, want ErrInsufficientShares", err)
	}
}

func TestSelectSpecificID(t *testing.T) {
	l, lots := threeLots(t)

	got, err := Select(l.activeLots(), Q(8), SpecificID, SpecificSelection{
		lots[0].ID: Q(3),
		lots[2].ID: Q(5),
	})
	if err != nil {
		t.Fatalf("Select: unexpected error %v", err)
	}
	want := []LotSelection{
		{LotID: lots[0].ID, SharesFromLot: Q(3)},
		{LotID: lots[2].ID, SharesFromLot: Q(5)},
	}
	assertSelections(t, got, want)
}

func TestSelectSpecificIDInvalid(t *testing.T) {
	l, lots := threeLots(t)

	tests := []struct {
		name     string
		shares   Quantity
		specific SpecificSelection
	}{
		{"no selections", Q(5), nil},
		{"unknown lot", Q(5), SpecificSelection{"bogus": Q(5)}},
		{"zero shares from lot", Q(5), SpecificSelection{lots[0].ID: Q(0), lots[1].ID: Q(5)}},
		{"more than lot holds", Q(11), SpecificSelection{lots[0].ID: Q(11)}},
		{"sum below sale", Q(9), SpecificSelection{lots[0].ID: Q(3), lots[1].ID: Q(3)}},
		{"sum above sale", Q(5), SpecificSelection{lots[0].ID: Q(3), lots[1].ID: Q(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Select(l.activeLots(), tt.shares, SpecificID, tt.specific); !errors.Is(err, ErrAllocationMismatch) {
				t.Errorf("got %v, want ErrAllocationMismatch", err)
			}
		})
	}
}

func assertSelections(t *testing.T, got, want []LotSelection) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d selections, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].LotID != want[i].LotID {
			t.Errorf("selection[%d].LotID = %s, want %s", i, got[i].LotID, want[i].LotID)
		}
		if !got[i].SharesFromLot.Equal(want[i].SharesFromLot) {
			t.Errorf("selection[%d].SharesFromLot = %s, want %s", i, got[i].SharesFromLot, want[i].SharesFromLot)
		}
	}
}
