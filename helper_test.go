package taxlot

import "time"

// USD is a helper for test to create US dollar money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to create dates tersely.
func day(y int, m time.Month, d int) Date { return NewDate(y, m, d) }

// mustAddLot is a helper for test to seed a ledger.
func mustAddLot(l *Ledger, shares float64, costBasis float64, purchased Date) *TaxLot {
	lot, err := l.AddLot(Q(shares), USD(costBasis), purchased, LotSourceBuy)
	if err != nil {
		panic(err.Error())
	}
	return lot
}
