package taxlot

// LotSource identifies the event that opened a tax lot.
type LotSource string

// Lot sources.
const (
	LotSourceBuy          LotSource = "buy"
	LotSourceReinvestment LotSource = "reinvestment"
	LotSourceMerger       LotSource = "merger"
)

// TaxLot is a batch of shares of one security acquired together, tracked
// separately for cost basis purposes.
//
// A lot is created by a buy, a dividend reinvestment, or as the replacement
// side of a merger. Its remaining shares decrease only through a confirmed
// sale (or a merger conversion); its basis changes only through a corporate
// action or a wash-sale add-back. A lot is never deleted: it is driven to
// zero remaining shares and retained for audit.
//
// Invariant: 0 <= RemainingShares <= Shares, and CostBasis >= 0. The
// per-share basis CostBasis/Shares is constant except when a corporate
// action rescales Shares and CostBasis proportionally.
type TaxLot struct {
	ID              string
	SecurityID      string
	PurchaseDate    Date
	Shares          Quantity // original quantity acquired
	RemainingShares Quantity // not yet sold
	CostBasis       Money    // total basis for the original Shares
	Source          LotSource
	SequenceNumber  int  // insertion order, for deterministic tie-breaks
	Converted       bool // closed by a merger conversion
}

// PerShareBasis returns the lot's basis per share.
func (l *TaxLot) PerShareBasis() Money {
	return l.CostBasis.Div(l.Shares)
}

// RemainingBasis returns the basis attributable to the unsold shares.
func (l *TaxLot) RemainingBasis() Money {
	return l.CostBasis.Mul(l.RemainingShares).Div(l.Shares)
}

// IsLongTerm reports whether a disposal on asOf qualifies for long-term
// treatment: the date must be strictly after the first anniversary of the
// purchase. A holding period of exactly one year is short-term.
func (l *TaxLot) IsLongTerm(asOf Date) bool {
	return asOf.After(l.PurchaseDate.AddYears(1))
}

// DaysHeld returns the number of days between the purchase date and asOf.
func (l *TaxLot) DaysHeld(asOf Date) int {
	return l.PurchaseDate.DaysUntil(asOf)
}

// MarshalJSON implements the json.Marshaler interface for TaxLot.
func (l *TaxLot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", l.ID)
	w.Append("security", l.SecurityID)
	w.Append("purchaseDate", l.PurchaseDate)
	w.Append("shares", l.Shares)
	w.Append("remainingShares", l.RemainingShares)
	w.Append("costBasis", l.CostBasis)
	w.Append("source", l.Source)
	w.Append("sequence", l.SequenceNumber)
	w.Optional("converted", l.Converted)
	return w.MarshalJSON()
}
