package taxlot

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType is a typed string identifying a transaction record.
type TxType string

// Transaction types.
const (
	TxBuy                  TxType = "buy"
	TxSell                 TxType = "sell"
	TxDividendReinvestment TxType = "reinvest-dividend"
	TxSplit                TxType = "split"
	TxMerger               TxType = "merger"
)

// Transaction is an immutable record of an event applied to a security
// position. Records are kept for wash-sale history lookups and audit, and are
// never mutated after creation.
//
// Not every field applies to every type: Shares and PricePerShare describe
// buys, sells and reinvestments; Proceeds describes sells; Ratio describes
// splits and the conversion ratio of mergers; CashPerShare and NewSecurityID
// describe mergers. LotID links an acquisition to the tax lot it opened, so
// the wash-sale scan can exclude a sale's own matched purchases.
type Transaction struct {
	ID            string
	Type          TxType
	SecurityID    string
	Date          Date
	Shares        Quantity
	PricePerShare Money
	Fees          Money
	Proceeds      Money
	Ratio         Quantity
	CashPerShare  Money
	NewSecurityID string
	LotID         string
	Method        string // cost basis method of a sell, for audit and replay
	SpecificLots  string // "seq:qty,..." designation of a specific-id sell
	MutualFund    bool   // the position is a mutual fund (buys declare it)
	Notes         string
}

// NewBuy records the purchase of shares. lotID is the tax lot the purchase
// opened.
func NewBuy(day Date, securityID string, shares Quantity, pricePerShare, fees Money, lotID string) Transaction {
	return Transaction{
		ID:            uuid.NewString(),
		Type:          TxBuy,
		SecurityID:    securityID,
		Date:          day,
		Shares:        shares,
		PricePerShare: pricePerShare,
		Fees:          fees,
		LotID:         lotID,
	}
}

// NewSell records the sale of shares for total proceeds (net of fees), under
// the given cost basis method.
func NewSell(day Date, securityID string, shares Quantity, proceeds Money, method CostBasisMethod) Transaction {
	return Transaction{
		ID:         uuid.NewString(),
		Type:       TxSell,
		SecurityID: securityID,
		Date:       day,
		Shares:     shares,
		Proceeds:   proceeds,
		Method:     method.String(),
	}
}

// NewDividendReinvestment records a dividend paid out as shares. lotID is the
// tax lot the reinvestment opened.
func NewDividendReinvestment(day Date, securityID string, shares Quantity, pricePerShare Money, lotID string) Transaction {
	return Transaction{
		ID:            uuid.NewString(),
		Type:          TxDividendReinvestment,
		SecurityID:    securityID,
		Date:          day,
		Shares:        shares,
		PricePerShare: pricePerShare,
		LotID:         lotID,
	}
}

// NewSplit records a forward or reverse stock split (ratio < 1).
func NewSplit(day Date, securityID string, ratio Quantity) Transaction {
	return Transaction{
		ID:         uuid.NewString(),
		Type:       TxSplit,
		SecurityID: securityID,
		Date:       day,
		Ratio:      ratio,
	}
}

// NewMerger records the conversion of a position into newSecurityID shares,
// with optional cash boot per share. newSharePrice is the fair market value
// of one new share at the effective date; PricePerShare carries it.
func NewMerger(day Date, securityID, newSecurityID string, conversionRatio Quantity, cashPerShare, newSharePrice Money) Transaction {
	return Transaction{
		ID:            uuid.NewString(),
		Type:          TxMerger,
		SecurityID:    securityID,
		Date:          day,
		Ratio:         conversionRatio,
		CashPerShare:  cashPerShare,
		PricePerShare: newSharePrice,
		NewSecurityID: newSecurityID,
	}
}

// IsAcquisition reports whether the record opens a tax lot and therefore
// counts as a purchase for the wash-sale window scan.
func (t Transaction) IsAcquisition() bool {
	return t.Type == TxBuy || t.Type == TxDividendReinvestment
}

// Currency returns the currency of the record's monetary fields.
func (t Transaction) Currency() string {
	for _, m := range []Money{t.PricePerShare, t.Proceeds, t.Fees, t.CashPerShare} {
		if c := m.Currency(); c != "" {
			return c
		}
	}
	return ""
}

// MarshalJSON implements the json.Marshaler interface for Transaction. Fields
// are written in a stable order so journals diff cleanly.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	w.Append("date", t.Date)
	w.Append("security", t.SecurityID)
	w.Optional("id", t.ID)
	w.Optional("shares", t.Shares)
	w.Optional("price", t.PricePerShare.value)
	w.Optional("fees", t.Fees.value)
	w.Optional("proceeds", t.Proceeds.value)
	w.Optional("ratio", t.Ratio)
	w.Optional("cashPerShare", t.CashPerShare.value)
	w.Optional("currency", t.Currency())
	w.Optional("newSecurity", t.NewSecurityID)
	w.Optional("lot", t.LotID)
	w.Optional("method", t.Method)
	w.Optional("lots", t.SpecificLots)
	w.Optional("mutualFund", t.MutualFund)
	w.Optional("notes", t.Notes)
	return w.MarshalJSON()
}

// txRecord is a specialized struct for decoding journal lines: monetary
// amounts arrive as raw decimals sharing one currency field.
type txRecord struct {
	ID           string          `json:"id"`
	Type         TxType          `json:"type"`
	Security     string          `json:"security"`
	Date         Date            `json:"date"`
	Shares       Quantity        `json:"shares"`
	Price        decimal.Decimal `json:"price"`
	Fees         decimal.Decimal `json:"fees"`
	Proceeds     decimal.Decimal `json:"proceeds"`
	Ratio        Quantity        `json:"ratio"`
	CashPerShare decimal.Decimal `json:"cashPerShare"`
	Currency     string          `json:"currency"`
	NewSecurity  string          `json:"newSecurity"`
	Lot          string          `json:"lot"`
	Method       string          `json:"method"`
	Lots         string          `json:"lots"`
	MutualFund   bool            `json:"mutualFund"`
	Notes        string          `json:"notes"`
}

func (r txRecord) transaction() Transaction {
	return Transaction{
		ID:            r.ID,
		Type:          r.Type,
		SecurityID:    r.Security,
		Date:          r.Date,
		Shares:        r.Shares,
		PricePerShare: M(r.Price, r.Currency),
		Fees:          M(r.Fees, r.Currency),
		Proceeds:      M(r.Proceeds, r.Currency),
		Ratio:         r.Ratio,
		CashPerShare:  M(r.CashPerShare, r.Currency),
		NewSecurityID: r.NewSecurity,
		LotID:         r.Lot,
		Method:        r.Method,
		SpecificLots:  r.Lots,
		MutualFund:    r.MutualFund,
		Notes:         r.Notes,
	}
}
