package taxlot

import "fmt"

// washSaleWindowDays is the number of days before and after a loss sale in
// which a purchase of a substantially identical security disallows the loss.
const washSaleWindowDays = 30

// WashSaleCheck is the informational result of a wash-sale evaluation. It is
// produced both as a non-mutating pre-check (UI warnings before a sale is
// finalized) and on the confirmed path, where ApplyWashSale commits the basis
// add-back.
type WashSaleCheck struct {
	// WouldTrigger is true when the sale realizes a loss and a replacement
	// purchase falls inside the wash-sale window.
	WouldTrigger bool
	// MatchingPurchaseLotIDs are the replacement lots inside the window,
	// earliest purchase first.
	MatchingPurchaseLotIDs []string
	// DisallowedLoss is the positive magnitude of the loss denied by the
	// rule, prorated by the repurchased share count.
	DisallowedLoss Money
	// SharesReplaced is the sold share count matched to replacement
	// purchases, capped at the shares sold. Later purchases can replace the
	// rest and disallow more of the loss.
	SharesReplaced Quantity
}

// EvaluateWashSale scans the transaction history for purchases of securityID
// within 30 days before or after saleDate. It never fails: absence of a loss
// or of a matching purchase yields a zero WashSaleCheck.
//
// realizedLoss is the aggregate gain of the sale and only negative values can
// trigger the rule. excludeLotIDs names the lots matched to the sale itself:
// the shares being sold are not their own replacement.
//
// The disallowance is proportional, not all-or-nothing:
//
//	disallowed = |loss| * min(sharesRepurchased, sharesSold) / sharesSold
func EvaluateWashSale(securityID string, saleDate Date, realizedLoss Money, sharesSold Quantity, history []Transaction, excludeLotIDs []string) WashSaleCheck {
	if !realizedLoss.IsNegative() || !sharesSold.IsPositive() {
		return WashSaleCheck{}
	}

	excluded := make(map[string]bool, len(excludeLotIDs))
	for _, id := range excludeLotIDs {
		excluded[id] = true
	}

	firstDay := saleDate.Add(-washSaleWindowDays)
	lastDay := saleDate.Add(washSaleWindowDays)

	var repurchased Quantity
	var matching []Transaction
	for _, tx := range history {
		if !tx.IsAcquisition() || tx.SecurityID != securityID {
			continue
		}
		if tx.Date.Before(firstDay) || tx.Date.After(lastDay) {
			continue
		}
		if tx.LotID != "" && excluded[tx.LotID] {
			continue
		}
		repurchased = repurchased.Add(tx.Shares)
		matching = append(matching, tx)
	}
	if repurchased.IsZero() {
		return WashSaleCheck{}
	}

	// History is chronological, so matching lots are already earliest first.
	lotIDs := make([]string, 0, len(matching))
	for _, tx := range matching {
		if tx.LotID != "" {
			lotIDs = append(lotIDs, tx.LotID)
		}
	}

	replaced := repurchased.Min(sharesSold)
	disallowed := realizedLoss.Abs().Mul(replaced.Div(sharesSold))

	return WashSaleCheck{
		WouldTrigger:           true,
		MatchingPurchaseLotIDs: lotIDs,
		DisallowedLoss:         disallowed,
		SharesReplaced:         replaced,
	}
}

// ApplyWashSale commits a triggered wash sale after the sale itself has been
// confirmed: the disallowed loss is added to the basis of the earliest
// qualifying replacement lot. The replacement lot's purchase date is
// unchanged (holding periods are not merged).
//
// Applying a check that did not trigger is a no-op.
func ApplyWashSale(ledger *Ledger, check WashSaleCheck) error {
	if !check.WouldTrigger {
		return nil
	}
	if len(check.MatchingPurchaseLotIDs) == 0 {
		return fmt.Errorf("%w: wash sale triggered but no replacement lot recorded", ErrInconsistentLedger)
	}
	return ledger.AdjustBasis(check.MatchingPurchaseLotIDs[0], check.DisallowedLoss)
}
