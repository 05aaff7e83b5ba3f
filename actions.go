package taxlot

import "fmt"

// ApplySplit rescales every lot of the ledger for a stock split. Shares and
// remaining shares multiply by ratio while the cost basis is unchanged, so
// the per-share basis divides by ratio. A ratio below one is a reverse split.
func ApplySplit(ledger *Ledger, ratio Quantity, effectiveDate Date) error {
	if !ratio.IsPositive() {
		return fmt.Errorf("%w: split ratio must be positive, got %s", ErrValidation, ratio)
	}
	for _, lot := range ledger.lots {
		lot.Shares = lot.Shares.Mul(ratio)
		lot.RemainingShares = lot.RemainingShares.Mul(ratio)
	}
	// Rescale the conservation counters so past activity stays comparable
	// with the post-split share count.
	ledger.sharesBought = ledger.sharesBought.Mul(ratio)
	ledger.sharesSold = ledger.sharesSold.Mul(ratio)
	return nil
}

// ApplyDividendReinvestment opens a new, separate lot for shares received in
// place of a cash dividend. The lot's basis is shares times the reinvestment
// price.
func ApplyDividendReinvestment(ledger *Ledger, shares Quantity, pricePerShare Money, day Date) (*TaxLot, error) {
	if pricePerShare.IsNegative() {
		return nil, fmt.Errorf("%w: reinvestment price must not be negative, got %s", ErrValidation, pricePerShare)
	}
	return ledger.AddLot(shares, pricePerShare.Mul(shares), day, LotSourceReinvestment)
}

// MergerTerms describes the exchange offered for each share of the acquired
// security.
type MergerTerms struct {
	NewSecurityID   string
	ConversionRatio Quantity // new shares per old share
	CashPerShare    Money    // cash boot, zero for a fully tax-free exchange
	NewSharePrice   Money    // fair market value of one new share at the effective date
	EffectiveDate   Date
}

// ApplyMerger converts every active lot of src into lots of dst under the
// given terms.
//
// In a tax-free reorganization the basis carries forward and the new lot
// keeps the ORIGINAL purchase date, preserving the holding period. When cash
// boot is paid, gain is recognized per lot up to the lesser of the cash
// received and the built-in gain on the exchange; the recognized gain raises
// the carried basis while the cash lowers it. The old lots are closed and
// tagged converted; they are never deleted.
//
// The returned GainLossResult holds the recognized boot gain, bucketed by
// each lot's holding period at the effective date. It is zero for a fully
// tax-free exchange.
func ApplyMerger(src, dst *Ledger, terms MergerTerms) (GainLossResult, error) {
	currency := terms.CashPerShare.Currency()
	if currency == "" {
		currency = terms.NewSharePrice.Currency()
	}
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

	if dst == nil {
		return result, fmt.Errorf("%w: merger requires a destination ledger", ErrValidation)
	}
	if dst.SecurityID() != terms.NewSecurityID {
		return result, fmt.Errorf("%w: destination ledger is for %q, merger terms name %q",
			ErrValidation, dst.SecurityID(), terms.NewSecurityID)
	}
	if !terms.ConversionRatio.IsPositive() {
		return result, fmt.Errorf("%w: conversion ratio must be positive, got %s", ErrValidation, terms.ConversionRatio)
	}
	if terms.CashPerShare.IsNegative() {
		return result, fmt.Errorf("%w: cash per share must not be negative, got %s", ErrValidation, terms.CashPerShare)
	}
	hasBoot := terms.CashPerShare.IsPositive()
	if hasBoot && !terms.NewSharePrice.IsPositive() {
		// The Section 356 cap needs the value of the stock received.
		return result, fmt.Errorf("%w: cash boot requires the new security's share price", ErrValidation)
	}

	// Plan the conversion completely before mutating either ledger.
	type conversion struct {
		old        *TaxLot
		newShares  Quantity
		basis      Money
		cash       Money
		recognized Money
		longTerm   bool
	}
	var plan []conversion
	for lot := range src.ActiveLots() {
		newShares := lot.RemainingShares.Mul(terms.ConversionRatio)
		oldBasis := lot.RemainingBasis()
		cash := terms.CashPerShare.Mul(lot.RemainingShares)

		recognized := M(0, currency)
		carried := oldBasis
		if hasBoot {
			// Gain realized on the exchange: everything received less the
			// basis given up. Recognized only up to the cash received.
			received := cash.Add(terms.NewSharePrice.Mul(newShares))
			builtIn := received.Sub(oldBasis)
			if builtIn.IsPositive() {
				recognized = cash.Min(builtIn)
			}
			carried = oldBasis.Sub(cash).Add(recognized)
			if carried.IsNegative() {
				return result, fmt.Errorf("%w: cash received for lot %q exceeds its basis and recognized gain",
					ErrValidation, lot.ID)
			}
		}

		plan = append(plan, conversion{
			old:        lot,
			newShares:  newShares,
			basis:      carried,
			cash:       cash,
			recognized: recognized,
			longTerm:   lot.IsLongTerm(terms.EffectiveDate),
		})
	}

	// Commit: close the old lots, open the replacements with the original
	// purchase dates.
	for _, c := range plan {
		if err := src.ConsumeShares(c.old.ID, c.old.RemainingShares); err != nil {
			return result, err
		}
		c.old.Converted = true
		if _, err := dst.AddLot(c.newShares, c.basis, c.old.PurchaseDate, LotSourceMerger); err != nil {
			return result, err
		}

		if c.recognized.IsZero() {
			continue
		}
		proceeds := c.cash.Round()
		basis := c.cash.Sub(c.recognized).Round()
		if c.longTerm {
			result.LongTermProceeds = result.LongTermProceeds.Add(proceeds)
			result.LongTermCostBasis = result.LongTermCostBasis.Add(basis)
		} else {
			result.ShortTermProceeds = result.ShortTermProceeds.Add(proceeds)
			result.ShortTermCostBasis = result.ShortTermCostBasis.Add(basis)
		}
	}
	result.ShortTermGain = result.ShortTermProceeds.Sub(result.ShortTermCostBasis)
	result.LongTermGain = result.LongTermProceeds.Sub(result.LongTermCostBasis)
	result.TotalGain = result.ShortTermGain.Add(result.LongTermGain)
	return result, nil
}
