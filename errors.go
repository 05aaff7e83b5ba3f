package taxlot

import "errors"

// Error kinds returned by the engine. Callers discriminate with errors.Is;
// every returned error wraps exactly one of these sentinels with context.
var (
	// ErrValidation indicates malformed input: non-positive shares or ratio,
	// a negative basis, or an unknown lot. Raised before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientShares indicates an attempt to sell or consume more
	// shares than remain in a lot or across a ledger.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrAllocationMismatch indicates Specific-ID selections that do not sum
	// to the shares sold, or that exceed a lot's remaining shares.
	ErrAllocationMismatch = errors.New("allocation mismatch")

	// ErrInconsistentLedger indicates an internal invariant was violated,
	// such as a negative remaining share count. It signals a caller bug and
	// is not recoverable.
	ErrInconsistentLedger = errors.New("inconsistent ledger")
)
