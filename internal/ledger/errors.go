package ledger

import "errors"

// Error categories for ledger operations. Specific failures wrap one of
// these sentinels so callers can route on errors.Is.
var (
	// ErrValidation covers malformed side tokens, amounts outside the
	// configured bounds, odds <= 1 and max-wager updates below the minimum.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound covers unknown market ids and accounts with nothing to cancel.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict covers wagering on a locked or resolved market,
	// resolving an already-resolved market and unlocking a resolved market.
	ErrStateConflict = errors.New("state conflict")

	// ErrInsufficientFunds is returned when a stake exceeds the current
	// balance. The wrapped message includes the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
