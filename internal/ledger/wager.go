package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Wager is one stake placed by one account on one side of one market.
// Account and market back-references are identifiers into the ledger's
// tables; the ledger owns all entity lifetimes. Everything except the
// resolution is immutable after construction.
type Wager struct {
	ID         int64           `json:"id"`
	AccountID  int64           `json:"account_id"`
	MarketID   int64           `json:"market_id"`
	Side       Side            `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Resolution Resolution      `json:"resolution"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// Resolved reports whether the wager has been settled.
func (w *Wager) Resolved() bool {
	return w.Resolution != ResolutionPending
}

// settle fixes the wager's resolution against the market outcome.
// A second settlement of the same wager is an internal-consistency fault:
// the market state machine makes it unreachable, so it panics rather than
// being surfaced as a user error.
func (w *Wager) settle(outcome Side) {
	if w.Resolved() {
		panic(fmt.Sprintf("wager %d settled twice", w.ID))
	}
	if w.Side == outcome {
		w.Resolution = ResolutionWon
	} else {
		w.Resolution = ResolutionLost
	}
}

// Winnings returns the amount the wager pays (or paid) at the given odds:
// the full stake times the odds if won, otherwise the stake itself.
// Derived on demand, never stored, so it cannot drift from the formula.
func (w *Wager) Winnings(odds decimal.Decimal) decimal.Decimal {
	if w.Resolution == ResolutionWon {
		return w.Amount.Mul(odds)
	}
	return w.Amount
}

// Describe renders the wager for an account's bet listings.
func (w *Wager) Describe(name, description string, odds decimal.Decimal) string {
	join := " that "
	if w.Side == SideNo {
		join = " against "
	}
	if !w.Resolved() {
		return fmt.Sprintf("%s bet %s @ %s%s%s", name, money(w.Amount), money(odds), join, description)
	}
	return fmt.Sprintf("%s %s %s betting%s%s", name, w.Resolution, money(w.Winnings(odds)), join, description)
}

// shortInfo renders the wager for a market's detail view.
func (w *Wager) shortInfo(name string, odds decimal.Decimal) string {
	label := "DOUBTER:  "
	if w.Side == SideYes {
		label = "BELIEVER: "
	}
	if !w.Resolved() {
		return fmt.Sprintf("%s%s bet %s", label, name, money(w.Amount))
	}
	return fmt.Sprintf("%s%s %s %s", label, name, w.Resolution, money(w.Winnings(odds)))
}

// money formats an amount for chat output.
func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// signedMoney formats an amount that may be negative, keeping the sign
// ahead of the currency symbol.
func signedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
