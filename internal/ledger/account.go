package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one participant's balance, running profit/loss and wager
// lists. Accounts materialize lazily on first interaction and are never
// deleted.
type Account struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	PnL     decimal.Decimal `json:"pnl"`

	// Open holds unsettled wagers in placement order; Settled is append-only
	// and receives wagers as their markets resolve.
	Open    []*Wager `json:"-"`
	Settled []*Wager `json:"-"`

	// LastClaimDay is midnight of the last daily-reward claim in the
	// ledger's configured timezone; zero means never claimed.
	LastClaimDay time.Time `json:"last_claim_day"`
}

// HasFunds reports whether the balance covers the given stake.
func (a *Account) HasFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// OpenStake returns the total amount escrowed in open wagers.
func (a *Account) OpenStake() decimal.Decimal {
	total := decimal.Zero
	for _, w := range a.Open {
		total = total.Add(w.Amount)
	}
	return total
}

// Worth is the account's balance plus the value of its open wagers,
// used by the money leaderboard.
func (a *Account) Worth() decimal.Decimal {
	return a.Balance.Add(a.OpenStake())
}

// archiveWagers moves every open wager on the given market to the settled
// list, preserving placement order.
func (a *Account) archiveWagers(marketID int64) {
	remaining := a.Open[:0]
	for _, w := range a.Open {
		if w.MarketID == marketID {
			a.Settled = append(a.Settled, w)
		} else {
			remaining = append(remaining, w)
		}
	}
	a.Open = remaining
}

// removeWagers drops every open wager on the given market and returns the
// total stake removed, for refunds on cancellation.
func (a *Account) removeWagers(marketID int64) decimal.Decimal {
	refund := decimal.Zero
	remaining := a.Open[:0]
	for _, w := range a.Open {
		if w.MarketID == marketID {
			refund = refund.Add(w.Amount)
		} else {
			remaining = append(remaining, w)
		}
	}
	a.Open = remaining
	return refund
}
