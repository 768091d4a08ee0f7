package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Market is a single binary proposition with fixed "yes"-side odds.
// Lifecycle: open (default) -> locked -> resolved. Locking is reversible
// while unresolved; resolution is terminal. The wager list is append-only
// while the market is unresolved; settlement annotates wagers in place.
type Market struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	OddsYes     decimal.Decimal `json:"odds_yes"`
	Locked      bool            `json:"locked"`
	Resolved    bool            `json:"resolved"`
	Outcome     Side            `json:"outcome,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`

	// Wagers are referenced, not owned: each wager belongs to exactly one
	// account, which carries it on its open/settled lists.
	Wagers []*Wager `json:"-"`
}

// Odds returns the payout multiplier for a side. Only the "yes" odds are
// stored; the "no" side is the two-outcome complement o/(o-1), computed on
// demand so a market has exactly one stored odds value.
func (m *Market) Odds(side Side) decimal.Decimal {
	if side == SideYes {
		return m.OddsYes
	}
	return m.OddsYes.Div(m.OddsYes.Sub(decimal.NewFromInt(1)))
}

// AcceptingWagers reports whether new wagers may be placed.
func (m *Market) AcceptingWagers() bool {
	return !m.Locked && !m.Resolved
}

// Header renders the market's one-line summary.
func (m *Market) Header() string {
	line := fmt.Sprintf("<%d> %q @ %s", m.ID, m.Description, money(m.OddsYes))
	if m.Resolved {
		line += "\nRESULT: " + strings.ToUpper(string(m.Outcome))
	} else if m.Locked {
		line += " [LOCKED]"
	}
	return line
}

// Detail renders the market header plus one line per wager. nameOf resolves
// account ids to display names; formatting lives in the core because it must
// reflect the exact settlement numbers.
func (m *Market) Detail(nameOf func(int64) string) string {
	var b strings.Builder
	b.WriteString(m.Header())
	b.WriteString("\n")
	for _, w := range m.Wagers {
		b.WriteString("\t" + w.shortInfo(nameOf(w.AccountID), m.Odds(w.Side)) + "\n")
	}
	return b.String()
}
