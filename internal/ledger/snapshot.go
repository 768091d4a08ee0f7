package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the serializable representation of the complete ledger.
// Wagers are stored once in a flat table; accounts and markets reference
// them by id. Account order is the insertion order used for leaderboard
// tie-breaking.
type Snapshot struct {
	Accounts     []AccountState  `json:"accounts"`
	OpenMarkets  []MarketState   `json:"open_markets"`
	PastMarkets  []MarketState   `json:"past_markets"`
	Wagers       []Wager         `json:"wagers"`
	NextMarketID int64           `json:"next_market_id"`
	NextWagerID  int64           `json:"next_wager_id"`
	MinWager     decimal.Decimal `json:"min_wager"`
	MaxWager     decimal.Decimal `json:"max_wager"`
	TakenAt      time.Time       `json:"taken_at"`
}

// AccountState is one account in a snapshot.
type AccountState struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Balance      decimal.Decimal `json:"balance"`
	PnL          decimal.Decimal `json:"pnl"`
	OpenWagers   []int64         `json:"open_wagers"`
	SettledWagers []int64        `json:"settled_wagers"`
	LastClaimDay time.Time       `json:"last_claim_day"`
}

// MarketState is one market in a snapshot.
type MarketState struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	OddsYes     decimal.Decimal `json:"odds_yes"`
	Locked      bool            `json:"locked"`
	Resolved    bool            `json:"resolved"`
	Outcome     Side            `json:"outcome,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Wagers      []int64         `json:"wagers"`
}

// TakeSnapshot copies the full ledger state under the mutex. The copy
// shares nothing with the live ledger, so the caller may serialize it
// without holding up mutations.
func (l *Ledger) TakeSnapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{
		NextMarketID: l.nextMarketID,
		NextWagerID:  l.nextWagerID,
		MinWager:     l.minWager,
		MaxWager:     l.maxWager,
		TakenAt:      l.cfg.Now(),
	}

	for _, id := range l.accountOrder {
		acct := l.accounts[id]
		snap.Accounts = append(snap.Accounts, AccountState{
			ID:            acct.ID,
			Name:          acct.Name,
			Balance:       acct.Balance,
			PnL:           acct.PnL,
			OpenWagers:    wagerIDs(acct.Open),
			SettledWagers: wagerIDs(acct.Settled),
			LastClaimDay:  acct.LastClaimDay,
		})
	}

	snap.OpenMarkets = marketStates(l.open)
	snap.PastMarkets = marketStates(l.past)

	seen := make(map[int64]struct{})
	for _, markets := range []map[int64]*Market{l.open, l.past} {
		for _, m := range markets {
			for _, w := range m.Wagers {
				if _, dup := seen[w.ID]; dup {
					continue
				}
				seen[w.ID] = struct{}{}
				snap.Wagers = append(snap.Wagers, *w)
			}
		}
	}
	sort.Slice(snap.Wagers, func(i, j int) bool { return snap.Wagers[i].ID < snap.Wagers[j].ID })

	return snap
}

// Restore atomically replaces the entire in-memory state with the
// snapshot's. Configured bounds are overridden by the snapshot's bounds.
func (l *Ledger) Restore(snap *Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	wagers := make(map[int64]*Wager, len(snap.Wagers))
	for i := range snap.Wagers {
		w := snap.Wagers[i]
		wagers[w.ID] = &w
	}

	accounts := make(map[int64]*Account, len(snap.Accounts))
	order := make([]int64, 0, len(snap.Accounts))
	for _, st := range snap.Accounts {
		acct := &Account{
			ID:           st.ID,
			Name:         st.Name,
			Balance:      st.Balance,
			PnL:          st.PnL,
			LastClaimDay: st.LastClaimDay,
		}
		var err error
		if acct.Open, err = resolveWagers(wagers, st.OpenWagers); err != nil {
			return fmt.Errorf("account %d: %w", st.ID, err)
		}
		if acct.Settled, err = resolveWagers(wagers, st.SettledWagers); err != nil {
			return fmt.Errorf("account %d: %w", st.ID, err)
		}
		accounts[st.ID] = acct
		order = append(order, st.ID)
	}

	open, err := restoreMarkets(wagers, snap.OpenMarkets)
	if err != nil {
		return err
	}
	past, err := restoreMarkets(wagers, snap.PastMarkets)
	if err != nil {
		return err
	}

	l.accounts = accounts
	l.accountOrder = order
	l.open = open
	l.past = past
	l.nextMarketID = snap.NextMarketID
	l.nextWagerID = snap.NextWagerID
	if !snap.MinWager.IsZero() {
		l.minWager = snap.MinWager
	}
	if !snap.MaxWager.IsZero() {
		l.maxWager = snap.MaxWager
	}
	return nil
}

func wagerIDs(wagers []*Wager) []int64 {
	ids := make([]int64, 0, len(wagers))
	for _, w := range wagers {
		ids = append(ids, w.ID)
	}
	return ids
}

func resolveWagers(table map[int64]*Wager, ids []int64) ([]*Wager, error) {
	wagers := make([]*Wager, 0, len(ids))
	for _, id := range ids {
		w, ok := table[id]
		if !ok {
			return nil, fmt.Errorf("snapshot references unknown wager %d", id)
		}
		wagers = append(wagers, w)
	}
	return wagers, nil
}

func marketStates(markets map[int64]*Market) []MarketState {
	states := make([]MarketState, 0, len(markets))
	for _, m := range markets {
		states = append(states, MarketState{
			ID:          m.ID,
			Description: m.Description,
			OddsYes:     m.OddsYes,
			Locked:      m.Locked,
			Resolved:    m.Resolved,
			Outcome:     m.Outcome,
			CreatedAt:   m.CreatedAt,
			Wagers:      wagerIDs(m.Wagers),
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

func restoreMarkets(wagers map[int64]*Wager, states []MarketState) (map[int64]*Market, error) {
	markets := make(map[int64]*Market, len(states))
	for _, st := range states {
		m := &Market{
			ID:          st.ID,
			Description: st.Description,
			OddsYes:     st.OddsYes,
			Locked:      st.Locked,
			Resolved:    st.Resolved,
			Outcome:     st.Outcome,
			CreatedAt:   st.CreatedAt,
		}
		var err error
		if m.Wagers, err = resolveWagers(wagers, st.Wagers); err != nil {
			return nil, fmt.Errorf("market %d: %w", st.ID, err)
		}
		markets[st.ID] = m
	}
	return markets, nil
}
