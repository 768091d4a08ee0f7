// Package ledger implements the wagering ledger: play-money accounts,
// binary fixed-odds markets, wager placement and atomic settlement.
// All monetary values use shopspring/decimal — never float64 for money.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the ledger's tunables. Zero fields fall back to the
// defaults the bot has always shipped with.
type Config struct {
	StartingBalance decimal.Decimal
	MinWager        decimal.Decimal
	MaxWager        decimal.Decimal
	DailyReward     decimal.Decimal

	// Timezone defines the calendar-day boundary for daily rewards.
	Timezone *time.Location

	Vocabulary Vocabulary

	// Now is the clock source, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the standard balances and bounds.
func DefaultConfig() Config {
	return Config{
		StartingBalance: decimal.NewFromInt(10000),
		MinWager:        decimal.NewFromInt(1),
		MaxWager:        decimal.NewFromInt(5000),
		DailyReward:     decimal.NewFromInt(100),
		Timezone:        time.Local,
		Vocabulary:      DefaultVocabulary(),
		Now:             time.Now,
	}
}

// Ledger owns every account, market and wager, and is the single entry
// point for all operations. One mutex guards the whole ledger: the
// expected request rate is a chat room, not an exchange, and a coarse
// critical section avoids lock ordering between accounts and markets.
type Ledger struct {
	mu  sync.Mutex
	cfg Config

	accounts     map[int64]*Account
	accountOrder []int64 // insertion order, the leaderboard tie-breaker

	open map[int64]*Market
	past map[int64]*Market

	nextMarketID int64
	nextWagerID  int64

	minWager decimal.Decimal
	maxWager decimal.Decimal
}

// New creates an empty ledger.
func New(cfg Config) *Ledger {
	def := DefaultConfig()
	if cfg.StartingBalance.IsZero() {
		cfg.StartingBalance = def.StartingBalance
	}
	if cfg.MinWager.IsZero() {
		cfg.MinWager = def.MinWager
	}
	if cfg.MaxWager.IsZero() {
		cfg.MaxWager = def.MaxWager
	}
	if cfg.DailyReward.IsZero() {
		cfg.DailyReward = def.DailyReward
	}
	if cfg.Timezone == nil {
		cfg.Timezone = def.Timezone
	}
	if len(cfg.Vocabulary.Yes) == 0 || len(cfg.Vocabulary.No) == 0 {
		cfg.Vocabulary = def.Vocabulary
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Ledger{
		cfg:      cfg,
		accounts: make(map[int64]*Account),
		open:     make(map[int64]*Market),
		past:     make(map[int64]*Market),
		minWager: cfg.MinWager,
		maxWager: cfg.MaxWager,
	}
}

// CreateMarket opens a new market with fixed "yes"-side odds and returns
// its id plus a one-line announcement. Odds of 1.0 or lower imply
// non-positive return and are rejected.
func (l *Ledger) CreateMarket(description string, oddsYes decimal.Decimal) (int64, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if oddsYes.LessThanOrEqual(decimal.NewFromInt(1)) {
		return 0, "", fmt.Errorf("%w: odds must be greater than 1, got %s", ErrValidation, oddsYes)
	}

	l.nextMarketID++
	m := &Market{
		ID:          l.nextMarketID,
		Description: description,
		OddsYes:     oddsYes,
		CreatedAt:   l.cfg.Now(),
	}
	l.open[m.ID] = m

	return m.ID, m.Header(), nil
}

// PlaceWager escrows the stake and records a wager for the account on the
// given market side. The account is created with the starting balance on
// first sight. Validation fully precedes mutation.
func (l *Ledger) PlaceWager(marketID, accountID int64, name, sideToken string, amount decimal.Decimal) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.Sign() <= 0 || amount.LessThan(l.minWager) {
		return "", fmt.Errorf("%w: amount is below the minimum of %s", ErrValidation, money(l.minWager))
	}
	if amount.GreaterThan(l.maxWager) {
		return "", fmt.Errorf("%w: amount is above the maximum of %s", ErrValidation, money(l.maxWager))
	}

	acct := l.getOrCreate(accountID, name)
	if !acct.HasFunds(amount) {
		return "", fmt.Errorf("%w: you have %s", ErrInsufficientFunds, money(acct.Balance))
	}

	m, err := l.wagerableMarket(marketID)
	if err != nil {
		return "", err
	}

	side, err := l.cfg.Vocabulary.Parse(sideToken)
	if err != nil {
		return "", err
	}

	l.nextWagerID++
	w := &Wager{
		ID:         l.nextWagerID,
		AccountID:  accountID,
		MarketID:   marketID,
		Side:       side,
		Amount:     amount,
		Resolution: ResolutionPending,
		PlacedAt:   l.cfg.Now(),
	}
	acct.Balance = acct.Balance.Sub(amount)
	acct.Open = append(acct.Open, w)
	m.Wagers = append(m.Wagers, w)

	return fmt.Sprintf("%s's %s bet placed successfully.", acct.Name, money(amount)), nil
}

// ResolveMarket fixes the market's outcome and settles every wager against
// it atomically: winners are credited stake times odds, profit/loss moves
// by the net amount, and each settled wager moves to its account's settled
// list. Resolving an already-resolved market is an error, never a silent
// no-op, to prevent double payout.
func (l *Ledger) ResolveMarket(marketID int64, outcomeToken string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	outcome, err := l.cfg.Vocabulary.Parse(outcomeToken)
	if err != nil {
		return "", err
	}

	if _, done := l.past[marketID]; done {
		return "", fmt.Errorf("%w: market %d is already resolved", ErrStateConflict, marketID)
	}
	m, ok := l.open[marketID]
	if !ok {
		return "", fmt.Errorf("%w: market %d (try the ongoing list)", ErrNotFound, marketID)
	}

	one := decimal.NewFromInt(1)
	touched := make(map[int64]struct{})
	for _, w := range m.Wagers {
		w.settle(outcome)
		acct := l.accounts[w.AccountID]
		if w.Resolution == ResolutionWon {
			odds := m.Odds(w.Side)
			acct.Balance = acct.Balance.Add(w.Amount.Mul(odds))
			acct.PnL = acct.PnL.Add(w.Amount.Mul(odds.Sub(one)))
		} else {
			acct.PnL = acct.PnL.Sub(w.Amount)
		}
		touched[w.AccountID] = struct{}{}
	}
	for id := range touched {
		l.accounts[id].archiveWagers(marketID)
	}

	m.Resolved = true
	m.Locked = true
	m.Outcome = outcome
	delete(l.open, marketID)
	l.past[marketID] = m

	return m.Detail(l.nameOf), nil
}

// LockMarket disables wagering on an unresolved market. Locking an
// already-locked market is an informational no-op.
func (l *Ledger) LockMarket(marketID int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.unresolvedMarket(marketID)
	if err != nil {
		return "", err
	}
	if m.Locked {
		return fmt.Sprintf("market <%d> is already locked.", marketID), nil
	}
	m.Locked = true
	return fmt.Sprintf("market <%d> locked; wagering disabled.", marketID), nil
}

// UnlockMarket re-enables wagering on a locked, unresolved market.
// Unlocking a resolved market is an error.
func (l *Ledger) UnlockMarket(marketID int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.unresolvedMarket(marketID)
	if err != nil {
		return "", err
	}
	if !m.Locked {
		return fmt.Sprintf("market <%d> is already open.", marketID), nil
	}
	m.Locked = false
	return fmt.Sprintf("market <%d> unlocked; wagering enabled.", marketID), nil
}

// CancelWager removes all of the account's wagers on an unresolved market
// and refunds the staked amounts. All-or-nothing per (account, market).
func (l *Ledger) CancelWager(accountID, marketID int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.unresolvedMarket(marketID)
	if err != nil {
		return "", err
	}

	acct, ok := l.accounts[accountID]
	if !ok {
		return "", fmt.Errorf("%w: no wagers to cancel", ErrNotFound)
	}

	kept := m.Wagers[:0]
	removed := 0
	for _, w := range m.Wagers {
		if w.AccountID == accountID {
			removed++
		} else {
			kept = append(kept, w)
		}
	}
	if removed == 0 {
		return "", fmt.Errorf("%w: %s has no wagers on market %d", ErrNotFound, acct.Name, marketID)
	}
	m.Wagers = kept

	refund := acct.removeWagers(marketID)
	acct.Balance = acct.Balance.Add(refund)

	return fmt.Sprintf("cancelled %d wager(s) on market <%d>; refunded %s to %s.", removed, marketID, money(refund), acct.Name), nil
}

// DailyReward credits the fixed reward once per calendar day in the
// configured timezone. Claiming at 23:59 and again at 00:01 the next day
// is allowed; the wait message while blocked is cosmetic.
func (l *Ledger) DailyReward(accountID int64, name string) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(accountID, name)
	today := l.today()

	if acct.LastClaimDay.Equal(today) {
		wait := today.AddDate(0, 0, 1).Sub(l.cfg.Now().In(l.cfg.Timezone))
		return false, fmt.Sprintf("%s you need to wait %s more to retrieve your daily reward!", acct.Name, formatWait(wait))
	}

	acct.Balance = acct.Balance.Add(l.cfg.DailyReward)
	acct.LastClaimDay = today
	return true, fmt.Sprintf("%s gained %s!", acct.Name, money(l.cfg.DailyReward))
}

// Money reports the account's current balance.
func (l *Ledger) Money(accountID int64, name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(accountID, name)
	return fmt.Sprintf("%s has %s.", acct.Name, money(acct.Balance))
}

// ListOpenMarkets renders every market accepting or holding live wagers,
// in creation order.
func (l *Ledger) ListOpenMarkets() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.renderMarkets(l.open)
	if out == "" {
		return "No ongoing markets."
	}
	return out
}

// ListPastMarkets renders every resolved market in creation order.
func (l *Ledger) ListPastMarkets() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.renderMarkets(l.past)
	if out == "" {
		return "No past markets."
	}
	return out
}

// ListAccountOpenWagers renders the account's live wagers and running PnL.
func (l *Ledger) ListAccountOpenWagers(accountID int64, name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(accountID, name)
	var b strings.Builder
	fmt.Fprintf(&b, "%s has total PnL %s.\n", acct.Name, signedMoney(acct.PnL))
	if len(acct.Open) == 0 {
		b.WriteString("No current bets.\n")
		return b.String()
	}
	b.WriteString("Live bets:\n")
	l.renderWagers(&b, acct, acct.Open)
	return b.String()
}

// ListAccountSettledWagers renders the account's settlement history.
func (l *Ledger) ListAccountSettledWagers(accountID int64, name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct := l.getOrCreate(accountID, name)
	var b strings.Builder
	fmt.Fprintf(&b, "%s has total PnL %s.\n", acct.Name, signedMoney(acct.PnL))
	if len(acct.Settled) == 0 {
		b.WriteString("No past bets.\n")
		return b.String()
	}
	b.WriteString("Past bets:\n")
	l.renderWagers(&b, acct, acct.Settled)
	return b.String()
}

// MoneyLeaderboard ranks all accounts by balance plus escrowed open
// stakes, ties broken by account creation order.
func (l *Ledger) MoneyLeaderboard() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ranked := l.rankedAccounts(func(a *Account) decimal.Decimal { return a.Worth() })
	var b strings.Builder
	b.WriteString("LEADERBOARD ($):\n")
	for i, acct := range ranked {
		fmt.Fprintf(&b, "%2d. %-15s %s\n", i+1, acct.Name, money(acct.Worth()))
	}
	return b.String()
}

// PnLLeaderboard ranks all accounts by cumulative settled profit/loss.
func (l *Ledger) PnLLeaderboard() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ranked := l.rankedAccounts(func(a *Account) decimal.Decimal { return a.PnL })
	var b strings.Builder
	b.WriteString("LEADERBOARD (PnL):\n")
	for i, acct := range ranked {
		fmt.Fprintf(&b, "%2d. %-15s %s\n", i+1, acct.Name, signedMoney(acct.PnL))
	}
	return b.String()
}

// SetMaxWager updates the global per-wager ceiling.
func (l *Ledger) SetMaxWager(newMax decimal.Decimal) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if newMax.LessThan(l.minWager) {
		return "", fmt.Errorf("%w: maximum wager cannot be below the minimum of %s", ErrValidation, money(l.minWager))
	}
	l.maxWager = newMax
	return fmt.Sprintf("maximum wager set to %s.", money(newMax)), nil
}

// MaxWager returns the current per-wager ceiling.
func (l *Ledger) MaxWager() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxWager
}

// MinWager returns the per-wager floor.
func (l *Ledger) MinWager() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minWager
}

// getOrCreate materializes the account on first interaction and refreshes
// its display name on every later one. Callers must hold l.mu.
func (l *Ledger) getOrCreate(accountID int64, name string) *Account {
	if acct, ok := l.accounts[accountID]; ok {
		if name != "" && acct.Name != name {
			acct.Name = name
		}
		return acct
	}
	acct := &Account{
		ID:      accountID,
		Name:    name,
		Balance: l.cfg.StartingBalance,
		PnL:     decimal.Zero,
	}
	l.accounts[accountID] = acct
	l.accountOrder = append(l.accountOrder, accountID)
	return acct
}

// wagerableMarket returns the market if it accepts new wagers.
func (l *Ledger) wagerableMarket(marketID int64) (*Market, error) {
	if _, done := l.past[marketID]; done {
		return nil, fmt.Errorf("%w: market %d is resolved", ErrStateConflict, marketID)
	}
	m, ok := l.open[marketID]
	if !ok {
		return nil, fmt.Errorf("%w: market %d (try the ongoing list)", ErrNotFound, marketID)
	}
	if m.Locked {
		return nil, fmt.Errorf("%w: market %d is locked", ErrStateConflict, marketID)
	}
	return m, nil
}

// unresolvedMarket returns the market if it has not been resolved.
func (l *Ledger) unresolvedMarket(marketID int64) (*Market, error) {
	if _, done := l.past[marketID]; done {
		return nil, fmt.Errorf("%w: market %d is resolved", ErrStateConflict, marketID)
	}
	m, ok := l.open[marketID]
	if !ok {
		return nil, fmt.Errorf("%w: market %d (try the ongoing list)", ErrNotFound, marketID)
	}
	return m, nil
}

func (l *Ledger) nameOf(accountID int64) string {
	if acct, ok := l.accounts[accountID]; ok && acct.Name != "" {
		return acct.Name
	}
	return fmt.Sprintf("user %d", accountID)
}

func (l *Ledger) renderMarkets(markets map[int64]*Market) string {
	ids := make([]int64, 0, len(markets))
	for id := range markets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(markets[id].Detail(l.nameOf))
	}
	return b.String()
}

func (l *Ledger) renderWagers(b *strings.Builder, acct *Account, wagers []*Wager) {
	for _, w := range wagers {
		m := l.marketByID(w.MarketID)
		if m == nil {
			continue
		}
		b.WriteString("\t" + w.Describe(acct.Name, m.Description, m.Odds(w.Side)) + "\n")
	}
}

func (l *Ledger) marketByID(marketID int64) *Market {
	if m, ok := l.open[marketID]; ok {
		return m
	}
	return l.past[marketID]
}

// rankedAccounts returns all accounts sorted descending by the given
// value, stable over insertion order.
func (l *Ledger) rankedAccounts(value func(*Account) decimal.Decimal) []*Account {
	ranked := make([]*Account, 0, len(l.accountOrder))
	for _, id := range l.accountOrder {
		ranked = append(ranked, l.accounts[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return value(ranked[i]).GreaterThan(value(ranked[j]))
	})
	return ranked
}

func (l *Ledger) today() time.Time {
	now := l.cfg.Now().In(l.cfg.Timezone)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, l.cfg.Timezone)
}

func formatWait(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dhr %02dm", hours, minutes)
}
