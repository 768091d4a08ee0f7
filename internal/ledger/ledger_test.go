package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestLedger() *Ledger {
	cfg := DefaultConfig()
	cfg.Timezone = time.UTC
	cfg.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return New(cfg)
}

func TestCreateMarket(t *testing.T) {
	l := newTestLedger()

	id, msg, err := l.CreateMarket("Oslo gets a penta this game", dec("2.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Contains(t, msg, `<1> "Oslo gets a penta this game" @ $2.00`)

	id2, _, err := l.CreateMarket("second", dec("3.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), id2)
}

func TestCreateMarketInvalidOdds(t *testing.T) {
	l := newTestLedger()

	tests := []struct {
		name string
		odds string
	}{
		{"odds of one", "1.00"},
		{"odds below one", "0.5"},
		{"zero odds", "0"},
		{"negative odds", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := l.CreateMarket("bad odds", dec(tt.odds))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, "No ongoing markets.", l.ListOpenMarkets())
}

func TestPlaceWagerValidation(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("test market", dec("2.00"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		marketID int64
		side     string
		amount   string
		wantErr  error
	}{
		{"zero amount", 1, "y", "0", ErrValidation},
		{"negative amount", 1, "y", "-100", ErrValidation},
		{"below minimum", 1, "y", "0.5", ErrValidation},
		{"above maximum", 1, "y", "5001", ErrValidation},
		{"stake over balance", 1, "y", "4999", ErrInsufficientFunds},
		{"unknown market", 42, "y", "100", ErrNotFound},
		{"bad side token", 1, "xxx", "100", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// account 7 starts with a small balance for the funds case
			if tt.wantErr == ErrInsufficientFunds {
				acct := l.getOrCreate(7, "poor")
				acct.Balance = dec("100")
			}
			_, err := l.PlaceWager(tt.marketID, 7, "poor", tt.side, dec(tt.amount))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// No wager was created and no balance moved by any failing call
	m := l.open[1]
	assert.Empty(t, m.Wagers)
	assert.True(t, l.accounts[7].Balance.Equal(dec("100")))
	assert.Empty(t, l.accounts[7].Open)
}

func TestPlaceWagerEscrowsStake(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("test market", dec("2.00"))
	require.NoError(t, err)

	msg, err := l.PlaceWager(1, 1, "alice", "yes", dec("500"))
	require.NoError(t, err)
	assert.Contains(t, msg, "alice's $500.00 bet placed successfully.")

	acct := l.accounts[1]
	assert.True(t, acct.Balance.Equal(dec("9500")))
	require.Len(t, acct.Open, 1)
	assert.Equal(t, SideYes, acct.Open[0].Side)
	assert.Equal(t, ResolutionPending, acct.Open[0].Resolution)
	require.Len(t, l.open[1].Wagers, 1)
	assert.Same(t, acct.Open[0], l.open[1].Wagers[0])
}

func TestInsufficientFundsIncludesBalance(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("test market", dec("2.00"))
	require.NoError(t, err)

	acct := l.getOrCreate(1, "alice")
	acct.Balance = dec("250")

	_, err = l.PlaceWager(1, 1, "alice", "y", dec("300"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "$250.00")
}

// TestSettlementScenario runs the canonical two-account settlement:
// odds 2.00, A stakes 500 on yes, B stakes 500 on no, yes wins.
func TestSettlementScenario(t *testing.T) {
	l := newTestLedger()

	id, _, err := l.CreateMarket("X wins", dec("2.00"))
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	_, err = l.PlaceWager(1, 1, "A", "yes", dec("500"))
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 2, "B", "no", dec("500"))
	require.NoError(t, err)

	assert.True(t, l.accounts[1].Balance.Equal(dec("9500")))
	assert.True(t, l.accounts[2].Balance.Equal(dec("9500")))

	report, err := l.ResolveMarket(1, "yes")
	require.NoError(t, err)
	assert.Contains(t, report, "RESULT: YES")
	assert.Contains(t, report, "BELIEVER: A won $1000.00")
	assert.Contains(t, report, "DOUBTER:  B lost $500.00")

	a, b := l.accounts[1], l.accounts[2]
	assert.True(t, a.Balance.Equal(dec("10500")), "A balance = %s", a.Balance)
	assert.True(t, a.PnL.Equal(dec("500")), "A pnl = %s", a.PnL)
	assert.True(t, b.Balance.Equal(dec("9500")), "B balance = %s", b.Balance)
	assert.True(t, b.PnL.Equal(dec("-500")), "B pnl = %s", b.PnL)

	// Wagers moved to the settled lists, market moved to past
	assert.Empty(t, a.Open)
	assert.Empty(t, b.Open)
	require.Len(t, a.Settled, 1)
	require.Len(t, b.Settled, 1)
	assert.Equal(t, ResolutionWon, a.Settled[0].Resolution)
	assert.Equal(t, ResolutionLost, b.Settled[0].Resolution)
	assert.Empty(t, l.open)
	assert.Len(t, l.past, 1)
}

func TestResolveMarketStateMachine(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("X wins", dec("2.00"))
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 1, "A", "y", dec("500"))
	require.NoError(t, err)

	_, err = l.ResolveMarket(1, "y")
	require.NoError(t, err)

	balance := l.accounts[1].Balance
	pnl := l.accounts[1].PnL

	// A second resolution always errors and never mutates state
	_, err = l.ResolveMarket(1, "n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStateConflict)
	assert.True(t, l.accounts[1].Balance.Equal(balance))
	assert.True(t, l.accounts[1].PnL.Equal(pnl))

	// Wagering on a resolved market errors
	_, err = l.PlaceWager(1, 2, "B", "y", dec("100"))
	assert.ErrorIs(t, err, ErrStateConflict)

	// Unlocking a resolved market errors
	_, err = l.UnlockMarket(1)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestResolveInvalidTokenMutatesNothing(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("X wins", dec("2.00"))
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 1, "A", "y", dec("500"))
	require.NoError(t, err)

	_, err = l.ResolveMarket(1, "xxx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Len(t, l.open, 1)
	assert.Equal(t, ResolutionPending, l.accounts[1].Open[0].Resolution)
}

func TestLockUnlock(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("X wins", dec("2.00"))
	require.NoError(t, err)

	msg, err := l.LockMarket(1)
	require.NoError(t, err)
	assert.Contains(t, msg, "locked")

	// Locking twice is an informational no-op, not an error
	msg, err = l.LockMarket(1)
	require.NoError(t, err)
	assert.Contains(t, msg, "already locked")
	assert.True(t, l.open[1].Locked)

	// Wagering is disabled while locked
	_, err = l.PlaceWager(1, 1, "A", "y", dec("100"))
	assert.ErrorIs(t, err, ErrStateConflict)

	msg, err = l.UnlockMarket(1)
	require.NoError(t, err)
	assert.Contains(t, msg, "unlocked")

	// And re-enabled after unlock
	_, err = l.PlaceWager(1, 1, "A", "y", dec("100"))
	assert.NoError(t, err)

	// Unlocking an open market is also informational
	msg, err = l.UnlockMarket(1)
	require.NoError(t, err)
	assert.Contains(t, msg, "already open")

	// Unknown market
	_, err = l.LockMarket(9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelWager(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("X wins", dec("2.00"))
	require.NoError(t, err)

	_, err = l.PlaceWager(1, 1, "A", "y", dec("300"))
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 1, "A", "n", dec("200"))
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 2, "B", "y", dec("100"))
	require.NoError(t, err)

	msg, err := l.CancelWager(1, 1)
	require.NoError(t, err)
	assert.Contains(t, msg, "refunded $500.00 to A")

	// Both of A's wagers refunded and removed from both lists; B untouched
	assert.True(t, l.accounts[1].Balance.Equal(dec("10000")))
	assert.Empty(t, l.accounts[1].Open)
	require.Len(t, l.open[1].Wagers, 1)
	assert.Equal(t, int64(2), l.open[1].Wagers[0].AccountID)

	// Nothing left to cancel
	_, err = l.CancelWager(1, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Unknown account
	_, err = l.CancelWager(99, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Cancellation is allowed while locked but not after resolution
	_, err = l.LockMarket(1)
	require.NoError(t, err)
	_, err = l.CancelWager(2, 1)
	require.NoError(t, err)
	assert.True(t, l.accounts[2].Balance.Equal(dec("10000")))

	_, err = l.PlaceWager(1, 2, "B", "y", dec("100"))
	require.ErrorIs(t, err, ErrStateConflict) // still locked
	_, err = l.UnlockMarket(1)
	require.NoError(t, err)
	_, err = l.PlaceWager(1, 2, "B", "y", dec("100"))
	require.NoError(t, err)
	_, err = l.ResolveMarket(1, "y")
	require.NoError(t, err)
	_, err = l.CancelWager(2, 1)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestSetMaxWager(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("test", dec("2.00"))
	require.NoError(t, err)

	_, err = l.SetMaxWager(dec("0.5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, l.MaxWager().Equal(dec("5000")))

	msg, err := l.SetMaxWager(dec("1000"))
	require.NoError(t, err)
	assert.Contains(t, msg, "$1000.00")

	_, err = l.PlaceWager(1, 1, "A", "y", dec("1001"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = l.PlaceWager(1, 1, "A", "y", dec("1000"))
	assert.NoError(t, err)
}

func TestDailyReward(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = time.UTC
	current := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	cfg.Now = func() time.Time { return current }
	l := New(cfg)

	granted, msg := l.DailyReward(1, "A")
	assert.True(t, granted)
	assert.Contains(t, msg, "A gained $100.00!")
	assert.True(t, l.accounts[1].Balance.Equal(dec("10100")))

	// Second claim the same day is blocked with the remaining wait
	granted, msg = l.DailyReward(1, "A")
	assert.False(t, granted)
	assert.Contains(t, msg, "wait")
	assert.True(t, l.accounts[1].Balance.Equal(dec("10100")))

	// Two minutes later it is the next calendar day: allowed even though
	// less than 24 hours elapsed
	current = time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC)
	granted, _ = l.DailyReward(1, "A")
	assert.True(t, granted)
	assert.True(t, l.accounts[1].Balance.Equal(dec("10200")))
}

func TestDailyRewardOncePerDayOverNDays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = time.UTC
	current := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	cfg.Now = func() time.Time { return current }
	l := New(cfg)

	const days = 7
	for i := 0; i < days; i++ {
		granted, _ := l.DailyReward(1, "A")
		assert.True(t, granted, "day %d first claim", i)
		granted, _ = l.DailyReward(1, "A")
		assert.False(t, granted, "day %d second claim", i)
		current = current.AddDate(0, 0, 1)
	}

	expected := dec("10000").Add(dec("100").Mul(decimal.NewFromInt(days)))
	assert.True(t, l.accounts[1].Balance.Equal(expected))
}

func TestLeaderboards(t *testing.T) {
	l := newTestLedger()
	_, _, err := l.CreateMarket("test", dec("3.00"))
	require.NoError(t, err)

	// A ends up with escrowed stake, B with a settled win, C untouched
	_, err = l.PlaceWager(1, 1, "A", "y", dec("1000"))
	require.NoError(t, err)
	l.Money(2, "B")
	l.Money(3, "C")

	board := l.MoneyLeaderboard()
	lines := []string{"LEADERBOARD ($):", "A", "B", "C"}
	for _, want := range lines {
		assert.Contains(t, board, want)
	}

	// A's escrowed 1000 counts toward worth, so all three tie at 10000
	// and insertion order breaks the tie
	assert.Regexp(t, `(?s)1\. A.*2\. B.*3\. C`, board)

	_, err = l.PlaceWager(1, 2, "B", "n", dec("500"))
	require.NoError(t, err)
	_, err = l.ResolveMarket(1, "y")
	require.NoError(t, err)

	// A won 1000 at odds 3.00: pnl +2000; B lost 500
	pnlBoard := l.PnLLeaderboard()
	assert.Regexp(t, `(?s)1\. A\s+\$2000\.00.*2\. C\s+\$0\.00.*3\. B\s+-\$500\.00`, pnlBoard)

	moneyBoard := l.MoneyLeaderboard()
	assert.Regexp(t, `(?s)1\. A\s+\$12000\.00`, moneyBoard)
}

func TestListings(t *testing.T) {
	l := newTestLedger()

	assert.Equal(t, "No ongoing markets.", l.ListOpenMarkets())
	assert.Equal(t, "No past markets.", l.ListPastMarkets())

	_, _, err := l.CreateMarket("first", dec("2.00"))
	require.NoError(t, err)
	_, _, err = l.CreateMarket("second", dec("4.00"))
	require.NoError(t, err)
	_, err = l.PlaceWager(2, 1, "A", "n", dec("250"))
	require.NoError(t, err)

	open := l.ListOpenMarkets()
	assert.Regexp(t, `(?s)<1> "first" @ \$2\.00.*<2> "second" @ \$4\.00`, open)
	assert.Contains(t, open, "DOUBTER:  A bet $250.00")

	bets := l.ListAccountOpenWagers(1, "A")
	assert.Contains(t, bets, "A has total PnL $0.00.")
	assert.Contains(t, bets, "Live bets:")
	// The no-side odds of 4.00 derive to 4/3
	assert.Contains(t, bets, "A bet $250.00 @ $1.33 against second")

	_, err = l.ResolveMarket(2, "no")
	require.NoError(t, err)

	past := l.ListPastMarkets()
	assert.Contains(t, past, `<2> "second" @ $4.00`)
	assert.Contains(t, past, "RESULT: NO")

	hist := l.ListAccountSettledWagers(1, "A")
	assert.Contains(t, hist, "Past bets:")
	assert.Contains(t, hist, "A won $333.33 betting against second")
	assert.Contains(t, l.ListAccountOpenWagers(1, "A"), "No current bets.")
}

func TestDisplayNameRefresh(t *testing.T) {
	l := newTestLedger()
	l.Money(1, "old_name")
	out := l.Money(1, "new_name")
	assert.Contains(t, out, "new_name has")
	assert.Equal(t, "new_name", l.accounts[1].Name)
}

func TestDoubleSettleWagerPanics(t *testing.T) {
	w := &Wager{ID: 1, Side: SideYes, Amount: dec("10"), Resolution: ResolutionPending}
	w.settle(SideYes)
	assert.Panics(t, func() { w.settle(SideYes) })
}
