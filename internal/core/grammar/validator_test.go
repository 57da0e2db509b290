package grammar

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Sjf12/AACL/internal/core/domain"
)

func transferPayload(view domain.GrammarView, amount string) map[string]string {
	return map[string]string{
		"intent":       string(view.Intent),
		"state":        view.State,
		"entropy":      view.Entropy,
		"recipient_id": "456",
		"amount":       amount,
		"memo":         "x",
	}
}

func passwordPayload(view domain.GrammarView, newPassword, confirm string) map[string]string {
	return map[string]string{
		"intent":           string(view.Intent),
		"state":            view.State,
		"entropy":          view.Entropy,
		"current_password": "hunter2",
		"new_password":     newPassword,
		"confirm_password": confirm,
	}
}

func (f *fixture) balance(t *testing.T, userID string) domain.Money {
	t.Helper()
	acc, err := f.accounts.Get(userID)
	require.NoError(t, err)
	return acc.Balance
}

func TestTransferExecutesThenReplayRejects(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)
	payload := transferPayload(view, "1000")

	result := f.validator.Execute(view.GrammarID, payload)
	assert.Equal(t, domain.ResultExecuted, result)
	assert.Equal(t, domain.NewMoney(4000, 0), f.balance(t, "123"))

	// Replay
	result = f.validator.Execute(view.GrammarID, payload)
	assert.Equal(t, domain.ResultRejected, result)
	assert.Equal(t, domain.NewMoney(4000, 0), f.balance(t, "123"))

	history := f.ledger.History("123")
	require.Len(t, history, 1)
	assert.Equal(t, "456", history[0].RecipientID)
	assert.Equal(t, domain.NewMoney(1000, 0), history[0].Amount)
	assert.Equal(t, view.GrammarID, history[0].GrammarID)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "123", events[0].UserID)
	require.NotNil(t, events[0].Amount)
	assert.Equal(t, domain.NewMoney(1000, 0), *events[0].Amount)
}

func TestTransferRecipientNotCredited(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)
	require.True(t, f.validator.Execute(view.GrammarID, transferPayload(view, "10")).Executed())

	assert.Equal(t, domain.NewMoney(2500, 0), f.balance(t, "456"))
}

func TestChangePasswordMismatchRejects(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("CHANGE_PASSWORD", "123")
	require.NoError(t, err)

	result := f.validator.Execute(view.GrammarID, passwordPayload(view, "new-secret", "other-secret"))
	assert.Equal(t, domain.ResultRejected, result)

	// A failed check leaves the grammar usable
	stored, err := f.registry.Get(view.GrammarID)
	require.NoError(t, err)
	assert.False(t, stored.Used)

	result = f.validator.Execute(view.GrammarID, passwordPayload(view, "new-secret", "new-secret"))
	assert.Equal(t, domain.ResultExecuted, result)
	assert.Len(t, f.events.Events(), 1)
	assert.Nil(t, f.events.Events()[0].Amount)
}

func TestExpiredGrammarRejects(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)

	f.clock.Advance(5*time.Minute + time.Second)

	result := f.validator.Execute(view.GrammarID, transferPayload(view, "1000"))
	assert.Equal(t, domain.ResultRejected, result)
	assert.Equal(t, domain.NewMoney(5000, 0), f.balance(t, "123"))
}

func TestGrammarValidAtDeadline(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	assert.True(t, f.validator.Execute(view.GrammarID, transferPayload(view, "1")).Executed())
}

func TestInsufficientFundsRejectsWithoutMutation(t *testing.T) {
	f := newFixture(t, domain.Account{ID: "poor", DisplayName: "Poor", Balance: domain.NewMoney(100, 0)})

	view, err := f.issuer.Issue("TRANSFER_MONEY", "poor")
	require.NoError(t, err)

	result := f.validator.Execute(view.GrammarID, transferPayload(view, "500"))
	assert.Equal(t, domain.ResultRejected, result)
	assert.Equal(t, domain.NewMoney(100, 0), f.balance(t, "poor"))
	assert.Empty(t, f.ledger.History("poor"))
	assert.Empty(t, f.events.Events())
}

func TestLiveBalanceUsedNotSnapshot(t *testing.T) {
	f := newFixture(t, domain.Account{ID: "a", DisplayName: "A", Balance: domain.NewMoney(100, 0)})

	first, err := f.issuer.Issue("TRANSFER_MONEY", "a")
	require.NoError(t, err)
	second, err := f.issuer.Issue("TRANSFER_MONEY", "a")
	require.NoError(t, err)

	require.True(t, f.validator.Execute(first.GrammarID, transferPayload(first, "80")).Executed())

	// second was issued when the balance was 100, but only 20 is left now
	result := f.validator.Execute(second.GrammarID, transferPayload(second, "80"))
	assert.Equal(t, domain.ResultRejected, result)
	assert.Equal(t, domain.NewMoney(20, 0), f.balance(t, "a"))
}

func TestSchemaStrictness(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)

	extra := transferPayload(view, "1")
	extra["note"] = "sneaky"
	assert.Equal(t, domain.ResultRejected, f.validator.Execute(view.GrammarID, extra))

	missing := transferPayload(view, "1")
	delete(missing, "memo")
	assert.Equal(t, domain.ResultRejected, f.validator.Execute(view.GrammarID, missing))

	assert.Equal(t, domain.NewMoney(5000, 0), f.balance(t, "123"))
	assert.True(t, f.validator.Execute(view.GrammarID, transferPayload(view, "1")).Executed())
}

func TestIntentAndEntropyMustMatch(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)

	wrongEntropy := transferPayload(view, "1")
	wrongEntropy["entropy"] = "entropy-guessed"
	assert.Equal(t, domain.ResultRejected, f.validator.Execute(view.GrammarID, wrongEntropy))

	wrongIntent := transferPayload(view, "1")
	wrongIntent["intent"] = "CHANGE_PASSWORD"
	assert.Equal(t, domain.ResultRejected, f.validator.Execute(view.GrammarID, wrongIntent))

	// Entropy from another grammar does not help
	other, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultRejected, f.validator.Execute(view.GrammarID, transferPayload(other, "1")))
}

func TestUnknownGrammarRejects(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, domain.ResultRejected, f.validator.Execute("no-such-grammar", map[string]string{}))
}

func TestBadAmountsReject(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []string{"0", "-100", "abc", "1.001", ""} {
		view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
		require.NoError(t, err)
		assert.Equal(t, domain.ResultRejected, f.validator.Execute(view.GrammarID, transferPayload(view, amount)), amount)
	}
	assert.Equal(t, domain.NewMoney(5000, 0), f.balance(t, "123"))
}

func TestConcurrentExecuteSingleConsumption(t *testing.T) {
	f := newFixture(t)

	view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
	require.NoError(t, err)
	payload := transferPayload(view, "1000")

	var executed, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			if f.validator.Execute(view.GrammarID, payload).Executed() {
				executed.Add(1)
			} else {
				rejected.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), executed.Load())
	assert.Equal(t, int32(63), rejected.Load())
	assert.Equal(t, domain.NewMoney(4000, 0), f.balance(t, "123"))
	assert.Len(t, f.ledger.History("123"), 1)
}

func TestConcurrentTransfersConserveBalance(t *testing.T) {
	f := newFixture(t)
	start := f.accounts.TotalBalance()

	// 30 grammars of 250.00 each against 5000.00: only 20 can succeed
	views := make([]domain.GrammarView, 30)
	for i := range views {
		view, err := f.issuer.Issue("TRANSFER_MONEY", "123")
		require.NoError(t, err)
		views[i] = view
	}

	var executed atomic.Int32
	var g errgroup.Group
	for _, view := range views {
		g.Go(func() error {
			if f.validator.Execute(view.GrammarID, transferPayload(view, "250")).Executed() {
				executed.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(20), executed.Load())
	assert.Equal(t, domain.Money(0), f.balance(t, "123"))
	assert.Equal(t, start, f.accounts.TotalBalance().Add(f.ledger.Total()))
}
