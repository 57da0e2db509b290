package domain

import (
	"encoding/json"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	intent, err := ParseIntent("TRANSFER_MONEY")
	require.NoError(t, err)
	assert.Equal(t, TransferMoney, intent)

	_, err = ParseIntent("DELETE_ACCOUNT")
	assert.ErrorIs(t, err, ErrUnsupportedIntent)

	_, err = ParseIntent("transfer_money")
	assert.ErrorIs(t, err, ErrUnsupportedIntent)
}

func TestParseIntentDoesNotAliasInput(t *testing.T) {
	buf := []byte("TRANSFER_MONEY")
	// Same shape as a fiber route param: a string over a reusable buffer
	param := unsafe.String(&buf[0], len(buf))

	intent, err := ParseIntent(param)
	require.NoError(t, err)

	copy(buf, "XXXXXXXXXXXXXX")
	assert.Equal(t, TransferMoney, intent)
	assert.Equal(t, "TRANSFER_MONEY", string(intent))
}

func TestRequiredKeysAreCopied(t *testing.T) {
	keys := TransferMoney.RequiredKeys()
	assert.ElementsMatch(t, []string{"intent", "state", "entropy", "recipient_id", "amount", "memo"}, keys)

	keys[0] = "tampered"
	assert.Equal(t, "intent", TransferMoney.RequiredKeys()[0])

	assert.ElementsMatch(t,
		[]string{"intent", "state", "entropy", "current_password", "new_password", "confirm_password"},
		ChangePassword.RequiredKeys())
}

func TestStateSnapshotString(t *testing.T) {
	s := StateSnapshot{UserID: "123", BalanceAtIssue: NewMoney(5000, 0)}
	assert.Equal(t, "AUTHENTICATED|USER_123|BALANCE_5000.00", s.String())
}

func TestGrammarViewHidesUsed(t *testing.T) {
	g := Grammar{
		ID:           "g-1",
		Intent:       TransferMoney,
		State:        StateSnapshot{UserID: "123", BalanceAtIssue: 100},
		Entropy:      "entropy-abc",
		ExpiresAt:    time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC),
		Used:         true,
		RequiredKeys: TransferMoney.RequiredKeys(),
	}

	out, err := json.Marshal(g.View())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.NotContains(t, fields, "used")
	assert.Equal(t, "g-1", fields["grammar_id"])
	assert.Equal(t, "AUTHENTICATED|USER_123|BALANCE_1.00", fields["state"])
	assert.Equal(t, "2026-01-01T00:05:00Z", fields["expires_at"])
	assert.Len(t, fields["required_keys"], 6)
}

func TestGrammarExpired(t *testing.T) {
	deadline := time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	g := Grammar{ExpiresAt: deadline}

	assert.False(t, g.Expired(deadline))
	assert.False(t, g.Expired(deadline.Add(-time.Second)))
	assert.True(t, g.Expired(deadline.Add(time.Nanosecond)))
}
