package domain

import (
	"fmt"
	"time"
)

type Intent string

const (
	ChangePassword Intent = "CHANGE_PASSWORD"
	TransferMoney  Intent = "TRANSFER_MONEY"
)

// Payload keys shared by every intent
const (
	KeyIntent  = "intent"
	KeyState   = "state"
	KeyEntropy = "entropy"
)

var requiredKeys = map[Intent][]string{
	ChangePassword: {KeyIntent, KeyState, KeyEntropy, "current_password", "new_password", "confirm_password"},
	TransferMoney:  {KeyIntent, KeyState, KeyEntropy, "recipient_id", "amount", "memo"},
}

// ParseIntent returns ErrUnsupportedIntent for anything outside the known intents.
// The result is always one of the package constants, never s itself, so it
// stays valid when s points into a reused request buffer.
func ParseIntent(s string) (Intent, error) {
	switch s {
	case string(ChangePassword):
		return ChangePassword, nil
	case string(TransferMoney):
		return TransferMoney, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedIntent, s)
}

// RequiredKeys returns a fresh copy of the key set an intent's payload must carry.
func (i Intent) RequiredKeys() []string {
	keys := requiredKeys[i]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// StateSnapshot binds a grammar to the sender and their balance at issue time.
type StateSnapshot struct {
	UserID         string
	BalanceAtIssue Money
}

// String renders the snapshot the way clients see it in the "state" field.
func (s StateSnapshot) String() string {
	return fmt.Sprintf("AUTHENTICATED|USER_%s|BALANCE_%s", s.UserID, s.BalanceAtIssue)
}

// Grammar is a single-use, time-boxed capability for one action.
type Grammar struct {
	ID           string
	Intent       Intent
	State        StateSnapshot
	Entropy      string
	ExpiresAt    time.Time
	Used         bool
	RequiredKeys []string
}

// Expired reports whether now is past the grammar's deadline
func (g Grammar) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}

// GrammarView is what the client receives. Used is never exposed.
type GrammarView struct {
	GrammarID    string    `json:"grammar_id"`
	Intent       Intent    `json:"intent"`
	State        string    `json:"state"`
	Entropy      string    `json:"entropy"`
	ExpiresAt    time.Time `json:"expires_at"`
	RequiredKeys []string  `json:"required_keys"`
}

// View builds the public representation
func (g Grammar) View() GrammarView {
	keys := make([]string, len(g.RequiredKeys))
	copy(keys, g.RequiredKeys)
	return GrammarView{
		GrammarID:    g.ID,
		Intent:       g.Intent,
		State:        g.State.String(),
		Entropy:      g.Entropy,
		ExpiresAt:    g.ExpiresAt.UTC(),
		RequiredKeys: keys,
	}
}

// Status values returned by execution
const (
	StatusExecuted = "ACTION_EXECUTED"
	StatusRejected = "REJECTED"
)

// Result is the only thing an execute caller learns. It never says which check failed.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var (
	ResultExecuted = Result{Status: StatusExecuted, Message: "Success! Action performed."}
	ResultRejected = Result{Status: StatusRejected, Message: "Invalid, expired, or already used request."}
)

// Executed reports whether the action ran
func (r Result) Executed() bool {
	return r.Status == StatusExecuted
}
