package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a user's wallet
type Account struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     Money  `json:"balance"`
}

// Transfer records an executed TRANSFER_MONEY action.
// The sender is debited; the ledger entry is where the money goes.
type Transfer struct {
	ID          uuid.UUID `json:"id"`
	GrammarID   string    `json:"grammar_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Amount      Money     `json:"amount"`
	Memo        string    `json:"memo"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventActionExecuted is the webhook event type sent after an action runs
const EventActionExecuted = "action.executed"

// ActionEvent describes an executed action for outside listeners.
type ActionEvent struct {
	GrammarID   string    `json:"grammar_id"`
	Intent      Intent    `json:"intent"`
	UserID      string    `json:"user_id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Amount      *Money    `json:"amount,omitempty"`
	Memo        string    `json:"memo,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
