package grammar

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Sjf12/AACL/internal/core/domain"
	"github.com/Sjf12/AACL/internal/core/security"
)

// Rejection reasons. They are logged, never returned to the caller.
var (
	errExpired          = errors.New("grammar expired")
	errIntentMismatch   = errors.New("intent mismatch")
	errEntropyMismatch  = errors.New("entropy mismatch")
	errSchemaMismatch   = errors.New("payload keys do not match grammar")
	errPasswordMismatch = errors.New("new and confirm password differ")
)

type Validator struct {
	accounts AccountDebiter
	grammars GrammarRedeemer
	ledger   TransferRecorder
	opts     options
}

func NewValidator(accounts AccountDebiter, grammars GrammarRedeemer, ledger TransferRecorder, opts ...Option) *Validator {
	return &Validator{accounts: accounts, grammars: grammars, ledger: ledger, opts: buildOptions(opts)}
}

// Execute checks payload against the grammar and, if every check passes,
// performs the action and consumes the grammar. All checks, the effect and
// the consume run under the grammar's lock, so a grammar executes at most once.
func (v *Validator) Execute(grammarID string, payload map[string]string) domain.Result {
	var event domain.ActionEvent

	g, err := v.grammars.Redeem(grammarID, func(g domain.Grammar) error {
		var err error
		event, err = v.check(g, payload)
		return err
	})
	if err != nil {
		slog.Debug("Grammar rejected", "grammar_id", grammarID, "reason", err)
		return domain.ResultRejected
	}

	slog.Info("✅ Action executed", "grammar_id", g.ID, "intent", g.Intent, "user_id", g.State.UserID)
	if v.opts.events != nil {
		v.opts.events.Publish(event)
	}
	return domain.ResultExecuted
}

func (v *Validator) check(g domain.Grammar, payload map[string]string) (domain.ActionEvent, error) {
	now := v.opts.now()

	// 1. Time box
	if g.Expired(now) {
		return domain.ActionEvent{}, errExpired
	}

	// 2. Payload must echo intent and entropy
	if payload[domain.KeyIntent] != string(g.Intent) {
		return domain.ActionEvent{}, errIntentMismatch
	}
	if !security.Equal(payload[domain.KeyEntropy], g.Entropy) {
		return domain.ActionEvent{}, errEntropyMismatch
	}

	// 3. Exactly the required keys, nothing more or less
	if !sameKeys(payload, g.RequiredKeys) {
		return domain.ActionEvent{}, errSchemaMismatch
	}

	// 4. The sender is whoever the grammar was issued to
	sender := g.State.UserID
	if _, err := v.accounts.Get(sender); err != nil {
		return domain.ActionEvent{}, err
	}

	event := domain.ActionEvent{
		GrammarID:  g.ID,
		Intent:     g.Intent,
		UserID:     sender,
		OccurredAt: now,
	}

	// 5. Intent rules and effect
	switch g.Intent {
	case domain.ChangePassword:
		if payload["new_password"] != payload["confirm_password"] {
			return domain.ActionEvent{}, errPasswordMismatch
		}

	case domain.TransferMoney:
		amount, err := domain.ParseMoney(payload["amount"])
		if err != nil {
			return domain.ActionEvent{}, err
		}
		// Debit re-checks the live balance, not the snapshot
		if err := v.accounts.Debit(sender, amount); err != nil {
			return domain.ActionEvent{}, err
		}

		transfer := domain.Transfer{
			ID:          uuid.New(),
			GrammarID:   g.ID,
			SenderID:    sender,
			RecipientID: payload["recipient_id"],
			Amount:      amount,
			Memo:        payload["memo"],
			CreatedAt:   now,
		}
		v.ledger.Record(transfer)

		event.RecipientID = transfer.RecipientID
		event.Amount = &transfer.Amount
		event.Memo = transfer.Memo

	default:
		return domain.ActionEvent{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedIntent, g.Intent)
	}

	return event, nil
}

func sameKeys(payload map[string]string, required []string) bool {
	if len(payload) != len(required) {
		return false
	}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			return false
		}
	}
	return true
}
