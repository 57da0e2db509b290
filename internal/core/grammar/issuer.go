package grammar

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sjf12/AACL/internal/core/domain"
	"github.com/Sjf12/AACL/internal/core/security"
)

type Issuer struct {
	accounts AccountReader
	grammars GrammarStore
	opts     options
}

func NewIssuer(accounts AccountReader, grammars GrammarStore, opts ...Option) *Issuer {
	return &Issuer{accounts: accounts, grammars: grammars, opts: buildOptions(opts)}
}

// Issue creates a grammar for intent bound to the user's current state.
// It fails with ErrUnknownUser or ErrUnsupportedIntent and stores nothing then.
func (i *Issuer) Issue(intentName, userID string) (domain.GrammarView, error) {
	// 1. Resolve the user
	account, err := i.accounts.Get(userID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.GrammarView{}, fmt.Errorf("%w: %s", domain.ErrUnknownUser, userID)
		}
		return domain.GrammarView{}, err
	}

	// 2. Only known intents get a grammar
	intent, err := domain.ParseIntent(intentName)
	if err != nil {
		return domain.GrammarView{}, err
	}

	// 3. Unguessable id and entropy
	id, err := security.NewGrammarID()
	if err != nil {
		return domain.GrammarView{}, err
	}
	entropy, err := security.NewEntropy()
	if err != nil {
		return domain.GrammarView{}, err
	}

	g := domain.Grammar{
		ID:      id,
		Intent:  intent,
		Entropy: entropy,
		State: domain.StateSnapshot{
			UserID:         account.ID,
			BalanceAtIssue: account.Balance,
		},
		ExpiresAt:    i.opts.now().Add(i.opts.ttl),
		RequiredKeys: intent.RequiredKeys(),
	}

	// 4. Store and hand out the public view
	i.grammars.Insert(g)
	slog.Info("Grammar issued", "grammar_id", g.ID, "intent", intent, "user_id", account.ID)

	return g.View(), nil
}
