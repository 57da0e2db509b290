// Package grammar issues single-use action grammars and executes payloads
// against them.
package grammar

import (
	"time"

	"github.com/Sjf12/AACL/internal/core/domain"
)

// DefaultTTL is how long an issued grammar stays valid
const DefaultTTL = 5 * time.Minute

// AccountReader resolves users
type AccountReader interface {
	Get(userID string) (domain.Account, error)
}

// AccountDebiter can also take money out of an account atomically
type AccountDebiter interface {
	AccountReader
	Debit(userID string, amount domain.Money) error
}

// GrammarStore keeps issued grammars
type GrammarStore interface {
	Insert(g domain.Grammar) string
}

// GrammarRedeemer runs a check under the grammar's lock and consumes it on success
type GrammarRedeemer interface {
	Redeem(id string, fn func(domain.Grammar) error) (domain.Grammar, error)
}

// TransferRecorder keeps executed transfers
type TransferRecorder interface {
	Record(t domain.Transfer)
}

// EventPublisher is told about executed actions. Publish must not block.
type EventPublisher interface {
	Publish(e domain.ActionEvent)
}

// Option configures an Issuer or a Validator
type Option func(*options)

type options struct {
	now    func() time.Time
	ttl    time.Duration
	events EventPublisher
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTTL changes the validity window of issued grammars. Only tests use it;
// the server always issues with DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithEvents publishes executed actions
func WithEvents(p EventPublisher) Option {
	return func(o *options) { o.events = p }
}
