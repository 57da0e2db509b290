package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/Sjf12/AACL/internal/core/domain"
)

// GrammarRegistry keeps outstanding grammars in memory.
//
// The map is guarded by mu; each entry has its own lock so redeeming
// one grammar never waits on another.
type GrammarRegistry struct {
	mu      sync.RWMutex
	entries map[string]*grammarEntry
}

type grammarEntry struct {
	mu      sync.Mutex
	grammar domain.Grammar
}

func NewGrammarRegistry() *GrammarRegistry {
	return &GrammarRegistry{entries: make(map[string]*grammarEntry)}
}

// Insert stores the grammar and returns its id
func (r *GrammarRegistry) Insert(g domain.Grammar) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[g.ID] = &grammarEntry{grammar: g}
	return g.ID
}

// Get returns a copy of the stored grammar
func (r *GrammarRegistry) Get(id string) (domain.Grammar, error) {
	entry, ok := r.lookup(id)
	if !ok {
		return domain.Grammar{}, fmt.Errorf("%w: %s", domain.ErrGrammarNotFound, id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.grammar, nil
}

// TryConsume marks the grammar used and returns it as it was before.
// Of any number of concurrent calls for one id, exactly one succeeds.
func (r *GrammarRegistry) TryConsume(id string) (domain.Grammar, error) {
	return r.Redeem(id, func(domain.Grammar) error { return nil })
}

// Redeem runs fn while holding the grammar's lock. The grammar is marked
// used if and only if fn returns nil, before the lock is released, so a
// side effect performed inside fn happens at most once per grammar.
func (r *GrammarRegistry) Redeem(id string, fn func(domain.Grammar) error) (domain.Grammar, error) {
	entry, ok := r.lookup(id)
	if !ok {
		return domain.Grammar{}, fmt.Errorf("%w: %s", domain.ErrGrammarNotFound, id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.grammar.Used {
		return domain.Grammar{}, fmt.Errorf("%w: %s", domain.ErrGrammarUsed, id)
	}

	before := entry.grammar
	if err := fn(before); err != nil {
		return domain.Grammar{}, err
	}

	entry.grammar.Used = true
	return before, nil
}

// Reap drops grammars that are used or past their deadline.
// Returns how many were removed.
func (r *GrammarRegistry) Reap(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.entries {
		// An entry being redeemed right now is skipped; the next pass gets it.
		if !entry.mu.TryLock() {
			continue
		}
		dead := entry.grammar.Used || entry.grammar.Expired(now)
		entry.mu.Unlock()

		if dead {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored grammars
func (r *GrammarRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *GrammarRegistry) lookup(id string) (*grammarEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	return entry, ok
}
