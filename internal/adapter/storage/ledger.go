package storage

import (
	"sync"

	"github.com/Sjf12/AACL/internal/core/domain"
)

// HistoryLimit is how many transfers History returns
const HistoryLimit = 10

// Ledger records every executed transfer. It is the sink debited money moves to.
type Ledger struct {
	mu        sync.RWMutex
	transfers []domain.Transfer
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends an executed transfer
func (l *Ledger) Record(t domain.Transfer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transfers = append(l.transfers, t)
}

// History returns the latest transfers sent by accountID, newest first
func (l *Ledger) History(accountID string) []domain.Transfer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := []domain.Transfer{}
	for i := len(l.transfers) - 1; i >= 0 && len(history) < HistoryLimit; i-- {
		if l.transfers[i].SenderID == accountID {
			history = append(history, l.transfers[i])
		}
	}
	return history
}

// Total sums every recorded transfer
func (l *Ledger) Total() domain.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total domain.Money
	for _, t := range l.transfers {
		total = total.Add(t.Amount)
	}
	return total
}
