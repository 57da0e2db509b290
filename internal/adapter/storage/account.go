package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Sjf12/AACL/internal/core/domain"
)

// AccountStore holds balances in memory. Accounts are loaded once at
// startup and never created or removed afterwards.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountStore(accounts []domain.Account) (*AccountStore, error) {
	s := &AccountStore{accounts: make(map[string]*domain.Account, len(accounts))}
	for _, acc := range accounts {
		if acc.ID == "" {
			return nil, fmt.Errorf("account with empty id")
		}
		if acc.Balance < 0 {
			return nil, fmt.Errorf("account %s: negative balance %s", acc.ID, acc.Balance)
		}
		if _, dup := s.accounts[acc.ID]; dup {
			return nil, fmt.Errorf("duplicate account id %s", acc.ID)
		}
		s.accounts[acc.ID] = &acc
	}
	return s, nil
}

// Get returns a copy of the account
func (s *AccountStore) Get(userID string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, userID)
	}
	return *acc, nil
}

// Debit subtracts amount from the balance in one locked step.
// It fails with ErrInsufficientFunds when amount exceeds the balance.
func (s *AccountStore) Debit(userID string, amount domain.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, userID)
	}

	balance, err := acc.Balance.Subtract(amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", userID, err)
	}
	acc.Balance = balance
	return nil
}

// Accounts lists every account ordered by id
func (s *AccountStore) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, *acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TotalBalance sums every balance under one lock
func (s *AccountStore) TotalBalance() domain.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total domain.Money
	for _, acc := range s.accounts {
		total = total.Add(acc.Balance)
	}
	return total
}
