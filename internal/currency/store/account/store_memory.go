// Package account stores currency balances. Dead accounts are not stored and
// read back as the zero account.
package account

import (
	"context"
	"sync"

	"regionx/internal/currency/models"
	"regionx/pkg/domain"
	"regionx/pkg/platform/tx"
)

type InMemory struct {
	mu       sync.RWMutex
	accounts map[domain.AccountID]models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[domain.AccountID]models.Account)}
}

func (s *InMemory) Find(_ context.Context, who domain.AccountID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[who], nil
}

// Save writes the account and journals the previous value.
func (s *InMemory) Save(ctx context.Context, who domain.AccountID, a models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.accounts[who]
	if a.Dead() {
		delete(s.accounts, who)
	} else {
		s.accounts[who] = a
	}
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.accounts[who] = prev
		} else {
			delete(s.accounts, who)
		}
	})
	return nil
}

// Total sums every free and reserved balance, saturating.
func (s *InMemory) Total(_ context.Context) (domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total domain.Balance
	for _, a := range s.accounts {
		total = total.SaturatingAdd(a.Free).SaturatingAdd(a.Reserved)
	}
	return total, nil
}
