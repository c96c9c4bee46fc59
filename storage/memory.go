package storage

import (
	"context"
	"sync"

	"banking-ledger/model"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. A single mutex serializes every
// operation, and accounts are cloned on the way in and out so callers never
// share state with the store.
type MemoryStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]model.Customer
	accounts  map[string]*model.Account
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[uuid.UUID]model.Customer),
		accounts:  make(map[string]*model.Account),
	}
}

func (m *MemoryStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customers[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[acc.Number()]; ok {
		return ErrDuplicateAccountNumber
	}
	acc.MarkPersisted()
	m.accounts[acc.Number()] = acc.Clone()
	return nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[number]
	if !ok {
		return nil, ErrNotFound
	}
	return acc.Clone(), nil
}

func (m *MemoryStore) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.accounts[number]
	return ok, nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, number string, fn UpdateFunc) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.accounts[number]
	if !ok {
		return nil, ErrNotFound
	}

	acc := stored.Clone()
	if err := fn(acc); err != nil {
		return nil, err
	}
	acc.MarkPersisted()
	m.accounts[number] = acc.Clone()
	return acc, nil
}

func (m *MemoryStore) Close() {}

// Compile-time check: ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
