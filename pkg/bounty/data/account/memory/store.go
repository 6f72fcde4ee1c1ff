package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
)

type journalContextKey struct{}

// journal holds the values accounts had before they were first modified
// within a transaction. A nil entry means the account didn't exist.
type journal struct {
	prior map[string]*account.Record
}

type store struct {
	mu      sync.Mutex
	records map[string]*account.Record
	last    uint64
}

func New() account.Store {
	return &store{
		records: make(map[string]*account.Record),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.records = make(map[string]*account.Record)
	s.last = 0
	s.mu.Unlock()
}

// ExecuteInTx runs fn such that all account changes it makes through the store
// are reverted if it returns an error. Changes are visible to other readers
// before fn completes, callers needing isolation must serialize on the
// accounts they modify.
func ExecuteInTx(ctx context.Context, s account.Store, fn func(context.Context) error) error {
	typed := s.(*store)

	if ctx.Value(journalContextKey{}) != nil {
		return fn(ctx)
	}

	j := &journal{
		prior: make(map[string]*account.Record),
	}

	err := fn(context.WithValue(ctx, journalContextKey{}, j))
	if err != nil {
		typed.rollback(j)
	}
	return err
}

// Create implements account.Store.Create
func (s *store) Create(ctx context.Context, data *account.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[data.Address]; ok {
		return account.ErrAccountExists
	}

	s.journal(ctx, data.Address)

	s.last++
	data.Id = s.last
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}
	data.LastUpdatedAt = data.CreatedAt

	c := data.Clone()
	s.records[data.Address] = &c

	return nil
}

// Update implements account.Store.Update
func (s *store) Update(ctx context.Context, data *account.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[data.Address]
	if !ok {
		return account.ErrAccountNotFound
	}

	s.journal(ctx, data.Address)

	updated := data.Clone()
	updated.Id = item.Id
	updated.Owner = item.Owner
	updated.CreatedAt = item.CreatedAt
	updated.LastUpdatedAt = time.Now()
	s.records[data.Address] = &updated

	updated.CopyTo(data)
	data.Data = append([]byte(nil), updated.Data...)

	return nil
}

// Delete implements account.Store.Delete
func (s *store) Delete(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[address]; !ok {
		return account.ErrAccountNotFound
	}

	s.journal(ctx, address)
	delete(s.records, address)

	return nil
}

// Get implements account.Store.Get
func (s *store) Get(_ context.Context, address string) (*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[address]
	if !ok {
		return nil, account.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string, dataPrefix []byte) ([]*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*account.Record
	for _, item := range s.records {
		if item.Owner == owner && item.HasDataPrefix(dataPrefix) {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Id < res[j].Id
	})
	return res, nil
}

// journal must be called with s.mu held, before the account is modified.
func (s *store) journal(ctx context.Context, address string) {
	j, ok := ctx.Value(journalContextKey{}).(*journal)
	if !ok {
		return
	}

	if _, ok := j.prior[address]; ok {
		return
	}

	if item, ok := s.records[address]; ok {
		cloned := item.Clone()
		j.prior[address] = &cloned
	} else {
		j.prior[address] = nil
	}
}

func (s *store) rollback(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for address, prior := range j.prior {
		if prior == nil {
			delete(s.records, address)
		} else {
			s.records[address] = prior
		}
	}
}
