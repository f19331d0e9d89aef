package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"healthbot/internal/metrics"
	"healthbot/internal/model"
)

// ErrUserNotFound is returned for operations on an unknown user id.
var ErrUserNotFound = errors.New("user not found")

// Persistence loads and saves the full user mapping.
type Persistence interface {
	Load(ctx context.Context) (map[int64]*model.User, error)
	Save(ctx context.Context, users map[int64]*model.User) error
}

type storeEntry struct {
	mu   sync.Mutex
	user *model.User
}

// UserStore owns the in-memory user mapping. Every record has its own lock; saves are
// serialized and always write a full snapshot.
type UserStore struct {
	persistence Persistence

	mu    sync.RWMutex
	users map[int64]*storeEntry

	saveMu sync.Mutex
}

// NewUserStore loads the persisted mapping.
func NewUserStore(ctx context.Context, persistence Persistence) (*UserStore, error) {
	s := &UserStore{
		persistence: persistence,
		users:       make(map[int64]*storeEntry),
	}
	if persistence == nil {
		return s, nil
	}

	loaded, err := persistence.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for id, u := range loaded {
		if u.History == nil {
			u.History = make(map[model.Date]model.DaySnapshot)
		}
		s.users[id] = &storeEntry{user: u}
	}
	log.Printf("[info] loaded %d users", len(s.users))
	metrics.SetUsers(len(s.users))
	return s, nil
}

// Ensure creates an empty record for id unless one exists. It reports whether it created one.
func (s *UserStore) Ensure(id int64, today model.Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; ok {
		return false
	}
	s.users[id] = &storeEntry{user: model.NewUser(id, today)}
	metrics.SetUsers(len(s.users))
	return true
}

// Get returns a copy of the record.
func (s *UserStore) Get(id int64) (*model.User, bool) {
	e := s.entry(id)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user.Clone(), true
}

// Update runs fn with exclusive access to the record.
func (s *UserStore) Update(id int64, fn func(u *model.User) error) error {
	e := s.entry(id)
	if e == nil {
		return ErrUserNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.user)
}

// IDs lists known user ids in ascending order.
func (s *UserStore) IDs() []int64 {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RolloverAll applies EnsureCurrent to every record and returns how many rolled over.
func (s *UserStore) RolloverAll(today model.Date) int {
	rolled := 0
	for _, id := range s.IDs() {
		_ = s.Update(id, func(u *model.User) error {
			if EnsureCurrent(u, today) {
				rolled++
			}
			return nil
		})
	}
	if rolled > 0 {
		metrics.AddRollovers(rolled)
	}
	return rolled
}

// Snapshot deep-copies all records.
func (s *UserStore) Snapshot() map[int64]*model.User {
	out := make(map[int64]*model.User)
	for _, id := range s.IDs() {
		if u, ok := s.Get(id); ok {
			out[id] = u
		}
	}
	return out
}

// Save persists a full snapshot. Must not be called while holding a record lock.
func (s *UserStore) Save(ctx context.Context) error {
	if s.persistence == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.persistence.Save(ctx, s.Snapshot()); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// SaveOrLog saves and only logs a failure. In-memory state is kept either way.
func (s *UserStore) SaveOrLog(ctx context.Context) {
	if err := s.Save(ctx); err != nil {
		metrics.IncSaveFailure()
		log.Printf("[error] %v", err)
	}
}

func (s *UserStore) entry(id int64) *storeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[id]
}
