// Package memory is an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended
// for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/target"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/user"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage"
)

// Store holds all records behind a single mutex, which also gives the
// deposit operation its both-or-neither semantics.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[string]user.User
	usersByEmail map[string]string
	usersByTell  map[string]string
	targets      map[string]target.Target
	transactions map[string][]target.Transaction // keyed by user id
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SavingsStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		usersByTell:  make(map[string]string),
		targets:      make(map[string]target.Target),
		transactions: make(map[string][]target.Transaction),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return user.User{}, storage.ErrDuplicate
	}
	if _, exists := s.usersByTell[u.Tell]; exists {
		return user.User{}, storage.ErrDuplicate
	}

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	s.usersByTell[u.Tell] = u.ID
	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.RLock()
	id, ok := s.usersByEmail[email]
	s.mu.RUnlock()
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByTell(ctx context.Context, tell string) (user.User, error) {
	s.mu.RLock()
	id, ok := s.usersByTell[tell]
	s.mu.RUnlock()
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByCode(_ context.Context, code string, now time.Time) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.VerificationCode == code && u.CodeExpiresAt.After(now) {
			return u, nil
		}
	}
	return user.User{}, storage.ErrNotFound
}

func (s *Store) MarkVerified(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationCode = ""
	u.CodeExpiresAt = time.Time{}
	u.VerifiedAt = at.UTC()
	s.users[id] = u
	return nil
}

func (s *Store) SetVerification(_ context.Context, id, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.VerificationCode = code
	u.CodeExpiresAt = expiresAt
	s.users[id] = u
	return nil
}

func (s *Store) StampLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.LastLogin = at.UTC()
	s.users[id] = u
	return nil
}

// --- SavingsStore -----------------------------------------------------------

func (s *Store) CreateTarget(_ context.Context, t target.Target) (target.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	}
	t.CurrentAmount = 0
	t.CreatedAt = time.Now().UTC()
	s.targets[t.ID] = t
	return t, nil
}

func (s *Store) ListTargets(_ context.Context, userID string) ([]target.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []target.Target
	for _, t := range s.targets {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *Store) Deposit(_ context.Context, tx target.Transaction) (target.Target, target.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.targets[tx.TargetID]
	if !ok || t.UserID != tx.UserID {
		return target.Target{}, target.Transaction{}, storage.ErrNotFound
	}

	if tx.ID == "" {
		tx.ID = s.nextIDLocked()
	}
	tx.CreatedAt = time.Now().UTC()

	t.CurrentAmount += tx.Amount
	s.targets[t.ID] = t
	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	return t, tx, nil
}

func (s *Store) SumDeposits(_ context.Context, userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, tx := range s.transactions[userID] {
		total += tx.Amount
	}
	return total, nil
}

// Transactions returns a copy of the user's deposit records. Test
// helper, not part of the storage interfaces.
func (s *Store) Transactions(userID string) []target.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]target.Transaction, len(s.transactions[userID]))
	copy(out, s.transactions[userID])
	return out
}
