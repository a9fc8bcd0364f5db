// Package storage defines the persistence interfaces consumed by the
// application services.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/target"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/user"
)

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the requesting user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (email or phone already registered).
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore persists account records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByTell(ctx context.Context, tell string) (user.User, error)
	// GetUserByCode finds the user holding the verification code with
	// an expiry after now.
	GetUserByCode(ctx context.Context, code string, now time.Time) (user.User, error)
	// MarkVerified flips the user to verified, clears the code and its
	// expiry and stamps verified_at.
	MarkVerified(ctx context.Context, id string, at time.Time) error
	// SetVerification overwrites the stored code and expiry,
	// invalidating any previously issued code.
	SetVerification(ctx context.Context, id, code string, expiresAt time.Time) error
	StampLastLogin(ctx context.Context, id string, at time.Time) error
}

// SavingsStore persists targets and their deposit transactions.
type SavingsStore interface {
	CreateTarget(ctx context.Context, t target.Target) (target.Target, error)
	ListTargets(ctx context.Context, userID string) ([]target.Target, error)
	// Deposit atomically inserts the transaction and increments the
	// owning target's balance. If the target does not exist or is not
	// owned by tx.UserID, nothing is written and ErrNotFound is
	// returned.
	Deposit(ctx context.Context, tx target.Transaction) (target.Target, target.Transaction, error)
	// SumDeposits returns the total amount the user has deposited
	// across all targets.
	SumDeposits(ctx context.Context, userID string) (float64, error)
}
