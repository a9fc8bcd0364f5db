// Package savings implements target creation and the deposit ledger.
package savings

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/target"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage"
	apperrors "github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/errors"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/pkg/logger"
)

const msgInternal = "Internal server error"

// Service orchestrates savings targets and deposits.
type Service struct {
	store storage.SavingsStore
	users storage.UserStore
	log   *logger.Logger
}

// New creates the savings service.
func New(store storage.SavingsStore, users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("savings")
	}
	return &Service{store: store, users: users, log: log}
}

// CreateTargetParams carries the raw target input. Fine is a pointer
// so an explicit zero penalty can be told apart from an absent one.
type CreateTargetParams struct {
	Name        string
	Description string
	Objective   float64
	Deadline    string
	Fine        *float64
	Category    string
}

// CreateTarget creates a savings target owned by userID with a zero
// starting balance.
func (s *Service) CreateTarget(ctx context.Context, userID string, p CreateTargetParams) (target.Target, error) {
	if p.Name == "" || p.Objective == 0 || p.Deadline == "" || p.Fine == nil || p.Category == "" {
		return target.Target{}, apperrors.Validation("All fields are required")
	}

	created, err := s.store.CreateTarget(ctx, target.Target{
		UserID:      userID,
		Name:        p.Name,
		Description: p.Description,
		Objective:   p.Objective,
		Deadline:    p.Deadline,
		Fine:        *p.Fine,
		Category:    p.Category,
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("create target failed")
		return target.Target{}, apperrors.Internal(msgInternal, err)
	}
	return created, nil
}

// ListTargets returns all targets owned by userID.
func (s *Service) ListTargets(ctx context.Context, userID string) ([]target.Target, error) {
	targets, err := s.store.ListTargets(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(msgInternal, err)
	}
	return targets, nil
}

// Deposit records a deposit toward a target. The transaction record
// and the balance increment are committed together or not at all; a
// target that does not exist or belongs to another user reports not
// found and leaves no orphan transaction behind.
func (s *Service) Deposit(ctx context.Context, userID, targetID string, amount float64, number string) (target.Target, target.Transaction, error) {
	if targetID == "" || amount == 0 || number == "" {
		return target.Target{}, target.Transaction{}, apperrors.Validation("All fields are required")
	}

	updated, tx, err := s.store.Deposit(ctx, target.Transaction{
		TargetID:  targetID,
		UserID:    userID,
		Amount:    amount,
		Reference: uuid.NewString(),
		Tell:      number,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return target.Target{}, target.Transaction{}, apperrors.NotFound("Target not found")
		}
		s.log.WithError(err).WithFields(map[string]interface{}{
			"user_id":   userID,
			"target_id": targetID,
		}).Error("deposit failed")
		return target.Target{}, target.Transaction{}, apperrors.Internal(msgInternal, err)
	}
	return updated, tx, nil
}

// Summary is the profile header: names, initials and the total amount
// deposited across all targets.
type Summary struct {
	FirstName string  `json:"fname"`
	LastName  string  `json:"lname"`
	Initials  string  `json:"initials"`
	Amount    float64 `json:"amount"`
}

// Summarize builds the profile summary for userID.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Summary{}, apperrors.NotFound("User not found")
		}
		return Summary{}, apperrors.Internal(msgInternal, err)
	}

	total, err := s.store.SumDeposits(ctx, userID)
	if err != nil {
		return Summary{}, apperrors.Internal(msgInternal, err)
	}

	return Summary{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Initials:  u.Initials(),
		Amount:    total,
	}, nil
}
