// Package postgres implements the storage interfaces backed by
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/target"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/user"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage"
)

// Store implements the storage interfaces using a database handle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SavingsStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

// --- UserStore --------------------------------------------------------------

const userColumns = `id, fname, lname, dob, region, email, tell, password, role, is_verified, token, token_expire_at, created_at, verified_at, last_login`

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, fname, lname, dob, region, email, tell, password, role, is_verified, token, token_expire_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, u.ID, toNullString(u.FirstName), toNullString(u.LastName), u.DateOfBirth, toNullString(u.Region),
		u.Email, u.Tell, u.PasswordHash, u.Role, u.IsVerified, toNullString(u.VerificationCode),
		toNullTime(u.CodeExpiresAt), u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, storage.ErrDuplicate
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.getUser(ctx, `WHERE email = $1`, email)
}

func (s *Store) GetUserByTell(ctx context.Context, tell string) (user.User, error) {
	return s.getUser(ctx, `WHERE tell = $1`, tell)
}

func (s *Store) GetUserByCode(ctx context.Context, code string, now time.Time) (user.User, error) {
	return s.getUser(ctx, `WHERE token = $1 AND token_expire_at > $2`, code, now.UTC())
}

func (s *Store) getUser(ctx context.Context, where string, args ...interface{}) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, args...)

	var (
		u             user.User
		fname, lname  sql.NullString
		region, token sql.NullString
		expiresAt     sql.NullTime
		verifiedAt    sql.NullTime
		lastLogin     sql.NullTime
	)
	err := row.Scan(&u.ID, &fname, &lname, &u.DateOfBirth, &region, &u.Email, &u.Tell,
		&u.PasswordHash, &u.Role, &u.IsVerified, &token, &expiresAt, &u.CreatedAt, &verifiedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, err
	}

	u.FirstName = fname.String
	u.LastName = lname.String
	u.Region = region.String
	u.VerificationCode = token.String
	if expiresAt.Valid {
		u.CodeExpiresAt = expiresAt.Time.UTC()
	}
	if verifiedAt.Valid {
		u.VerifiedAt = verifiedAt.Time.UTC()
	}
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time.UTC()
	}
	return u, nil
}

func (s *Store) MarkVerified(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_verified = true, token = NULL, token_expire_at = NULL, verified_at = $2
		WHERE id = $1
	`, id, at.UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) SetVerification(ctx context.Context, id, code string, expiresAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET token = $2, token_expire_at = $3 WHERE id = $1
	`, id, code, expiresAt.UTC())
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) StampLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login = $2 WHERE id = $1
	`, id, at.UTC())
	return err
}

// --- SavingsStore -----------------------------------------------------------

func (s *Store) CreateTarget(ctx context.Context, t target.Target) (target.Target, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CurrentAmount = 0
	t.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO targets (id, user_id, name, des, objective, current_amount, deadline, fine, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.UserID, t.Name, toNullString(t.Description), t.Objective, t.CurrentAmount,
		t.Deadline, t.Fine, t.Category, t.CreatedAt)
	if err != nil {
		return target.Target{}, err
	}
	return t, nil
}

func (s *Store) ListTargets(ctx context.Context, userID string) ([]target.Target, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, des, objective, current_amount, deadline, fine, category, created_at
		FROM targets
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []target.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Deposit inserts the transaction row and increments the owning
// target's balance inside one database transaction. The transaction
// row has to be written before ownership can be checked against the
// targets table, so a failed ownership-scoped update rolls the insert
// back rather than leaving an orphan.
func (s *Store) Deposit(ctx context.Context, tx target.Transaction) (target.Target, target.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return target.Target{}, target.Transaction{}, err
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, targets_id, user_id, amount, trx_id, tell, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tx.ID, tx.TargetID, tx.UserID, tx.Amount, tx.Reference, tx.Tell, tx.CreatedAt)
	if err != nil {
		// A target id with no row trips the foreign key on this insert
		// before the ownership-scoped update can report zero rows.
		if isForeignKeyViolation(err) {
			return target.Target{}, target.Transaction{}, storage.ErrNotFound
		}
		return target.Target{}, target.Transaction{}, err
	}

	row := dbTx.QueryRowContext(ctx, `
		UPDATE targets
		SET current_amount = current_amount + $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, des, objective, current_amount, deadline, fine, category, created_at
	`, tx.Amount, tx.TargetID, tx.UserID)

	t, err := scanTarget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return target.Target{}, target.Transaction{}, storage.ErrNotFound
		}
		return target.Target{}, target.Transaction{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return target.Target{}, target.Transaction{}, err
	}
	return t, tx, nil
}

func (s *Store) SumDeposits(ctx context.Context, userID string) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(amount) FROM transactions WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTarget(row rowScanner) (target.Target, error) {
	var (
		t   target.Target
		des sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &des, &t.Objective, &t.CurrentAmount,
		&t.Deadline, &t.Fine, &t.Category, &t.CreatedAt)
	if err != nil {
		return target.Target{}, err
	}
	t.Description = des.String
	return t, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
