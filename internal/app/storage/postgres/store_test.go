package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/target"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/user"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	return New(db), mock, func() { db.Close() }
}

func userRows(u user.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "fname", "lname", "dob", "region", "email", "tell",
		"password", "role", "is_verified", "token", "token_expire_at",
		"created_at", "verified_at", "last_login",
	}).AddRow(u.ID, u.FirstName, u.LastName, u.DateOfBirth, u.Region, u.Email, u.Tell,
		u.PasswordHash, u.Role, u.IsVerified, nil, nil, u.CreatedAt, nil, nil)
}

func targetRows(tg target.Target) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "des", "objective", "current_amount",
		"deadline", "fine", "category", "created_at",
	}).AddRow(tg.ID, tg.UserID, tg.Name, tg.Description, tg.Objective, tg.CurrentAmount,
		tg.Deadline, tg.Fine, tg.Category, tg.CreatedAt)
}

func TestCreateUserDuplicate(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := store.CreateUser(context.Background(), user.User{
		DateOfBirth: "1995-04-02",
		Email:       "alice@example.com",
		Tell:        "+237670000001",
	})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	want := user.User{
		ID:           "u1",
		FirstName:    "Alice",
		DateOfBirth:  "1995-04-02",
		Email:        "alice@example.com",
		Tell:         "+237670000001",
		PasswordHash: "hash",
		Role:         "user",
		CreatedAt:    time.Now().UTC(),
	}
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRows(want))

	got, err := store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != want.ID || got.Email != want.Email || got.FirstName != want.FirstName {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkVerifiedNotFound(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkVerified(context.Background(), "missing", time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDepositCommits(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	updated := target.Target{
		ID:            "t1",
		UserID:        "u1",
		Name:          "bike",
		Objective:     1000,
		CurrentAmount: 150,
		Deadline:      "2026-12-31",
		Category:      "transport",
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("UPDATE targets").
		WillReturnRows(targetRows(updated))
	mock.ExpectCommit()

	got, tx, err := store.Deposit(context.Background(), target.Transaction{
		TargetID:  "t1",
		UserID:    "u1",
		Amount:    50,
		Reference: "ref-1",
		Tell:      "+237670000001",
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got.CurrentAmount != 150 {
		t.Fatalf("expected returned balance 150, got %v", got.CurrentAmount)
	}
	if tx.ID == "" {
		t.Fatal("expected generated transaction id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDepositUnknownTargetID(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	// With no targets row for the id, the insert itself fails the
	// foreign key rather than the update returning zero rows.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "transactions_targets_id_fkey"})
	mock.ExpectRollback()

	_, _, err := store.Deposit(context.Background(), target.Transaction{
		TargetID:  "no-such-target",
		UserID:    "u1",
		Amount:    50,
		Reference: "ref-1",
		Tell:      "+237670000001",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDepositRollsBackOnForeignTarget(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	// The target row exists so the insert passes, but the update is
	// scoped to the owner and matches zero rows.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("UPDATE targets").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := store.Deposit(context.Background(), target.Transaction{
		TargetID:  "t1",
		UserID:    "intruder",
		Amount:    50,
		Reference: "ref-1",
		Tell:      "+237670000001",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSumDepositsNoRows(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery("SELECT SUM").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	total, err := store.SumDeposits(context.Background(), "u1")
	if err != nil {
		t.Fatalf("sum deposits: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for no deposits, got %v", total)
	}
}

func TestCreateTargetZeroesBalance(t *testing.T) {
	store, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO targets").
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := store.CreateTarget(context.Background(), target.Target{
		UserID:        "u1",
		Name:          "bike",
		Objective:     1000,
		CurrentAmount: 500,
		Deadline:      "2026-12-31",
		Category:      "transport",
	})
	if err != nil {
		t.Fatalf("create target: %v", err)
	}
	if created.CurrentAmount != 0 {
		t.Fatalf("expected zero starting balance, got %v", created.CurrentAmount)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
}
