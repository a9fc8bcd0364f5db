// Package accounts implements the account lifecycle: signup,
// verification, login and verification-code resend.
//
// Per-user state machine: unverified accounts hold a 6-digit code with
// an expiry; submitting the correct unexpired code moves them to
// verified and clears the code; resend reissues the code while
// unverified. There is no transition out of verified, and login is
// gated on it.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/auth"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/user"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/notify"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage"
	apperrors "github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/errors"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/pkg/logger"
)

const (
	msgInternal        = "Internal server error. Please try again later."
	msgDuplicate       = "User with this email or phone number already exists"
	msgBadCredentials  = "Invalid credentials"
	msgAlreadyVerified = "Account is already verified"
	msgResendGeneric   = "If an account with this email/phone exists, a verification code will be sent."
)

// Service orchestrates the account lifecycle.
type Service struct {
	users      storage.UserStore
	tokens     *auth.TokenService
	notifier   notify.Notifier
	codeTTL    time.Duration
	bcryptCost int
	log        *logger.Logger
}

// Option configures the service.
type Option func(*Service)

// WithCodeTTL overrides the verification-code lifetime.
func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) { s.codeTTL = ttl }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// New creates the account lifecycle service.
func New(users storage.UserStore, tokens *auth.TokenService, notifier notify.Notifier, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	if notifier == nil {
		notifier = notify.NewLogSender(log)
	}
	s := &Service{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		codeTTL:    24 * time.Hour,
		bcryptCost: auth.DefaultBcryptCost,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupParams carries the raw signup input.
type SignupParams struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Region      string
	Email       string
	Tell        string
	Password    string
}

// Signup registers a new unverified user, issues a verification code
// and dispatches it best-effort.
func (s *Service) Signup(ctx context.Context, p SignupParams) (user.Sanitized, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Region = strings.TrimSpace(p.Region)
	p.Email = user.NormalizeEmail(p.Email)
	p.Tell = strings.TrimSpace(p.Tell)

	if (p.FirstName == "" && p.LastName == "") || p.DateOfBirth == "" || p.Email == "" || p.Tell == "" || p.Password == "" {
		return user.Sanitized{}, apperrors.Validation("All fields are required. At least one name (first or last) must be provided.")
	}
	if !user.IsEmail(p.Email) {
		return user.Sanitized{}, apperrors.Validation("Please provide a valid email address")
	}
	if !user.IsPhoneNumber(p.Tell) {
		return user.Sanitized{}, apperrors.Validation("Please provide a valid phone number")
	}
	if len(p.Password) < 6 {
		return user.Sanitized{}, apperrors.Validation("Password must be at least 6 characters long")
	}

	if err := s.checkNotRegistered(ctx, p.Email, p.Tell); err != nil {
		return user.Sanitized{}, err
	}

	hash, err := auth.HashPassword(p.Password, s.bcryptCost)
	if err != nil {
		return user.Sanitized{}, apperrors.Internal(msgInternal, err)
	}
	code, err := auth.GenerateCode()
	if err != nil {
		return user.Sanitized{}, apperrors.Internal(msgInternal, err)
	}

	created, err := s.users.CreateUser(ctx, user.User{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		DateOfBirth:      p.DateOfBirth,
		Region:           p.Region,
		Email:            p.Email,
		Tell:             p.Tell,
		PasswordHash:     hash,
		VerificationCode: code,
		CodeExpiresAt:    auth.CodeExpiry(s.codeTTL),
	})
	if err != nil {
		// A concurrent signup can slip past the pre-check; the unique
		// constraint resolves the race.
		if errors.Is(err, storage.ErrDuplicate) {
			return user.Sanitized{}, apperrors.Conflict(msgDuplicate)
		}
		return user.Sanitized{}, apperrors.Internal(msgInternal, err)
	}

	s.dispatchCode(ctx, code)

	return created.Sanitize(), nil
}

func (s *Service) checkNotRegistered(ctx context.Context, email, tell string) error {
	for _, lookup := range []func() (user.User, error){
		func() (user.User, error) { return s.users.GetUserByEmail(ctx, email) },
		func() (user.User, error) { return s.users.GetUserByTell(ctx, tell) },
	} {
		_, err := lookup()
		switch {
		case err == nil:
			return apperrors.Conflict(msgDuplicate)
		case errors.Is(err, storage.ErrNotFound):
		default:
			return apperrors.Internal(msgInternal, err)
		}
	}
	return nil
}

// Verify redeems a verification code, moving the user to verified and
// clearing the code.
func (s *Service) Verify(ctx context.Context, code string) error {
	if code == "" {
		return apperrors.Validation("Verification token is required")
	}
	if !user.IsVerificationCode(code) {
		return apperrors.Validation("Invalid token format. Token should be 6 digits.")
	}

	u, err := s.users.GetUserByCode(ctx, code, time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.Validation("Invalid or expired verification token")
		}
		return apperrors.Internal(msgInternal, err)
	}

	// Unreachable while the token-cleared-on-verify invariant holds.
	if u.IsVerified {
		return apperrors.Validation(msgAlreadyVerified)
	}

	if err := s.users.MarkVerified(ctx, u.ID, time.Now()); err != nil {
		return apperrors.Internal(msgInternal, err)
	}
	return nil
}

// Login authenticates by email or phone and returns the sanitized user
// plus a session token. Unknown users and wrong passwords produce the
// same error.
func (s *Service) Login(ctx context.Context, identifier, password string) (user.Sanitized, string, error) {
	if identifier == "" || password == "" {
		return user.Sanitized{}, "", apperrors.Validation("Email/phone and password are required")
	}

	u, err := s.lookupByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.Sanitized{}, "", apperrors.Unauthorized(msgBadCredentials)
		}
		return user.Sanitized{}, "", err
	}

	if !u.IsVerified {
		return user.Sanitized{}, "", apperrors.Forbidden("Account not verified. Please check your email/SMS for verification code.").
			WithDetails("is_verified", false)
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return user.Sanitized{}, "", apperrors.Unauthorized(msgBadCredentials)
	}

	token, err := s.tokens.IssueSession(u.ID, u.Role)
	if err != nil {
		return user.Sanitized{}, "", apperrors.Internal(msgInternal, err)
	}

	if err := s.users.StampLastLogin(ctx, u.ID, time.Now()); err != nil {
		return user.Sanitized{}, "", apperrors.Internal(msgInternal, err)
	}

	return u.Sanitize(), token, nil
}

// Resend reissues the verification code for an unverified account. The
// returned message never reveals whether the identifier is registered.
func (s *Service) Resend(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return "", apperrors.Validation("Email or phone number is required")
	}

	u, err := s.lookupByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return msgResendGeneric, nil
		}
		return "", err
	}

	if u.IsVerified {
		return "", apperrors.Validation(msgAlreadyVerified)
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return "", apperrors.Internal(msgInternal, err)
	}
	if err := s.users.SetVerification(ctx, u.ID, code, auth.CodeExpiry(s.codeTTL)); err != nil {
		return "", apperrors.Internal(msgInternal, err)
	}

	s.dispatchCode(ctx, code)

	return "New verification code sent successfully", nil
}

func (s *Service) lookupByIdentifier(ctx context.Context, identifier string) (user.User, error) {
	switch user.ClassifyIdentifier(identifier) {
	case user.IdentifierEmail:
		u, err := s.users.GetUserByEmail(ctx, user.NormalizeEmail(identifier))
		return u, wrapLookupErr(err)
	case user.IdentifierTell:
		u, err := s.users.GetUserByTell(ctx, identifier)
		return u, wrapLookupErr(err)
	default:
		return user.User{}, apperrors.Validation("Invalid email or phone number format")
	}
}

func wrapLookupErr(err error) error {
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return apperrors.Internal(msgInternal, err)
}

// dispatchCode sends the verification code. Failures are logged and
// swallowed; delivery is immaterial to data consistency.
func (s *Service) dispatchCode(ctx context.Context, code string) {
	if err := s.notifier.Send(ctx, code); err != nil {
		s.log.WithError(err).Warn("failed to dispatch verification code")
	}
}
