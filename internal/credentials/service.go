// Package credentials owns account creation, login and password recovery.
package credentials

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/virti310/cybersafe-sub000/internal/auth"
	"github.com/virti310/cybersafe-sub000/internal/models"
	"github.com/virti310/cybersafe-sub000/internal/notify"
	"github.com/virti310/cybersafe-sub000/internal/otp"
	"github.com/virti310/cybersafe-sub000/internal/storage"
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Generate(userID int64) (string, error)
}

// Session is what a successful register or login hands back.
type Session struct {
	Token string
	User  models.User
}

// RegisterParams are the inputs to Register.
type RegisterParams struct {
	Name      string
	Email     string
	Phone     string
	Gender    string
	Birthdate *time.Time
	Password  string
}

// ChangePasswordParams are the inputs to ChangePassword. ActorID is the
// authenticated caller; Email is optional and must belong to the actor.
type ChangePasswordParams struct {
	ActorID int64
	Email   string
	Current string
	New     string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithOTPGenerator replaces the crypto-random code generator.
func WithOTPGenerator(g otp.Generator) Option {
	return func(s *Service) { s.otps = g }
}

// Service implements the credential and recovery flows on top of a UserStore.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store    storage.UserStore
	hasher   auth.PasswordHasher
	tokens   TokenIssuer
	notifier notify.Notifier
	logger   zerolog.Logger
	otps     otp.Generator
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService wires the service dependencies.
func NewService(store storage.UserStore, hasher auth.PasswordHasher, tokens TokenIssuer, notifier notify.Notifier, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger.With().Str("component", "credentials").Logger(),
		otps:     otp.RandomGenerator{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the default role and signs a token for it.
func (s *Service) Register(ctx context.Context, p RegisterParams) (Session, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	if p.Name == "" || p.Email == "" || p.Password == "" {
		return Session{}, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	hash, err := s.hashPassword("password", p.Password)
	if err != nil {
		return Session{}, err
	}

	user, err := s.store.CreateUser(ctx, models.User{
		Name:         p.Name,
		Email:        p.Email,
		Phone:        strings.TrimSpace(p.Phone),
		Gender:       strings.TrimSpace(p.Gender),
		Birthdate:    p.Birthdate,
		Role:         models.RoleUser,
		IsActive:     true,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Session{}, ErrConflict
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	return s.session(user)
}

// Login checks an email and password pair. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Burn a verification so unknown emails cost as much as bad passwords.
			s.hasher.Verify(password, s.fakeHash())
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	return s.session(user)
}

// ForgotPassword issues a fresh OTP, replacing any pending one, and mails it.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.otps.Generate()
	if err != nil {
		return err
	}
	expiry := otp.ExpiryFrom(s.now())

	if err := s.store.SetResetOTP(ctx, user.ID, code, expiry); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(otp.TTL/time.Minute))
	if err := s.notifier.Send(ctx, user.Email, "Password reset code", body); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("otp delivery failed")
		return fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Time("expires_at", expiry).Msg("password reset otp issued")
	return nil
}

// VerifyOTP checks a code without consuming it.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and otp are required", ErrValidation)
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	return checkOTP(user, code, s.now())
}

// ResetPassword re-validates the code and, if it still holds, swaps the
// password and clears the code in one conditional write.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)
	if email == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%w: email, otp and newPassword are required", ErrValidation)
	}
	if err := checkPasswordLength("newPassword", newPassword); err != nil {
		return err
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	now := s.now()
	if err := checkOTP(user, code, now); err != nil {
		return ErrInvalidOrExpiredOTP
	}

	hash, err := s.hashPassword("newPassword", newPassword)
	if err != nil {
		return err
	}

	if err := s.store.ConsumeResetOTP(ctx, user.ID, code, hash, now); err != nil {
		switch {
		case errors.Is(err, storage.ErrStale):
			return ErrInvalidOrExpiredOTP
		case errors.Is(err, storage.ErrNotFound):
			return ErrNotFound
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset via otp")
	return nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, p ChangePasswordParams) error {
	if p.Current == "" || p.New == "" {
		return fmt.Errorf("%w: currentPassword and newPassword are required", ErrValidation)
	}
	if err := checkPasswordLength("newPassword", p.New); err != nil {
		return err
	}

	user, err := s.findByID(ctx, p.ActorID)
	if err != nil {
		return err
	}
	if email := NormalizeEmail(p.Email); email != "" && email != user.Email {
		return ErrForbidden
	}

	if !s.hasher.Verify(p.Current, user.PasswordHash) {
		return ErrIncorrectPassword
	}

	hash, err := s.hashPassword("newPassword", p.New)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Me returns the user a token was issued for.
func (s *Service) Me(ctx context.Context, userID int64) (models.User, error) {
	return s.findByID(ctx, userID)
}

// UpdateProfile edits the owner-editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, profile models.Profile) (models.User, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Phone = strings.TrimSpace(profile.Phone)
	profile.Gender = strings.TrimSpace(profile.Gender)
	if profile.Name == "" {
		return models.User{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	user, err := s.store.UpdateProfile(ctx, userID, profile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SetStatus activates or deactivates targetID on behalf of an admin actor
// and tells the user about it. Delivery failures are logged only.
func (s *Service) SetStatus(ctx context.Context, actorID, targetID int64, active bool, suspensionEnd *time.Time) (models.User, error) {
	actor, err := s.findByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrForbidden
		}
		return models.User{}, err
	}
	if !models.IsAdmin(actor.Role) {
		return models.User{}, ErrForbidden
	}

	if active {
		suspensionEnd = nil
	} else if suspensionEnd != nil && !suspensionEnd.After(s.now()) {
		return models.User{}, fmt.Errorf("%w: suspension_end_time must be in the future", ErrValidation)
	}

	user, err := s.store.UpdateStatus(ctx, targetID, active, suspensionEnd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update status: %w", err)
	}

	if err := s.notifier.Send(ctx, user.Email, "Account status update", statusMessage(user)); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("status notification failed")
	}
	s.logger.Info().Int64("actor_id", actorID).Int64("user_id", user.ID).Bool("active", active).Msg("account status changed")
	return user, nil
}

// hashPassword reports an over-long password as a validation failure so it
// never surfaces as an internal error.
func (s *Service) hashPassword(field, plain string) (string, error) {
	if err := checkPasswordLength(field, plain); err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %s must be at most %d bytes", ErrValidation, field, auth.MaxPasswordBytes)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func checkPasswordLength(field, plain string) error {
	if len(plain) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: %s must be at most %d bytes", ErrValidation, field, auth.MaxPasswordBytes)
	}
	return nil
}

func (s *Service) session(user models.User) (Session, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) findByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) fakeHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not prepare timing hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// checkOTP reports ErrInvalidOTP for a missing or mismatched code and
// ErrOTPExpired once the window has closed.
func checkOTP(user models.User, code string, now time.Time) error {
	if !user.HasPendingReset() {
		return ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(*user.ResetOTP), []byte(code)) != 1 {
		return ErrInvalidOTP
	}
	if !now.Before(*user.OTPExpiry) {
		return ErrOTPExpired
	}
	return nil
}

func statusMessage(user models.User) string {
	if user.IsActive {
		return fmt.Sprintf("Hello %s, your account has been reactivated.", user.Name)
	}
	if user.SuspensionEndTime != nil {
		return fmt.Sprintf("Hello %s, your account has been suspended until %s.", user.Name, user.SuspensionEndTime.UTC().Format(time.RFC1123))
	}
	return fmt.Sprintf("Hello %s, your account has been suspended.", user.Name)
}
