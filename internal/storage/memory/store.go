// Package memory keeps users in process memory. It mirrors the Postgres
// store's semantics closely enough to back local runs and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/virti310/cybersafe-sub000/internal/models"
	"github.com/virti310/cybersafe-sub000/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store is a mutex-guarded map of users keyed by id.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]models.User
	byEmail map[string]int64
	now     func() time.Time
}

// NewUserStore returns an empty store.
func NewUserStore() *Store {
	return &Store{
		users:   make(map[int64]models.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

// Close is a no-op kept for parity with the Postgres store.
func (s *Store) Close() {}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(user.Email)
	if _, ok := s.byEmail[key]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}

	s.nextID++
	now := s.now()
	user = clone(user)
	user.ID = s.nextID
	user.ResetOTP = nil
	user.OTPExpiry = nil
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	s.users[user.ID] = user
	s.byEmail[key] = user.ID
	return clone(user), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return clone(user), nil
}

func (s *Store) SetResetOTP(_ context.Context, id int64, otp string, expiry time.Time) error {
	_, err := s.update(id, func(u *models.User) error {
		u.ResetOTP = &otp
		u.OTPExpiry = &expiry
		return nil
	})
	return err
}

func (s *Store) ConsumeResetOTP(_ context.Context, id int64, otp, passwordHash string, now time.Time) error {
	_, err := s.update(id, func(u *models.User) error {
		if !u.HasPendingReset() || *u.ResetOTP != otp || !u.OTPExpiry.After(now) {
			return storage.ErrStale
		}
		u.PasswordHash = passwordHash
		u.ResetOTP = nil
		u.OTPExpiry = nil
		return nil
	})
	return err
}

func (s *Store) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	_, err := s.update(id, func(u *models.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (s *Store) UpdateProfile(_ context.Context, id int64, profile models.Profile) (models.User, error) {
	return s.update(id, func(u *models.User) error {
		u.Name = profile.Name
		u.Phone = profile.Phone
		u.Gender = profile.Gender
		u.Birthdate = copyTime(profile.Birthdate)
		return nil
	})
}

func (s *Store) UpdateStatus(_ context.Context, id int64, active bool, suspensionEnd *time.Time) (models.User, error) {
	return s.update(id, func(u *models.User) error {
		u.IsActive = active
		u.SuspensionEndTime = copyTime(suspensionEnd)
		if active {
			u.SuspensionEndTime = nil
		}
		return nil
	})
}

// update applies fn to a copy of the row and stores it only if fn succeeds.
func (s *Store) update(id int64, fn func(u *models.User) error) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user = clone(user)
	if err := fn(&user); err != nil {
		return models.User{}, err
	}
	user.UpdatedAt = s.now()
	s.users[id] = user
	return clone(user), nil
}

// clone detaches pointer fields so callers cannot mutate stored rows.
func clone(u models.User) models.User {
	u.Birthdate = copyTime(u.Birthdate)
	u.SuspensionEndTime = copyTime(u.SuspensionEndTime)
	u.OTPExpiry = copyTime(u.OTPExpiry)
	if u.ResetOTP != nil {
		otp := *u.ResetOTP
		u.ResetOTP = &otp
	}
	return u
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
