package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/virti310/cybersafe-sub000/internal/models"
	"github.com/virti310/cybersafe-sub000/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// pool is the subset of *pgxpool.Pool the store relies on.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool pool
}

// NewUserStore connects to Postgres and applies pending migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrate(ctx, p); err != nil {
		p.Close()
		return nil, err
	}

	return &Store{pool: p}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func migrate(ctx context.Context, p *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(p)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, phone, gender, birthdate, role, is_active, suspension_end_time,
	password_hash, reset_otp, otp_expiry, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (name, email, phone, gender, birthdate, role, is_active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		user.Name, user.Email, user.Phone, user.Gender, user.Birthdate, user.Role, user.IsActive, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindByEmail fetches a user by email address, ignoring case.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// SetResetOTP stores a pending OTP, overwriting any previous one.
func (s *Store) SetResetOTP(ctx context.Context, id int64, otp string, expiry time.Time) error {
	const query = `UPDATE users SET reset_otp = $2, otp_expiry = $3, updated_at = NOW() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, otp, expiry)
	if err != nil {
		return fmt.Errorf("set reset otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConsumeResetOTP swaps the password hash and clears the OTP pair in a single statement.
func (s *Store) ConsumeResetOTP(ctx context.Context, id int64, otp, passwordHash string, now time.Time) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_otp = NULL, otp_expiry = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_otp = $3 AND otp_expiry > $4`
	tag, err := s.pool.Exec(ctx, query, id, passwordHash, otp, now)
	if err != nil {
		return fmt.Errorf("consume reset otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrStale
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateProfile overwrites the owner-editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id int64, profile models.Profile) (models.User, error) {
	query := `
		UPDATE users SET name = $2, phone = $3, gender = $4, birthdate = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, profile.Name, profile.Phone, profile.Gender, profile.Birthdate))
}

// UpdateStatus toggles the account state; suspensionEnd is only kept for inactive accounts.
func (s *Store) UpdateStatus(ctx context.Context, id int64, active bool, suspensionEnd *time.Time) (models.User, error) {
	if active {
		suspensionEnd = nil
	}
	query := `
		UPDATE users SET is_active = $2, suspension_end_time = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, query, id, active, suspensionEnd))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Gender, &user.Birthdate,
		&user.Role, &user.IsActive, &user.SuspensionEndTime,
		&user.PasswordHash, &user.ResetOTP, &user.OTPExpiry, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
