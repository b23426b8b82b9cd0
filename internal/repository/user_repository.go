package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modaix-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByProviderUID(ctx context.Context, providerUID string) (*domain.User, error)
	LinkProvider(ctx context.Context, id uuid.UUID, providerUID string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, contact domain.ContactInfo) error
}

// execer is satisfied by *sql.DB and *sql.Tx, so the user write statements
// below can also run inside a larger transaction (checkout creates guest
// accounts and syncs addresses atomically with the order writes).
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, provider_uid, role, phone, address, city, state, zip, points, created_at, updated_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ProviderUID,
		&user.Role,
		&user.Phone,
		&user.Address,
		&user.City,
		&user.State,
		&user.Zip,
		&user.Points,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user into the database using parameterized queries
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, r.db, user)
}

func insertUser(ctx context.Context, db execer, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, provider_uid, role, phone, address, city, state, zip, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.ProviderUID,
		user.Role,
		user.Phone,
		user.Address,
		user.City,
		user.State,
		user.Zip,
		user.Points,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation on email (SQLSTATE 23505)
		if strings.Contains(err.Error(), "SQLSTATE 23505") {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by email using parameterized queries
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user by ID using parameterized queries
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByProviderUID retrieves a social-login user by its provider UID
func (r *userRepository) FindByProviderUID(ctx context.Context, providerUID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider_uid = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, providerUID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by provider UID: %w", err)
	}

	return user, nil
}

// LinkProvider attaches a provider UID to an existing account so a social
// login reconciles with a user who registered by email first
func (r *userRepository) LinkProvider(ctx context.Context, id uuid.UUID, providerUID string) error {
	query := `UPDATE users SET provider_uid = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, providerUID)
	if err != nil {
		return fmt.Errorf("failed to link provider: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateProfile updates the user's name and contact fields. Nil contact
// fields keep their stored values (COALESCE), matching the checkout
// address-sync behavior.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, contact domain.ContactInfo) error {
	return updateUserProfile(ctx, r.db, id, name, contact)
}

func updateUserProfile(ctx context.Context, db execer, id uuid.UUID, name string, contact domain.ContactInfo) error {
	query := `
		UPDATE users SET
			name = COALESCE(NULLIF($2, ''), name),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			city = COALESCE($5, city),
			state = COALESCE($6, state),
			zip = COALESCE($7, zip),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := db.ExecContext(
		ctx,
		query,
		id,
		name,
		contact.Phone,
		contact.Address,
		contact.City,
		contact.State,
		contact.Zip,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
