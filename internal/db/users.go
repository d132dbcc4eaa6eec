package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mgarcia/jobboard/internal/types"
)

const userColumns = `id, name, email, phone, role, password_hash, created_at, updated_at`

// UserRecord is a user row including the password hash. It never leaves this
// layer except to the auth service for verification.
type UserRecord struct {
	types.User
	PasswordHash string
}

// UserCreateInput carries a validated registration with the hash already
// computed.
type UserCreateInput struct {
	Name         string
	Email        string
	Phone        string
	Role         string
	PasswordHash string
}

// CreateUser inserts a new user and returns the public profile.
func (db *DB) CreateUser(ctx context.Context, input *UserCreateInput) (*types.User, error) {
	record, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, phone, role, password_hash)
		 VALUES ($1, LOWER($2), $3, $4, $5)
		 RETURNING `+userColumns,
		input.Name, input.Email, input.Phone, input.Role, input.PasswordHash,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &record.User, nil
}

// GetUserByID retrieves a user's public profile. Returns nil when not found.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	record, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &record.User, nil
}

// GetUserByEmail retrieves a user including the password hash, for login and
// password verification. Returns nil when not found.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	record, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`,
		strings.TrimSpace(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return record, nil
}

// GetUserRecordByID retrieves a user including the password hash.
func (db *DB) GetUserRecordByID(ctx context.Context, id uuid.UUID) (*UserRecord, error) {
	record, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return record, nil
}

// CheckEmailExists reports whether a user with the email is registered.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = LOWER($1))`,
		strings.TrimSpace(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateUserPassword replaces a user's password hash.
func (db *DB) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// UpdateUserProfile applies the non-nil fields of req and returns the updated
// profile. Returns nil when the user does not exist.
func (db *DB) UpdateUserProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*types.User, error) {
	var sets []string
	var args []interface{}
	argIndex := 1

	if req.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIndex))
		args = append(args, *req.Name)
		argIndex++
	}
	if req.Phone != nil {
		sets = append(sets, fmt.Sprintf("phone = $%d", argIndex))
		args = append(args, *req.Phone)
		argIndex++
	}

	if len(sets) == 0 {
		return db.GetUserByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argIndex, userColumns,
	)

	record, err := scanUser(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &record.User, nil
}

func scanUser(row pgx.Row) (*UserRecord, error) {
	var record UserRecord
	err := row.Scan(&record.ID, &record.Name, &record.Email, &record.Phone,
		&record.Role, &record.PasswordHash, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
