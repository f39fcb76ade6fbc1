package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, email, name, password_hash,
	is_active, is_staff, is_superuser`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt string
		passwordHash         sql.NullString
		active, staff, super int
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&u.Name,
		&passwordHash,
		&active,
		&staff,
		&super,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	u.PasswordHash = passwordHash.String
	u.IsActive = active != 0
	u.IsStaff = staff != 0
	u.IsSuperuser = super != 0

	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrEmailExists if the email is already registered in any case.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, email, email_lower, name,
			password_hash, is_active, is_staff, is_superuser
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Email,
		domain.EmailKey(user.Email),
		user.Name,
		nullString(user.PasswordHash),
		boolToInt(user.IsActive),
		boolToInt(user.IsStaff),
		boolToInt(user.IsSuperuser),
	)
	if isUniqueViolation(err) {
		return store.ErrEmailExists.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, domain.EmailKey(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// UpdateUser rewrites every mutable column of user.
// Returns store.ErrNotFound if the user does not exist and
// store.ErrEmailExists if the new email belongs to someone else.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?, email = ?, email_lower = ?, name = ?, password_hash = ?,
			is_active = ?, is_staff = ?, is_superuser = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.Email,
		domain.EmailKey(user.Email),
		user.Name,
		nullString(user.PasswordHash),
		boolToInt(user.IsActive),
		boolToInt(user.IsStaff),
		boolToInt(user.IsSuperuser),
		user.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrEmailExists.WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res)
}
