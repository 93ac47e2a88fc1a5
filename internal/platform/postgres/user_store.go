// Package postgres contains the PostgreSQL-backed stores the library's
// own integration tests run against. It exists so the public helper
// packages can be exercised end to end without depending on a host
// application.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anvil8/go-test-tools/internal/domain"
	"github.com/anvil8/go-test-tools/store"
)

// uniqueViolationCode is the PostgreSQL unique violation error code.
const uniqueViolationCode = "23505"

// UserStore persists domain.User rows through a store.DBTX, so it
// works against a plain connection, a per-test transaction, or the
// guard package's failing stand-in.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a UserStore over the given database handle.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

// Ensure UserStore satisfies the factory's persistence port.
var _ store.Saver[*domain.User] = (*UserStore)(nil)

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, such as a duplicate email address.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Save inserts the user. IDs and timestamps left at their zero value
// are filled in before the write.
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, last_name, email, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Username, user.LastName, user.Email, user.HashedPassword, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID, returning store.ErrUserNotFound when
// no row exists.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, last_name, email, hashed_password, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Username,
		&user.LastName,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user by ID: %w", err)
	}

	return &user, nil
}

// Count counts users matching the optional WHERE clause.
func (s *UserStore) Count(ctx context.Context, whereClause string, args ...any) (int, error) {
	query := "SELECT COUNT(*) FROM users"
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}

	return count, nil
}
