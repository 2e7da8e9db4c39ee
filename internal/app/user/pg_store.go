package user

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout bounds every store call so a stalled database cannot wedge a
// login or logout indefinitely.
const queryTimeout = 5 * time.Second

// PGStore is the PostgreSQL-backed user store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a PGStore over the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Upsert implements Store. An existing username keeps its id; only its
// last_active timestamp moves.
func (s *PGStore) Upsert(ctx context.Context, u User) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		INSERT INTO users (id, username, is_anonymous, last_active, created_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (username)
		DO UPDATE SET last_active = NOW()
		RETURNING id, username, is_anonymous`

	var out User
	err := s.pool.QueryRow(ctx, q, u.ID, u.Username, u.IsAnonymous).
		Scan(&out.ID, &out.Username, &out.IsAnonymous)
	if err != nil {
		return User{}, fmt.Errorf("upsert user %q: %w", u.Username, err)
	}

	return out, nil
}

// TouchLastActive implements Store.
func (s *PGStore) TouchLastActive(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_active = NOW() WHERE id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("touch last_active for %q: %w", userID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ActiveSince implements Store.
func (s *PGStore) ActiveSince(ctx context.Context, cutoff time.Time) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		SELECT id, username, is_anonymous
		FROM users
		WHERE last_active > $1
		ORDER BY last_active DESC`

	rows, err := s.pool.Query(ctx, q, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAnonymous); err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active users: %w", err)
	}

	return users, nil
}
