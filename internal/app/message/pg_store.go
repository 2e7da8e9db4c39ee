package message

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout bounds every store call. A slow database surfaces as an error
// to the caller instead of stalling room activity.
const queryTimeout = 5 * time.Second

// DefaultHistoryLimit is the fallback cap on history queries.
const DefaultHistoryLimit = 100

// PGStore is the PostgreSQL-backed message log.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a PGStore over the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Append implements Store. A single-row INSERT is atomic per record.
func (s *PGStore) Append(ctx context.Context, m Message) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		INSERT INTO messages (id, room_id, username, content, timestamp, is_anonymous)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q, m.ID, m.RoomID, m.Username, m.Content, m.Timestamp, m.IsAnonymous)
	if err != nil {
		return fmt.Errorf("append message %q to room %q: %w", m.ID, m.RoomID, err)
	}

	return nil
}

// RecentHistory implements Store. The query selects the newest rows first so
// the LIMIT keeps the most recent window, then the slice is reversed into
// ascending display order.
func (s *PGStore) RecentHistory(ctx context.Context, roomID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		SELECT id, room_id, username, content, timestamp, is_anonymous
		FROM messages
		WHERE room_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, q, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for room %q: %w", roomID, err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Username, &m.Content, &m.Timestamp, &m.IsAnonymous); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	// newest-first to oldest-first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// PurgeOlderThan deletes messages created before the cutoff. Housekeeping
// only; nothing in the hub path calls it.
func (s *PGStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge messages older than %s: %w", cutoff, err)
	}

	return tag.RowsAffected(), nil
}
