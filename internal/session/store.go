// Package session persists conversation history in PostgreSQL.
//
// A session is a sequence of user/assistant exchanges. History is served
// back as a bounded, pre-formatted transcript: only the most recent
// exchanges (per the configured depth) are included, so prompts stay a
// fixed size no matter how long a conversation runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the session id does not exist.
var ErrNotFound = errors.New("session not found")

// Message roles stored in session_messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one stored conversation message.
type Message struct {
	Role    string
	Content string
}

// Store manages sessions and their message history.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool       *pgxpool.Pool
	maxHistory int
	logger     *slog.Logger
}

// NewStore creates a session Store. maxHistory is the number of past
// exchanges (user+assistant pairs) included in History output; zero
// disables history entirely.
func NewStore(pool *pgxpool.Pool, maxHistory int, logger *slog.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if maxHistory < 0 {
		return nil, fmt.Errorf("maxHistory must be non-negative, got %d", maxHistory)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, maxHistory: maxHistory, logger: logger}, nil
}

// Create creates a new session and returns its id.
func (s *Store) Create(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	if _, err := s.pool.Exec(ctx, `INSERT INTO sessions (id) VALUES ($1)`, id); err != nil {
		return uuid.Nil, fmt.Errorf("creating session: %w", err)
	}
	s.logger.Debug("created session", "session_id", id)
	return id, nil
}

// Exists reports whether the session id is known.
func (s *Store) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking session %s: %w", id, err)
	}
	return exists, nil
}

// AddExchange appends one user/assistant exchange to the session.
func (s *Store) AddExchange(ctx context.Context, id uuid.UUID, userMsg, assistantMsg string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := []struct{ role, content string }{
		{RoleUser, userMsg},
		{RoleAssistant, assistantMsg},
	}
	for _, m := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_messages (session_id, role, content) VALUES ($1, $2, $3)`,
			id, m.role, m.content,
		); err != nil {
			return fmt.Errorf("appending %s message to session %s: %w", m.role, id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing exchange: %w", err)
	}
	return nil
}

// History returns the formatted transcript of the most recent exchanges,
// oldest first. Returns an empty string for a fresh or cleared session,
// and ErrNotFound for an unknown id.
func (s *Store) History(ctx context.Context, id uuid.UUID) (string, error) {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.maxHistory == 0 {
		return "", nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT role, content FROM session_messages
		 WHERE session_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		id, s.maxHistory*2,
	)
	if err != nil {
		return "", fmt.Errorf("loading history for %s: %w", id, err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return "", fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading history: %w", err)
	}

	// Query returned newest first; restore chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return FormatHistory(msgs), nil
}

// Clear removes all messages from a session, keeping the session itself
// usable. Returns ErrNotFound for an unknown id.
func (s *Store) Clear(ctx context.Context, id uuid.UUID) error {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM session_messages WHERE session_id = $1`, id,
	); err != nil {
		return fmt.Errorf("clearing session %s: %w", id, err)
	}
	s.logger.Debug("cleared session", "session_id", id)
	return nil
}

// FormatHistory renders stored messages as the transcript fed back into
// prompts: one "User:" or "Assistant:" line per message.
func FormatHistory(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := "User"
		if m.Role == RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// Delete removes a session and, via cascade, its messages.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
