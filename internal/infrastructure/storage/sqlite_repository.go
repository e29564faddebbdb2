package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"IntelliSearch/internal/domain"
	"IntelliSearch/internal/ports"
)

const turnsTable = "conversation_turns"

// SQLiteRepository persists conversation turns into a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.TurnRepository = (*SQLiteRepository)(nil)

// Open creates the database file and schema when missing.
func Open(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	if path := strings.TrimPrefix(dsn, "file:"); !strings.HasPrefix(path, ":memory:") {
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := NewSQLiteRepository(db)
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wires an existing sql.DB implementation.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversation_turns (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id  TEXT NOT NULL,
			role        TEXT NOT NULL,
			content     TEXT NOT NULL,
			created_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_session ON conversation_turns(session_id, id);
	`)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// AppendTurn inserts one turn at the end of its session.
func (r *SQLiteRepository) AppendTurn(ctx context.Context, turn domain.ConversationTurn) error {
	if r.db == nil {
		return nil
	}
	if turn.SessionID == "" {
		return fmt.Errorf("append turn: empty session id")
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := sq.Insert(turnsTable).
		Columns("session_id", "role", "content", "created_at").
		Values(turn.SessionID, string(turn.Role), turn.Content, createdAt.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// LoadTurns returns the session's turns in insertion order.
func (r *SQLiteRepository) LoadTurns(ctx context.Context, sessionID string) ([]domain.ConversationTurn, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := sq.Select("session_id", "role", "content", "created_at").
		From(turnsTable).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var (
			turn      domain.ConversationTurn
			role      string
			createdAt string
		)
		if err := rows.Scan(&turn.SessionID, &role, &turn.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.Role = domain.Role(role)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			turn.CreatedAt = ts
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return turns, nil
}

// ListSessions returns session IDs ordered by their most recent turn.
func (r *SQLiteRepository) ListSessions(ctx context.Context, limit uint64) ([]string, error) {
	if r.db == nil {
		return nil, nil
	}

	builder := sq.Select("session_id").
		From(turnsTable).
		GroupBy("session_id").
		OrderBy("MAX(id) DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return sessions, nil
}
