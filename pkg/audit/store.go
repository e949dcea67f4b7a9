package audit

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store persists audit entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex

	stmtInsert *sql.Stmt
}

var _ Recorder = (*Store)(nil)

// Filter narrows Recent. Zero values mean "any".
type Filter struct {
	Command string
	Outcome Outcome
	Since   time.Time
	Limit   int
}

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	// one writer; also keeps a ":memory:" database alive across calls
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: path}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("executing schema: %w", err)
	}

	s.stmtInsert, err = db.Prepare(`
		INSERT INTO instructions (entry_id, received_at, command, parameters, record_id, outcome, reason, stack_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	return s, nil
}

// Record inserts e, filling in ID and ReceivedAt when empty.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.stmtInsert.ExecContext(ctx,
		e.ID, e.ReceivedAt.UnixNano(), e.Command, e.Parameters, e.RecordID,
		string(e.Outcome), e.Reason, e.StackSize,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns entries newest first.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT entry_id, received_at, command, parameters, record_id, outcome, reason, stack_size
		FROM instructions WHERE 1=1`
	args := make([]any, 0, 4)
	if f.Command != "" {
		query += ` AND command = ?`
		args = append(args, f.Command)
	}
	if f.Outcome != "" {
		query += ` AND outcome = ?`
		args = append(args, string(f.Outcome))
	}
	if !f.Since.IsZero() {
		query += ` AND received_at >= ?`
		args = append(args, f.Since.UnixNano())
	}
	query += ` ORDER BY received_at DESC, rowid DESC LIMIT ?`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			at      int64
			outcome string
		)
		if err := rows.Scan(&e.ID, &at, &e.Command, &e.Parameters, &e.RecordID, &outcome, &e.Reason, &e.StackSize); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		e.ReceivedAt = time.Unix(0, at)
		e.Outcome = Outcome(outcome)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of entries with the given outcome, or all when empty.
func (s *Store) Count(ctx context.Context, outcome Outcome) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	var err error
	if outcome == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instructions`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instructions WHERE outcome = ?`, string(outcome)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting audit entries: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stmtInsert != nil {
		s.stmtInsert.Close()
	}
	return s.db.Close()
}
