package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Jomoregie1/greetingapi/internal/metrics"
	"github.com/Jomoregie1/greetingapi/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/greetings.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/greetings.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS greetings (
		greeting_id INTEGER PRIMARY KEY AUTOINCREMENT,
		message TEXT,
		type VARCHAR,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		message_hash CHAR(64)
	);

	CREATE INDEX IF NOT EXISTS idx_greetings_type ON greetings(type);
	CREATE INDEX IF NOT EXISTS idx_greetings_created_at ON greetings(created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_greetings_message_hash ON greetings(message_hash);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withConn runs fn on a dedicated connection that is closed on every return path.
func (s *SQLiteStore) withConn(ctx context.Context, name string, fn func(conn *sql.Conn) error) error {
	start := time.Now()
	defer func() {
		metrics.StoreLatency.WithLabelValues("sqlite", name).Observe(time.Since(start).Seconds())
	}()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// CountGreetings counts greetings matching f.
func (s *SQLiteStore) CountGreetings(ctx context.Context, f models.GreetingFilter) (int, error) {
	query, args := sqliteDialect.countQuery(f)

	var total int
	err := s.withConn(ctx, "count", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("count greetings: %w", err)
	}
	return total, nil
}

// ListGreetings retrieves greetings matching f with pagination.
func (s *SQLiteStore) ListGreetings(ctx context.Context, f models.GreetingFilter, limit, offset int) ([]models.Greeting, error) {
	query, args := sqliteDialect.listQuery(f, limit, offset)

	var greetings []models.Greeting
	err := s.withConn(ctx, "list", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var g models.Greeting
			var message sql.NullString
			if err := rows.Scan(&g.ID, &message, &g.Type, &g.CreatedAt, &g.MessageHash); err != nil {
				return err
			}
			g.Message = message.String
			greetings = append(greetings, g)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list greetings: %w", err)
	}
	return greetings, nil
}

// GreetingMessages returns every message body stored under greetingType.
func (s *SQLiteStore) GreetingMessages(ctx context.Context, greetingType string) ([]string, error) {
	var messages []string
	err := s.withConn(ctx, "messages", func(conn *sql.Conn) error {
		var err error
		messages, err = queryStrings(ctx, conn, sqliteDialect.messagesQuery(), greetingType)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("greeting messages: %w", err)
	}
	return messages, nil
}

// DistinctTypes returns the distinct non-null type values present.
func (s *SQLiteStore) DistinctTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := s.withConn(ctx, "distinct_types", func(conn *sql.Conn) error {
		var err error
		types, err = queryStrings(ctx, conn, distinctTypesQuery)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("distinct types: %w", err)
	}
	return types, nil
}

// InsertGreeting creates a greeting record, skipping duplicates by message hash.
func (s *SQLiteStore) InsertGreeting(ctx context.Context, g *models.Greeting) (bool, error) {
	fillHash(g)
	createdAt := time.Now().UTC()
	if g.CreatedAt != nil {
		createdAt = g.CreatedAt.UTC()
	}

	var inserted bool
	err := s.withConn(ctx, "insert", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			INSERT INTO greetings (message, type, created_at, message_hash)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (message_hash) DO NOTHING
		`, g.Message, g.Type, createdAt, g.MessageHash)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		g.ID, err = res.LastInsertId()
		inserted = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("insert greeting: %w", err)
	}
	if inserted {
		g.CreatedAt = &createdAt
	}
	return inserted, nil
}

func queryStrings(ctx context.Context, conn *sql.Conn, query string, args ...any) ([]string, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
