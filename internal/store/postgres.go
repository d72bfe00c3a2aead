package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jomoregie1/greetingapi/internal/metrics"
	"github.com/Jomoregie1/greetingapi/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS greetings (
	greeting_id SERIAL PRIMARY KEY,
	message TEXT,
	type VARCHAR,
	created_at TIMESTAMP DEFAULT NOW(),
	message_hash CHAR(64)
);

CREATE INDEX IF NOT EXISTS idx_greetings_type ON greetings(type);
CREATE INDEX IF NOT EXISTS idx_greetings_created_at ON greetings(created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_greetings_message_hash ON greetings(message_hash);
CREATE INDEX IF NOT EXISTS idx_greetings_message_fts
	ON greetings USING GIN (to_tsvector('english', coalesce(message, '')));
`

// RunMigrations creates the greetings table and its indexes.
func RunMigrations(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// withConn runs fn on a pooled connection that is released on every return path.
func (s *PostgresStore) withConn(ctx context.Context, name string, fn func(conn *pgxpool.Conn) error) error {
	start := time.Now()
	defer func() {
		metrics.StoreLatency.WithLabelValues("postgres", name).Observe(time.Since(start).Seconds())
	}()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// CountGreetings counts greetings matching f.
func (s *PostgresStore) CountGreetings(ctx context.Context, f models.GreetingFilter) (int, error) {
	query, args := postgresDialect.countQuery(f)

	var total int
	err := s.withConn(ctx, "count", func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("count greetings: %w", err)
	}
	return total, nil
}

// ListGreetings retrieves greetings matching f with pagination.
func (s *PostgresStore) ListGreetings(ctx context.Context, f models.GreetingFilter, limit, offset int) ([]models.Greeting, error) {
	query, args := postgresDialect.listQuery(f, limit, offset)

	var greetings []models.Greeting
	err := s.withConn(ctx, "list", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var g models.Greeting
			var message *string
			if err := rows.Scan(&g.ID, &message, &g.Type, &g.CreatedAt, &g.MessageHash); err != nil {
				return err
			}
			if message != nil {
				g.Message = *message
			}
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
func (s *PostgresStore) GreetingMessages(ctx context.Context, greetingType string) ([]string, error) {
	var messages []string
	err := s.withConn(ctx, "messages", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, postgresDialect.messagesQuery(), greetingType)
		if err != nil {
			return err
		}
		messages, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("greeting messages: %w", err)
	}
	return messages, nil
}

// DistinctTypes returns the distinct non-null type values present.
func (s *PostgresStore) DistinctTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := s.withConn(ctx, "distinct_types", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, distinctTypesQuery)
		if err != nil {
			return err
		}
		types, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("distinct types: %w", err)
	}
	return types, nil
}

// InsertGreeting creates a greeting record, skipping duplicates by message hash.
func (s *PostgresStore) InsertGreeting(ctx context.Context, g *models.Greeting) (bool, error) {
	fillHash(g)
	createdAt := time.Now().UTC()
	if g.CreatedAt != nil {
		createdAt = g.CreatedAt.UTC()
	}

	var inserted bool
	err := s.withConn(ctx, "insert", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(ctx, `
			INSERT INTO greetings (message, type, created_at, message_hash)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (message_hash) DO NOTHING
			RETURNING greeting_id
		`, g.Message, g.Type, createdAt, g.MessageHash).Scan(&g.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("insert greeting: %w", err)
	}
	if inserted {
		g.CreatedAt = &createdAt
	}
	return inserted, nil
}
