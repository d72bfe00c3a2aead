package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Jomoregie1/greetingapi/internal/models"
)

// DataStore defines the interface for persistent storage of greetings.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Read operations
	CountGreetings(ctx context.Context, f models.GreetingFilter) (int, error)
	ListGreetings(ctx context.Context, f models.GreetingFilter, limit, offset int) ([]models.Greeting, error)
	GreetingMessages(ctx context.Context, greetingType string) ([]string, error)
	DistinctTypes(ctx context.Context) ([]string, error)

	// InsertGreeting adds g unless a greeting with the same message hash exists.
	// It reports whether a row was written.
	InsertGreeting(ctx context.Context, g *models.Greeting) (bool, error)
}

// Open connects to PostgreSQL when databaseURL is set, otherwise to SQLite at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string) (DataStore, error) {
	if databaseURL != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewSQLiteStore(ctx, sqlitePath)
}

// MessageHash returns the SHA-256 fingerprint stored in message_hash.
func MessageHash(message string) string {
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}

// fillHash sets the fingerprint when the caller left it empty.
func fillHash(g *models.Greeting) {
	if g.MessageHash == nil {
		h := MessageHash(g.Message)
		g.MessageHash = &h
	}
}
