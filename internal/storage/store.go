// Package storage implements memory.Store on PostgreSQL (gorm) and SQLite.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/easeaico/tsukuyomi/internal/memory"
)

const (
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"

	tableName = "user_memory"
)

// Backend is a memory.Store with lifecycle and schema management.
type Backend interface {
	memory.Store
	Kind() string
	// Schema describes the DDL Migrate applies.
	Schema() string
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type options struct {
	defaultIntimacy int
	skipMigrate     bool
}

// Option configures Open.
type Option func(*options)

// WithDefaultIntimacy sets the value reported for rows whose intimacy is NULL.
func WithDefaultIntimacy(v int) Option {
	return func(o *options) { o.defaultIntimacy = v }
}

// WithoutMigrate opens the store without touching the schema.
func WithoutMigrate() Option {
	return func(o *options) { o.skipMigrate = true }
}

// IsPostgresURL reports whether dsn selects the PostgreSQL backend.
func IsPostgresURL(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// SchemaFor returns the DDL Open would apply for dsn without connecting.
func SchemaFor(dsn string) (kind, schema string) {
	if IsPostgresURL(dsn) {
		return KindPostgres, postgresSchema
	}
	return KindSQLite, sqliteSchema
}

// Open picks PostgreSQL for postgres:// URLs and treats anything else as a
// SQLite file path. The schema is migrated before returning unless
// WithoutMigrate is given.
func Open(ctx context.Context, dsn string, opts ...Option) (Backend, error) {
	o := options{defaultIntimacy: 50}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		backend Backend
		err     error
	)
	if IsPostgresURL(dsn) {
		backend, err = openPostgres(dsn, o)
	} else {
		backend, err = openSQLite(dsn, o)
	}
	if err != nil {
		return nil, err
	}

	if o.skipMigrate {
		return backend, nil
	}
	if err := backend.Migrate(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return backend, nil
}

func encodeFacts(facts []string) (string, error) {
	if facts == nil {
		facts = []string{}
	}
	raw, err := json.Marshal(facts)
	if err != nil {
		return "", fmt.Errorf("failed to encode facts: %w: %w", memory.ErrStorage, err)
	}
	return string(raw), nil
}

// decodeFacts treats an empty, NULL or corrupt column as no facts so the
// next save repairs the row.
func decodeFacts(userID, raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var facts []string
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		slog.Warn("discarding unreadable facts", "user_id", userID, "error", err.Error())
		return []string{}
	}
	if facts == nil {
		facts = []string{}
	}
	return facts
}

func storageError(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, memory.ErrStorage, err)
}
