package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/easeaico/tsukuyomi/internal/types"
)

const sqliteBusyTimeoutMS = 5000

const sqliteSchema = `CREATE TABLE IF NOT EXISTS user_memory (
	user_id    TEXT PRIMARY KEY,
	facts      TEXT,
	intimacy   INTEGER,
	updated_at TEXT
);`

type sqliteStore struct {
	db              *sql.DB
	defaultIntimacy int
}

// openSQLite opens the database file at path, creating its directory.
// A single connection is used since SQLite serialises writes.
func openSQLite(path string, o options) (Backend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", sqliteBusyTimeoutMS),
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &sqliteStore{db: db, defaultIntimacy: o.defaultIntimacy}, nil
}

func (s *sqliteStore) Kind() string   { return KindSQLite }
func (s *sqliteStore) Schema() string { return sqliteSchema }

// Migrate creates the table and adds updated_at to tables created
// without it.
func (s *sqliteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create user_memory: %w", err)
	}

	has, err := s.hasColumn(ctx, "updated_at")
	if err != nil {
		return err
	}
	if !has {
		if _, err := s.db.ExecContext(ctx, "ALTER TABLE user_memory ADD COLUMN updated_at TEXT"); err != nil {
			return fmt.Errorf("failed to add updated_at column: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) hasColumn(ctx context.Context, name string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(user_memory)")
	if err != nil {
		return false, fmt.Errorf("failed to inspect user_memory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan table info: %w", err)
		}
		if colName == name {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context, userID string) (*types.UserRecord, error) {
	var (
		facts     sql.NullString
		intimacy  sql.NullInt64
		updatedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT facts, intimacy, updated_at FROM user_memory WHERE user_id = ?", userID,
	).Scan(&facts, &intimacy, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("load user memory", err)
	}

	rec := &types.UserRecord{
		UserID:   userID,
		Facts:    decodeFacts(userID, facts.String),
		Intimacy: s.defaultIntimacy,
	}
	if intimacy.Valid {
		rec.Intimacy = int(intimacy.Int64)
	}
	if updatedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, updatedAt.String); err == nil {
			rec.UpdatedAt = ts
		}
	}
	return rec, nil
}

func (s *sqliteStore) Save(ctx context.Context, rec *types.UserRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	facts, err := encodeFacts(rec.Facts)
	if err != nil {
		return err
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_memory (user_id, facts, intimacy, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			facts = excluded.facts,
			intimacy = excluded.intimacy,
			updated_at = excluded.updated_at`,
		rec.UserID, facts, rec.Intimacy, updatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return storageError("save user memory", err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM user_memory WHERE user_id = ?", userID); err != nil {
		return storageError("delete user memory", err)
	}
	return nil
}
