package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists engine snapshots to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so API reads don't block commit writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS engine_state (
			player_id  TEXT PRIMARY KEY,
			state      BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applied_tx (
			player_id  TEXT NOT NULL,
			tx_id      TEXT NOT NULL,
			applied_at INTEGER NOT NULL,
			PRIMARY KEY (player_id, tx_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveState writes the snapshot and the transaction marker in one SQL
// transaction. A txID that was already applied leaves the stored state
// untouched, which is what makes commit retries idempotent.
func (s *SQLiteStore) SaveState(ctx context.Context, playerID, txID string, state []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO applied_tx (player_id, tx_id, applied_at) VALUES (?, ?, ?)
		 ON CONFLICT (player_id, tx_id) DO NOTHING`,
		playerID, txID, now)
	if err != nil {
		return fmt.Errorf("mark tx: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// already applied by an earlier attempt
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO engine_state (player_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (player_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		playerID, state, now); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadState(ctx context.Context, playerID string) ([]byte, bool, error) {
	var state []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM engine_state WHERE player_id = ?`, playerID).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read state: %w", err)
	}
	return state, true, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
