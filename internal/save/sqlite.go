package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/save/migrations"

	_ "modernc.org/sqlite"
)

const metaCurrentPlayer = "current_player"

// SQLiteStore keeps saves in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, playerID string) ([]byte, error) {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	var blob []byte
	err = s.db.QueryRowContext(ctx, `SELECT blob FROM saves WHERE player_id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}
	return blob, nil
}

func (s *SQLiteStore) Save(ctx context.Context, playerID string, blob []byte) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (player_id, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		id, blob, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, playerID string) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE player_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete save: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player_id, blob, updated_at FROM saves ORDER BY player_id`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			id      string
			blob    []byte
			updated int64
		)
		if err := rows.Scan(&id, &blob, &updated); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		out = append(out, Entry{PlayerID: id, UpdatedAt: fromMillis(updated), Size: len(blob), Summary: Summarize(blob)})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CurrentPlayer(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaCurrentPlayer).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: no current player", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read current player: %w", err)
	}
	return ValidatePlayerID(id)
}

func (s *SQLiteStore) SetCurrentPlayer(ctx context.Context, playerID string) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaCurrentPlayer, id,
	)
	if err != nil {
		return fmt.Errorf("set current player: %w", err)
	}
	return nil
}
