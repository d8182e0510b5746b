package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/jonathan/cv-builder/internal/types"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LocalUser owns every document in a local workspace.
const LocalUser = "local"

// SQLite is a Repository stored in a single SQLite file, used by the CLI.
type SQLite struct {
	db *sql.DB
}

// Ensure SQLite implements Repository
var _ Repository = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrateSQLite(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLite{db: conn}, nil
}

// NewSQLite wraps an already migrated connection.
func NewSQLite(conn *sql.DB) *SQLite {
	return &SQLite{db: conn}
}

func migrateSQLite(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(sqliteMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SaveCV(ctx context.Context, cv *types.SavedCV) error {
	data, err := json.Marshal(cv.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal cv data: %w", err)
	}
	settings, err := json.Marshal(cv.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal cv settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_cvs (id, user_id, name, data, settings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, data = excluded.data,
		   settings = excluded.settings, updated_at = excluded.updated_at`,
		cv.ID, cv.UserID, cv.Name, string(data), string(settings),
		cv.CreatedAt.UTC().Format(timeLayout), cv.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save cv %s: %w", cv.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*types.SavedCV, error) {
	var cv types.SavedCV
	var data, settings, created, updated string
	if err := row.Scan(&cv.ID, &cv.UserID, &cv.Name, &data, &settings, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &cv.Data); err != nil {
		return nil, fmt.Errorf("failed to decode cv data: %w", err)
	}
	if err := json.Unmarshal([]byte(settings), &cv.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode cv settings: %w", err)
	}
	var err error
	if cv.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if cv.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &cv, nil
}

func (s *SQLite) GetCV(ctx context.Context, id string) (*types.SavedCV, error) {
	cv, err := scanRow(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, data, settings, created_at, updated_at FROM saved_cvs WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}
	return cv, nil
}

func (s *SQLite) DeleteCV(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_cvs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cv: %w", err)
	}
	return nil
}

func (s *SQLite) ListCVs(ctx context.Context, userID string) ([]types.SavedCV, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, data, settings, created_at, updated_at
		 FROM saved_cvs WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cvs: %w", err)
	}
	defer rows.Close()

	var cvs []types.SavedCV
	for rows.Next() {
		cv, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cv: %w", err)
		}
		cvs = append(cvs, *cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cvs: %w", err)
	}
	return cvs, nil
}
