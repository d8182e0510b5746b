package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cv-builder/internal/types"
)

const savedCVColumns = `id, user_id, name, data, settings, created_at, updated_at`

func scanSavedCV(row pgx.Row) (*types.SavedCV, error) {
	var cv types.SavedCV
	var data, settings []byte
	if err := row.Scan(&cv.ID, &cv.UserID, &cv.Name, &data, &settings, &cv.CreatedAt, &cv.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &cv.Data); err != nil {
		return nil, fmt.Errorf("failed to decode cv data: %w", err)
	}
	if err := json.Unmarshal(settings, &cv.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode cv settings: %w", err)
	}
	return &cv, nil
}

// SaveCV upserts a full snapshot of a saved CV. CreatedAt is preserved on update.
func (db *DB) SaveCV(ctx context.Context, cv *types.SavedCV) error {
	data, err := json.Marshal(cv.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal cv data: %w", err)
	}
	settings, err := json.Marshal(cv.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal cv settings: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO saved_cvs (id, user_id, name, data, settings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET name = $3, data = $4, settings = $5, updated_at = $7
		 WHERE saved_cvs.user_id = $2`,
		cv.ID, cv.UserID, cv.Name, data, settings, cv.CreatedAt, cv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save cv %s: %w", cv.ID, err)
	}
	return nil
}

// GetCV retrieves a saved CV by ID. Returns nil, nil when not found.
func (db *DB) GetCV(ctx context.Context, id string) (*types.SavedCV, error) {
	cv, err := scanSavedCV(db.pool.QueryRow(ctx, `SELECT `+savedCVColumns+` FROM saved_cvs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}
	return cv, nil
}

// DeleteCV removes a saved CV
func (db *DB) DeleteCV(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM saved_cvs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cv: %w", err)
	}
	return nil
}

// ListCVs returns a user's saved CVs, most recently updated first
func (db *DB) ListCVs(ctx context.Context, userID string) ([]types.SavedCV, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+savedCVColumns+` FROM saved_cvs WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cvs: %w", err)
	}
	defer rows.Close()

	var cvs []types.SavedCV
	for rows.Next() {
		cv, err := scanSavedCV(rows)
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
