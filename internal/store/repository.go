package store

import (
	"context"

	"github.com/jonathan/cv-builder/internal/types"
)

// Repository is the storage backend for saved documents. Get returns
// nil, nil when a document does not exist.
type Repository interface {
	SaveCV(ctx context.Context, cv *types.SavedCV) error
	GetCV(ctx context.Context, id string) (*types.SavedCV, error)
	DeleteCV(ctx context.Context, id string) error
	ListCVs(ctx context.Context, userID string) ([]types.SavedCV, error)
}
