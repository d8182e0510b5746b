package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/types"
)

// DefaultCacheTTL is how long loaded documents and listings stay cached.
const DefaultCacheTTL = 5 * time.Minute

// Service implements save, load, list and delete of documents on top of a
// Repository. Reads go through the cache; writes invalidate it.
type Service struct {
	repo   Repository
	cache  Cache
	ttl    time.Duration
	now    func() time.Time
	logger logging.Logger
}

// ServiceConfig holds optional Service dependencies.
type ServiceConfig struct {
	Cache    Cache
	CacheTTL time.Duration
	Logger   logging.Logger
	Now      func() time.Time
}

// NewService creates a Service. A nil cache gets a private MemoryCache.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	if cfg.Cache == nil {
		cfg.Cache = NewMemoryCache()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{repo: repo, cache: cfg.Cache, ttl: cfg.CacheTTL, now: cfg.Now, logger: cfg.Logger}
}

func itemKey(id string) string     { return "cv:item:" + id }
func listKey(userID string) string { return "cv:list:" + userID }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Save stores a full snapshot of a document and returns its id. An empty id
// creates a new document. The caller's data is never modified.
func (s *Service) Save(ctx context.Context, userID, name string, data types.CVData, settings types.CVSettings, id string) (string, error) {
	if userID == "" {
		return "", &PersistenceError{Op: "save", Cause: ErrForbidden}
	}
	now := s.now().UTC()
	cv := &types.SavedCV{
		ID:        id,
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Data:      data.Clone(),
		Settings:  settings.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cv.Name == "" {
		cv.Name = defaultName(data)
	}
	cv.Data.AssignMissingIDs()

	if id == "" {
		cv.ID = uuid.NewString()
	} else {
		if !validID(id) {
			return "", &PersistenceError{Op: "save", ID: id, Cause: ErrNotFound}
		}
		existing, err := s.repo.GetCV(ctx, id)
		if err != nil {
			return "", &PersistenceError{Op: "save", ID: id, Cause: err}
		}
		if existing != nil {
			if existing.UserID != userID {
				return "", &PersistenceError{Op: "save", ID: id, Cause: ErrForbidden}
			}
			cv.CreatedAt = existing.CreatedAt
		}
	}

	if err := s.repo.SaveCV(ctx, cv); err != nil {
		return "", &PersistenceError{Op: "save", ID: cv.ID, Cause: err}
	}
	s.invalidate(ctx, userID, cv.ID)
	s.logger.Info(ctx, "cv saved", "id", cv.ID, "user_id", userID)
	return cv.ID, nil
}

// Load returns a document owned by userID, or nil when it does not exist or
// belongs to someone else.
func (s *Service) Load(ctx context.Context, userID, id string) (*types.SavedCV, error) {
	if !validID(id) {
		return nil, nil
	}
	cv, err := s.get(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load", ID: id, Cause: err}
	}
	if cv == nil || cv.UserID != userID {
		return nil, nil
	}
	return cv, nil
}

// List returns every document owned by userID, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]types.SavedCV, error) {
	var cvs []types.SavedCV
	if s.cachedJSON(ctx, listKey(userID), &cvs) {
		return cvs, nil
	}
	cvs, err := s.repo.ListCVs(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Cause: err}
	}
	if cvs == nil {
		cvs = []types.SavedCV{}
	}
	s.storeJSON(ctx, listKey(userID), cvs)
	return cvs, nil
}

// Delete removes a document owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return &PersistenceError{Op: "delete", ID: id, Cause: ErrNotFound}
	}
	cv, err := s.repo.GetCV(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete", ID: id, Cause: err}
	}
	if cv == nil {
		return &PersistenceError{Op: "delete", ID: id, Cause: ErrNotFound}
	}
	if cv.UserID != userID {
		return &PersistenceError{Op: "delete", ID: id, Cause: ErrForbidden}
	}
	if err := s.repo.DeleteCV(ctx, id); err != nil {
		return &PersistenceError{Op: "delete", ID: id, Cause: err}
	}
	s.invalidate(ctx, userID, id)
	s.logger.Info(ctx, "cv deleted", "id", id, "user_id", userID)
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*types.SavedCV, error) {
	var cached types.SavedCV
	if s.cachedJSON(ctx, itemKey(id), &cached) {
		return &cached, nil
	}
	cv, err := s.repo.GetCV(ctx, id)
	if err != nil || cv == nil {
		return nil, err
	}
	s.storeJSON(ctx, itemKey(id), cv)
	return cv, nil
}

// cachedJSON decodes a cache hit into dst. Cache failures count as misses.
func (s *Service) cachedJSON(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn(ctx, "cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Service) storeJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, userID, id string) {
	if err := s.cache.Delete(ctx, listKey(userID), itemKey(id)); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "user_id", userID, "id", id, "error", err)
	}
}

func defaultName(data types.CVData) string {
	if n := strings.TrimSpace(data.Contact.FullName()); n != "" {
		return n
	}
	return "Untitled CV"
}
