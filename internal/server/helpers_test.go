package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/templates"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*db.User
	resets    map[string]memReset
	failAfter error // returned by UpdatePassword when set
	deleted   []uuid.UUID
}

type memReset struct {
	userID  uuid.UUID
	expires time.Time
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uuid.UUID]*db.User{}, resets: map[string]memReset{}}
}

func (m *memUsers) CreateUser(_ context.Context, displayName, email string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = &db.User{ID: id, DisplayName: displayName, Email: strings.ToLower(email), CreatedAt: time.Now()}
	return id, nil
}

func (m *memUsers) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter != nil {
		return m.failAfter
	}
	u, ok := m.users[id]
	if !ok {
		return errUserMissing
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memUsers) CreatePasswordReset(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[tokenHash] = memReset{userID: userID, expires: expiresAt}
	return nil
}

func (m *memUsers) ConsumePasswordReset(_ context.Context, tokenHash string, now time.Time) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resets[tokenHash]
	if !ok || !r.expires.After(now) {
		return uuid.Nil, nil
	}
	delete(m.resets, tokenHash)
	return r.userID, nil
}

// addIncomplete stores an account that never set a password.
func (m *memUsers) addIncomplete(email string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = &db.User{ID: id, DisplayName: "Pending", Email: email, CreatedAt: time.Now()}
	return id
}

var errUserMissing = errors.New("user not found")

type captureNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *captureNotifier) NotifyReset(_ context.Context, email, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = map[string]string{}
	}
	n.tokens[email] = token
	return nil
}

func (n *captureNotifier) token(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

type stubSnapshotter struct {
	mu    sync.Mutex
	calls int
	err   error
	w, h  int
}

func (s *stubSnapshotter) Capture(_ context.Context, _ *templates.VisualTree, scale float64) (*export.Raster, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 30, G: 60, B: 90, A: 255}}, image.Point{}, draw.Src)
	return &export.Raster{Image: img, Scale: scale}, nil
}

type stubPrinter struct {
	mu   sync.Mutex
	docs []string
}

func (p *stubPrinter) Print(_ context.Context, doc string, _ export.PrintOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, doc)
	return nil
}

type stubArtifacts struct {
	name, contentType string
	size              int
	err               error
}

func (a *stubArtifacts) Store(_ context.Context, name, contentType string, body []byte) (string, string, error) {
	if a.err != nil {
		return "", "", a.err
	}
	a.name, a.contentType, a.size = name, contentType, len(body)
	return "exports/" + name, "https://bucket.example/exports/" + name + "?sig=1", nil
}

type testEnv struct {
	server    *Server
	users     *memUsers
	notifier  *captureNotifier
	snap      *stubSnapshotter
	printer   *stubPrinter
	artifacts *stubArtifacts
	pipeline  *export.Pipeline
	tokens    *JWTService
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret-key-for-jwt-signing", ExpirationHours: 1, Issuer: "cv-builder-test"}
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	logger := logging.Discard()

	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cvs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	env := &testEnv{
		users:     newMemUsers(),
		notifier:  &captureNotifier{},
		snap:      &stubSnapshotter{w: 120, h: 200},
		printer:   &stubPrinter{},
		artifacts: &stubArtifacts{},
	}
	env.tokens = NewJWTService(testJWTConfig(), store.NewMemoryCache())
	env.pipeline = export.NewPipeline(env.snap, env.printer, nil, logger)
	auth := NewAuthService(env.users, &config.PasswordConfig{BcryptCost: 4}, env.tokens, env.notifier, logger)

	env.server = New(opts, Deps{
		Auth:      auth,
		Tokens:    env.tokens,
		CVs:       store.NewService(repo, store.ServiceConfig{Logger: logger}),
		Exports:   env.pipeline,
		Artifacts: env.artifacts,
		Logger:    logger,
	})
	t.Cleanup(env.server.rateLimiter.Stop)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its session token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"displayName": "Ada", "email": email, "password": "analytical-1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func sampleDocument() map[string]any {
	return map[string]any{
		"contact": map[string]any{
			"firstName": "Ada",
			"lastName":  "Lovelace",
			"email":     "ada@example.com",
			"title":     "Analyst",
		},
		"profile": "Mathematician working on the analytical engine.",
		"skills": []map[string]any{
			{"id": "s1", "name": "Mathematics", "level": "expert"},
		},
	}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
