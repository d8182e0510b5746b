package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the local DB for integration testing and applies
// migrations. Skipped if DATABASE_URL is not set or connection fails.
func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, Migrate(ctx, dbURL))
	return db
}

func TestIntegration_UserLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "Test-" + uuid.New().String() + "@Example.com"
	id, err := db.CreateUser(ctx, "Test User", email)
	require.NoError(t, err)
	defer db.DeleteUser(ctx, id)

	u, err := db.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, normalizeEmail(email), u.Email)
	assert.False(t, u.PasswordSet) // new users have password_set = FALSE by default

	exists, err := db.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, db.UpdatePassword(ctx, id, "$2a$10$hash"))
	u, err = db.GetUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.PasswordSet)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)

	err = db.UpdatePassword(ctx, uuid.New(), "$2a$10$hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")

	missing, err := db.GetUserByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_PasswordResets(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	id, err := db.CreateUser(ctx, "Reset User", "reset-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, id)

	now := time.Now()
	require.NoError(t, db.CreatePasswordReset(ctx, id, "hash-live", now.Add(time.Hour)))
	require.NoError(t, db.CreatePasswordReset(ctx, id, "hash-dead", now.Add(-time.Hour)))

	got, err := db.ConsumePasswordReset(ctx, "hash-live", now)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	// tokens are single use
	got, err = db.ConsumePasswordReset(ctx, "hash-live", now)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)

	got, err = db.ConsumePasswordReset(ctx, "hash-dead", now)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)

	n, err := db.DeleteExpiredPasswordResets(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
