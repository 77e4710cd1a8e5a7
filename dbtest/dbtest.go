//go:build integration

// Package dbtest starts a throwaway PostgreSQL container for integration tests and
// applies the application's migrations to it.
package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/user/vidtube-go/db"
)

// NewPool returns a pool connected to a freshly migrated database. The container is
// terminated when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("vidtube_test"),
		postgres.WithUsername("vidtube"),
		postgres.WithPassword("vidtube"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := db.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// CreateUser inserts a user with a throwaway password hash and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool, username string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (username, email, full_name, avatar, password)
		 VALUES ($1, $2, $3, $4, 'x') RETURNING id`,
		strings.ToLower(username), strings.ToLower(username)+"@example.com", username,
		"https://cdn.example.com/avatars/"+username+".png",
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return id
}

// CreateVideo inserts a video owned by ownerID and returns its id.
func CreateVideo(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, title string, published bool) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO videos (video_file, thumbnail, title, description, duration, is_published, owner_id)
		 VALUES ($1, $2, $3, $4, 60, $5, $6) RETURNING id`,
		"https://cdn.example.com/videos/"+title+".mp4",
		"https://cdn.example.com/thumbnails/"+title+".png",
		title, "about "+title, published, ownerID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create video %s: %v", title, err)
	}
	return id
}
