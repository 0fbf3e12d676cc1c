package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository(t *testing.T) {
	connURL := os.Getenv("TEST_POSTGRES_URL")
	if connURL == "" {
		t.Skip("TEST_POSTGRES_URL is not set")
	}

	testRepository(t, func(t *testing.T) TaskRepository {
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, connURL)
		require.NoError(t, err)

		repo := NewPostgresRepository(zerolog.Nop(), pool)
		require.NoError(t, repo.Migrate(ctx))
		_, err = pool.Exec(ctx, "TRUNCATE todos")
		require.NoError(t, err)

		t.Cleanup(func() { _ = repo.Close(ctx) })
		return repo
	})
}

func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI is not set")
	}

	testRepository(t, func(t *testing.T) TaskRepository {
		ctx := context.Background()
		collection := "todos_" + uuid.NewString()

		repo, err := OpenMongo(ctx, zerolog.Nop(), uri, "todo_reminders_test", collection)
		require.NoError(t, err)

		t.Cleanup(func() {
			_ = repo.todos.Drop(ctx)
			_ = repo.Close(ctx)
		})
		return repo
	})
}
