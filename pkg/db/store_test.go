package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"podcast-catalog/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the same CRUD scenario against any backend.
func exerciseStore(t *testing.T, ctx context.Context, store Store) {
	t.Helper()

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	likes := int64(42)

	created, err := store.Episodes().Create(ctx, domain.Episode{
		Title:       "Scaling Healthcare",
		ChannelName: "Builders",
		Company:     "Acme",
		PublishDate: &date,
		Duration:    "45 min",
		GuestName:   "Jane Doe",
		Likes:       &likes,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := store.Episodes().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scaling Healthcare", got.Title)
	require.NotNil(t, got.PublishDate)
	assert.True(t, date.Equal(*got.PublishDate))
	require.NotNil(t, got.Likes)
	assert.Equal(t, int64(42), *got.Likes)

	got.Company = "Acme Health"
	_, err = store.Episodes().Update(ctx, got)
	require.NoError(t, err)

	all, err := store.Episodes().GetAll(ctx)
	require.NoError(t, err)
	found := false
	for _, ep := range all {
		if ep.ID == created.ID {
			found = true
			assert.Equal(t, "Acme Health", ep.Company)
		}
	}
	assert.True(t, found)

	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	note, err := store.Notes().Create(ctx, domain.Note{
		EpisodeID: created.ID,
		Content:   "Great point about onboarding",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NotZero(t, note.ID)

	byEpisode, err := store.Notes().GetByEpisode(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, byEpisode, 1)
	assert.Equal(t, note.ID, byEpisode[0].ID)

	require.NoError(t, store.Notes().Delete(ctx, note.ID))
	_, err = store.Notes().GetByID(ctx, note.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Episodes().Delete(ctx, created.ID))
	_, err = store.Episodes().GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Episodes().Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestMemoryStore_CRUD(t *testing.T) {
	exerciseStore(t, context.Background(), NewMemoryStore(nil, nil))
}

func TestMemoryStore_IDsAreMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore([]domain.Episode{{ID: 3, Title: "a"}, {ID: 7, Title: "b"}}, nil)

	ep, err := store.Episodes().Create(ctx, domain.Episode{Title: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), ep.ID)

	n, err := store.Notes().Create(ctx, domain.Note{EpisodeID: 3, Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore([]domain.Episode{{ID: 1, Title: "a"}}, nil)

	all, err := store.Episodes().GetAll(ctx)
	require.NoError(t, err)
	all[0].Title = "mutated"

	got, err := store.Episodes().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil, nil)

	_, err := store.Episodes().Update(ctx, domain.Episode{ID: 9, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Notes().Update(ctx, domain.Note{ID: 9})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_SeedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")

	missing, err := LoadMemoryStore(path)
	require.NoError(t, err)
	assert.Empty(t, missing.Snapshot().Episodes)

	store := NewMemoryStore(
		[]domain.Episode{{ID: 1, Title: "Episode One", GuestName: "Jane"}},
		[]domain.Note{{ID: 1, EpisodeID: 1, Content: "note"}},
	)
	require.NoError(t, store.SaveTo(path))

	loaded, err := LoadMemoryStore(path)
	require.NoError(t, err)
	snap := loaded.Snapshot()
	require.Len(t, snap.Episodes, 1)
	assert.Equal(t, "Jane", snap.Episodes[0].GuestName)
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "note", snap.Notes[0].Content)
}

func TestLoadMemoryStore_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadMemoryStore(path)
	assert.Error(t, err)
}

func TestIntegration_MongoStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("PODCAST_CATALOG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PODCAST_CATALOG_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client := NewClient(uri, "podcast_catalog_test")
	require.NoError(t, client.Connect(ctx))
	defer client.Close(ctx)

	exerciseStore(t, ctx, client)
}

func TestIntegration_PostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	dsn := os.Getenv("PODCAST_CATALOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PODCAST_CATALOG_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pg := NewPostgresClient(PostgresConfig{DSN: dsn})
	require.NoError(t, pg.Connect(ctx))
	store := NewPostgresStore(pg)
	defer store.Close(ctx)
	require.NoError(t, store.EnsureSchema(ctx))

	exerciseStore(t, ctx, store)
}

func TestPostgresStore_NotConnected(t *testing.T) {
	store := NewPostgresStore(NewPostgresClient(PostgresConfig{}))

	_, err := store.Episodes().GetAll(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.EnsureSchema(context.Background()))

	assert.ErrorIs(t, NewPostgresClient(PostgresConfig{}).Connect(context.Background()), ErrNoDSN)
}
