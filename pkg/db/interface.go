package db

import (
	"context"
	"database/sql"

	"podcast-catalog/pkg/domain"
)

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to be used interchangeably.
type DBProvider interface {
	DB() *sql.DB
}

// EpisodeRepository is the data-access capability the catalog needs for episodes.
// GetByID, Update and Delete return an error wrapping domain.ErrNotFound for unknown ids.
type EpisodeRepository interface {
	GetAll(ctx context.Context) ([]domain.Episode, error)
	GetByID(ctx context.Context, id int64) (domain.Episode, error)
	// Create assigns a new id and returns the stored episode.
	Create(ctx context.Context, ep domain.Episode) (domain.Episode, error)
	Update(ctx context.Context, ep domain.Episode) (domain.Episode, error)
	Delete(ctx context.Context, id int64) error
}

// NoteRepository is the data-access capability the catalog needs for notes.
type NoteRepository interface {
	GetAll(ctx context.Context) ([]domain.Note, error)
	GetByID(ctx context.Context, id int64) (domain.Note, error)
	GetByEpisode(ctx context.Context, episodeID int64) ([]domain.Note, error)
	Create(ctx context.Context, n domain.Note) (domain.Note, error)
	Update(ctx context.Context, n domain.Note) (domain.Note, error)
	Delete(ctx context.Context, id int64) error
}

// Store bundles both repositories of one backend.
type Store interface {
	Episodes() EpisodeRepository
	Notes() NoteRepository
	Close(ctx context.Context) error
}
