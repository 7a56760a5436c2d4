package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"podcast-catalog/pkg/domain"
)

// PostgresStore implements both repositories on top of any DBProvider
// (a PostgresClient or a SupabaseClient with a direct connection).
type PostgresStore struct {
	pg     DBProvider
	closer func() error
}

// NewPostgresStore wraps a connected provider. EnsureSchema should be called once
// before the first query.
func NewPostgresStore(pg DBProvider) *PostgresStore {
	s := &PostgresStore{pg: pg}
	if c, ok := pg.(interface{ Close() error }); ok {
		s.closer = c.Close
	}
	return s
}

func (s *PostgresStore) Episodes() EpisodeRepository { return sqlEpisodes{s} }
func (s *PostgresStore) Notes() NoteRepository       { return sqlNotes{s} }

// Close closes the underlying provider when it owns a connection.
func (s *PostgresStore) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *PostgresStore) db() (*sql.DB, error) {
	if s.pg == nil || s.pg.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	return s.pg.DB(), nil
}

// EnsureSchema creates the episode and note tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	// Notes keep their episode_id when the episode is deleted, so there is no
	// foreign key between the tables.
	const ddl = `
CREATE TABLE IF NOT EXISTS episode (
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  channel_name TEXT NOT NULL DEFAULT '',
  company TEXT NOT NULL DEFAULT '',
  date DATE,
  youtube_url TEXT NOT NULL DEFAULT '',
  duration TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  transcript TEXT NOT NULL DEFAULT '',
  guest_name TEXT NOT NULL DEFAULT '',
  likes BIGINT,
  views BIGINT,
  thumbnail_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS note (
  id BIGSERIAL PRIMARY KEY,
  episode_id BIGINT NOT NULL,
  content TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS note_episode_id_idx ON note (episode_id);`

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create catalog tables: %w", err)
	}
	return nil
}

const episodeColumns = `id, title, channel_name, company, date, youtube_url, duration, description, transcript, guest_name, likes, views, thumbnail_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (domain.Episode, error) {
	var (
		ep           domain.Episode
		date         sql.NullTime
		likes, views sql.NullInt64
	)
	err := row.Scan(&ep.ID, &ep.Title, &ep.ChannelName, &ep.Company, &date, &ep.VideoURL,
		&ep.Duration, &ep.Description, &ep.Transcript, &ep.GuestName, &likes, &views, &ep.ThumbnailURL)
	if err != nil {
		return domain.Episode{}, err
	}
	if date.Valid {
		d := domain.Date(date.Time)
		ep.PublishDate = &d
	}
	if likes.Valid {
		ep.Likes = &likes.Int64
	}
	if views.Valid {
		ep.Views = &views.Int64
	}
	return ep, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: domain.Date(*t), Valid: true}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func notFound(err error, kind string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", kind, id, err)
}

type sqlEpisodes struct{ s *PostgresStore }

func (r sqlEpisodes) GetAll(ctx context.Context) ([]domain.Episode, error) {
	db, err := r.s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT `+episodeColumns+` FROM episode ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	out := []domain.Episode{}
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		out = append(out, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r sqlEpisodes) GetByID(ctx context.Context, id int64) (domain.Episode, error) {
	db, err := r.s.db()
	if err != nil {
		return domain.Episode{}, err
	}
	ep, err := scanEpisode(db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episode WHERE id = $1`, id))
	if err != nil {
		return domain.Episode{}, notFound(err, "episode", id)
	}
	return ep, nil
}

func (r sqlEpisodes) Create(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	db, err := r.s.db()
	if err != nil {
		return domain.Episode{}, err
	}
	const q = `
INSERT INTO episode (title, channel_name, company, date, youtube_url, duration, description, transcript, guest_name, likes, views, thumbnail_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`
	err = db.QueryRowContext(ctx, q, ep.Title, ep.ChannelName, ep.Company, nullDate(ep.PublishDate), ep.VideoURL,
		ep.Duration, ep.Description, ep.Transcript, ep.GuestName, nullInt(ep.Likes), nullInt(ep.Views), ep.ThumbnailURL).Scan(&ep.ID)
	if err != nil {
		return domain.Episode{}, fmt.Errorf("insert episode title=%q: %w", ep.Title, err)
	}
	return ep, nil
}

func (r sqlEpisodes) Update(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	db, err := r.s.db()
	if err != nil {
		return domain.Episode{}, err
	}
	const q = `
UPDATE episode SET title = $2, channel_name = $3, company = $4, date = $5, youtube_url = $6, duration = $7,
  description = $8, transcript = $9, guest_name = $10, likes = $11, views = $12, thumbnail_url = $13
WHERE id = $1`
	res, err := db.ExecContext(ctx, q, ep.ID, ep.Title, ep.ChannelName, ep.Company, nullDate(ep.PublishDate), ep.VideoURL,
		ep.Duration, ep.Description, ep.Transcript, ep.GuestName, nullInt(ep.Likes), nullInt(ep.Views), ep.ThumbnailURL)
	if err != nil {
		return domain.Episode{}, fmt.Errorf("update episode %d: %w", ep.ID, err)
	}
	if err := requireAffected(res, "episode", ep.ID); err != nil {
		return domain.Episode{}, err
	}
	return ep, nil
}

func (r sqlEpisodes) Delete(ctx context.Context, id int64) error {
	db, err := r.s.db()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM episode WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete episode %d: %w", id, err)
	}
	return requireAffected(res, "episode", id)
}

func requireAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

const noteColumns = `id, episode_id, content, created_at, updated_at`

func scanNote(row rowScanner) (domain.Note, error) {
	var n domain.Note
	if err := row.Scan(&n.ID, &n.EpisodeID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

type sqlNotes struct{ s *PostgresStore }

func (r sqlNotes) query(ctx context.Context, q string, args ...any) ([]domain.Note, error) {
	db, err := r.s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	out := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r sqlNotes) GetAll(ctx context.Context) ([]domain.Note, error) {
	return r.query(ctx, `SELECT `+noteColumns+` FROM note ORDER BY id`)
}

func (r sqlNotes) GetByEpisode(ctx context.Context, episodeID int64) ([]domain.Note, error) {
	return r.query(ctx, `SELECT `+noteColumns+` FROM note WHERE episode_id = $1 ORDER BY id`, episodeID)
}

func (r sqlNotes) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	db, err := r.s.db()
	if err != nil {
		return domain.Note{}, err
	}
	n, err := scanNote(db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM note WHERE id = $1`, id))
	if err != nil {
		return domain.Note{}, notFound(err, "note", id)
	}
	return n, nil
}

func (r sqlNotes) Create(ctx context.Context, n domain.Note) (domain.Note, error) {
	db, err := r.s.db()
	if err != nil {
		return domain.Note{}, err
	}
	const q = `
INSERT INTO note (episode_id, content, created_at, updated_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err := db.QueryRowContext(ctx, q, n.EpisodeID, n.Content, n.CreatedAt, n.UpdatedAt).Scan(&n.ID); err != nil {
		return domain.Note{}, fmt.Errorf("insert note for episode %d: %w", n.EpisodeID, err)
	}
	return n, nil
}

func (r sqlNotes) Update(ctx context.Context, n domain.Note) (domain.Note, error) {
	db, err := r.s.db()
	if err != nil {
		return domain.Note{}, err
	}
	const q = `UPDATE note SET episode_id = $2, content = $3, created_at = $4, updated_at = $5 WHERE id = $1`
	res, err := db.ExecContext(ctx, q, n.ID, n.EpisodeID, n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return domain.Note{}, fmt.Errorf("update note %d: %w", n.ID, err)
	}
	if err := requireAffected(res, "note", n.ID); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func (r sqlNotes) Delete(ctx context.Context, id int64) error {
	db, err := r.s.db()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM note WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return requireAffected(res, "note", id)
}
