// Package catalog composes the repositories with the filter, search, rank and
// highlight pipeline. It is the single entry point used by the CLI.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podcast-catalog/pkg/db"
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/filter"
	"podcast-catalog/pkg/notes"
	"podcast-catalog/pkg/ranking"
	"podcast-catalog/pkg/search"
	"podcast-catalog/pkg/textmatch"
)

// Service answers catalog queries against injected repositories.
type Service struct {
	episodes db.EpisodeRepository
	notes    db.NoteRepository
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a catalog service. A nil logger falls back to slog.Default().
func New(episodes db.EpisodeRepository, notes db.NoteRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		episodes: episodes,
		notes:    notes,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRequest drives the episode table view.
type ListRequest struct {
	// Query is the quick filter across title, channel, company, transcript and description.
	Query     string
	Criteria  domain.FilterCriteria
	SortField ranking.EpisodeField
	SortDir   ranking.Direction
}

// Stats are the counters shown above the episode table.
type Stats struct {
	Total        int `json:"total"`
	Filtered     int `json:"filtered"`
	UniqueGuests int `json:"unique_guests"`
}

// ListResponse is the filtered and sorted episode table.
type ListResponse struct {
	Episodes []domain.Episode     `json:"episodes"`
	Stats    Stats                `json:"stats"`
	Options  filter.FilterOptions `json:"options"`
}

// ListEpisodes applies the quick filter, the criteria and the table sort.
func (s *Service) ListEpisodes(ctx context.Context, req ListRequest) (ListResponse, error) {
	all, err := s.episodes.GetAll(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("load episodes: %w", err)
	}

	filters, err := filter.FromCriteria(req.Criteria)
	if err != nil {
		return ListResponse{}, err
	}
	if strings.TrimSpace(req.Query) != "" {
		qf, err := filter.NewQueryFilter(req.Query)
		if err != nil {
			return ListResponse{}, err
		}
		filters = append(filters, qf)
	}

	field, dir := req.SortField, req.SortDir
	if field == "" {
		field = ranking.FieldDate
	}
	if dir == "" {
		dir = ranking.Desc
	}

	kept := ranking.SortEpisodes(filter.FilterEpisodes(all, filters...), field, dir)
	s.logger.Debug("listed episodes", "total", len(all), "filtered", len(kept), "active_filters", req.Criteria.ActiveCount())

	return ListResponse{
		Episodes: kept,
		Stats: Stats{
			Total:        len(all),
			Filtered:     len(kept),
			UniqueGuests: uniqueGuests(kept),
		},
		Options: filter.Options(all),
	}, nil
}

func uniqueGuests(episodes []domain.Episode) int {
	seen := make(map[string]bool)
	for _, ep := range episodes {
		if ep.GuestName != "" {
			seen[ep.GuestName] = true
		}
	}
	return len(seen)
}

// SearchRequest drives the search view.
type SearchRequest struct {
	Query    string
	Criteria domain.FilterCriteria
	Order    domain.SortOrder
}

// Result is one ranked search hit with highlighted text ready for display.
type Result struct {
	domain.SearchMatch
	TitleSegments   []domain.Segment   `json:"title_segments"`
	ExcerptSegments [][]domain.Segment `json:"excerpt_segments"`
}

// SearchEpisodes filters, scores, ranks and highlights. A blank query
// returns no results.
func (s *Service) SearchEpisodes(ctx context.Context, req SearchRequest) ([]Result, error) {
	m, err := textmatch.Compile(req.Query)
	if err != nil {
		return nil, err
	}
	order := req.Order
	if order == "" {
		order = domain.SortRelevance
	}
	if m == nil {
		if _, err := ranking.Rank(nil, order); err != nil {
			return nil, err
		}
		return []Result{}, nil
	}

	all, err := s.episodes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	candidates, err := filter.Apply(all, req.Criteria)
	if err != nil {
		return nil, err
	}
	matches, err := search.Search(candidates, m.Query())
	if err != nil {
		return nil, err
	}
	ranked, err := ranking.Rank(matches, order)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(ranked))
	for _, match := range ranked {
		r := Result{
			SearchMatch:     match,
			TitleSegments:   m.Highlight(match.Episode.Title),
			ExcerptSegments: make([][]domain.Segment, 0, len(match.Excerpts)),
		}
		for _, ex := range match.Excerpts {
			r.ExcerptSegments = append(r.ExcerptSegments, m.Highlight(ex))
		}
		results = append(results, r)
	}

	s.logger.Info("search completed", "query", m.Query(), "candidates", len(candidates), "results", len(results), "order", string(order))
	return results, nil
}

// Detail is the episode page: the episode, its notes newest first, and the video embed.
type Detail struct {
	Episode  domain.Episode `json:"episode"`
	Notes    []domain.Note  `json:"notes"`
	EmbedURL string         `json:"embed_url,omitempty"`
}

// EpisodeDetail loads one episode and its notes.
func (s *Service) EpisodeDetail(ctx context.Context, id int64) (Detail, error) {
	ep, err := s.episodes.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	ns, err := s.notes.GetByEpisode(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("load notes for episode %d: %w", id, err)
	}
	sorted, err := notes.Sort(ns, nil, notes.OrderRecent)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Episode: ep, Notes: sorted, EmbedURL: ep.EmbedURL()}, nil
}

// AddNote validates content and attaches a new note to an existing episode.
func (s *Service) AddNote(ctx context.Context, episodeID int64, content string) (domain.Note, error) {
	content, err := notes.Validate(content)
	if err != nil {
		return domain.Note{}, err
	}
	if _, err := s.episodes.GetByID(ctx, episodeID); err != nil {
		return domain.Note{}, err
	}

	now := s.now().UTC()
	n, err := s.notes.Create(ctx, domain.Note{
		EpisodeID: episodeID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	s.logger.Info("note added", "note_id", n.ID, "episode_id", episodeID)
	return n, nil
}

// EditNote replaces a note's content and refreshes UpdatedAt.
func (s *Service) EditNote(ctx context.Context, id int64, content string) (domain.Note, error) {
	content, err := notes.Validate(content)
	if err != nil {
		return domain.Note{}, err
	}
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return domain.Note{}, err
	}

	n.Content = content
	n.UpdatedAt = s.now().UTC()
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	updated, err := s.notes.Update(ctx, n)
	if err != nil {
		return domain.Note{}, fmt.Errorf("update note %d: %w", id, err)
	}
	s.logger.Info("note edited", "note_id", id)
	return updated, nil
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	if err := s.notes.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("note deleted", "note_id", id)
	return nil
}

// NoteView is a note with its owning episode resolved for display.
type NoteView struct {
	domain.Note
	EpisodeTitle    string           `json:"episode_title"`
	ContentSegments []domain.Segment `json:"content_segments"`
}

// ListNotes searches and sorts every note. The query also matches the owning
// episode's title, guest and company.
func (s *Service) ListNotes(ctx context.Context, query string, order notes.Order) ([]NoteView, error) {
	if order == "" {
		order = notes.OrderRecent
	}
	all, err := s.notes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	episodes, err := s.episodes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	index := notes.Index(episodes)

	matched, err := notes.Search(all, index, query)
	if err != nil {
		return nil, err
	}
	sorted, err := notes.Sort(matched, index, order)
	if err != nil {
		return nil, err
	}

	views := make([]NoteView, 0, len(sorted))
	for _, n := range sorted {
		views = append(views, NoteView{
			Note:            n,
			EpisodeTitle:    notes.EpisodeTitle(n, index),
			ContentSegments: textmatch.Highlight(n.Content, query),
		})
	}
	return views, nil
}
