// Package ingest fills the catalog from public podcast sources: RSS/Atom
// feeds, sitemaps and paginated archives of episode pages. Episode pages are
// mined for a title, readable text, an embedded video, and a transcript
// (linked PDF/TXT or inline utterances).
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"podcast-catalog/pkg/db"
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/httpclient"
)

var (
	ErrEmptySourceURL = errors.New("source URL is empty")
	ErrMissingTitle   = errors.New("episode has no title")
)

const defaultWorkers = 8

// Report summarizes one ingest run. Per-item failures never abort the run.
type Report struct {
	Discovered int
	Skipped    int
	Imported   int
	Failed     int
	Errors     []error
}

func (r *Report) fail(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err)
}

// Service downloads episodes and persists them through an EpisodeRepository.
type Service struct {
	episodes db.EpisodeRepository
	client   *httpclient.HTTPClient
	logger   *slog.Logger
	workers  int

	// fetchPages makes feed ingest also visit each item's page for a transcript.
	fetchPages bool
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers sets the number of parallel workers. Values <= 0 are coerced to 1.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n <= 0 {
			n = 1
		}
		s.workers = n
	}
}

// WithPageTranscripts makes FromFeed follow item links to look for transcripts.
func WithPageTranscripts(enabled bool) Option {
	return func(s *Service) { s.fetchPages = enabled }
}

// New creates an ingest service. A nil client uses a browser-profile client
// with the default timeout.
func New(episodes db.EpisodeRepository, client *httpclient.HTTPClient, logger *slog.Logger, opts ...Option) *Service {
	if client == nil {
		client = httpclient.NewClient(httpclient.BrowserClient, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		episodes: episodes,
		client:   client,
		logger:   logger,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromFeed imports up to max items (max <= 0 means all) of an RSS/Atom feed.
func (s *Service) FromFeed(ctx context.Context, feedURL string, max int) (Report, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return Report{}, ErrEmptySourceURL
	}

	body, _, err := s.client.Fetch(ctx, feedURL)
	if err != nil {
		return Report{}, fmt.Errorf("fetch feed: %w", err)
	}
	feed, err := parseFeed(body)
	if err != nil {
		return Report{}, err
	}

	items := feed.Items
	if max > 0 && len(items) > max {
		items = items[:max]
	}

	candidates := make([]domain.Episode, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		candidates = append(candidates, episodeFromItem(feed, item))
	}

	s.logger.Info("feed parsed", "url", feedURL, "channel", feed.Title, "items", len(candidates))
	return s.run(ctx, candidates, func(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
		if ep.Title == "" {
			return ep, ErrMissingTitle
		}
		if s.fetchPages && strings.HasPrefix(ep.VideoURL, "http") {
			s.attachPageTranscript(ctx, &ep)
		}
		return ep, nil
	})
}

// FromSitemap imports up to max episode pages (max <= 0 means all) listed in
// a sitemap or sitemap index.
func (s *Service) FromSitemap(ctx context.Context, sitemapURL string, max int) (Report, error) {
	sitemapURL = strings.TrimSpace(sitemapURL)
	if sitemapURL == "" {
		return Report{}, ErrEmptySourceURL
	}

	locs, err := s.sitemapLocations(ctx, sitemapURL, 0)
	if err != nil {
		return Report{}, fmt.Errorf("parse sitemap: %w", err)
	}
	if max > 0 && len(locs) > max {
		locs = locs[:max]
	}

	candidates := make([]domain.Episode, 0, len(locs))
	for _, loc := range locs {
		if keep, _ := (baseURLFilter{}).ShouldKeep(ctx, loc); !keep {
			continue
		}
		// The page URL stands in as the episode reference until the page is read.
		candidates = append(candidates, domain.Episode{VideoURL: loc})
	}

	s.logger.Info("sitemap parsed", "url", sitemapURL, "pages", len(candidates))
	return s.run(ctx, candidates, s.episodeFromPage)
}

// episodeFromPage fetches an episode page and fills the episode from it.
func (s *Service) episodeFromPage(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	pageURL := ep.VideoURL
	body, _, err := s.client.Fetch(ctx, pageURL)
	if err != nil {
		return ep, fmt.Errorf("fetch episode %s: %w", pageURL, err)
	}

	info, err := extractPage(string(body))
	if err != nil {
		return ep, fmt.Errorf("extract episode %s: %w", pageURL, err)
	}

	ep.Title = info.Title
	ep.Description = info.Description
	ep.PublishDate = info.Published
	ep.ThumbnailURL = info.Thumbnail
	ep.Transcript = info.Transcript
	if info.VideoURL != "" {
		ep.VideoURL = info.VideoURL
	}

	if ep.Transcript == "" {
		s.linkedTranscript(ctx, pageURL, string(body), &ep)
	}
	return ep, nil
}

// attachPageTranscript visits a feed item's page for a transcript. Failures
// leave the episode unchanged.
func (s *Service) attachPageTranscript(ctx context.Context, ep *domain.Episode) {
	body, _, err := s.client.Fetch(ctx, ep.VideoURL)
	if err != nil {
		s.logger.Debug("episode page unavailable", "url", ep.VideoURL, "error", err)
		return
	}
	doc, err := parseDocument(string(body))
	if err != nil {
		return
	}
	if text := extractUtterances(doc); text != "" {
		ep.Transcript = text
		return
	}
	s.linkedTranscript(ctx, ep.VideoURL, string(body), ep)
}

// linkedTranscript follows the best transcript link on a page. It is best
// effort: an episode is kept even when no transcript can be read.
func (s *Service) linkedTranscript(ctx context.Context, pageURL, html string, ep *domain.Episode) {
	doc, err := parseDocument(html)
	if err != nil {
		return
	}
	ref, err := findTranscriptURL(doc)
	if err != nil {
		return
	}
	transcriptURL, err := resolveAgainst(pageURL, ref)
	if err != nil {
		return
	}
	text, err := s.fetchTranscript(ctx, transcriptURL)
	if err != nil {
		s.logger.Debug("transcript unavailable", "url", transcriptURL, "error", err)
		return
	}
	ep.Transcript = text
}

// run resolves candidates with a bounded worker pool and stores the ones not
// already in the catalog. Episodes are keyed by their video URL.
func (s *Service) run(ctx context.Context, candidates []domain.Episode, resolve func(context.Context, domain.Episode) (domain.Episode, error)) (Report, error) {
	report := Report{Discovered: len(candidates)}

	known, err := s.knownVideoURLs(ctx)
	if err != nil {
		return report, err
	}

	var mu sync.Mutex
	// claim marks a video URL as taken; it returns false for duplicates.
	claim := func(key string) bool {
		mu.Lock()
		defer mu.Unlock()
		if key == "" {
			return true
		}
		if known[key] {
			report.Skipped++
			return false
		}
		known[key] = true
		return true
	}

	jobs := make(chan domain.Episode)
	var wg sync.WaitGroup
	wg.Add(s.workers)

	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for candidate := range jobs {
				if !claim(candidate.VideoURL) {
					continue
				}
				ep, err := resolve(ctx, candidate)
				if err == nil && ep.VideoURL != candidate.VideoURL && !claim(ep.VideoURL) {
					continue
				}
				if err == nil {
					_, err = s.episodes.Create(ctx, ep)
				}

				mu.Lock()
				if err != nil {
					report.fail(fmt.Errorf("%s: %w", candidate.VideoURL, err))
				} else {
					report.Imported++
				}
				mu.Unlock()
			}
		}()
	}

	var cancelled error
dispatch:
	for _, c := range candidates {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()

	s.logger.Info("ingest finished",
		"discovered", report.Discovered,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, cancelled
}

func (s *Service) knownVideoURLs(ctx context.Context) (map[string]bool, error) {
	existing, err := s.episodes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing episodes: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, ep := range existing {
		if ep.VideoURL != "" {
			known[ep.VideoURL] = true
		}
	}
	return known, nil
}
