package replication

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"podcast-catalog/pkg/db"
	"podcast-catalog/pkg/domain"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 5
)

// Config wires the replication dependencies.
type Config struct {
	Source db.Store
	Target db.Store
	Logger *slog.Logger

	BatchSize int
	Workers   int
}

// Replicator copies the catalog from one backend to another.
//
// This is a one-shot, "copy everything" flow. An episode already present in
// the target (same video URL, or same title and date when there is no URL) is
// not copied again, and notes are remapped onto the target's episode ids.
type Replicator struct {
	source    db.Store
	target    db.Store
	logger    *slog.Logger
	batchSize int
	workers   int
}

// Result counts what a run did.
type Result struct {
	EpisodesProcessed int `json:"episodes_processed"`
	EpisodesInserted  int `json:"episodes_inserted"`
	NotesProcessed    int `json:"notes_processed"`
	NotesInserted     int `json:"notes_inserted"`
	// NotesOrphaned are notes whose episode exists in neither store; they are not copied.
	NotesOrphaned int `json:"notes_orphaned"`
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source store is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target store is required")
	}
	r := &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.workers <= 0 {
		r.workers = defaultWorkers
	}
	return r, nil
}

// Run replicates episodes first, then notes.
func (r *Replicator) Run(ctx context.Context) (Result, error) {
	var res Result

	episodes, err := r.source.Episodes().GetAll(ctx)
	if err != nil {
		return res, fmt.Errorf("read source episodes: %w", err)
	}
	r.logger.Info("loaded source episodes, processing in batches", "count", len(episodes))

	idMap, inserted, err := r.replicateEpisodes(ctx, episodes)
	if err != nil {
		return res, err
	}
	res.EpisodesProcessed = len(episodes)
	res.EpisodesInserted = inserted

	notes, err := r.source.Notes().GetAll(ctx)
	if err != nil {
		return res, fmt.Errorf("read source notes: %w", err)
	}
	res.NotesProcessed = len(notes)
	res.NotesInserted, res.NotesOrphaned, err = r.replicateNotes(ctx, notes, idMap)
	if err != nil {
		return res, err
	}

	r.logger.Info("replication complete",
		"episodes_processed", res.EpisodesProcessed,
		"episodes_inserted", res.EpisodesInserted,
		"notes_processed", res.NotesProcessed,
		"notes_inserted", res.NotesInserted,
		"notes_orphaned", res.NotesOrphaned)
	return res, nil
}

// episodeKey identifies the same episode across backends, whose ids differ.
func episodeKey(ep domain.Episode) string {
	if u := strings.TrimSpace(ep.VideoURL); u != "" {
		return "url:" + u
	}
	return "title:" + strings.ToLower(strings.TrimSpace(ep.Title)) + "|" + ep.FormattedDate()
}

// replicateEpisodes inserts missing episodes in parallel batches and returns
// the source→target id map covering both new and pre-existing episodes.
func (r *Replicator) replicateEpisodes(ctx context.Context, episodes []domain.Episode) (map[int64]int64, int, error) {
	existing, err := r.target.Episodes().GetAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("read target episodes: %w", err)
	}
	byKey := make(map[string]int64, len(existing))
	for _, ep := range existing {
		byKey[episodeKey(ep)] = ep.ID
	}

	idMap := make(map[int64]int64, len(episodes))
	toInsert := make([]domain.Episode, 0, len(episodes))
	for _, ep := range episodes {
		key := episodeKey(ep)
		if id, ok := byKey[key]; ok {
			idMap[ep.ID] = id
			continue
		}
		// Claim the key so duplicates within the source are inserted once.
		byKey[key] = 0
		toInsert = append(toInsert, ep)
	}

	type batchJob struct {
		batch      []domain.Episode
		start, end int
	}
	type batchResult struct {
		ids map[int64]int64
		err error
	}

	numBatches := (len(toInsert) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(toInsert); start += r.batchSize {
		end := min(start+r.batchSize, len(toInsert))
		jobs <- batchJob{batch: toInsert[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				ids, err := r.insertEpisodeBatch(ctx, job.batch)
				if err != nil {
					err = fmt.Errorf("insert batch [%d:%d]: %w", job.start, job.end, err)
				}
				results <- batchResult{ids: ids, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	inserted := 0
	var firstErr error
	for result := range results {
		if result.err != nil && firstErr == nil {
			firstErr = result.err
		}
		for src, dst := range result.ids {
			idMap[src] = dst
			inserted++
		}
		if inserted > 0 && inserted%1000 == 0 {
			r.logger.Info("progress", "inserted", inserted, "total", len(toInsert))
		}
	}
	if firstErr != nil {
		return nil, inserted, firstErr
	}
	return idMap, inserted, nil
}

func (r *Replicator) insertEpisodeBatch(ctx context.Context, batch []domain.Episode) (map[int64]int64, error) {
	ids := make(map[int64]int64, len(batch))
	for _, ep := range batch {
		if err := ctx.Err(); err != nil {
			return ids, err
		}
		srcID := ep.ID
		ep.ID = 0
		created, err := r.target.Episodes().Create(ctx, ep)
		if err != nil {
			return ids, fmt.Errorf("episode %d (%q): %w", srcID, ep.Title, err)
		}
		ids[srcID] = created.ID
	}
	return ids, nil
}

// replicateNotes copies notes whose episode is mapped, skipping notes the
// target already holds (same episode, content and creation time).
func (r *Replicator) replicateNotes(ctx context.Context, notes []domain.Note, idMap map[int64]int64) (int, int, error) {
	existing, err := r.target.Notes().GetAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read target notes: %w", err)
	}
	noteKey := func(n domain.Note) string {
		return fmt.Sprintf("%d|%d|%s", n.EpisodeID, n.CreatedAt.Unix(), n.Content)
	}
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[noteKey(n)] = true
	}

	inserted, orphaned := 0, 0
	for _, n := range notes {
		target, ok := idMap[n.EpisodeID]
		if !ok {
			orphaned++
			continue
		}
		n.ID = 0
		n.EpisodeID = target
		if seen[noteKey(n)] {
			continue
		}
		if _, err := r.target.Notes().Create(ctx, n); err != nil {
			return inserted, orphaned, fmt.Errorf("insert note for episode %d: %w", target, err)
		}
		seen[noteKey(n)] = true
		inserted++
	}
	return inserted, orphaned, nil
}
