package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/notes"
)

// MemoryStore keeps episodes and notes in process memory. It backs the CLI
// when no database is configured and is seeded from a JSON file.
type MemoryStore struct {
	mu       sync.RWMutex
	episodes []domain.Episode
	notes    []domain.Note
}

// Seed is the on-disk shape of a memory store snapshot.
type Seed struct {
	Episodes []domain.Episode `json:"episodes"`
	Notes    []domain.Note    `json:"notes"`
}

// NewMemoryStore creates a store holding copies of the given records.
func NewMemoryStore(episodes []domain.Episode, ns []domain.Note) *MemoryStore {
	return &MemoryStore{
		episodes: slices.Clone(episodes),
		notes:    slices.Clone(ns),
	}
}

// LoadMemoryStore reads a seed file. A missing file yields an empty store.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	if path == "" {
		return NewMemoryStore(nil, nil), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewMemoryStore(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return NewMemoryStore(seed.Episodes, seed.Notes), nil
}

// Snapshot returns copies of the current contents.
func (s *MemoryStore) Snapshot() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Seed{Episodes: slices.Clone(s.episodes), Notes: slices.Clone(s.notes)}
}

// SaveTo writes the current contents to path as indented JSON.
func (s *MemoryStore) SaveTo(path string) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

// Episodes returns the episode repository backed by this store.
func (s *MemoryStore) Episodes() EpisodeRepository { return memoryEpisodes{s} }

// Notes returns the note repository backed by this store.
func (s *MemoryStore) Notes() NoteRepository { return memoryNotes{s} }

// Close is a no-op; persistence is the caller's job via SaveTo.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

type memoryEpisodes struct{ s *MemoryStore }

func (r memoryEpisodes) GetAll(ctx context.Context) ([]domain.Episode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.episodes), nil
}

func (r memoryEpisodes) GetByID(ctx context.Context, id int64) (domain.Episode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := slices.IndexFunc(r.s.episodes, func(ep domain.Episode) bool { return ep.ID == id })
	if i < 0 {
		return domain.Episode{}, fmt.Errorf("episode %d: %w", id, domain.ErrNotFound)
	}
	return r.s.episodes[i], nil
}

func (r memoryEpisodes) Create(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var maxID int64
	for _, e := range r.s.episodes {
		maxID = max(maxID, e.ID)
	}
	ep.ID = maxID + 1
	r.s.episodes = append(r.s.episodes, ep)
	return ep, nil
}

func (r memoryEpisodes) Update(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.episodes, func(e domain.Episode) bool { return e.ID == ep.ID })
	if i < 0 {
		return domain.Episode{}, fmt.Errorf("episode %d: %w", ep.ID, domain.ErrNotFound)
	}
	r.s.episodes[i] = ep
	return ep, nil
}

func (r memoryEpisodes) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.episodes, func(ep domain.Episode) bool { return ep.ID == id })
	if i < 0 {
		return fmt.Errorf("episode %d: %w", id, domain.ErrNotFound)
	}
	r.s.episodes = slices.Delete(r.s.episodes, i, i+1)
	return nil
}

type memoryNotes struct{ s *MemoryStore }

func (r memoryNotes) GetAll(ctx context.Context) ([]domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.notes), nil
}

func (r memoryNotes) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := slices.IndexFunc(r.s.notes, func(n domain.Note) bool { return n.ID == id })
	if i < 0 {
		return domain.Note{}, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	return r.s.notes[i], nil
}

func (r memoryNotes) GetByEpisode(ctx context.Context, episodeID int64) ([]domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return notes.ForEpisode(r.s.notes, episodeID), nil
}

func (r memoryNotes) Create(ctx context.Context, n domain.Note) (domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var maxID int64
	for _, existing := range r.s.notes {
		maxID = max(maxID, existing.ID)
	}
	n.ID = maxID + 1
	r.s.notes = append(r.s.notes, n)
	return n, nil
}

func (r memoryNotes) Update(ctx context.Context, n domain.Note) (domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.notes, func(existing domain.Note) bool { return existing.ID == n.ID })
	if i < 0 {
		return domain.Note{}, fmt.Errorf("note %d: %w", n.ID, domain.ErrNotFound)
	}
	r.s.notes[i] = n
	return n, nil
}

func (r memoryNotes) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.notes, func(n domain.Note) bool { return n.ID == id })
	if i < 0 {
		return fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	r.s.notes = slices.Delete(r.s.notes, i, i+1)
	return nil
}
