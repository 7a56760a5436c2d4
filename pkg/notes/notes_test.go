package notes

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-catalog/pkg/domain"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixtures() ([]domain.Note, map[int64]domain.Episode) {
	episodes := []domain.Episode{
		{ID: 1, Title: "Zig and Rust", GuestName: "Ana"},
		{ID: 2, Title: "Artificial Intelligence", Company: "OpenLab"},
	}
	notes := []domain.Note{
		{ID: 10, EpisodeID: 1, Content: "Great point about memory safety", CreatedAt: base, UpdatedAt: base.Add(5 * time.Hour)},
		{ID: 11, EpisodeID: 2, Content: "Follow up on evals", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: 12, EpisodeID: 99, Content: "Orphaned thought", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)},
	}
	return notes, Index(episodes)
}

func noteIDs(notes []domain.Note) []int64 {
	out := []int64{}
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestValidate(t *testing.T) {
	got, err := Validate("  keep me \n")
	require.NoError(t, err)
	assert.Equal(t, "keep me", got)

	_, err = Validate(" \t\n")
	assert.True(t, errors.Is(err, domain.ErrEmptyNote))
}

func TestEpisodeTitle(t *testing.T) {
	notes, idx := fixtures()
	assert.Equal(t, "Zig and Rust", EpisodeTitle(notes[0], idx))
	assert.Equal(t, domain.UnknownEpisodeTitle, EpisodeTitle(notes[2], idx))
}

func TestSearch(t *testing.T) {
	notes, idx := fixtures()

	got, err := Search(notes, idx, "memory")
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, noteIDs(got))

	got, err = Search(notes, idx, "openlab")
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, noteIDs(got))

	got, err = Search(notes, idx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, noteIDs(got))

	got, err = Search(notes, idx, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, noteIDs(got))
}

func TestSort(t *testing.T) {
	notes, idx := fixtures()

	tests := []struct {
		order Order
		want  []int64
	}{
		{OrderRecent, []int64{12, 11, 10}},
		{OrderOldest, []int64{10, 11, 12}},
		{OrderUpdated, []int64{10, 12, 11}},
		{OrderEpisode, []int64{12, 11, 10}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			got, err := Sort(notes, idx, tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, noteIDs(got))
		})
	}

	_, err := Sort(notes, idx, "alphabetical")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestForEpisode(t *testing.T) {
	notes, _ := fixtures()
	assert.Equal(t, []int64{11}, noteIDs(ForEpisode(notes, 2)))
	assert.Empty(t, ForEpisode(notes, 3))
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, OrderRecent, o)

	_, err = ParseOrder("random")
	assert.Error(t, err)
}
