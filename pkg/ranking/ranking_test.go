package ranking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-catalog/pkg/domain"
)

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func matchIDs(matches []domain.SearchMatch) []int64 {
	out := make([]int64, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Episode.ID)
	}
	return out
}

func TestRank_RelevanceIsStable(t *testing.T) {
	in := []domain.SearchMatch{
		{Episode: domain.Episode{ID: 1}, Score: 2},
		{Episode: domain.Episode{ID: 2}, Score: 10},
		{Episode: domain.Episode{ID: 3}, Score: 2},
		{Episode: domain.Episode{ID: 4}, Score: 10},
		{Episode: domain.Episode{ID: 5}, Score: 5},
	}

	got, err := Rank(in, domain.SortRelevance)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 5, 1, 3}, matchIDs(got))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, matchIDs(in), "input must not be reordered")
}

func TestRank_Date(t *testing.T) {
	in := []domain.SearchMatch{
		{Episode: domain.Episode{ID: 1, PublishDate: day(t, "2024-03-15")}},
		{Episode: domain.Episode{ID: 2, PublishDate: day(t, "2024-02-08")}},
		{Episode: domain.Episode{ID: 3, PublishDate: nil}},
		{Episode: domain.Episode{ID: 4, PublishDate: day(t, "2024-03-12")}},
	}

	got, err := Rank(in, domain.SortDate)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2, 3}, matchIDs(got))
}

func TestRank_Title(t *testing.T) {
	in := []domain.SearchMatch{
		{Episode: domain.Episode{ID: 1, Title: "zebra"}},
		{Episode: domain.Episode{ID: 2, Title: "Apple"}},
		{Episode: domain.Episode{ID: 3, Title: "Éclair"}},
		{Episode: domain.Episode{ID: 4, Title: "banana"}},
		{Episode: domain.Episode{ID: 5, Title: "Apple"}},
	}

	got, err := Rank(in, domain.SortTitle)
	require.NoError(t, err)
	// Locale-aware: "Éclair" sorts with "e", equal titles keep input order.
	assert.Equal(t, []int64{2, 5, 4, 3, 1}, matchIDs(got))
}

func TestRank_UnknownOrder(t *testing.T) {
	_, err := Rank(nil, "popularity")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRank_Empty(t *testing.T) {
	got, err := Rank(nil, domain.SortTitle)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseEpisodeSort(t *testing.T) {
	f, d, err := ParseEpisodeSort("", "")
	require.NoError(t, err)
	assert.Equal(t, FieldDate, f)
	assert.Equal(t, Desc, d)

	f, d, err = ParseEpisodeSort("Guest", "ASC")
	require.NoError(t, err)
	assert.Equal(t, FieldGuest, f)
	assert.Equal(t, Asc, d)

	_, _, err = ParseEpisodeSort("views", "asc")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, _, err = ParseEpisodeSort("title", "sideways")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSortEpisodes(t *testing.T) {
	eps := []domain.Episode{
		{ID: 1, Title: "beta", GuestName: "Zed", PublishDate: day(t, "2024-01-02")},
		{ID: 2, Title: "Alpha", GuestName: "amy", PublishDate: nil},
		{ID: 3, Title: "gamma", GuestName: "Bob", PublishDate: day(t, "2024-05-01")},
	}

	ids := func(in []domain.Episode) []int64 {
		out := []int64{}
		for _, ep := range in {
			out = append(out, ep.ID)
		}
		return out
	}

	assert.Equal(t, []int64{2, 1, 3}, ids(SortEpisodes(eps, FieldTitle, Asc)))
	assert.Equal(t, []int64{3, 1, 2}, ids(SortEpisodes(eps, FieldTitle, Desc)))
	assert.Equal(t, []int64{2, 3, 1}, ids(SortEpisodes(eps, FieldGuest, Asc)))
	assert.Equal(t, []int64{3, 1, 2}, ids(SortEpisodes(eps, FieldDate, Desc)))
	assert.Equal(t, []int64{1, 3, 2}, ids(SortEpisodes(eps, FieldDate, Asc)))
	assert.Equal(t, []int64{1, 2, 3}, ids(eps))
}
