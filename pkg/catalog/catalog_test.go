package catalog

import (
	"context"
	"testing"
	"time"

	"podcast-catalog/pkg/db"
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/notes"
	"podcast-catalog/pkg/ranking"
	"podcast-catalog/pkg/textmatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fixtureEpisodes() []domain.Episode {
	return []domain.Episode{
		{
			ID:          1,
			Title:       "Scaling Healthcare Startups",
			ChannelName: "Builders",
			Company:     "MedCo",
			PublishDate: day("2024-03-15"),
			VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Duration:    "45 min",
			Description: "A talk about healthcare. Also hiring.",
			GuestName:   "Jane Doe",
		},
		{
			ID:          2,
			Title:       "Fintech Deep Dive",
			ChannelName: "Builders",
			Company:     "PayCo",
			PublishDate: day("2024-01-10"),
			Duration:    "20",
			Transcript:  "We discussed healthcare payments. It was fun.",
			GuestName:   "John Roe",
		},
		{
			ID:          3,
			Title:       "Marketplace Lessons",
			ChannelName: "Operators",
			Company:     "ShopCo",
			Duration:    "75",
			GuestName:   "Jane Doe",
		},
	}
}

func newService(t *testing.T, ns []domain.Note, now time.Time) *Service {
	t.Helper()
	store := db.NewMemoryStore(fixtureEpisodes(), ns)
	return New(store.Episodes(), store.Notes(), nil, WithClock(func() time.Time { return now }))
}

func TestListEpisodes_DefaultSortAndStats(t *testing.T) {
	svc := newService(t, nil, time.Now())

	resp, err := svc.ListEpisodes(context.Background(), ListRequest{})
	require.NoError(t, err)

	ids := []int64{}
	for _, ep := range resp.Episodes {
		ids = append(ids, ep.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, Stats{Total: 3, Filtered: 3, UniqueGuests: 2}, resp.Stats)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, resp.Options.Guests)
}

func TestListEpisodes_QueryCriteriaAndSort(t *testing.T) {
	svc := newService(t, nil, time.Now())

	resp, err := svc.ListEpisodes(context.Background(), ListRequest{
		Criteria:  domain.FilterCriteria{Guest: "Jane Doe"},
		SortField: ranking.FieldTitle,
		SortDir:   ranking.Asc,
	})
	require.NoError(t, err)
	require.Len(t, resp.Episodes, 2)
	assert.Equal(t, "Marketplace Lessons", resp.Episodes[0].Title)
	assert.Equal(t, Stats{Total: 3, Filtered: 2, UniqueGuests: 1}, resp.Stats)

	resp, err = svc.ListEpisodes(context.Background(), ListRequest{Query: "HEALTHCARE"})
	require.NoError(t, err)
	assert.Len(t, resp.Episodes, 2)
}

func TestListEpisodes_InvalidBucket(t *testing.T) {
	svc := newService(t, nil, time.Now())

	_, err := svc.ListEpisodes(context.Background(), ListRequest{
		Criteria: domain.FilterCriteria{Duration: "huge"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchEpisodes_RanksAndHighlights(t *testing.T) {
	svc := newService(t, nil, time.Now())

	results, err := svc.SearchEpisodes(context.Background(), SearchRequest{Query: "healthcare"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, int64(1), results[0].Episode.ID)
	assert.Equal(t, 15, results[0].Score)
	assert.Equal(t, int64(2), results[1].Episode.ID)
	assert.Equal(t, 2, results[1].Score)

	assert.Equal(t, "Scaling Healthcare Startups", textmatch.Join(results[0].TitleSegments))
	assert.Contains(t, results[0].TitleSegments, domain.Segment{Text: "Healthcare", Match: true})
	require.Len(t, results[1].ExcerptSegments, len(results[1].Excerpts))
	assert.Equal(t, results[1].Excerpts[0], textmatch.Join(results[1].ExcerptSegments[0]))
}

func TestSearchEpisodes_CriteriaNarrowCandidates(t *testing.T) {
	svc := newService(t, nil, time.Now())

	results, err := svc.SearchEpisodes(context.Background(), SearchRequest{
		Query:    "healthcare",
		Criteria: domain.FilterCriteria{Duration: domain.DurationShort},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].Episode.ID)
}

func TestSearchEpisodes_BlankAndInvalid(t *testing.T) {
	svc := newService(t, nil, time.Now())
	ctx := context.Background()

	results, err := svc.SearchEpisodes(ctx, SearchRequest{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = svc.SearchEpisodes(ctx, SearchRequest{Query: "x", Order: "popularity"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.SearchEpisodes(ctx, SearchRequest{Query: "\xff"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchEpisodes_DateOrder(t *testing.T) {
	svc := newService(t, nil, time.Now())

	results, err := svc.SearchEpisodes(context.Background(), SearchRequest{Query: "Jane", Order: domain.SortDate})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Episode.ID)
	assert.Equal(t, int64(3), results[1].Episode.ID)
}

func TestEpisodeDetail(t *testing.T) {
	older := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	svc := newService(t, []domain.Note{
		{ID: 1, EpisodeID: 1, Content: "first", CreatedAt: older, UpdatedAt: older},
		{ID: 2, EpisodeID: 1, Content: "second", CreatedAt: newer, UpdatedAt: newer},
		{ID: 3, EpisodeID: 2, Content: "other", CreatedAt: newer, UpdatedAt: newer},
	}, time.Now())

	detail, err := svc.EpisodeDetail(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, detail.Notes, 2)
	assert.Equal(t, "second", detail.Notes[0].Content)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&rel=0&modestbranding=1", detail.EmbedURL)

	_, err = svc.EpisodeDetail(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNoteLifecycle(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := created
	store := db.NewMemoryStore(fixtureEpisodes(), nil)
	svc := New(store.Episodes(), store.Notes(), nil, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	_, err := svc.AddNote(ctx, 1, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyNote)

	_, err = svc.AddNote(ctx, 42, "orphan")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := svc.AddNote(ctx, 1, "  Good insight  ")
	require.NoError(t, err)
	assert.Equal(t, "Good insight", n.Content)
	assert.Equal(t, created, n.CreatedAt)
	assert.Equal(t, created, n.UpdatedAt)

	clock = created.Add(2 * time.Hour)
	edited, err := svc.EditNote(ctx, n.ID, "Better insight")
	require.NoError(t, err)
	assert.Equal(t, created, edited.CreatedAt)
	assert.Equal(t, clock, edited.UpdatedAt)

	clock = created.Add(-time.Hour)
	edited, err = svc.EditNote(ctx, n.ID, "Clock went back")
	require.NoError(t, err)
	assert.False(t, edited.UpdatedAt.Before(edited.CreatedAt))

	require.NoError(t, svc.DeleteNote(ctx, n.ID))
	assert.ErrorIs(t, svc.DeleteNote(ctx, n.ID), domain.ErrNotFound)
}

func TestListNotes(t *testing.T) {
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newService(t, []domain.Note{
		{ID: 1, EpisodeID: 1, Content: "pricing idea", CreatedAt: base, UpdatedAt: base},
		{ID: 2, EpisodeID: 2, Content: "fraud angle", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: 3, EpisodeID: 77, Content: "lost note", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
	}, time.Now())
	ctx := context.Background()

	views, err := svc.ListNotes(ctx, "", notes.OrderRecent)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, int64(3), views[0].ID)
	assert.Equal(t, domain.UnknownEpisodeTitle, views[0].EpisodeTitle)

	views, err = svc.ListNotes(ctx, "medco", "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Scaling Healthcare Startups", views[0].EpisodeTitle)

	views, err = svc.ListNotes(ctx, "fraud", notes.OrderOldest)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Contains(t, views[0].ContentSegments, domain.Segment{Text: "fraud", Match: true})

	_, err = svc.ListNotes(ctx, "", "alphabetical")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
