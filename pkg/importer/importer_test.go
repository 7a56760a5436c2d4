package importer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"podcast-catalog/pkg/db"
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_JSONArrayAndObject(t *testing.T) {
	records, err := Parse(strings.NewReader(`  [{"title": "A", "guest_name": "Jane"}, {"title_c": "B"}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jane", records[0]["guest_name"])

	records, err = Parse(strings.NewReader(`{"Title": "Solo"}`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Solo", records[0]["Title"])
}

func TestParse_CSV(t *testing.T) {
	input := `title,channel_name,company,date,guest_name
"Episode, with comma","20VC","Acme","2024-01-15","John Doe"
Short row,Builders
`
	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Episode, with comma", records[0]["title"])
	assert.Equal(t, "John Doe", records[0]["guest_name"])
	assert.Equal(t, "", records[1]["guest_name"])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader("   \n"))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Parse(strings.NewReader(`[{"title": }]`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse(strings.NewReader("title\n\"unterminated"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestImport_CountsAndDefaults(t *testing.T) {
	store := db.NewMemoryStore([]domain.Episode{{ID: 5, Title: "Existing"}}, nil)
	now := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	im := New(store.Episodes(), nil, WithClock(func() time.Time { return now }))

	report, err := im.Import(context.Background(), []normalize.Record{
		{"title": "With date", "date": "2024-01-15", "Id": 5},
		{"Title": "No date"},
		{"guest": "Missing title"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], normalize.ErrMissingTitle)

	all, err := store.Episodes().GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(6), all[1].ID)
	assert.Equal(t, "2024-01-15", all[1].FormattedDate())
	assert.Equal(t, "2024-06-01", all[2].FormattedDate())
}

type failingRepo struct{ db.EpisodeRepository }

func (failingRepo) Create(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	return domain.Episode{}, errors.New("backend down")
}

func TestImport_BackendErrorsAreCollected(t *testing.T) {
	im := New(failingRepo{}, nil)

	report, err := im.Import(context.Background(), []normalize.Record{{"title": "A"}, {"title": "B"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 2, report.Failed)
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	im := New(db.NewMemoryStore(nil, nil).Episodes(), nil)

	_, err := im.Import(ctx, []normalize.Record{{"title": "A"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport_CSVRoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	episodes := []domain.Episode{{
		Title:       "Scaling, Carefully",
		ChannelName: "Builders",
		PublishDate: &date,
		Duration:    "45",
		GuestName:   "Jane Doe",
	}}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, episodes, FormatCSV))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(Header, ",")+"\n"))

	records, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	ep, err := normalize.Episode(records[0])
	require.NoError(t, err)
	assert.Equal(t, "Scaling, Carefully", ep.Title)
	assert.Equal(t, "2024-03-15", ep.FormattedDate())
	assert.Equal(t, "Jane Doe", ep.GuestName)
}

func TestExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())

	assert.ErrorIs(t, Export(&buf, nil, Format("xml")), ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("yaml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
