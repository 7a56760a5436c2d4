package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpisode_DurationMinutes(t *testing.T) {
	tests := []struct {
		duration string
		want     int
		ok       bool
	}{
		{"45", 45, true},
		{"45 min", 45, true},
		{"  90 minutes", 90, true},
		{"", 0, false},
		{"about an hour", 0, false},
		{"min 45", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.duration, func(t *testing.T) {
			got, ok := Episode{Duration: tt.duration}.DurationMinutes()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEpisode_VideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://vimeo.com/123456", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Episode{VideoURL: tt.url}.VideoID())
		})
	}
}

func TestEpisode_EmbedURL(t *testing.T) {
	ep := Episode{VideoURL: "https://youtu.be/dQw4w9WgXcQ"}
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=0&rel=0&modestbranding=1", ep.EmbedURL())

	assert.Empty(t, Episode{VideoURL: "https://example.com/video.mp4"}.EmbedURL())
}

func TestEpisode_FormattedDate(t *testing.T) {
	assert.Empty(t, Episode{}.FormattedDate())

	d := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-07", Episode{PublishDate: &d}.FormattedDate())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2024-01-15 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2024, 1, 15, 1, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), Date(in))
}
