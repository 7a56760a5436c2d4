package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationBucket(t *testing.T) {
	for in, want := range map[string]DurationBucket{
		"":        DurationAny,
		"short":   DurationShort,
		" Medium": DurationMedium,
		"LONG":    DurationLong,
	} {
		got, err := ParseDurationBucket(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDurationBucket("epic")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDurationBucket_Contains(t *testing.T) {
	tests := []struct {
		bucket  DurationBucket
		minutes int
		want    bool
	}{
		{DurationShort, 29, true},
		{DurationShort, 30, false},
		{DurationMedium, 30, true},
		{DurationMedium, 60, true},
		{DurationMedium, 61, false},
		{DurationLong, 60, false},
		{DurationLong, 61, true},
		{DurationAny, 0, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.bucket.Contains(tt.minutes), "%s/%d", tt.bucket, tt.minutes)
	}
}

func TestFilterCriteria_ActiveCount(t *testing.T) {
	assert.True(t, FilterCriteria{}.IsEmpty())

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := FilterCriteria{Guest: "Ada", DateFrom: &from, Duration: DurationLong}
	assert.Equal(t, 3, c.ActiveCount())
	assert.False(t, c.IsEmpty())
}

func TestParseSortOrder(t *testing.T) {
	got, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, got)

	got, err = ParseSortOrder("Date")
	require.NoError(t, err)
	assert.Equal(t, SortDate, got)

	_, err = ParseSortOrder("popularity")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
