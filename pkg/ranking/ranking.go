// Package ranking orders search results and episode lists.
//
// Every sort here is stable: entries that compare equal keep their input
// order. Inputs are copied, never sorted in place.
package ranking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"podcast-catalog/pkg/domain"
)

// Rank sorts matches by the given order:
//   - relevance: score descending
//   - date: publish date descending, undated episodes last
//   - title: locale-aware ascending
func Rank(matches []domain.SearchMatch, order domain.SortOrder) ([]domain.SearchMatch, error) {
	out := slices.Clone(matches)
	if out == nil {
		out = []domain.SearchMatch{}
	}

	switch order {
	case domain.SortRelevance, "":
		slices.SortStableFunc(out, func(a, b domain.SearchMatch) int {
			return b.Score - a.Score
		})
	case domain.SortDate:
		slices.SortStableFunc(out, func(a, b domain.SearchMatch) int {
			return compareDatesDesc(a.Episode.PublishDate, b.Episode.PublishDate)
		})
	case domain.SortTitle:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b domain.SearchMatch) int {
			return c.CompareString(a.Episode.Title, b.Episode.Title)
		})
	default:
		return nil, fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidInput, order)
	}
	return out, nil
}

// compareDatesDesc puts newer dates first and nil dates after all others.
func compareDatesDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}

// EpisodeField is a sortable column of the episode table.
type EpisodeField string

const (
	FieldTitle   EpisodeField = "title"
	FieldGuest   EpisodeField = "guest"
	FieldChannel EpisodeField = "channel"
	FieldDate    EpisodeField = "date"
)

// Direction is ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseEpisodeSort validates a field/direction pair. Empty values default to
// date, descending, the table's initial state.
func ParseEpisodeSort(field, dir string) (EpisodeField, Direction, error) {
	f := EpisodeField(strings.ToLower(strings.TrimSpace(field)))
	switch f {
	case "":
		f = FieldDate
	case FieldTitle, FieldGuest, FieldChannel, FieldDate:
	default:
		return "", "", fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidInput, field)
	}

	d := Direction(strings.ToLower(strings.TrimSpace(dir)))
	switch d {
	case "":
		d = Desc
	case Asc, Desc:
	default:
		return "", "", fmt.Errorf("%w: unknown sort direction %q", domain.ErrInvalidInput, dir)
	}
	return f, d, nil
}

// SortEpisodes sorts a copy of episodes by one table column. Text columns
// ignore case. Undated episodes always sort last.
func SortEpisodes(episodes []domain.Episode, field EpisodeField, dir Direction) []domain.Episode {
	out := slices.Clone(episodes)
	if out == nil {
		return []domain.Episode{}
	}

	if field == FieldDate {
		slices.SortStableFunc(out, func(a, b domain.Episode) int {
			if a.PublishDate == nil || b.PublishDate == nil || dir == Desc {
				return compareDatesDesc(a.PublishDate, b.PublishDate)
			}
			return a.PublishDate.Compare(*b.PublishDate)
		})
		return out
	}

	c := collate.New(language.English, collate.Loose)
	key := func(ep domain.Episode) string {
		switch field {
		case FieldGuest:
			return ep.GuestName
		case FieldChannel:
			return ep.ChannelName
		default:
			return ep.Title
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Episode) int {
		cmp := c.CompareString(key(a), key(b))
		if dir == Desc {
			return -cmp
		}
		return cmp
	})
	return out
}
