package notes

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/textmatch"
)

// Order selects how a note list is sorted.
type Order string

const (
	OrderRecent  Order = "recent"
	OrderOldest  Order = "oldest"
	OrderUpdated Order = "updated"
	OrderEpisode Order = "episode"
)

// ParseOrder validates a note order; empty means recent.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderRecent, nil
	case OrderRecent, OrderOldest, OrderUpdated, OrderEpisode:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown note order %q", domain.ErrInvalidInput, s)
	}
}

// Validate trims content and rejects blank notes.
func Validate(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", domain.ErrEmptyNote
	}
	return content, nil
}

// Index maps episode ids to episodes for note lookups.
func Index(episodes []domain.Episode) map[int64]domain.Episode {
	idx := make(map[int64]domain.Episode, len(episodes))
	for _, ep := range episodes {
		idx[ep.ID] = ep
	}
	return idx
}

// EpisodeTitle resolves the title of the note's episode, falling back to
// domain.UnknownEpisodeTitle for orphaned notes.
func EpisodeTitle(n domain.Note, index map[int64]domain.Episode) string {
	ep, ok := index[n.EpisodeID]
	if !ok {
		return domain.UnknownEpisodeTitle
	}
	return ep.Title
}

// ForEpisode returns the notes attached to one episode, in input order.
func ForEpisode(notes []domain.Note, episodeID int64) []domain.Note {
	out := []domain.Note{}
	for _, n := range notes {
		if n.EpisodeID == episodeID {
			out = append(out, n)
		}
	}
	return out
}

// Search keeps notes whose content, or whose episode's title, guest or
// company, contains the query. A blank query keeps every note.
func Search(notes []domain.Note, index map[int64]domain.Episode, query string) ([]domain.Note, error) {
	m, err := textmatch.Compile(query)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return slices.Clone(notes), nil
	}

	out := []domain.Note{}
	for _, n := range notes {
		if m.Contains(n.Content) {
			out = append(out, n)
			continue
		}
		ep, ok := index[n.EpisodeID]
		if ok && (m.Contains(ep.Title) || m.Contains(ep.GuestName) || m.Contains(ep.Company)) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Sort returns a sorted copy of notes. Orphaned notes sort as if their episode
// title were empty when ordering by episode.
func Sort(notes []domain.Note, index map[int64]domain.Episode, order Order) ([]domain.Note, error) {
	out := slices.Clone(notes)
	if out == nil {
		out = []domain.Note{}
	}

	switch order {
	case OrderRecent, "":
		slices.SortStableFunc(out, func(a, b domain.Note) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case OrderOldest:
		slices.SortStableFunc(out, func(a, b domain.Note) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case OrderUpdated:
		slices.SortStableFunc(out, func(a, b domain.Note) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	case OrderEpisode:
		c := collate.New(language.English)
		title := func(n domain.Note) string { return index[n.EpisodeID].Title }
		slices.SortStableFunc(out, func(a, b domain.Note) int { return c.CompareString(title(a), title(b)) })
	default:
		return nil, fmt.Errorf("%w: unknown note order %q", domain.ErrInvalidInput, order)
	}
	return out, nil
}
