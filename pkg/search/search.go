// Package search scores episodes against a free-text query.
//
// Matching is case-insensitive substring containment of the whole query (it
// is not split into words). Each field category contributes its weight once,
// and excerpts from all matched fields are merged without duplicates.
package search

import (
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/textmatch"
)

// Field weights.
const (
	TitleWeight       = 10
	GuestWeight       = 8
	CompanyWeight     = 8
	DescriptionWeight = 5
	TranscriptWeight  = 2
)

// Excerpt limits per field; zero means every matching sentence.
const (
	titleExcerpts       = 0
	descriptionExcerpts = 2
	transcriptExcerpts  = 5
)

// Search returns one match per episode that contains the query in at least
// one field, in input order. A blank query returns an empty result; a query
// that is not valid UTF-8 returns an error wrapping domain.ErrInvalidInput.
func Search(episodes []domain.Episode, query string) ([]domain.SearchMatch, error) {
	m, err := textmatch.Compile(query)
	if err != nil {
		return nil, err
	}

	results := []domain.SearchMatch{}
	if m == nil {
		return results, nil
	}

	for _, ep := range episodes {
		if match, ok := Score(m, ep); ok {
			results = append(results, match)
		}
	}
	return results, nil
}

// Score evaluates one episode. ok is false when no field matched.
func Score(m *textmatch.Matcher, ep domain.Episode) (match domain.SearchMatch, ok bool) {
	var (
		score    int
		excerpts = newExcerptSet()
	)

	if m.Contains(ep.Title) {
		score += TitleWeight
		excerpts.add(m.MatchingSentences(ep.Title, titleExcerpts)...)
	}
	if m.Contains(ep.GuestName) {
		score += GuestWeight
		excerpts.add("Guest: " + ep.GuestName)
	}
	if m.Contains(ep.Company) {
		score += CompanyWeight
		excerpts.add("Company: " + ep.Company)
	}
	if m.Contains(ep.Description) {
		score += DescriptionWeight
		excerpts.add(m.MatchingSentences(ep.Description, descriptionExcerpts)...)
	}
	if m.Contains(ep.Transcript) {
		score += TranscriptWeight
		excerpts.add(m.MatchingSentences(ep.Transcript, transcriptExcerpts)...)
	}

	if score == 0 {
		return domain.SearchMatch{}, false
	}
	return domain.SearchMatch{
		Episode:  ep,
		Excerpts: excerpts.list,
		Score:    score,
	}, true
}

// excerptSet keeps first-occurrence order.
type excerptSet struct {
	seen map[string]bool
	list []string
}

func newExcerptSet() *excerptSet {
	return &excerptSet{seen: make(map[string]bool), list: []string{}}
}

func (s *excerptSet) add(excerpts ...string) {
	for _, e := range excerpts {
		if s.seen[e] {
			continue
		}
		s.seen[e] = true
		s.list = append(s.list, e)
	}
}
