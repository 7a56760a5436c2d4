// Package textmatch is the single place where user queries become regular
// expressions. Search scoring, excerpt extraction and highlighting all go
// through it, so a query behaves the same wherever it is shown.
package textmatch

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"podcast-catalog/pkg/domain"
)

// MaxQueryLength caps the number of runes of a query used for matching.
const MaxQueryLength = 100

// sentence matches a run of text ending in one or more terminators, or the
// unterminated remainder at the end of the text.
var sentence = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// Normalize trims the query, rejects invalid UTF-8 and caps its length.
func Normalize(query string) (string, error) {
	if !utf8.ValidString(query) {
		return "", fmt.Errorf("%w: query is not valid UTF-8", domain.ErrInvalidInput)
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) > MaxQueryLength {
		query = string([]rune(query)[:MaxQueryLength])
	}
	return query, nil
}

// Matcher is a compiled, escaped, case-insensitive query.
type Matcher struct {
	query string
	re    *regexp.Regexp
}

// Compile builds a Matcher for query. A blank query yields a nil Matcher and
// no error; every Matcher method treats nil as "matches nothing".
func Compile(query string) (*Matcher, error) {
	q, err := Normalize(query)
	if err != nil {
		return nil, err
	}
	if q == "" {
		return nil, nil
	}
	return &Matcher{
		query: q,
		re:    regexp.MustCompile("(?i)" + regexp.QuoteMeta(q)),
	}, nil
}

// Query returns the normalized query text.
func (m *Matcher) Query() string {
	if m == nil {
		return ""
	}
	return m.query
}

// Contains reports whether text contains the query, ignoring case.
func (m *Matcher) Contains(text string) bool {
	if m == nil || text == "" {
		return false
	}
	return m.re.MatchString(text)
}

// Highlight splits text into alternating plain and matched segments.
func (m *Matcher) Highlight(text string) []domain.Segment {
	if m == nil || text == "" {
		return []domain.Segment{{Text: text}}
	}

	locs := m.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []domain.Segment{{Text: text}}
	}

	segments := make([]domain.Segment, 0, len(locs)*2+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segments = append(segments, domain.Segment{Text: text[prev:loc[0]]})
		}
		segments = append(segments, domain.Segment{Text: text[loc[0]:loc[1]], Match: true})
		prev = loc[1]
	}
	if prev < len(text) {
		segments = append(segments, domain.Segment{Text: text[prev:]})
	}
	return segments
}

// MatchingSentences returns the sentences of text that contain the query, in
// order, at most limit of them (limit <= 0 means no limit). When text matches
// but no single sentence does, the result is the run of sentences spanning
// the first match.
func (m *Matcher) MatchingSentences(text string, limit int) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, s := range Sentences(text) {
		if !m.Contains(s) {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		if s := m.spanningSentences(text); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// spanningSentences joins the consecutive sentences covering the first match.
// It serves queries that cross a terminator, such as "Dr. Sarah", which no
// single sentence contains.
func (m *Matcher) spanningSentences(text string) string {
	loc := m.re.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	start, end := -1, -1
	for _, span := range sentence.FindAllStringIndex(text, -1) {
		if span[1] <= loc[0] || span[0] >= loc[1] {
			continue
		}
		if start < 0 {
			start = span[0]
		}
		end = span[1]
	}
	if start < 0 || start > loc[0] || end < loc[1] {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[start:end])
}

// Highlight is the package-level form of Matcher.Highlight. An invalid query
// leaves the text unhighlighted.
func Highlight(text, query string) []domain.Segment {
	m, err := Compile(query)
	if err != nil {
		return []domain.Segment{{Text: text}}
	}
	return m.Highlight(text)
}

// Sentences splits text on '.', '!' and '?'. Text without any terminator is a
// single sentence. Pieces are trimmed and blank pieces dropped.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := sentence.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Join concatenates segment texts; it is the inverse of Highlight.
func Join(segments []domain.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
