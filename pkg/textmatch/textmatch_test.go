package textmatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-catalog/pkg/domain"
)

func TestNormalize(t *testing.T) {
	q, err := Normalize("  ai  ")
	require.NoError(t, err)
	assert.Equal(t, "ai", q)

	long := strings.Repeat("é", 150)
	q, err = Normalize(long)
	require.NoError(t, err)
	assert.Equal(t, MaxQueryLength, len([]rune(q)))

	_, err = Normalize("bad\xff")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCompile_BlankQuery(t *testing.T) {
	m, err := Compile("   ")
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.False(t, m.Contains("anything"))
	assert.Empty(t, m.MatchingSentences("anything.", 0))
}

func TestMatcher_ContainsIsLiteral(t *testing.T) {
	m, err := Compile("C++ (venture)")
	require.NoError(t, err)

	assert.True(t, m.Contains("We talk about c++ (VENTURE) funds."))
	assert.False(t, m.Contains("C venture"))
	assert.False(t, m.Contains("Cxx (venture)"))
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []domain.Segment
	}{
		{
			name:  "empty query",
			text:  "Some text",
			query: "",
			want:  []domain.Segment{{Text: "Some text"}},
		},
		{
			name:  "empty text",
			text:  "",
			query: "ai",
			want:  []domain.Segment{{Text: ""}},
		},
		{
			name:  "case insensitive",
			text:  "AI and ai",
			query: "ai",
			want: []domain.Segment{
				{Text: "AI", Match: true},
				{Text: " and "},
				{Text: "ai", Match: true},
			},
		},
		{
			name:  "metacharacters",
			text:  "Is C++ (venture) real?",
			query: "c++ (venture)",
			want: []domain.Segment{
				{Text: "Is "},
				{Text: "C++ (venture)", Match: true},
				{Text: " real?"},
			},
		},
		{
			name:  "no match",
			text:  "nothing here",
			query: "zzz",
			want:  []domain.Segment{{Text: "nothing here"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.query)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, Join(got))
		})
	}
}

func TestHighlight_RoundTrip(t *testing.T) {
	texts := []string{"", "a", "aaaa", "Mixed CASE case Case.", "[]*+?", "héllo HÉLLO"}
	queries := []string{"", " ", "a", "aa", "case", "*", "héllo", strings.Repeat("x", 200)}

	for _, text := range texts {
		for _, q := range queries {
			assert.Equal(t, text, Join(Highlight(text, q)), "text=%q query=%q", text, q)
		}
	}
}

func TestHighlight_CapsQuery(t *testing.T) {
	text := strings.Repeat("a", 150)
	segs := Highlight(text, strings.Repeat("a", 150))

	require.NotEmpty(t, segs)
	assert.True(t, segs[0].Match)
	assert.Len(t, segs[0].Text, MaxQueryLength)
	assert.Equal(t, text, Join(segs))
}

func TestSentences(t *testing.T) {
	assert.Nil(t, Sentences("   "))
	assert.Equal(t, []string{"No terminator here"}, Sentences("No terminator here"))
	assert.Equal(t,
		[]string{"First one.", "Second one!", "Third?", "trailing words"},
		Sentences("First one. Second one!  Third? trailing words"))
	assert.Equal(t, []string{"Wait...", "What?!"}, Sentences("Wait... What?!"))
}

func TestMatchingSentences_Limit(t *testing.T) {
	m, err := Compile("go")
	require.NoError(t, err)

	text := "Go one. Go two. Skip. Go three. Go four."
	assert.Equal(t, []string{"Go one.", "Go two."}, m.MatchingSentences(text, 2))
	assert.Len(t, m.MatchingSentences(text, 0), 4)
}

func TestMatchingSentences_QueryAcrossTerminator(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  []string
	}{
		{"two sentences", "it. Then", "We ship it. Then we test it.", []string{"We ship it. Then we test it."}},
		{"only the covering run", "end. Next", "Intro here. The end. Next part. Outro.", []string{"The end. Next part."}},
		{"title abbreviation", "Dr. Sarah", "Revolutionizing AI in Healthcare with Dr. Sarah Chen", []string{"Revolutionizing AI in Healthcare with Dr. Sarah Chen"}},
		{"no match", "absent", "We ship it. Then we test it.", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.MatchingSentences(tt.text, 5))
		})
	}
}
