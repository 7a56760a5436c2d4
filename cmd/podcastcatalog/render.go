package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"podcast-catalog/pkg/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(1, 0, 0, 0)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	markStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220"))

	excerptStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			PaddingLeft(1).
			MarginLeft(2)

	plainStyle = lipgloss.NewStyle()

	noteStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// renderSegments renders highlighted text with matches marked.
func renderSegments(segments []domain.Segment, base lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Match {
			b.WriteString(markStyle.Render(s.Text))
		} else {
			b.WriteString(base.Render(s.Text))
		}
	}
	return b.String()
}

func episodeMeta(ep domain.Episode) string {
	parts := []string{}
	for _, p := range []string{ep.GuestName, ep.Company, ep.ChannelName, ep.FormattedDate()} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if minutes, ok := ep.DurationMinutes(); ok {
		parts = append(parts, fmt.Sprintf("%d min", minutes))
	}
	return strings.Join(parts, " · ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
