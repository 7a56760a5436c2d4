package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/normalize"
)

var (
	ErrEmptyPage     = errors.New("episode page is empty")
	ErrTitleNotFound = errors.New("title not found in HTML")
)

// maxDescriptionRunes bounds the page text kept as an episode description.
const maxDescriptionRunes = 2000

// pageInfo is what an episode page contributes to an episode.
type pageInfo struct {
	Title       string
	Text        string
	VideoURL    string
	Published   *time.Time
	Thumbnail   string
	Transcript  string
	Description string
}

func parseDocument(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyPage
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// extractTitle tries readability first, then <h1>, <title> and og:title.
func extractTitle(html string, doc *goquery.Document) (string, error) {
	if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title, nil
		}
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title, nil
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title, nil
	}
	if title, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}
	return "", ErrTitleNotFound
}

// extractText returns the readable main text, falling back to the body text.
func extractText(html string, doc *goquery.Document) string {
	if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil {
		if text := collapseWhitespace(article.TextContent); text != "" {
			return text
		}
	}
	return collapseWhitespace(doc.Find("body").First().Text())
}

// extractUtterances joins inline transcript utterances, as published by hosts
// that render transcripts on the episode page itself.
func extractUtterances(doc *goquery.Document) string {
	var parts []string
	doc.Find("#transcriptTab a.transcriptUtterance, .transcript p, [itemprop='transcript']").Each(func(_ int, s *goquery.Selection) {
		if text := collapseWhitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

// findVideoURL looks for an embedded or linked YouTube video.
func findVideoURL(doc *goquery.Document) string {
	var found string
	doc.Find("iframe[src], a[href], meta[property='og:video']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"src", "href", "content"} {
			v, ok := s.Attr(attr)
			if !ok {
				continue
			}
			if id := (domain.Episode{VideoURL: v}).VideoID(); id != "" {
				found = "https://www.youtube.com/watch?v=" + id
				return false
			}
		}
		return true
	})
	return found
}

func findPublished(doc *goquery.Document) *time.Time {
	candidates := []string{
		"meta[property='article:published_time']",
		"meta[name='date']",
		"meta[itemprop='datePublished']",
	}
	for _, sel := range candidates {
		if v, ok := doc.Find(sel).Attr("content"); ok {
			if t, ok := normalize.ParseTime(v); ok {
				d := domain.Date(t)
				return &d
			}
		}
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, ok := normalize.ParseTime(v); ok {
			d := domain.Date(t)
			return &d
		}
	}
	return nil
}

// extractPage pulls everything an episode page can tell us without following links.
func extractPage(html string) (pageInfo, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return pageInfo{}, err
	}

	title, err := extractTitle(html, doc)
	if err != nil {
		return pageInfo{}, err
	}

	info := pageInfo{
		Title:      title,
		Text:       extractText(html, doc),
		VideoURL:   findVideoURL(doc),
		Published:  findPublished(doc),
		Transcript: extractUtterances(doc),
	}
	if v, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		info.Thumbnail = strings.TrimSpace(v)
	}
	if v, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		info.Description = strings.TrimSpace(v)
	}
	if info.Description == "" {
		info.Description = truncateRunes(info.Text, maxDescriptionRunes)
	}
	return info, nil
}

// stripHTML reduces an HTML fragment (feed descriptions) to plain text.
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseWhitespace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseWhitespace(fragment)
	}
	doc.Find("br, p, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
