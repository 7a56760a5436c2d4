package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var (
	ErrNoTranscriptURL       = errors.New("no transcript URL found on episode page")
	ErrUnsupportedTranscript = errors.New("unsupported transcript type")
	ErrEmptyTranscript       = errors.New("extracted transcript text is empty")
)

// findTranscriptURL ranks the page's links by how much they look like a
// transcript:
//  1. anchor text mentions "transcript" and the href is a .pdf/.txt document
//  2. the href is a .pdf/.txt document
//  3. anchor text mentions "transcript"
func findTranscriptURL(doc *goquery.Document) (string, error) {
	var high, med, low []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}

		docLike := isTranscriptDocumentHref(href)
		textLike := strings.Contains(strings.ToLower(sel.Text()), "transcript")

		switch {
		case docLike && textLike:
			high = append(high, href)
		case docLike:
			med = append(med, href)
		case textLike:
			low = append(low, href)
		}
	})

	for _, group := range [][]string{high, med, low} {
		if len(group) > 0 {
			return group[0], nil
		}
	}
	return "", ErrNoTranscriptURL
}

func isTranscriptDocumentHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return hasTranscriptExt(href)
	}
	return hasTranscriptExt(u.Path)
}

func hasTranscriptExt(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}

func resolveAgainst(baseURL, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}

// fetchTranscript downloads a transcript document and returns its text.
// The type is chosen by extension, then by Content-Type.
func (s *Service) fetchTranscript(ctx context.Context, transcriptURL string) (string, error) {
	body, contentType, err := s.client.Fetch(ctx, transcriptURL)
	if err != nil {
		return "", err
	}

	var text string
	ext := ""
	if u, err := url.Parse(transcriptURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	lct := strings.ToLower(contentType)

	switch {
	case ext == ".txt" || (ext != ".pdf" && strings.Contains(lct, "text/plain")):
		text = string(body)
	case ext == ".pdf" || strings.Contains(lct, "application/pdf"):
		text, err = extractPDFText(body)
		if err != nil {
			return "", err
		}
	case strings.Contains(lct, "text/html"):
		doc, err := parseDocument(string(body))
		if err != nil {
			return "", err
		}
		text = extractUtterances(doc)
	default:
		return "", ErrUnsupportedTranscript
	}

	text = collapseWhitespace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf bytes")
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
