package ingest

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// urlSet represents a regular sitemap structure
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string `xml:"loc"`
}

// sitemapIndex represents a sitemap index structure
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Location string `xml:"loc"`
}

// maxSitemapDepth bounds nested sitemap indexes.
const maxSitemapDepth = 3

// sitemapLocations fetches a sitemap or sitemap index and returns every page
// location in document order. Nested sitemaps that fail are skipped.
func (s *Service) sitemapLocations(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	body, _, err := s.client.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}

	if !isSitemapIndex(body) {
		return parseSitemapLocs(body)
	}
	if depth >= maxSitemapDepth {
		return nil, fmt.Errorf("sitemap index nested deeper than %d levels", maxSitemapDepth)
	}

	var index sitemapIndex
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}

	var all []string
	for _, ref := range index.Sitemaps {
		loc := strings.TrimSpace(ref.Location)
		if loc == "" {
			continue
		}
		locs, err := s.sitemapLocations(ctx, loc, depth+1)
		if err != nil {
			s.logger.Warn("skipping nested sitemap", "url", loc, "error", err)
			continue
		}
		all = append(all, locs...)
	}
	return all, nil
}

func isSitemapIndex(body []byte) bool {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<sitemapindex"))
}

func parseSitemapLocs(body []byte) ([]string, error) {
	var set urlSet
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	out := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		if loc := strings.TrimSpace(u.Location); loc != "" {
			out = append(out, loc)
		}
	}
	return out, nil
}
