package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"podcast-catalog/pkg/domain"
)

var ErrBadListingPattern = errors.New("listing pattern must contain exactly one %d page placeholder")

// DefaultLinkSelector matches episode links on common podcast theme archives.
const DefaultLinkSelector = "article h2 a[href], article h3 a[href], h2.entry-title a[href], .episode-title a[href]"

// Listing describes a paginated episode archive such as
// https://example.com/episodes/page/%d.
type Listing struct {
	// Pattern is a URL with a single %d for the page number.
	Pattern string
	// Selector picks episode links on each page. Empty tries DefaultLinkSelector
	// and then progressively looser generic strategies.
	Selector string
	// PathFilter keeps only links containing this segment, e.g. "/episodes/".
	PathFilter string
	// MaxPages stops pagination after this many pages (0 = until an empty page).
	MaxPages int
	// PagesPerBatch is how many pages one link worker reads per range. Default 5.
	PagesPerBatch int
}

// pageRange is a range of listing pages, both ends inclusive.
type pageRange struct {
	Start int
	End   int
}

// pageLink remembers where a link was found so output order is stable.
type pageLink struct {
	page int
	pos  int
	url  string
}

// FromListing walks a paginated archive and imports up to max linked episode
// pages (max <= 0 means all). Pagination ends at the first page without
// episode links.
//
// Link collection runs in two levels: a generator hands out page ranges and
// link workers read every page of a range. The collected pages are then
// resolved by the regular ingest workers.
func (s *Service) FromListing(ctx context.Context, l Listing, max int) (Report, error) {
	l.Pattern = strings.TrimSpace(l.Pattern)
	if l.Pattern == "" {
		return Report{}, ErrEmptySourceURL
	}
	if strings.Count(l.Pattern, "%d") != 1 {
		return Report{}, ErrBadListingPattern
	}
	if l.PagesPerBatch <= 0 {
		l.PagesPerBatch = 5
	}

	base, err := url.Parse(fmt.Sprintf(l.Pattern, 1))
	if err != nil {
		return Report{}, fmt.Errorf("parse listing pattern: %w", err)
	}
	filters := []urlFilter{baseURLFilter{}, sameHostFilter{host: base.Host}, containsPathFilter{segment: l.PathFilter}}

	links, err := s.collectListingLinks(ctx, l)
	if err != nil {
		return Report{}, err
	}

	seen := make(map[string]bool, len(links))
	candidates := make([]domain.Episode, 0, len(links))
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true
		keep, err := keepURL(ctx, filters, link)
		if err != nil {
			return Report{}, err
		}
		if keep {
			candidates = append(candidates, domain.Episode{VideoURL: link})
		}
	}
	if max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}

	s.logger.Info("listing crawled", "pattern", l.Pattern, "links", len(links), "pages", len(candidates))
	return s.run(ctx, candidates, s.episodeFromPage)
}

// collectListingLinks returns absolute episode links in page order.
func (s *Service) collectListingLinks(ctx context.Context, l Listing) ([]string, error) {
	rangeChan := make(chan pageRange, s.workers*2)
	linkChan := make(chan pageLink, s.workers*2)

	var collected []pageLink
	done := make(chan struct{})
	go func() {
		defer close(done)
		for link := range linkChan {
			collected = append(collected, link)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for r := range rangeChan {
				if err := s.readPageRange(ctx, l, r, linkChan); err != nil {
					s.logger.Warn("listing range failed", "worker", workerID, "start", r.Start, "end", r.End, "error", err)
				}
			}
		}(i)
	}

	s.generatePageRanges(ctx, l, rangeChan)
	wg.Wait()
	close(linkChan)
	<-done

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool {
		if collected[i].page != collected[j].page {
			return collected[i].page < collected[j].page
		}
		return collected[i].pos < collected[j].pos
	})
	out := make([]string, len(collected))
	for i, link := range collected {
		out[i] = link.url
	}
	return out, nil
}

// generatePageRanges hands out page ranges until the first page of a range has
// no links or MaxPages is reached. It closes rangeChan.
func (s *Service) generatePageRanges(ctx context.Context, l Listing, rangeChan chan<- pageRange) {
	defer close(rangeChan)

	for current := 1; ; current += l.PagesPerBatch {
		if l.MaxPages > 0 && current > l.MaxPages {
			s.logger.Debug("listing page limit reached", "max_pages", l.MaxPages)
			return
		}

		links, err := s.pageLinks(ctx, l, current)
		if err != nil || len(links) == 0 {
			s.logger.Debug("listing ends", "page", current, "error", err)
			return
		}

		r := pageRange{Start: current, End: current + l.PagesPerBatch - 1}
		if l.MaxPages > 0 && r.End > l.MaxPages {
			r.End = l.MaxPages
		}
		select {
		case rangeChan <- r:
		case <-ctx.Done():
			return
		}
	}
}

// readPageRange sends every link of every page in r. A page that fails is
// logged and skipped.
func (s *Service) readPageRange(ctx context.Context, l Listing, r pageRange, linkChan chan<- pageLink) error {
	for page := r.Start; page <= r.End; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		links, err := s.pageLinks(ctx, l, page)
		if err != nil {
			s.logger.Debug("listing page skipped", "page", page, "error", err)
			continue
		}
		for pos, link := range links {
			select {
			case linkChan <- pageLink{page: page, pos: pos, url: link}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// pageLinks fetches one listing page and extracts absolute episode links.
func (s *Service) pageLinks(ctx context.Context, l Listing, page int) ([]string, error) {
	pageURL := fmt.Sprintf(l.Pattern, page)
	body, _, err := s.client.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(string(body))
	if err != nil {
		return nil, err
	}
	if l.Selector != "" {
		return extractLinks(doc, pageURL, l.Selector), nil
	}
	return extractGenericLinks(doc, pageURL), nil
}

// genericLinkSelectors are tried in order until one matches.
var genericLinkSelectors = []string{
	DefaultLinkSelector,
	"article a[href]",
	"main a[href]",
}

// extractGenericLinks finds episode links on an unknown theme. As a last
// resort it takes every body link outside navigation and page chrome.
func extractGenericLinks(doc *goquery.Document, pageURL string) []string {
	for _, sel := range genericLinkSelectors {
		if links := extractLinks(doc, pageURL, sel); len(links) > 0 {
			return links
		}
	}

	var links []string
	doc.Find("body a[href]").Not("nav a, header a, footer a, .nav a, .menu a, .sidebar a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !isContentLink(href) {
			return
		}
		if abs, err := resolveAgainst(pageURL, href); err == nil {
			links = append(links, abs)
		}
	})
	return links
}

// isContentLink rejects anchors, mail and script links and feed or tag pages.
func isContentLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	for _, prefix := range []string{"mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(href, prefix) {
			return false
		}
	}
	for _, part := range []string{"/tag/", "/category/", "/author/", "/feed", "/page/", "/wp-login"} {
		if strings.Contains(href, part) {
			return false
		}
	}
	return true
}

// extractLinks resolves every href matched by selector against pageURL.
func extractLinks(doc *goquery.Document, pageURL, selector string) []string {
	var links []string
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := resolveAgainst(pageURL, strings.TrimSpace(href))
		if err != nil {
			return
		}
		links = append(links, abs)
	})
	return links
}
