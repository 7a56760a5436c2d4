package ingest

import (
	"context"
	"net/url"
	"strings"
)

// urlFilter decides whether a discovered page URL is worth fetching.
type urlFilter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// baseURLFilter drops site roots, which listings and sitemaps often include.
type baseURLFilter struct{}

func (baseURLFilter) ShouldKeep(_ context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		// Let the fetch fail later with a better error.
		return true, nil
	}
	return strings.Trim(parsed.Path, "/") != "", nil
}

// containsPathFilter keeps URLs containing a path segment such as "/episodes/".
type containsPathFilter struct {
	segment string
}

func (f containsPathFilter) ShouldKeep(_ context.Context, rawURL string) (bool, error) {
	return f.segment == "" || strings.Contains(rawURL, f.segment), nil
}

// sameHostFilter keeps URLs on the listing's own host.
type sameHostFilter struct {
	host string
}

func (f sameHostFilter) ShouldKeep(_ context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, nil
	}
	return strings.EqualFold(parsed.Host, f.host), nil
}

// keepURL applies filters in order and stops at the first rejection.
func keepURL(ctx context.Context, filters []urlFilter, rawURL string) (bool, error) {
	for _, f := range filters {
		keep, err := f.ShouldKeep(ctx, rawURL)
		if err != nil || !keep {
			return false, err
		}
	}
	return true, nil
}
