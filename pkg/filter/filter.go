package filter

import (
	"sort"
	"time"

	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/textmatch"
)

// EpisodeFilter defines the interface for episode filtering
type EpisodeFilter interface {
	ShouldKeep(ep domain.Episode) bool
}

// FilterEpisodes applies all filters to a list of episodes.
// The input slice is never modified and the relative order is kept.
func FilterEpisodes(episodes []domain.Episode, filters ...EpisodeFilter) []domain.Episode {
	filtered := make([]domain.Episode, 0, len(episodes))

	for _, ep := range episodes {
		keep := true
		for _, f := range filters {
			if !f.ShouldKeep(ep) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, ep)
		}
	}

	return filtered
}

// FromCriteria builds one filter per constraint set in criteria
func FromCriteria(criteria domain.FilterCriteria) ([]EpisodeFilter, error) {
	bucket, err := domain.ParseDurationBucket(string(criteria.Duration))
	if err != nil {
		return nil, err
	}

	var filters []EpisodeFilter
	if criteria.Guest != "" {
		filters = append(filters, NewGuestFilter(criteria.Guest))
	}
	if criteria.Company != "" {
		filters = append(filters, NewCompanyFilter(criteria.Company))
	}
	if criteria.DateFrom != nil || criteria.DateTo != nil {
		filters = append(filters, NewDateRangeFilter(criteria.DateFrom, criteria.DateTo))
	}
	if bucket != domain.DurationAny {
		filters = append(filters, NewDurationFilter(bucket))
	}
	return filters, nil
}

// Apply narrows episodes to those satisfying every constraint in criteria.
// An unknown duration bucket is the only error; no matches yields an empty slice.
func Apply(episodes []domain.Episode, criteria domain.FilterCriteria) ([]domain.Episode, error) {
	filters, err := FromCriteria(criteria)
	if err != nil {
		return nil, err
	}
	return FilterEpisodes(episodes, filters...), nil
}

// GuestFilter keeps episodes whose guest name equals the given value exactly
type GuestFilter struct {
	guest string
}

// NewGuestFilter creates a new guest filter
func NewGuestFilter(guest string) *GuestFilter {
	return &GuestFilter{guest: guest}
}

// ShouldKeep returns true if the guest name matches (case-sensitive)
func (f *GuestFilter) ShouldKeep(ep domain.Episode) bool {
	return ep.GuestName == f.guest
}

// CompanyFilter keeps episodes whose company equals the given value exactly
type CompanyFilter struct {
	company string
}

// NewCompanyFilter creates a new company filter
func NewCompanyFilter(company string) *CompanyFilter {
	return &CompanyFilter{company: company}
}

// ShouldKeep returns true if the company matches (case-sensitive)
func (f *CompanyFilter) ShouldKeep(ep domain.Episode) bool {
	return ep.Company == f.company
}

// DateRangeFilter keeps episodes published inside an inclusive date range.
// Either bound may be nil. Episodes without a publish date are dropped.
type DateRangeFilter struct {
	from *time.Time
	to   *time.Time
}

// NewDateRangeFilter creates a new date range filter; bounds are compared as calendar days
func NewDateRangeFilter(from, to *time.Time) *DateRangeFilter {
	f := &DateRangeFilter{}
	if from != nil {
		d := domain.Date(*from)
		f.from = &d
	}
	if to != nil {
		d := domain.Date(*to)
		f.to = &d
	}
	return f
}

// ShouldKeep returns true if the publish date falls within the bounds
func (f *DateRangeFilter) ShouldKeep(ep domain.Episode) bool {
	if ep.PublishDate == nil {
		return false
	}
	day := domain.Date(*ep.PublishDate)
	if f.from != nil && day.Before(*f.from) {
		return false
	}
	if f.to != nil && day.After(*f.to) {
		return false
	}
	return true
}

// DurationFilter keeps episodes whose duration falls in a bucket
type DurationFilter struct {
	bucket domain.DurationBucket
}

// NewDurationFilter creates a new duration filter
func NewDurationFilter(bucket domain.DurationBucket) *DurationFilter {
	return &DurationFilter{bucket: bucket}
}

// ShouldKeep returns false if the duration is missing, unparsable, or outside the bucket
func (f *DurationFilter) ShouldKeep(ep domain.Episode) bool {
	minutes, ok := ep.DurationMinutes()
	if !ok {
		return false
	}
	return f.bucket.Contains(minutes)
}

// QueryFilter is the quick filter of the episode list: it keeps episodes whose
// title, channel, company, transcript or description contains the query.
type QueryFilter struct {
	matcher *textmatch.Matcher
}

// NewQueryFilter creates a new query filter. A blank query keeps everything.
func NewQueryFilter(query string) (*QueryFilter, error) {
	m, err := textmatch.Compile(query)
	if err != nil {
		return nil, err
	}
	return &QueryFilter{matcher: m}, nil
}

// ShouldKeep returns true if any searchable field contains the query
func (f *QueryFilter) ShouldKeep(ep domain.Episode) bool {
	if f.matcher == nil {
		return true
	}
	return f.matcher.Contains(ep.Title) ||
		f.matcher.Contains(ep.ChannelName) ||
		f.matcher.Contains(ep.Company) ||
		f.matcher.Contains(ep.Transcript) ||
		f.matcher.Contains(ep.Description)
}

// FilterOptions lists the values offered by the guest and company dropdowns
type FilterOptions struct {
	Guests    []string `json:"guests"`
	Companies []string `json:"companies"`
}

// Options collects the sorted distinct non-empty guests and companies
func Options(episodes []domain.Episode) FilterOptions {
	guests := make(map[string]bool)
	companies := make(map[string]bool)
	for _, ep := range episodes {
		if ep.GuestName != "" {
			guests[ep.GuestName] = true
		}
		if ep.Company != "" {
			companies[ep.Company] = true
		}
	}
	return FilterOptions{
		Guests:    sortedKeys(guests),
		Companies: sortedKeys(companies),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
