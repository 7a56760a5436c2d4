package domain

import (
	"fmt"
	"strings"
	"time"
)

// DurationBucket groups episodes by length in minutes.
type DurationBucket string

const (
	// DurationAny means no duration constraint.
	DurationAny DurationBucket = ""
	// DurationShort is under 30 minutes.
	DurationShort DurationBucket = "short"
	// DurationMedium is 30 to 60 minutes inclusive.
	DurationMedium DurationBucket = "medium"
	// DurationLong is over 60 minutes.
	DurationLong DurationBucket = "long"
)

// ParseDurationBucket validates a bucket name. The empty string is accepted
// and means "any".
func ParseDurationBucket(s string) (DurationBucket, error) {
	switch b := DurationBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case DurationAny, DurationShort, DurationMedium, DurationLong:
		return b, nil
	default:
		return "", fmt.Errorf("%w: unknown duration bucket %q", ErrInvalidInput, s)
	}
}

// Contains reports whether minutes falls inside the bucket.
func (b DurationBucket) Contains(minutes int) bool {
	switch b {
	case DurationShort:
		return minutes < 30
	case DurationMedium:
		return minutes >= 30 && minutes <= 60
	case DurationLong:
		return minutes > 60
	default:
		return true
	}
}

// FilterCriteria holds optional field-level constraints. A zero field means
// "no constraint"; all set fields are combined with AND.
type FilterCriteria struct {
	Guest    string         `json:"guest,omitempty"`
	Company  string         `json:"company,omitempty"`
	DateFrom *time.Time     `json:"date_from,omitempty"`
	DateTo   *time.Time     `json:"date_to,omitempty"`
	Duration DurationBucket `json:"duration,omitempty"`
}

// ActiveCount returns how many constraints are set.
func (c FilterCriteria) ActiveCount() int {
	n := 0
	if c.Guest != "" {
		n++
	}
	if c.Company != "" {
		n++
	}
	if c.DateFrom != nil {
		n++
	}
	if c.DateTo != nil {
		n++
	}
	if c.Duration != DurationAny {
		n++
	}
	return n
}

// IsEmpty reports whether no constraint is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.ActiveCount() == 0
}

// SearchMatch is a derived, non-persistent search hit.
type SearchMatch struct {
	Episode  Episode  `json:"episode"`
	Excerpts []string `json:"excerpts"`
	Score    int      `json:"score"`
}

// Segment is one piece of highlighted text. Concatenating the Text of all
// segments returned for a string reproduces that string.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// SortOrder selects how search results are ranked.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortDate      SortOrder = "date"
	SortTitle     SortOrder = "title"
)

// ParseSortOrder validates a sort order name; empty means relevance.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortDate, SortTitle:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, s)
	}
}
