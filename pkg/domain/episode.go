package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used for publish dates everywhere
// episodes are read or written as text.
const DateLayout = "2006-01-02"

// Episode represents one podcast recording in the catalog.
//
// The same struct is persisted by the Mongo repository (bson tags) and emitted
// by the CLI (json tags). Optional values are either empty strings or nil
// pointers; the pipeline treats both as "absent".
type Episode struct {
	// ID is unique within the collection and never changes once assigned.
	ID int64 `bson:"_id" json:"id"`

	Title       string `bson:"title" json:"title"`
	ChannelName string `bson:"channel_name" json:"channel_name"`
	Company     string `bson:"company,omitempty" json:"company,omitempty"`

	// PublishDate is a calendar date at UTC midnight, nil when unknown.
	PublishDate *time.Time `bson:"date,omitempty" json:"date,omitempty"`

	// VideoURL is the external video reference (usually YouTube).
	VideoURL string `bson:"youtube_url,omitempty" json:"youtube_url,omitempty"`

	// Duration is kept as stored by the backend: "45", "45 min", or empty.
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"`

	Description string `bson:"description" json:"description"`
	Transcript  string `bson:"transcript,omitempty" json:"transcript,omitempty"`
	GuestName   string `bson:"guest_name" json:"guest_name"`

	Likes        *int64 `bson:"likes,omitempty" json:"likes,omitempty"`
	Views        *int64 `bson:"views,omitempty" json:"views,omitempty"`
	ThumbnailURL string `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
}

var leadingInt = regexp.MustCompile(`^\s*(\d+)`)

// DurationMinutes parses the leading integer of the duration field.
// "45" and "45 min" both yield 45. The second return value is false when the
// field is empty or does not start with a number.
func (e Episode) DurationMinutes() (int, bool) {
	m := leadingInt.FindStringSubmatch(e.Duration)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// youtubeID matches watch, short-link, /v/ and /embed/ URL shapes.
var youtubeID = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// VideoID returns the 11-character YouTube id of VideoURL, or "" if the URL
// is not a recognizable YouTube link.
func (e Episode) VideoID() string {
	m := youtubeID.FindStringSubmatch(strings.TrimSpace(e.VideoURL))
	if m == nil {
		return ""
	}
	return m[1]
}

// EmbedURL returns the player URL for the episode video, or "" when there is
// no playable video.
func (e Episode) EmbedURL() string {
	id := e.VideoID()
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id + "?autoplay=0&rel=0&modestbranding=1"
}

// FormattedDate renders PublishDate as YYYY-MM-DD, or "" when unknown.
func (e Episode) FormattedDate() string {
	if e.PublishDate == nil {
		return ""
	}
	return e.PublishDate.Format(DateLayout)
}

// ParseDate parses a calendar date in YYYY-MM-DD form and returns it at UTC
// midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Date truncates t to its calendar day in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
