// Package normalize turns loosely-typed backend and import records into the
// typed domain model.
//
// Records arrive with several spellings per logical field (suffixed backend
// columns such as "title_c", plain "title", capitalized CSV headers). The
// alias tables below are the only place that knows about those spellings.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"podcast-catalog/pkg/domain"
)

// Record is one raw row as decoded from JSON, CSV or a REST backend.
type Record map[string]any

// Episode field aliases, in lookup priority order.
var EpisodeAliases = map[string][]string{
	"id":            {"Id", "id", "ID"},
	"title":         {"title_c", "title", "Title", "Name"},
	"channel_name":  {"channel_name_c", "channel_name", "channel", "Channel"},
	"company":       {"company_c", "company", "Company"},
	"date":          {"date_c", "date", "Date"},
	"youtube_url":   {"youtube_url_c", "youtube_url", "url", "URL"},
	"duration":      {"duration_c", "duration", "Duration"},
	"description":   {"description_c", "description", "Description"},
	"transcript":    {"transcript_c", "transcript", "Transcript"},
	"guest_name":    {"guest_name_c", "guest_name", "guestName", "guest", "Guest"},
	"likes":         {"likes_c", "likes", "Likes"},
	"views":         {"views_c", "views", "Views"},
	"thumbnail_url": {"thumbnail_url_c", "thumbnail_url", "thumbnail", "Thumbnail"},
}

// Note field aliases, in lookup priority order.
var NoteAliases = map[string][]string{
	"id":         {"Id", "id", "ID"},
	"episode_id": {"episode_id_c", "episode_id", "episodeId"},
	"content":    {"content_c", "content", "Content"},
	"created_at": {"created_at_c", "created_at", "createdAt", "CreatedOn"},
	"updated_at": {"updated_at_c", "updated_at", "updatedAt", "ModifiedOn"},
}

var dateLayouts = []string{
	domain.DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"01/02/2006",
}

var (
	ErrMissingTitle     = errors.New("record has no title")
	ErrMissingEpisodeID = errors.New("note record has no episode reference")
)

// lookup returns the first non-empty alias value for a logical field.
func (r Record) lookup(aliases []string) (any, bool) {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r Record) text(aliases []string) string {
	v, ok := r.lookup(aliases)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// integer accepts JSON numbers, numeric strings and lookup objects of the
// form {"Id": n}.
func (r Record) integer(aliases []string) (int64, bool) {
	v, ok := r.lookup(aliases)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case map[string]any:
		return Record(t).integer(EpisodeAliases["id"])
	case Record:
		return t.integer(EpisodeAliases["id"])
	default:
		return 0, false
	}
}

func (r Record) timestamp(aliases []string) (time.Time, bool) {
	v, ok := r.lookup(aliases)
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return ParseTime(t)
	default:
		return time.Time{}, false
	}
}

// ParseTime tries every supported layout.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Episode maps a raw record to an episode. Only a title is required; every
// other field degrades to its zero value when missing or malformed.
func Episode(r Record) (domain.Episode, error) {
	ep := domain.Episode{
		Title:        r.text(EpisodeAliases["title"]),
		ChannelName:  r.text(EpisodeAliases["channel_name"]),
		Company:      r.text(EpisodeAliases["company"]),
		VideoURL:     r.text(EpisodeAliases["youtube_url"]),
		Duration:     r.text(EpisodeAliases["duration"]),
		Description:  r.text(EpisodeAliases["description"]),
		Transcript:   r.text(EpisodeAliases["transcript"]),
		GuestName:    r.text(EpisodeAliases["guest_name"]),
		ThumbnailURL: r.text(EpisodeAliases["thumbnail_url"]),
	}
	if ep.Title == "" {
		return domain.Episode{}, ErrMissingTitle
	}
	if id, ok := r.integer(EpisodeAliases["id"]); ok {
		ep.ID = id
	}
	if t, ok := r.timestamp(EpisodeAliases["date"]); ok {
		d := domain.Date(t)
		ep.PublishDate = &d
	}
	if n, ok := r.integer(EpisodeAliases["likes"]); ok {
		ep.Likes = &n
	}
	if n, ok := r.integer(EpisodeAliases["views"]); ok {
		ep.Views = &n
	}
	return ep, nil
}

// Note maps a raw record to a note. The content is not validated here; the
// notes package owns that rule.
func Note(r Record) (domain.Note, error) {
	episodeID, ok := r.integer(NoteAliases["episode_id"])
	if !ok {
		return domain.Note{}, ErrMissingEpisodeID
	}
	n := domain.Note{
		EpisodeID: episodeID,
		Content:   r.text(NoteAliases["content"]),
	}
	if id, ok := r.integer(NoteAliases["id"]); ok {
		n.ID = id
	}
	if t, ok := r.timestamp(NoteAliases["created_at"]); ok {
		n.CreatedAt = t
	}
	if t, ok := r.timestamp(NoteAliases["updated_at"]); ok {
		n.UpdatedAt = t
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}
	return n, nil
}

// EpisodeRecord produces the suffixed column shape used by the REST backend.
// The id is omitted; the backend owns id assignment.
func EpisodeRecord(ep domain.Episode) Record {
	r := Record{
		"Name":           ep.Title,
		"title_c":        ep.Title,
		"channel_name_c": ep.ChannelName,
		"company_c":      ep.Company,
		"youtube_url_c":  ep.VideoURL,
		"duration_c":     ep.Duration,
		"description_c":  ep.Description,
		"transcript_c":   ep.Transcript,
		"guest_name_c":   ep.GuestName,
	}
	if ep.PublishDate != nil {
		r["date_c"] = ep.FormattedDate()
	}
	if ep.Likes != nil {
		r["likes_c"] = *ep.Likes
	}
	if ep.Views != nil {
		r["views_c"] = *ep.Views
	}
	if ep.ThumbnailURL != "" {
		r["thumbnail_url_c"] = ep.ThumbnailURL
	}
	return r
}

// NoteRecord produces the suffixed column shape used by the REST backend.
func NoteRecord(n domain.Note) Record {
	return Record{
		"Name":         truncate(n.Content, 80),
		"episode_id_c": n.EpisodeID,
		"content_c":    n.Content,
		"created_at_c": n.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at_c": n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
