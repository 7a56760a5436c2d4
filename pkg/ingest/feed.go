package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"podcast-catalog/pkg/domain"
)

// parseFeed decodes an RSS/Atom document.
func parseFeed(data []byte) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}
	return feed, nil
}

// episodeFromItem maps one feed item onto an episode. Items without a title
// are skipped by the caller.
func episodeFromItem(feed *gofeed.Feed, item *gofeed.Item) domain.Episode {
	ep := domain.Episode{
		Title:       strings.TrimSpace(item.Title),
		ChannelName: strings.TrimSpace(feed.Title),
		VideoURL:    strings.TrimSpace(item.Link),
		Description: stripHTML(firstNonEmpty(item.Description, item.Content)),
		GuestName:   itemAuthor(feed, item),
	}

	if item.PublishedParsed != nil {
		d := domain.Date(*item.PublishedParsed)
		ep.PublishDate = &d
	} else if item.UpdatedParsed != nil {
		d := domain.Date(*item.UpdatedParsed)
		ep.PublishDate = &d
	}

	if item.ITunesExt != nil {
		if minutes, ok := durationMinutes(item.ITunesExt.Duration); ok {
			ep.Duration = strconv.Itoa(minutes)
		}
		if ep.ThumbnailURL == "" {
			ep.ThumbnailURL = strings.TrimSpace(item.ITunesExt.Image)
		}
	}
	if item.Image != nil && ep.ThumbnailURL == "" {
		ep.ThumbnailURL = strings.TrimSpace(item.Image.URL)
	}
	if ep.VideoURL == "" && len(item.Enclosures) > 0 {
		ep.VideoURL = strings.TrimSpace(item.Enclosures[0].URL)
	}
	return ep
}

// itemAuthor returns the item's author unless it merely repeats the show's
// own author, in which case there is no distinct guest.
func itemAuthor(feed *gofeed.Feed, item *gofeed.Item) string {
	var name string
	switch {
	case len(item.Authors) > 0 && item.Authors[0] != nil:
		name = item.Authors[0].Name
	case item.ITunesExt != nil:
		name = item.ITunesExt.Author
	}
	name = strings.TrimSpace(name)

	var show string
	if len(feed.Authors) > 0 && feed.Authors[0] != nil {
		show = strings.TrimSpace(feed.Authors[0].Name)
	}
	if name != "" && strings.EqualFold(name, show) {
		return ""
	}
	return name
}

// durationMinutes converts an itunes:duration value ("3600", "45:30",
// "1:02:03") to whole minutes, rounding seconds to the nearest minute.
func durationMinutes(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, false
	}
	seconds := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		seconds = seconds*60 + n
	}
	return (seconds + 30) / 60, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
