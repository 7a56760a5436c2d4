// Package importer reads episodes from pasted or uploaded CSV/JSON data and
// writes the catalog back out in the same formats.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"podcast-catalog/pkg/db"
	"podcast-catalog/pkg/domain"
	"podcast-catalog/pkg/normalize"
)

var (
	ErrEmptyInput    = errors.New("no data to import")
	ErrMalformed     = errors.New("failed to parse import data")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Format is an import/export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Header is the canonical CSV column order.
var Header = []string{
	"title", "channel_name", "company", "date", "youtube_url",
	"duration", "description", "transcript", "guest_name",
}

// Parse decodes raw records. Input whose first non-blank character is '[' or
// '{' is JSON (an array or a single object); anything else is CSV with a
// header row.
func Parse(r io.Reader) ([]normalize.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import data: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	if data[0] == '[' || data[0] == '{' {
		return parseJSON(data)
	}
	return parseCSV(data)
}

func parseJSON(data []byte) ([]normalize.Record, error) {
	if data[0] == '{' {
		var one normalize.Record
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return []normalize.Record{one}, nil
	}

	var many []normalize.Record
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return many, nil
}

func parseCSV(data []byte) ([]normalize.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]normalize.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := normalize.Record{}
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Report summarizes an import run.
type Report struct {
	Imported int
	Failed   int
	Errors   []error
}

// Importer creates episodes from parsed records.
type Importer struct {
	episodes db.EpisodeRepository
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock sets the clock used to default missing publish dates.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

// New creates an importer writing to the given repository.
func New(episodes db.EpisodeRepository, logger *slog.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	im := &Importer{episodes: episodes, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import normalizes and stores each record. A record that fails does not stop
// the run; its error is collected in the report. Only context cancellation
// aborts early.
func (im *Importer) Import(ctx context.Context, records []normalize.Record) (Report, error) {
	var report Report
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ep, err := normalize.Episode(rec)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("record %d: %w", i+1, err))
			continue
		}
		ep.ID = 0
		if ep.PublishDate == nil {
			today := domain.Date(im.now())
			ep.PublishDate = &today
		}

		created, err := im.episodes.Create(ctx, ep)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("record %d (%q): %w", i+1, ep.Title, err))
			continue
		}
		report.Imported++
		im.logger.Debug("imported episode", "id", created.ID, "title", created.Title)
	}

	im.logger.Info("import finished", "imported", report.Imported, "failed", report.Failed)
	return report, nil
}

// Export writes episodes in the requested format. JSON output is an indented
// array; CSV output starts with Header.
func Export(w io.Writer, episodes []domain.Episode, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if episodes == nil {
			episodes = []domain.Episode{}
		}
		if err := enc.Encode(episodes); err != nil {
			return fmt.Errorf("encode episodes: %w", err)
		}
		return nil
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		for _, ep := range episodes {
			row := []string{
				ep.Title, ep.ChannelName, ep.Company, ep.FormattedDate(), ep.VideoURL,
				ep.Duration, ep.Description, ep.Transcript, ep.GuestName,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
