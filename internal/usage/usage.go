// Package usage records one event per generation. Events describe how a
// bundle was produced (source, provider, fallback reason, latency); the bundle
// itself is never stored.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"artisanstudio/internal/infra"
	"artisanstudio/internal/sqlinline"
)

// ErrDisabled is returned by summaries when no database is configured.
var ErrDisabled = errors.New("usage store disabled")

// Event is a single generation record.
type Event struct {
	RequestID      string
	Source         string
	Provider       string
	FallbackReason string
	CraftType      string
	Region         string
	Language       string
	Country        string
	Latency        time.Duration
}

// SummaryRow aggregates events per source and provider.
type SummaryRow struct {
	Source       string  `json:"source"`
	Provider     string  `json:"provider"`
	Total        int64   `json:"total"`
	AvgLatencyMS float64 `json:"avgLatencyMs"`
}

// Recorder stores generation events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Summary(ctx context.Context, window time.Duration) ([]SummaryRow, error)
}

// PGRecorder writes events to the generation_events table.
type PGRecorder struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
	newID  func() uuid.UUID
}

func NewPGRecorder(sql infra.SQLExecutor, logger zerolog.Logger) *PGRecorder {
	return &PGRecorder{sql: sql, logger: logger, newID: uuid.New}
}

// EnsureSchema creates the events table when it does not exist yet.
func (p *PGRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QCreateGenerationEvents); err != nil {
		return fmt.Errorf("usage: ensure schema: %w", err)
	}
	return nil
}

func (p *PGRecorder) Record(ctx context.Context, ev Event) error {
	_, err := p.sql.Exec(ctx, sqlinline.QInsertGenerationEvent,
		p.newID(),
		ev.RequestID,
		ev.Source,
		ev.Provider,
		ev.FallbackReason,
		truncate(ev.CraftType, 200),
		truncate(ev.Region, 200),
		truncate(ev.Language, 64),
		ev.Country,
		int(ev.Latency.Milliseconds()),
	)
	if err != nil {
		return fmt.Errorf("usage: record event: %w", err)
	}
	return nil
}

func (p *PGRecorder) Summary(ctx context.Context, window time.Duration) ([]SummaryRow, error) {
	hours := int(window.Hours())
	if hours <= 0 {
		hours = 24
	}
	rows, err := p.sql.Query(ctx, sqlinline.QGenerationSummary, hours)
	if err != nil {
		return nil, fmt.Errorf("usage: summary: %w", err)
	}
	defer rows.Close()

	out := make([]SummaryRow, 0, 4)
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.Source, &row.Provider, &row.Total, &row.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("usage: scan summary: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("usage: summary rows: %w", err)
	}
	return out, nil
}

// NopRecorder drops events. Used when DATABASE_URL is empty.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }

func (NopRecorder) Summary(context.Context, time.Duration) ([]SummaryRow, error) {
	return nil, ErrDisabled
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

var (
	_ Recorder = (*PGRecorder)(nil)
	_ Recorder = NopRecorder{}
)
