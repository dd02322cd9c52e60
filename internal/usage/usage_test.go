package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"artisanstudio/internal/sqlinline"
)

type execCall struct {
	query string
	args  []any
}

type stubSQL struct {
	execs   []execCall
	execErr error
	summary []SummaryRow
}

func (s *stubSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s *stubSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (s *stubSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if query != sqlinline.QGenerationSummary {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if len(args) != 1 || args[0] != 24 {
		return nil, fmt.Errorf("unexpected args: %v", args)
	}
	return &summaryRows{rows: s.summary}, nil
}

type rowsBase struct{}

func (rowsBase) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (rowsBase) Conn() *pgx.Conn                              { return nil }
func (rowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (rowsBase) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (rowsBase) RawValues() [][]byte                          { return nil }

type summaryRows struct {
	rowsBase
	rows []SummaryRow
	idx  int
}

func (r *summaryRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *summaryRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	if len(dest) != 4 {
		return fmt.Errorf("unexpected scan args: %d", len(dest))
	}
	row := r.rows[r.idx-1]
	*dest[0].(*string) = row.Source
	*dest[1].(*string) = row.Provider
	*dest[2].(*int64) = row.Total
	*dest[3].(*float64) = row.AvgLatencyMS
	return nil
}

func (r *summaryRows) Err() error { return nil }
func (r *summaryRows) Close()     {}

func TestPGRecorderRecord(t *testing.T) {
	sql := &stubSQL{}
	rec := NewPGRecorder(sql, zerolog.Nop())
	fixed := uuid.MustParse("6f1c1f0e-8a53-4c1b-9a3c-2b1d0e4f5a67")
	rec.newID = func() uuid.UUID { return fixed }

	err := rec.Record(context.Background(), Event{
		RequestID:      "req-1",
		Source:         "fallback",
		Provider:       "static",
		FallbackReason: "quota_exceeded",
		CraftType:      "Terracotta pottery",
		Region:         "Kutch",
		Language:       "Hindi",
		Country:        "IN",
		Latency:        1500 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, sql.execs, 1)
	call := sql.execs[0]
	require.Equal(t, sqlinline.QInsertGenerationEvent, call.query)
	require.Equal(t, []any{fixed, "req-1", "fallback", "static", "quota_exceeded", "Terracotta pottery", "Kutch", "Hindi", "IN", 1500}, call.args)
}

func TestPGRecorderRecordTruncatesLongFields(t *testing.T) {
	sql := &stubSQL{}
	rec := NewPGRecorder(sql, zerolog.Nop())
	require.NoError(t, rec.Record(context.Background(), Event{CraftType: strings.Repeat("é", 300)}))
	require.Equal(t, 200, len([]rune(sql.execs[0].args[5].(string))))
}

func TestPGRecorderWrapsExecErrors(t *testing.T) {
	boom := errors.New("connection refused")
	rec := NewPGRecorder(&stubSQL{execErr: boom}, zerolog.Nop())
	err := rec.Record(context.Background(), Event{})
	require.ErrorIs(t, err, boom)

	err = rec.EnsureSchema(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestPGRecorderEnsureSchema(t *testing.T) {
	sql := &stubSQL{}
	require.NoError(t, NewPGRecorder(sql, zerolog.Nop()).EnsureSchema(context.Background()))
	require.Equal(t, sqlinline.QCreateGenerationEvents, sql.execs[0].query)
}

func TestPGRecorderSummary(t *testing.T) {
	want := []SummaryRow{
		{Source: "fallback", Provider: "static", Total: 4, AvgLatencyMS: 12},
		{Source: "generated", Provider: "openai", Total: 9, AvgLatencyMS: 2300.5},
	}
	rec := NewPGRecorder(&stubSQL{summary: want}, zerolog.Nop())
	got, err := rec.Summary(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNopRecorder(t *testing.T) {
	var rec Recorder = NopRecorder{}
	require.NoError(t, rec.Record(context.Background(), Event{Source: "generated"}))
	_, err := rec.Summary(context.Background(), time.Hour)
	require.ErrorIs(t, err, ErrDisabled)
}
