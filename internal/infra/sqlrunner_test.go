package infra

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"artisanstudio/internal/sqlinline"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := ExtractMarker("\n--sql 3b8f0a52-6c1e-4d7a-9f43-2a5e8c1d7b90\nselect 1;\n")
	require.NoError(t, err)
	require.Equal(t, "3b8f0a52-6c1e-4d7a-9f43-2a5e8c1d7b90", marker)
	require.Equal(t, "select 1;", body)
}

func TestExtractMarkerRejectsUntaggedStatements(t *testing.T) {
	tests := []string{
		"select 1;",
		"--sql not-a-uuid\nselect 1;",
		"-- 3b8f0a52-6c1e-4d7a-9f43-2a5e8c1d7b90\nselect 1;",
	}
	for _, q := range tests {
		_, _, err := ExtractMarker(q)
		require.True(t, errors.Is(err, ErrMissingMarker), q)
	}

	_, _, err := ExtractMarker("   ")
	require.Error(t, err)
	_, _, err = ExtractMarker("--sql 3b8f0a52-6c1e-4d7a-9f43-2a5e8c1d7b90\n")
	require.Error(t, err)
}

func TestUsageStatementsAreTagged(t *testing.T) {
	seen := map[string]bool{}
	for _, q := range []string{
		sqlinline.QCreateGenerationEvents,
		sqlinline.QInsertGenerationEvent,
		sqlinline.QGenerationSummary,
	} {
		marker, _, err := ExtractMarker(q)
		require.NoError(t, err)
		require.False(t, seen[marker], "duplicate marker %s", marker)
		seen[marker] = true
	}
}
