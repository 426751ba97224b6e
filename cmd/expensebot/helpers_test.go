package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	t.Run("explicit range", func(t *testing.T) {
		start, end, err := parseDateRange("2025-03-01", "2025-03-31", 30)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("days fallback", func(t *testing.T) {
		start, end, err := parseDateRange("", "", 7)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), end, time.Minute)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), start, time.Minute)
	})

	t.Run("zero days defaults to thirty", func(t *testing.T) {
		start, end, err := parseDateRange("", "", 0)
		require.NoError(t, err)
		assert.WithinDuration(t, end.AddDate(0, 0, -30), start, time.Minute)
	})

	t.Run("invalid start date", func(t *testing.T) {
		_, _, err := parseDateRange("03/01/2025", "2025-03-31", 30)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid start date")
	})

	t.Run("invalid end date", func(t *testing.T) {
		_, _, err := parseDateRange("2025-03-01", "yesterday", 30)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid end date")
	})

	t.Run("inverted range", func(t *testing.T) {
		_, _, err := parseDateRange("2025-03-31", "2025-03-01", 30)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is after end date")
	})

	t.Run("only start date falls back to days", func(t *testing.T) {
		start, end, err := parseDateRange("2025-03-01", "", 7)
		require.NoError(t, err)
		assert.WithinDuration(t, end.AddDate(0, 0, -7), start, time.Minute)
	})
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		format  string
		want    string
		wantErr string
	}{
		{name: "explicit csv", path: "statement.qfx", format: "csv", want: "csv"},
		{name: "explicit ofx", path: "statement.csv", format: "ofx", want: "ofx"},
		{name: "auto csv", path: "statement.csv", format: "auto", want: "csv"},
		{name: "auto csv uppercase", path: "STATEMENT.CSV", format: "auto", want: "csv"},
		{name: "auto ofx", path: "statement.ofx", format: "auto", want: "ofx"},
		{name: "auto qfx", path: "chase_jan.qfx", format: "auto", want: "ofx"},
		{name: "empty format means auto", path: "statement.csv", format: "", want: "csv"},
		{name: "unknown extension", path: "statement.txt", format: "auto", wantErr: "cannot detect format"},
		{name: "bad format flag", path: "statement.csv", format: "xlsx", wantErr: "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detectFormat(tt.path, tt.format)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
