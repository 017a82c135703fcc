package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestIgnoreConfig_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr string
	}{
		{"date", "commits-before: 2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ""},
		{"timestamp", "commits-before: 2024-06-01T10:30:00Z", time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), ""},
		{"garbage", "commits-before: last tuesday", time.Time{}, "cannot parse commits-before"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c IgnoreConfig
			err := yaml.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c.CommitsBefore)
			require.True(t, tt.want.Equal(*c.CommitsBefore))
		})
	}
}

func TestIgnoreConfig_Excludes(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := IgnoreConfig{CommitsBefore: &cutoff, Sha: []string{"abc123", ""}}

	tests := []struct {
		name string
		sha  string
		when time.Time
		want bool
	}{
		{"before cutoff", "fff", cutoff.Add(-time.Hour), true},
		{"at cutoff", "fff", cutoff, false},
		{"abbreviated sha", "abc123def456", cutoff.Add(time.Hour), true},
		{"other sha", "def456abc123", cutoff.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Excludes(tt.sha, tt.when))
		})
	}

	require.True(t, IgnoreConfig{}.IsEmpty())
	require.False(t, c.IsEmpty())
}
