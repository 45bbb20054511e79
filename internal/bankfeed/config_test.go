package bankfeed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	content := `
feeds:
  - name: banca-uno
    url: https://api.banca-uno.example/transactions
    api_key: abc123
    cron: "0 30 6 * * *"
  - name: banca-due
    url: https://api.banca-due.example/v2/statements
lookback_days: 14
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Feeds, 2)
	assert.Equal(t, "banca-uno", cfg.Feeds[0].Name)
	assert.Equal(t, "0 30 6 * * *", cfg.Feeds[0].Cron)
	// Second feed gets the default schedule.
	assert.Equal(t, "0 0 6 * * *", cfg.Feeds[1].Cron)
	assert.Equal(t, 14, cfg.LookbackDays)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "no feeds",
			cfg:     Config{},
			wantErr: "at least one feed is required",
		},
		{
			name:    "missing name",
			cfg:     Config{Feeds: []FeedConfig{{URL: "https://x"}}},
			wantErr: "feed name is required",
		},
		{
			name:    "missing url",
			cfg:     Config{Feeds: []FeedConfig{{Name: "a"}}},
			wantErr: "url is required",
		},
		{
			name: "duplicate name",
			cfg: Config{Feeds: []FeedConfig{
				{Name: "a", URL: "https://x"},
				{Name: "a", URL: "https://y"},
			}},
			wantErr: "duplicate feed name",
		},
		{
			name: "valid",
			cfg: Config{Feeds: []FeedConfig{
				{Name: "a", URL: "https://x"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
