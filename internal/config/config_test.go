package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TUCAL_TOKEN", "")
	t.Setenv("TUCAL_CALENDAR_KEY", "")
	t.Setenv("TUCAL_API_ENDPOINT", "")
	t.Setenv("TUCAL_TIMEZONE", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"token: file-token\ncalendar_key: ks73ad7816\ntimezone: Europe/Berlin\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "ks73ad7816", cfg.CalendarKey)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Empty(t, cfg.APIEndpoint)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("TUCAL_TOKEN", "env-token")
	t.Setenv("TUCAL_CALENDAR_KEY", "env-key")
	t.Setenv("TUCAL_API_ENDPOINT", "http://localhost:9999")
	t.Setenv("TUCAL_TIMEZONE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "env-key", cfg.CalendarKey)
	assert.Equal(t, "http://localhost:9999", cfg.APIEndpoint)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TUCAL_TOKEN", "env-token")
	t.Setenv("TUCAL_CALENDAR_KEY", "")
	t.Setenv("TUCAL_API_ENDPOINT", "")
	t.Setenv("TUCAL_TIMEZONE", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"token: file-token\ncalendar_key: ks73ad7816\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "ks73ad7816", cfg.CalendarKey, "file value survives when the env var is unset")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "complete",
			cfg:  Config{Token: "t", CalendarKey: "k"},
		},
		{
			name:    "missing token",
			cfg:     Config{CalendarKey: "k"},
			wantErr: "no API token configured",
		},
		{
			name:    "missing calendar key",
			cfg:     Config{Token: "t"},
			wantErr: "no calendar key configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("TUCAL_TOKEN", "")
	t.Setenv("TUCAL_CALENDAR_KEY", "")
	t.Setenv("TUCAL_API_ENDPOINT", "")
	t.Setenv("TUCAL_TIMEZONE", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &Config{Token: "t", CalendarKey: "k", Timezone: "UTC"}
	require.NoError(t, Save(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "config holds the token")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_NilConfig(t *testing.T) {
	t.Parallel()

	assert.Error(t, Save(filepath.Join(t.TempDir(), "config.yaml"), nil))
}
