package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/errors"
)

// writeConfig writes a config file into the working directory so path
// validation accepts it, and removes it when the test ends.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(".", "config-*.json")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { _ = os.Remove(f.Name()) })
	return filepath.Base(f.Name())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "travel", cfg.Gateway.SubjectPrefix)
	assert.Equal(t, 5000, cfg.Catalog.Total)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Platform.Org, cfg.Platform.Org)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"platform": {"org": "acme", "id": "travel-east"},
		"nats": {"urls": ["nats://broker:4222"], "reconnect_wait": "5s"},
		"catalog": {"seed": 42, "total": 100},
		"engine": {"monitor_interval": "250ms", "disable_delays": true},
		"metrics": {"enabled": false}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Platform.Org)
	assert.Equal(t, []string{"nats://broker:4222"}, cfg.NATS.URLs)
	assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait.Std())
	assert.Equal(t, int64(42), cfg.Catalog.Seed)
	assert.Equal(t, 100, cfg.Catalog.Total)
	assert.Equal(t, 250*time.Millisecond, cfg.Engine.MonitorInterval.Std())
	assert.True(t, cfg.Engine.DisableDelays)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"platform": {`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	_, err := Load("config.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing org",
			mutate:  func(c *Config) { c.Platform.Org = "" },
			wantErr: "platform.org",
		},
		{
			name:    "missing id",
			mutate:  func(c *Config) { c.Platform.ID = "" },
			wantErr: "platform.id",
		},
		{
			name:    "missing nats urls",
			mutate:  func(c *Config) { c.NATS.URLs = nil },
			wantErr: "nats.urls",
		},
		{
			name:    "org must be subject-safe",
			mutate:  func(c *Config) { c.Platform.Org = "bad org!" },
			wantErr: "not valid for NATS subjects",
		},
		{
			name:    "negative catalog total",
			mutate:  func(c *Config) { c.Catalog.Total = -1 },
			wantErr: "catalog.total",
		},
		{
			name: "inverted query delay bounds",
			mutate: func(c *Config) {
				c.Engine.QueryDelayMin = Duration(3 * time.Second)
				c.Engine.QueryDelayMax = Duration(time.Second)
			},
			wantErr: "query delay bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesOrg(t *testing.T) {
	cfg := Default()
	cfg.Platform.Org = "C360"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "c360", cfg.Platform.Org)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRAVELSTREAMS_NATS_URL", "nats://a:4222,nats://b:4222")
	t.Setenv("TRAVELSTREAMS_ENV", "prod")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.NATS.URLs)
	assert.Equal(t, "prod", cfg.Platform.Environment)
}

func TestValidateJSONDepth(t *testing.T) {
	deep := strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1)
	assert.Error(t, validateJSONDepth([]byte(deep)))

	assert.NoError(t, validateJSONDepth([]byte(`{"a": {"b": [1, 2, 3]}}`)))
	assert.Error(t, validateJSONDepth([]byte(`{"a": {`)))
	assert.NoError(t, validateJSONDepth([]byte(`{"a": "brackets in strings: }]"}`)))
}

func TestDurationRoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, time.Second, d.Std())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	out, err := Duration(2 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}
