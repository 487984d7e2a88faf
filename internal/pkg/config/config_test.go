package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicfix/internal/core/matching"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("civicfix-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "civicfix-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, matching.DefaultBestMatchMinScore, cfg.Matching.BestMatchMinScore)
	assert.Equal(t, matching.DefaultAlternativeMinScore, cfg.Matching.AlternativeMinScore)
	assert.Equal(t, matching.DefaultMaxAlternatives, cfg.Matching.MaxAlternatives)
	assert.Equal(t, "civicfix-notifications", cfg.Temporal.TaskQueue)
	assert.False(t, cfg.Notify.SMSEnabled())
	assert.False(t, cfg.Notify.EmailEnabled())
	assert.False(t, cfg.Storage.Enabled())
	assert.Equal(t, "postgres://civicfix:@localhost:5432/civicfix?sslmode=disable", cfg.Database.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CIVICFIX_SERVER_PORT", "3000")
	t.Setenv("CIVICFIX_MATCHING_BEST_MATCH_MIN_SCORE", "50")
	t.Setenv("CIVICFIX_NOTIFY_SENDGRID_API_KEY", "SG.key")
	t.Setenv("CIVICFIX_STORAGE_ENDPOINT", "minio:9000")
	t.Setenv("CIVICFIX_STORAGE_ACCESS_KEY", "access")
	t.Setenv("CIVICFIX_STORAGE_SECRET_KEY", "secret")

	cfg, err := Load("civicfix-test")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Matching.BestMatchMinScore)
	assert.True(t, cfg.Notify.EmailEnabled())
	assert.True(t, cfg.Storage.Enabled())
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad port", map[string]string{"CIVICFIX_SERVER_PORT": "70000"}, "server.port"},
		{"negative threshold", map[string]string{"CIVICFIX_MATCHING_ALTERNATIVE_MIN_SCORE": "-1"}, "matching thresholds"},
		{"zero alternatives", map[string]string{"CIVICFIX_MATCHING_MAX_ALTERNATIVES": "0"}, "matching.max_alternatives"},
		{"partial twilio", map[string]string{"CIVICFIX_NOTIFY_TWILIO_ACCOUNT_SID": "AC123"}, "notify.twilio_*"},
		{"storage without keys", map[string]string{"CIVICFIX_STORAGE_ENDPOINT": "minio:9000"}, "storage.access_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("civicfix-test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
