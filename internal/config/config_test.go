package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_NAME", "courtside.db")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "courtside.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.False(t, cfg.SlackEnabled())
}

func TestParseRequiresDBName(t *testing.T) {
	t.Setenv("DB_NAME", "")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestParseRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("DB_NAME", "courtside.db")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Parse()
	require.Error(t, err)
}

func TestParseIntegrations(t *testing.T) {
	t.Setenv("DB_NAME", "courtside.db")
	t.Setenv("TIMEZONE", "Europe/Copenhagen")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C123")
	t.Setenv("PLAYTOMIC_TENANT_ID", "tenant-1")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.SlackEnabled())
	assert.Equal(t, "tenant-1", cfg.Playtomic.TenantID)
	assert.Equal(t, "Europe/Copenhagen", cfg.Location().String())
}
