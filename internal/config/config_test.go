package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "apportionment-api", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "apportionment.db", cfg.Database.Path)
	assert.True(t, cfg.Apportionment.Enabled)
	assert.Equal(t, time.Date(2020, time.February, 12, 0, 0, 0, 0, time.UTC), cfg.Apportionment.GoLiveDate)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APPORTION_APP_PORT", "9090")
	t.Setenv("APPORTION_APPORTIONMENT_GO_LIVE_DATE", "2021-06-01")
	t.Setenv("APPORTION_APPORTIONMENT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.False(t, cfg.Apportionment.Enabled)
	assert.Equal(t, time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC), cfg.Apportionment.GoLiveDate)
}

func TestLoad_InvalidGoLiveDate(t *testing.T) {
	t.Setenv("APPORTION_APPORTIONMENT_GO_LIVE_DATE", "12/02/2020")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go-live date")
}
