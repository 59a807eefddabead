package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ganot/shipdash/internal/odoo"
	"github.com/stretchr/testify/require"
)

func setOdooEnv(t *testing.T) {
	t.Setenv("ODOO_URL", "https://erp.example.com")
	t.Setenv("ODOO_DB", "prod")
	t.Setenv("ODOO_USERNAME", "bot@example.com")
	t.Setenv("ODOO_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setOdooEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Auth.Enabled)
	require.Equal(t, "https://erp.example.com", cfg.Odoo.URL)
	require.Equal(t, 3, *cfg.Odoo.MaxRetries)
	require.Equal(t, 15*time.Second, cfg.Odoo.CallTimeout)
	require.Equal(t, []string{"Pure Form", "Limit-X Nutrition", "APX Energy"}, cfg.Dashboard.Websites)
	require.Equal(t, "Tijuana", cfg.Dashboard.LocalCity)
	require.Equal(t, 4, cfg.Dashboard.RecordsPerPage)
}

func TestLoad_ZeroRetriesIsHonored(t *testing.T) {
	setOdooEnv(t)
	t.Setenv("ODOO_MAX_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Odoo.MaxRetries)
	require.Equal(t, 0, *cfg.Odoo.MaxRetries)

	client, err := odoo.NewClient(cfg.Odoo)
	require.NoError(t, err)
	require.Equal(t, 0, client.MaxRetries())
}

func TestLoad_MissingCredentialsIsFatal(t *testing.T) {
	t.Setenv("ODOO_URL", "https://erp.example.com")
	t.Setenv("ODOO_DB", "")
	t.Setenv("ODOO_USERNAME", "")
	t.Setenv("ODOO_PASSWORD", "")

	_, err := Load()
	require.True(t, errors.Is(err, odoo.ErrConfiguration))

	var cfgErr *odoo.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, []string{"ODOO_DB", "ODOO_USERNAME", "ODOO_PASSWORD"}, cfgErr.Missing)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setOdooEnv(t)
	t.Setenv("SHIPDASH_SERVER_PORT", "9090")
	t.Setenv("SHIPDASH_TRANSPORT_MODE", "stdio")
	t.Setenv("SHIPDASH_AUTH_ENABLED", "true")
	t.Setenv("ODOO_MAX_RETRIES", "5")
	t.Setenv("ODOO_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("ODOO_CALL_TIMEOUT", "10s")
	t.Setenv("SHIPDASH_WEBSITES", "Pure Form, APX Energy ,")
	t.Setenv("SHIPDASH_RECORDS_PER_PAGE", "10")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, 5, *cfg.Odoo.MaxRetries)
	require.Equal(t, 2.5, cfg.Odoo.RequestsPerSecond)
	require.Equal(t, 10*time.Second, cfg.Odoo.CallTimeout)
	require.Equal(t, []string{"Pure Form", "APX Energy"}, cfg.Dashboard.Websites)
	require.Equal(t, 10, cfg.Dashboard.RecordsPerPage)
}

func TestLoad_InvalidValues(t *testing.T) {
	setOdooEnv(t)

	t.Setenv("SHIPDASH_SERVER_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SHIPDASH_SERVER_PORT", "")
	t.Setenv("SHIPDASH_TRANSPORT_MODE", "grpc")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shipdash.yaml")
	data := []byte(`
server:
  port: 7000
log:
  level: debug
odoo:
  url: https://erp.internal
  db: staging
  username: reader
  password: hunter2
  call_timeout: 8s
dashboard:
  local_city: Ensenada
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("SHIPDASH_CONFIG_PATH", path)
	t.Setenv("ODOO_URL", "")
	t.Setenv("ODOO_DB", "")
	t.Setenv("ODOO_USERNAME", "")
	t.Setenv("ODOO_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "staging", cfg.Odoo.Database)
	require.Equal(t, 8*time.Second, cfg.Odoo.CallTimeout)
	require.Equal(t, 5*time.Second, cfg.Odoo.LoginTimeout)
	require.Equal(t, "Ensenada", cfg.Dashboard.LocalCity)
}
