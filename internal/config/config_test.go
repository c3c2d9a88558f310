package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-wetta-dashboard/internal/registry"
)

// isolate keeps the host's secrets and config files out of the test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_SECRETS_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CREDENTIALS_DIRECTORY", "")
	t.Setenv("APP_CONFIG_FILE", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, time.Minute, cfg.PollInterval())

	earliest, err := cfg.Earliest()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 7, 23, 0, 0, 0, 0, time.UTC), earliest)

	policy, err := cfg.EmptyCategoryPolicy()
	require.NoError(t, err)
	assert.Equal(t, registry.EmptyCategoriesReject, policy)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "wetta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_driver: sqlite
sqlite_path: /tmp/wetta.db
poll_interval_ms: 30000
db_query_timeout: 3s
station_name: Testhof
`), 0o600))

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_POLL_INTERVAL_MS", "15000")
	t.Setenv("APP_EMPTY_CATEGORIES", "hide")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/wetta.db", cfg.SQLitePath)
	assert.Equal(t, 3*time.Second, cfg.DBQueryTimeout)
	assert.Equal(t, "Testhof", cfg.StationName)
	assert.Equal(t, 15*time.Second, cfg.PollInterval(), "env wins over file")
	assert.Equal(t, "hide", cfg.EmptyCategories)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone, "untouched keys keep defaults")
}

func TestLoad_ExplicitPathWinsOverEnvPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.yaml")
	flagPath := filepath.Join(dir, "flag.yaml")
	require.NoError(t, os.WriteFile(envPath, []byte("station_name: Env\n"), 0o600))
	require.NoError(t, os.WriteFile(flagPath, []byte("station_name: Flag\n"), 0o600))
	t.Setenv("APP_CONFIG_FILE", envPath)

	cfg, err := Load(flagPath)
	require.NoError(t, err)
	assert.Equal(t, "Flag", cfg.StationName)
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_SecretsFileSitsBetweenFileAndEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	secrets := filepath.Join(dir, "secrets.env")
	require.NoError(t, os.WriteFile(secrets, []byte(`
# station database
export APP_DB_PASSWORD="s3cr3t"
APP_DB_USER='reader'
APP_DB_HOST=from-secrets
APP_DB_NAME=from-secrets
OTHER_TOKEN=ignored
`), 0o600))
	cfgPath := filepath.Join(dir, "wetta.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db_name: from-file\ndb_port: 3307\n"), 0o600))

	t.Setenv("APP_SECRETS_FILE", secrets)
	t.Setenv("APP_DB_HOST", "from-env")
	t.Setenv("APP_DB_PASSWORD", "")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.DBPassword, "empty env does not mask the secret")
	assert.Equal(t, "reader", cfg.DBUser)
	assert.Equal(t, "from-env", cfg.DBHost, "env wins over secrets")
	assert.Equal(t, "from-secrets", cfg.DBName, "secrets win over file")
	assert.Equal(t, 3307, cfg.DBPort)
	assert.Empty(t, os.Getenv("APP_DB_USER"), "process environment stays untouched")
}

func TestLoad_CredentialsDirectory(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wetta-secrets"), []byte("APP_DB_PASSWORD=from-creds\n"), 0o600))
	t.Setenv("CREDENTIALS_DIRECTORY", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-creds", cfg.DBPassword)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Env = "staging"
	cfg.DBDriver = "postgres"
	cfg.PollIntervalMS = 0
	cfg.Timezone = "Mars/Olympus"
	cfg.EarliestDate = "23.07.2021"
	cfg.EmptyCategories = "maybe"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"env", "db_driver", "poll_interval_ms", "timezone", "earliest_date", "empty category policy", "log_level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_EarliestDateInFuture(t *testing.T) {
	cfg := Default()
	cfg.EarliestDate = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	assert.ErrorContains(t, cfg.Validate(), "future")
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.DBUser = "wetta"
	cfg.DBPassword = "pw"
	cfg.DBHost = "db.local"
	cfg.DBPort = 3307

	dsn := cfg.MySQLDSN()
	assert.Contains(t, dsn, "wetta:pw@tcp(db.local:3307)/wetta?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=UTC")
}
