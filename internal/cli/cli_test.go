package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	configPath = ""
	currentWatch, currentJSON = false, false
	historyFrom, historyTo, historyGran, historyJSON = "", "", "", false
	registryJSON = false
	seedSQLitePath, seedDays = "", 30
	chartKind, chartOut = "temperature", ""
	chartWidth, chartHeight = 1000, 420
	chartFrom, chartTo, chartGranularity = "", "", ""
	versionShort = false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// sqliteEnv points configuration at a fresh SQLite file.
func sqliteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wetta.db")
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_SECRETS_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_DB_DRIVER", "sqlite")
	t.Setenv("APP_SQLITE_PATH", path)
	t.Setenv("APP_TIMEZONE", "UTC")
	return path
}

func TestVersionShort(t *testing.T) {
	orig := version
	defer func() { version = orig }()
	version = "1.2.3"

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestVersionFull(t *testing.T) {
	orig := version
	defer func() { version = orig }()
	version = "1.2.3"

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wetta v1.2.3")
	assert.Contains(t, out, "commit:")
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "v1.0.0", formatVersion("1.0.0"))
	assert.Equal(t, "v1.0.0", formatVersion("v1.0.0"))
}

func TestRegistryTable(t *testing.T) {
	sqliteEnv(t)

	out, err := execute(t, "registry")
	require.NoError(t, err)
	assert.Contains(t, out, "WIDGET")
	assert.Contains(t, out, "current-temp-outdoor")
	assert.Contains(t, out, "current-wind_direction")
	assert.Contains(t, out, "compass")
	assert.Contains(t, out, "timestamp")
}

func TestRegistryJSON(t *testing.T) {
	sqliteEnv(t)

	out, err := execute(t, "registry", "--json")
	require.NoError(t, err)

	var payload struct {
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
		Data []registryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, 18, payload.Meta.Count)
	assert.Equal(t, "current-time", payload.Data[17].WidgetID)
}

func TestSeedThenQuery(t *testing.T) {
	path := sqliteEnv(t)

	out, err := execute(t, "seed", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded "+path)

	out, err = execute(t, "current", "--json")
	require.NoError(t, err)
	var current struct {
		Data []struct {
			WidgetID string `json:"widget_id"`
			Text     string `json:"text"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &current))
	require.Len(t, current.Data, 18)
	assert.True(t, strings.HasPrefix(current.Data[17].Text, "Zeitpunkt der Daten: "))

	out, err = execute(t, "current")
	require.NoError(t, err)
	assert.Contains(t, out, "Wetta Wilsum")
	assert.Contains(t, out, "Niederschlag")

	out, err = execute(t, "history", "--json")
	require.NoError(t, err)
	var hist struct {
		Meta struct {
			Granularity string `json:"granularity"`
			Count       int    `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	assert.Equal(t, "daily", hist.Meta.Granularity)
	assert.Positive(t, hist.Meta.Count)

	out, err = execute(t, "history", "--granularity", "hourly")
	require.NoError(t, err)
	today := time.Now().UTC()
	assert.Contains(t, out, today.AddDate(0, 0, -1).Format("2006-01-02")+" bis "+today.Format("2006-01-02")+" (Stündlich)")
}

func TestChartToFile(t *testing.T) {
	sqliteEnv(t)
	_, err := execute(t, "seed", "--days", "2")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "rain.svg")
	_, err = execute(t, "chart", "--kind", "rain", "--out", file)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestChartUnknownKind(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "chart", "--kind", "wind")
	assert.ErrorContains(t, err, "unknown chart kind")
}

func TestHistoryRejectsBadGranularity(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "history", "--granularity", "weekly")
	assert.Error(t, err)
}

func TestSeedRejectsZeroDays(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "seed", "--days", "0")
	assert.Error(t, err)
}
