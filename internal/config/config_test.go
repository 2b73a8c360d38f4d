package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lifeweave.cfg.json"), []byte(body), 0644))
	return dir
}

func TestLoadReadsConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)
	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	strings := map[string]string{
		"logLevel":                    "info",
		"logsDir":                     "./lifeweavelogs",
		"api.serverUrl":               "http://localhost:5000",
		"api.apiKey":                  "",
		"db.host":                     "localhost",
		"db.port":                     "5432",
		"db.username":                 "postgres",
		"db.password":                 "postgres",
		"db.database":                 "lifeweave",
		"graylog.address":             "localhost:12201",
		"storage.type":                "memory",
		"storage.memory.exportDir":    "./scenes",
		"storage.sqlite.dumpInterval": "3m",
		"otel.serviceName":            "lifeweave",
		"otel.batchTimeout":           "5s",
		"otel.endpoint":               "",
		"stream.serverUrl":            "ws://localhost:8077/stream",
	}
	for key, want := range strings {
		assert.Equal(t, want, viper.GetString(key), key)
	}

	bools := map[string]bool{
		"graylog.enabled":               true,
		"storage.memory.compressOutput": true,
		"otel.enabled":                  false,
		"otel.insecure":                 true,
		"stream.enabled":                false,
	}
	for key, want := range bools {
		assert.Equal(t, want, viper.GetBool(key), key)
	}

	assert.Equal(t, 12.0, viper.GetFloat64("layout.pixelsPerDay"))
}

func TestLoadMissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestAccessors(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetStorageConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./scenes", cfg.Memory.ExportDir)
	assert.True(t, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
}

func TestGetStorageConfigOverride(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "exportDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.ExportDir)
	assert.False(t, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
}

func TestGetLayoutConfigOverride(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{ "layout": { "pixelsPerDay": 30, "laneSpacing": 48 } }`)
	require.NoError(t, Load(dir))

	lc := GetLayoutConfig()
	assert.Equal(t, 30.0, lc.PixelsPerDay)
	assert.Equal(t, 48.0, lc.LaneSpacing)
}
