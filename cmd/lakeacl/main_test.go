package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("LAKEACL_ACCOUNT", "tidelake-env")
	t.Setenv("LAKEACL_SERVER_URL", "https://env.tidelake.io")
	t.Setenv("LAKEACL_ACCESS_KEY", "env-key")

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tidelake-env", cfg.Account)
	assert.Equal(t, "https://env.tidelake.io", cfg.ServerURL)
	assert.Equal(t, "env-key", cfg.AccessKey)
}

func TestLoadConfigJSON(t *testing.T) {
	dummyConfig := `
{
	"account": "tidelake-json",
	"server_url": "https://json.tidelake.io",
	"access_key": "json-key"
}
`
	dummyConfigFile := filepath.Join(t.TempDir(), "dummy.json")
	require.NoError(t, os.WriteFile(dummyConfigFile, []byte(dummyConfig), 0o600))

	require.NoError(t, rootCmd.PersistentFlags().Set("config", dummyConfigFile))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, dummyConfigFile, cfg.Path)
	assert.Equal(t, "tidelake-json", cfg.Account)
	assert.Equal(t, "https://json.tidelake.io", cfg.ServerURL)
	assert.Equal(t, "json-key", cfg.AccessKey)
}
