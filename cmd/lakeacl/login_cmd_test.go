package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidelake/lakeacl/internal/config"
)

func writeTestConfig(t *testing.T, cfgPath, account, serverURL, accessKey string) {
	t.Helper()
	cfg := &config.Config{
		Account:   account,
		ServerURL: serverURL,
		AccessKey: accessKey,
		Path:      cfgPath,
	}
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Save())
}

func TestLogin_AlreadyLoggedIn_PrintsConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	writeTestConfig(t, cfgPath, "tidelake-dev", "http://127.0.0.1:8080", "dev-key")

	out, code := runCLI(t, "--config", cfgPath, "login")
	require.Equal(t, 0, code, out)

	plain := stripANSI(out)
	require.Contains(t, plain, "**Already logged in**")
	require.Contains(t, plain, "LAKEACL CONFIG")
	require.Contains(t, plain, "tidelake-dev")
	require.Contains(t, plain, cfgPath)
	require.NotContains(t, plain, "dev-key", "the key must be masked")
}

func TestLogin_AlreadyLoggedIn_QuietHasNoOutput(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	writeTestConfig(t, cfgPath, "tidelake-dev", "http://127.0.0.1:8080", "dev-key")

	out, code := runCLI(t, "--config", cfgPath, "login", "--quiet")
	require.Equal(t, 0, code, out)
	require.Equal(t, "", strings.TrimSpace(stripANSI(out)))
}

func TestIsValidAccount(t *testing.T) {
	require.True(t, isValidAccount("tidelake-dev"))
	require.True(t, isValidAccount("prod01"))
	require.False(t, isValidAccount(""))
	require.False(t, isValidAccount("has space"))
	require.False(t, isValidAccount("has:colon"))
	require.False(t, isValidAccount("has,comma"))
}
