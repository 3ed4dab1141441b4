package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "vlessadm.toml"))
	require.Error(t, err, "explicit missing path should fail")

	// no explicit path: defaults apply even without a file
	wd := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(wd))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	conf, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8000", conf.ListenAddr)
	assert.Equal(t, "/opt/vless/vless.db", conf.DBPath)
	assert.Equal(t, "/usr/local/etc/xray/config.json", conf.XrayConfigPath)
	assert.Equal(t, "vless", conf.Protocol)
	assert.Equal(t, "/opt/vless/whitelist.txt", conf.WhitelistPath)
	assert.Equal(t, "/opt/vless/api_key.txt", conf.APIKeyFile)
	assert.Equal(t, 3, conf.IdleTimeoutHours)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vlessadm.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen_addr = \":9000\"\nidle_timeout_hours = 6\nprotocol = \"trojan\"\n"), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", conf.ListenAddr)
	assert.Equal(t, 6, conf.IdleTimeoutHours)
	assert.Equal(t, "trojan", conf.Protocol)
	assert.Equal(t, "/opt/vless/vless.db", conf.DBPath)
}

func TestIdleTimeout(t *testing.T) {
	conf := &Config{IdleTimeoutHours: 5}
	assert.Equal(t, 5*time.Hour, conf.IdleTimeout())

	t.Setenv("IDLE_TIMEOUT_HOURS", "8")
	assert.Equal(t, 8*time.Hour, conf.IdleTimeout())

	t.Setenv("IDLE_TIMEOUT_HOURS", "garbage")
	assert.Equal(t, 5*time.Hour, conf.IdleTimeout())

	t.Setenv("IDLE_TIMEOUT_HOURS", "")
	conf.IdleTimeoutHours = 0
	assert.Equal(t, 3*time.Hour, conf.IdleTimeout())
}
