package core

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqibshahzad4485/vless/pkg/config"
	"github.com/aqibshahzad4485/vless/pkg/deploy"
	"github.com/aqibshahzad4485/vless/pkg/manager"
	"github.com/aqibshahzad4485/vless/pkg/store"
)

const testAPIKey = "sekrit"

const daemonConfig = `{
    "inbounds": [
        {"protocol": "vless", "port": 8443, "settings": {"clients": []}}
    ],
    "outbounds": []
}`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(daemonConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server_ip.txt"), []byte("203.0.113.5"), 0644))
	keyPath := filepath.Join(dir, "api_key.txt")
	require.NoError(t, os.WriteFile(keyPath, []byte(testAPIKey+"\n"), 0600))

	st, err := store.Open(filepath.Join(dir, "vless.db"))
	require.NoError(t, err)

	meta := deploy.New(dir)
	meta.LookupURL = "http://127.0.0.1:1"

	mgr := &manager.Manager{
		Store:         st,
		Deploy:        meta,
		ConfigPath:    configPath,
		WhitelistPath: filepath.Join(dir, "whitelist.txt"),
	}
	conf := &config.Config{
		ListenAddr: "127.0.0.1:0",
		APIKeyFile: keyPath,
	}
	server := NewServer(nil, conf, mgr)
	ts := httptest.NewServer(server.Engine())
	t.Cleanup(ts.Close)
	return server, ts
}

func do(t *testing.T, ts *httptest.Server, method, path, key string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp.StatusCode, decoded
}

func doList(t *testing.T, ts *httptest.Server, path, key string) (int, []map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", key)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded []map[string]interface{}
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp.StatusCode, decoded
}

func TestAuthRejectsBadKey(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := do(t, ts, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid API Key", body["error"])

	code, _ = do(t, ts, http.MethodGet, "/users", "wrong", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAuthMissingKeyFile(t *testing.T) {
	server, ts := newTestServer(t)
	require.NoError(t, os.Remove(server.Conf.APIKeyFile))

	code, body := do(t, ts, http.MethodGet, "/users", testAPIKey, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["error"], "missing api key file")
}

func TestUserLifecycleEndToEnd(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := do(t, ts, http.MethodPost, "/user", testAPIKey,
		map[string]interface{}{"username": "alice", "persistent": true})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["uuid"])
	assert.Regexp(t, regexp.MustCompile(`^vless://`), body["link"])

	code, users := doList(t, ts, "/users", testAPIKey)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0]["username"])
	assert.Equal(t, true, users[0]["is_persistent"])

	code, body = do(t, ts, http.MethodDelete, "/user/alice", testAPIKey, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "deleted", body["status"])
	assert.Equal(t, "alice", body["username"])

	code, users = doList(t, ts, "/users", testAPIKey)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, users)
}

func TestCreateUserGeneratedName(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := do(t, ts, http.MethodPost, "/user", testAPIKey, map[string]interface{}{})
	require.Equal(t, http.StatusOK, code)
	assert.Regexp(t, regexp.MustCompile(`^user_[0-9a-f]{8}$`), body["username"])
}

func TestDeleteUnknownUser(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := do(t, ts, http.MethodDelete, "/user/ghost", testAPIKey, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User not found", body["error"])
}

func TestBulkDeleteEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	_, _ = do(t, ts, http.MethodPost, "/user", testAPIKey,
		map[string]interface{}{"username": "keeper", "persistent": true})
	_, _ = do(t, ts, http.MethodPost, "/user", testAPIKey,
		map[string]interface{}{"username": "drifter"})

	code, body := do(t, ts, http.MethodDelete, "/users/delete_all", testAPIKey, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["deleted_count"])

	code, body = do(t, ts, http.MethodDelete, "/users/delete_all?force=true", testAPIKey, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["deleted_count"])

	_, users := doList(t, ts, "/users", testAPIKey)
	assert.Empty(t, users)
}

func TestStatsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	_, _ = do(t, ts, http.MethodPost, "/user", testAPIKey,
		map[string]interface{}{"username": "alice"})

	code, body := do(t, ts, http.MethodGet, "/stats", testAPIKey, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total_users"])
	assert.Equal(t, float64(1), body["active_users_last_1h"])
	history := body["history"].([]interface{})
	require.NotEmpty(t, history)
	first := history[0].(map[string]interface{})
	assert.Equal(t, "create", first["action"])
	assert.Contains(t, first["details"], "alice")
}

func TestTokenRotation(t *testing.T) {
	server, ts := newTestServer(t)

	code, body := do(t, ts, http.MethodPost, "/token/update", testAPIKey,
		map[string]interface{}{"token": "next-key"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "updated", body["status"])
	assert.Equal(t, "next-key", body["new_token"])

	// the old key stopped working
	code, _ = do(t, ts, http.MethodGet, "/users", testAPIKey, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = doList(t, ts, "/users", "next-key")
	assert.Equal(t, http.StatusOK, code)

	data, err := os.ReadFile(server.Conf.APIKeyFile)
	require.NoError(t, err)
	assert.Equal(t, "next-key", string(data))
}

func TestTokenRotationGeneratesRandom(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := do(t, ts, http.MethodPost, "/token/update", testAPIKey,
		map[string]interface{}{})
	require.Equal(t, http.StatusOK, code)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), body["new_token"])
}
