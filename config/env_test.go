package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
BACKEND_URL="http://shop.local:8080/"
store_driver = redis
ORDER_POLL_INTERVAL=2s
broken-line
`), 0o600))

	out := defaultValues()
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "http://shop.local:8080/", out["BACKEND_URL"])
	assert.Equal(t, "redis", out["STORE_DRIVER"])
	assert.Equal(t, "2s", out["ORDER_POLL_INTERVAL"])
}

func TestMergeJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"toast_ttl":"1s","http_retries":3,"nested":{"x":1}}`), 0o600))

	out := defaultValues()
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "1s", out["TOAST_TTL"])
	assert.Equal(t, "3", out["HTTP_RETRIES"])
	_, ok := out["NESTED"]
	assert.False(t, ok)
}

func TestTypedGetters(t *testing.T) {
	Set("BACKEND_URL", "http://api.example.com/")
	Set("STORE_DRIVER", "floppy")
	Set("ORDER_POLL_INTERVAL", "not-a-duration")
	Set("HTTP_RETRIES", "0")
	t.Cleanup(func() {
		Set("BACKEND_URL", "")
		Set("STORE_DRIVER", defaultStoreDriver)
		Set("ORDER_POLL_INTERVAL", defaultOrderPollInterval.String())
		Set("HTTP_RETRIES", "1")
	})

	assert.Equal(t, "http://api.example.com", BackendURL())
	assert.Equal(t, "file", StoreDriver())
	assert.Equal(t, 5*time.Second, OrderPollInterval())
	assert.Equal(t, 1, HTTPRetries())
	assert.Equal(t, 3*time.Second, ToastTTL())
}
