package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"listconsole/internal/config"
	"listconsole/internal/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPreferences_Memory(t *testing.T) {
	prefs, closeFn, err := openPreferences(context.Background(), config.Cfg{Prefs: config.PrefsCfg{Backend: config.BackendMemory}})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &listing.MemoryPreferences{}, prefs)
}

func TestOpenPreferences_UnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := openPreferences(ctx, config.Cfg{
		Prefs: config.PrefsCfg{Backend: config.BackendRedis},
		Redis: config.RedisCfg{Addr: "127.0.0.1:1"},
	})
	assert.ErrorContains(t, err, "redis ping")
}

func TestRun_MissingCatalog(t *testing.T) {
	err := run(context.Background(), config.Cfg{App: config.AppCfg{CatalogPath: filepath.Join(t.TempDir(), "views.yaml")}})
	assert.ErrorContains(t, err, "read catalog")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstreams:
  core: { base_url: "http://127.0.0.1:1" }
views:
  - name: roles
    upstream: core
    list_path: /roles
    columns: [{ key: id, label: ID, visible: true }]
`), 0o600))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	cfg := config.Cfg{
		App:      config.AppCfg{Env: "test", Port: strconv.Itoa(port), CatalogPath: path},
		Prefs:    config.PrefsCfg{Backend: config.BackendMemory},
		Sessions: config.SessionCfg{IdleTTL: time.Minute, SweepEvery: time.Minute},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
