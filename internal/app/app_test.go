package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prontuario/prontuario/backend/go-services/internal/config"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memoryConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestOpenMemoryAndRouter(t *testing.T) {
	cfg := memoryConfig()
	res, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Close()
	assert.Equal(t, "memory", res.Store.Name())
	assert.Nil(t, res.Redis)

	r := NewRouter(cfg, res, time.Now())

	w := get(r, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())

	w = get(r, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":true`)

	w = get(r, "/api/patients", map[string]string{"Origin": "http://localhost:5173"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `[]`, w.Body.String())

	w = get(r, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOpenFileBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StoreConfig{Backend: config.BackendFile, File: filepath.Join(t.TempDir(), "data", "db.json")}
	res, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Close()
	assert.Equal(t, "file", res.Store.Name())

	doc, err := res.Store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Patients)
}

func TestOpenRedisBackend(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	host, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)

	cfg := memoryConfig()
	cfg.Store.Backend = config.BackendRedis
	cfg.Redis = config.RedisConfig{Host: host, Port: port, Key: "prontuario:test"}
	res, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Close()
	require.NotNil(t, res.Redis)
	assert.Equal(t, "redis", res.Store.Name())

	require.NoError(t, res.Store.Save(context.Background(), &patient.Document{Patients: []patient.Patient{{ID: "1", Name: "Ana"}}}))
	assert.True(t, m.Exists("prontuario:test"))
}

func TestOpenRedisBackendUnreachable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Backend = config.BackendRedis
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1", Key: "k"}
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenRedisOptionalForOtherBackends(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1"}
	res, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Close()
	assert.Nil(t, res.Redis)
}

type downStore struct{}

func (downStore) Name() string { return "down" }
func (downStore) Load(ctx context.Context) (*patient.Document, error) {
	return nil, errors.New("storage unavailable")
}
func (downStore) Save(ctx context.Context, doc *patient.Document) error {
	return errors.New("storage unavailable")
}

func TestReadyReportsStorageFailure(t *testing.T) {
	r := NewRouter(memoryConfig(), &Resources{Store: downStore{}}, time.Now())
	w := get(r, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":false`)
}

func TestRouterRateLimit(t *testing.T) {
	cfg := memoryConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	res, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Close()
	r := NewRouter(cfg, res, time.Now())

	w := get(r, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = get(r, "/health", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORSConfig(t *testing.T) {
	c := corsConfig([]string{"http://a.example", "http://b.example"})
	assert.False(t, c.AllowAllOrigins)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.AllowOrigins)

	c = corsConfig(nil)
	assert.True(t, c.AllowAllOrigins)

	c = corsConfig(strings.Split("http://a.example,*", ","))
	assert.True(t, c.AllowAllOrigins)
	assert.Empty(t, c.AllowOrigins)
}
