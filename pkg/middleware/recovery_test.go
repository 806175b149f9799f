package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prontuario/prontuario/backend/go-services/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestJSONRecovery(t *testing.T) {
	r := gin.New()
	r.Use(JSONRecovery())
	r.GET("/boom", func(c *gin.Context) { panic("disk on fire") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"disk on fire"}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetCore(core)
	defer logger.SetFormat("json")
	logger.Init("info")

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/patients/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/patients/42", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "/api/patients/:id", fields["path"])
	require.EqualValues(t, 404, fields["status"])
}
