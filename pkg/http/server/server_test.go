package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(RequestLogger(zaptest.NewLogger(t)), gin.Recovery())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func TestRequestLogger(t *testing.T) {
	r := newTestRouter(t)

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-42", w.Body.String())
	})

	t.Run("panics become 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCORSHandler(t *testing.T) {
	h := corsHandler([]string{"https://dash.example.com"}, newTestRouter(t))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestNewInvalidPort(t *testing.T) {
	_, err := New(WithPort(0))
	assert.Error(t, err)
}

func TestServerLifecycle(t *testing.T) {
	srv, err := New(WithPort(58091), WithLogger(zaptest.NewLogger(t)), WithAllowedOrigins("*"))
	require.NoError(t, err)

	srv.Router().GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	srv.Start()

	resp, err := http.Get("http://127.0.0.1:58091/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
