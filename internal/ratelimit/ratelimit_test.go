package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, rate string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mw, err := Middleware(rate, nil)
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/viewers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewerCount": 1})
	})

	return router
}

func get(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/viewers", nil)
	req.RemoteAddr = ip + ":51234"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestMiddleware_LimitsPerClient(t *testing.T) {
	router := newRouter(t, "2-M")

	assert.Equal(t, http.StatusOK, get(router, "198.51.100.1").Code)

	second := get(router, "198.51.100.1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "2", second.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := get(router, "198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &body))
	assert.Equal(t, "too_many_requests", body.Error)

	// a different client has its own budget
	assert.Equal(t, http.StatusOK, get(router, "198.51.100.2").Code)
}

func TestMiddleware_InvalidRate(t *testing.T) {
	_, err := Middleware("lots-per-second", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rate limit")
}
