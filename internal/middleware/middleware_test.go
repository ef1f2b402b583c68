package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/javajoker/localshop-backend/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(rate.Limit(0.001), 2).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestDisabledRateLimitersPassThrough(t *testing.T) {
	limiters := NewRateLimiters(config.RateLimitConfig{})

	r := gin.New()
	r.Use(limiters.General, limiters.Auth, limiters.Checkout)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestResolveLanguage(t *testing.T) {
	assert.Equal(t, "zh_CN", resolveLanguage("zh-CN,zh;q=0.9,en;q=0.8", "en"))
	assert.Equal(t, "en", resolveLanguage("en-US", "zh_CN"))
	assert.Equal(t, "en", resolveLanguage("", "en"))
	assert.Equal(t, "en", resolveLanguage("fr-FR", "en"))
}

func TestAuthRequiredRejectsMissingAndMalformedTokens(t *testing.T) {
	r := gin.New()
	r.Use(I18nMiddleware("en"), AuthRequired())
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), `"code":"UNAUTHENTICATED"`)
	}
}

func TestExtractResource(t *testing.T) {
	assert.Equal(t, "users", extractResourceType("/api/v1/admin/users/5f0c7a9e-3b7c-4d55-9d0c-0a4b9d7d2f10"))
	assert.Equal(t, "orders", extractResourceType("/api/v1/orders"))

	id := extractResourceID("/api/v1/admin/users/5f0c7a9e-3b7c-4d55-9d0c-0a4b9d7d2f10")
	if assert.NotNil(t, id) {
		assert.Equal(t, "5f0c7a9e-3b7c-4d55-9d0c-0a4b9d7d2f10", id.String())
	}
	assert.Nil(t, extractResourceID("/api/v1/products"))
}
