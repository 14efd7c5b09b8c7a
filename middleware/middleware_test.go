package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survivalboard/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(config.RateLimitConfig{Rate: 2, Burst: 3})
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "buckets are per client")

	now = now.Add(30 * time.Second)
	assert.False(t, rl.Allow("1.2.3.4"))

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	now = now.Add(time.Hour)
	rl.Cleanup(30 * time.Minute)
	assert.Empty(t, rl.visitors)
}

func TestRateLimiter_CleanupKeepsDrainedBuckets(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(config.RateLimitConfig{Rate: 1, Burst: 100})
	rl.now = func() time.Time { return now }

	for rl.Allow("1.2.3.4") {
	}
	assert.True(t, rl.Allow("5.6.7.8"))

	// both idle for 10 minutes: 5.6.7.8 is full again, 1.2.3.4 has 10 of 100 tokens back
	now = now.Add(10 * time.Minute)
	rl.Cleanup(10 * time.Minute)
	assert.NotContains(t, rl.visitors, "5.6.7.8")
	require.Contains(t, rl.visitors, "1.2.3.4")

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.Equal(t, 9, rl.visitors["1.2.3.4"].tokens)

	now = now.Add(100 * time.Minute)
	rl.Cleanup(10 * time.Minute)
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterMiddleware_Rejects(t *testing.T) {
	r := gin.New()
	r.POST("/scores", RateLimiterMiddleware(NewRateLimiter(config.RateLimitConfig{Rate: 1, Burst: 1})), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scores", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scores", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ResourceExhausted")
}

func adminRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/admin", AdminAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin"))
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	const secret = "test-secret"
	r := adminRouter(secret)

	token, err := NewAdminToken(secret, "ops", time.Hour)
	require.NoError(t, err)
	w := get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)

	forged, err := NewAdminToken("other-secret", "ops", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, forged).Code)

	expired, err := NewAdminToken(secret, "ops", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, expired).Code)

	player, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "player",
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, player).Code)
}

func TestAdminAuth_DisabledWithoutSecret(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, get(adminRouter(""), "anything").Code)

	_, err := NewAdminToken("", "ops", time.Hour)
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}
