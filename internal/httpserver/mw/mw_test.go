package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/portal/internal/logger"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"portal.domain.ext", "portal.domain.ext", true},
		{"portal.domain.ext:8080", "portal.domain.ext", true},
		{"10.0.0.2:8080", "10.0.0.2:8080", true},
		{"10.0.0.2:9090", "10.0.0.2:8080", false},
		{"a.domain.ext", "*.domain.ext", true},
		{"a.b.domain.ext:443", "*.domain.ext", true},
		{"domain.ext", "*.domain.ext", false},
		{"evildomain.ext", "*.domain.ext", false},
		{"other.ext", "portal.domain.ext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchHost(tt.host, tt.pattern), "%s vs %s", tt.host, tt.pattern)
	}
}

func TestEnforceHostCaseInsensitive(t *testing.T) {
	h := EnforceHost([]string{"Portal.Domain.Ext"}, logger.Nop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "http://PORTAL.domain.ext/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitRefills(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             1,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler())

	call := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("192.0.2.1:1000").Code)

	rec := call("192.0.2.1:1001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), tooManyAttempts)

	assert.Equal(t, http.StatusOK, call("192.0.2.2:1000").Code, "buckets are per client IP")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("192.0.2.1:1002").Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
