package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRequestIDEchoed(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/ready", nil, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDMinted(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/ready", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/ready", nil, map[string]string{"Origin": "http://frontend.test"})
	assert.Equal(t, "http://frontend.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
