package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyEndpoint_NotReadyByDefault(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp["status"])
}

func TestReadyEndpoint_AfterSetReady(t *testing.T) {
	h := New()
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, h.IsReady())
}

func TestLiveEndpoint_HealthyUntilThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always-fails", time.Second, func(_ context.Context) error {
		return errors.New("broken")
	})

	// Checks start healthy and only flip after consecutive failures.
	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheck_FlipsAfterConsecutiveFailures(t *testing.T) {
	c := newCheck("db", time.Second, func(_ context.Context) error {
		return errors.New("connection refused")
	})

	for range defaultFailureThreshold {
		c.run(context.Background())
	}

	msg, failed := c.failure()
	require.True(t, failed)
	assert.Contains(t, msg, "connection refused")
}

func TestCheck_RecoversAfterSuccess(t *testing.T) {
	var fail bool
	c := newCheck("db", time.Second, func(_ context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	})

	fail = true
	for range defaultFailureThreshold {
		c.run(context.Background())
	}
	_, failed := c.failure()
	require.True(t, failed)

	fail = false
	c.run(context.Background())
	_, failed = c.failure()
	assert.False(t, failed)
}

func TestIsReady_FailingReadinessCheckBlocks(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("db", time.Second, func(_ context.Context) error {
		return errors.New("down")
	})

	// Force the check unhealthy.
	h.mu.RLock()
	c := h.readiness[0]
	h.mu.RUnlock()
	for range defaultFailureThreshold {
		c.run(context.Background())
	}

	assert.False(t, h.IsReady())
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(_ context.Context) error { return f.err }

func TestPingCheck(t *testing.T) {
	assert.NoError(t, PingCheck(fakePinger{})(context.Background()))
	assert.Error(t, PingCheck(fakePinger{err: errors.New("refused")})(context.Background()))
}
