package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing() CheckFunc {
	return func(_ context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestLiveEndpoint_AllPassing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("check1", time.Second, passing())
	h.AddLivenessCheck("check2", time.Second, passing())

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}

func TestLiveEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failing("connection refused"))

	// Probes start healthy; drive the probe past the failure threshold.
	ctx := context.Background()
	for range failureThreshold {
		h.liveness[0].run(ctx)
	}

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestLiveEndpoint_FailureBelowThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, failing("temporary"))

	ctx := context.Background()
	for range failureThreshold - 1 {
		h.liveness[0].run(ctx)
	}

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyEndpoint_ReadyAndPassing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())
	// Manual gate stays closed.

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body.Checks, "_readiness")
}

func TestReadyEndpoint_SetReadyFalse(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())
	h.SetReady(true)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	h.SetReady(false)

	w2 := httptest.NewRecorder()
	h.ReadyEndpoint(w2, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w2.Code)
}

func TestReadyEndpoint_MultipleChecksOneFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())
	h.AddReadinessCheck("cache", time.Second, failing("cache miss"))
	h.SetReady(true)

	ctx := context.Background()
	for range failureThreshold {
		h.readiness[1].run(ctx)
	}

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body.Checks, "cache")
	assert.NotContains(t, body.Checks, "postgres")
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())

	assert.False(t, h.IsReady(), "not ready before SetReady")

	h.SetReady(true)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestStopIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, passing())

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestProbeRecovery(t *testing.T) {
	down := true
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	})
	p := h.liveness[0]
	ctx := context.Background()

	for range failureThreshold {
		p.run(ctx)
	}
	assert.False(t, p.healthy.Load())

	down = false
	for range successThreshold {
		p.run(ctx)
	}
	assert.True(t, p.healthy.Load(), "probe should recover after consecutive passes")
}

func TestProbeLastError(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failing("timeout"))
	p := h.liveness[0]

	assert.Nil(t, p.lastError())

	p.run(context.Background())
	assert.EqualError(t, p.lastError(), "timeout")
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("liveness", time.Second, failing("err"))
	h.AddReadinessCheck("readiness", time.Second, passing())
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()

				w := httptest.NewRecorder()
				h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

				w = httptest.NewRecorder()
				h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
