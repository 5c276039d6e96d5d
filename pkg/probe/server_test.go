package probe

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/mittwald/mittcheck/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, probes map[string]error, opts HandlerOptions) *Handler {
	t.Helper()

	agg := health.NewAggregator(health.Options{})
	for _, name := range []string{"mail", "db", "custom"} {
		err, ok := probes[name]
		if !ok {
			continue
		}
		require.NoError(t, agg.Register(name, health.FromError(func(context.Context) error {
			return err
		})))
	}

	return newHandler(agg, health.NewAggregator(health.Options{}), opts)
}

func get(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleStatusHealthy(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil, "db": nil}, HandlerOptions{})

	rec := get(t, h, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, health.StatusHealthy, body.Status)
	require.Len(t, body.Probes, 2)
	assert.Equal(t, "mail", body.Probes[0].Name)
	assert.True(t, body.Probes[0].OK)
	assert.Equal(t, "db", body.Probes[1].Name)
}

func TestHandleStatusUnhealthy(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil, "db": assert.AnError}, HandlerOptions{})

	for _, path := range []string{"/health", "/status"} {
		rec := get(t, h, path)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)

		var body StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, health.StatusUnhealthy, body.Status)
		assert.Equal(t, health.StatusUnhealthy, body.Probes[1].Status)
		assert.Equal(t, assert.AnError.Error(), body.Probes[1].Message)
	}
}

func TestHandleStatusSkippedIsHealthy(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil, "custom": health.Skip("not enabled")}, HandlerOptions{})

	rec := get(t, h, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"skipped"`)
}

func TestHandleProbe(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil, "db": assert.AnError}, HandlerOptions{})

	rec := get(t, h, "/v1/probes/mail")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, h, "/v1/probes/db")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body ProbeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "db", body.Name)
	assert.False(t, body.OK)

	rec = get(t, h, "/v1/probes/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil}, HandlerOptions{Metrics: metrics.NewRecorder()})

	get(t, h, "/health")
	rec := get(t, h, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mittcheck_probe_healthy{probe="mail"} 1`)
	assert.Contains(t, rec.Body.String(), `mittcheck_reports_total{status="healthy"} 1`)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil}, HandlerOptions{})

	rec := get(t, h, "/metrics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaitUntilReady(t *testing.T) {
	var calls int32
	waiter := health.NewAggregator(health.Options{})
	require.NoError(t, waiter.Register("db", health.FromError(func(context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return assert.AnError
		}
		return nil
	})))

	h := newHandler(health.NewAggregator(health.Options{}), waiter, HandlerOptions{})
	h.waitInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, h.Wait(ctx))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWaitInterrupted(t *testing.T) {
	waiter := health.NewAggregator(health.Options{})
	require.NoError(t, waiter.Register("db", health.FromError(func(context.Context) error {
		return assert.AnError
	})))

	h := newHandler(health.NewAggregator(health.Options{}), waiter, HandlerOptions{})
	h.waitInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorContains(t, h.Wait(ctx), "readiness interrupted")
}

func TestWatchStreamsReports(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil}, HandlerOptions{})
	server := httptest.NewServer(h.Router())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/watch?interval=1s"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first StatusResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, health.StatusHealthy, first.Status)
	require.Len(t, first.Probes, 1)

	var second StatusResponse
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(&second))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestWatchInvalidInterval(t *testing.T) {
	h := newTestHandler(t, map[string]error{"mail": nil}, HandlerOptions{})

	rec := get(t, h, "/v1/watch?interval=often")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunProbeServerOnUnixSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "run", "mittcheck.sock")
	h := newTestHandler(t, map[string]error{"mail": nil}, HandlerOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunProbeServer(ctx, h, "unix://"+socket)
	}()

	client := http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return (&net.Dialer{}).DialContext(ctx, "unix", socket)
			},
		},
	}

	var res *http.Response
	require.Eventually(t, func() bool {
		var err error
		res, err = client.Get("http://unix/health")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"mail"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("probe server did not shut down")
	}
}
