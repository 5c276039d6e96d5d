package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/mittwald/mittcheck/pkg/metrics"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultWatchInterval = 5 * time.Second
	minWatchInterval     = time.Second
)

type HandlerOptions struct {
	// Timeout bounds every single probe execution.
	Timeout     time.Duration
	Parallelism int
	Disabled    []string
	Metrics     *metrics.Recorder
}

type Handler struct {
	aggregator *health.Aggregator
	waiter     *health.Aggregator
	timeout    time.Duration
	metrics    *metrics.Recorder
	upgrader   websocket.Upgrader

	waitInterval time.Duration
}

func NewProbeHandler(cfg *config.Config, opts HandlerOptions) (*Handler, error) {
	healthOpts := health.Options{Parallelism: opts.Parallelism, Disabled: opts.Disabled}

	aggregator, err := NewAggregator(cfg, healthOpts)
	if err != nil {
		return nil, err
	}

	waiter, err := newWaitAggregator(cfg, healthOpts)
	if err != nil {
		return nil, err
	}

	return newHandler(aggregator, waiter, opts), nil
}

func newHandler(aggregator, waiter *health.Aggregator, opts HandlerOptions) *Handler {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = health.DefaultTimeout
	}

	return &Handler{
		aggregator:   aggregator,
		waiter:       waiter,
		timeout:      timeout,
		metrics:      opts.Metrics,
		waitInterval: time.Second,
	}
}

// Wait blocks until all probes marked with `wait = true` are healthy or ctx
// is done.
func (h *Handler) Wait(ctx context.Context) error {
	if h.waiter.Len() == 0 {
		return nil
	}

	log.Info("waiting for probe readiness")

	ticker := time.NewTicker(h.waitInterval)
	defer ticker.Stop()

	for {
		report := h.waiter.RunAll(ctx, h.timeout)
		if report.Healthy() {
			log.Info("all probes are ready")
			return nil
		}

		for _, r := range report.Results {
			if !r.OK() {
				log.WithFields(log.Fields{"kind": "probe", "name": r.Name, "err": r.Reason}).Warn("not ready yet")
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return pkgerrors.Wrap(ctx.Err(), "readiness interrupted")
		}
	}
}

func (h *Handler) Router() *mux.Router {
	m := mux.NewRouter()
	m.Path("/health").Methods(http.MethodGet).HandlerFunc(h.HandleStatus)
	m.Path("/status").Methods(http.MethodGet).HandlerFunc(h.HandleStatus)
	m.Path("/v1/probes/{probe}").Methods(http.MethodGet).HandlerFunc(h.HandleProbe)
	m.Path("/v1/watch").Methods(http.MethodGet).HandlerFunc(h.HandleWatch)
	if h.metrics != nil {
		m.Path("/metrics").Handler(h.metrics.Handler())
	}
	return m
}

func (h *Handler) run(ctx context.Context) *health.Report {
	report := h.aggregator.RunAll(ctx, h.timeout)
	if h.metrics != nil {
		h.metrics.Observe(report)
	}
	return report
}

func (h *Handler) HandleStatus(res http.ResponseWriter, req *http.Request) {
	report := h.run(req.Context())

	if !report.Healthy() {
		log.WithFields(log.Fields{"kind": "report", "id": report.ID}).Warn("health check failed")
	}

	writeJSON(res, statusCode(report.Status), NewStatusResponse(report))
}

func (h *Handler) HandleProbe(res http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["probe"]

	result, err := h.aggregator.Run(req.Context(), name, h.timeout)
	if errors.Is(err, health.ErrProbeNotFound) {
		http.Error(res, err.Error(), http.StatusNotFound)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveResult(name, result)
	}

	writeJSON(res, statusCode(result.Status), NewProbeResult(name, result))
}

func (h *Handler) HandleWatch(res http.ResponseWriter, req *http.Request) {
	interval := defaultWatchInterval
	if raw := req.FormValue("interval"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			http.Error(res, "invalid interval: "+err.Error(), http.StatusBadRequest)
			return
		}
		interval = parsed
	}
	if interval < minWatchInterval {
		interval = minWatchInterval
	}

	conn, err := h.upgrader.Upgrade(res, req, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade watch connection")
		return
	}
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle client disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report := h.run(streamCtx)
		if streamCtx.Err() != nil {
			return
		}

		if err := conn.WriteJSON(NewStatusResponse(report)); err != nil {
			log.WithError(err).Debug("watch client went away")
			return
		}

		select {
		case <-ticker.C:
		case <-streamCtx.Done():
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		}
	}
}

func statusCode(status health.Status) int {
	if status == health.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(res http.ResponseWriter, code int, body interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(code)
	_ = json.NewEncoder(res).Encode(body)
}

// RunProbeServer serves the probe endpoints on listenAddr until ctx is done.
// listenAddr is either a TCP address or "unix:///path/to/socket".
func RunProbeServer(ctx context.Context, ph *Handler, listenAddr string) error {
	server := http.Server{
		Handler: ph.Router(),
	}

	listener, err := listen(listenAddr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down probe server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Infof("probe server listens on %s", listener.Addr().String())

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func listen(addr string) (net.Listener, error) {
	socketParts := strings.SplitN(addr, "unix://", 2)
	if len(socketParts) <= 1 {
		return net.Listen("tcp", addr)
	}

	socketFile := socketParts[1]
	if err := os.MkdirAll(path.Dir(socketFile), 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to prepare folder for socket-file")
	}
	if err := os.Remove(socketFile); err != nil && !os.IsNotExist(err) {
		return nil, pkgerrors.Wrapf(err, "failed to remove stale socket-file %q", socketFile)
	}

	return net.Listen("unix", socketFile)
}
