package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout = 5 * time.Second

	reasonDisabled  = "disabled by configuration"
	reasonCancelled = "cancelled"
)

// Options are fixed at construction time of an Aggregator.
type Options struct {
	// Parallelism is the number of probes executed at the same time. Values
	// below 2 run all probes sequentially.
	Parallelism int

	// Disabled lists probe names that are reported as skipped without being
	// executed.
	Disabled []string
}

type registration struct {
	name  string
	probe Probe
}

// Aggregator runs a set of named probes and combines their results into a
// Report.
type Aggregator struct {
	parallelism int
	disabled    map[string]struct{}

	mu     sync.RWMutex
	probes []registration
	names  map[string]int
}

func NewAggregator(opts Options) *Aggregator {
	disabled := make(map[string]struct{}, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = struct{}{}
	}

	return &Aggregator{
		parallelism: opts.Parallelism,
		disabled:    disabled,
		names:       make(map[string]int),
	}
}

func (a *Aggregator) Register(name string, probe Probe) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidProbe)
	}
	if probe == nil {
		return fmt.Errorf("%w: probe %q is nil", ErrInvalidProbe, name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.names[name]; ok {
		return &DuplicateNameError{Name: name}
	}

	a.names[name] = len(a.probes)
	a.probes = append(a.probes, registration{name: name, probe: probe})

	return nil
}

// Names returns the registered probe names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.probes))
	for i := range a.probes {
		names[i] = a.probes[i].name
	}
	return names
}

func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.probes)
}

// Run executes a single named probe.
func (a *Aggregator) Run(ctx context.Context, name string, timeout time.Duration) (Result, error) {
	a.mu.RLock()
	i, ok := a.names[name]
	var reg registration
	if ok {
		reg = a.probes[i]
	}
	a.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrProbeNotFound, name)
	}

	return a.run(ctx, reg, timeout), nil
}

// RunAll executes every registered probe, each bounded by timeout, and
// returns the combined report. It never returns an error; failing, panicking
// and timed out probes are recorded as unhealthy.
func (a *Aggregator) RunAll(ctx context.Context, timeout time.Duration) *Report {
	a.mu.RLock()
	probes := make([]registration, len(a.probes))
	copy(probes, a.probes)
	a.mu.RUnlock()

	report := &Report{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Results:   make([]NamedResult, len(probes)),
	}

	if a.parallelism < 2 {
		for i := range probes {
			report.Results[i] = NamedResult{Name: probes[i].name, Result: a.run(ctx, probes[i], timeout)}
		}
	} else {
		g := errgroup.Group{}
		g.SetLimit(a.parallelism)

		for i := range probes {
			i := i
			g.Go(func() error {
				report.Results[i] = NamedResult{Name: probes[i].name, Result: a.run(ctx, probes[i], timeout)}
				return nil
			})
		}

		_ = g.Wait()
	}

	report.Duration = time.Since(report.StartedAt)
	report.Status = Aggregate(report.Results)

	log.WithFields(log.Fields{"kind": "report", "id": report.ID, "status": report.Status, "probes": len(probes), "duration": report.Duration}).Debug()

	return report
}

func (a *Aggregator) run(ctx context.Context, reg registration, timeout time.Duration) Result {
	l := log.WithFields(log.Fields{"kind": "probe", "name": reg.name})

	if _, ok := a.disabled[reg.name]; ok {
		l.WithField("status", StatusSkipped).Debug(reasonDisabled)
		return Skipped(reasonDisabled)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Unhealthy(fmt.Sprintf("panic: %v", r))
			}
		}()
		done <- reg.probe.Check(probeCtx)
	}()

	var result Result
	select {
	case result = <-done:
		// a probe that gives up on its own context is reported like any other
		// timeout so the reason does not depend on scheduling
		if result.Status == StatusUnhealthy && probeCtx.Err() != nil {
			result = a.interrupted(ctx, probeCtx, timeout)
		}
	case <-probeCtx.Done():
		result = a.interrupted(ctx, probeCtx, timeout)
	}
	result.Duration = time.Since(start)

	switch result.Status {
	case StatusUnhealthy:
		l.WithFields(log.Fields{"status": result.Status, "reason": result.Reason}).Warn("probe failed")
	default:
		l.WithFields(log.Fields{"status": result.Status, "duration": result.Duration}).Debug()
	}

	return result
}

func (a *Aggregator) interrupted(parent, probeCtx context.Context, timeout time.Duration) Result {
	if parent.Err() != nil && !errors.Is(parent.Err(), context.DeadlineExceeded) {
		return Unhealthy(reasonCancelled)
	}
	if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
		return Unhealthy(fmt.Sprintf("timed out after %s", timeout))
	}
	return Unhealthy(reasonCancelled)
}
