package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Status int

const (
	StatusHealthy Status = iota
	StatusUnhealthy
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "healthy":
		*s = StatusHealthy
	case "unhealthy":
		*s = StatusUnhealthy
	case "skipped":
		*s = StatusSkipped
	default:
		return fmt.Errorf("unknown health status %q", string(text))
	}
	return nil
}

// Result is the outcome of a single probe execution. Reason is empty for
// healthy results.
type Result struct {
	Status   Status
	Reason   string
	Duration time.Duration
}

func Healthy() Result {
	return Result{Status: StatusHealthy}
}

func Unhealthy(reason string) Result {
	return Result{Status: StatusUnhealthy, Reason: reason}
}

func Skipped(reason string) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}

func (r Result) OK() bool {
	return r.Status != StatusUnhealthy
}

// Probe is a single health check unit. Implementations must honour the
// deadline of the passed context.
type Probe interface {
	Check(ctx context.Context) Result
}

type ProbeFunc func(ctx context.Context) Result

func (f ProbeFunc) Check(ctx context.Context) Result {
	return f(ctx)
}

// SkipError can be returned from an error based probe to report the probe as
// skipped instead of unhealthy.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// FromError adapts an error returning check into a Probe. A nil error is
// healthy, a SkipError is skipped and everything else is unhealthy.
func FromError(fn func(ctx context.Context) error) Probe {
	return ProbeFunc(func(ctx context.Context) Result {
		err := fn(ctx)
		if err == nil {
			return Healthy()
		}

		var skip *SkipError
		if errors.As(err, &skip) {
			return Skipped(skip.Reason)
		}

		return Unhealthy(err.Error())
	})
}

type NamedResult struct {
	Name string
	Result
}

// Report is the result of running all registered probes once. Results are
// kept in registration order.
type Report struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Status    Status
	Results   []NamedResult
}

func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Result looks up the result of the named probe.
func (r *Report) Result(name string) (Result, bool) {
	for i := range r.Results {
		if r.Results[i].Name == name {
			return r.Results[i].Result, true
		}
	}
	return Result{}, false
}

// Aggregate returns StatusUnhealthy if any result is unhealthy and
// StatusHealthy otherwise. Skipped results never degrade the status.
func Aggregate(results []NamedResult) Status {
	for i := range results {
		if results[i].Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}
