package probe

import (
	"context"
	"time"

	"github.com/mittwald/mittcheck/pkg/health"
)

// Probe is implemented by every probe kind. Exec returns nil when the
// checked service is reachable and must give up once ctx is done.
type Probe interface {
	Exec(ctx context.Context) error
}

func asHealthProbe(p Probe) health.Probe {
	return health.FromError(p.Exec)
}

type ProbeResult struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Status   health.Status `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration string        `json:"duration"`
}

type StatusResponse struct {
	ID        string         `json:"id"`
	Status    health.Status  `json:"status"`
	StartedAt time.Time      `json:"startedAt"`
	Duration  string         `json:"duration"`
	Probes    []*ProbeResult `json:"probes"`
}

func NewProbeResult(name string, result health.Result) *ProbeResult {
	return &ProbeResult{
		Name:     name,
		OK:       result.OK(),
		Status:   result.Status,
		Message:  result.Reason,
		Duration: result.Duration.String(),
	}
}

func NewStatusResponse(report *health.Report) *StatusResponse {
	response := StatusResponse{
		ID:        report.ID,
		Status:    report.Status,
		StartedAt: report.StartedAt,
		Duration:  report.Duration.String(),
		Probes:    make([]*ProbeResult, 0, len(report.Results)),
	}

	for i := range report.Results {
		response.Probes = append(response.Probes, NewProbeResult(report.Results[i].Name, report.Results[i].Result))
	}

	return &response
}

// timeoutFromContext returns the time left until the deadline of ctx, or
// fallback if ctx has none. It is used for clients that only accept fixed
// timeouts.
func timeoutFromContext(ctx context.Context, fallback time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback
	}

	if left := time.Until(deadline); left > 0 {
		return left
	}
	return time.Millisecond
}
