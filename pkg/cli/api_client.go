package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mittwald/mittcheck/pkg/probe"
)

const defaultClientTimeout = 30 * time.Second

// APIClient talks to the probe server of a running `mittcheck serve`. The
// address is either an HTTP URL or "unix:///path/to/socket".
type APIClient struct {
	apiAddress string
	timeout    time.Duration
}

func NewAPIClient(apiAddress string) *APIClient {
	return &APIClient{
		apiAddress: apiAddress,
		timeout:    defaultClientTimeout,
	}
}

func (api *APIClient) Status() *TypedAPIResponse[probe.StatusResponse] {
	client, u, err := api.buildHTTPClientAndURL()
	if err != nil {
		return &TypedAPIResponse[probe.StatusResponse]{Error: err}
	}

	u.Path = "/health"
	return NewTypedAPIResponse(probe.StatusResponse{})(client.Get(u.String()))
}

func (api *APIClient) Probe(name string) *TypedAPIResponse[probe.ProbeResult] {
	client, u, err := api.buildHTTPClientAndURL()
	if err != nil {
		return &TypedAPIResponse[probe.ProbeResult]{Error: err}
	}

	u.Path = "/v1/probes/" + url.PathEscape(name)
	return NewTypedAPIResponse(probe.ProbeResult{})(client.Get(u.String()))
}

// Watch streams a report every interval. Every received report is passed to
// render before it is printed.
func (api *APIClient) Watch(interval time.Duration, render func(*probe.StatusResponse) (string, error)) APIResponse {
	dialer, u, err := api.buildWebsocketURL()
	if err != nil {
		return &TypedAPIResponse[struct{}]{Error: err}
	}

	u.Path = "/v1/watch"
	if interval > 0 {
		q := u.Query()
		q.Set("interval", interval.String())
		u.RawQuery = q.Encode()
	}

	handler := func(ctx context.Context, conn *websocket.Conn, msgChan chan string, errChan chan error) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				select {
				case errChan <- err:
				case <-ctx.Done():
				}
				return
			}

			var status probe.StatusResponse
			if err := json.Unmarshal(msg, &status); err != nil {
				errChan <- fmt.Errorf("failed to parse report: %w", err)
				return
			}

			out, err := render(&status)
			if err != nil {
				errChan <- err
				return
			}

			select {
			case msgChan <- out:
			case <-ctx.Done():
				return
			}
		}
	}

	return NewStreamingAPIResponse(u, dialer, handler)
}
