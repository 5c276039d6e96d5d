package cli

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

func (api *APIClient) buildHTTPClientAndURL() (*http.Client, *url.URL, error) {
	u, err := url.Parse(api.apiAddress)
	if err != nil {
		return nil, nil, err
	}
	if u.Scheme != "unix" {
		return &http.Client{Timeout: api.timeout}, u, nil
	}

	socketPath := u.Path
	u.Scheme = "http"
	u.Host = "unix"
	u.Path = ""
	return &http.Client{
		Timeout: api.timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
	}, u, nil
}

func (api *APIClient) buildWebsocketURL() (*websocket.Dialer, *url.URL, error) {
	u, err := url.Parse(api.apiAddress)
	if err != nil {
		return nil, nil, err
	}
	if u.Scheme != "unix" {
		if u.Scheme == "https" {
			u.Scheme = "wss"
		} else {
			u.Scheme = "ws"
		}
		return websocket.DefaultDialer, u, nil
	}
	socketPath := u.Path

	dialer := &websocket.Dialer{
		NetDial: func(network, addr string) (net.Conn, error) {
			return net.Dial("unix", socketPath)
		},
	}

	u.Scheme = "ws"
	u.Host = "unix"
	u.Path = ""
	return dialer, u, nil
}
