package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
)

type httpProbe struct {
	method  string
	url     url.URL
	payload string
	headers map[string]string
	timeout time.Duration
	status  *regexp.Regexp
}

func NewHttpProbe(cfg *config.HTTP) (*httpProbe, error) {
	method := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Method), "GET", "method", "http")
	scheme := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Scheme), "http", "scheme", "http")
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.ResolveEnv(cfg.Port)
	timeoutStr := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Timeout), "5s", "timeout", "http")
	expectStatus := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.ExpectStatus), `(1|2|3)\d\d\s`, "expectStatus", "http")

	host := hostname
	if port != "" {
		host = net.JoinHostPort(hostname, port)
	}

	status, err := regexp.Compile(expectStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP status line regexp: %w", err)
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration: %w", err)
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = helper.ResolveEnv(v)
	}

	return &httpProbe{
		method: strings.ToUpper(method),
		url: url.URL{
			Scheme: scheme,
			Host:   host,
			Path:   helper.ResolveEnv(cfg.Path),
		},
		payload: cfg.Payload,
		headers: headers,
		timeout: timeout,
		status:  status,
	}, nil
}

func (h *httpProbe) Exec(ctx context.Context) error {
	urlStr := h.url.String()
	client := &http.Client{
		Timeout: h.timeout,
	}

	req, err := http.NewRequestWithContext(ctx, h.method, urlStr, strings.NewReader(h.payload))
	if err != nil {
		return err
	}

	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if !h.status.MatchString(res.Status) {
		return fmt.Errorf("http service %q returned status %q", urlStr, res.Status)
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "http", "status": "alive", "host": urlStr}).Debug()
	return nil
}
