package connection

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// HealthChecker reports whether the table server is reachable.
type HealthChecker interface {
	Check(ctx context.Context) bool
}

// HealthProbe checks a liveness endpoint over plain HTTP.
type HealthProbe struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *log.Logger
}

// NewHealthProbe creates a probe for url (e.g. "http://localhost:3000/health").
func NewHealthProbe(url string, timeout time.Duration, logger *log.Logger) *HealthProbe {
	return &HealthProbe{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.WithPrefix("health"),
	}
}

// Check returns true only for a 2xx response. Any transport failure or other
// status counts as unhealthy.
func (p *HealthProbe) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Error("Failed to build health request", "url", p.url, "error", err)
		return false
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("Health check failed", "url", p.url, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	healthy := resp.StatusCode >= 200 && resp.StatusCode < 300
	p.logger.Debug("Health check", "url", p.url, "status", resp.StatusCode, "healthy", healthy)
	return healthy
}
