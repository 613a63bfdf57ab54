package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/amore/clue/pkg/logger"
	"github.com/amore/clue/pkg/metrics"
)

const (
	defaultTimeout       = 120 * time.Second
	defaultLongTimeout   = 180 * time.Second
	defaultHealthTimeout = 5 * time.Second
	defaultMaxConcurrent = 4
	maxResponseBytes     = 32 << 20
)

// Response is a relayed upstream reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// UpstreamHealth is the probe result of one upstream.
type UpstreamHealth struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

// HealthReport lists every upstream probe.
type HealthReport struct {
	Upstreams []UpstreamHealth `json:"upstreams"`
	Healthy   int              `json:"healthy"`
}

// Client forwards requests to the configured upstreams.
type Client struct {
	upstreams     map[string]string
	http          *http.Client
	timeout       time.Duration
	longTimeout   time.Duration
	healthTimeout time.Duration
	maxConcurrent int
	logger        logger.Logger
	newSessionID  func() string
	sems          map[string]*semaphore.Weighted
}

// New returns a client for upstream base URLs keyed by upstream name.
func New(upstreams map[string]string, opts ...Option) (*Client, error) {
	c := &Client{
		upstreams:     make(map[string]string, len(upstreams)),
		http:          &http.Client{},
		timeout:       defaultTimeout,
		longTimeout:   defaultLongTimeout,
		healthTimeout: defaultHealthTimeout,
		maxConcurrent: defaultMaxConcurrent,
		logger:        logger.Get().Named("llm"),
		newSessionID:  uuid.NewString,
	}
	for name, base := range upstreams {
		c.upstreams[name] = strings.TrimRight(base, "/")
	}
	for _, r := range routes {
		if _, ok := c.upstreams[r.Upstream]; !ok {
			return nil, fmt.Errorf("%w: %s (route %s)", ErrUnknownUpstream, r.Upstream, r.Name)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sems = make(map[string]*semaphore.Weighted, len(c.upstreams))
	for name := range c.upstreams {
		c.sems[name] = semaphore.NewWeighted(int64(c.maxConcurrent))
	}
	return c, nil
}

// Upstreams returns a copy of the upstream base URLs.
func (c *Client) Upstreams() map[string]string {
	out := make(map[string]string, len(c.upstreams))
	for k, v := range c.upstreams {
		out[k] = v
	}
	return out
}

// TimeoutFor returns the timeout applied to route.
func (c *Client) TimeoutFor(r Route) time.Duration {
	if r.Long {
		return c.longTimeout
	}
	return c.timeout
}

// Forward posts body to the route's upstream and relays a 2xx reply.
// Any other outcome returns an *UpstreamError.
func (c *Client) Forward(ctx context.Context, r Route, body []byte) (*Response, error) {
	base, ok := c.upstreams[r.Upstream]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpstream, r.Upstream)
	}
	if r.Chat {
		var err error
		if body, err = c.ensureSessionID(body); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.TimeoutFor(r))
	defer cancel()

	start := time.Now()
	fail := func(outcome string, status int, err error) (*Response, error) {
		metrics.RecordUpstreamRequest(r.Upstream, r.Name, outcome, msSince(start))
		c.logger.Warn(ctx, "upstream call failed",
			logger.String("upstream", r.Upstream),
			logger.String("route", r.Name),
			logger.String("outcome", outcome),
			logger.Int("status", status),
			logger.Error(err))
		return nil, &UpstreamError{Upstream: r.Upstream, Route: r.Name, Outcome: outcome, StatusCode: status, Err: err}
	}

	sem := c.sems[r.Upstream]
	if err := sem.Acquire(ctx, 1); err != nil {
		return fail(metrics.OutcomeRateLimited, 0, err)
	}
	defer sem.Release(1)
	metrics.AddUpstreamInFlight(r.Upstream, 1)
	defer metrics.AddUpstreamInFlight(r.Upstream, -1)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+r.Path, bytes.NewReader(body))
	if err != nil {
		return fail(metrics.OutcomeTransport, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(classify(err), 0, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug(ctx, "failed to close upstream body", logger.Error(cerr))
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(classify(err), resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(metrics.OutcomeHTTPError, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
	}

	metrics.RecordUpstreamRequest(r.Upstream, r.Name, metrics.OutcomeOK, msSince(start))
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, nil
}

// ensureSessionID adds a generated sessionId to a JSON object body that lacks one.
func (c *Client) ensureSessionID(body []byte) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		if fields == nil {
			return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidBody)
		}
	}
	if raw, ok := fields["sessionId"]; ok {
		var id string
		if json.Unmarshal(raw, &id) != nil || id != "" {
			return body, nil
		}
	}
	id, err := json.Marshal(c.newSessionID())
	if err != nil {
		return nil, err
	}
	fields["sessionId"] = id
	return json.Marshal(fields)
}

// Health probes every upstream concurrently. A failed probe never cancels the others.
func (c *Client) Health(ctx context.Context) HealthReport {
	names := make([]string, 0, len(c.upstreams))
	for name := range c.upstreams {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]UpstreamHealth, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = c.probe(ctx, name, c.upstreams[name])
			return nil
		})
	}
	_ = g.Wait()

	report := HealthReport{Upstreams: results}
	for _, r := range results {
		if r.Status == "ok" {
			report.Healthy++
		}
	}
	return report
}

func (c *Client) probe(ctx context.Context, name, base string) UpstreamHealth {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	h := UpstreamHealth{Name: name, URL: base, Status: "error"}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+HealthPath, nil)
	if err != nil {
		h.Error = err.Error()
		h.LatencyMs = time.Since(start).Milliseconds()
		return h
	}
	resp, err := c.http.Do(req)
	if err != nil {
		h.Error = err.Error()
		h.LatencyMs = time.Since(start).Milliseconds()
		return h
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	h.LatencyMs = time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.Error = fmt.Sprintf("status %d", resp.StatusCode)
		return h
	}
	h.Status = "ok"
	return h
}

func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeTransport
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
