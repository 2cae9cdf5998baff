// Package jobqueue publishes delayed HTTP callbacks into this service through
// Upstash QStash. Bus envelopes and competition sync jobs both ride on it.
package jobqueue

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InternalTokenHeader authenticates QStash callbacks into /v1/internal routes.
const InternalTokenHeader = "X-Internal-Job-Token"

const (
	defaultPublishTimeout = 10 * time.Second
	forwardPrefix         = "Upstash-Forward-"
	maxErrorBody          = 4096
)

var errTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

type QStashPublisher struct {
	client     *http.Client
	publishURL string
	targetURL  string
	token      string
	retries    int
	jobToken   string
	propagator propagation.TextMapPropagator
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

// NewQStashPublisher fails fast on a malformed QStash or callback base URL
// so a bad deploy surfaces at startup instead of on the first prediction.
func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	qstashBase, err := httpBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "QSTASH_BASE_URL")
	}
	targetBase, err := httpBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "QSTASH_TARGET_BASE_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPublishTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		publishURL: qstashBase + "/v2/publish/",
		targetURL:  targetBase,
		token:      strings.TrimSpace(cfg.Token),
		retries:    cfg.Retries,
		jobToken:   strings.TrimSpace(cfg.InternalJobToken),
		propagator: otel.GetTextMapPropagator(),
		logger:     logger.Named("qstash"),
		breaker:    resilience.NewNamedCircuitBreaker("qstash", cfg.CircuitBreaker),
	}, nil
}

func (p *QStashPublisher) Breaker() *resilience.CircuitBreaker {
	return p.breaker
}

// callback is one QStash publish: where it lands on this service and the
// Upstash-* headers that shape delivery.
type callback struct {
	path    string
	body    []byte
	delay   time.Duration
	dedupID string
}

func (c callback) delaySeconds() string {
	return strconv.Itoa(max(0, int(c.delay.Round(time.Second).Seconds()))) + "s"
}

// Enqueue asks QStash to POST payload to path on this service after delay.
// QStash drops duplicates of a non-empty deduplicationID.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("callback path is required")
	}
	if payload == nil {
		payload = struct{}{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrapf(err, "encode callback payload for %s", path)
	}
	cb := callback{path: path, body: body, delay: delay, dedupID: strings.TrimSpace(deduplicationID)}

	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash publish rejected", "path", path, "breaker_state", p.breaker.State())
		return crerr.Wrap(err, "qstash is temporarily unavailable")
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("dotmatchlens.callback.path", cb.path),
			attribute.String("dotmatchlens.callback.dedup_id", cb.dedupID),
			attribute.Int64("dotmatchlens.callback.delay_s", int64(cb.delay/time.Second)),
		)
	}

	err = p.publish(ctx, cb)
	p.breaker.Record(err, isTransient)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "qstash callback scheduled", "path", cb.path, "delay", cb.delaySeconds(), "dedup_id", cb.dedupID, "bytes", len(cb.body))
	return nil
}

func (p *QStashPublisher) publish(ctx context.Context, cb callback) error {
	req, err := p.newRequest(ctx, cb)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "publish %s", cb.path), errTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	callErr := crerr.Newf("publish %s: qstash status %d: %s", cb.path, resp.StatusCode, strings.TrimSpace(string(raw)))
	if retryableStatus(resp.StatusCode) {
		return crerr.Mark(callErr, errTransient)
	}
	return callErr
}

func (p *QStashPublisher) newRequest(ctx context.Context, cb callback) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL+p.targetURL+cb.path, bytes.NewReader(cb.body))
	if err != nil {
		return nil, crerr.Wrap(err, "build qstash request")
	}

	h := req.Header
	h.Set("Authorization", "Bearer "+p.token)
	h.Set("Content-Type", "application/json")
	h.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		h.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if cb.delay > 0 {
		h.Set("Upstash-Delay", cb.delaySeconds())
	}
	if cb.dedupID != "" {
		h.Set("Upstash-Deduplication-Id", cb.dedupID)
	}
	if p.jobToken != "" {
		h.Set(forwardPrefix+InternalTokenHeader, p.jobToken)
	}

	// The callback continues the publisher's trace.
	carrier := propagation.HeaderCarrier{}
	p.propagator.Inject(ctx, carrier)
	for _, key := range carrier.Keys() {
		h.Set(forwardPrefix+key, carrier.Get(key))
	}
	return req, nil
}

func httpBaseURL(raw string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(raw), "/")
	if candidate == "" {
		return "", crerr.New("base url is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q: scheme %q is not http(s)", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has no host", candidate)
	}
	return candidate, nil
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
