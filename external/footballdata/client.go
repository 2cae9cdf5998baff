package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/dotmatchlens/internal/platform/logging"
	"github.com/riskibarqy/dotmatchlens/internal/platform/resilience"
	"github.com/riskibarqy/dotmatchlens/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL       = "https://api.football-data.org/v4"
	defaultRatePerMinute = 10
	maxResponseBytes     = 4 << 20
	authHeader           = "X-Auth-Token"
)

var errTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient         *http.Client
	BaseURL            string
	Token              string
	Timeout            time.Duration
	MaxRetries         int
	RetryBackoff       time.Duration
	RateLimitPerMinute int
	Logger             *logging.Logger
	CircuitBreaker     resilience.CircuitBreakerConfig
}

// Client reads competitions from the football-data.org v4 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	backoff    resilience.Backoff
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = defaultRatePerMinute
	}
	// One request per interval, no burst.
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)

	backoff := resilience.LinearBackoff(time.Second)
	if cfg.RetryBackoff > 0 {
		backoff = resilience.LinearBackoff(cfg.RetryBackoff)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		limiter:    limiter,
		logger:     logger,
		breaker:    resilience.NewNamedCircuitBreaker("football-data", cfg.CircuitBreaker),
	}
}

// Breaker exposes the client's circuit breaker for readiness checks. It may be nil.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// GetCompetition loads a competition and its seasons by code, e.g. "PL".
func (c *Client) GetCompetition(ctx context.Context, code string) (usecase.ExternalCompetition, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return usecase.ExternalCompetition{}, fmt.Errorf("%w: competition code is required", usecase.ErrInvalidInput)
	}

	raw, err := c.get(ctx, "/competitions/"+code)
	if err != nil {
		return usecase.ExternalCompetition{}, err
	}

	out, err := parseCompetition(raw)
	if err != nil {
		return usecase.ExternalCompetition{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return nil, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, path)
		c.breaker.Record(reqErr, isTransient)
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, crerr.Newf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path

	var body []byte
	err := resilience.Retry(ctx, c.maxRetries, c.backoff, func(attempt int) (bool, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, crerr.Wrap(err, "wait for rate limiter")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return false, crerr.Wrap(err, "build request")
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set(authHeader, c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return true, crerr.Mark(crerr.Wrapf(err, "send request attempt=%d", attempt), errTransient)
		}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return true, crerr.Mark(crerr.Wrap(readErr, "read response body"), errTransient)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = raw
			return false, nil
		}
		return classifyStatus(resp.StatusCode, raw)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "football-data request failed", "path", path, "error", err)
		return nil, err
	}
	return body, nil
}

// classifyStatus maps a non-2xx response to an error and whether it may be retried.
func classifyStatus(status int, body []byte) (bool, error) {
	switch {
	case status == http.StatusNotFound:
		return false, fmt.Errorf("%w: football-data resource not found", usecase.ErrNotFound)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return false, fmt.Errorf("%w: football-data rejected credentials status=%d", usecase.ErrUnauthorized, status)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return true, crerr.Mark(crerr.Newf("provider status=%d body=%s", status, abbreviateBody(body)), errTransient)
	default:
		return false, crerr.Newf("provider status=%d body=%s", status, abbreviateBody(body))
	}
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

type competitionPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Type   string `json:"type"`
	Emblem string `json:"emblem"`
	Area   struct {
		Name string `json:"name"`
		Code string `json:"code"`
		Flag string `json:"flag"`
	} `json:"area"`
	Seasons []json.RawMessage `json:"seasons"`
}

type seasonPayload struct {
	ID              int64  `json:"id"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday *int   `json:"currentMatchday"`
	Winner          *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"winner"`
	Stages []string `json:"stages"`
}

func parseCompetition(raw []byte) (usecase.ExternalCompetition, error) {
	var payload competitionPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.ExternalCompetition{}, crerr.Wrap(err, "decode competition payload")
	}

	out := usecase.ExternalCompetition{
		ID:     payload.ID,
		Name:   strings.TrimSpace(payload.Name),
		Code:   strings.ToUpper(strings.TrimSpace(payload.Code)),
		Type:   payload.Type,
		Emblem: payload.Emblem,
		Area: usecase.ExternalArea{
			Name: payload.Area.Name,
			Code: payload.Area.Code,
			Flag: payload.Area.Flag,
		},
		Seasons: make([]usecase.ExternalSeason, 0, len(payload.Seasons)),
		RawJSON: raw,
	}

	for _, item := range payload.Seasons {
		var season seasonPayload
		if err := sonic.Unmarshal(item, &season); err != nil {
			return usecase.ExternalCompetition{}, crerr.Wrap(err, "decode season payload")
		}
		if season.ID <= 0 {
			continue
		}
		mapped := usecase.ExternalSeason{
			ID:              season.ID,
			StartDate:       season.StartDate,
			EndDate:         season.EndDate,
			CurrentMatchday: season.CurrentMatchday,
			Stages:          season.Stages,
			RawJSON:         append([]byte(nil), item...),
		}
		if season.Winner != nil && season.Winner.ID > 0 {
			mapped.Winner = &usecase.ExternalWinner{ID: season.Winner.ID, Name: season.Winner.Name}
		}
		out.Seasons = append(out.Seasons, mapped)
	}
	return out, nil
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
