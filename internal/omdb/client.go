package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"moviematch/internal/respcache"
	"moviematch/internal/services"
)

// ErrTitleNotFound reports that the service answered with Response "False".
var ErrTitleNotFound = errors.New("omdb title not found")

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// Title is the subset of the OMDb payload moviematch uses.
type Title struct {
	Response string `json:"Response"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	IMDbID   string `json:"imdbID"`
	Poster   string `json:"Poster"`
	Error    string `json:"Error"`

	// Cached is set when the payload came from the response cache.
	Cached bool `json:"-"`
}

// HasPoster reports whether the payload carries a usable image URL.
func (t *Title) HasPoster() bool {
	if t == nil {
		return false
	}
	poster := strings.TrimSpace(t.Poster)
	return poster != "" && !strings.EqualFold(poster, "N/A")
}

// Looker is the lookup operation the poster resolver depends on.
type Looker interface {
	LookupTitle(ctx context.Context, title string) (*Title, error)
}

// Client calls the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      respcache.Fetcher
	cacheTTL   time.Duration
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

var _ Looker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache routes lookups through cache, keeping successful responses for ttl.
func WithCache(cache respcache.Fetcher, ttl time.Duration) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
			c.cacheTTL = ttl
		}
	}
}

// WithBreaker stops calling the service for cooldown after failures
// consecutive upstream errors. Cached responses are still served while the
// breaker is open. A failures value below one disables the breaker.
func WithBreaker(failures int, cooldown time.Duration) Option {
	return func(c *Client) {
		if failures < 1 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "omdb",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(failures)
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		})
	}
}

// BreakerState reports the breaker state, or "disabled" without one.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      respcache.Passthrough{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// LookupTitle fetches metadata for an exact title. ErrTitleNotFound is
// returned when the service reports no match.
func (c *Client) LookupTitle(ctx context.Context, title string) (*Title, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := endpoint.Query()
	params.Set("t", title)
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()
	target := endpoint.String()

	result, err := c.cache.GetOrFetch(ctx, respcache.RequestKey(http.MethodGet, target), c.cacheTTL,
		func(ctx context.Context) ([]byte, error) {
			return c.guardedFetch(ctx, target)
		})
	if err != nil {
		return nil, err
	}

	var payload Title
	if err := json.Unmarshal(result.Body, &payload); err != nil {
		return &Title{Cached: result.Hit}, services.Wrap(services.ErrExternalTool, "omdb", "decode response", title, err)
	}
	payload.Cached = result.Hit

	switch payload.Response {
	case "True":
		return &payload, nil
	case "False":
		detail := title
		if payload.Error != "" {
			detail = fmt.Sprintf("%s (%s)", title, payload.Error)
		}
		return &payload, services.Wrap(services.ErrNotFound, "omdb", "lookup", detail, ErrTitleNotFound)
	default:
		return &Title{Cached: result.Hit}, services.Wrap(services.ErrExternalTool, "omdb", "decode response",
			fmt.Sprintf("unexpected Response flag %q", payload.Response), nil)
	}
}

func (c *Client) guardedFetch(ctx context.Context, target string) ([]byte, error) {
	if c.breaker == nil {
		return c.fetch(ctx, target)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, services.Wrap(services.ErrTransient, "omdb", "request", "service paused after repeated failures", err)
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "request",
			fmt.Sprintf("latency=%v", latency.Round(time.Millisecond)), redactError(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalTool, "omdb", "request",
			fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency.Round(time.Millisecond)), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "read response", "", err)
	}
	if err := checkEnvelope(body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkEnvelope rejects bodies that are not an OMDb answer so they never
// reach the response cache.
func checkEnvelope(body []byte) error {
	var envelope struct {
		Response string `json:"Response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return services.Wrap(services.ErrExternalTool, "omdb", "decode response", "", err)
	}
	switch envelope.Response {
	case "True", "False":
		return nil
	default:
		return services.Wrap(services.ErrExternalTool, "omdb", "decode response",
			fmt.Sprintf("unexpected Response flag %q", envelope.Response), nil)
	}
}

// redactError masks the credential in transport errors, which embed the
// request URL.
func redactError(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redactURL(urlErr.URL), Err: urlErr.Err}
	}
	marker := "apikey=" + url.QueryEscape(apiKey)
	msg := err.Error()
	if !strings.Contains(msg, marker) {
		return err
	}
	return redactedError{msg: strings.ReplaceAll(msg, marker, "apikey=REDACTED"), err: err}
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "REDACTED"
	}
	query := parsed.Query()
	if query.Has("apikey") {
		query.Set("apikey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

type redactedError struct {
	msg string
	err error
}

func (e redactedError) Error() string { return e.msg }

func (e redactedError) Unwrap() error { return e.err }
