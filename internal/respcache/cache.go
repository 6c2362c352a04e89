package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"moviematch/internal/logging"
	"moviematch/internal/services"
)

// FetchFunc produces a fresh response body on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Result is a response body and where it came from.
type Result struct {
	Body     []byte
	Hit      bool
	StoredAt time.Time
}

// Fetcher returns the cached body for key when it has not expired, otherwise
// it calls fetch and stores a successful result for ttl. A failed fetch is
// never stored. A non-positive ttl bypasses storage.
type Fetcher interface {
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (Result, error)
}

// Entry describes one stored response.
type Entry struct {
	Key       string
	Label     string
	Size      int
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Stats summarizes the cache contents.
type Stats struct {
	Backend string
	Path    string
	Entries int
	Expired int
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}

// Maintainer exposes the housekeeping operations the CLI offers.
type Maintainer interface {
	Stats(ctx context.Context) (Stats, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Prune(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int, error)
}

// Option customizes a cache backend.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger attaches a logger for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "respcache")
	return o
}

// RequestKey derives a storage key from the request method and URL. Query
// parameters are sorted and the fragment dropped before hashing.
func RequestKey(method, rawURL string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	canonical := rawURL
	if parsed, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		parsed.Scheme = strings.ToLower(parsed.Scheme)
		parsed.Host = strings.ToLower(parsed.Host)
		parsed.Fragment = ""
		parsed.RawQuery = parsed.Query().Encode()
		canonical = parsed.String()
	}
	sum := sha256.Sum256([]byte(method + " " + canonical))
	return hex.EncodeToString(sum[:])
}

func labelFromContext(ctx context.Context) string {
	if title, ok := services.TitleFromContext(ctx); ok {
		return title
	}
	return ""
}

// Passthrough is a Fetcher that never stores anything.
type Passthrough struct{}

// GetOrFetch always calls fetch.
func (Passthrough) GetOrFetch(ctx context.Context, _ string, _ time.Duration, fetch FetchFunc) (Result, error) {
	body, err := fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Body: body}, nil
}

// Stats reports an empty cache.
func (Passthrough) Stats(context.Context) (Stats, error) {
	return Stats{Backend: "none"}, nil
}

// List returns no entries.
func (Passthrough) List(context.Context, int) ([]Entry, error) { return nil, nil }

// Prune removes nothing.
func (Passthrough) Prune(context.Context) (int, error) { return 0, nil }

// Clear removes nothing.
func (Passthrough) Clear(context.Context) (int, error) { return 0, nil }
