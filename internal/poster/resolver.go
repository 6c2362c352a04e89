package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"moviematch/internal/config"
	"moviematch/internal/logging"
	"moviematch/internal/metrics"
	"moviematch/internal/omdb"
	"moviematch/internal/respcache"
	"moviematch/internal/services"
)

// DefaultPlaceholderURL is shown when no poster can be found.
const DefaultPlaceholderURL = "https://via.placeholder.com/500x750?text=No+Poster"

// sharedLookupTimeout bounds a lookup once it no longer follows any single
// caller's context.
const sharedLookupTimeout = 30 * time.Second

// Source records where a poster URL came from.
type Source string

const (
	SourceMetadata    Source = "metadata"
	SourcePlaceholder Source = "placeholder"
	SourceDisabled    Source = "disabled"
)

// Poster is the outcome of resolving one title.
type Poster struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
	Cached bool   `json:"cached"`
	Notice string `json:"notice,omitempty"`
}

// Resolver looks up posters through the metadata service.
type Resolver struct {
	looker      omdb.Looker
	placeholder string
	logger      *slog.Logger
	group       singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlaceholder overrides the placeholder image URL.
func WithPlaceholder(url string) Option {
	return func(r *Resolver) {
		if url = strings.TrimSpace(url); url != "" {
			r.placeholder = url
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a resolver. A nil looker disables metadata lookups.
func New(looker omdb.Looker, opts ...Option) *Resolver {
	r := &Resolver{
		looker:      looker,
		placeholder: DefaultPlaceholderURL,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "poster")
	return r
}

// NewFromConfig wires an OMDb client behind cache when a credential is
// configured, and a disabled resolver otherwise.
func NewFromConfig(cfg *config.Config, cache respcache.Fetcher, logger *slog.Logger) (*Resolver, error) {
	opts := []Option{WithPlaceholder(cfg.OMDb.PlaceholderURL), WithLogger(logger)}
	if !cfg.HasCredential() {
		return New(nil, opts...), nil
	}
	client, err := omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL,
		omdb.WithHTTPClient(&http.Client{Timeout: cfg.OMDbTimeout()}),
		omdb.WithCache(cache, cfg.CacheTTL()),
		omdb.WithBreaker(cfg.OMDb.BreakerFailures, cfg.BreakerCooldown()))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "poster", "build client", "", err)
	}
	return New(client, opts...), nil
}

// Enabled reports whether metadata lookups are attempted.
func (r *Resolver) Enabled() bool {
	return r.looker != nil
}

// PlaceholderURL returns the fallback image URL.
func (r *Resolver) PlaceholderURL() string {
	return r.placeholder
}

// Resolve returns the poster for title. Concurrent calls for the same title
// share one upstream lookup, which is detached from any one caller: a caller
// that gives up only abandons its own wait.
func (r *Resolver) Resolve(ctx context.Context, title string) Poster {
	if r.looker == nil {
		metrics.RecordPoster(string(SourceDisabled), false)
		return Poster{URL: r.placeholder, Source: SourceDisabled}
	}

	ctx = services.WithTitle(ctx, title)
	shared := r.group.DoChan(title, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return r.looker.LookupTitle(lookupCtx, title)
	})
	var outcome singleflight.Result
	select {
	case outcome = <-shared:
	case <-ctx.Done():
		outcome = singleflight.Result{Err: ctx.Err()}
	}
	value, err := outcome.Val, outcome.Err

	payload, _ := value.(*omdb.Title)
	cached := payload != nil && payload.Cached
	logger := logging.WithContext(ctx, r.logger)

	switch {
	case errors.Is(err, omdb.ErrTitleNotFound):
		logger.Debug("title unknown to metadata service", logging.Bool("cached", cached))
		return r.placeholderPoster(cached, "")
	case err != nil:
		category := services.Classify(err)
		metrics.RecordPosterFailure(string(category))
		logging.WarnWithContext(logger, "poster lookup failed", "poster_lookup_failed",
			logging.Error(err),
			logging.String("category", string(category)),
			logging.String(logging.FieldErrorHint, "check network access and the OMDb credential"),
			logging.String(logging.FieldImpact, "placeholder poster shown"))
		return r.placeholderPoster(cached, fmt.Sprintf("Poster for %q is unavailable: %v", title, err))
	case !payload.HasPoster():
		logger.Debug("metadata has no poster", logging.Bool("cached", cached))
		return r.placeholderPoster(cached, "")
	}

	metrics.RecordPoster(string(SourceMetadata), cached)
	logger.Debug("poster resolved", logging.Bool("cached", cached))
	return Poster{URL: strings.TrimSpace(payload.Poster), Source: SourceMetadata, Cached: cached}
}

func (r *Resolver) placeholderPoster(cached bool, notice string) Poster {
	metrics.RecordPoster(string(SourcePlaceholder), cached)
	return Poster{URL: r.placeholder, Source: SourcePlaceholder, Cached: cached, Notice: notice}
}
