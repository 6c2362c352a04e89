package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"moviematch/internal/catalog"
	"moviematch/internal/logging"
	"moviematch/internal/metrics"
	"moviematch/internal/poster"
	"moviematch/internal/services"
	"moviematch/internal/similarity"
	"moviematch/internal/textutil"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a non-fatal message for the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Item is one recommended title with its poster.
type Item struct {
	Title        string        `json:"title"`
	PosterURL    string        `json:"poster_url"`
	PosterSource poster.Source `json:"poster_source"`
	Score        float64       `json:"score"`
}

// Result is the outcome of one recommendation request.
type Result struct {
	Query     string   `json:"query"`
	RequestID string   `json:"request_id"`
	Items     []Item   `json:"items"`
	Notices   []Notice `json:"notices"`
	NotFound  bool     `json:"not_found"`
	// Suggestions lists catalog titles resembling an unknown query.
	Suggestions []string `json:"suggestions"`
}

// Titles returns the recommended titles in rank order.
func (r Result) Titles() []string {
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.Title)
	}
	return out
}

// PosterURLs returns the poster URLs in rank order.
func (r Result) PosterURLs() []string {
	out := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.PosterURL)
	}
	return out
}

// PosterResolver is the poster lookup the service depends on.
type PosterResolver interface {
	Resolve(ctx context.Context, title string) poster.Poster
	Enabled() bool
}

// Service wires the catalog to the poster resolver.
type Service struct {
	catalog    *catalog.Catalog
	posters    PosterResolver
	limit      int
	logger     *slog.Logger
	sorted     []string
	titleIndex *textutil.TitleIndex
}

const maxSuggestions = 3

// Option configures a Service.
type Option func(*Service)

// WithLimit sets how many recommendations are returned.
func WithLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a Service over an already loaded catalog.
func NewService(cat *catalog.Catalog, posters PosterResolver, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		posters: posters,
		limit:   similarity.DefaultLimit,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "recommend")
	s.sorted = cat.SortedTitles()
	s.titleIndex = textutil.NewTitleIndex(cat.Titles())
	metrics.CatalogTitles.Set(float64(cat.Len()))
	return s
}

// Titles returns the catalog in display order.
func (s *Service) Titles() []string {
	return append([]string(nil), s.sorted...)
}

// Limit returns the number of recommendations per request.
func (s *Service) Limit() int {
	return s.limit
}

// StartupNotices lists conditions the user should see once, such as a
// missing metadata credential.
func (s *Service) StartupNotices() []Notice {
	if s.posters != nil && s.posters.Enabled() {
		return nil
	}
	return []Notice{{
		Level:   LevelWarning,
		Message: "OMDb API key not found. Set OMDB_API_KEY in the environment or a .env file to show posters.",
	}}
}

// Recommend runs the lookup for title and resolves posters sequentially in
// rank order. It never returns an error; failures become notices.
func (s *Service) Recommend(ctx context.Context, title string) Result {
	started := time.Now()
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	result := Result{Query: title, RequestID: requestID, Items: []Item{}, Notices: []Notice{}, Suggestions: []string{}}

	if strings.TrimSpace(title) == "" {
		result.Notices = append(result.Notices, Notice{Level: LevelWarning, Message: "Please select a movie to get recommendations!"})
		metrics.RecordRecommendation("blank", time.Since(started))
		return result
	}

	ctx = services.WithTitle(ctx, title)
	logger := logging.WithContext(ctx, s.logger)

	matches, err := similarity.Lookup(s.catalog, title, s.limit)
	if err != nil {
		if errors.Is(err, similarity.ErrNotFound) {
			result.NotFound = true
			result.Suggestions = s.titleIndex.Suggest(title, maxSuggestions)
			result.Notices = append(result.Notices, Notice{Level: LevelWarning, Message: fmt.Sprintf("Movie '%s' not found in the database.", title)})
			logger.Info("title not in catalog")
			metrics.RecordRecommendation("not_found", time.Since(started))
			return result
		}
		result.Notices = append(result.Notices, Notice{Level: LevelError, Message: fmt.Sprintf("Error in recommendation process: %v", err)})
		logger.Error("similarity lookup failed", logging.Error(err))
		metrics.RecordRecommendation("error", time.Since(started))
		return result
	}

	for _, match := range matches {
		resolved := poster.Poster{URL: poster.DefaultPlaceholderURL, Source: poster.SourceDisabled}
		if s.posters != nil {
			resolved = s.posters.Resolve(ctx, match.Title)
		}
		if resolved.Notice != "" {
			result.Notices = append(result.Notices, Notice{Level: LevelError, Message: resolved.Notice})
		}
		result.Items = append(result.Items, Item{
			Title:        match.Title,
			PosterURL:    resolved.URL,
			PosterSource: resolved.Source,
			Score:        match.Score,
		})
	}

	outcome := "ok"
	if len(result.Items) == 0 {
		outcome = "empty"
		result.Notices = append(result.Notices, Notice{Level: LevelInfo, Message: "No recommendations found. Try another movie!"})
	}
	logger.Info("recommendations served",
		logging.Int("count", len(result.Items)),
		logging.Duration("elapsed", time.Since(started)))
	metrics.RecordRecommendation(outcome, time.Since(started))
	return result
}
