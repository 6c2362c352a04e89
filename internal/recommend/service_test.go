package recommend_test

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"moviematch/internal/poster"
	"moviematch/internal/recommend"
	"moviematch/internal/respcache"
	"moviematch/internal/services"
	"moviematch/internal/testsupport"
)

func newService(t *testing.T, server *testsupport.OMDbServer) *recommend.Service {
	t.Helper()
	opts := []testsupport.ConfigOption{testsupport.WithReferenceCatalog()}
	if server != nil {
		opts = append(opts, testsupport.WithOMDbServer(server))
	}
	cfg := testsupport.NewConfig(t, opts...)
	cat := testsupport.MustLoadCatalog(t, cfg)
	resolver, err := poster.NewFromConfig(cfg, respcache.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	return recommend.NewService(cat, resolver, recommend.WithLimit(cfg.Recommend.Limit))
}

func TestRecommendReferenceExample(t *testing.T) {
	server := testsupport.NewOMDbServer(t, map[string]string{
		"B": "https://img.example/b.jpg",
		"C": "https://img.example/c.jpg",
		"D": "N/A",
	})
	svc := newService(t, server)

	result := svc.Recommend(context.Background(), "A")
	if want := []string{"B", "C", "D", "E", "F"}; !reflect.DeepEqual(result.Titles(), want) {
		t.Fatalf("titles = %v, want %v", result.Titles(), want)
	}
	wantPosters := []string{
		"https://img.example/b.jpg",
		"https://img.example/c.jpg",
		poster.DefaultPlaceholderURL,
		poster.DefaultPlaceholderURL,
		poster.DefaultPlaceholderURL,
	}
	if !reflect.DeepEqual(result.PosterURLs(), wantPosters) {
		t.Fatalf("posters = %v, want %v", result.PosterURLs(), wantPosters)
	}
	if len(result.Notices) != 0 || result.NotFound {
		t.Fatalf("unexpected notices %+v", result.Notices)
	}
	if result.RequestID == "" {
		t.Fatal("expected a request id")
	}
	if server.Calls() != 5 {
		t.Fatalf("expected one lookup per recommendation, got %d", server.Calls())
	}
}

func TestRecommendUnknownTitle(t *testing.T) {
	server := testsupport.NewOMDbServer(t, nil)
	svc := newService(t, server)

	result := svc.Recommend(context.Background(), "Unknown Title")
	if len(result.Titles()) != 0 || len(result.PosterURLs()) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if !result.NotFound {
		t.Fatal("expected NotFound flag")
	}
	if len(result.Notices) != 1 || result.Notices[0].Level != recommend.LevelWarning ||
		!strings.Contains(result.Notices[0].Message, "Unknown Title") {
		t.Fatalf("unexpected notices %+v", result.Notices)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected no suggestions against single letter titles, got %v", result.Suggestions)
	}
	if server.Calls() != 0 {
		t.Fatalf("expected no poster lookups, got %d", server.Calls())
	}
}

func TestRecommendUnknownTitleSuggestsNearMatches(t *testing.T) {
	titles := []string{"Heat", "The Dark Knight", "The Dark Knight Rises", "Zodiac"}
	matrix := [][]float64{
		{1, 0.1, 0.2, 0.3},
		{0.1, 1, 0.9, 0.2},
		{0.2, 0.9, 1, 0.1},
		{0.3, 0.2, 0.1, 1},
	}
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(titles, matrix))
	svc := recommend.NewService(testsupport.MustLoadCatalog(t, cfg), nil)

	result := svc.Recommend(context.Background(), "the dark knight")
	if !result.NotFound || len(result.Items) != 0 {
		t.Fatalf("expected case-mismatched title to be unknown, got %+v", result)
	}
	if want := []string{"The Dark Knight", "The Dark Knight Rises"}; !reflect.DeepEqual(result.Suggestions, want) {
		t.Fatalf("suggestions = %v, want %v", result.Suggestions, want)
	}
	if len(result.Notices) != 1 {
		t.Fatalf("expected only the not-found notice, got %+v", result.Notices)
	}
}

func TestRecommendBlankSelection(t *testing.T) {
	svc := newService(t, nil)
	result := svc.Recommend(context.Background(), "  ")
	if len(result.Items) != 0 || result.NotFound {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0].Message, "Please select a movie") {
		t.Fatalf("unexpected notices %+v", result.Notices)
	}
}

func TestRecommendPosterFailureDoesNotAbort(t *testing.T) {
	server := testsupport.NewOMDbServer(t, map[string]string{"B": "https://img.example/b.jpg", "C": "https://img.example/c.jpg"})
	server.FailWith("B", http.StatusInternalServerError)
	svc := newService(t, server)

	result := svc.Recommend(context.Background(), "A")
	if len(result.Items) != 5 {
		t.Fatalf("expected full result, got %+v", result.Items)
	}
	if result.Items[0].PosterURL != poster.DefaultPlaceholderURL || result.Items[1].PosterURL != "https://img.example/c.jpg" {
		t.Fatalf("unexpected posters %v", result.PosterURLs())
	}
	if len(result.Notices) != 1 || result.Notices[0].Level != recommend.LevelError ||
		!strings.Contains(result.Notices[0].Message, `"B"`) {
		t.Fatalf("unexpected notices %+v", result.Notices)
	}
}

func TestRecommendEmptyResultNotice(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog([]string{"Solo"}, [][]float64{{1}}))
	cat := testsupport.MustLoadCatalog(t, cfg)
	svc := recommend.NewService(cat, poster.New(nil))

	result := svc.Recommend(context.Background(), "Solo")
	if len(result.Items) != 0 || result.NotFound {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Notices) != 1 || result.Notices[0].Level != recommend.LevelInfo {
		t.Fatalf("unexpected notices %+v", result.Notices)
	}
}

func TestRecommendKeepsCallerRequestID(t *testing.T) {
	svc := newService(t, nil)
	ctx := services.WithRequestID(context.Background(), "req-42")
	if got := svc.Recommend(ctx, "A").RequestID; got != "req-42" {
		t.Fatalf("RequestID = %q", got)
	}
}

func TestStartupNoticesReportMissingCredential(t *testing.T) {
	disabled := newService(t, nil)
	if notices := disabled.StartupNotices(); len(notices) != 1 || !strings.Contains(notices[0].Message, "OMDB_API_KEY") {
		t.Fatalf("unexpected notices %+v", notices)
	}
	enabled := newService(t, testsupport.NewOMDbServer(t, nil))
	if notices := enabled.StartupNotices(); len(notices) != 0 {
		t.Fatalf("expected no startup notices, got %+v", notices)
	}
}

func TestTitlesAreSorted(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog([]string{"Zodiac", "Alien", "Heat"}, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}))
	svc := recommend.NewService(testsupport.MustLoadCatalog(t, cfg), poster.New(nil))
	if got := svc.Titles(); !reflect.DeepEqual(got, []string{"Alien", "Heat", "Zodiac"}) {
		t.Fatalf("Titles = %v", got)
	}
}
