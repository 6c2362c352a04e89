package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"moviematch/internal/catalog"
	"moviematch/internal/poster"
	"moviematch/internal/recommend"
	"moviematch/internal/testsupport"
)

func TestRecommendReferenceCatalogWithoutCredential(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog())

	out, errOut, err := runCLI(t, []string{"recommend", "A", "--format", "tsv"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, errOut, "OMDb API key not found")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"B", "C", "D", "E", "F"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d rows, got %d: %q", len(want), len(lines), out)
	}
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			t.Fatalf("row %d: expected 4 columns, got %q", i, line)
		}
		if fields[1] != want[i] {
			t.Fatalf("row %d: expected %s, got %s", i, want[i], fields[1])
		}
		if fields[3] != env.cfg.OMDb.PlaceholderURL {
			t.Fatalf("row %d: expected placeholder poster, got %s", i, fields[3])
		}
	}
	if !strings.HasPrefix(lines[0], "1\tB\t0.9000\t") {
		t.Fatalf("unexpected first row %q", lines[0])
	}
}

func TestRecommendTableFormat(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog())

	out, _, err := runCLI(t, []string{"recommend", "A", "--format", "table"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, out, "TITLE")
	requireContains(t, out, "0.9000")
	requireContains(t, out, "╭")
}

func TestRecommendJSONUsesPosterService(t *testing.T) {
	server := testsupport.NewOMDbServer(t, map[string]string{
		"B": "https://img.example/b.jpg",
		"C": "N/A",
	})
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog(), testsupport.WithOMDbServer(server))

	out, errOut, err := runCLI(t, []string{"recommend", "A", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend --json: %v (stderr %q)", err, errOut)
	}

	var result recommend.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v (%q)", err, out)
	}
	if got := strings.Join(result.Titles(), ","); got != "B,C,D,E,F" {
		t.Fatalf("unexpected titles %s", got)
	}
	if result.Items[0].PosterURL != "https://img.example/b.jpg" || result.Items[0].PosterSource != poster.SourceMetadata {
		t.Fatalf("expected metadata poster for B, got %+v", result.Items[0])
	}
	for _, item := range result.Items[1:] {
		if item.PosterURL != env.cfg.OMDb.PlaceholderURL {
			t.Fatalf("expected placeholder for %s, got %s", item.Title, item.PosterURL)
		}
	}
	if len(result.Notices) != 0 {
		t.Fatalf("expected no notices with a credential, got %+v", result.Notices)
	}
	if server.Calls() != 5 {
		t.Fatalf("expected one lookup per recommendation, got %d", server.Calls())
	}
}

func TestRecommendReportsPosterFailureAsNotice(t *testing.T) {
	server := testsupport.NewOMDbServer(t, map[string]string{"B": "https://img.example/b.jpg"})
	server.FailWith("C", 502)
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog(), testsupport.WithOMDbServer(server))

	out, errOut, err := runCLI(t, []string{"recommend", "A", "--format", "tsv"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, errOut, "error: Poster for \"C\" is unavailable")
	requireContains(t, out, "2\tC\t0.9000\t"+env.cfg.OMDb.PlaceholderURL)
}

func TestRecommendUnknownTitle(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog())

	out, errOut, err := runCLI(t, []string{"recommend", "Unknown Title"}, env.configPath)
	if !errors.Is(err, errTitleNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no rows, got %q", out)
	}
	requireContains(t, errOut, "Movie 'Unknown Title' not found in the database.")
}

func TestRecommendIsCaseSensitive(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog())

	if _, _, err := runCLI(t, []string{"recommend", "a"}, env.configPath); !errors.Is(err, errTitleNotFound) {
		t.Fatalf("expected lowercase title to be unknown, got %v", err)
	}
}

func TestRecommendSuggestsCloseTitles(t *testing.T) {
	titles := []string{"Heat", "Zodiac", "Alien"}
	matrix := [][]float64{{1, 0.5, 0.4}, {0.5, 1, 0.3}, {0.4, 0.3, 1}}
	env := setupCLITestEnv(t, testsupport.WithCatalog(titles, matrix))

	_, errOut, err := runCLI(t, []string{"recommend", "zodiac"}, env.configPath)
	if !errors.Is(err, errTitleNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	requireContains(t, errOut, "Did you mean: Zodiac?")
}

func TestRecommendMissingDataFiles(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"recommend", "A"}, env.configPath)
	if !errors.Is(err, catalog.ErrMissingData) {
		t.Fatalf("expected missing data error, got %v", err)
	}
	requireContains(t, err.Error(), env.cfg.Data.TitlesPath)
	requireContains(t, err.Error(), env.cfg.Data.MatrixPath)
}

func TestRecommendRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithReferenceCatalog())

	if _, _, err := runCLI(t, []string{"recommend", "A", "--format", "xml"}, env.configPath); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestTitlesListsSortedCatalog(t *testing.T) {
	titles := []string{"Zodiac", "alien", "Heat"}
	matrix := [][]float64{{1, 0.2, 0.3}, {0.2, 1, 0.1}, {0.3, 0.1, 1}}
	env := setupCLITestEnv(t, testsupport.WithCatalog(titles, matrix))

	out, _, err := runCLI(t, []string{"titles"}, env.configPath)
	if err != nil {
		t.Fatalf("titles: %v", err)
	}
	if out != "alien\nHeat\nZodiac\n" {
		t.Fatalf("unexpected order %q", out)
	}

	out, _, err = runCLI(t, []string{"titles", "--json", "--contains", "HE"}, env.configPath)
	if err != nil {
		t.Fatalf("titles --json: %v", err)
	}
	var payload struct {
		Count  int      `json:"count"`
		Titles []string `json:"titles"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode titles: %v", err)
	}
	if payload.Count != 1 || payload.Titles[0] != "Heat" {
		t.Fatalf("unexpected filtered titles %+v", payload)
	}
}
