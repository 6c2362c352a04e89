package similarity_test

import (
	"errors"
	"math"
	"testing"

	"moviematch/internal/catalog"
	"moviematch/internal/services"
	"moviematch/internal/similarity"
)

func newCatalog(t *testing.T, titles []string, matrix [][]float64) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(titles, matrix)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func identityWithRow(titles []string, row []float64) [][]float64 {
	matrix := make([][]float64, len(titles))
	for i := range matrix {
		matrix[i] = make([]float64, len(titles))
		matrix[i][i] = 1
	}
	matrix[0] = row
	return matrix
}

func titlesOf(matches []similarity.Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Title)
	}
	return out
}

func TestLookupReferenceExample(t *testing.T) {
	titles := []string{"A", "B", "C", "D", "E", "F", "G"}
	cat := newCatalog(t, titles, identityWithRow(titles, []float64{1.0, 0.9, 0.9, 0.5, 0.4, 0.3, 0.1}))

	matches, err := similarity.Lookup(cat, "A", similarity.DefaultLimit)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want := []string{"B", "C", "D", "E", "F"}
	got := titlesOf(matches)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLookupUnknownTitle(t *testing.T) {
	titles := []string{"A", "B"}
	cat := newCatalog(t, titles, [][]float64{{1, 0.5}, {0.5, 1}})

	matches, err := similarity.Lookup(cat, "Unknown Title", similarity.DefaultLimit)
	if !errors.Is(err, similarity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected services not-found marker, got %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", matches)
	}
}

func TestLookupInvariantsAcrossCatalog(t *testing.T) {
	titles := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	matrix := [][]float64{
		{1, 0.3, 0.3, 0.8, 0.1, 0.3, 0.9, 0.2},
		{0.3, 1, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
		{0.3, 0.5, 1, 0.2, 0.7, 0.7, 0.1, 0.0},
		{0.8, 0.5, 0.2, 1, 0.6, 0.6, 0.6, 0.4},
		{0.1, 0.5, 0.7, 0.6, 1, 0.2, 0.3, 0.9},
		{0.3, 0.5, 0.7, 0.6, 0.2, 1, 0.4, 0.4},
		{0.9, 0.5, 0.1, 0.6, 0.3, 0.4, 1, 0.0},
		{0.2, 0.5, 0.0, 0.4, 0.9, 0.4, 0.0, 1},
	}
	cat := newCatalog(t, titles, matrix)

	for q, title := range titles {
		matches, err := similarity.Lookup(cat, title, similarity.DefaultLimit)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", title, err)
		}
		if len(matches) > similarity.DefaultLimit {
			t.Fatalf("Lookup(%s) returned %d results", title, len(matches))
		}
		for i, m := range matches {
			if m.Title == title {
				t.Fatalf("Lookup(%s) returned the query", title)
			}
			if m.Score != matrix[q][m.Index] {
				t.Fatalf("Lookup(%s) score mismatch for %s", title, m.Title)
			}
			if i == 0 {
				continue
			}
			prev := matches[i-1]
			if prev.Score < m.Score {
				t.Fatalf("Lookup(%s) scores not descending: %v", title, matches)
			}
			if prev.Score == m.Score && prev.Index > m.Index {
				t.Fatalf("Lookup(%s) tie not in index order: %v", title, matches)
			}
		}
	}
}

func TestLookupSmallCatalog(t *testing.T) {
	titles := []string{"A", "B", "C"}
	cat := newCatalog(t, titles, [][]float64{{1, 0.1, 0.2}, {0.1, 1, 0.3}, {0.2, 0.3, 1}})

	matches, err := similarity.Lookup(cat, "A", similarity.DefaultLimit)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := titlesOf(matches); len(got) != 2 || got[0] != "C" || got[1] != "B" {
		t.Fatalf("unexpected result %v", got)
	}

	single := newCatalog(t, []string{"Solo"}, [][]float64{{1}})
	matches, err = similarity.Lookup(single, "Solo", similarity.DefaultLimit)
	if err != nil || len(matches) != 0 {
		t.Fatalf("expected empty result for single-title catalog, got %v %v", matches, err)
	}
}

func TestLookupNonPositiveLimit(t *testing.T) {
	cat := newCatalog(t, []string{"A", "B"}, [][]float64{{1, 0.5}, {0.5, 1}})
	for _, k := range []int{0, -3} {
		matches, err := similarity.Lookup(cat, "A", k)
		if err != nil || len(matches) != 0 {
			t.Fatalf("k=%d: expected empty result, got %v %v", k, matches, err)
		}
	}
}

func TestLookupExcludesDuplicateTitles(t *testing.T) {
	titles := []string{"Heat", "Alien", "Heat", "Zodiac"}
	cat := newCatalog(t, titles, identityWithRow(titles, []float64{1, 0.2, 0.99, 0.5}))

	matches, err := similarity.Lookup(cat, "Heat", similarity.DefaultLimit)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := titlesOf(matches); len(got) != 2 || got[0] != "Zodiac" || got[1] != "Alien" {
		t.Fatalf("unexpected result %v", got)
	}
}

func TestLookupRanksNaNLast(t *testing.T) {
	titles := []string{"A", "B", "C", "D"}
	cat := newCatalog(t, titles, identityWithRow(titles, []float64{1, math.NaN(), -0.5, 0.2}))

	matches, err := similarity.Lookup(cat, "A", similarity.DefaultLimit)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := titlesOf(matches); len(got) != 3 || got[0] != "D" || got[1] != "C" || got[2] != "B" {
		t.Fatalf("unexpected result %v", got)
	}
}
