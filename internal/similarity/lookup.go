package similarity

import (
	"errors"
	"math"
	"slices"

	"moviematch/internal/catalog"
	"moviematch/internal/services"
)

// DefaultLimit is the number of recommendations returned when callers do not
// ask for a different count.
const DefaultLimit = 5

// ErrNotFound reports that the query title is not in the catalog.
var ErrNotFound = errors.New("title not in catalog")

// Match is one ranked neighbour of the query title.
type Match struct {
	Index int
	Title string
	Score float64
}

// Lookup returns up to k titles most similar to title, highest score first.
// Equal scores keep ascending catalog order and NaN scores rank last. The
// query row and every entry sharing the query's exact title are excluded.
func Lookup(cat *catalog.Catalog, title string, k int) ([]Match, error) {
	query, ok := cat.IndexOf(title)
	if !ok {
		return []Match{}, services.Wrap(services.ErrNotFound, "similarity", "lookup", title, ErrNotFound)
	}
	if k <= 0 {
		return []Match{}, nil
	}

	candidates := make([]Match, 0, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		if i == query || cat.Title(i) == title {
			continue
		}
		candidates = append(candidates, Match{Index: i, Title: cat.Title(i), Score: cat.Score(query, i)})
	}
	slices.SortStableFunc(candidates, compareMatches)

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func compareMatches(a, b Match) int {
	aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
	switch {
	case aNaN && !bNaN:
		return 1
	case bNaN && !aNaN:
		return -1
	case !aNaN && a.Score != b.Score:
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	return a.Index - b.Index
}
