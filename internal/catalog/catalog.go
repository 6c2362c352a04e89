package catalog

import (
	"fmt"
	"math"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"moviematch/internal/services"
)

// Catalog is the read-only pairing of titles with their similarity rows.
type Catalog struct {
	titles []string
	first  map[string]int
	scores []float64 // n*n, row-major
}

// New validates that titles and matrix are aligned and square, then copies
// them into a Catalog.
func New(titles []string, matrix [][]float64) (*Catalog, error) {
	n := len(titles)
	if len(matrix) != n {
		return nil, services.Wrap(services.ErrValidation, "catalog", "align",
			fmt.Sprintf("%d titles but %d matrix rows", n, len(matrix)), nil)
	}
	scores := make([]float64, 0, n*n)
	for i, row := range matrix {
		if len(row) != n {
			return nil, services.Wrap(services.ErrValidation, "catalog", "align",
				fmt.Sprintf("matrix row %d has %d columns, want %d", i, len(row), n), nil)
		}
		scores = append(scores, row...)
	}
	return newFromFlat(titles, scores)
}

func newFromFlat(titles []string, scores []float64) (*Catalog, error) {
	n := len(titles)
	if len(scores) != n*n {
		return nil, services.Wrap(services.ErrValidation, "catalog", "align",
			fmt.Sprintf("matrix holds %d values, want %dx%d", len(scores), n, n), nil)
	}
	c := &Catalog{
		titles: append([]string(nil), titles...),
		first:  make(map[string]int, n),
		scores: scores,
	}
	for i, title := range c.titles {
		if _, seen := c.first[title]; !seen {
			c.first[title] = i
		}
	}
	return c, nil
}

// Len returns the number of titles.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.titles)
}

// Title returns the title stored at index i.
func (c *Catalog) Title(i int) string {
	return c.titles[i]
}

// IndexOf returns the first index holding title. Matching is exact and
// case-sensitive.
func (c *Catalog) IndexOf(title string) (int, bool) {
	if c == nil {
		return 0, false
	}
	idx, ok := c.first[title]
	return idx, ok
}

// Score returns the similarity between titles i and j.
func (c *Catalog) Score(i, j int) float64 {
	return c.scores[i*len(c.titles)+j]
}

// Titles returns the titles in index order.
func (c *Catalog) Titles() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.titles...)
}

// SortedTitles returns the titles in English collation order for display.
func (c *Catalog) SortedTitles() []string {
	out := c.Titles()
	collate.New(language.English).SortStrings(out)
	return out
}

// NonFinite counts matrix entries that are NaN or infinite.
func (c *Catalog) NonFinite() int {
	count := 0
	for _, v := range c.scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			count++
		}
	}
	return count
}
