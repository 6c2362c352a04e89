package textutil

import (
	"slices"
	"strings"
)

// MinSuggestionScore is the cosine similarity below which a title is not
// offered as a suggestion.
const MinSuggestionScore = 0.35

// TitleIndex answers "did you mean" queries over a fixed list of titles.
// It is immutable after construction and safe for concurrent use.
type TitleIndex struct {
	titles []string
	prints []*Fingerprint
	idf    map[string]float64
	folded map[string]int
}

// NewTitleIndex fingerprints titles in order. Duplicate titles keep their
// first position.
func NewTitleIndex(titles []string) *TitleIndex {
	idx := &TitleIndex{
		titles: append([]string(nil), titles...),
		prints: make([]*Fingerprint, len(titles)),
		folded: make(map[string]int, len(titles)),
	}
	corpus := NewCorpus()
	for i, title := range titles {
		idx.prints[i] = NewFingerprint(title)
		corpus.Add(idx.prints[i])
		key := strings.ToLower(strings.TrimSpace(title))
		if _, seen := idx.folded[key]; !seen {
			idx.folded[key] = i
		}
	}
	idx.idf = corpus.IDF()
	for i, fp := range idx.prints {
		idx.prints[i] = fp.WithIDF(idx.idf)
	}
	return idx
}

type candidate struct {
	index int
	score float64
}

// Suggest returns up to limit titles that resemble query, best first. A
// case-insensitive exact match always comes first. Equal scores keep catalog
// order and titles identical to query are never returned.
func (idx *TitleIndex) Suggest(query string, limit int) []string {
	out := []string{}
	if idx == nil || limit <= 0 || strings.TrimSpace(query) == "" {
		return out
	}

	exact := -1
	if i, ok := idx.folded[strings.ToLower(strings.TrimSpace(query))]; ok && idx.titles[i] != query {
		exact = i
		out = append(out, idx.titles[i])
	}

	probe := NewFingerprint(query).WithIDF(idx.idf)
	if probe == nil {
		return out
	}
	seen := map[string]struct{}{query: {}}
	if exact >= 0 {
		seen[idx.titles[exact]] = struct{}{}
	}
	candidates := make([]candidate, 0, 8)
	for i, fp := range idx.prints {
		score := CosineSimilarity(probe, fp)
		if score < MinSuggestionScore {
			continue
		}
		candidates = append(candidates, candidate{index: i, score: score})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return a.index - b.index
		}
	})
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		title := idx.titles[c.index]
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
	return out
}
