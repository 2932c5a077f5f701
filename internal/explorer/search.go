package explorer

import (
	"sort"
	"strings"
	"unicode"

	levenshtein "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

// maxTypoDistance is the largest edit distance, relative to word length,
// that still counts as a match.
const maxTypoDistance = 0.4

// Index answers fuzzy title queries over a fixed list. It is built once per
// load and never modified.
type Index struct {
	titles []string
	words  [][]string
}

func NewIndex(titles []string) *Index {
	ix := &Index{
		titles: titles,
		words:  make([][]string, len(titles)),
	}
	for i, t := range titles {
		ix.words[i] = splitWords(t)
	}
	return ix
}

// Search returns the positions of matching titles, best match first.
// Subsequence matches rank ahead of typo-tolerant word matches.
func (ix *Index) Search(query string) []int {
	query = strings.TrimSpace(query)
	if query == "" || len(ix.titles) == 0 {
		return nil
	}

	matches := fuzzy.FindNoSort(query, ix.titles)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	seen := make(map[int]bool, len(matches))
	result := make([]int, 0, len(matches))
	for _, m := range matches {
		seen[m.Index] = true
		result = append(result, m.Index)
	}

	type typoMatch struct {
		index    int
		distance float64
	}
	var typos []typoMatch
	queryWords := splitWords(query)
	for i, words := range ix.words {
		if seen[i] {
			continue
		}
		if d, ok := wordsDistance(queryWords, words); ok {
			typos = append(typos, typoMatch{index: i, distance: d})
		}
	}
	sort.SliceStable(typos, func(i, j int) bool {
		return typos[i].distance < typos[j].distance
	})
	for _, t := range typos {
		result = append(result, t.index)
	}

	return result
}

// wordsDistance reports the mean normalized distance of each query word to
// its closest title word. Every query word must be within maxTypoDistance.
func wordsDistance(query, title []string) (float64, bool) {
	if len(query) == 0 || len(title) == 0 {
		return 0, false
	}

	total := 0.0
	for _, q := range query {
		best := 1.0
		for _, w := range title {
			if d := normalizedDistance(q, w); d < best {
				best = d
			}
		}
		if best > maxTypoDistance {
			return 0, false
		}
		total += best
	}
	return total / float64(len(query)), true
}

func normalizedDistance(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.LevenshteinDistance(a, b)) / float64(longest)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
