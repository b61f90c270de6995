package errors

import (
	"sort"
	"strings"
)

// MaxSuggestions caps how many candidates a hint offers.
const MaxSuggestions = 3

// SuggestSimilar returns the candidates closest to target by edit
// distance, best first. Short targets tolerate less distance so a two
// letter typo never suggests an unrelated word. Matching is case
// insensitive; exact matches are skipped.
func SuggestSimilar(target string, candidates []string) []string {
	if target == "" || len(candidates) == 0 {
		return nil
	}

	limit := 3
	if n := len(target); n <= 3 {
		limit = 1
	} else if n <= 5 {
		limit = 2
	}

	type scored struct {
		value string
		dist  int
	}
	lower := strings.ToLower(target)
	var found []scored
	for _, candidate := range candidates {
		if candidate == "" || strings.ToLower(candidate) == lower {
			continue
		}
		if d := editDistance(lower, strings.ToLower(candidate)); d <= limit {
			found = append(found, scored{candidate, d})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].value < found[j].value
	})
	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}

	values := make([]string, len(found))
	for i, s := range found {
		values[i] = s.value
	}
	return values
}

// SuggestionHint renders suggestions as a "did you mean" hint, or ""
// when there is nothing to offer.
func SuggestionHint(suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + suggestions[0] + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s + "'"
	}
	return "did you mean one of " + strings.Join(quoted, ", ") + "?"
}

// editDistance is the Levenshtein distance over runes, computed with a
// rolling pair of rows.
func editDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	if len(ar) > len(br) {
		ar, br = br, ar
	}

	prev := make([]int, len(ar)+1)
	curr := make([]int, len(ar)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(br); j++ {
		curr[0] = j
		for i := 1; i <= len(ar); i++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ar)]
}
