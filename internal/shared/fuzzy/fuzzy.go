// Package fuzzy scores approximate string matches on a 0-100 scale.
//
// Ratio is the normalized Indel similarity (insertions and deletions only)
// over characters: |a|+|b|-2*LCS(a, b), counted in runes.
// The token variants compare word sets so that word order and duplicated or
// extra words weigh less than in a plain Ratio.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/samber/lo"
)

// Scorer compares two strings and returns a similarity in [0, 100].
type Scorer func(a, b string) float64

// Match is the best candidate found by ExtractOne.
type Match struct {
	Choice string
	Score  float64
	Index  int
}

// Ratio returns the normalized Indel similarity of a and b.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	dist := total - 2*edlib.LCS(a, b)
	return 100 * (1 - float64(dist)/float64(total))
}

// TokenSortRatio compares the strings after sorting their words.
func TokenSortRatio(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	sort.Strings(ta)
	sort.Strings(tb)
	return Ratio(strings.Join(ta, " "), strings.Join(tb, " "))
}

// TokenSetRatio compares the shared words of a and b against each side's
// remaining words and keeps the best of the three comparisons. A string whose
// words are all contained in the other scores 100.
func TokenSetRatio(a, b string) float64 {
	ta, tb := lo.Uniq(tokens(a)), lo.Uniq(tokens(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	sect := lo.Intersect(ta, tb)
	diffAB, diffBA := lo.Difference(ta, tb)
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sectJoined := strings.Join(sect, " ")
	withAB := strings.TrimSpace(sectJoined + " " + strings.Join(diffAB, " "))
	withBA := strings.TrimSpace(sectJoined + " " + strings.Join(diffBA, " "))

	best := Ratio(withAB, withBA)
	if sectJoined != "" {
		best = max(best, Ratio(sectJoined, withAB), Ratio(sectJoined, withBA))
	}
	return best
}

// ExtractOne returns the highest scoring choice. Ties keep the earliest choice.
func ExtractOne(query string, choices []string, scorer Scorer) (Match, bool) {
	best := Match{Index: -1, Score: -1}
	for i, choice := range choices {
		score := scorer(query, choice)
		if score > best.Score {
			best = Match{Choice: choice, Score: score, Index: i}
		}
	}
	return best, best.Index >= 0
}

// tokens lower-cases s, treats every non alphanumeric rune as a separator and
// returns the resulting words.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
