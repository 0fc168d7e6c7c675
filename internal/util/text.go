package util

import (
	"regexp"
	"strings"
	"unicode"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeText lowercases, trims, and collapses runs of whitespace.
func NormalizeText(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	return reSpaces.ReplaceAllString(s, " ")
}

// TitleCase uppercases the first letter of every word and lowercases the
// rest, treating any non-letter as a word boundary ("o'brien" -> "O'Brien").
func TitleCase(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	prevLetter := false
	for _, r := range input {
		if unicode.IsLetter(r) {
			if prevLetter {
				out.WriteRune(unicode.ToLower(r))
			} else {
				out.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			out.WriteRune(r)
			prevLetter = false
		}
	}
	return out.String()
}

// Tokenize splits normalized text into words.
func Tokenize(input string) []string {
	norm := NormalizeText(input)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}

// AlphabeticWordCount counts the whitespace-separated words that contain at
// least one letter. "&" and bare punctuation do not count.
func AlphabeticWordCount(input string) int {
	count := 0
	for _, word := range strings.Fields(input) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				count++
				break
			}
		}
	}
	return count
}

// Ratio scores two strings 0-100 by Levenshtein distance over the longer
// length. Case-insensitive.
func Ratio(a, b string) float64 {
	a = NormalizeText(a)
	b = NormalizeText(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	dist := levenshtein(ra, rb)
	return 100 * float64(longest-dist) / float64(longest)
}

// PartialRatio scores how well the shorter string is contained in the longer
// one, 0-100: the best Ratio of the shorter string against every
// equal-length window of the longer. An exact substring scores 100.
func PartialRatio(a, b string) float64 {
	a = NormalizeText(a)
	b = NormalizeText(b)
	if a == "" || b == "" {
		return 0
	}
	shorter := []rune(a)
	longer := []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(string(longer), string(shorter)) {
		return 100
	}

	best := 0.0
	n := len(shorter)
	for i := 0; i+n <= len(longer); i++ {
		window := longer[i : i+n]
		dist := levenshtein(shorter, window)
		score := 100 * float64(n-dist) / float64(n)
		if score > best {
			best = score
		}
	}
	return best
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func StringPtr(v string) *string { return &v }
