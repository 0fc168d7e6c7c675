package pipeline

import (
	"strings"

	"automailer/internal"
	"automailer/internal/util"
)

const (
	PlaceholderCustomer = "Valued Customer"
	PlaceholderBusiness = "Valued Business"

	// Joint owners arrive as one separator-joined string on a record.
	ownerSeparator = "||"
)

var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "miss": {}, "dr": {}, "rev": {}, "hon": {}, "attn": {},
}

var suffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "esq": {}, "jd": {}, "md": {}, "phd": {}, "law": {},
}

var romanNumerals = map[string]struct{}{
	"i": {}, "ii": {}, "iii": {}, "iv": {}, "v": {}, "vi": {}, "vii": {}, "viii": {}, "ix": {}, "x": {},
}

var ordinalWords = map[string]struct{}{
	"first": {}, "second": {}, "third": {}, "fourth": {}, "fifth": {},
	"sixth": {}, "seventh": {}, "eighth": {}, "ninth": {}, "tenth": {},
}

// CleanPersonalName turns a raw owner string into a display name. Joint
// owners sharing one surname are merged ("John & Jane Smith"); differing
// surnames render each party in full.
func CleanPersonalName(raw string) internal.PersonName {
	segments := strings.Split(raw, ownerSeparator)
	owners := make([]internal.OwnerName, 0, len(segments))
	for _, segment := range segments {
		owners = append(owners, cleanOwnerSegment(segment))
	}

	// Some vendors split a single owner's surname and given name across the
	// separator ("DOE||JOHN"). Two lone single-word givens and no surname
	// anywhere means exactly that shape.
	if len(owners) == 2 &&
		owners[0].Surname == "" && owners[1].Surname == "" &&
		isSingleWord(owners[0].Given) && isSingleWord(owners[1].Given) {
		owners = []internal.OwnerName{{Surname: owners[0].Given, Given: owners[1].Given}}
	}

	display := renderOwners(owners)
	if display == "" {
		display = PlaceholderCustomer
	}
	return internal.PersonName{Owners: owners, Display: display}
}

// CleanCommercialName prefers an explicit executive name, then the legal
// entity name, then the company name.
func CleanCommercialName(execFirst, execLast, legalName, companyName string) internal.PersonName {
	first := formatGivenNames(cleanTokens(execFirst))
	last := titleCaseTokens(cleanTokens(execLast))
	if first != "" && last != "" {
		owner := internal.OwnerName{Surname: last, Given: first}
		return internal.PersonName{Owners: []internal.OwnerName{owner}, Display: first + " " + last}
	}
	if v := strings.TrimSpace(legalName); v != "" {
		return internal.PersonName{Display: util.TitleCase(v)}
	}
	if v := strings.TrimSpace(companyName); v != "" {
		return internal.PersonName{Display: util.TitleCase(v)}
	}
	return internal.PersonName{Display: PlaceholderBusiness}
}

// cleanOwnerSegment strips the parenthetical suffix (life-estate markers and
// the like), removes ignorable tokens, and splits surname from given names.
// A segment with nothing usable yields an empty owner slot, not a failure.
func cleanOwnerSegment(segment string) internal.OwnerName {
	if idx := strings.Index(segment, "("); idx >= 0 {
		segment = segment[:idx]
	}
	tokens := cleanTokens(segment)

	switch {
	case len(tokens) >= 2:
		return internal.OwnerName{
			Surname: util.TitleCase(tokens[0]),
			Given:   formatGivenTokens(tokens[1:]),
		}
	case len(tokens) == 1:
		return internal.OwnerName{Given: util.TitleCase(tokens[0])}
	default:
		return internal.OwnerName{}
	}
}

// cleanTokens tokenizes on whitespace and drops honorifics, generational and
// professional suffixes, roman numerals, and "the <ordinal>" pairs.
func cleanTokens(input string) []string {
	fields := strings.Fields(input)
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		token := strings.Trim(fields[i], ".,;")
		if token == "" {
			continue
		}
		lower := strings.ToLower(token)

		if lower == "the" && i+1 < len(fields) {
			next := strings.ToLower(strings.Trim(fields[i+1], ".,;"))
			_, ordinal := ordinalWords[next]
			_, roman := romanNumerals[next]
			if ordinal || roman {
				i++
				continue
			}
		}
		if _, ok := honorifics[lower]; ok {
			continue
		}
		if _, ok := suffixes[lower]; ok {
			continue
		}
		if _, ok := romanNumerals[lower]; ok {
			continue
		}
		out = append(out, token)
	}
	return out
}

// formatGivenTokens renders given names: the first in full, the rest as
// middle initials ("John Michael" -> "John M.").
func formatGivenTokens(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	parts = append(parts, util.TitleCase(tokens[0]))
	for _, t := range tokens[1:] {
		initial := strings.ToUpper(t[:1])
		parts = append(parts, initial+".")
	}
	return strings.Join(parts, " ")
}

func formatGivenNames(tokens []string) string {
	return formatGivenTokens(tokens)
}

func isSingleWord(s string) bool {
	return s != "" && !strings.Contains(s, " ")
}

func titleCaseTokens(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, util.TitleCase(t))
	}
	return strings.Join(parts, " ")
}

func renderOwners(owners []internal.OwnerName) string {
	surnames := map[string]struct{}{}
	for _, o := range owners {
		if o.Surname != "" {
			surnames[o.Surname] = struct{}{}
		}
	}

	if len(surnames) == 1 {
		var surname string
		for s := range surnames {
			surname = s
		}
		givens := make([]string, 0, len(owners))
		for _, o := range owners {
			if o.Given != "" {
				givens = append(givens, o.Given)
			}
		}
		return strings.TrimSpace(strings.Join(givens, " & ") + " " + surname)
	}

	rendered := make([]string, 0, len(owners))
	for _, o := range owners {
		full := strings.TrimSpace(o.Given + " " + o.Surname)
		if full != "" {
			rendered = append(rendered, full)
		}
	}
	return strings.Join(rendered, " & ")
}
