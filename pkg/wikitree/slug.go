package wikitree

import (
	"strings"
	"unicode"
)

// Slugify lowercases title, replaces runs of non-alphanumeric characters
// with a single hyphen, and trims leading/trailing hyphens. No example
// repo in the retrieval pack carries a slug library (gosimple/slug and
// similar are absent from every go.mod in the corpus), so this is
// implemented directly on strings/unicode.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // treat start-of-string as if a hyphen was just emitted
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
