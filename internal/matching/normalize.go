package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize folds a free-text vendor/account string into a canonical
// comparison form: full-width runes narrowed (ＡＢＣ -> ABC, ｶﾅ widened
// to カナ), lower-cased, all whitespace removed. OCR output mixes
// widths freely, so matching without folding misses exact hits.
func Normalize(s string) string {
	folded := width.Fold.String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
