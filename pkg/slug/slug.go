package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that do not decompose into an ASCII base plus combining marks.
var foldReplacer = strings.NewReplacer(
	"ı", "i",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
)

// Generate creates a URL-friendly slug from a brand or category name.
// Diacritics are stripped, so accented Latin letters fold to ASCII.
//
// Examples:
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Crème Brûlée" → "creme-brulee"
//   - "Headphones & Audio" → "headphones-audio"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = foldReplacer.Replace(s)

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
