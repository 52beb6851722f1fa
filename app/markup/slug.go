package markup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugFold decomposes accented characters and drops the combining marks,
// so "Café" slugifies to "cafe" rather than "caf".
var slugFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL slug from a title. Used when the export carries no
// post_name and for tags created without a slug.
func Slugify(s string) string {
	if folded, _, err := transform.String(slugFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
