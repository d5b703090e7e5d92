package catalog

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// bracketed matches a parenthesized or bracketed substring, same technique
// the teacher's metadata cleaner uses for stripping "(Remastered 2009)"-style
// asides, but scoped to exactly what spec.md §4.3 step 1 asks for.
var bracketed = regexp2.MustCompile(`\s*[\(\[][^\(\)\[\]]*[\)\]]`, regexp2.None)

// disallowed matches any rune outside [A-Za-z0-9 _-].
var disallowed = regexp2.MustCompile(`[^A-Za-z0-9 _-]`, regexp2.None)

var whitespace = regexp2.MustCompile(`\s+`, regexp2.None)

// Normalize implements spec.md §4.3 step 1: strip parenthesized/bracketed
// substrings, drop characters outside [A-Za-z0-9 _-], collapse whitespace,
// trim, lowercase. Normalizing an already-normalized string is a no-op.
func Normalize(s string) string {
	s, _ = bracketed.Replace(s, "", -1, -1)
	s, _ = disallowed.Replace(s, "", -1, -1)
	s, _ = whitespace.Replace(s, " ", -1, -1)
	return strings.ToLower(strings.TrimSpace(s))
}
