package grading

import "strings"

// sectionLabels are recognized leading labels on a citation, longest
// first so "section" wins over "sec".
var sectionLabels = []string{"section", "sec.", "sec", "chapter", "ch.", "ch"}

var dashReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
)

// Normalize canonicalizes a free-text section reference for equality
// comparison. "Section 8-1.3.1", "8.1.3.1" and "SEC 8 1 3 1" all reduce
// to "8131". The output is never displayed.
//
// A leading label is stripped only when followed by a non-alphanumeric
// rune or the end of the string; since the output is purely alphanumeric,
// Normalize(Normalize(x)) == Normalize(x) for every input.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	for _, label := range sectionLabels {
		if !strings.HasPrefix(s, label) {
			continue
		}
		rest := s[len(label):]
		// Labels ending in "." carry their own boundary; bare-word labels
		// need one so that "8131" or "ch8"-like tokens survive a re-run.
		if strings.HasSuffix(label, ".") || rest == "" || !isAlnum(rune(rest[0])) {
			s = strings.TrimSpace(rest)
			break
		}
	}
	s = dashReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), ".,;:")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
