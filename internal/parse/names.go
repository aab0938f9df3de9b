package parse

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a fighter name, collapses inner whitespace and puts it in NFC
// form. Case is preserved: names match case-sensitively.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// SearchKey folds a name for case- and accent-insensitive matching,
// e.g. "Jiří Procházka" -> "jiri prochazka".
func SearchKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, NormalizeName(name))
	if err != nil {
		folded = NormalizeName(name)
	}
	return strings.ToLower(folded)
}

// StripLoserSuffix removes the trailing "L" marker line that results feeds append to
// the losing fighter's name.
func StripLoserSuffix(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "\nL") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "L"))
	}
	return name
}
