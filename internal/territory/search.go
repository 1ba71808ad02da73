package territory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query narrows a territory listing. Zero values match everything.
type Query struct {
	Text   string
	Status *Status
	Region string
}

// Search applies q to ts, preserving order. Text matches within names and
// département codes ignoring case and accents ("merignac" finds MÉRIGNAC,
// "2a" finds 2A).
func Search(ts []Territory, q Query) []Territory {
	needle := Fold(strings.TrimSpace(q.Text))
	region := Fold(strings.TrimSpace(q.Region))

	out := make([]Territory, 0, len(ts))
	for _, t := range ts {
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		if region != "" && Fold(t.Region) != region {
			continue
		}
		if needle != "" && !strings.Contains(Fold(t.Name), needle) && !strings.Contains(Fold(t.Departement), needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Fold lowercases s and strips combining marks.
func Fold(s string) string {
	// transform.Chain keeps state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
