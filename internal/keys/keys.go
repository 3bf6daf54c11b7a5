package keys

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Canonical produces the lookup key used for dex ids and script names.
// Names are trimmed, case-folded and inner runs of spaces, underscores or
// hyphens collapse to a single hyphen, so "Thunder Bolt", "thunder_bolt"
// and "THUNDER-BOLT" all resolve to "thunder-bolt".
func Canonical(name string) string {
	s := folder.String(strings.TrimSpace(name))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.Join(fields, "-")
}
