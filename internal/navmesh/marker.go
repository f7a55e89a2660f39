package navmesh

import (
	"strings"

	"golang.org/x/text/cases"
)

// IsMarker reports whether label contains Marker, ignoring case.
func IsMarker(label string) bool {
	return strings.Contains(cases.Fold().String(label), Marker)
}
