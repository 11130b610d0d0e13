package panel

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ParseEngine resolves a user-typed engine name. Unknown names produce an
// error with the closest known name when one is near enough.
func ParseEngine(name string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(name)))
	if e.valid() {
		return e, nil
	}
	names := make([]string, len(Engines))
	for i, known := range Engines {
		names[i] = string(known)
	}
	return "", unknownName("engine", string(e), names)
}

// ParseID resolves a panel name.
func ParseID(name string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	names := make([]string, len(IDs))
	for i, known := range IDs {
		if known == id {
			return id, nil
		}
		names[i] = string(known)
	}
	return "", unknownName("panel", string(id), names)
}

func unknownName(kind, got string, known []string) error {
	if best := closest(got, known); best != "" {
		return fmt.Errorf("unknown %s %q, did you mean %q?", kind, got, best)
	}
	return fmt.Errorf("unknown %s %q (want one of %s)", kind, got, strings.Join(known, ", "))
}

// closest returns the candidate within edit distance 3 of s, or "".
func closest(s string, candidates []string) string {
	best, bestDist := "", 4
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
