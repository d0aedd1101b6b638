package bank

import (
	"fmt"
	"strings"
)

// enumName returns names[i], or "unknown" when i is out of the closed set.
func enumName[E ~int](e E, names []string) string {
	if int(e) < 0 || int(e) >= len(names) {
		return "unknown"
	}
	return names[e]
}

// parseEnum finds s (case insensitive) in names.
func parseEnum[E ~int](kind, s string, names []string) (E, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return E(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s: %q, want one of %s", kind, s, strings.Join(names, ", "))
}
