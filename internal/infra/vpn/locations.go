package vpn

import (
	"regexp"
	"strings"
)

// tokenPattern matches a plain location token. Digits and dots rule out
// version-string artifacts.
var tokenPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z_]*$`)

// ParseLocations extracts location tokens from a raw listing. The CLI mixes
// the actual comma-separated tokens with banner lines (update notices,
// feature ads); a line counts only if every comma-separated entry on it is
// a plain token. Duplicates are dropped, first-appearance order kept.
func ParseLocations(raw string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entries := strings.Split(line, ",")
		tokens := make([]string, 0, len(entries))
		noise := false
		for _, e := range entries {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if !tokenPattern.MatchString(e) {
				noise = true
				break
			}
			tokens = append(tokens, e)
		}
		if noise {
			continue
		}

		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
