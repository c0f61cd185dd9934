// Package file backs the run-scoped stores with plain newline-delimited
// text files, so a restarted controller resumes with the same knowledge.
// This is resumability, not durability; losing a file is acceptable.
package file

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ReadLines loads a newline-delimited state file. A missing file yields a
// nil slice and no error.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// WriteLines rewrites a newline-delimited state file.
func WriteLines(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
