package chunk

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares page text for chunking: Unicode NFC, LF line endings,
// no trailing whitespace on lines, at most one blank line in a row, and no
// leading or trailing blank lines.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}
