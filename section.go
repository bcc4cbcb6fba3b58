package docqa

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	headingRe   = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t#]*$`)
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
)

// Section represents a heading in a markdown document.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Offset int    `json:"offset"` // byte offset of the heading line
}

// ExtractSections parses markdown and returns all headings (H1-H6) in
// document order. Headings inside fenced code blocks are ignored. Anchors are
// URL-safe; duplicates get numeric suffixes.
func ExtractSections(markdown string) []Section {
	if markdown == "" {
		return nil
	}

	matches := headingRe.FindAllStringSubmatchIndex(blankCodeBlocks(markdown), -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	anchorCounts := make(map[string]int)
	for _, m := range matches {
		title := strings.TrimSpace(markdown[m[4]:m[5]])
		base := generateAnchor(title)
		anchor := base
		if n, ok := anchorCounts[base]; ok {
			anchor = base + "-" + strconv.Itoa(n)
		}
		anchorCounts[base]++

		sections = append(sections, Section{
			Level:  m[3] - m[2],
			Title:  title,
			Anchor: anchor,
			Offset: m[0],
		})
	}
	return sections
}

// HeadingAt returns the title of the last section starting at or before
// offset, or "" if none does. Sections must be in document order.
func HeadingAt(sections []Section, offset int) string {
	var title string
	for _, s := range sections {
		if s.Offset > offset {
			break
		}
		title = s.Title
	}
	return title
}

// blankCodeBlocks replaces fenced code blocks with spaces so offsets into the
// result match offsets into s.
func blankCodeBlocks(s string) string {
	return codeBlockRe.ReplaceAllStringFunc(s, func(block string) string {
		b := []byte(block)
		for i, c := range b {
			if c != '\n' {
				b[i] = ' '
			}
		}
		return string(b)
	})
}

// generateAnchor creates a URL-safe anchor from a title.
func generateAnchor(title string) string {
	var sb strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
