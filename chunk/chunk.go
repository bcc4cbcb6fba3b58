// Package chunk splits page Markdown into overlapping, paragraph-aware
// chunks sized for embedding.
package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docqa"
)

// Default sizing, in characters. 3000 characters is roughly 768 tokens.
const (
	DefaultSize    = 3000
	DefaultOverlap = 0.1
)

// Ensure Chunker implements docqa.Chunker at compile time.
var _ docqa.Chunker = (*Chunker)(nil)

// Chunker packs paragraphs into windows of at most Size characters.
// Paragraphs longer than Size are split on sentence boundaries, and only a
// sentence longer than Size is hard-split. Consecutive chunks share whole
// trailing units worth up to Overlap × Size characters.
type Chunker struct {
	size    int
	overlap float64
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the maximum chunk size. Values below 1 are ignored.
func WithSize(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithOverlap sets the overlap fraction. Values outside [0, 1) are ignored.
func WithOverlap(f float64) Option {
	return func(c *Chunker) {
		if f >= 0 && f < 1 {
			c.overlap = f
		}
	}
}

// NewChunker creates a Chunker with DefaultSize and DefaultOverlap unless
// overridden.
func NewChunker(opts ...Option) *Chunker {
	c := &Chunker{size: DefaultSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// unit is an indivisible piece of text: a paragraph, a sentence, or a hard
// split of an over-long sentence.
type unit struct {
	text   string
	offset int  // byte offset in the normalized page text
	para   bool // starts a paragraph
}

// Chunk splits the page content into ordered chunks. Empty content yields
// no chunks.
func (c *Chunker) Chunk(page *docqa.Page) []*docqa.Chunk {
	text := Normalize(page.Content)
	if text == "" {
		return nil
	}
	sections := docqa.ExtractSections(text)

	var units []unit
	for _, p := range paragraphs(text) {
		units = append(units, c.split(p)...)
	}

	var (
		chunks   []*docqa.Chunk
		cur      []unit
		firstNew int // index in cur of the first unit not carried over
	)
	emit := func() {
		pos := len(chunks)
		chunks = append(chunks, &docqa.Chunk{
			ID:        docqa.ChunkID(page.URL, pos),
			SourceURL: page.URL,
			Title:     page.Title,
			Heading:   docqa.HeadingAt(sections, cur[firstNew].offset),
			Content:   join(cur),
			Position:  pos,
		})
	}

	for _, u := range units {
		if len(cur) > 0 && joinedLen(append(cur, u)) > c.size {
			emit()
			cur = c.tail(cur, u)
			firstNew = len(cur)
		}
		cur = append(cur, u)
	}
	if len(cur) > 0 {
		emit()
	}
	return chunks
}

// tail returns the trailing units of prev to carry into the next chunk. The
// carried units total at most overlap × size, are fewer than all of prev,
// and leave room for next.
func (c *Chunker) tail(prev []unit, next unit) []unit {
	budget := int(c.overlap * float64(c.size))
	start := len(prev)
	for start > 1 {
		if joinedLen(prev[start-1:]) > budget {
			break
		}
		start--
	}
	carried := append([]unit(nil), prev[start:]...)
	for len(carried) > 0 && joinedLen(append(carried, next)) > c.size {
		carried = carried[1:]
	}
	return carried
}

// split breaks an over-long paragraph into sentences, hard-splitting any
// sentence that is still too long.
func (c *Chunker) split(p unit) []unit {
	if utf8.RuneCountInString(p.text) <= c.size {
		return []unit{p}
	}
	var out []unit
	for _, s := range sentences(p) {
		if utf8.RuneCountInString(s.text) <= c.size {
			out = append(out, s)
			continue
		}
		out = append(out, hardSplit(s, c.size)...)
	}
	if len(out) > 0 {
		out[0].para = true
	}
	return out
}

// paragraphs splits text on blank lines. Fenced code blocks are kept whole
// even when they contain blank lines.
func paragraphs(text string) []unit {
	var (
		out     []unit
		start   = -1
		inFence bool
		offset  int
	)
	flush := func(end int) {
		if start >= 0 {
			out = append(out, unit{text: strings.TrimRight(text[start:end], "\n"), offset: start, para: true})
			start = -1
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if trimmed == "" && !inFence {
			flush(offset)
		} else if start < 0 {
			start = offset
		}
		offset += len(line)
	}
	flush(len(text))
	return out
}

// sentences splits p after '.', '!' or '?' followed by whitespace.
func sentences(p unit) []unit {
	var out []unit
	s := p.text
	begin := 0
	for i := 0; i < len(s)-1; i++ {
		if (s[i] == '.' || s[i] == '!' || s[i] == '?') && isSpace(s[i+1]) {
			out = appendTrimmed(out, s, begin, i+1, p.offset)
			begin = i + 1
		}
	}
	return appendTrimmed(out, s, begin, len(s), p.offset)
}

// hardSplit cuts s into pieces of at most size characters, breaking at the
// last whitespace in the window when it lies in the second half.
func hardSplit(s unit, size int) []unit {
	var out []unit
	text := s.text
	begin := 0
	for utf8.RuneCountInString(text[begin:]) > size {
		end := begin
		for range size {
			_, w := utf8.DecodeRuneInString(text[end:])
			end += w
		}
		if sp := strings.LastIndexAny(text[begin:end], " \t\n"); sp > 0 &&
			utf8.RuneCountInString(text[begin:begin+sp]) > size/2 {
			end = begin + sp
		}
		out = appendTrimmed(out, text, begin, end, s.offset)
		begin = end
	}
	return appendTrimmed(out, text, begin, len(text), s.offset)
}

// appendTrimmed appends s[begin:end] with surrounding whitespace removed,
// keeping the offset of the first retained byte. Blank pieces are dropped.
func appendTrimmed(out []unit, s string, begin, end, base int) []unit {
	piece := s[begin:end]
	lead := len(piece) - len(strings.TrimLeft(piece, " \t\n"))
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return out
	}
	return append(out, unit{text: piece, offset: base + begin + lead})
}

// join concatenates units, separating paragraphs with a blank line and
// sentences with a space.
func join(units []unit) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteString(separator(u))
		}
		b.WriteString(u.text)
	}
	return b.String()
}

// joinedLen is the character count of join(units) without building the
// string.
func joinedLen(units []unit) int {
	n := 0
	for i, u := range units {
		if i > 0 {
			n += len(separator(u))
		}
		n += utf8.RuneCountInString(u.text)
	}
	return n
}

func separator(u unit) string {
	if u.para {
		return "\n\n"
	}
	return " "
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}
