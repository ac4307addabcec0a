package ingest

import "strings"

// Splitter cuts text into fixed-size overlapping windows. Within each
// window the cut point prefers, in order: paragraph break, line break,
// sentence end, word boundary. Only when none exists does it break
// mid-word. Splitting is deterministic for identical input.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the text's fragments in order. Empty and whitespace-only
// fragments are dropped.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	var fragments []string

	pos := 0
	for pos < len(runes) {
		end := pos + s.chunkSize
		if end >= len(runes) {
			if frag := strings.TrimSpace(string(runes[pos:])); frag != "" {
				fragments = append(fragments, frag)
			}
			break
		}

		cut := s.findBreak(runes, pos, end)
		if frag := strings.TrimSpace(string(runes[pos:cut])); frag != "" {
			fragments = append(fragments, frag)
		}

		next := cut - s.overlap
		if next <= pos {
			next = cut
		}
		pos = next
	}

	return fragments
}

// findBreak locates the best cut point in runes[start:limit], searching
// backwards from the window end. Never returns start (progress guarantee).
func (s *Splitter) findBreak(runes []rune, start, limit int) int {
	window := string(runes[start:limit])

	for _, sep := range []string{"\n\n", "\n"} {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + len([]rune(window[:idx+len(sep)]))
		}
	}

	// Sentence boundaries: period/question/exclamation followed by space.
	best := -1
	for _, sep := range []string{". ", "? ", "! "} {
		if idx := strings.LastIndex(window, sep); idx > best {
			best = idx + len(sep) - 1
		}
	}
	if best > 0 {
		return start + len([]rune(window[:best]))
	}

	if idx := strings.LastIndex(window, " "); idx > 0 {
		return start + len([]rune(window[:idx]))
	}

	// No boundary inside the window at all: mid-word break.
	return limit
}
