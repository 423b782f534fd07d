package indexer

import (
	"strings"
	"unicode/utf8"
)

// Separator ladder used when a header section exceeds the oversize threshold,
// coarsest first: paragraph, line, sentence, word, and finally raw runes.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter breaks oversized text into chunks of at most chunkSize runes with
// a fixed overlap between consecutive chunks. Overlap must be strictly less
// than chunkSize; the configuration layer enforces that before a Splitter is
// ever built.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split breaks text into chunks, trying coarser separators before finer ones
// so chunk boundaries align with document structure where possible.
func (s *Splitter) Split(text string) []string {
	return s.split(strings.TrimSpace(text), s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	sep, rest := "", []string{}
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep, rest = candidate, separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	parts := strings.SplitAfter(text, sep)

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		chunk := strings.TrimSpace(buf.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		partLen := utf8.RuneCountInString(part)

		if partLen > s.chunkSize {
			flush()
			buf.Reset()
			bufLen = 0
			chunks = append(chunks, s.split(part, rest)...)
			continue
		}

		if bufLen > 0 && bufLen+partLen > s.chunkSize {
			flush()
			tail := tailRunes(buf.String(), s.overlap)
			buf.Reset()
			buf.WriteString(tail)
			bufLen = utf8.RuneCountInString(tail)
		}

		buf.WriteString(part)
		bufLen += partLen
	}
	flush()

	return chunks
}

// hardSplit is the last resort for text with no usable separators: fixed
// windows advancing by chunkSize-overlap runes.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step < 1 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func tailRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
