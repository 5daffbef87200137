package ingest

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the largest chunk, in runes, produced by Chunk.
const DefaultMaxChunkSize = 1000

// Chunk splits a backstory into chunks on blank lines. Consecutive short
// paragraphs are merged while the result stays within maxSize runes; a
// paragraph longer than maxSize is split on line breaks, and a single line
// longer than maxSize is cut at maxSize.
func Chunk(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	var current string

	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		for _, piece := range splitLong(para, maxSize) {
			if current == "" {
				current = piece
				continue
			}
			if utf8.RuneCountInString(current)+2+utf8.RuneCountInString(piece) <= maxSize {
				current += "\n\n" + piece
				continue
			}
			flush()
			current = piece
		}
	}
	flush()

	return chunks
}

// splitLong breaks a paragraph into pieces of at most maxSize runes.
func splitLong(para string, maxSize int) []string {
	if utf8.RuneCountInString(para) <= maxSize {
		return []string{para}
	}

	var pieces []string
	var current string
	for _, line := range strings.Split(para, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for utf8.RuneCountInString(line) > maxSize {
			if current != "" {
				pieces = append(pieces, current)
				current = ""
			}
			runes := []rune(line)
			pieces = append(pieces, string(runes[:maxSize]))
			line = strings.TrimSpace(string(runes[maxSize:]))
		}
		if line == "" {
			continue
		}
		switch {
		case current == "":
			current = line
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(line) <= maxSize:
			current += "\n" + line
		default:
			pieces = append(pieces, current)
			current = line
		}
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}
