package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits long text into pieces no longer than maxSize runes,
// preferring paragraph then sentence boundaries.
type TextChunker struct {
	maxSize int
	overlap int
}

func NewTextChunker(maxSize, overlap int) *TextChunker {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}
	return &TextChunker{maxSize: maxSize, overlap: overlap}
}

func (tc *TextChunker) Chunk(text string) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	add := func(piece, sep string) {
		pieceLen := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+len(sep)+pieceLen > tc.maxSize {
			chunks = append(chunks, current.String())
			tail := lastNRunes(current.String(), tc.overlap)
			current.Reset()
			currentLen = 0

			tailLen := utf8.RuneCountInString(tail)
			if tail != "" && tailLen+len(sep)+pieceLen <= tc.maxSize {
				current.WriteString(tail)
				currentLen = tailLen
			}
		}
		if currentLen > 0 {
			current.WriteString(sep)
			currentLen += len(sep)
		}
		current.WriteString(piece)
		currentLen += pieceLen
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= tc.maxSize {
			add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range splitRunes(sentence, tc.maxSize) {
				add(piece, " ")
			}
		}
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitIntoSentences splits after '.', '!' and '?', keeping the punctuation.
func splitIntoSentences(text string) []string {
	var result []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				result = append(result, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

// splitRunes cuts s into pieces of at most n runes.
func splitRunes(s string, n int) []string {
	runes := []rune(s)
	if len(runes) <= n {
		return []string{s}
	}
	var out []string
	for len(runes) > 0 {
		end := n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[:end]))
		runes = runes[end:]
	}
	return out
}

func lastNRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
