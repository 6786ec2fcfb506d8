package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunker_Chunk(t *testing.T) {
	t.Run("should keep short text in one chunk", func(t *testing.T) {
		c := NewTextChunker(100, 0)

		assert.Equal(t, []string{"first\n\nsecond"}, c.Chunk("first\n\n\n\nsecond"))
	})

	t.Run("should never exceed the max size", func(t *testing.T) {
		c := NewTextChunker(50, 0)
		text := strings.Repeat("Go developers write services. ", 20) + "\n\n" + strings.Repeat("x", 120)

		chunks := c.Chunk(text)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
		}
	})

	t.Run("should carry overlap into the next chunk", func(t *testing.T) {
		c := NewTextChunker(25, 5)

		chunks := c.Chunk("aaaaaaaaaaaaaaa\n\nbbbbbbbbbbbbbbb")
		require.Len(t, chunks, 2)
		assert.True(t, strings.HasPrefix(chunks[1], "aaaaa"))
	})

	t.Run("should return nothing for blank text", func(t *testing.T) {
		assert.Empty(t, NewTextChunker(10, 0).Chunk(" \n\n "))
	})
}

func TestSplitIntoSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two!", "Three"}, splitIntoSentences("One. Two! Three"))
}
