package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("should write json at the requested level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, "warn", false)

		l.Info().Msg("hidden")
		l.Warn().Msg("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"message":"shown"`)
	})

	t.Run("should default to info on bad level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, "loud", false)

		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})
}
