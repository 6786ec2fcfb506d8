package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVisibleText(t *testing.T) {
	t.Run("should drop scripts and navigation", func(t *testing.T) {
		text := ExtractVisibleText(jobPage)

		assert.Contains(t, text, "Backend Engineer")
		assert.Contains(t, text, "Build Go services on Postgres.")
		assert.NotContains(t, text, "track()")
		assert.NotContains(t, text, "Careers")
		assert.NotContains(t, text, "Jobs")
	})

	t.Run("should separate block elements", func(t *testing.T) {
		text := ExtractVisibleText("<ul><li>Go</li><li>SQL</li></ul>")

		assert.NotContains(t, text, "GoSQL")
	})

	t.Run("should keep plain text", func(t *testing.T) {
		assert.Equal(t, "just text", ExtractVisibleText("just text"))
	})
}
