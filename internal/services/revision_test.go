package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionEngine_Revise(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("should return the model output verbatim", func(t *testing.T) {
		editor := &stubTextModel{complete: replyWith("  # Jane Doe\n")}
		engine := NewRevisionEngine(editor, logger)

		out, err := engine.Revise(context.Background(), RevisionRequest{ResumeText: "resume", Critique: "critique"})
		require.NoError(t, err)

		assert.Equal(t, "  # Jane Doe\n", out)
	})

	t.Run("should forbid invented facts without a job description", func(t *testing.T) {
		editor := &stubTextModel{complete: replyWith("ok")}
		engine := NewRevisionEngine(editor, logger)

		_, err := engine.Revise(context.Background(), RevisionRequest{ResumeText: "resume", Critique: "critique", ExtraInstructions: "Keep it to one page."})
		require.NoError(t, err)

		prompt := editor.Prompts()[0]
		assert.Contains(t, prompt, "DO NOT make up facts")
		assert.Contains(t, prompt, "Keep it to one page.")
		assert.NotContains(t, strings.ToLower(prompt), "job description")
	})

	t.Run("should include the job description when present", func(t *testing.T) {
		editor := &stubTextModel{complete: replyWith("ok")}
		engine := NewRevisionEngine(editor, logger)

		_, err := engine.Revise(context.Background(), RevisionRequest{ResumeText: "resume", Critique: "critique", JobDescription: "Platform engineer"})
		require.NoError(t, err)

		assert.Contains(t, editor.Prompts()[0], "<START OF JOB DESCRIPTION>\nPlatform engineer")
	})

	t.Run("should wrap model failures", func(t *testing.T) {
		engine := NewRevisionEngine(&stubTextModel{complete: failWith(errors.New("boom"))}, logger)

		_, err := engine.Revise(context.Background(), RevisionRequest{ResumeText: "resume", Critique: "critique"})
		assert.ErrorIs(t, err, ErrRevisionFailed)
	})

	t.Run("should report timeouts", func(t *testing.T) {
		engine := NewRevisionEngine(&stubTextModel{complete: failWith(context.DeadlineExceeded)}, logger)

		_, err := engine.Revise(context.Background(), RevisionRequest{ResumeText: "resume", Critique: "critique"})
		assert.ErrorIs(t, err, ErrTimeout)
		assert.NotErrorIs(t, err, ErrRevisionFailed)
	})
}
