package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type RevisionRequest struct {
	ResumeText        string
	Critique          string
	JobDescription    string
	ExtraInstructions string
}

// RevisionEngine rewrites a resume from its critique. The model output is
// returned verbatim.
type RevisionEngine struct {
	editor        TextModel
	promptBuilder *PromptBuilder
	logger        zerolog.Logger
}

func NewRevisionEngine(editor TextModel, logger zerolog.Logger) *RevisionEngine {
	return &RevisionEngine{
		editor:        editor,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}
}

func (e *RevisionEngine) Revise(ctx context.Context, req RevisionRequest) (string, error) {
	prompt := e.promptBuilder.BuildRevisionPrompt(req.ResumeText, req.Critique, req.JobDescription, req.ExtraInstructions)

	e.logger.Info().Bool("job_description", req.JobDescription != "").Int("prompt_chars", len(prompt)).Msg("✍️ Revising resume")

	revised, err := e.editor.Complete(ctx, prompt)
	if err != nil {
		err = classifyModelError(err)
		e.logger.Error().Err(err).Msg("❌ Revision failed")
		if errors.Is(err, ErrTimeout) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrRevisionFailed, err)
	}
	return revised, nil
}
