package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alfredoptarigan/resume-critic/internal/models"
)

var errEmptyCritique = fmt.Errorf("%w: model returned an empty critique", ErrModelUnavailable)

// CritiqueEngine produces the content and layout critiques of a resume.
// It holds no mutable state.
type CritiqueEngine struct {
	content       TextModel
	layout        VisionModel
	guidelines    GuidelineRetriever
	promptBuilder *PromptBuilder
	logger        zerolog.Logger
}

// NewCritiqueEngine creates the engine. guidelines may be nil.
func NewCritiqueEngine(content TextModel, layout VisionModel, guidelines GuidelineRetriever, logger zerolog.Logger) *CritiqueEngine {
	return &CritiqueEngine{
		content:       content,
		layout:        layout,
		guidelines:    guidelines,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}
}

// CritiqueContent critiques the resume text, against the job description
// when one is given.
func (e *CritiqueEngine) CritiqueContent(ctx context.Context, resumeText, jobDescription string) (string, error) {
	if strings.TrimSpace(resumeText) == "" {
		return "", fmt.Errorf("%w: resume text is empty", ErrInputMissing)
	}

	guidelines := ""
	if e.guidelines != nil {
		g, err := e.guidelines.Retrieve(ctx, resumeText)
		if err != nil {
			e.logger.Warn().Err(err).Msg("⚠️ Failed to retrieve resume guidelines")
		} else {
			guidelines = g
		}
	}

	prompt := e.promptBuilder.BuildContentCritiquePrompt(resumeText, jobDescription, guidelines)
	e.logger.Debug().Int("prompt_chars", len(prompt)).Bool("job_description", jobDescription != "").Msg("📝 Content critique prompt built")

	critique, err := e.content.Complete(ctx, prompt)
	if err != nil {
		return "", &CritiqueError{Path: CritiquePathContent, Err: classifyModelError(err)}
	}
	if strings.TrimSpace(critique) == "" {
		return "", &CritiqueError{Path: CritiquePathContent, Err: errEmptyCritique}
	}
	return critique, nil
}

// CritiqueLayout critiques the rendered resume pages.
func (e *CritiqueEngine) CritiqueLayout(ctx context.Context, images []models.Image, jobDescription string) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("%w: resume has no rendered pages", ErrInputMissing)
	}

	turns := []models.Turn{{Role: models.RoleSystem, Content: e.promptBuilder.LayoutCritiqueSystemPrompt()}}
	if jobDescription != "" {
		turns = append(turns, models.Turn{Role: models.RoleSystem, Content: e.promptBuilder.BuildLayoutJobDescription(jobDescription)})
	}
	turns = append(turns, models.Turn{Role: models.RoleUser, Content: "resume"})

	critique, err := e.layout.ChatWithImages(ctx, turns, images)
	if err != nil {
		return "", &CritiqueError{Path: CritiquePathLayout, Err: classifyModelError(err)}
	}
	if strings.TrimSpace(critique) == "" {
		return "", &CritiqueError{Path: CritiquePathLayout, Err: errEmptyCritique}
	}
	return critique, nil
}

// Critique runs both critiques concurrently. The result keeps whatever
// succeeded; the error joins one *CritiqueError per failed path.
func (e *CritiqueEngine) Critique(ctx context.Context, resumeText string, images []models.Image, jobDescription string) (models.CritiqueResult, error) {
	var (
		result models.CritiqueResult
		wg     sync.WaitGroup
	)

	start := time.Now()
	e.logger.Info().Int("pages", len(images)).Bool("job_description", jobDescription != "").Msg("🤖 Running content and layout critiques")

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.ContentCritique, result.ContentErr = e.CritiqueContent(ctx, resumeText, jobDescription)
	}()
	go func() {
		defer wg.Done()
		result.LayoutCritique, result.LayoutErr = e.CritiqueLayout(ctx, images, jobDescription)
	}()
	wg.Wait()

	err := joinCritiqueErrors(result.ContentErr, result.LayoutErr)
	if err != nil {
		e.logger.Error().Err(err).Strs("failed", pathNames(FailedPaths(err))).Msg("❌ Critique failed")
	} else {
		e.logger.Info().Dur("took", time.Since(start)).Msg("✅ Critiques completed")
	}
	return result, err
}

// FormatCritique renders the combined assistant message. Failed paths are
// replaced by a note naming them.
func FormatCritique(result models.CritiqueResult) string {
	content := result.ContentCritique
	if result.ContentErr != nil {
		content = "_The content analysis could not be generated._"
	}
	layout := result.LayoutCritique
	if result.LayoutErr != nil {
		layout = "_The layout analysis could not be generated._"
	}
	return fmt.Sprintf("# Content Analysis\n%s\n\n\n# Layout Analysis\n%s\n", content, layout)
}

func joinCritiqueErrors(contentErr, layoutErr error) error {
	var errs []error
	for _, pair := range []struct {
		path CritiquePath
		err  error
	}{{CritiquePathContent, contentErr}, {CritiquePathLayout, layoutErr}} {
		if pair.err == nil {
			continue
		}
		if _, ok := pair.err.(*CritiqueError); !ok {
			pair.err = &CritiqueError{Path: pair.path, Err: pair.err}
		}
		errs = append(errs, pair.err)
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return errors.Join(errs...)
}

func pathNames(paths []CritiquePath) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = string(p)
	}
	return names
}
