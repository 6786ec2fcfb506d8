package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alfredoptarigan/resume-critic/internal/models"
)

const (
	AnalyzeRequestMessage  = "Please help to analyze my resume."
	ReviseRequestMessage   = "Please help to revise my resume based on the analysis."
	ResumeNotFoundMessage  = "Resume not found. Please upload the resume first before I can perform analysis."
	CritiqueMissingMessage = "Please analyze your resume before requesting a revision."
	InvalidFileMessage     = "Please upload a valid .pdf or .docx file"
	InvalidResumeMessage   = "Please upload a valid .pdf resume"
	TimeoutMessage         = "The assistant took too long to respond. Please try again."
	RateLimitedMessage     = "The assistant is receiving too many requests. Please wait a moment and try again."
	UnavailableMessage     = "The assistant is currently unavailable. Please try again later."
	CritiqueFailedMessage  = "The resume analysis could not be completed. Please try again."
	RevisionFailedMessage  = "The resume revision could not be completed. Please try again."
	RenderFailedMessage    = "The resume pages could not be rendered. Please upload a different PDF."
	SessionNotFoundMessage = "Session not found. Please start a new session."
	SessionBusyMessage     = "Your previous request is still being processed."
	TurnInFlightMessage    = "Please wait for the reply to your previous message."
	EmptyMessageMessage    = "Please type a message."
	InvalidModeMessage     = "Please choose a job description mode: file, text or url."
	UnexpectedErrorMessage = "Something went wrong. Please try again."
)

var errEmptyMessage = fmt.Errorf("%w: empty message", ErrInputMissing)

// RunRecorder stores audit records of analyses and revisions.
type RunRecorder interface {
	Create(ctx context.Context, run *models.CritiqueRun) error
	Update(ctx context.Context, run *models.CritiqueRun) error
}

type AssistantConfig struct {
	Store      *SessionStore
	Normalizer DocumentNormalizer
	Rasterizer Rasterizer
	Resolver   *JobDescriptionResolver
	Critique   *CritiqueEngine
	Revision   *RevisionEngine
	Chat       TextModel
	// Recorder is optional.
	Recorder     RunRecorder
	ModelTimeout time.Duration
	Logger       zerolog.Logger
}

// Assistant runs every user interaction against a session. Each call holds
// the session for its whole duration.
type Assistant struct {
	store      *SessionStore
	normalizer DocumentNormalizer
	rasterizer Rasterizer
	resolver   *JobDescriptionResolver
	critique   *CritiqueEngine
	revision   *RevisionEngine
	chat       TextModel
	recorder   RunRecorder
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewAssistant(cfg AssistantConfig) *Assistant {
	return &Assistant{
		store:      cfg.Store,
		normalizer: cfg.Normalizer,
		rasterizer: cfg.Rasterizer,
		resolver:   cfg.Resolver,
		critique:   cfg.Critique,
		revision:   cfg.Revision,
		chat:       cfg.Chat,
		recorder:   cfg.Recorder,
		timeout:    cfg.ModelTimeout,
		logger:     cfg.Logger,
	}
}

func (a *Assistant) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *Assistant) NewSession() models.SessionResponse {
	s := a.store.Create()
	a.logger.Info().Str("session_id", s.ID.String()).Msg("🆕 Session created")
	return sessionResponse(s)
}

func (a *Assistant) GetSession(id uuid.UUID) (models.SessionResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.SessionResponse{}, err
	}
	defer release()

	return sessionResponse(s), nil
}

func (a *Assistant) DeleteSession(id uuid.UUID) error {
	if err := a.store.Delete(id); err != nil {
		return err
	}
	a.logger.Info().Str("session_id", id.String()).Msg("🗑️ Session deleted")
	return nil
}

// UploadResume replaces the session resume. On failure the previous resume
// is kept.
func (a *Assistant) UploadResume(ctx context.Context, id uuid.UUID, filename string, data []byte) (models.UploadResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.UploadResponse{}, err
	}
	defer release()

	doc, err := a.normalizer.Normalize(filename, data)
	if err != nil {
		a.logger.Warn().Err(err).Str("filename", filename).Msg("⚠️ Resume could not be parsed")
		return models.UploadResponse{}, err
	}

	images, err := a.rasterizer.Render(ctx, filename, data)
	if err != nil {
		a.logger.Warn().Err(err).Str("filename", filename).Msg("⚠️ Resume could not be rendered")
		return models.UploadResponse{}, err
	}

	s.SetResume(doc.Filename, doc.Text, images)
	a.logger.Info().
		Str("session_id", s.ID.String()).
		Str("filename", filename).
		Int("pages", len(images)).
		Int("text_chars", len(doc.Text)).
		Msg("📄 Resume uploaded")

	return models.UploadResponse{
		Filename:  doc.Filename,
		PageCount: len(images),
		TextChars: len(doc.Text),
	}, nil
}

func (a *Assistant) RemoveResume(id uuid.UUID) error {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return err
	}
	defer release()

	s.ClearResume()
	return nil
}

func (a *Assistant) SelectJobDescriptionMode(id uuid.UUID, mode JobDescriptionMode) (models.JobDescriptionResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.JobDescriptionResponse{}, err
	}
	defer release()

	s.SelectJobDescriptionMode(mode)
	return models.JobDescriptionResponse{JobDescription: s.JobDescription(), Success: true}, nil
}

// JobDescriptionFromFile replaces the job description with the file text.
// A file that cannot be read clears the job description.
func (a *Assistant) JobDescriptionFromFile(id uuid.UUID, filename string, data []byte) (models.JobDescriptionResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.JobDescriptionResponse{}, err
	}
	defer release()

	res := a.resolver.FromFile(filename, data)
	if !res.Success {
		s.SetJobDescription(JobDescriptionModeFile, "")
		return models.JobDescriptionResponse{JobDescription: InvalidFileMessage}, res.Err
	}

	s.SetJobDescription(JobDescriptionModeFile, res.Text)
	return models.JobDescriptionResponse{JobDescription: res.Text, Success: true}, nil
}

// JobDescriptionFromText refines free text into a job description. A failed
// resolution leaves the current job description untouched.
func (a *Assistant) JobDescriptionFromText(ctx context.Context, id uuid.UUID, text string) (models.JobDescriptionResponse, error) {
	return a.resolveJobDescription(ctx, id, JobDescriptionModeText, func(ctx context.Context) Resolution {
		return a.resolver.FromText(ctx, text)
	})
}

// JobDescriptionFromURL extracts the job description of a posting. A failed
// resolution leaves the current job description untouched.
func (a *Assistant) JobDescriptionFromURL(ctx context.Context, id uuid.UUID, rawURL string) (models.JobDescriptionResponse, error) {
	return a.resolveJobDescription(ctx, id, JobDescriptionModeURL, func(ctx context.Context) Resolution {
		return a.resolver.FromURL(ctx, rawURL)
	})
}

func (a *Assistant) resolveJobDescription(ctx context.Context, id uuid.UUID, mode JobDescriptionMode, resolve func(context.Context) Resolution) (models.JobDescriptionResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.JobDescriptionResponse{}, err
	}
	defer release()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res := resolve(ctx)
	if !res.Success {
		return models.JobDescriptionResponse{JobDescription: res.Text}, res.Err
	}

	s.SetJobDescription(mode, res.Text)
	a.logger.Info().Str("session_id", s.ID.String()).Str("mode", string(mode)).Int("chars", len(res.Text)).Msg("📋 Job description set")
	return models.JobDescriptionResponse{JobDescription: res.Text, Success: true}, nil
}

func (a *Assistant) ClearJobDescription(id uuid.UUID) error {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return err
	}
	defer release()

	s.ClearJobDescription()
	return nil
}

// Analyze critiques the session resume. The reply is always recorded in the
// conversation; only a complete critique becomes the basis for revisions.
func (a *Assistant) Analyze(ctx context.Context, id uuid.UUID) (models.AnalyzeResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.AnalyzeResponse{}, err
	}
	defer release()

	conv := s.Conversation()
	if err := conv.AppendUser(AnalyzeRequestMessage); err != nil {
		return models.AnalyzeResponse{}, err
	}

	if !s.HasResume() {
		if err := conv.AppendAssistant(ResumeNotFoundMessage); err != nil {
			return models.AnalyzeResponse{}, err
		}
		return analyzeResponse(s, models.CritiqueResult{}, nil), fmt.Errorf("%w: no resume uploaded", ErrInputMissing)
	}

	run := a.startRun(ctx, s, models.RunKindCritique)

	modelCtx, cancel := a.withTimeout(ctx)
	result, critiqueErr := a.critique.Critique(modelCtx, s.ResumeText(), s.ResumeImages(), s.JobDescription())
	cancel()

	var reply string
	switch {
	case critiqueErr == nil:
		reply = FormatCritique(result)
		s.SetLastCritique(reply)
	case result.ContentErr == nil || result.LayoutErr == nil:
		reply = FormatCritique(result)
	default:
		reply = UserMessage(critiqueErr)
	}

	if err := conv.AppendAssistant(reply); err != nil {
		return models.AnalyzeResponse{}, err
	}

	a.finishCritiqueRun(ctx, run, result, critiqueErr)
	return analyzeResponse(s, result, critiqueErr), critiqueErr
}

// Revise rewrites the resume from the last complete critique. Nothing is
// recorded in the conversation unless the revision succeeds.
func (a *Assistant) Revise(ctx context.Context, id uuid.UUID, extraInstructions string) (models.ReviseResponse, error) {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.ReviseResponse{}, err
	}
	defer release()

	if !s.HasResume() {
		return models.ReviseResponse{}, fmt.Errorf("%w: no resume uploaded", ErrInputMissing)
	}
	if s.LastCritique() == "" {
		return models.ReviseResponse{}, fmt.Errorf("%w: %s", ErrPreconditionFailed, CritiqueMissingMessage)
	}

	conv := s.Conversation()
	request := ReviseRequestMessage
	if extra := strings.TrimSpace(extraInstructions); extra != "" {
		request += "\n\n" + extra
	}
	if err := conv.AppendUser(request); err != nil {
		return models.ReviseResponse{}, err
	}

	run := a.startRun(ctx, s, models.RunKindRevision)

	modelCtx, cancel := a.withTimeout(ctx)
	revised, err := a.revision.Revise(modelCtx, RevisionRequest{
		ResumeText:        s.ResumeText(),
		Critique:          s.LastCritique(),
		JobDescription:    s.JobDescription(),
		ExtraInstructions: extraInstructions,
	})
	cancel()

	if err != nil {
		conv.AbandonPending()
		a.finishRevisionRun(ctx, run, "", err)
		return models.ReviseResponse{}, err
	}

	if err := conv.AppendAssistant(revised); err != nil {
		return models.ReviseResponse{}, err
	}
	a.finishRevisionRun(ctx, run, revised, nil)

	pairs, _ := conv.Pairs()
	return models.ReviseResponse{Revision: revised, Messages: pairs}, nil
}

// Chat answers a free-form message with the whole conversation as context.
// A failed reply drops the message from the conversation.
func (a *Assistant) Chat(ctx context.Context, id uuid.UUID, message string) (models.ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ChatResponse{}, errEmptyMessage
	}

	s, release, err := a.store.Acquire(id)
	if err != nil {
		return models.ChatResponse{}, err
	}
	defer release()

	conv := s.Conversation()
	if err := conv.AppendUser(message); err != nil {
		return models.ChatResponse{}, err
	}

	modelCtx, cancel := a.withTimeout(ctx)
	reply, err := a.chat.Chat(modelCtx, conv.Turns())
	cancel()

	if err != nil {
		conv.AbandonPending()
		err = classifyModelError(err)
		a.logger.Error().Err(err).Str("session_id", s.ID.String()).Msg("❌ Chat reply failed")
		return models.ChatResponse{}, err
	}

	if err := conv.AppendAssistant(reply); err != nil {
		return models.ChatResponse{}, err
	}

	pairs, _ := conv.Pairs()
	return models.ChatResponse{Reply: reply, Messages: pairs}, nil
}

// ResetConversation keeps only the system turn. The last critique stays
// available for revisions.
func (a *Assistant) ResetConversation(id uuid.UUID) error {
	s, release, err := a.store.Acquire(id)
	if err != nil {
		return err
	}
	defer release()

	s.Conversation().Reset()
	return nil
}

func (a *Assistant) startRun(ctx context.Context, s *Session, kind models.RunKind) *models.CritiqueRun {
	if a.recorder == nil {
		return nil
	}

	run := &models.CritiqueRun{
		ID:                uuid.New(),
		SessionID:         s.ID,
		Kind:              kind,
		Status:            models.RunStatusProcessing,
		HasJobDescription: s.JobDescription() != "",
	}
	if err := a.recorder.Create(ctx, run); err != nil {
		a.logger.Warn().Err(err).Str("kind", string(kind)).Msg("⚠️ Failed to record run")
		return nil
	}
	return run
}

func (a *Assistant) finishCritiqueRun(ctx context.Context, run *models.CritiqueRun, result models.CritiqueResult, err error) {
	if run == nil {
		return
	}

	run.Status = models.RunStatusCompleted
	if result.ContentErr == nil && result.ContentCritique != "" {
		run.ContentCritique = &result.ContentCritique
	}
	if result.LayoutErr == nil && result.LayoutCritique != "" {
		run.LayoutCritique = &result.LayoutCritique
	}
	if err != nil {
		run.Status = models.RunStatusFailed
		if run.ContentCritique != nil || run.LayoutCritique != nil {
			run.Status = models.RunStatusPartial
		}
		msg := err.Error()
		run.ErrorMessage = &msg
	}
	a.updateRun(ctx, run)
}

func (a *Assistant) finishRevisionRun(ctx context.Context, run *models.CritiqueRun, revised string, err error) {
	if run == nil {
		return
	}

	run.Status = models.RunStatusCompleted
	if err != nil {
		run.Status = models.RunStatusFailed
		msg := err.Error()
		run.ErrorMessage = &msg
	} else {
		run.Revision = &revised
	}
	a.updateRun(ctx, run)
}

func (a *Assistant) updateRun(ctx context.Context, run *models.CritiqueRun) {
	if err := a.recorder.Update(context.WithoutCancel(ctx), run); err != nil {
		a.logger.Warn().Err(err).Str("run_id", run.ID.String()).Msg("⚠️ Failed to update run record")
	}
}

// UserMessage maps err onto the fixed message shown to the user. Vendor
// error details never appear in it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound):
		return SessionNotFoundMessage
	case errors.Is(err, ErrSessionBusy):
		return SessionBusyMessage
	case errors.Is(err, ErrTurnInFlight):
		return TurnInFlightMessage
	case errors.Is(err, errEmptyMessage):
		return EmptyMessageMessage
	case errors.Is(err, errInvalidMode):
		return InvalidModeMessage
	case errors.Is(err, ErrPreconditionFailed):
		return CritiqueMissingMessage
	case errors.Is(err, ErrInputMissing):
		return ResumeNotFoundMessage
	case errors.Is(err, ErrRenderFailed):
		return RenderFailedMessage
	case errors.Is(err, ErrUnsupportedFormat):
		return InvalidFileMessage
	case errors.Is(err, ErrTimeout):
		return TimeoutMessage
	case errors.Is(err, ErrRateLimited):
		return RateLimitedMessage
	case errors.Is(err, ErrModelUnavailable):
		return UnavailableMessage
	case errors.Is(err, ErrExtractionFailed):
		return InvalidJobDescriptionMessage
	case errors.Is(err, ErrCritiqueFailed):
		return CritiqueFailedMessage
	case errors.Is(err, ErrRevisionFailed):
		return RevisionFailedMessage
	}
	return UnexpectedErrorMessage
}

func sessionResponse(s *Session) models.SessionResponse {
	conv := s.Conversation()
	pairs, _ := conv.Pairs()
	if pairs == nil {
		pairs = []models.TurnPair{}
	}

	return models.SessionResponse{
		ID:                 s.ID.String(),
		ResumeFilename:     s.ResumeFilename(),
		HasResume:          s.HasResume(),
		ResumePageCount:    len(s.ResumeImages()),
		JobDescription:     s.JobDescription(),
		JobDescriptionMode: string(s.JobDescriptionMode()),
		LastCritique:       s.LastCritique(),
		Messages:           pairs,
		Pending:            conv.Awaiting(),
		CreatedAt:          s.CreatedAt,
	}
}

func analyzeResponse(s *Session, result models.CritiqueResult, err error) models.AnalyzeResponse {
	pairs, _ := s.Conversation().Pairs()
	return models.AnalyzeResponse{
		ContentCritique: result.ContentCritique,
		LayoutCritique:  result.LayoutCritique,
		FailedPaths:     pathNames(FailedPaths(err)),
		Messages:        pairs,
	}
}
