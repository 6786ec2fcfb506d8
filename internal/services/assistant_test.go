package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-critic/internal/models"
)

type memoryRecorder struct {
	mu   sync.Mutex
	runs map[uuid.UUID]models.CritiqueRun
}

func (r *memoryRecorder) Create(_ context.Context, run *models.CritiqueRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runs == nil {
		r.runs = map[uuid.UUID]models.CritiqueRun{}
	}
	r.runs[run.ID] = *run
	return nil
}

func (r *memoryRecorder) Update(ctx context.Context, run *models.CritiqueRun) error {
	return r.Create(ctx, run)
}

func (r *memoryRecorder) only(t *testing.T) models.CritiqueRun {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.runs, 1)
	for _, run := range r.runs {
		return run
	}
	return models.CritiqueRun{}
}

type assistantFixture struct {
	assistant  *Assistant
	store      *SessionStore
	content    *stubTextModel
	layout     *stubVisionModel
	editor     *stubTextModel
	chat       *stubTextModel
	extraction *stubTextModel
	fetcher    *stubFetcher
	recorder   *memoryRecorder
}

func newAssistantFixture(t *testing.T) *assistantFixture {
	t.Helper()

	f := &assistantFixture{
		store:      NewSessionStore(ChatbotSystemPrompt),
		content:    &stubTextModel{complete: replyWith("Strong Go experience.")},
		layout:     &stubVisionModel{reply: visionReply("Clean single column.")},
		editor:     &stubTextModel{complete: replyWith("# Jane Doe (revised)")},
		chat:       &stubTextModel{chat: func(context.Context, []models.Turn) (string, error) { return "Happy to help.", nil }},
		extraction: extractionModel(),
		fetcher:    &stubFetcher{pages: map[string]string{"https://example.com/job": jobPage}},
		recorder:   &memoryRecorder{},
	}

	logger := zerolog.Nop()
	normalizer := NewDocumentNormalizer()
	f.assistant = NewAssistant(AssistantConfig{
		Store:        f.store,
		Normalizer:   normalizer,
		Rasterizer:   &stubRasterizer{},
		Resolver:     NewJobDescriptionResolver(normalizer, f.fetcher, f.extraction, logger),
		Critique:     NewCritiqueEngine(f.content, f.layout, nil, logger),
		Revision:     NewRevisionEngine(f.editor, logger),
		Chat:         f.chat,
		Recorder:     f.recorder,
		ModelTimeout: time.Second,
		Logger:       logger,
	})
	return f
}

func (f *assistantFixture) session(t *testing.T, id uuid.UUID) *Session {
	t.Helper()
	s, release, err := f.store.Acquire(id)
	require.NoError(t, err)
	release()
	return s
}

func (f *assistantFixture) uploadResume(t *testing.T, id uuid.UUID) {
	t.Helper()
	_, err := f.assistant.UploadResume(context.Background(), id, "resume.pdf", buildPDF(t, "Jane Doe", "Experience"))
	require.NoError(t, err)
}

func TestAssistant_UploadResume(t *testing.T) {
	t.Run("should store text and one image per page", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		resp, err := f.assistant.UploadResume(context.Background(), id, "resume.pdf", buildPDF(t, "Jane Doe", "Experience"))
		require.NoError(t, err)

		s := f.session(t, id)
		assert.Equal(t, 2, resp.PageCount)
		assert.Len(t, s.ResumeImages(), 2)
		assert.NotEmpty(t, s.ResumeText())
		assert.Equal(t, "resume.pdf", s.ResumeFilename())
	})

	t.Run("should keep the previous resume when an upload fails", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)

		_, err := f.assistant.UploadResume(context.Background(), id, "photo.png", []byte("png"))

		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Equal(t, InvalidFileMessage, UserMessage(err))
		assert.True(t, f.session(t, id).HasResume())
	})

	t.Run("should reject docx resumes it cannot render", func(t *testing.T) {
		f := newAssistantFixture(t)
		f.assistant.rasterizer = NewPdftoppmRasterizer("", 0, nil)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		_, err := f.assistant.UploadResume(context.Background(), id, "resume.docx", buildDocx(t, "Jane Doe"))

		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.False(t, f.session(t, id).HasResume())
	})

	t.Run("should clear the resume on removal", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)

		require.NoError(t, f.assistant.RemoveResume(id))

		assert.False(t, f.session(t, id).HasResume())
	})
}

func TestAssistant_JobDescription(t *testing.T) {
	t.Run("should resolve free text with a referenced url", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		resp, err := f.assistant.JobDescriptionFromText(context.Background(), id, "Looking for a backend engineer, see https://example.com/job")
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Contains(t, resp.JobDescription, "Requirements: Go, Postgres.")
		s := f.session(t, id)
		assert.Equal(t, resp.JobDescription, s.JobDescription())
		assert.Equal(t, JobDescriptionModeText, s.JobDescriptionMode())
	})

	t.Run("should keep the job description when a url fails", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		_, err := f.assistant.JobDescriptionFromURL(context.Background(), id, "https://example.com/job")
		require.NoError(t, err)

		resp, err := f.assistant.JobDescriptionFromURL(context.Background(), id, "https://example.com/gone")

		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.False(t, resp.Success)
		assert.Equal(t, URLExtractionFailedMessage, resp.JobDescription)
		assert.Contains(t, f.session(t, id).JobDescription(), "Backend Engineer")
	})

	t.Run("should clear the job description when a file fails", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		_, err := f.assistant.JobDescriptionFromFile(id, "job.docx", buildDocx(t, "Staff Engineer"))
		require.NoError(t, err)

		resp, err := f.assistant.JobDescriptionFromFile(id, "job.txt", []byte("x"))

		assert.Error(t, err)
		assert.Equal(t, InvalidFileMessage, resp.JobDescription)
		assert.Empty(t, f.session(t, id).JobDescription())
	})

	t.Run("should clear the job description when switching mode", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		_, err := f.assistant.JobDescriptionFromFile(id, "job.docx", buildDocx(t, "Staff Engineer"))
		require.NoError(t, err)

		resp, err := f.assistant.SelectJobDescriptionMode(id, JobDescriptionModeURL)
		require.NoError(t, err)

		assert.Empty(t, resp.JobDescription)
	})

	t.Run("should clear the job description on request", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		_, err := f.assistant.JobDescriptionFromFile(id, "job.docx", buildDocx(t, "Staff Engineer"))
		require.NoError(t, err)

		require.NoError(t, f.assistant.ClearJobDescription(id))

		assert.Empty(t, f.session(t, id).JobDescription())
	})
}

func TestAssistant_Analyze(t *testing.T) {
	t.Run("should report a missing resume in the conversation", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		resp, err := f.assistant.Analyze(context.Background(), id)

		assert.ErrorIs(t, err, ErrInputMissing)
		turns := f.session(t, id).Conversation().Turns()
		require.Len(t, turns, 3)
		assert.Equal(t, models.Turn{Role: models.RoleUser, Content: AnalyzeRequestMessage}, turns[1])
		assert.Equal(t, models.Turn{Role: models.RoleAssistant, Content: ResumeNotFoundMessage}, turns[2])
		assert.Equal(t, []models.TurnPair{{User: AnalyzeRequestMessage, Assistant: ResumeNotFoundMessage}}, resp.Messages)
		assert.Empty(t, f.content.Prompts())
	})

	t.Run("should record a combined critique", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)

		resp, err := f.assistant.Analyze(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, "Strong Go experience.", resp.ContentCritique)
		assert.Equal(t, "Clean single column.", resp.LayoutCritique)
		assert.Empty(t, resp.FailedPaths)

		s := f.session(t, id)
		want := "# Content Analysis\nStrong Go experience.\n\n\n# Layout Analysis\nClean single column.\n"
		assert.Equal(t, want, s.LastCritique())
		assert.Equal(t, want, resp.Messages[0].Assistant)

		run := f.recorder.only(t)
		assert.Equal(t, models.RunStatusCompleted, run.Status)
		assert.Equal(t, models.RunKindCritique, run.Kind)
		assert.Equal(t, s.ID, run.SessionID)
	})

	t.Run("should report a partial critique", func(t *testing.T) {
		f := newAssistantFixture(t)
		f.layout.reply = func(context.Context, []models.Turn, []models.Image) (string, error) {
			return "", errors.New("vision down")
		}
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)

		resp, err := f.assistant.Analyze(context.Background(), id)

		assert.ErrorIs(t, err, ErrCritiqueFailed)
		assert.Equal(t, []string{"layout"}, resp.FailedPaths)
		assert.Equal(t, "Strong Go experience.", resp.ContentCritique)
		assert.Contains(t, resp.Messages[0].Assistant, "layout analysis could not be generated")
		assert.Empty(t, f.session(t, id).LastCritique())
		assert.Equal(t, models.RunStatusPartial, f.recorder.only(t).Status)
	})

	t.Run("should name the path that returned a blank critique", func(t *testing.T) {
		f := newAssistantFixture(t)
		f.content.complete = replyWith("")
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)

		resp, err := f.assistant.Analyze(context.Background(), id)

		assert.ErrorIs(t, err, ErrCritiqueFailed)
		assert.Equal(t, []string{"content"}, resp.FailedPaths)
		assert.Equal(t, "Clean single column.", resp.LayoutCritique)
		assert.Contains(t, resp.Messages[0].Assistant, "content analysis could not be generated")
		assert.Empty(t, f.session(t, id).LastCritique())
		assert.Equal(t, models.RunStatusPartial, f.recorder.only(t).Status)
	})

	t.Run("should report a timeout", func(t *testing.T) {
		f := newAssistantFixture(t)
		f.assistant.timeout = 20 * time.Millisecond
		f.content.complete = func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}
		f.layout.reply = blockUntilDone
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)

		resp, err := f.assistant.Analyze(context.Background(), id)

		assert.ErrorIs(t, err, ErrTimeout)
		assert.NotErrorIs(t, err, ErrCritiqueFailed)
		assert.Equal(t, TimeoutMessage, resp.Messages[0].Assistant)
		assert.Equal(t, models.RunStatusFailed, f.recorder.only(t).Status)
	})
}

func TestAssistant_Revise(t *testing.T) {
	t.Run("should require a critique without touching the conversation", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)
		before := f.session(t, id).Conversation().Turns()

		_, err := f.assistant.Revise(context.Background(), id, "")

		assert.ErrorIs(t, err, ErrPreconditionFailed)
		assert.Equal(t, CritiqueMissingMessage, UserMessage(err))
		assert.Equal(t, before, f.session(t, id).Conversation().Turns())
		assert.Empty(t, f.editor.Prompts())
	})

	t.Run("should require a resume", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		_, err := f.assistant.Revise(context.Background(), id, "")

		assert.ErrorIs(t, err, ErrInputMissing)
		assert.Len(t, f.session(t, id).Conversation().Turns(), 1)
	})

	t.Run("should revise from the last critique", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)
		_, err := f.assistant.Analyze(context.Background(), id)
		require.NoError(t, err)

		resp, err := f.assistant.Revise(context.Background(), id, "Target staff roles.")
		require.NoError(t, err)

		assert.Equal(t, "# Jane Doe (revised)", resp.Revision)
		require.Len(t, resp.Messages, 2)
		assert.Equal(t, "# Jane Doe (revised)", resp.Messages[1].Assistant)
		prompt := f.editor.Prompts()[0]
		assert.Contains(t, prompt, "Strong Go experience.")
		assert.Contains(t, prompt, "Target staff roles.")
	})

	t.Run("should not revise a new resume from the previous critique", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)
		_, err := f.assistant.Analyze(context.Background(), id)
		require.NoError(t, err)

		_, err = f.assistant.UploadResume(context.Background(), id, "other.pdf", buildPDF(t, "John Roe"))
		require.NoError(t, err)
		_, err = f.assistant.Revise(context.Background(), id, "")

		assert.ErrorIs(t, err, ErrPreconditionFailed)
		assert.Empty(t, f.editor.Prompts())
	})

	t.Run("should not revise after the resume was removed and replaced", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)
		_, err := f.assistant.Analyze(context.Background(), id)
		require.NoError(t, err)

		require.NoError(t, f.assistant.RemoveResume(id))
		f.uploadResume(t, id)
		_, err = f.assistant.Revise(context.Background(), id, "")

		assert.ErrorIs(t, err, ErrPreconditionFailed)
		assert.Empty(t, f.editor.Prompts())
	})

	t.Run("should drop the request when the revision fails", func(t *testing.T) {
		f := newAssistantFixture(t)
		f.editor.complete = failWith(errors.New("boom"))
		id := uuid.MustParse(f.assistant.NewSession().ID)
		f.uploadResume(t, id)
		_, err := f.assistant.Analyze(context.Background(), id)
		require.NoError(t, err)

		_, err = f.assistant.Revise(context.Background(), id, "")

		assert.ErrorIs(t, err, ErrRevisionFailed)
		conv := f.session(t, id).Conversation()
		assert.False(t, conv.Awaiting())
		assert.Len(t, conv.Turns(), 3)
	})
}

func TestAssistant_Chat(t *testing.T) {
	t.Run("should answer with the whole conversation", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		resp, err := f.assistant.Chat(context.Background(), id, "How long should my resume be?")
		require.NoError(t, err)

		assert.Equal(t, "Happy to help.", resp.Reply)
		require.Len(t, f.chat.chats, 1)
		sent := f.chat.chats[0]
		assert.Equal(t, models.RoleSystem, sent[0].Role)
		assert.Equal(t, "How long should my resume be?", sent[len(sent)-1].Content)
	})

	t.Run("should abandon the message when the model fails", func(t *testing.T) {
		f := newAssistantFixture(t)
		f.chat.chat = func(context.Context, []models.Turn) (string, error) {
			return "", context.DeadlineExceeded
		}
		id := uuid.MustParse(f.assistant.NewSession().ID)

		_, err := f.assistant.Chat(context.Background(), id, "hi")

		assert.ErrorIs(t, err, ErrTimeout)
		assert.Len(t, f.session(t, id).Conversation().Turns(), 1)
	})

	t.Run("should reject empty messages", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)

		_, err := f.assistant.Chat(context.Background(), id, "  ")

		assert.ErrorIs(t, err, ErrInputMissing)
		assert.Equal(t, EmptyMessageMessage, UserMessage(err))
	})

	t.Run("should reset to the system turn", func(t *testing.T) {
		f := newAssistantFixture(t)
		id := uuid.MustParse(f.assistant.NewSession().ID)
		_, err := f.assistant.Chat(context.Background(), id, "hi")
		require.NoError(t, err)

		require.NoError(t, f.assistant.ResetConversation(id))

		turns := f.session(t, id).Conversation().Turns()
		assert.Equal(t, []models.Turn{{Role: models.RoleSystem, Content: ChatbotSystemPrompt}}, turns)
	})
}

func TestAssistant_Sessions(t *testing.T) {
	f := newAssistantFixture(t)
	created := f.assistant.NewSession()
	id := uuid.MustParse(created.ID)

	got, err := f.assistant.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "file", got.JobDescriptionMode)
	assert.Empty(t, got.Messages)

	require.NoError(t, f.assistant.DeleteSession(id))
	_, err = f.assistant.GetSession(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, SessionNotFoundMessage, UserMessage(err))
}
