package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-critic/internal/models"
)

type JobDescriptionMode string

const (
	JobDescriptionModeFile JobDescriptionMode = "file"
	JobDescriptionModeText JobDescriptionMode = "text"
	JobDescriptionModeURL  JobDescriptionMode = "url"
)

var errInvalidMode = fmt.Errorf("%w: unknown job description mode", ErrInputMissing)

func ParseJobDescriptionMode(s string) (JobDescriptionMode, error) {
	switch m := JobDescriptionMode(s); m {
	case JobDescriptionModeFile, JobDescriptionModeText, JobDescriptionModeURL:
		return m, nil
	}
	return "", fmt.Errorf("%w %q", errInvalidMode, s)
}

// Session is the mutable state of one user's interaction. Every field has
// exactly one mutation method. Access is serialized through SessionStore.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.Mutex
	lastActiveAt time.Time

	resumeFilename string
	resumeText     string
	resumeImages   []models.Image

	jobDescription     string
	jobDescriptionMode JobDescriptionMode

	conversation *Conversation
	lastCritique string
}

func NewSession(systemPrompt string) *Session {
	now := time.Now()
	return &Session{
		ID:                 uuid.New(),
		CreatedAt:          now,
		lastActiveAt:       now,
		jobDescriptionMode: JobDescriptionModeFile,
		conversation:       NewConversation(systemPrompt),
	}
}

func (s *Session) ResumeText() string                     { return s.resumeText }
func (s *Session) ResumeImages() []models.Image           { return s.resumeImages }
func (s *Session) ResumeFilename() string                 { return s.resumeFilename }
func (s *Session) JobDescription() string                 { return s.jobDescription }
func (s *Session) JobDescriptionMode() JobDescriptionMode { return s.jobDescriptionMode }
func (s *Session) Conversation() *Conversation            { return s.conversation }
func (s *Session) LastCritique() string                   { return s.lastCritique }

// HasResume reports whether both the text and the page images are present.
func (s *Session) HasResume() bool {
	return s.resumeText != "" && len(s.resumeImages) > 0
}

// SetResume replaces the résumé. A critique of the previous résumé no
// longer applies, so it is dropped.
func (s *Session) SetResume(filename, text string, images []models.Image) {
	s.resumeFilename = filename
	s.resumeText = text
	s.resumeImages = images
	s.lastCritique = ""
}

func (s *Session) ClearResume() {
	s.resumeFilename = ""
	s.resumeText = ""
	s.resumeImages = nil
	s.lastCritique = ""
}

// SetJobDescription stores a job description acquired through mode, which
// also becomes the selected mode.
func (s *Session) SetJobDescription(mode JobDescriptionMode, text string) {
	s.jobDescriptionMode = mode
	s.jobDescription = text
}

func (s *Session) ClearJobDescription() {
	s.jobDescription = ""
}

// SelectJobDescriptionMode switches the input mode; switching to another
// mode discards the current job description.
func (s *Session) SelectJobDescriptionMode(mode JobDescriptionMode) {
	if mode != s.jobDescriptionMode {
		s.jobDescription = ""
	}
	s.jobDescriptionMode = mode
}

func (s *Session) SetLastCritique(critique string) {
	s.lastCritique = critique
}

// SessionStore keeps live sessions in memory.
type SessionStore struct {
	systemPrompt string

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore(systemPrompt string) *SessionStore {
	return &SessionStore{
		systemPrompt: systemPrompt,
		sessions:     make(map[uuid.UUID]*Session),
	}
}

func (st *SessionStore) Create() *Session {
	s := NewSession(st.systemPrompt)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Acquire locks the session for the caller. It fails with ErrSessionBusy
// instead of waiting when another request holds it. release must be called.
func (st *SessionStore) Acquire(id uuid.UUID) (s *Session, release func(), err error) {
	// The store lock is held until the session is locked so EvictIdle
	// cannot remove it in between.
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	if !s.mu.TryLock() {
		return nil, nil, ErrSessionBusy
	}
	s.lastActiveAt = time.Now()

	return s, func() {
		s.lastActiveAt = time.Now()
		s.mu.Unlock()
	}, nil
}

func (st *SessionStore) Delete(id uuid.UUID) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// EvictIdle removes sessions idle since before cutoff. Sessions in use are
// kept.
func (st *SessionStore) EvictIdle(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, s := range st.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if s.lastActiveAt.Before(cutoff) {
			delete(st.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
