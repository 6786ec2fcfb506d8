package models

import (
	"time"

	"github.com/google/uuid"
)

type RunKind string

const (
	RunKindCritique RunKind = "critique"
	RunKindRevision RunKind = "revision"
)

type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusPartial    RunStatus = "partial"
	RunStatusFailed     RunStatus = "failed"
)

// CritiqueResult holds both critiques of one analysis. A failed path leaves
// its text empty and its error set.
type CritiqueResult struct {
	ContentCritique string `json:"content_critique"`
	LayoutCritique  string `json:"layout_critique"`
	ContentErr      error  `json:"-"`
	LayoutErr       error  `json:"-"`
}

// Complete reports whether both critiques were produced.
func (r CritiqueResult) Complete() bool {
	return r.ContentErr == nil && r.LayoutErr == nil &&
		r.ContentCritique != "" && r.LayoutCritique != ""
}

// CritiqueRun is an audit record of one analysis or revision. Rows are
// write-only: sessions are never rebuilt from them.
type CritiqueRun struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID         uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Kind              RunKind   `gorm:"type:text;not null" json:"kind"`
	Status            RunStatus `gorm:"type:text;not null;default:'processing'" json:"status"`
	HasJobDescription bool      `gorm:"not null;default:false" json:"has_job_description"`
	ContentCritique   *string   `gorm:"type:text" json:"content_critique,omitempty"`
	LayoutCritique    *string   `gorm:"type:text" json:"layout_critique,omitempty"`
	Revision          *string   `gorm:"type:text" json:"revision,omitempty"`
	ErrorMessage      *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CritiqueRun) TableName() string {
	return "critique_runs"
}
