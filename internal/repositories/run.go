package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-critic/internal/models"
)

var ErrRunNotFound = errors.New("critique run not found")

// RunRepository writes audit records of analyses and revisions.
type RunRepository interface {
	Create(ctx context.Context, run *models.CritiqueRun) error
	Update(ctx context.Context, run *models.CritiqueRun) error
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.CritiqueRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create critique run: %w", err)
	}
	return nil
}

// Update stores the final status and outputs of a run.
func (r *runRepository) Update(ctx context.Context, run *models.CritiqueRun) error {
	updates := map[string]interface{}{
		"status":     run.Status,
		"updated_at": time.Now(),
	}
	if run.ContentCritique != nil {
		updates["content_critique"] = *run.ContentCritique
	}
	if run.LayoutCritique != nil {
		updates["layout_critique"] = *run.LayoutCritique
	}
	if run.Revision != nil {
		updates["revision"] = *run.Revision
	}
	if run.ErrorMessage != nil {
		updates["error_message"] = *run.ErrorMessage
	}

	result := r.db.WithContext(ctx).Model(&models.CritiqueRun{}).
		Where("id = ?", run.ID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update critique run: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}
