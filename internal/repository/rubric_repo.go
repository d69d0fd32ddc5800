package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/models"
)

// RubricRepository defines data operations for rubric items.
type RubricRepository interface {
	ListByTask(ctx context.Context, taskID uint) ([]models.RubricItem, error)
	Create(ctx context.Context, item *models.RubricItem) error
}

type rubricRepository struct {
	db *gorm.DB
}

// NewRubricRepository instantiates the repository.
func NewRubricRepository(db *gorm.DB) RubricRepository {
	return &rubricRepository{db: db}
}

func (r *rubricRepository) ListByTask(ctx context.Context, taskID uint) ([]models.RubricItem, error) {
	var items []models.RubricItem
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *rubricRepository) Create(ctx context.Context, item *models.RubricItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}
