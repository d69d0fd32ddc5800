package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/models"
)

// ReviewRepository defines data operations for submitted reviews and
// meta-reviews.
type ReviewRepository interface {
	GetPair(ctx context.Context, id uint) (models.ReviewPair, error)
	UpdatePair(ctx context.Context, pair *models.ReviewPair) error
	CreateMeta(ctx context.Context, meta *models.MetaReview) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository instantiates the repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetPair(ctx context.Context, id uint) (models.ReviewPair, error) {
	var pair models.ReviewPair
	if err := r.db.WithContext(ctx).
		Preload("TargetSubmission").
		Preload("ReviewerTeam").
		First(&pair, id).Error; err != nil {
		return models.ReviewPair{}, err
	}

	return pair, nil
}

func (r *reviewRepository) UpdatePair(ctx context.Context, pair *models.ReviewPair) error {
	return r.db.WithContext(ctx).Save(pair).Error
}

func (r *reviewRepository) CreateMeta(ctx context.Context, meta *models.MetaReview) error {
	return r.db.WithContext(ctx).Create(meta).Error
}
