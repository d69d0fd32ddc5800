package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/repository"
)

// ErrReviewPairNotFound indicates the review pair does not exist.
var ErrReviewPairNotFound = errors.New("review pair not found")

// ErrScoreExceedsMax indicates a rubric answer surpasses the item maximum.
var ErrScoreExceedsMax = errors.New("score exceeds rubric item max")

// ErrUnknownRubricItem indicates an answer references no rubric item.
var ErrUnknownRubricItem = errors.New("unknown rubric item")

// ReviewService files review content and meta-reviews on assigned pairs.
type ReviewService interface {
	Submit(ctx context.Context, pairID uint, payload dto.ReviewSubmitRequest) (dto.ReviewResponse, error)
	SubmitMeta(ctx context.Context, pairID uint, payload dto.MetaReviewRequest) (dto.MetaReviewResponse, error)
}

type reviewService struct {
	reviews   repository.ReviewRepository
	rubrics   repository.RubricRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReviewService constructs the review submission service.
func NewReviewService(reviews repository.ReviewRepository, rubrics repository.RubricRepository, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		reviews:   reviews,
		rubrics:   rubrics,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "review_service").Logger(),
		now:       time.Now,
	}
}

// Submit stores grade, feedback and per-rubric-item answers on the pair.
// Answers are keyed by rubric item id and bounded by the item's max score.
func (s *reviewService) Submit(ctx context.Context, pairID uint, payload dto.ReviewSubmitRequest) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReviewResponse{}, err
	}

	pair, err := s.getPair(ctx, pairID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	items, err := s.rubrics.ListByTask(ctx, pair.TargetSubmission.TaskID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	if len(payload.Answers) > 0 {
		maxByItem := make(map[string]float64, len(items))
		for _, item := range items {
			maxByItem[strconv.FormatUint(uint64(item.ID), 10)] = item.MaxScore
		}
		for key, value := range payload.Answers {
			max, known := maxByItem[key]
			if !known {
				return dto.ReviewResponse{}, fmt.Errorf("%w: %s", ErrUnknownRubricItem, key)
			}
			if value < 0 || value > max {
				return dto.ReviewResponse{}, fmt.Errorf("%w: item %s", ErrScoreExceedsMax, key)
			}
		}

		answers, err := json.Marshal(payload.Answers)
		if err != nil {
			return dto.ReviewResponse{}, err
		}
		pair.Answers = datatypes.JSON(answers)
	}

	grade := payload.Grade
	submittedAt := s.now()
	pair.Grade = &grade
	pair.Feedback = s.sanitizer.Sanitize(payload.Feedback)
	pair.SubmittedAt = &submittedAt

	if err := s.reviews.UpdatePair(ctx, &pair); err != nil {
		return dto.ReviewResponse{}, err
	}

	s.logger.Info().Uint("pair_id", pair.ID).Float64("grade", grade).Msg("review submitted")

	return dto.NewReviewResponse(pair), nil
}

// SubmitMeta records a review-of-review against the pair.
func (s *reviewService) SubmitMeta(ctx context.Context, pairID uint, payload dto.MetaReviewRequest) (dto.MetaReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MetaReviewResponse{}, err
	}

	pair, err := s.getPair(ctx, pairID)
	if err != nil {
		return dto.MetaReviewResponse{}, err
	}

	grade := payload.Grade
	meta := models.MetaReview{
		ReviewPairID:   pair.ID,
		AuthorPersonID: payload.AuthorPersonID,
		Grade:          &grade,
		Feedback:       s.sanitizer.Sanitize(payload.Feedback),
	}

	if err := s.reviews.CreateMeta(ctx, &meta); err != nil {
		return dto.MetaReviewResponse{}, err
	}

	s.logger.Info().Uint("pair_id", pair.ID).Msg("meta-review submitted")

	return dto.NewMetaReviewResponse(meta), nil
}

func (s *reviewService) getPair(ctx context.Context, pairID uint) (models.ReviewPair, error) {
	pair, err := s.reviews.GetPair(ctx, pairID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ReviewPair{}, ErrReviewPairNotFound
		}
		return models.ReviewPair{}, err
	}

	return pair, nil
}
