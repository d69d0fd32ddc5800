package dto

import (
	"time"

	"github.com/peergrade-io/peergrade-api/internal/models"
)

// ReviewSubmitRequest files review content on an assigned pair.
type ReviewSubmitRequest struct {
	Grade    float64            `json:"grade" validate:"min=0,max=100"`
	Feedback string             `json:"feedback" validate:"omitempty,max=10000"`
	Answers  map[string]float64 `json:"answers"`
}

// ReviewResponse is the serialized state of a review pair.
type ReviewResponse struct {
	ID                 uint       `json:"id"`
	TargetSubmissionID uint       `json:"target_submission_id"`
	ReviewerTeamID     uint       `json:"reviewer_team_id"`
	Grade              *float64   `json:"grade"`
	Feedback           string     `json:"feedback"`
	AssignedAt         time.Time  `json:"assigned_at"`
	SubmittedAt        *time.Time `json:"submitted_at"`
}

// NewReviewResponse converts a model into a DTO.
func NewReviewResponse(model models.ReviewPair) ReviewResponse {
	return ReviewResponse{
		ID:                 model.ID,
		TargetSubmissionID: model.TargetSubmissionID,
		ReviewerTeamID:     model.ReviewerTeamID,
		Grade:              model.Grade,
		Feedback:           model.Feedback,
		AssignedAt:         model.AssignedAt,
		SubmittedAt:        model.SubmittedAt,
	}
}

// MetaReviewRequest files a review-of-review on an assigned pair.
type MetaReviewRequest struct {
	AuthorPersonID uint    `json:"author_person_id" validate:"required"`
	Grade          float64 `json:"grade" validate:"min=0,max=100"`
	Feedback       string  `json:"feedback" validate:"omitempty,max=10000"`
}

// MetaReviewResponse is the serialized meta-review.
type MetaReviewResponse struct {
	ID             uint      `json:"id"`
	ReviewPairID   uint      `json:"review_pair_id"`
	AuthorPersonID uint      `json:"author_person_id"`
	Grade          *float64  `json:"grade"`
	Feedback       string    `json:"feedback"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMetaReviewResponse converts a model into a DTO.
func NewMetaReviewResponse(model models.MetaReview) MetaReviewResponse {
	return MetaReviewResponse{
		ID:             model.ID,
		ReviewPairID:   model.ReviewPairID,
		AuthorPersonID: model.AuthorPersonID,
		Grade:          model.Grade,
		Feedback:       model.Feedback,
		CreatedAt:      model.CreatedAt,
	}
}

// FinalScoreResponse is the rubric-weighted aggregation for one submission.
type FinalScoreResponse struct {
	TeamID       uint     `json:"team_id"`
	TeamName     string   `json:"team_name"`
	SubmissionID uint     `json:"submission_id"`
	ReviewCount  int      `json:"review_count"`
	FinalScore   *float64 `json:"final_score"`
}
