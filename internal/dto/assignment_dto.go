package dto

import (
	"time"

	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/pairing"
)

// BuildPlanRequest describes the payload for building a preview plan.
type BuildPlanRequest struct {
	Mode               string `json:"mode" validate:"required,oneof=team individual"`
	ReviewsPerReviewer int    `json:"reviews_per_reviewer"`
	Seed               string `json:"seed" validate:"omitempty,max=128"`
}

// PlanPairResponse is one preview pair in caller-facing form.
type PlanPairResponse struct {
	ReviewerID         uint   `json:"reviewer_id"`
	ReviewerName       string `json:"reviewer_name"`
	ReviewerTeamID     uint   `json:"reviewer_team_id"`
	TargetTeamID       uint   `json:"target_team_id"`
	TargetTeamName     string `json:"target_team_name"`
	TargetSubmissionID uint   `json:"target_submission_id"`
}

// PlanWarningResponse carries a machine-readable warning kind plus the
// human-readable explanation.
type PlanWarningResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ReviewerPreview groups a plan's pairs from the reviewer side.
type ReviewerPreview struct {
	Reviewer string   `json:"reviewer"`
	Targets  []string `json:"targets"`
}

// ReviewedPreview groups a plan's pairs from the target side.
type ReviewedPreview struct {
	Target    string   `json:"target"`
	Reviewers []string `json:"reviewers"`
}

// PreviewPlanResponse is the unpersisted outcome of one plan build. The two
// preview groupings are derived views of the same pairs; they add no
// information of their own.
type PreviewPlanResponse struct {
	TaskID             uint                  `json:"task_id"`
	Mode               string                `json:"mode"`
	Seed               string                `json:"seed"`
	RequestedPerRev    int                   `json:"requested_reviews_per_reviewer"`
	AppliedPerReviewer int                   `json:"applied_reviews_per_reviewer"`
	Warnings           []PlanWarningResponse `json:"warnings"`
	Pairs              []PlanPairResponse    `json:"pairs"`
	ReviewerPreview    []ReviewerPreview     `json:"reviewer_preview"`
	ReviewedPreview    []ReviewedPreview     `json:"reviewed_preview"`
}

// NewPreviewPlanResponse assembles the caller-facing plan from a pairing run.
func NewPreviewPlanResponse(taskID uint, mode models.AssignmentMode, plan pairing.Plan, teamNames map[uint]string) PreviewPlanResponse {
	response := PreviewPlanResponse{
		TaskID:             taskID,
		Mode:               string(mode),
		Seed:               plan.Seed,
		RequestedPerRev:    plan.Requested,
		AppliedPerReviewer: plan.Applied,
		Warnings:           make([]PlanWarningResponse, 0, len(plan.Warnings)),
		Pairs:              make([]PlanPairResponse, 0, len(plan.Pairs)),
	}

	for _, warning := range plan.Warnings {
		response.Warnings = append(response.Warnings, PlanWarningResponse{
			Kind:    string(warning.Kind),
			Message: warning.Message,
		})
	}

	byReviewer := make(map[string][]string)
	byTarget := make(map[string][]string)
	reviewerOrder := make([]string, 0)
	targetOrder := make([]string, 0)

	for _, pair := range plan.Pairs {
		targetName := teamNames[pair.TargetTeamID]
		response.Pairs = append(response.Pairs, PlanPairResponse{
			ReviewerID:         pair.ReviewerID,
			ReviewerName:       pair.ReviewerName,
			ReviewerTeamID:     pair.ReviewerTeamID,
			TargetTeamID:       pair.TargetTeamID,
			TargetTeamName:     targetName,
			TargetSubmissionID: pair.TargetSubmissionID,
		})

		if _, seen := byReviewer[pair.ReviewerName]; !seen {
			reviewerOrder = append(reviewerOrder, pair.ReviewerName)
		}
		byReviewer[pair.ReviewerName] = append(byReviewer[pair.ReviewerName], targetName)

		if _, seen := byTarget[targetName]; !seen {
			targetOrder = append(targetOrder, targetName)
		}
		byTarget[targetName] = append(byTarget[targetName], pair.ReviewerName)
	}

	for _, reviewer := range reviewerOrder {
		response.ReviewerPreview = append(response.ReviewerPreview, ReviewerPreview{
			Reviewer: reviewer,
			Targets:  byReviewer[reviewer],
		})
	}
	for _, target := range targetOrder {
		response.ReviewedPreview = append(response.ReviewedPreview, ReviewedPreview{
			Target:    target,
			Reviewers: byTarget[target],
		})
	}

	return response
}

// CommitPairRequest is one pair of a plan being confirmed.
type CommitPairRequest struct {
	ReviewerID         uint `json:"reviewer_id" validate:"required"`
	ReviewerTeamID     uint `json:"reviewer_team_id"`
	TargetTeamID       uint `json:"target_team_id" validate:"required"`
	TargetSubmissionID uint `json:"target_submission_id" validate:"required"`
}

// CommitPlanRequest carries a previewed plan into the commit step.
type CommitPlanRequest struct {
	Mode               string              `json:"mode" validate:"required,oneof=team individual"`
	Seed               string              `json:"seed"`
	AppliedPerReviewer int                 `json:"applied_reviews_per_reviewer" validate:"min=0"`
	Pairs              []CommitPairRequest `json:"pairs" validate:"dive"`
}

// AssignmentStateResponse reflects the persisted assignment record.
type AssignmentStateResponse struct {
	TaskID             uint       `json:"task_id"`
	Mode               string     `json:"mode"`
	ReviewsPerReviewer int        `json:"reviews_per_reviewer"`
	Locked             bool       `json:"locked"`
	Seed               string     `json:"seed"`
	AssignedAt         *time.Time `json:"assigned_at"`
	PairCount          int64      `json:"pair_count"`
}

// NewAssignmentStateResponse converts a record plus its pair count into a DTO.
func NewAssignmentStateResponse(record models.ReviewAssignment, pairCount int64) AssignmentStateResponse {
	return AssignmentStateResponse{
		TaskID:             record.TaskID,
		Mode:               string(record.Mode),
		ReviewsPerReviewer: record.ReviewsPerReviewer,
		Locked:             record.Locked,
		Seed:               record.Seed,
		AssignedAt:         record.AssignedAt,
		PairCount:          pairCount,
	}
}

// ReviewMapEntry is one reviewer of a target submission in the committed map.
type ReviewMapEntry struct {
	PairID         uint     `json:"pair_id"`
	ReviewerTeamID uint     `json:"reviewer_team_id"`
	ReviewerName   string   `json:"reviewer_name"`
	Submitted      bool     `json:"submitted"`
	Grade          *float64 `json:"grade"`
}

// ReviewMapGroup groups committed pairs under the author team being reviewed.
type ReviewMapGroup struct {
	TeamID       uint             `json:"team_id"`
	TeamName     string           `json:"team_name"`
	SubmissionID uint             `json:"submission_id"`
	Reviewers    []ReviewMapEntry `json:"reviewers"`
}

// ReviewMapResponse is the read-only projection over committed pairs.
type ReviewMapResponse struct {
	TaskID uint             `json:"task_id"`
	Groups []ReviewMapGroup `json:"groups"`
}
