package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReviewPair assigns one reviewing team (a real team, or a synthetic
// per-person team in individual mode) to review one target submission.
// Unique on (target_submission_id, reviewer_team_id); re-committing the same
// pair updates it in place and clears previously submitted review content.
type ReviewPair struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	AssignmentID       uint           `gorm:"not null;index" json:"assignment_id"`
	TargetSubmissionID uint           `gorm:"not null;uniqueIndex:idx_target_reviewer" json:"target_submission_id"`
	ReviewerTeamID     uint           `gorm:"not null;uniqueIndex:idx_target_reviewer" json:"reviewer_team_id"`
	Grade              *float64       `json:"grade"`
	Feedback           string         `gorm:"type:text" json:"feedback"`
	Answers            datatypes.JSON `gorm:"type:json" json:"answers"`
	AssignedAt         time.Time      `json:"assigned_at"`
	SubmittedAt        *time.Time     `json:"submitted_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	TargetSubmission   Submission     `gorm:"foreignKey:TargetSubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReviewerTeam       Team           `gorm:"foreignKey:ReviewerTeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsSubmitted reports whether review content has been filed for the pair.
func (p ReviewPair) IsSubmitted() bool {
	return p.SubmittedAt != nil
}

// MetaReview is a review of a review, attached to a pair.
type MetaReview struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ReviewPairID   uint       `gorm:"not null;index" json:"review_pair_id"`
	AuthorPersonID uint       `gorm:"not null" json:"author_person_id"`
	Grade          *float64   `json:"grade"`
	Feedback       string     `gorm:"type:text" json:"feedback"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ReviewPair     ReviewPair `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
