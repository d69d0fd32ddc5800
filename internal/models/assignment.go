package models

import "time"

// AssignmentMode selects the pairing topology.
type AssignmentMode string

const (
	// ModeTeam assigns whole teams as reviewers of other teams' submissions.
	ModeTeam AssignmentMode = "team"
	// ModeIndividual assigns each person to review other teams' submissions.
	ModeIndividual AssignmentMode = "individual"
)

// Valid reports whether the mode is one of the known topologies.
func (m AssignmentMode) Valid() bool {
	return m == ModeTeam || m == ModeIndividual
}

// ReviewAssignment is the 1:1 companion of a Task holding the applied review
// policy and the lock state. It is created lazily on the first commit and is
// never deleted; Reset only empties it.
type ReviewAssignment struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	TaskID             uint           `gorm:"not null;uniqueIndex" json:"task_id"`
	Mode               AssignmentMode `gorm:"size:16;not null;default:team" json:"mode"`
	ReviewsPerReviewer int            `gorm:"not null;default:0" json:"reviews_per_reviewer"`
	Locked             bool           `gorm:"not null;default:false" json:"locked"`
	Seed               string         `gorm:"size:128" json:"seed"`
	AssignedAt         *time.Time     `json:"assigned_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
