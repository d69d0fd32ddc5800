package models

import "time"

// Submission is the artifact a team handed in for a task; the unit being
// reviewed. At most one submission exists per (task, team).
type Submission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;uniqueIndex:idx_task_team" json:"task_id"`
	TeamID    uint      `gorm:"not null;uniqueIndex:idx_task_team" json:"team_id"`
	FileURL   string    `gorm:"size:512" json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Task      Task      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Team      Team      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"team"`
}
