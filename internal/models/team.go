package models

import (
	"fmt"
	"strings"
	"time"
)

// Team is a submission-owning group of one or more people. In individual
// review mode a person is also represented as a synthetic single-member team
// created at commit time and named with a reserved prefix bound to the task.
type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Synthetic bool      `gorm:"not null;default:false" json:"synthetic"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Members   []TeamMember
}

// Person represents an individual who can belong to teams and act as a
// reviewer in individual mode.
type Person struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMember links a person to a team.
type TeamMember struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TeamID   uint   `gorm:"not null;uniqueIndex:idx_team_person" json:"team_id"`
	PersonID uint   `gorm:"not null;uniqueIndex:idx_team_person" json:"person_id"`
	Team     Team   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Person   Person `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"person"`
}

// SyntheticTeamPrefix is reserved for per-person reviewer teams. Regular team
// names must never start with it.
const SyntheticTeamPrefix = "~reviewer/"

// SyntheticTeamName derives the deterministic name of the single-member
// reviewer team for a person within one task.
func SyntheticTeamName(taskID, personID uint) string {
	return fmt.Sprintf("%s%d/%d", SyntheticTeamPrefix, taskID, personID)
}

// TaskSyntheticPrefix returns the name prefix shared by all synthetic
// reviewer teams of one task.
func TaskSyntheticPrefix(taskID uint) string {
	return fmt.Sprintf("%s%d/", SyntheticTeamPrefix, taskID)
}

// IsSyntheticName reports whether the team name uses the reserved prefix.
func IsSyntheticName(name string) bool {
	return strings.HasPrefix(name, SyntheticTeamPrefix)
}
