package models

import "time"

// RubricItem is one weighted scoring criterion of a task's rubric. The rubric
// only participates in final-score aggregation, never in pairing.
type RubricItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Weight    float64   `gorm:"not null;default:1" json:"weight"`
	MaxScore  float64   `gorm:"not null;default:100" json:"max_score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
