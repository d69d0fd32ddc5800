package models

import "time"

// Task represents one gradeable assignment within a course.
type Task struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	ReviewsPerReviewer int       `gorm:"not null;default:1" json:"reviews_per_reviewer"`
	DueDate            time.Time `json:"due_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Submissions        []Submission
}
