package dto

import (
	"time"

	"github.com/peergrade-io/peergrade-api/internal/models"
)

// TaskCreateRequest describes the payload for creating a task.
type TaskCreateRequest struct {
	Title              string `json:"title" validate:"required,min=3"`
	Description        string `json:"description"`
	ReviewsPerReviewer int    `json:"reviews_per_reviewer" validate:"omitempty,min=1"`
	DueDate            string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// TaskResponse is the serialized task representation.
type TaskResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	ReviewsPerReviewer int       `json:"reviews_per_reviewer"`
	DueDate            time.Time `json:"due_date"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewTaskResponse converts a model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	return TaskResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Description:        model.Description,
		ReviewsPerReviewer: model.ReviewsPerReviewer,
		DueDate:            model.DueDate,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewTaskResponseSlice converts a slice of models into DTOs.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	return responses
}

// TeamResponse is the serialized team representation including its roster.
type TeamResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Synthetic bool             `json:"synthetic"`
	Members   []PersonResponse `json:"members"`
}

// PersonResponse is the serialized roster entry.
type PersonResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewTeamResponse converts a model into a DTO.
func NewTeamResponse(model models.Team) TeamResponse {
	members := make([]PersonResponse, 0, len(model.Members))
	for _, member := range model.Members {
		members = append(members, PersonResponse{
			ID:    member.Person.ID,
			Name:  member.Person.Name,
			Email: member.Person.Email,
		})
	}

	return TeamResponse{
		ID:        model.ID,
		Name:      model.Name,
		Synthetic: model.Synthetic,
		Members:   members,
	}
}

// NewTeamResponseSlice converts a slice of models into DTOs.
func NewTeamResponseSlice(teams []models.Team) []TeamResponse {
	responses := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, NewTeamResponse(team))
	}

	return responses
}

// SubmissionResponse is the serialized submission representation.
type SubmissionResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	TeamID    uint      `json:"team_id"`
	TeamName  string    `json:"team_name"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        model.ID,
		TaskID:    model.TaskID,
		TeamID:    model.TeamID,
		TeamName:  model.Team.Name,
		FileURL:   model.FileURL,
		CreatedAt: model.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
