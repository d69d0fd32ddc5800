package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/repository"
)

// TaskService manages tasks and their review population: the teams that
// submitted and the submissions themselves.
type TaskService interface {
	Create(ctx context.Context, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	List(ctx context.Context) ([]dto.TaskResponse, error)
	Get(ctx context.Context, taskID uint) (dto.TaskResponse, error)
	ListTeams(ctx context.Context, taskID uint) ([]dto.TeamResponse, error)
	ListSubmissions(ctx context.Context, taskID uint) ([]dto.SubmissionResponse, error)
}

type taskService struct {
	tasks       repository.TaskRepository
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewTaskService constructs the task management service.
func NewTaskService(tasks repository.TaskRepository, teams repository.TeamRepository, submissions repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:       tasks,
		teams:       teams,
		submissions: submissions,
		validator:   validate,
		logger:      logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	reviews := payload.ReviewsPerReviewer
	if reviews < 1 {
		reviews = 1
	}

	task := models.Task{
		Title:              payload.Title,
		Description:        payload.Description,
		ReviewsPerReviewer: reviews,
	}

	if payload.DueDate != "" {
		due, err := time.Parse(time.RFC3339, payload.DueDate)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		task.DueDate = due
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Str("title", task.Title).Msg("task created")

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) List(ctx context.Context) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}

func (s *taskService) Get(ctx context.Context, taskID uint) (dto.TaskResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	return dto.NewTaskResponse(task), nil
}

// ListTeams returns the teams that submitted for the task, rosters included.
func (s *taskService) ListTeams(ctx context.Context, taskID uint) ([]dto.TeamResponse, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}

	teams, err := s.teams.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return dto.NewTeamResponseSlice(teams), nil
}

func (s *taskService) ListSubmissions(ctx context.Context, taskID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
