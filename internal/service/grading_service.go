package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/repository"
)

// GradingService aggregates submitted reviews into final per-submission
// scores. The rubric participates only here, never in pairing.
type GradingService interface {
	FinalScores(ctx context.Context, taskID uint) ([]dto.FinalScoreResponse, error)
}

type gradingService struct {
	tasks       repository.TaskRepository
	assignments repository.AssignmentRepository
	rubrics     repository.RubricRepository
	logger      zerolog.Logger
}

// NewGradingService constructs the aggregation service.
func NewGradingService(tasks repository.TaskRepository, assignments repository.AssignmentRepository, rubrics repository.RubricRepository, logger zerolog.Logger) GradingService {
	return &gradingService{
		tasks:       tasks,
		assignments: assignments,
		rubrics:     rubrics,
		logger:      logger.With().Str("component", "grading_service").Logger(),
	}
}

// FinalScores computes, for every reviewed submission, the mean over its
// submitted reviews. A review with rubric answers contributes its weighted
// normalized rubric score on a 0-100 scale; one without falls back to the
// overall grade. Submissions with no submitted review get a nil score.
func (s *gradingService) FinalScores(ctx context.Context, taskID uint) ([]dto.FinalScoreResponse, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	items, err := s.rubrics.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	pairs, err := s.assignments.ListPairs(ctx, taskID)
	if err != nil {
		return nil, err
	}

	scores := make([]dto.FinalScoreResponse, 0)
	index := make(map[uint]int)
	totals := make(map[uint]float64)

	for _, pair := range pairs {
		submission := pair.TargetSubmission
		position, seen := index[submission.ID]
		if !seen {
			index[submission.ID] = len(scores)
			scores = append(scores, dto.FinalScoreResponse{
				TeamID:       submission.TeamID,
				TeamName:     submission.Team.Name,
				SubmissionID: submission.ID,
			})
			position = index[submission.ID]
		}

		score, ok := reviewScore(pair, items)
		if !ok {
			continue
		}

		scores[position].ReviewCount++
		totals[submission.ID] += score
	}

	for i := range scores {
		if scores[i].ReviewCount == 0 {
			continue
		}
		final := totals[scores[i].SubmissionID] / float64(scores[i].ReviewCount)
		scores[i].FinalScore = &final
	}

	return scores, nil
}

func reviewScore(pair models.ReviewPair, items []models.RubricItem) (float64, bool) {
	if !pair.IsSubmitted() {
		return 0, false
	}

	if len(items) > 0 && len(pair.Answers) > 0 {
		var answers map[string]float64
		if err := json.Unmarshal(pair.Answers, &answers); err == nil {
			var weighted, maxWeighted float64
			for _, item := range items {
				key := strconv.FormatUint(uint64(item.ID), 10)
				answer, answered := answers[key]
				if !answered {
					continue
				}
				weighted += item.Weight * answer
				maxWeighted += item.Weight * item.MaxScore
			}
			if maxWeighted > 0 {
				return 100 * weighted / maxWeighted, true
			}
		}
	}

	if pair.Grade != nil {
		return *pair.Grade, true
	}

	return 0, false
}
