package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/observability"
	"github.com/peergrade-io/peergrade-api/internal/pairing"
	"github.com/peergrade-io/peergrade-api/internal/repository"
)

// ErrTaskNotFound indicates the requested task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// ErrAssignmentLocked indicates the task already has a committed assignment
// or existing reviews; a reset is required before re-planning.
var ErrAssignmentLocked = errors.New("assignment is locked")

// ErrNoPairs indicates a commit was attempted with an empty plan.
var ErrNoPairs = errors.New("plan contains no pairs")

// ErrInvalidMode indicates an unknown pairing mode.
var ErrInvalidMode = errors.New("invalid assignment mode")

// AssignmentService exposes the peer-review assignment engine: preview plan
// building, transactional commit, reset and the committed-map projection.
type AssignmentService interface {
	BuildPlan(ctx context.Context, taskID uint, payload dto.BuildPlanRequest) (dto.PreviewPlanResponse, error)
	Commit(ctx context.Context, taskID uint, payload dto.CommitPlanRequest) (dto.AssignmentStateResponse, error)
	Reset(ctx context.Context, taskID uint) (dto.AssignmentStateResponse, error)
	Status(ctx context.Context, taskID uint) (dto.AssignmentStateResponse, error)
	Locked(ctx context.Context, taskID uint) (bool, error)
	CurrentMap(ctx context.Context, taskID uint) (dto.ReviewMapResponse, error)
}

type assignmentService struct {
	tasks       repository.TaskRepository
	assignments repository.AssignmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	events      AssignmentEventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAssignmentService constructs the engine facade.
func NewAssignmentService(
	tasks repository.TaskRepository,
	assignments repository.AssignmentRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	events AssignmentEventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		tasks:       tasks,
		assignments: assignments,
		cache:       cache,
		cacheTTL:    cacheTTL,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		tracer:      otel.Tracer("github.com/peergrade-io/peergrade-api/internal/service/assignment"),
		now:         time.Now,
	}
}

// BuildPlan computes a preview plan without persisting anything. It may be
// called repeatedly to re-shuffle; passing the echoed seed back reproduces a
// previous plan exactly.
func (s *assignmentService) BuildPlan(ctx context.Context, taskID uint, payload dto.BuildPlanRequest) (dto.PreviewPlanResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.build_plan")
	span.SetAttributes(
		attribute.Int64("assignment.task_id", int64(taskID)),
		attribute.String("assignment.mode", payload.Mode),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.PreviewPlanResponse{}, err
	}

	mode := models.AssignmentMode(payload.Mode)
	if !mode.Valid() {
		return dto.PreviewPlanResponse{}, ErrInvalidMode
	}

	if _, err := s.getTask(ctx, taskID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "task_lookup_failed")
		return dto.PreviewPlanResponse{}, err
	}

	locked, err := s.Locked(ctx, taskID)
	if err != nil {
		return dto.PreviewPlanResponse{}, err
	}
	if locked {
		span.SetStatus(codes.Error, "assignment_locked")
		return dto.PreviewPlanResponse{}, ErrAssignmentLocked
	}

	requested := payload.ReviewsPerReviewer
	if requested < 1 {
		requested = 1
	}

	seed := payload.Seed
	if seed == "" {
		seed = pairing.NewSeed()
	}

	loaded, err := s.assignments.LoadContext(ctx, taskID)
	if err != nil {
		return dto.PreviewPlanResponse{}, err
	}

	src := pairing.NewSource(seed)
	var plan pairing.Plan
	switch mode {
	case models.ModeTeam:
		plan = pairing.BuildTeamPlan(loaded, requested, src)
	case models.ModeIndividual:
		plan = pairing.BuildIndividualPlan(loaded, requested, src)
	}
	plan.Seed = seed

	observability.PlansBuilt().WithLabelValues(string(mode)).Inc()
	span.SetAttributes(
		attribute.Int("assignment.applied", plan.Applied),
		attribute.Int("assignment.pairs", len(plan.Pairs)),
	)

	s.logger.Info().
		Uint("task_id", taskID).
		Str("mode", string(mode)).
		Int("requested", requested).
		Int("applied", plan.Applied).
		Int("pairs", len(plan.Pairs)).
		Msg("preview plan built")

	return dto.NewPreviewPlanResponse(taskID, mode, plan, loaded.TeamNames), nil
}

// Commit persists a confirmed plan. Callers must gate on Locked first; Commit
// itself is a pure write primitive and only rejects empty plans.
func (s *assignmentService) Commit(ctx context.Context, taskID uint, payload dto.CommitPlanRequest) (dto.AssignmentStateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.commit")
	span.SetAttributes(attribute.Int64("assignment.task_id", int64(taskID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssignmentStateResponse{}, err
	}

	if len(payload.Pairs) == 0 {
		span.SetStatus(codes.Error, "no_pairs")
		return dto.AssignmentStateResponse{}, ErrNoPairs
	}

	mode := models.AssignmentMode(payload.Mode)
	if !mode.Valid() {
		return dto.AssignmentStateResponse{}, ErrInvalidMode
	}

	if _, err := s.getTask(ctx, taskID); err != nil {
		return dto.AssignmentStateResponse{}, err
	}

	pairs := make([]pairing.Pair, 0, len(payload.Pairs))
	for _, pair := range payload.Pairs {
		pairs = append(pairs, pairing.Pair{
			ReviewerID:         pair.ReviewerID,
			ReviewerTeamID:     pair.ReviewerTeamID,
			TargetTeamID:       pair.TargetTeamID,
			TargetSubmissionID: pair.TargetSubmissionID,
		})
	}

	record, err := s.assignments.CommitPlan(ctx, repository.CommitInput{
		TaskID:  taskID,
		Mode:    mode,
		Applied: payload.AppliedPerReviewer,
		Seed:    payload.Seed,
		Pairs:   pairs,
		Now:     s.now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit_failed")
		return dto.AssignmentStateResponse{}, err
	}

	s.invalidateMapCache(ctx, taskID)
	observability.PlansCommitted().Inc()
	s.publishEvent(ctx, AssignmentEvent{
		Type:   EventAssignmentCommitted,
		TaskID: taskID,
		Mode:   string(mode),
		Pairs:  len(pairs),
	})

	s.logger.Info().
		Uint("task_id", taskID).
		Str("mode", string(mode)).
		Int("pairs", len(pairs)).
		Msg("review plan committed")

	return dto.NewAssignmentStateResponse(record, int64(len(pairs))), nil
}

// Reset tears down a committed assignment and restores the task to an
// assignable state. Raw submissions and rosters are untouched.
func (s *assignmentService) Reset(ctx context.Context, taskID uint) (dto.AssignmentStateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.reset")
	span.SetAttributes(attribute.Int64("assignment.task_id", int64(taskID)))
	defer span.End()

	if _, err := s.getTask(ctx, taskID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "task_lookup_failed")
		return dto.AssignmentStateResponse{}, err
	}

	record, err := s.assignments.ResetTask(ctx, taskID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reset_failed")
		return dto.AssignmentStateResponse{}, err
	}

	s.invalidateMapCache(ctx, taskID)
	observability.PlansReset().Inc()
	s.publishEvent(ctx, AssignmentEvent{
		Type:   EventAssignmentReset,
		TaskID: taskID,
		Mode:   string(record.Mode),
	})

	s.logger.Info().Uint("task_id", taskID).Msg("review assignment reset")

	return dto.NewAssignmentStateResponse(record, 0), nil
}

func (s *assignmentService) Status(ctx context.Context, taskID uint) (dto.AssignmentStateResponse, error) {
	if _, err := s.getTask(ctx, taskID); err != nil {
		return dto.AssignmentStateResponse{}, err
	}

	count, err := s.assignments.CountPairs(ctx, taskID)
	if err != nil {
		return dto.AssignmentStateResponse{}, err
	}

	record, err := s.assignments.GetRecord(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NewAssignmentStateResponse(models.ReviewAssignment{TaskID: taskID}, count), nil
		}
		return dto.AssignmentStateResponse{}, err
	}

	return dto.NewAssignmentStateResponse(record, count), nil
}

// Locked reports whether the assignment record is locked or any committed
// pair exists; either blocks plan building and committing until a reset.
func (s *assignmentService) Locked(ctx context.Context, taskID uint) (bool, error) {
	count, err := s.assignments.CountPairs(ctx, taskID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	record, err := s.assignments.GetRecord(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return record.Locked, nil
}

// CurrentMap returns the committed pairs grouped by author team, with
// resolved reviewer display names. The projection is cached per task and
// invalidated by Commit and Reset.
func (s *assignmentService) CurrentMap(ctx context.Context, taskID uint) (dto.ReviewMapResponse, error) {
	if _, err := s.getTask(ctx, taskID); err != nil {
		return dto.ReviewMapResponse{}, err
	}

	cacheKey := mapCacheKey(taskID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ReviewMapResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("task_id", taskID).Msg("review map cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read review map cache")
		}
	}

	pairs, err := s.assignments.ListPairs(ctx, taskID)
	if err != nil {
		return dto.ReviewMapResponse{}, err
	}

	response := buildReviewMap(taskID, pairs)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store review map cache")
			}
		}
	}

	return response, nil
}

func buildReviewMap(taskID uint, pairs []models.ReviewPair) dto.ReviewMapResponse {
	response := dto.ReviewMapResponse{TaskID: taskID, Groups: make([]dto.ReviewMapGroup, 0)}
	index := make(map[uint]int)

	for _, pair := range pairs {
		submission := pair.TargetSubmission
		groupIdx, seen := index[submission.ID]
		if !seen {
			index[submission.ID] = len(response.Groups)
			response.Groups = append(response.Groups, dto.ReviewMapGroup{
				TeamID:       submission.TeamID,
				TeamName:     submission.Team.Name,
				SubmissionID: submission.ID,
				Reviewers:    make([]dto.ReviewMapEntry, 0, 2),
			})
			groupIdx = index[submission.ID]
		}

		response.Groups[groupIdx].Reviewers = append(response.Groups[groupIdx].Reviewers, dto.ReviewMapEntry{
			PairID:         pair.ID,
			ReviewerTeamID: pair.ReviewerTeamID,
			ReviewerName:   reviewerDisplayName(pair.ReviewerTeam),
			Submitted:      pair.IsSubmitted(),
			Grade:          pair.Grade,
		})
	}

	return response
}

// reviewerDisplayName resolves a human-readable reviewer name: the member's
// own name for synthetic single-person teams, the team name otherwise.
func reviewerDisplayName(team models.Team) string {
	if team.Synthetic && len(team.Members) == 1 {
		return team.Members[0].Person.Name
	}

	return team.Name
}

func (s *assignmentService) getTask(ctx context.Context, taskID uint) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	return task, nil
}

func (s *assignmentService) invalidateMapCache(ctx context.Context, taskID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, mapCacheKey(taskID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("task_id", taskID).Msg("failed to invalidate review map cache")
	}
}

func mapCacheKey(taskID uint) string {
	return fmt.Sprintf("reviewmap:task:%d", taskID)
}

func (s *assignmentService) publishEvent(ctx context.Context, event AssignmentEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("task_id", event.TaskID).Msg("failed to publish assignment event")
	}
}
