package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/pairing"
	"github.com/peergrade-io/peergrade-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeTaskRepo struct {
	tasks map[uint]models.Task
}

func newFakeTaskRepo(tasks ...models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[uint]models.Task, len(tasks))}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}

	return repo
}

func (f *fakeTaskRepo) List(_ context.Context) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uint) (models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return models.Task{}, gorm.ErrRecordNotFound
	}

	return task, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	task.ID = uint(len(f.tasks) + 1)
	f.tasks[task.ID] = *task

	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	f.tasks[task.ID] = *task

	return nil
}

type fakeAssignmentRepo struct {
	record   *models.ReviewAssignment
	loaded   pairing.Context
	pairs    []models.ReviewPair
	commits  []repository.CommitInput
	resets   int
	listHits int
}

func (f *fakeAssignmentRepo) GetRecord(_ context.Context, taskID uint) (models.ReviewAssignment, error) {
	if f.record == nil || f.record.TaskID != taskID {
		return models.ReviewAssignment{}, gorm.ErrRecordNotFound
	}

	return *f.record, nil
}

func (f *fakeAssignmentRepo) LoadContext(_ context.Context, _ uint) (pairing.Context, error) {
	return f.loaded, nil
}

func (f *fakeAssignmentRepo) CountPairs(_ context.Context, _ uint) (int64, error) {
	return int64(len(f.pairs)), nil
}

func (f *fakeAssignmentRepo) ListPairs(_ context.Context, _ uint) ([]models.ReviewPair, error) {
	f.listHits++

	return f.pairs, nil
}

func (f *fakeAssignmentRepo) CommitPlan(_ context.Context, input repository.CommitInput) (models.ReviewAssignment, error) {
	f.commits = append(f.commits, input)

	assignedAt := input.Now
	record := models.ReviewAssignment{
		TaskID:             input.TaskID,
		Mode:               input.Mode,
		ReviewsPerReviewer: input.Applied,
		Locked:             true,
		Seed:               input.Seed,
		AssignedAt:         &assignedAt,
	}
	f.record = &record

	for i, pair := range input.Pairs {
		f.pairs = append(f.pairs, models.ReviewPair{
			ID:                 uint(i + 1),
			TargetSubmissionID: pair.TargetSubmissionID,
			ReviewerTeamID:     pair.ReviewerTeamID,
			AssignedAt:         input.Now,
		})
	}

	return record, nil
}

func (f *fakeAssignmentRepo) ResetTask(_ context.Context, taskID uint) (models.ReviewAssignment, error) {
	f.resets++
	f.pairs = nil

	if f.record == nil {
		return models.ReviewAssignment{TaskID: taskID}, nil
	}

	f.record.Locked = false
	f.record.AssignedAt = nil

	return *f.record, nil
}

type fakeReviewRepo struct {
	pairs   map[uint]models.ReviewPair
	updated *models.ReviewPair
	metas   []models.MetaReview
}

func newFakeReviewRepo(pairs ...models.ReviewPair) *fakeReviewRepo {
	repo := &fakeReviewRepo{pairs: make(map[uint]models.ReviewPair, len(pairs))}
	for _, pair := range pairs {
		repo.pairs[pair.ID] = pair
	}

	return repo
}

func (f *fakeReviewRepo) GetPair(_ context.Context, id uint) (models.ReviewPair, error) {
	pair, ok := f.pairs[id]
	if !ok {
		return models.ReviewPair{}, gorm.ErrRecordNotFound
	}

	return pair, nil
}

func (f *fakeReviewRepo) UpdatePair(_ context.Context, pair *models.ReviewPair) error {
	f.pairs[pair.ID] = *pair
	f.updated = pair

	return nil
}

func (f *fakeReviewRepo) CreateMeta(_ context.Context, meta *models.MetaReview) error {
	meta.ID = uint(len(f.metas) + 1)
	f.metas = append(f.metas, *meta)

	return nil
}

type fakeRubricRepo struct {
	items []models.RubricItem
}

func (f *fakeRubricRepo) ListByTask(_ context.Context, _ uint) ([]models.RubricItem, error) {
	return f.items, nil
}

func (f *fakeRubricRepo) Create(_ context.Context, item *models.RubricItem) error {
	item.ID = uint(len(f.items) + 1)
	f.items = append(f.items, *item)

	return nil
}

type fakeTeamRepo struct {
	teams []models.Team
}

func (f *fakeTeamRepo) ListByTask(_ context.Context, _ uint) ([]models.Team, error) {
	return f.teams, nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id uint) (models.Team, error) {
	for _, team := range f.teams {
		if team.ID == id {
			return team, nil
		}
	}

	return models.Team{}, gorm.ErrRecordNotFound
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	team.ID = uint(len(f.teams) + 1)
	f.teams = append(f.teams, *team)

	return nil
}

func (f *fakeTeamRepo) AddMember(_ context.Context, _, _ uint) error {
	return nil
}

func (f *fakeTeamRepo) EnsureReviewerTeam(_ context.Context, taskID, personID uint) (models.Team, error) {
	name := models.SyntheticTeamName(taskID, personID)
	for _, team := range f.teams {
		if team.Name == name {
			return team, nil
		}
	}

	team := models.Team{Name: name, Synthetic: true}
	if err := f.Create(context.Background(), &team); err != nil {
		return models.Team{}, err
	}

	return team, nil
}

type fakeSubmissionRepo struct {
	submissions []models.Submission
}

func (f *fakeSubmissionRepo) ListByTask(_ context.Context, _ uint) ([]models.Submission, error) {
	return f.submissions, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}

	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	submission.ID = uint(len(f.submissions) + 1)
	f.submissions = append(f.submissions, *submission)

	return nil
}
