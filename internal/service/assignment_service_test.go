package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/peergrade-io/peergrade-api/internal/dto"
	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/pairing"
)

func planContext(teams int) pairing.Context {
	loaded := pairing.Context{
		TeamNames:        make(map[uint]string, teams),
		SubmissionOfTeam: make(map[uint]uint, teams),
		MembersOfTeam:    make(map[uint][]pairing.Person, teams),
	}

	for i := 1; i <= teams; i++ {
		teamID := uint(i)
		loaded.TeamIDs = append(loaded.TeamIDs, teamID)
		loaded.TeamNames[teamID] = fmt.Sprintf("team-%d", i)
		loaded.SubmissionOfTeam[teamID] = uint(100 + i)
		loaded.MembersOfTeam[teamID] = []pairing.Person{
			{ID: uint(10 + i), Name: fmt.Sprintf("person-%d", i), TeamID: teamID},
		}
	}

	return loaded
}

func testCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

func newTestAssignmentService(tasks *fakeTaskRepo, assignments *fakeAssignmentRepo, cache *redis.Client) AssignmentService {
	return NewAssignmentService(tasks, assignments, cache, time.Minute, nil, validator.New(), testLogger())
}

func TestBuildPlanDeterministicForFixedSeed(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1, Title: "essay"})
	assignments := &fakeAssignmentRepo{loaded: planContext(4)}
	svc := newTestAssignmentService(tasks, assignments, nil)

	payload := dto.BuildPlanRequest{Mode: "team", ReviewsPerReviewer: 2, Seed: "fixed-seed-1"}

	first, err := svc.BuildPlan(context.Background(), 1, payload)
	require.NoError(t, err)
	second, err := svc.BuildPlan(context.Background(), 1, payload)
	require.NoError(t, err)

	require.Equal(t, "fixed-seed-1", first.Seed)
	require.Equal(t, first.Pairs, second.Pairs)
	require.Len(t, first.Pairs, 8)
	require.Equal(t, 2, first.AppliedPerReviewer)
}

func TestBuildPlanGeneratesSeedAndNormalizesRequest(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	assignments := &fakeAssignmentRepo{loaded: planContext(3)}
	svc := newTestAssignmentService(tasks, assignments, nil)

	plan, err := svc.BuildPlan(context.Background(), 1, dto.BuildPlanRequest{Mode: "team"})
	require.NoError(t, err)

	require.NotEmpty(t, plan.Seed)
	require.Equal(t, 1, plan.RequestedPerRev)
	require.Equal(t, 1, plan.AppliedPerReviewer)
	require.Len(t, plan.Pairs, 3)
}

func TestBuildPlanUnknownTask(t *testing.T) {
	svc := newTestAssignmentService(newFakeTaskRepo(), &fakeAssignmentRepo{}, nil)

	_, err := svc.BuildPlan(context.Background(), 42, dto.BuildPlanRequest{Mode: "team"})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestBuildPlanRejectsLockedAssignment(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	assignments := &fakeAssignmentRepo{
		loaded: planContext(3),
		record: &models.ReviewAssignment{TaskID: 1, Locked: true},
	}
	svc := newTestAssignmentService(tasks, assignments, nil)

	_, err := svc.BuildPlan(context.Background(), 1, dto.BuildPlanRequest{Mode: "team"})
	require.ErrorIs(t, err, ErrAssignmentLocked)
}

func TestCommitRejectsEmptyPlan(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	svc := newTestAssignmentService(tasks, &fakeAssignmentRepo{}, nil)

	_, err := svc.Commit(context.Background(), 1, dto.CommitPlanRequest{Mode: "team", Seed: "s"})
	require.ErrorIs(t, err, ErrNoPairs)
}

func TestCommitDelegatesAndLocks(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	assignments := &fakeAssignmentRepo{}
	svc := newTestAssignmentService(tasks, assignments, nil)

	state, err := svc.Commit(context.Background(), 1, dto.CommitPlanRequest{
		Mode:               "team",
		Seed:               "seed-7",
		AppliedPerReviewer: 1,
		Pairs: []dto.CommitPairRequest{
			{ReviewerID: 2, ReviewerTeamID: 2, TargetTeamID: 1, TargetSubmissionID: 101},
			{ReviewerID: 1, ReviewerTeamID: 1, TargetTeamID: 2, TargetSubmissionID: 102},
		},
	})
	require.NoError(t, err)

	require.True(t, state.Locked)
	require.Equal(t, "seed-7", state.Seed)
	require.Equal(t, int64(2), state.PairCount)
	require.Len(t, assignments.commits, 1)
	require.Equal(t, models.ModeTeam, assignments.commits[0].Mode)

	locked, err := svc.Locked(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, locked)
}

func TestCommitInvalidatesCachedMap(t *testing.T) {
	server, client := testCache(t)
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	svc := newTestAssignmentService(tasks, &fakeAssignmentRepo{}, client)

	require.NoError(t, server.Set(mapCacheKey(1), `{"task_id":1,"groups":[]}`))

	_, err := svc.Commit(context.Background(), 1, dto.CommitPlanRequest{
		Mode:               "team",
		AppliedPerReviewer: 1,
		Pairs: []dto.CommitPairRequest{
			{ReviewerID: 2, ReviewerTeamID: 2, TargetTeamID: 1, TargetSubmissionID: 101},
		},
	})
	require.NoError(t, err)

	require.False(t, server.Exists(mapCacheKey(1)))
}

func TestResetNeverAssignedTask(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	assignments := &fakeAssignmentRepo{}
	svc := newTestAssignmentService(tasks, assignments, nil)

	state, err := svc.Reset(context.Background(), 1)
	require.NoError(t, err)

	require.False(t, state.Locked)
	require.Equal(t, 1, assignments.resets)
}

func TestStatusNeverAssigned(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})
	svc := newTestAssignmentService(tasks, &fakeAssignmentRepo{}, nil)

	state, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)

	require.False(t, state.Locked)
	require.Zero(t, state.PairCount)
	require.Empty(t, state.Mode)
}

func TestCurrentMapGroupsByAuthorTeamAndCaches(t *testing.T) {
	_, client := testCache(t)
	tasks := newFakeTaskRepo(models.Task{ID: 1})

	alpha := models.Team{ID: 1, Name: "alpha"}
	beta := models.Team{ID: 2, Name: "beta"}
	grade := 87.5
	submitted := time.Now()
	assignments := &fakeAssignmentRepo{pairs: []models.ReviewPair{
		{
			ID:                 1,
			TargetSubmissionID: 101,
			ReviewerTeamID:     2,
			TargetSubmission:   models.Submission{ID: 101, TeamID: 1, Team: alpha},
			ReviewerTeam:       beta,
			Grade:              &grade,
			SubmittedAt:        &submitted,
		},
		{
			ID:                 2,
			TargetSubmissionID: 102,
			ReviewerTeamID:     1,
			TargetSubmission:   models.Submission{ID: 102, TeamID: 2, Team: beta},
			ReviewerTeam:       alpha,
		},
	}}
	svc := newTestAssignmentService(tasks, assignments, client)

	first, err := svc.CurrentMap(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first.Groups, 2)
	require.Equal(t, "alpha", first.Groups[0].TeamName)
	require.Equal(t, "beta", first.Groups[0].Reviewers[0].ReviewerName)
	require.True(t, first.Groups[0].Reviewers[0].Submitted)
	require.False(t, first.Groups[1].Reviewers[0].Submitted)

	second, err := svc.CurrentMap(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, assignments.listHits)
}

func TestCurrentMapResolvesSyntheticReviewerNames(t *testing.T) {
	tasks := newFakeTaskRepo(models.Task{ID: 1})

	synthetic := models.Team{
		ID:        9,
		Name:      models.SyntheticTeamName(1, 11),
		Synthetic: true,
		Members: []models.TeamMember{
			{TeamID: 9, PersonID: 11, Person: models.Person{ID: 11, Name: "Dana"}},
		},
	}
	assignments := &fakeAssignmentRepo{pairs: []models.ReviewPair{
		{
			ID:                 1,
			TargetSubmissionID: 101,
			ReviewerTeamID:     9,
			TargetSubmission:   models.Submission{ID: 101, TeamID: 1, Team: models.Team{ID: 1, Name: "alpha"}},
			ReviewerTeam:       synthetic,
		},
	}}
	svc := newTestAssignmentService(tasks, assignments, nil)

	current, err := svc.CurrentMap(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, current.Groups, 1)
	require.Equal(t, "Dana", current.Groups[0].Reviewers[0].ReviewerName)
}
