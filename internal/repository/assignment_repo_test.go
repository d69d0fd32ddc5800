package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/pairing"
)

func TestLoadContextFollowsSubmissionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	task := createTask(t, db, "Context Order")

	// Second team submitted first.
	late, lateSub, _ := createTeamWithSubmission(t, db, task, "ctx-late", -time.Hour, "Mona")
	early, earlySub, earlyPeople := createTeamWithSubmission(t, db, task, "ctx-early", -2*time.Hour, "Nils", "Ola")

	loaded, err := repo.LoadContext(context.Background(), task.ID)
	require.NoError(t, err)

	require.Equal(t, []uint{early.ID, late.ID}, loaded.TeamIDs)
	require.Equal(t, "ctx-early", loaded.TeamNames[early.ID])
	require.Equal(t, earlySub.ID, loaded.SubmissionOfTeam[early.ID])
	require.Equal(t, lateSub.ID, loaded.SubmissionOfTeam[late.ID])
	require.Len(t, loaded.MembersOfTeam[early.ID], 2)
	require.Equal(t, earlyPeople[0].ID, loaded.MembersOfTeam[early.ID][0].ID)
	require.Len(t, loaded.MembersOfTeam[late.ID], 1)
}

func TestCommitPlanUpsertClearsReviewContent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	task := createTask(t, db, "Idempotent Commit")

	teamA, subA, _ := createTeamWithSubmission(t, db, task, "idem-a", 0, "Ada")
	teamB, subB, _ := createTeamWithSubmission(t, db, task, "idem-b", time.Second, "Ben")

	input := CommitInput{
		TaskID:  task.ID,
		Mode:    models.ModeTeam,
		Applied: 1,
		Seed:    "seed-idem",
		Now:     time.Now(),
		Pairs: []pairing.Pair{
			{ReviewerID: teamA.ID, ReviewerTeamID: teamA.ID, TargetTeamID: teamB.ID, TargetSubmissionID: subB.ID},
			{ReviewerID: teamB.ID, ReviewerTeamID: teamB.ID, TargetTeamID: teamA.ID, TargetSubmissionID: subA.ID},
		},
	}

	record, err := repo.CommitPlan(context.Background(), input)
	require.NoError(t, err)
	require.True(t, record.Locked)
	require.NotNil(t, record.AssignedAt)
	require.Equal(t, 1, record.ReviewsPerReviewer)

	// The applied count is mirrored onto the task policy.
	var reloadedTask models.Task
	require.NoError(t, db.First(&reloadedTask, task.ID).Error)
	require.Equal(t, 1, reloadedTask.ReviewsPerReviewer)

	// A review gets filed on one of the pairs.
	grade := 87.5
	submitted := time.Now()
	require.NoError(t, db.Model(&models.ReviewPair{}).
		Where("target_submission_id = ? AND reviewer_team_id = ?", subB.ID, teamA.ID).
		Updates(map[string]interface{}{
			"grade":        grade,
			"feedback":     "solid work",
			"submitted_at": submitted,
		}).Error)

	// Re-committing the same plan updates rows in place and clears content.
	_, err = repo.CommitPlan(context.Background(), input)
	require.NoError(t, err)

	count, err := repo.CountPairs(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	var pair models.ReviewPair
	require.NoError(t, db.
		Where("target_submission_id = ? AND reviewer_team_id = ?", subB.ID, teamA.ID).
		First(&pair).Error)
	require.Nil(t, pair.Grade)
	require.Empty(t, pair.Feedback)
	require.Nil(t, pair.SubmittedAt)
}

func TestCommitPlanIndividualResolvesSyntheticTeams(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	task := createTask(t, db, "Individual Commit")

	teamA, subA, peopleA := createTeamWithSubmission(t, db, task, "indiv-a", 0, "Cleo")
	teamB, subB, peopleB := createTeamWithSubmission(t, db, task, "indiv-b", time.Second, "Dina")

	input := CommitInput{
		TaskID:  task.ID,
		Mode:    models.ModeIndividual,
		Applied: 1,
		Seed:    "seed-indiv",
		Now:     time.Now(),
		Pairs: []pairing.Pair{
			{ReviewerID: peopleA[0].ID, ReviewerTeamID: teamA.ID, TargetTeamID: teamB.ID, TargetSubmissionID: subB.ID},
			{ReviewerID: peopleB[0].ID, ReviewerTeamID: teamB.ID, TargetTeamID: teamA.ID, TargetSubmissionID: subA.ID},
		},
	}

	_, err := repo.CommitPlan(context.Background(), input)
	require.NoError(t, err)

	var synthetic models.Team
	require.NoError(t, db.
		Where("name = ?", models.SyntheticTeamName(task.ID, peopleA[0].ID)).
		First(&synthetic).Error)
	require.True(t, synthetic.Synthetic)

	var member models.TeamMember
	require.NoError(t, db.
		Where("team_id = ? AND person_id = ?", synthetic.ID, peopleA[0].ID).
		First(&member).Error)

	var pair models.ReviewPair
	require.NoError(t, db.
		Where("target_submission_id = ? AND reviewer_team_id = ?", subB.ID, synthetic.ID).
		First(&pair).Error)

	// A second commit reuses the same synthetic teams.
	_, err = repo.CommitPlan(context.Background(), input)
	require.NoError(t, err)

	var syntheticCount int64
	require.NoError(t, db.Model(&models.Team{}).
		Where("name LIKE ?", models.TaskSyntheticPrefix(task.ID)+"%").
		Count(&syntheticCount).Error)
	require.Equal(t, int64(2), syntheticCount)
}

func TestResetTaskRestoresAssignableState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	task := createTask(t, db, "Reset Flow")

	teamA, subA, peopleA := createTeamWithSubmission(t, db, task, "reset-a", 0, "Ezra")
	teamB, subB, peopleB := createTeamWithSubmission(t, db, task, "reset-b", time.Second, "Faye")

	record, err := repo.CommitPlan(context.Background(), CommitInput{
		TaskID:  task.ID,
		Mode:    models.ModeIndividual,
		Applied: 1,
		Seed:    "seed-reset",
		Now:     time.Now(),
		Pairs: []pairing.Pair{
			{ReviewerID: peopleA[0].ID, ReviewerTeamID: teamA.ID, TargetTeamID: teamB.ID, TargetSubmissionID: subB.ID},
			{ReviewerID: peopleB[0].ID, ReviewerTeamID: teamB.ID, TargetTeamID: teamA.ID, TargetSubmissionID: subA.ID},
		},
	})
	require.NoError(t, err)

	var pair models.ReviewPair
	require.NoError(t, db.Where("assignment_id = ?", record.ID).First(&pair).Error)
	require.NoError(t, db.Create(&models.MetaReview{
		ReviewPairID:   pair.ID,
		AuthorPersonID: peopleA[0].ID,
		Feedback:       "fair review",
	}).Error)

	reset, err := repo.ResetTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.False(t, reset.Locked)
	require.Nil(t, reset.AssignedAt)

	count, err := repo.CountPairs(context.Background(), task.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	var metaCount int64
	require.NoError(t, db.Model(&models.MetaReview{}).
		Where("review_pair_id = ?", pair.ID).
		Count(&metaCount).Error)
	require.Zero(t, metaCount)

	var syntheticCount int64
	require.NoError(t, db.Model(&models.Team{}).
		Where("name LIKE ?", models.TaskSyntheticPrefix(task.ID)+"%").
		Count(&syntheticCount).Error)
	require.Zero(t, syntheticCount)

	// Submissions survive the reset.
	var submissionCount int64
	require.NoError(t, db.Model(&models.Submission{}).
		Where("task_id = ?", task.ID).
		Count(&submissionCount).Error)
	require.Equal(t, int64(2), submissionCount)
}

func TestResetTaskNeverAssignedIsNoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	task := createTask(t, db, "Reset Noop")

	record, err := repo.ResetTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, task.ID, record.TaskID)
	require.False(t, record.Locked)
}
