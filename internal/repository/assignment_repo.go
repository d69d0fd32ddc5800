package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/peergrade-io/peergrade-api/internal/models"
	"github.com/peergrade-io/peergrade-api/internal/pairing"
)

// CommitInput carries a confirmed preview plan into the transactional commit.
type CommitInput struct {
	TaskID  uint
	Mode    models.AssignmentMode
	Applied int
	Seed    string
	Pairs   []pairing.Pair
	Now     time.Time
}

// AssignmentRepository owns the review-assignment record, the pairing
// context query, and the transactional commit/reset steps.
type AssignmentRepository interface {
	GetRecord(ctx context.Context, taskID uint) (models.ReviewAssignment, error)
	LoadContext(ctx context.Context, taskID uint) (pairing.Context, error)
	CountPairs(ctx context.Context, taskID uint) (int64, error)
	ListPairs(ctx context.Context, taskID uint) ([]models.ReviewPair, error)
	CommitPlan(ctx context.Context, input CommitInput) (models.ReviewAssignment, error)
	ResetTask(ctx context.Context, taskID uint) (models.ReviewAssignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetRecord(ctx context.Context, taskID uint) (models.ReviewAssignment, error) {
	var record models.ReviewAssignment
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&record).Error; err != nil {
		return models.ReviewAssignment{}, err
	}

	return record, nil
}

// LoadContext reads the pairing snapshot for a task: every submitting team in
// submission creation order, team names, submission ids and rosters. Teams
// without a submission never appear.
func (r *assignmentRepository) LoadContext(ctx context.Context, taskID uint) (pairing.Context, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Preload("Team.Members.Person").
		Find(&submissions).Error; err != nil {
		return pairing.Context{}, err
	}

	loaded := pairing.Context{
		TeamNames:        make(map[uint]string, len(submissions)),
		SubmissionOfTeam: make(map[uint]uint, len(submissions)),
		MembersOfTeam:    make(map[uint][]pairing.Person, len(submissions)),
	}

	for _, submission := range submissions {
		team := submission.Team
		loaded.TeamIDs = append(loaded.TeamIDs, team.ID)
		loaded.TeamNames[team.ID] = team.Name
		loaded.SubmissionOfTeam[team.ID] = submission.ID

		members := make([]pairing.Person, 0, len(team.Members))
		for _, member := range team.Members {
			members = append(members, pairing.Person{
				ID:     member.PersonID,
				Name:   member.Person.Name,
				TeamID: team.ID,
			})
		}
		loaded.MembersOfTeam[team.ID] = members
	}

	return loaded, nil
}

func (r *assignmentRepository) CountPairs(ctx context.Context, taskID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReviewPair{}).
		Joins("JOIN review_assignments ON review_assignments.id = review_pairs.assignment_id").
		Where("review_assignments.task_id = ?", taskID).
		Count(&count).Error

	return count, err
}

func (r *assignmentRepository) ListPairs(ctx context.Context, taskID uint) ([]models.ReviewPair, error) {
	var pairs []models.ReviewPair
	err := r.db.WithContext(ctx).
		Joins("JOIN review_assignments ON review_assignments.id = review_pairs.assignment_id").
		Where("review_assignments.task_id = ?", taskID).
		Order("review_pairs.id ASC").
		Preload("TargetSubmission.Team").
		Preload("ReviewerTeam.Members.Person").
		Find(&pairs).Error

	return pairs, err
}

// CommitPlan persists a confirmed plan atomically: it ensures the assignment
// record, resolves individual-mode reviewers to synthetic teams, upserts
// every pair (clearing stale review content on conflict), locks the record
// and mirrors the applied count onto the task's default policy.
func (r *assignmentRepository) CommitPlan(ctx context.Context, input CommitInput) (models.ReviewAssignment, error) {
	var record models.ReviewAssignment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", input.TaskID).First(&record).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record = models.ReviewAssignment{TaskID: input.TaskID, Mode: input.Mode}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		reviewerTeams := make(map[uint]uint, len(input.Pairs))
		if input.Mode == models.ModeIndividual {
			for _, pair := range input.Pairs {
				if _, done := reviewerTeams[pair.ReviewerID]; done {
					continue
				}
				team, err := ensureReviewerTeam(tx, input.TaskID, pair.ReviewerID)
				if err != nil {
					return err
				}
				reviewerTeams[pair.ReviewerID] = team.ID
			}
		}

		for _, pair := range input.Pairs {
			reviewerTeamID := pair.ReviewerID
			if input.Mode == models.ModeIndividual {
				reviewerTeamID = reviewerTeams[pair.ReviewerID]
			}

			row := models.ReviewPair{
				AssignmentID:       record.ID,
				TargetSubmissionID: pair.TargetSubmissionID,
				ReviewerTeamID:     reviewerTeamID,
				AssignedAt:         input.Now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "target_submission_id"}, {Name: "reviewer_team_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"assignment_id": record.ID,
					"assigned_at":   input.Now,
					"grade":         nil,
					"feedback":      "",
					"answers":       nil,
					"submitted_at":  nil,
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}

		assignedAt := input.Now
		record.Mode = input.Mode
		record.ReviewsPerReviewer = input.Applied
		record.Locked = true
		record.Seed = input.Seed
		record.AssignedAt = &assignedAt
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", input.TaskID).
			Update("reviews_per_reviewer", input.Applied).Error
	})
	if err != nil {
		return models.ReviewAssignment{}, err
	}

	return record, nil
}

// ResetTask tears a committed assignment down: meta-reviews, pairs and
// reviewer-only synthetic teams go away, the record unlocks. Submissions,
// rosters and rubric items are untouched. Resetting a never-assigned task is
// a no-op.
func (r *assignmentRepository) ResetTask(ctx context.Context, taskID uint) (models.ReviewAssignment, error) {
	var record models.ReviewAssignment
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ReviewAssignment{TaskID: taskID}, nil
	}
	if err != nil {
		return models.ReviewAssignment{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pairIDs := tx.Model(&models.ReviewPair{}).
			Select("id").
			Where("assignment_id = ?", record.ID)
		if err := tx.Where("review_pair_id IN (?)", pairIDs).
			Delete(&models.MetaReview{}).Error; err != nil {
			return err
		}

		if err := tx.Where("assignment_id = ?", record.ID).
			Delete(&models.ReviewPair{}).Error; err != nil {
			return err
		}

		// Synthetic reviewer teams exist only for this task; drop the ones
		// that never held a submission.
		var orphans []models.Team
		submittingTeams := tx.Model(&models.Submission{}).Select("team_id")
		if err := tx.Where("synthetic = ?", true).
			Where("name LIKE ?", models.TaskSyntheticPrefix(taskID)+"%").
			Where("id NOT IN (?)", submittingTeams).
			Find(&orphans).Error; err != nil {
			return err
		}
		for _, orphan := range orphans {
			if err := tx.Where("team_id = ?", orphan.ID).
				Delete(&models.TeamMember{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Team{}, orphan.ID).Error; err != nil {
				return err
			}
		}

		return tx.Model(&record).Updates(map[string]interface{}{
			"locked":      false,
			"assigned_at": nil,
		}).Error
	})
	if err != nil {
		return models.ReviewAssignment{}, err
	}

	record.Locked = false
	record.AssignedAt = nil

	return record, nil
}
