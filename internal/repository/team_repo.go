package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/models"
)

// TeamRepository defines persistence operations for teams and rosters.
type TeamRepository interface {
	ListByTask(ctx context.Context, taskID uint) ([]models.Team, error)
	GetByID(ctx context.Context, id uint) (models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	AddMember(ctx context.Context, teamID, personID uint) error
	EnsureReviewerTeam(ctx context.Context, taskID, personID uint) (models.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository instantiates the repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// ListByTask returns the teams that submitted for the task, in submission
// creation order, with rosters preloaded.
func (r *teamRepository) ListByTask(ctx context.Context, taskID uint) ([]models.Team, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC, id ASC").
		Preload("Team.Members.Person").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	teams := make([]models.Team, 0, len(submissions))
	for _, submission := range submissions {
		teams = append(teams, submission.Team)
	}

	return teams, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Preload("Members.Person").First(&team, id).Error; err != nil {
		return models.Team{}, err
	}

	return team, nil
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) AddMember(ctx context.Context, teamID, personID uint) error {
	return ensureMembership(r.db.WithContext(ctx), teamID, personID)
}

// EnsureReviewerTeam resolves the synthetic single-member team for a person
// within a task, creating the team and its membership if absent. Calling it
// repeatedly for the same (task, person) always yields the same team.
func (r *teamRepository) EnsureReviewerTeam(ctx context.Context, taskID, personID uint) (models.Team, error) {
	return ensureReviewerTeam(r.db.WithContext(ctx), taskID, personID)
}

func ensureReviewerTeam(db *gorm.DB, taskID, personID uint) (models.Team, error) {
	name := models.SyntheticTeamName(taskID, personID)

	var team models.Team
	err := db.Where("name = ?", name).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		team = models.Team{Name: name, Synthetic: true}
		if err := db.Create(&team).Error; err != nil {
			return models.Team{}, err
		}
	} else if err != nil {
		return models.Team{}, err
	}

	if err := ensureMembership(db, team.ID, personID); err != nil {
		return models.Team{}, err
	}

	return team, nil
}

func ensureMembership(db *gorm.DB, teamID, personID uint) error {
	var member models.TeamMember
	err := db.Where("team_id = ? AND person_id = ?", teamID, personID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.TeamMember{TeamID: teamID, PersonID: personID}).Error
	}

	return err
}
