package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/peergrade-io/peergrade-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Task{},
		&models.Person{},
		&models.Team{},
		&models.TeamMember{},
		&models.Submission{},
		&models.ReviewAssignment{},
		&models.ReviewPair{},
		&models.MetaReview{},
		&models.RubricItem{},
	))
	return db
}

func createTask(t *testing.T, db *gorm.DB, title string) models.Task {
	t.Helper()
	task := models.Task{Title: title, ReviewsPerReviewer: 1, DueDate: time.Now().Add(72 * time.Hour)}
	require.NoError(t, db.Create(&task).Error)
	return task
}

// createTeamWithSubmission creates a team with the given roster, plus its
// submission for the task. People get unique emails derived from the team
// name so the shared in-memory database stays collision free across tests.
func createTeamWithSubmission(t *testing.T, db *gorm.DB, task models.Task, name string, offset time.Duration, people ...string) (models.Team, models.Submission, []models.Person) {
	t.Helper()

	team := models.Team{Name: name}
	require.NoError(t, db.Create(&team).Error)

	persons := make([]models.Person, 0, len(people))
	for _, personName := range people {
		person := models.Person{
			Name:  personName,
			Email: fmt.Sprintf("%s.%s@example.com", personName, name),
		}
		require.NoError(t, db.Create(&person).Error)
		require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, PersonID: person.ID}).Error)
		persons = append(persons, person)
	}

	submission := models.Submission{
		TaskID:    task.ID,
		TeamID:    team.ID,
		FileURL:   "https://files.example.com/" + name + ".zip",
		CreatedAt: time.Now().Add(offset),
	}
	require.NoError(t, db.Create(&submission).Error)

	return team, submission, persons
}
