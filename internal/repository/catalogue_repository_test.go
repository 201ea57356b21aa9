package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogueRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogueRepositoryCoursesByLevel(t *testing.T) {
	db, mock, cleanup := newCatalogueRepoMock(t)
	defer cleanup()
	repo := NewCatalogueRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "code", "name", "department_id", "level", "lecture_hours", "tutorial_hours",
		"practical_hours", "preferred_room_type", "session_configuration", "course_type", "group_division_type",
	}).AddRow("c1", "CS301", "Algorithms", "d1", 3, 5, 1, 0, "ANY", []byte(`{"requires_consecutive":2}`), "DEPARTMENT_SPECIFIC", "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, department_id, level, lecture_hours, tutorial_hours")).
		WithArgs(3).
		WillReturnRows(rows)

	courses, err := repo.CoursesByLevel(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS301", courses[0].Code)
	assert.EqualValues(t, 2, courses[0].SessionConfig.RequiresConsecutive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogueRepositoryAllRoomsIsUnconditional(t *testing.T) {
	db, mock, cleanup := newCatalogueRepoMock(t)
	defer cleanup()
	repo := NewCatalogueRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "name", "building", "capacity", "room_type", "room_category", "department_affinity", "priority", "equipment", "availability",
	}).AddRow("r1", "Hall A", "Main", 60, "Lecture Hall", "", nil, "standard", pq.StringArray{"projector"}, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, building, capacity, room_type, room_category, department_affinity, priority, equipment, availability FROM rooms ORDER BY name ASC")).
		WillReturnRows(rows)

	rooms, err := repo.AllRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Hall A", rooms[0].Name)
	assert.Equal(t, pq.StringArray{"projector"}, rooms[0].Equipment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogueRepositoryLecturerDecodesPreferences(t *testing.T) {
	db, mock, cleanup := newCatalogueRepoMock(t)
	defer cleanup()
	repo := NewCatalogueRepository(db)

	rows := sqlmock.NewRows([]string{"id", "staff_number", "name", "department_id", "max_hours_per_week", "preferences"}).
		AddRow("l1", "S001", "Dr A", "d1", 20, []byte(`{"avoid_early_morning":true}`))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, staff_number, name, department_id, max_hours_per_week, preferences")).
		WithArgs("l1").
		WillReturnRows(rows)

	lect, err := repo.Lecturer(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, lect.Preferences.AvoidEarlyMorning)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogueRepositoryLecturerUnavailability(t *testing.T) {
	db, mock, cleanup := newCatalogueRepoMock(t)
	defer cleanup()
	repo := NewCatalogueRepository(db)

	rows := sqlmock.NewRows([]string{"id", "lecturer_id", "day_of_week", "start_slot", "end_slot"}).
		AddRow("u1", "l1", 0, 0, 2)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, lecturer_id, day_of_week, start_slot, end_slot")).
		WithArgs("l1").
		WillReturnRows(rows)

	out, err := repo.LecturerUnavailability(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].EndSlot)
	assert.NoError(t, mock.ExpectationsWereMet())
}
