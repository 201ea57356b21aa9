package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/catalogue"
	"github.com/campusforge/timetable-engine/internal/model"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/pkg/grid"
)

type mockStore struct {
	courses       []models.Course
	groups        []models.StudentGroup
	rooms         []models.Room
	lecturerAsgns map[string][]models.LecturerAssignment
	groupAsgns    map[string][]models.GroupAssignment
	lecturers     map[string]models.Lecturer
	unavail       map[string][]models.LecturerUnavailability
}

func (m *mockStore) CoursesByLevel(ctx context.Context, level int) ([]models.Course, error) {
	return m.courses, nil
}
func (m *mockStore) GroupsByLevel(ctx context.Context, level int) ([]models.StudentGroup, error) {
	return m.groups, nil
}
func (m *mockStore) AllRooms(ctx context.Context) ([]models.Room, error) { return m.rooms, nil }
func (m *mockStore) LecturerAssignmentsByCourse(ctx context.Context, courseID string) ([]models.LecturerAssignment, error) {
	return m.lecturerAsgns[courseID], nil
}
func (m *mockStore) GroupAssignmentsByCourse(ctx context.Context, courseID string) ([]models.GroupAssignment, error) {
	return m.groupAsgns[courseID], nil
}
func (m *mockStore) Lecturer(ctx context.Context, lecturerID string) (models.Lecturer, error) {
	return m.lecturers[lecturerID], nil
}
func (m *mockStore) LecturerUnavailability(ctx context.Context, lecturerID string) ([]models.LecturerUnavailability, error) {
	return m.unavail[lecturerID], nil
}

func buildSnapshot(t *testing.T, store *mockStore) *catalogue.Snapshot {
	t.Helper()
	snap, err := catalogue.Build(context.Background(), store, 3)
	require.NoError(t, err)
	return snap
}

func TestSolveFindsOptimalAssignmentWithNoPreferences(t *testing.T) {
	store := &mockStore{
		courses: []models.Course{{ID: "c1", Level: 3, LectureHours: 1, PreferredRoomType: models.RoomTypeAny}},
		groups:  []models.StudentGroup{{ID: "g1", Level: 3}},
		rooms:   []models.Room{{ID: "r1", RoomType: "Lecture Hall"}},
		lecturerAsgns: map[string][]models.LecturerAssignment{
			"c1": {{LecturerID: "l1", CourseID: "c1"}},
		},
		groupAsgns: map[string][]models.GroupAssignment{
			"c1": {{GroupID: "g1", CourseID: "c1"}},
		},
		lecturers: map[string]models.Lecturer{"l1": {ID: "l1"}},
	}
	snap := buildSnapshot(t, store)
	problem, err := model.Build(snap, nil)
	require.NoError(t, err)

	result := Solve(context.Background(), snap, problem, 5*time.Second)
	assert.Equal(t, StatusOptimal, result.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 0, result.SoftViolations)
}

func TestSolveHonoursAvoidEarlyMorningPreference(t *testing.T) {
	store := &mockStore{
		courses: []models.Course{{ID: "c1", Level: 3, LectureHours: 1, PreferredRoomType: models.RoomTypeAny}},
		groups:  []models.StudentGroup{{ID: "g1", Level: 3}},
		rooms:   []models.Room{{ID: "r1", RoomType: "Lecture Hall"}},
		lecturerAsgns: map[string][]models.LecturerAssignment{
			"c1": {{LecturerID: "l1", CourseID: "c1"}},
		},
		groupAsgns: map[string][]models.GroupAssignment{
			"c1": {{GroupID: "g1", CourseID: "c1"}},
		},
		lecturers: map[string]models.Lecturer{
			"l1": {ID: "l1", Preferences: models.LecturerPreferences{AvoidEarlyMorning: true}},
		},
	}
	snap := buildSnapshot(t, store)
	problem, err := model.Build(snap, nil)
	require.NoError(t, err)

	result := Solve(context.Background(), snap, problem, 5*time.Second)
	require.Equal(t, StatusOptimal, result.Status)
	require.Len(t, result.Assignments, 1)
	assert.NotEqual(t, 0, result.Assignments[0].Key.Start, "first slot should be avoided for an early-morning-averse lecturer when alternatives exist")
}

func TestSolveReturnsInfeasibleWhenRoomExclusivityCannotBeSatisfied(t *testing.T) {
	// Two full-day sessions, but only one day's worth of room capacity
	// remains once the other four days are frozen by an earlier level —
	// both sessions need the only room on the only day left.
	store := &mockStore{
		courses: []models.Course{
			{ID: "c1", Level: 3, LectureHours: grid.SlotCount, PreferredRoomType: models.RoomTypeAny},
			{ID: "c2", Level: 3, LectureHours: grid.SlotCount, PreferredRoomType: models.RoomTypeAny},
		},
		groups: []models.StudentGroup{{ID: "g1", Level: 3}},
		rooms:  []models.Room{{ID: "r1", RoomType: "Lecture Hall"}},
		lecturerAsgns: map[string][]models.LecturerAssignment{
			"c1": {{LecturerID: "l1", CourseID: "c1"}},
			"c2": {{LecturerID: "l1", CourseID: "c2"}},
		},
		groupAsgns: map[string][]models.GroupAssignment{
			"c1": {{GroupID: "g1", CourseID: "c1"}},
			"c2": {{GroupID: "g1", CourseID: "c2"}},
		},
		lecturers: map[string]models.Lecturer{"l1": {ID: "l1"}},
	}
	store.courses[0].SessionConfig = models.SessionConfig{RequiresConsecutive: grid.SlotCount}
	store.courses[1].SessionConfig = models.SessionConfig{RequiresConsecutive: grid.SlotCount}

	var frozen []models.PlacedSlot
	for day := 1; day < grid.DayCount; day++ {
		frozen = append(frozen, models.PlacedSlot{RoomID: "r1", DayOfWeek: day, StartSlot: 0, EndSlot: grid.SlotCount})
	}

	snap := buildSnapshot(t, store)
	problem, err := model.Build(snap, frozen)
	require.NoError(t, err)

	result := Solve(context.Background(), snap, problem, 5*time.Second)
	assert.Equal(t, StatusInfeasible, result.Status)
}

func TestSolveSkipsDroppedSessionsWithEmptyDomain(t *testing.T) {
	// A session that cannot fit within a single day (H6) has its room
	// domain computed fine but is dropped before any variable is
	// generated — distinct from the NO_COMPATIBLE_ROOM error case, which
	// model.Build now raises instead of silently dropping.
	oversized := grid.SlotCount + 1
	store := &mockStore{
		courses: []models.Course{{
			ID: "c1", Level: 3, LectureHours: oversized, PreferredRoomType: models.RoomTypeAny,
			SessionConfig: models.SessionConfig{RequiresConsecutive: oversized},
		}},
		groups: []models.StudentGroup{{ID: "g1", Level: 3}},
		rooms:  []models.Room{{ID: "r1", RoomType: "Lecture Hall"}},
		lecturerAsgns: map[string][]models.LecturerAssignment{
			"c1": {{LecturerID: "l1", CourseID: "c1"}},
		},
		groupAsgns: map[string][]models.GroupAssignment{
			"c1": {{GroupID: "g1", CourseID: "c1"}},
		},
		lecturers: map[string]models.Lecturer{"l1": {ID: "l1"}},
	}
	snap := buildSnapshot(t, store)
	problem, err := model.Build(snap, nil)
	require.NoError(t, err)

	result := Solve(context.Background(), snap, problem, 5*time.Second)
	assert.Equal(t, StatusOptimal, result.Status, "an empty-domain session is dropped, not infeasible")
	assert.Empty(t, result.Assignments)
	require.Len(t, result.Dropped, 1)
}
