package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/catalogue"
	"github.com/campusforge/timetable-engine/internal/models"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
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

func baseStore() *mockStore {
	return &mockStore{
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
}

func TestBuildCreatesOneVariablePerDayStartCombination(t *testing.T) {
	snap := buildSnapshot(t, baseStore())
	problem, err := Build(snap, nil)
	require.NoError(t, err)

	require.Len(t, problem.Sessions, 1)
	sv := problem.Sessions[0]
	assert.Empty(t, problem.Dropped)

	want := grid.DayCount * (grid.LastValidStart(1) + 1)
	assert.Len(t, sv.Vars, want)
}

func TestBuildSkipsCourseWithNoLecturers(t *testing.T) {
	store := baseStore()
	store.lecturerAsgns = map[string][]models.LecturerAssignment{}
	snap := buildSnapshot(t, store)
	problem, err := Build(snap, nil)
	require.NoError(t, err)
	assert.Empty(t, problem.Sessions)
	require.Len(t, problem.DroppedCourses, 1)
	assert.Equal(t, "c1", problem.DroppedCourses[0].ID)
}

func TestBuildSkipsCourseWithNoGroups(t *testing.T) {
	store := baseStore()
	store.groupAsgns = map[string][]models.GroupAssignment{}
	snap := buildSnapshot(t, store)
	problem, err := Build(snap, nil)
	require.NoError(t, err)
	assert.Empty(t, problem.Sessions)
	require.Len(t, problem.DroppedCourses, 1)
	assert.Equal(t, "c1", problem.DroppedCourses[0].ID)
}

func TestBuildRaisesNoCompatibleRoomError(t *testing.T) {
	store := baseStore()
	store.courses[0].PreferredRoomType = models.RoomTypeLab
	store.rooms = []models.Room{{ID: "r1", RoomType: "Lecture Hall"}}
	snap := buildSnapshot(t, store)
	problem, err := Build(snap, nil)

	require.Nil(t, problem)
	require.Error(t, err)
	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrNoCompatibleRoom.Code, apiErr.Code)
}

func TestBuildExcludesFrozenRoomSlots(t *testing.T) {
	snap := buildSnapshot(t, baseStore())
	frozen := []models.PlacedSlot{
		{RoomID: "r1", DayOfWeek: 0, StartSlot: 0, EndSlot: grid.SlotCount},
	}
	problem, err := Build(snap, frozen)
	require.NoError(t, err)

	require.Len(t, problem.Sessions, 1)
	for _, v := range problem.Sessions[0].Vars {
		assert.NotEqual(t, 0, v.Key.Day, "day 0 should be fully blocked by the frozen room slot")
	}
	assert.NotEmpty(t, problem.Sessions[0].Vars)
}

func TestBuildExcludesLecturerUnavailability(t *testing.T) {
	store := baseStore()
	store.unavail = map[string][]models.LecturerUnavailability{
		"l1": {{LecturerID: "l1", DayOfWeek: 1, StartSlot: 0, EndSlot: grid.SlotCount}},
	}
	snap := buildSnapshot(t, store)
	problem, err := Build(snap, nil)
	require.NoError(t, err)

	for _, v := range problem.Sessions[0].Vars {
		assert.NotEqual(t, 1, v.Key.Day, "day 1 is fully unavailable for the only lecturer")
	}
}

func TestBuildDropsSessionThatCannotFitInDay(t *testing.T) {
	store := baseStore()
	oversized := grid.SlotCount + 1
	store.courses[0].LectureHours = oversized
	store.courses[0].SessionConfig = models.SessionConfig{RequiresConsecutive: oversized}
	snap := buildSnapshot(t, store)
	problem, err := Build(snap, nil)
	require.NoError(t, err)

	require.Len(t, problem.Sessions, 1)
	assert.Empty(t, problem.Sessions[0].Vars)
	require.Len(t, problem.Dropped, 1)
}
