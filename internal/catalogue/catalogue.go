// Package catalogue defines the Catalogue Snapshot: an immutable,
// in-memory view of everything the solver needs for one academic level,
// fetched once up front so the model-building and solving phases never
// touch the database mid-solve.
package catalogue

import (
	"context"

	"github.com/campusforge/timetable-engine/internal/models"
)

// Store is the narrow read-only collaborator interface the Catalogue
// Snapshot is built from. Implementations live in internal/repository;
// this package has no knowledge of Postgres.
type Store interface {
	CoursesByLevel(ctx context.Context, level int) ([]models.Course, error)
	GroupsByLevel(ctx context.Context, level int) ([]models.StudentGroup, error)
	AllRooms(ctx context.Context) ([]models.Room, error)
	LecturerAssignmentsByCourse(ctx context.Context, courseID string) ([]models.LecturerAssignment, error)
	GroupAssignmentsByCourse(ctx context.Context, courseID string) ([]models.GroupAssignment, error)
	Lecturer(ctx context.Context, lecturerID string) (models.Lecturer, error)
	LecturerUnavailability(ctx context.Context, lecturerID string) ([]models.LecturerUnavailability, error)
}

// Snapshot is the frozen view of one level's scheduling universe.
// Mirrors the ad hoc queries at the top of
// TimetableGenerator.generate_level_timetable: courses for the level,
// groups for the level, every room in the building regardless of
// level, and per-course lecturer/group assignment lookups.
type Snapshot struct {
	Level                int
	Courses              []models.Course
	Groups               []models.StudentGroup
	Rooms                []models.Room
	lecturersByCourse     map[string][]string
	groupsByCourse        map[string][]string
	lecturerByID          map[string]models.Lecturer
	unavailabilityByLect  map[string][]models.LecturerUnavailability
}

// Empty reports whether there is nothing to schedule at this level —
// the generator treats "no courses" and "no groups" as trivial success
// (`if not courses: return True`), not failure.
func (s *Snapshot) Empty() bool {
	return len(s.Courses) == 0 || len(s.Groups) == 0
}

// LecturersFor returns the possible lecturer ids for a course: an empty
// slice if none are assigned, nil if the course is not in the snapshot.
// Callers must skip courses with no lecturers, matching
// "if not possible_lecturers: continue".
func (s *Snapshot) LecturersFor(courseID string) []string {
	return s.lecturersByCourse[courseID]
}

// GroupsFor returns the possible group ids for a course: an empty slice
// if none are assigned, nil if the course is not in the snapshot.
func (s *Snapshot) GroupsFor(courseID string) []string {
	return s.groupsByCourse[courseID]
}

// Lecturer looks up a lecturer's full record by id.
func (s *Snapshot) Lecturer(id string) (models.Lecturer, bool) {
	l, ok := s.lecturerByID[id]
	return l, ok
}

// Unavailability returns the recurring weekly blocks during which a
// lecturer cannot be scheduled.
func (s *Snapshot) Unavailability(lecturerID string) []models.LecturerUnavailability {
	return s.unavailabilityByLect[lecturerID]
}

// Build fetches and freezes everything generate_level_timetable needs
// for one level, in one pass, from the Catalogue Store.
func Build(ctx context.Context, store Store, level int) (*Snapshot, error) {
	courses, err := store.CoursesByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Level:                level,
		Courses:              courses,
		lecturersByCourse:    map[string][]string{},
		groupsByCourse:       map[string][]string{},
		lecturerByID:         map[string]models.Lecturer{},
		unavailabilityByLect: map[string][]models.LecturerUnavailability{},
	}
	if len(courses) == 0 {
		return snap, nil
	}

	groups, err := store.GroupsByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	snap.Groups = groups
	if len(groups) == 0 {
		return snap, nil
	}

	rooms, err := store.AllRooms(ctx)
	if err != nil {
		return nil, err
	}
	snap.Rooms = rooms

	seenLecturers := map[string]bool{}
	for _, c := range courses {
		las, err := store.LecturerAssignmentsByCourse(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(las))
		for _, la := range las {
			ids = append(ids, la.LecturerID)
			seenLecturers[la.LecturerID] = true
		}
		snap.lecturersByCourse[c.ID] = ids

		gas, err := store.GroupAssignmentsByCourse(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		gids := make([]string, 0, len(gas))
		for _, ga := range gas {
			gids = append(gids, ga.GroupID)
		}
		snap.groupsByCourse[c.ID] = gids
	}

	for lecturerID := range seenLecturers {
		lect, err := store.Lecturer(ctx, lecturerID)
		if err != nil {
			return nil, err
		}
		snap.lecturerByID[lecturerID] = lect

		unavail, err := store.LecturerUnavailability(ctx, lecturerID)
		if err != nil {
			return nil, err
		}
		snap.unavailabilityByLect[lecturerID] = unavail
	}

	return snap, nil
}
