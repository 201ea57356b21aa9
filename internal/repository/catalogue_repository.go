package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusforge/timetable-engine/internal/models"
)

// CatalogueRepository is the read-only Postgres-backed implementation
// of catalogue.Store: every query the Catalogue Snapshot needs, and
// nothing else — no create/update/delete surface, matching spec.md's
// narrow Catalogue Store collaborator interface.
type CatalogueRepository struct {
	db *sqlx.DB
}

// NewCatalogueRepository builds the repository.
func NewCatalogueRepository(db *sqlx.DB) *CatalogueRepository {
	return &CatalogueRepository{db: db}
}

// CoursesByLevel returns every course offered at an academic level, with
// each course's session_configuration JSON decoded into SessionConfig
// so decompose.ConsecutiveBlockSize sees the real requires_consecutive
// value instead of always falling back to its zero-value default.
func (r *CatalogueRepository) CoursesByLevel(ctx context.Context, level int) ([]models.Course, error) {
	const query = `SELECT id, code, name, department_id, level, lecture_hours, tutorial_hours,
		practical_hours, preferred_room_type, session_configuration, course_type, group_division_type
		FROM courses WHERE level = $1 ORDER BY code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, level); err != nil {
		return nil, fmt.Errorf("courses by level: %w", err)
	}
	for i := range courses {
		if err := courses[i].DecodeSessionConfig(); err != nil {
			return nil, fmt.Errorf("decode session config for course %s: %w", courses[i].ID, err)
		}
	}
	return courses, nil
}

// GroupsByLevel returns every student group at an academic level.
func (r *CatalogueRepository) GroupsByLevel(ctx context.Context, level int) ([]models.StudentGroup, error) {
	const query = `SELECT id, name, level, department_id, size, group_type, parent_group_id, display_code
		FROM student_groups WHERE level = $1 ORDER BY name ASC`
	var groups []models.StudentGroup
	if err := r.db.SelectContext(ctx, &groups, query, level); err != nil {
		return nil, fmt.Errorf("groups by level: %w", err)
	}
	return groups, nil
}

// AllRooms returns every room in the building, regardless of level —
// mirrors the original's unconditional `db.query(Room).all()`.
func (r *CatalogueRepository) AllRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, building, capacity, room_type, room_category, department_affinity, priority, equipment, availability
		FROM rooms ORDER BY name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("all rooms: %w", err)
	}
	return rooms, nil
}

// LecturerAssignmentsByCourse returns every lecturer allowed to teach a course.
func (r *CatalogueRepository) LecturerAssignmentsByCourse(ctx context.Context, courseID string) ([]models.LecturerAssignment, error) {
	const query = `SELECT id, lecturer_id, course_id, group_division_required, expertise_level
		FROM lecturer_assignments WHERE course_id = $1 ORDER BY id ASC`
	var out []models.LecturerAssignment
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("lecturer assignments by course: %w", err)
	}
	return out, nil
}

// GroupAssignmentsByCourse returns every group enrolled in a course.
func (r *CatalogueRepository) GroupAssignmentsByCourse(ctx context.Context, courseID string) ([]models.GroupAssignment, error) {
	const query = `SELECT id, group_id, course_id FROM group_assignments WHERE course_id = $1 ORDER BY id ASC`
	var out []models.GroupAssignment
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("group assignments by course: %w", err)
	}
	return out, nil
}

// Lecturer returns a single lecturer by id, with its soft-preference
// JSON decoded into Preferences.
func (r *CatalogueRepository) Lecturer(ctx context.Context, lecturerID string) (models.Lecturer, error) {
	const query = `SELECT id, staff_number, name, department_id, max_hours_per_week, preferences
		FROM lecturers WHERE id = $1`
	var l models.Lecturer
	if err := r.db.GetContext(ctx, &l, query, lecturerID); err != nil {
		return models.Lecturer{}, fmt.Errorf("lecturer: %w", err)
	}
	if err := l.DecodePreferences(); err != nil {
		return models.Lecturer{}, fmt.Errorf("decode lecturer preferences: %w", err)
	}
	return l, nil
}

// LecturerUnavailability returns a lecturer's recurring weekly unavailable windows.
func (r *CatalogueRepository) LecturerUnavailability(ctx context.Context, lecturerID string) ([]models.LecturerUnavailability, error) {
	const query = `SELECT id, lecturer_id, day_of_week, start_slot, end_slot
		FROM lecturer_unavailability WHERE lecturer_id = $1 ORDER BY id ASC`
	var out []models.LecturerUnavailability
	if err := r.db.SelectContext(ctx, &out, query, lecturerID); err != nil {
		return nil, fmt.Errorf("lecturer unavailability: %w", err)
	}
	return out, nil
}
