package models

import (
	"strconv"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Session is a decomposed teaching unit: one contiguous block of hours
// of a single SessionType that the Session Decomposer produced from a
// Course's lecture/tutorial/practical hour totals. It is transient —
// never persisted on its own, only as the PlacedSlot(s) it resolves to
// once the solver assigns it a day/start/room/lecturer.
type Session struct {
	CourseID    string      `json:"course_id"`
	GroupID     string      `json:"group_id"`
	Type        SessionType `json:"type"`
	DurationHrs int         `json:"duration_hrs"`
	Sequence    int         `json:"sequence"`
}

// ID is a stable synthetic key identifying this session within a
// single decomposition run, used as a map key by the Model Builder.
func (s Session) ID() string {
	return s.CourseID + "|" + s.GroupID + "|" + string(s.Type) + "|" + strconv.Itoa(s.Sequence)
}

// PlacedSlot is a fully resolved, concrete timetable entry: a session
// assigned a day, a one-hour-granular time range, a room and a
// lecturer. This is the unit the Slot Materialiser persists.
type PlacedSlot struct {
	ID           string    `db:"id" json:"id"`
	TimetableID  string    `db:"timetable_id" json:"timetable_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	GroupID      string    `db:"group_id" json:"group_id"`
	LecturerID   string    `db:"lecturer_id" json:"lecturer_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	StartSlot    int       `db:"start_slot" json:"start_slot"`
	EndSlot      int       `db:"end_slot" json:"end_slot"`
	SessionType  string    `db:"session_type" json:"session_type"`
	Level        int       `db:"level" json:"level"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AcademicHalf names which half of the academic year a timetable
// belongs to.
type AcademicHalf string

const (
	AcademicHalfFirst  AcademicHalf = "first_half"
	AcademicHalfSecond AcademicHalf = "second_half"
)

// Timetable is a named generation run's container row. At most one
// Timetable across all semesters and years has IsActive set —
// TimetableRepository.Activate clears every active row before setting
// its target, never by a partial UPDATE.
type Timetable struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Semester           string         `db:"semester" json:"semester"`
	Year               int            `db:"year" json:"year"`
	AcademicHalf       AcademicHalf   `db:"academic_half" json:"academic_half"`
	IsActive           bool           `db:"is_active" json:"is_active"`
	GenerationMetadata types.JSONText `db:"generation_metadata" json:"generation_metadata,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// GenerationMetadata is the structured form written into
// Timetable.GenerationMetadata by the Slot Materialiser.
type GenerationMetadata struct {
	Generated       bool  `json:"generated"`
	LevelsProcessed []int `json:"levels_processed"`
}
