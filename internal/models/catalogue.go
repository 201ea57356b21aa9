package models

import (
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// RoomType is the canonical, closed set of preferred room categories a
// course can request. Values are used as stored, with no normalisation
// step; roomfilter.Compatible accepts every room for a value outside
// this set.
type RoomType string

const (
	RoomTypeLectureHall  RoomType = "LECTURE_HALL"
	RoomTypeDrawingRoom  RoomType = "DRAWING_ROOM"
	RoomTypeSeminarRoom  RoomType = "SEMINAR_ROOM"
	RoomTypeLab          RoomType = "LAB"
	RoomTypeSurveyingRoom RoomType = "SURVEYING_ROOM"
	RoomTypeAny          RoomType = "ANY"
)

// CourseType distinguishes how broadly a course is taught.
type CourseType string

const (
	CourseTypeDepartmentSpecific CourseType = "DEPARTMENT_SPECIFIC"
	CourseTypeGeneral            CourseType = "GENERAL"
	CourseTypeMultiDepartment    CourseType = "MULTI_DEPARTMENT"
)

// SessionType names the three atomic teaching units a course decomposes
// into.
type SessionType string

const (
	SessionLecture   SessionType = "lecture"
	SessionTutorial  SessionType = "tutorial"
	SessionPractical SessionType = "practical"
)

// RoomPriority is carried on Room as stored. Neither
// roomfilter.Compatible nor the Level Solver reads it, so it does not
// affect which room a session is placed in.
type RoomPriority string

const (
	RoomPriorityStandard RoomPriority = "standard"
	RoomPriorityHigh     RoomPriority = "high"
)

// Department is a short-coded organisational unit owning courses,
// lecturers and groups.
type Department struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
}

// SessionConfig holds the session-shape knobs a course carries. The
// legacy `requires_consecutive` field may arrive as a JSON bool or int;
// normalisation happens in decompose.ConsecutiveBlockSize.
type SessionConfig struct {
	RequiresConsecutive interface{} `json:"requires_consecutive,omitempty"`
}

// Course is a unit of teaching with required lecture/tutorial/practical
// hours and a room-type preference.
type Course struct {
	ID                string        `db:"id" json:"id"`
	Code              string        `db:"code" json:"code"`
	Name              string        `db:"name" json:"name"`
	DepartmentID      string        `db:"department_id" json:"department_id"`
	Level             int           `db:"level" json:"level"`
	LectureHours      int           `db:"lecture_hours" json:"lecture_hours"`
	TutorialHours     int           `db:"tutorial_hours" json:"tutorial_hours"`
	PracticalHours    int           `db:"practical_hours" json:"practical_hours"`
	PreferredRoomType RoomType      `db:"preferred_room_type" json:"preferred_room_type"`
	SessionConfigRaw  types.JSONText `db:"session_configuration" json:"-"`
	SessionConfig     SessionConfig `db:"-" json:"session_config"`
	CourseType        CourseType    `db:"course_type" json:"course_type"`
	GroupDivisionType string        `db:"group_division_type" json:"group_division_type,omitempty"`
}

// TotalHours is the sum of all required teaching hours for the course.
func (c Course) TotalHours() int {
	return c.LectureHours + c.TutorialHours + c.PracticalHours
}

// DecodeSessionConfig unmarshals SessionConfigRaw into SessionConfig. A
// course row with no session_configuration JSON (NULL or empty) decodes
// to the zero value — decompose.ConsecutiveBlockSize then falls back to
// 1-hour blocks, same as a missing requires_consecutive key.
func (c *Course) DecodeSessionConfig() error {
	if len(c.SessionConfigRaw) == 0 {
		return nil
	}
	return json.Unmarshal(c.SessionConfigRaw, &c.SessionConfig)
}

// LecturerPreferences captures soft scheduling preferences for a lecturer.
type LecturerPreferences struct {
	AvoidEarlyMorning  bool     `json:"avoid_early_morning"`
	AvoidLateAfternoon bool     `json:"avoid_late_afternoon"`
	PreferredDays      []int    `json:"preferred_days,omitempty"`
}

// Lecturer is a teaching staff member.
type Lecturer struct {
	ID              string     `db:"id" json:"id"`
	StaffNumber     string     `db:"staff_number" json:"staff_number"`
	Name            string     `db:"name" json:"name"`
	DepartmentID    string     `db:"department_id" json:"department_id"`
	MaxHoursPerWeek int        `db:"max_hours_per_week" json:"max_hours_per_week"`
	PreferencesRaw  types.JSONText `db:"preferences" json:"-"`
	Preferences     LecturerPreferences `db:"-" json:"preferences"`
}

// DecodePreferences unmarshals PreferencesRaw into Preferences. A
// lecturer row with no preferences JSON (NULL or empty) decodes to the
// zero value — no soft-constraint avoidance requested.
func (l *Lecturer) DecodePreferences() error {
	if len(l.PreferencesRaw) == 0 {
		return nil
	}
	return json.Unmarshal(l.PreferencesRaw, &l.Preferences)
}

// LecturerUnavailability is a recurring weekly window during which a
// lecturer cannot be scheduled.
type LecturerUnavailability struct {
	ID         string `db:"id" json:"id"`
	LecturerID string `db:"lecturer_id" json:"lecturer_id"`
	DayOfWeek  int    `db:"day_of_week" json:"day_of_week"`
	StartSlot  int    `db:"start_slot" json:"start_slot"`
	EndSlot    int    `db:"end_slot" json:"end_slot"`
}

// Room is a physical teaching space. Equipment and Availability are
// carried but not yet consulted by roomfilter.Compatible or the
// Level Solver — see DESIGN.md's open-question ledger.
type Room struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Building           string         `db:"building" json:"building"`
	Capacity           int            `db:"capacity" json:"capacity"`
	RoomType           string         `db:"room_type" json:"room_type"`
	RoomCategory       string         `db:"room_category" json:"room_category,omitempty"`
	DepartmentAffinity *string        `db:"department_affinity" json:"department_affinity,omitempty"`
	Priority           RoomPriority   `db:"priority" json:"priority"`
	Equipment          pq.StringArray `db:"equipment" json:"equipment,omitempty"`
	Availability       types.JSONText `db:"availability" json:"availability,omitempty"`
}

// StudentGroup is a cohort of students sharing a timetable.
type StudentGroup struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Level        int     `db:"level" json:"level"`
	DepartmentID string  `db:"department_id" json:"department_id"`
	Size         int     `db:"size" json:"size"`
	GroupType    string  `db:"group_type" json:"group_type,omitempty"`
	ParentGroup  *string `db:"parent_group_id" json:"parent_group,omitempty"`
	DisplayCode  string  `db:"display_code" json:"display_code,omitempty"`
}

// LecturerAssignment links a lecturer to a course they may teach.
type LecturerAssignment struct {
	ID                  string `db:"id" json:"id"`
	LecturerID          string `db:"lecturer_id" json:"lecturer_id"`
	CourseID            string `db:"course_id" json:"course_id"`
	GroupDivisionRequired bool `db:"group_division_required" json:"group_division_required"`
	ExpertiseLevel      string `db:"expertise_level" json:"expertise_level,omitempty"`
}

// GroupAssignment links a student group to a course they take.
type GroupAssignment struct {
	ID       string `db:"id" json:"id"`
	GroupID  string `db:"group_id" json:"group_id"`
	CourseID string `db:"course_id" json:"course_id"`
}

// Pagination is shared response metadata for list endpoints.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}
