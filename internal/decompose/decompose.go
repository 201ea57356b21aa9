// Package decompose breaks a Course's lecture/tutorial/practical hour
// totals down into the atomic Sessions the Model Builder creates
// decision variables for. Grounded directly on
// TimetableGenerator._parse_course_sessions in the original
// implementation.
package decompose

import (
	"github.com/campusforge/timetable-engine/internal/models"
)

// ConsecutiveBlockSize normalises the legacy, loosely-typed
// requires_consecutive session-config field onto an integer block
// size. A bool true means "pair hours into 2-hour blocks", false means
// "1-hour blocks"; anything else is taken as the literal block size,
// defaulting to 1 when absent. This mirrors the Python coercion
// exactly: `requires_consecutive = 2 if requires_consecutive else 1`
// when it's a bool, otherwise `int(requires_consecutive)`.
func ConsecutiveBlockSize(cfg models.SessionConfig) int {
	switch v := cfg.RequiresConsecutive.(type) {
	case nil:
		return 1
	case bool:
		if v {
			return 2
		}
		return 1
	case int:
		if v <= 0 {
			return 1
		}
		return v
	case float64:
		n := int(v)
		if n <= 0 {
			return 1
		}
		return n
	default:
		return 1
	}
}

const (
	tutorialBlockCap  = 2
	practicalBlockCap = 3
)

// Sessions decomposes one course into its ordered list of Sessions for
// the given group. Lectures are chunked at the course's consecutive
// block size (capped per-chunk at whatever hours remain), tutorials are
// capped at 2 hours per block, practicals at 3 — matching the original
// generator's fixed caps. Sequence numbers are assigned across all
// three kinds in lecture, tutorial, practical order, matching the
// original's single running `s_id` counter.
func Sessions(course models.Course, groupID string) []models.Session {
	var sessions []models.Session
	seq := 0

	block := ConsecutiveBlockSize(course.SessionConfig)
	remaining := course.LectureHours
	for remaining > 0 {
		d := block
		if d > remaining {
			d = remaining
		}
		sessions = append(sessions, models.Session{
			CourseID:    course.ID,
			GroupID:     groupID,
			Type:        models.SessionLecture,
			DurationHrs: d,
			Sequence:    seq,
		})
		remaining -= d
		seq++
	}

	remaining = course.TutorialHours
	for remaining > 0 {
		d := remaining
		if d > tutorialBlockCap {
			d = tutorialBlockCap
		}
		sessions = append(sessions, models.Session{
			CourseID:    course.ID,
			GroupID:     groupID,
			Type:        models.SessionTutorial,
			DurationHrs: d,
			Sequence:    seq,
		})
		remaining -= d
		seq++
	}

	remaining = course.PracticalHours
	for remaining > 0 {
		d := remaining
		if d > practicalBlockCap {
			d = practicalBlockCap
		}
		sessions = append(sessions, models.Session{
			CourseID:    course.ID,
			GroupID:     groupID,
			Type:        models.SessionPractical,
			DurationHrs: d,
			Sequence:    seq,
		})
		remaining -= d
		seq++
	}

	return sessions
}
