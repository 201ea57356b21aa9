// Package model builds the decision-variable space for one academic
// level: every legal (course, group, session, day, start, room,
// lecturer) combination, filtered by room compatibility and by the
// slots already frozen from previously solved levels. Grounded
// directly on the variable-construction loop in
// TimetableGenerator.generate_level_timetable.
package model

import (
	"fmt"

	"github.com/campusforge/timetable-engine/internal/catalogue"
	"github.com/campusforge/timetable-engine/internal/decompose"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/internal/roomfilter"
	apierrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/grid"
)

// VarKey identifies a single decision variable: does this session of
// this course, for this group, get placed on this day, at this start
// slot, in this room, with this lecturer.
type VarKey struct {
	CourseID   string
	GroupID    string
	SessionSeq int
	Day        int
	Start      int
	RoomID     string
	LecturerID string
}

// Variable is one candidate placement for a session.
type Variable struct {
	Key      VarKey
	Duration int
}

// SessionVars is the full candidate domain for one decomposed session.
// An empty Vars slice means the session has no legal placement at all
// (it does not fit in a day, or every room/lecturer/day combination is
// excluded by frozen slots or unavailability) — the session is dropped
// from this level's output and listed in Problem.Dropped, matching the
// original generator's behaviour of never adding a uniqueness
// constraint for a session with zero candidate variables. A session
// with no compatible room at all never gets here: Build returns
// ErrNoCompatibleRoom instead.
type SessionVars struct {
	Session models.Session
	Vars    []Variable
}

// Problem is the complete, frozen decision space for one level, ready
// to hand to the Level Solver.
type Problem struct {
	Level          int
	Sessions       []SessionVars
	Rooms          []models.Room
	Dropped        []models.Session
	DroppedCourses []models.Course
}

// frozenIndex is a fast lookup of which (day, slot) ranges are already
// occupied by a room/lecturer/group from a previously solved level.
type frozenIndex struct {
	room     map[string][grid.DayCount][grid.SlotCount]bool
	lecturer map[string][grid.DayCount][grid.SlotCount]bool
	group    map[string][grid.DayCount][grid.SlotCount]bool
}

func buildFrozenIndex(frozen []models.PlacedSlot) *frozenIndex {
	idx := &frozenIndex{
		room:     map[string][grid.DayCount][grid.SlotCount]bool{},
		lecturer: map[string][grid.DayCount][grid.SlotCount]bool{},
		group:    map[string][grid.DayCount][grid.SlotCount]bool{},
	}
	for _, slot := range frozen {
		if !grid.ValidDay(slot.DayOfWeek) {
			continue
		}
		mark(idx.room, slot.RoomID, slot.DayOfWeek, slot.StartSlot, slot.EndSlot)
		mark(idx.lecturer, slot.LecturerID, slot.DayOfWeek, slot.StartSlot, slot.EndSlot)
		mark(idx.group, slot.GroupID, slot.DayOfWeek, slot.StartSlot, slot.EndSlot)
	}
	return idx
}

func mark(m map[string][grid.DayCount][grid.SlotCount]bool, key string, day, start, end int) {
	arr := m[key]
	for t := start; t < end && t < grid.SlotCount; t++ {
		if t >= 0 {
			arr[day][t] = true
		}
	}
	m[key] = arr
}

func (idx *frozenIndex) blocked(m map[string][grid.DayCount][grid.SlotCount]bool, key string, day, start, duration int) bool {
	arr, ok := m[key]
	if !ok {
		return false
	}
	for t := start; t < start+duration; t++ {
		if arr[day][t] {
			return true
		}
	}
	return false
}

// unavailable reports whether any hour of [start, start+duration) on
// the given day falls inside one of the lecturer's recurring weekly
// unavailability windows (H5).
func unavailable(snap *catalogue.Snapshot, lecturerID string, day, start, duration int) bool {
	for _, w := range snap.Unavailability(lecturerID) {
		if w.DayOfWeek != day {
			continue
		}
		for t := start; t < start+duration; t++ {
			if w.StartSlot <= t && t < w.EndSlot {
				return true
			}
		}
	}
	return false
}

// Build constructs the Problem for one level from its Catalogue
// Snapshot, excluding any candidate that would collide with a slot
// frozen by a previously solved level. Returns apierrors.ErrNoCompatibleRoom
// if any session's course/session-type pair has zero compatible rooms —
// per spec §4.4 this is a hard, non-recoverable error for the level,
// distinct from a session domain that is merely emptied by exclusion
// filtering (H2-H5), which is recorded in Problem.Dropped instead. A
// course with zero assigned lecturers or zero assigned groups is a
// CatalogueInconsistent condition (§7): it is dropped for this level
// and recorded in Problem.DroppedCourses so the caller can log and
// meter it, rather than being silently absorbed.
func Build(snap *catalogue.Snapshot, frozen []models.PlacedSlot) (*Problem, error) {
	problem := &Problem{Level: snap.Level, Rooms: snap.Rooms}
	if snap.Empty() {
		return problem, nil
	}
	idx := buildFrozenIndex(frozen)

	for _, course := range snap.Courses {
		lecturers := snap.LecturersFor(course.ID)
		if len(lecturers) == 0 {
			problem.DroppedCourses = append(problem.DroppedCourses, course)
			continue
		}
		groupIDs := snap.GroupsFor(course.ID)
		if len(groupIDs) == 0 {
			problem.DroppedCourses = append(problem.DroppedCourses, course)
			continue
		}

		for _, groupID := range groupIDs {
			sessions := decompose.Sessions(course, groupID)
			for _, session := range sessions {
				validRooms := roomfilter.Compatible(course, session.Type, snap.Rooms)
				if len(validRooms) == 0 {
					return nil, apierrors.Clone(apierrors.ErrNoCompatibleRoom,
						fmt.Sprintf("no compatible room for course %s session type %s", course.Code, session.Type))
				}

				sv := SessionVars{Session: session}
				lastStart := grid.LastValidStart(session.DurationHrs)
				if lastStart < 0 {
					problem.Dropped = append(problem.Dropped, session)
					problem.Sessions = append(problem.Sessions, sv)
					continue
				}

				for day := 0; day < grid.DayCount; day++ {
					for start := 0; start <= lastStart; start++ {
						for _, room := range validRooms {
							if idx.blocked(idx.room, room.ID, day, start, session.DurationHrs) {
								continue
							}
							for _, lecturerID := range lecturers {
								if idx.blocked(idx.lecturer, lecturerID, day, start, session.DurationHrs) {
									continue
								}
								if idx.blocked(idx.group, groupID, day, start, session.DurationHrs) {
									continue
								}
								if unavailable(snap, lecturerID, day, start, session.DurationHrs) {
									continue
								}
								sv.Vars = append(sv.Vars, Variable{
									Key: VarKey{
										CourseID:   course.ID,
										GroupID:    groupID,
										SessionSeq: session.Sequence,
										Day:        day,
										Start:      start,
										RoomID:     room.ID,
										LecturerID: lecturerID,
									},
									Duration: session.DurationHrs,
								})
							}
						}
					}
				}

				if len(sv.Vars) == 0 {
					problem.Dropped = append(problem.Dropped, session)
				}
				problem.Sessions = append(problem.Sessions, sv)
			}
		}
	}

	return problem, nil
}
