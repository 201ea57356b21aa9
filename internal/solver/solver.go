// Package solver implements the Level Solver: given one level's
// Problem (decision-variable domains), find an assignment of exactly
// one variable per non-dropped session that satisfies every hard
// constraint, while preferring assignments that avoid the soft
// constraints a lecturer has opted into.
//
// The original implementation hands this off to OR-Tools' CP-SAT. No
// Go binding for CP-SAT exists anywhere in this codebase's dependency
// corpus, so this is a dedicated backtracking solver with domain
// filtering and a fail-first variable ordering, bounded by the same
// per-level wall-clock budget the original gives the CP-SAT solver
// (300 seconds). It reports the same four outcome states the original
// effectively distinguishes (solver.Solve returning OPTIMAL, FEASIBLE,
// or anything else treated as failure), split here into INFEASIBLE
// (search space exhausted, no assignment exists) and
// TIMEOUT_NO_SOLUTION (budget exhausted before the space could be
// exhausted) so callers can tell the two apart.
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/campusforge/timetable-engine/internal/catalogue"
	"github.com/campusforge/timetable-engine/internal/model"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/pkg/grid"
)

// Status is the outcome of a single level solve.
type Status string

const (
	StatusOptimal          Status = "OPTIMAL"
	StatusFeasible         Status = "FEASIBLE"
	StatusInfeasible       Status = "INFEASIBLE"
	StatusTimeoutNoSolution Status = "TIMEOUT_NO_SOLUTION"
)

// DefaultBudget mirrors the original's solver.parameters.max_time_in_seconds = 300.
const DefaultBudget = 300 * time.Second

// Assignment is one session's resolved placement.
type Assignment struct {
	Session models.Session
	Key     model.VarKey
}

// Result is the outcome of solving one level's Problem.
type Result struct {
	Status       Status
	Assignments  []Assignment
	Dropped      []models.Session
	SoftViolations int
}

type occupancy struct {
	room     map[string][grid.DayCount][grid.SlotCount]bool
	lecturer map[string][grid.DayCount][grid.SlotCount]bool
	group    map[string][grid.DayCount][grid.SlotCount]bool
}

func newOccupancy() *occupancy {
	return &occupancy{
		room:     map[string][grid.DayCount][grid.SlotCount]bool{},
		lecturer: map[string][grid.DayCount][grid.SlotCount]bool{},
		group:    map[string][grid.DayCount][grid.SlotCount]bool{},
	}
}

func (o *occupancy) fits(k model.VarKey, duration int) bool {
	return !overlaps(o.room, k.RoomID, k.Day, k.Start, duration) &&
		!overlaps(o.lecturer, k.LecturerID, k.Day, k.Start, duration) &&
		!overlaps(o.group, k.GroupID, k.Day, k.Start, duration)
}

func overlaps(m map[string][grid.DayCount][grid.SlotCount]bool, key string, day, start, duration int) bool {
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

func (o *occupancy) place(k model.VarKey, duration int) {
	set(o.room, k.RoomID, k.Day, k.Start, duration)
	set(o.lecturer, k.LecturerID, k.Day, k.Start, duration)
	set(o.group, k.GroupID, k.Day, k.Start, duration)
}

func (o *occupancy) unplace(k model.VarKey, duration int) {
	clear(o.room, k.RoomID, k.Day, k.Start, duration)
	clear(o.lecturer, k.LecturerID, k.Day, k.Start, duration)
	clear(o.group, k.GroupID, k.Day, k.Start, duration)
}

func set(m map[string][grid.DayCount][grid.SlotCount]bool, key string, day, start, duration int) {
	arr := m[key]
	for t := start; t < start+duration; t++ {
		arr[day][t] = true
	}
	m[key] = arr
}

func clear(m map[string][grid.DayCount][grid.SlotCount]bool, key string, day, start, duration int) {
	arr := m[key]
	for t := start; t < start+duration; t++ {
		arr[day][t] = false
	}
	m[key] = arr
}

// softCost returns the number of soft constraints this candidate
// variable violates, matching the lecturer-preference objective terms
// in the original (`avoid_early_morning` on a session starting at slot
// 0, `avoid_late_afternoon` on a session whose coverage reaches slot
// index >= 10, i.e. touches 17:00 or later).
func softCost(snap *catalogue.Snapshot, k model.VarKey, duration int) int {
	lect, ok := snap.Lecturer(k.LecturerID)
	if !ok {
		return 0
	}
	cost := 0
	if lect.Preferences.AvoidEarlyMorning && k.Start == 0 {
		cost++
	}
	if lect.Preferences.AvoidLateAfternoon && k.Start+duration > 10 {
		cost++
	}
	return cost
}

type sessionEntry struct {
	sv   model.SessionVars
	vars []model.Variable // pre-sorted by ascending soft cost
}

// Solve searches for a complete, hard-constraint-satisfying assignment
// of the problem's non-dropped sessions, preferring low-soft-cost
// candidates via fail-first variable ordering (sessions with the
// smallest domain are assigned first, and within a session the
// lowest-soft-cost candidates are tried first). Returns StatusOptimal
// when the found assignment has zero soft violations, StatusFeasible
// when it has at least one, StatusInfeasible when the search space is
// exhausted with no assignment, and StatusTimeoutNoSolution when ctx's
// deadline (or the caller's explicit budget) elapses first.
func Solve(ctx context.Context, snap *catalogue.Snapshot, problem *model.Problem, budget time.Duration) Result {
	if budget <= 0 {
		budget = DefaultBudget
	}
	deadline := time.Now().Add(budget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	entries := make([]*sessionEntry, 0, len(problem.Sessions))
	for _, sv := range problem.Sessions {
		if len(sv.Vars) == 0 {
			continue
		}
		vars := append([]model.Variable(nil), sv.Vars...)
		sort.SliceStable(vars, func(i, j int) bool {
			return softCost(snap, vars[i].Key, vars[i].Duration) < softCost(snap, vars[j].Key, vars[j].Duration)
		})
		entries = append(entries, &sessionEntry{sv: sv, vars: vars})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].vars) < len(entries[j].vars)
	})

	occ := newOccupancy()
	assignment := make([]Assignment, len(entries))
	timedOut := false

	var backtrack func(i int) bool
	backtrack = func(i int) bool {
		if i == len(entries) {
			return true
		}
		select {
		case <-ctx.Done():
			timedOut = true
			return false
		default:
		}

		entry := entries[i]
		for _, v := range entry.vars {
			if !occ.fits(v.Key, v.Duration) {
				continue
			}
			occ.place(v.Key, v.Duration)
			assignment[i] = Assignment{Session: entry.sv.Session, Key: v.Key}
			if backtrack(i + 1) {
				return true
			}
			occ.unplace(v.Key, v.Duration)
			if timedOut {
				return false
			}
		}
		return false
	}

	found := backtrack(0)

	result := Result{Dropped: append([]models.Session(nil), problem.Dropped...)}
	if !found {
		if timedOut {
			result.Status = StatusTimeoutNoSolution
		} else {
			result.Status = StatusInfeasible
		}
		return result
	}

	result.Assignments = assignment
	violations := 0
	for i, a := range assignment {
		duration := 0
		for _, v := range entries[i].vars {
			if v.Key == a.Key {
				duration = v.Duration
				break
			}
		}
		violations += softCost(snap, a.Key, duration)
	}
	result.SoftViolations = violations
	if violations == 0 {
		result.Status = StatusOptimal
	} else {
		result.Status = StatusFeasible
	}
	return result
}
