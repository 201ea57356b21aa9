// Package roomfilter implements the Room Compatibility Filter: given a
// course's preferred room type and a session type, narrow the full room
// list down to the ones a session may legally be placed in. Grounded
// directly on TimetableGenerator._get_compatible_rooms, including its
// case-insensitive substring matching and its ANY-type special casing.
package roomfilter

import (
	"strings"

	"github.com/campusforge/timetable-engine/internal/models"
)

// Compatible filters rooms for a course/session-type pair.
//
// The branches, in the order the switch checks them:
//  1. preferred_room_type == ANY: prefer rooms whose room_type string
//     contains "lecture" for lecture sessions, or "lab" for practical
//     sessions; any other session type (or a room matching neither
//     substring) is still accepted — the Python falls through to
//     `compatible_rooms.append(room)` in the else branch, so ANY never
//     actually excludes a room, it only biases lecture/practical
//     placement towards the right room flavour when one is available:
//     matching rooms are listed first, the rest after them.
//  2. preferred_room_type == LECTURE_HALL: room_type must contain
//     "lecture" or "class".
//  3. preferred_room_type == LAB: room_type must contain "lab".
//  4. preferred_room_type == DRAWING_ROOM: room_type must contain
//     "drawing".
//  5. preferred_room_type == SEMINAR_ROOM: room_type must contain
//     "seminar".
//  6. preferred_room_type == SURVEYING_ROOM: room_type must contain
//     "surveying".
//  7. anything else (including unrecognised values): loose match, every
//     room is accepted.
func Compatible(course models.Course, sessionType models.SessionType, rooms []models.Room) []models.Room {
	var out []models.Room

	switch course.PreferredRoomType {
	case models.RoomTypeAny:
		var others []models.Room
		for _, r := range rooms {
			rt := strings.ToLower(r.RoomType)
			switch {
			case sessionType == models.SessionLecture && strings.Contains(rt, "lecture"):
				out = append(out, r)
			case sessionType == models.SessionPractical && strings.Contains(rt, "lab"):
				out = append(out, r)
			default:
				others = append(others, r)
			}
		}
		out = append(out, others...)
	case models.RoomTypeLectureHall:
		for _, r := range rooms {
			rt := strings.ToLower(r.RoomType)
			if strings.Contains(rt, "lecture") || strings.Contains(rt, "class") {
				out = append(out, r)
			}
		}
	case models.RoomTypeLab:
		for _, r := range rooms {
			if strings.Contains(strings.ToLower(r.RoomType), "lab") {
				out = append(out, r)
			}
		}
	case models.RoomTypeDrawingRoom:
		for _, r := range rooms {
			if strings.Contains(strings.ToLower(r.RoomType), "drawing") {
				out = append(out, r)
			}
		}
	case models.RoomTypeSeminarRoom:
		for _, r := range rooms {
			if strings.Contains(strings.ToLower(r.RoomType), "seminar") {
				out = append(out, r)
			}
		}
	case models.RoomTypeSurveyingRoom:
		for _, r := range rooms {
			if strings.Contains(strings.ToLower(r.RoomType), "surveying") {
				out = append(out, r)
			}
		}
	default:
		out = append(out, rooms...)
	}

	return out
}
