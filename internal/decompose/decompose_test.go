package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusforge/timetable-engine/internal/models"
)

func TestConsecutiveBlockSize(t *testing.T) {
	cases := []struct {
		name string
		raw  interface{}
		want int
	}{
		{"nil defaults to one", nil, 1},
		{"bool true pairs hours", true, 2},
		{"bool false is one", false, 1},
		{"positive int is literal", 3, 3},
		{"zero int falls back to one", 0, 1},
		{"negative int falls back to one", -2, 1},
		{"json number decodes as float64", float64(4), 4},
		{"unrecognised type falls back to one", "yes", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ConsecutiveBlockSize(models.SessionConfig{RequiresConsecutive: tc.raw})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSessionsChunksLectureAtConsecutiveBlockSize(t *testing.T) {
	course := models.Course{
		ID:           "c1",
		LectureHours: 5,
		SessionConfig: models.SessionConfig{RequiresConsecutive: true},
	}
	sessions := Sessions(course, "g1")

	var lectures []models.Session
	for _, s := range sessions {
		if s.Type == models.SessionLecture {
			lectures = append(lectures, s)
		}
	}
	// 5 hours at block size 2 -> 2, 2, 1
	if assert.Len(t, lectures, 3) {
		assert.Equal(t, 2, lectures[0].DurationHrs)
		assert.Equal(t, 2, lectures[1].DurationHrs)
		assert.Equal(t, 1, lectures[2].DurationHrs)
	}
}

func TestSessionsCapsTutorialAndPracticalBlocks(t *testing.T) {
	course := models.Course{
		ID:             "c2",
		TutorialHours:  5,
		PracticalHours: 7,
	}
	sessions := Sessions(course, "g1")

	var tutorials, practicals []models.Session
	for _, s := range sessions {
		switch s.Type {
		case models.SessionTutorial:
			tutorials = append(tutorials, s)
		case models.SessionPractical:
			practicals = append(practicals, s)
		}
	}

	// 5 hours capped at 2 -> 2, 2, 1
	if assert.Len(t, tutorials, 3) {
		assert.Equal(t, 2, tutorials[0].DurationHrs)
		assert.Equal(t, 2, tutorials[1].DurationHrs)
		assert.Equal(t, 1, tutorials[2].DurationHrs)
	}
	// 7 hours capped at 3 -> 3, 3, 1
	if assert.Len(t, practicals, 3) {
		assert.Equal(t, 3, practicals[0].DurationHrs)
		assert.Equal(t, 3, practicals[1].DurationHrs)
		assert.Equal(t, 1, practicals[2].DurationHrs)
	}
}

func TestSessionsSequenceRunsAcrossAllThreeKinds(t *testing.T) {
	course := models.Course{
		ID:             "c3",
		LectureHours:   2,
		TutorialHours:  2,
		PracticalHours: 3,
	}
	sessions := Sessions(course, "g1")
	for i, s := range sessions {
		assert.Equal(t, i, s.Sequence)
	}
	// No session config: lectures at 1-hour blocks (1, 1), then tutorial 2, practical 3.
	assert.Len(t, sessions, 4)
}

func TestSessionsReturnsNilForZeroHourCourse(t *testing.T) {
	course := models.Course{ID: "c4"}
	assert.Empty(t, Sessions(course, "g1"))
}
