package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevelOrder(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []int
	}{
		{"default order", "5,4,3,2", []int{5, 4, 3, 2}},
		{"custom order with spaces", " 4, 5 ", []int{4, 5}},
		{"empty falls back", "", []int{5, 4, 3, 2}},
		{"malformed entry falls back wholesale", "5,x,3", []int{5, 4, 3, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseLevelOrder(tc.raw, []int{5, 4, 3, 2})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("not-a-duration", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,, b "))
	assert.Nil(t, splitAndTrim(""))
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 300*time.Second, cfg.Scheduler.LevelBudget)
	assert.Equal(t, []int{5, 4, 3, 2}, cfg.Scheduler.LevelOrder)
	assert.Equal(t, 7, cfg.Grid.StartHour)
	assert.Equal(t, 12, cfg.Grid.SlotCount)
}
