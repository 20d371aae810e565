package ordering

import (
	"testing"

	"github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestWeek(t *testing.T) {
	for day := 1; day <= 7; day++ {
		assert.Equal(t, 1, Week(day), "day %d", day)
	}
	assert.Equal(t, 2, Week(8))
	assert.Equal(t, 2, Week(14))
	assert.Equal(t, 3, Week(15))
}

func TestDurationInDays(t *testing.T) {
	tests := []struct {
		name  string
		value int
		unit  domain.DurationUnit
		want  int
	}{
		{name: "days pass through", value: 10, unit: domain.DurationDays, want: 10},
		{name: "weeks multiply by 7", value: 2, unit: domain.DurationWeeks, want: 14},
		{name: "months approximate to 30 days", value: 3, unit: domain.DurationMonths, want: 90},
		{name: "zero value means unset", value: 0, unit: domain.DurationWeeks, want: 0},
		{name: "unknown unit means unset", value: 5, unit: domain.DurationUnit("fortnights"), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DurationInDays(tt.value, tt.unit))
		})
	}
}

func TestWeekCount(t *testing.T) {
	tests := []struct {
		name         string
		durationDays int
		maxDay       int
		want         int
	}{
		{name: "explicit two-week duration with no days yet", durationDays: 14, maxDay: 0, want: 2},
		{name: "duration wins over day numbers present", durationDays: 14, maxDay: 3, want: 2},
		{name: "falls back to highest day present", durationDays: 0, maxDay: 9, want: 2},
		{name: "empty program still shows week one", durationDays: 0, maxDay: 0, want: 1},
		{name: "partial week rounds up", durationDays: 8, maxDay: 0, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekCount(tt.durationDays, tt.maxDay))
		})
	}
}

func TestNextDayNumber(t *testing.T) {
	assert.Equal(t, 1, NextDayNumber(nil))
	assert.Equal(t, 4, NextDayNumber([]int{1, 2, 3}))
	// Gaps from deleted days are tolerated, append goes past the max.
	assert.Equal(t, 6, NextDayNumber([]int{1, 5}))
}
