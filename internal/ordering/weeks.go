package ordering

import "github.com/slankgy89/fitness-coach-portal-sub000/internal/domain"

// Week returns the 1-based week bucket for a day number: days 1-7 are week 1,
// day 8 starts week 2, and so on. Week is purely a view-time derivation; no
// week entity is ever stored.
func Week(dayNumber int) int {
	if dayNumber < 1 {
		return 1
	}
	return (dayNumber + 6) / 7
}

// DurationInDays converts an explicit program duration to days. Months are
// approximated at 30 days. Unknown units and non-positive values yield 0,
// meaning "no explicit duration".
func DurationInDays(value int, unit domain.DurationUnit) int {
	if value <= 0 {
		return 0
	}
	switch unit {
	case domain.DurationDays:
		return value
	case domain.DurationWeeks:
		return value * 7
	case domain.DurationMonths:
		return value * 30
	default:
		return 0
	}
}

// WeekCount returns the number of week buckets to display for a program.
// An explicit duration wins; otherwise the highest day number present is
// used. At least one (possibly empty) week is always reported so the UI has
// a "Week 1" to add into.
func WeekCount(durationDays, maxDayNumber int) int {
	effective := durationDays
	if effective <= 0 {
		effective = maxDayNumber
	}
	if effective <= 0 {
		return 1
	}
	return (effective + 6) / 7
}

// NextDayNumber returns the day number for an implicit "add day" operation:
// max existing day plus one, or 1 when the program has no days yet. A day is
// materialized by inserting its first meal with this number.
func NextDayNumber(dayNumbers []int) int {
	max := 0
	for _, d := range dayNumbers {
		if d > max {
			max = d
		}
	}
	return max + 1
}
