package export

import (
	"fmt"
	"time"
)

// SchoolYearStart возвращает начало учебного года для заданного момента (1 сентября, 00:00:00).
func SchoolYearStart(t time.Time) time.Time {
	return time.Date(CurrentSchoolYearStartYear(t), time.September, 1, 0, 0, 0, 0, t.Location())
}

// CurrentSchoolYearStartYear — «год» учебного года (например, для 2025-03-01 → 2024).
func CurrentSchoolYearStartYear(t time.Time) int {
	if t.Month() < time.September {
		return t.Year() - 1
	}
	return t.Year()
}

// SchoolYearLabel форматирует подпись учебного года: "2024–2025".
func SchoolYearLabel(startYear int) string {
	return fmt.Sprintf("%d–%d", startYear, startYear+1)
}

// CurrentSchoolYearLabel — подпись учебного года, в который попадает t.
func CurrentSchoolYearLabel(t time.Time) string {
	return SchoolYearLabel(CurrentSchoolYearStartYear(t))
}
