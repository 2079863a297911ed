package rating

import "github.com/Spok95/school-rating/internal/models"

// ClassEventPoints — сколько получает класс за одно мероприятие, независимо
// от числа участников и занятых мест.
const ClassEventPoints = 2

// PointsForPlace переводит место в баллы: 1→5, 2→4, 3→3, 4→2.
// Участие без места и любое другое значение дают 1 балл.
func PointsForPlace(place *int) int {
	if place == nil {
		return 1
	}
	switch *place {
	case 1:
		return 5
	case 2:
		return 4
	case 3:
		return 3
	case 4:
		return 2
	}
	return 1
}

// PersonalRating — сумма по подтверждённым участиям и подтверждённым записям портфолио.
func PersonalRating(parts []models.Participation, entries []models.PortfolioEntry) int {
	total := 0
	for _, p := range parts {
		if p.Approved {
			total += PointsForPlace(p.Place)
		}
	}
	for _, e := range entries {
		if e.Approved {
			total += e.PointsEarned
		}
	}
	return total
}

// ClassRating — ClassEventPoints за каждое уникальное классное мероприятие
// плюс все начисления классу.
func ClassRating(parts []models.Participation, grants []models.ClassPoints) int {
	events := make(map[int64]struct{})
	for _, p := range parts {
		if !p.Approved || !p.EventType.CountsForClass() {
			continue
		}
		events[p.EventID] = struct{}{}
	}
	total := ClassEventPoints * len(events)
	for _, g := range grants {
		total += g.Points
	}
	return total
}

// Statistics строит разбивку по уровням. rating должен быть только что пересчитан.
func Statistics(studentID int64, rating int, parts []models.Participation, entries []models.PortfolioEntry) models.StudentStatistics {
	st := models.StudentStatistics{
		StudentID:   studentID,
		TotalPoints: rating,
		LevelStats:  make(map[models.EventLevel]models.LevelStat, len(models.Levels)),
	}
	for _, l := range models.Levels {
		st.LevelStats[l] = models.LevelStat{}
	}
	for _, p := range parts {
		if !p.Approved {
			continue
		}
		st.TotalEvents++
		ls, ok := st.LevelStats[p.EventLevel]
		if !ok {
			continue
		}
		ls.Count++
		ls.Points += PointsForPlace(p.Place)
		st.LevelStats[p.EventLevel] = ls
	}
	for _, e := range entries {
		if e.Approved {
			st.PortfolioEntries++
		}
	}
	return st
}
