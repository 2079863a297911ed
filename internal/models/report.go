package models

import "time"

type LevelStat struct {
	Count  int `json:"count"`
	Points int `json:"points"`
}

type StudentStatistics struct {
	StudentID        int64                    `json:"student_id"`
	TotalEvents      int                      `json:"total_events"`
	TotalPoints      int                      `json:"total_points"`
	LevelStats       map[EventLevel]LevelStat `json:"level_stats"`
	PortfolioEntries int                      `json:"portfolio_entries"`
}

// LeaderboardEntry — строка рейтинга; Rank начинается с 1.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name,omitempty"`
	Rating    int    `json:"rating"`
}

type ReportParticipation struct {
	EventName string    `json:"event_name"`
	Points    int       `json:"points"`
	Date      time.Time `json:"date"`
}

type ReportStudent struct {
	Name           string                `json:"name"`
	PersonalRating int                   `json:"personal_rating"`
	Participations []ReportParticipation `json:"participations"`
}

type ClassReport struct {
	ClassName   string          `json:"class_name"`
	TotalRating int             `json:"total_rating"`
	Students    []ReportStudent `json:"students"`
}

type SchoolSummary struct {
	TotalSchoolRating int `json:"total_school_rating"`
	Classes           int `json:"classes"`
	Events            int `json:"events"`
	Students          int `json:"students"`
}
