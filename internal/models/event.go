package models

import "time"

type EventLevel string

const (
	LevelSchool   EventLevel = "school"
	LevelCity     EventLevel = "city"
	LevelRepublic EventLevel = "republic"
	LevelNational EventLevel = "national"
)

// Levels в порядке вывода в статистике.
var Levels = []EventLevel{LevelSchool, LevelCity, LevelRepublic, LevelNational}

func (l EventLevel) Label() string {
	switch l {
	case LevelSchool:
		return "Школьный"
	case LevelCity:
		return "Городской"
	case LevelRepublic:
		return "Республиканский"
	case LevelNational:
		return "Всероссийский"
	default:
		return string(l)
	}
}

type EventType string

const (
	EventPersonal EventType = "student"
	EventClass    EventType = "class"
	EventBoth     EventType = "both"
)

// CountsForClass — мероприятие идёт в классный рейтинг.
func (t EventType) CountsForClass() bool {
	return t == EventClass || t == EventBoth
}

func (t EventType) Label() string {
	switch t {
	case EventPersonal:
		return "Только личный"
	case EventClass:
		return "Только классный"
	case EventBoth:
		return "Личный и классный"
	default:
		return string(t)
	}
}

type Event struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Level       EventLevel `db:"level" json:"level"`
	Type        EventType  `db:"event_type" json:"event_type"`
	ClassPoints int        `db:"class_points" json:"class_points"`
	CreatedBy   *int64     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	IsActive    bool       `db:"is_active" json:"is_active"`
}
