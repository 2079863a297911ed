package models

import "time"

type Student struct {
	ID             int64     `db:"id"`
	FullName       string    `db:"full_name"`
	ClassID        int64     `db:"class_id"`
	PersonalRating int       `db:"personal_rating"`
	CreatedAt      time.Time `db:"created_at"`

	// заполняется только в выборках рейтинга
	ClassName string `db:"class_name"`
}

// Participation — участие ученика в мероприятии. Place == nil — участие без места.
// EventLevel/EventType/EventName заполняются при чтении с JOIN events.
type Participation struct {
	ID               int64      `db:"id"`
	EventID          int64      `db:"event_id"`
	StudentID        int64      `db:"student_id"`
	Place            *int       `db:"place"`
	Approved         bool       `db:"approved"`
	ApprovedBy       *int64     `db:"approved_by"`
	ApprovedAt       *time.Time `db:"approved_at"`
	NewsLink         string     `db:"news_link"`
	ParticipantCount int        `db:"participants_count"`
	Description      string     `db:"description"`
	CreatedAt        time.Time  `db:"created_at"`

	EventName  string     `db:"event_name"`
	EventLevel EventLevel `db:"event_level"`
	EventType  EventType  `db:"event_type"`
}

type PortfolioEntry struct {
	ID           int64      `db:"id"`
	StudentID    int64      `db:"student_id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	EntryType    string     `db:"entry_type"`
	DateAchieved time.Time  `db:"date_achieved"`
	PointsEarned int        `db:"points_earned"`
	EvidenceLink string     `db:"evidence_link"`
	Approved     bool       `db:"approved"`
	ApprovedBy   *int64     `db:"approved_by"`
	ApprovedAt   *time.Time `db:"approved_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// PortfolioTypes — допустимые entry_type.
var PortfolioTypes = map[string]string{
	"achievement": "Достижение",
	"project":     "Проект",
	"competition": "Конкурс",
	"olympiad":    "Олимпиада",
	"sport":       "Спорт",
	"art":         "Творчество",
}
