package models

import "time"

// PaperCollection — сдано макулатуры учеником за один день сбора.
// На ученика, класс и дату — одна запись.
type PaperCollection struct {
	ID          int64     `db:"id"`
	StudentID   int64     `db:"student_id"`
	StudentName string    `db:"full_name"`
	ClassID     int64     `db:"class_id"`
	Kilograms   float64   `db:"kilograms"`
	Date        time.Time `db:"collection_date"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

type PaperStudentTotal struct {
	StudentID int64   `json:"student_id"`
	Name      string  `json:"name"`
	Kilograms float64 `json:"kilograms"`
}

type PaperMonth struct {
	Month     string  `json:"month"` // "2025-09"
	Kilograms float64 `json:"kilograms"`
}

// PaperStats — сбор макулатуры классом с начала учебного года.
type PaperStats struct {
	ClassID        int64               `json:"class_id"`
	ClassName      string              `json:"class_name"`
	TotalYear      float64             `json:"total_year"`
	LastDate       *time.Time          `json:"last_collection_date,omitempty"`
	LastTotal      float64             `json:"last_collection_total"`
	CollectionDays int                 `json:"collection_days"`
	AvgPerDay      float64             `json:"avg_per_day"`
	Students       []PaperStudentTotal `json:"students"`
	Months         []PaperMonth        `json:"months"`
}
