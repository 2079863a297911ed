package models

import (
	"fmt"
	"time"
)

type SchoolClass struct {
	ID             int64     `db:"id"`
	Grade          string    `db:"grade"`
	Name           string    `db:"name"`
	ClassTeacherID *int64    `db:"class_teacher_id"`
	TotalRating    int       `db:"total_rating"`
	CreatedAt      time.Time `db:"created_at"`
}

// FullName — "5А".
func (c SchoolClass) FullName() string {
	return fmt.Sprintf("%s%s", c.Grade, c.Name)
}

type ClassPoints struct {
	ID         int64     `db:"id" json:"id"`
	ClassID    int64     `db:"class_id" json:"class_id"`
	Points     int       `db:"points" json:"points"`
	Reason     string    `db:"reason" json:"reason"`
	AssignedBy int64     `db:"assigned_by" json:"assigned_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
