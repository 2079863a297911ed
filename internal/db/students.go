package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/Spok95/school-rating/internal/models"
)

const (
	studentColumns          = `id, full_name, class_id, personal_rating, created_at`
	studentColumnsWithClass = `s.id, s.full_name, s.class_id, s.personal_rating, s.created_at, c.grade || c.name AS class_name`
)

func scanStudents(rows *sql.Rows) ([]models.Student, error) {
	defer func() { _ = rows.Close() }()
	var out []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.ClassID, &s.PersonalRating, &s.CreatedAt, &s.ClassName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LockStudent берёт строку ученика FOR UPDATE; nil, nil — ученика нет.
func (t *Tx) LockStudent(ctx context.Context, id int64) (*models.Student, error) {
	var s models.Student
	err := t.q.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id).
		Scan(&s.ID, &s.FullName, &s.ClassID, &s.PersonalRating, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *Tx) StudentsByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	rows, err := t.q.QueryContext(ctx, `
		SELECT `+studentColumnsWithClass+`
		FROM students s
		JOIN school_classes c ON c.id = s.class_id
		WHERE s.id = ANY($1)
		ORDER BY s.id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}

func (t *Tx) ClassStudents(ctx context.Context, classID int64) ([]models.Student, error) {
	rows, err := t.q.QueryContext(ctx, `
		SELECT `+studentColumnsWithClass+`
		FROM students s
		JOIN school_classes c ON c.id = s.class_id
		WHERE s.class_id = $1
		ORDER BY s.full_name, s.id`, classID)
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}

func (t *Tx) InsertStudent(ctx context.Context, s *models.Student) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO students (full_name, class_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		s.FullName, s.ClassID, s.CreatedAt,
	).Scan(&s.ID)
}

// SetPersonalRating — запись кэша; вызывается только из rating.Service.
func (t *Tx) SetPersonalRating(ctx context.Context, studentID int64, value int) error {
	_, err := t.q.ExecContext(ctx, `UPDATE students SET personal_rating = $1 WHERE id = $2`, value, studentID)
	return err
}
