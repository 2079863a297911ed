package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/school-rating/internal/models"
)

const classColumns = `id, grade, name, class_teacher_id, total_rating, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(r rowScanner) (*models.SchoolClass, error) {
	var c models.SchoolClass
	if err := r.Scan(&c.ID, &c.Grade, &c.Name, &c.ClassTeacherID, &c.TotalRating, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanClasses(rows *sql.Rows) ([]models.SchoolClass, error) {
	defer func() { _ = rows.Close() }()
	var out []models.SchoolClass
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (t *Tx) getClass(ctx context.Context, id int64, lock bool) (*models.SchoolClass, error) {
	q := `SELECT ` + classColumns + ` FROM school_classes WHERE id = $1`
	if lock {
		q += ` FOR UPDATE`
	}
	c, err := scanClass(t.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (t *Tx) GetClass(ctx context.Context, id int64) (*models.SchoolClass, error) {
	return t.getClass(ctx, id, false)
}

func (t *Tx) LockClass(ctx context.Context, id int64) (*models.SchoolClass, error) {
	return t.getClass(ctx, id, true)
}

func (t *Tx) InsertClass(ctx context.Context, c *models.SchoolClass) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO school_classes (grade, name, class_teacher_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		c.Grade, c.Name, c.ClassTeacherID, c.CreatedAt,
	).Scan(&c.ID)
}

// ManagedClass — класс, где teacherID классный руководитель; nil, nil — такого нет.
func (t *Tx) ManagedClass(ctx context.Context, teacherID int64) (*models.SchoolClass, error) {
	c, err := scanClass(t.q.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM school_classes WHERE class_teacher_id = $1`, teacherID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (t *Tx) SetClassTeacher(ctx context.Context, classID int64, teacherID *int64) error {
	_, err := t.q.ExecContext(ctx, `UPDATE school_classes SET class_teacher_id = $1 WHERE id = $2`, teacherID, classID)
	return err
}

// SetTotalRating — запись кэша; вызывается только из rating.Service.
func (t *Tx) SetTotalRating(ctx context.Context, classID int64, total int) error {
	_, err := t.q.ExecContext(ctx, `UPDATE school_classes SET total_rating = $1 WHERE id = $2`, total, classID)
	return err
}

func (t *Tx) ClassPoints(ctx context.Context, classID int64) ([]models.ClassPoints, error) {
	return classPoints(ctx, t.q, classID, "id")
}

func (t *Tx) InsertClassPoints(ctx context.Context, cp *models.ClassPoints) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO class_points (class_id, points, reason, assigned_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		cp.ClassID, cp.Points, cp.Reason, cp.AssignedBy, cp.CreatedAt,
	).Scan(&cp.ID)
}

func classPoints(ctx context.Context, q querier, classID int64, order string) ([]models.ClassPoints, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, class_id, points, reason, assigned_by, created_at
		FROM class_points
		WHERE class_id = $1
		ORDER BY `+order, classID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.ClassPoints{}
	for rows.Next() {
		var cp models.ClassPoints
		if err := rows.Scan(&cp.ID, &cp.ClassID, &cp.Points, &cp.Reason, &cp.AssignedBy, &cp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}
