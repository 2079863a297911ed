package db

import (
	"context"
	"time"

	"github.com/Spok95/school-rating/internal/models"
)

func (t *Tx) UpsertPaperCollection(ctx context.Context, pc *models.PaperCollection) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO paper_collections (student_id, class_id, kilograms, collection_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, class_id, collection_date) DO UPDATE
		SET kilograms = EXCLUDED.kilograms, created_by = EXCLUDED.created_by, created_at = EXCLUDED.created_at
		RETURNING id`,
		pc.StudentID, pc.ClassID, pc.Kilograms, pc.Date, pc.CreatedBy, pc.CreatedAt,
	).Scan(&pc.ID)
}

func (t *Tx) DeletePaperCollection(ctx context.Context, studentID, classID int64, date time.Time) error {
	_, err := t.q.ExecContext(ctx, `
		DELETE FROM paper_collections
		WHERE student_id = $1 AND class_id = $2 AND collection_date = $3`,
		studentID, classID, date)
	return err
}

func (t *Tx) ClassPaperCollections(ctx context.Context, classID int64, since time.Time) ([]models.PaperCollection, error) {
	rows, err := t.q.QueryContext(ctx, `
		SELECT p.id, p.student_id, s.full_name, p.class_id, p.kilograms,
		       p.collection_date, p.created_by, p.created_at
		FROM paper_collections p
		JOIN students s ON s.id = p.student_id
		WHERE p.class_id = $1 AND p.collection_date >= $2
		ORDER BY p.collection_date, s.full_name`, classID, since)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.PaperCollection{}
	for rows.Next() {
		var pc models.PaperCollection
		if err := rows.Scan(&pc.ID, &pc.StudentID, &pc.StudentName, &pc.ClassID, &pc.Kilograms,
			&pc.Date, &pc.CreatedBy, &pc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}
