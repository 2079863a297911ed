package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/school-rating/internal/models"
)

const participationSelect = `
	SELECT p.id, p.event_id, p.student_id, p.place, p.approved, p.approved_by, p.approved_at,
	       p.news_link, p.participants_count, p.description, p.created_at,
	       e.name, e.level, e.event_type
	FROM participations p
	JOIN events e ON e.id = p.event_id`

func scanParticipation(r rowScanner) (*models.Participation, error) {
	var p models.Participation
	err := r.Scan(&p.ID, &p.EventID, &p.StudentID, &p.Place, &p.Approved, &p.ApprovedBy, &p.ApprovedAt,
		&p.NewsLink, &p.ParticipantCount, &p.Description, &p.CreatedAt,
		&p.EventName, &p.EventLevel, &p.EventType)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *Tx) participations(ctx context.Context, where string, arg int64) ([]models.Participation, error) {
	rows, err := t.q.QueryContext(ctx, participationSelect+` `+where+` ORDER BY p.created_at, p.id`, arg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Participation{}
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (t *Tx) GetParticipation(ctx context.Context, id int64) (*models.Participation, error) {
	p, err := scanParticipation(t.q.QueryRowContext(ctx, participationSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (t *Tx) StudentParticipations(ctx context.Context, studentID int64) ([]models.Participation, error) {
	return t.participations(ctx, `WHERE p.student_id = $1`, studentID)
}

// ClassParticipations — только подтверждённые, по всем ученикам класса.
func (t *Tx) ClassParticipations(ctx context.Context, classID int64) ([]models.Participation, error) {
	return t.participations(ctx, `
		JOIN students s ON s.id = p.student_id
		WHERE s.class_id = $1 AND p.approved = TRUE`, classID)
}

func (t *Tx) InsertParticipation(ctx context.Context, p *models.Participation) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO participations (event_id, student_id, place, approved, approved_by, approved_at,
		                            news_link, participants_count, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		p.EventID, p.StudentID, p.Place, p.Approved, p.ApprovedBy, p.ApprovedAt,
		p.NewsLink, p.ParticipantCount, p.Description, p.CreatedAt,
	).Scan(&p.ID)
}

func (t *Tx) SetParticipationApproval(ctx context.Context, id int64, approved bool, by *int64, at *time.Time) error {
	_, err := t.q.ExecContext(ctx, `
		UPDATE participations SET approved = $1, approved_by = $2, approved_at = $3 WHERE id = $4`,
		approved, by, at, id)
	return err
}
