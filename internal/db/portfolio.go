package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/school-rating/internal/models"
)

const portfolioColumns = `id, student_id, title, description, entry_type, date_achieved, points_earned,
	evidence_link, approved, approved_by, approved_at, created_at`

func scanPortfolio(r rowScanner) (*models.PortfolioEntry, error) {
	var e models.PortfolioEntry
	err := r.Scan(&e.ID, &e.StudentID, &e.Title, &e.Description, &e.EntryType, &e.DateAchieved, &e.PointsEarned,
		&e.EvidenceLink, &e.Approved, &e.ApprovedBy, &e.ApprovedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *Tx) GetPortfolioEntry(ctx context.Context, id int64) (*models.PortfolioEntry, error) {
	e, err := scanPortfolio(t.q.QueryRowContext(ctx, `SELECT `+portfolioColumns+` FROM portfolio_entries WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (t *Tx) StudentPortfolio(ctx context.Context, studentID int64) ([]models.PortfolioEntry, error) {
	rows, err := t.q.QueryContext(ctx, `
		SELECT `+portfolioColumns+`
		FROM portfolio_entries
		WHERE student_id = $1
		ORDER BY date_achieved, id`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.PortfolioEntry{}
	for rows.Next() {
		e, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (t *Tx) InsertPortfolioEntry(ctx context.Context, e *models.PortfolioEntry) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO portfolio_entries (student_id, title, description, entry_type, date_achieved,
		                               points_earned, evidence_link, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		e.StudentID, e.Title, e.Description, e.EntryType, e.DateAchieved,
		e.PointsEarned, e.EvidenceLink, e.Approved, e.CreatedAt,
	).Scan(&e.ID)
}

func (t *Tx) SetPortfolioApproval(ctx context.Context, id int64, approved bool, by *int64, at *time.Time) error {
	_, err := t.q.ExecContext(ctx, `
		UPDATE portfolio_entries SET approved = $1, approved_by = $2, approved_at = $3 WHERE id = $4`,
		approved, by, at, id)
	return err
}
