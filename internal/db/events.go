package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/school-rating/internal/models"
)

const eventColumns = `id, name, description, level, event_type, class_points, created_by, created_at, is_active`

func scanEvent(r rowScanner) (*models.Event, error) {
	var e models.Event
	if err := r.Scan(&e.ID, &e.Name, &e.Description, &e.Level, &e.Type, &e.ClassPoints,
		&e.CreatedBy, &e.CreatedAt, &e.IsActive); err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *Tx) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	e, err := scanEvent(t.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (t *Tx) InsertEvent(ctx context.Context, e *models.Event) error {
	return t.q.QueryRowContext(ctx, `
		INSERT INTO events (name, description, level, event_type, class_points, created_by, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.Name, e.Description, string(e.Level), string(e.Type), e.ClassPoints, e.CreatedBy, e.CreatedAt, e.IsActive,
	).Scan(&e.ID)
}

func (t *Tx) SetEventActive(ctx context.Context, id int64, active bool) error {
	_, err := t.q.ExecContext(ctx, `UPDATE events SET is_active = $1 WHERE id = $2`, active, id)
	return err
}
