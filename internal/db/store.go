package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

// querier — общее у *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store — Postgres-реализация rating.Store.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{DB: database} }

// Tx — rating.Tx поверх *sql.Tx.
type Tx struct {
	q querier
}

var (
	_ rating.Store = (*Store)(nil)
	_ rating.Tx    = (*Tx)(nil)
)

func (s *Store) WithinTx(ctx context.Context, fn func(rating.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ClassLeaderboard(ctx context.Context, limit int) ([]models.SchoolClass, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+classColumns+`
		FROM school_classes
		ORDER BY total_rating DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanClasses(rows)
}

func (s *Store) StudentLeaderboard(ctx context.Context, limit int) ([]models.Student, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+studentColumnsWithClass+`
		FROM students s
		JOIN school_classes c ON c.id = s.class_id
		ORDER BY s.personal_rating DESC, s.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}

func (s *Store) ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) ClassPointsHistory(ctx context.Context, classID int64) ([]models.ClassPoints, error) {
	return classPoints(ctx, s.DB, classID, "created_at DESC, id DESC")
}

func (s *Store) StudentIDs(ctx context.Context) ([]int64, error) {
	return ids(ctx, s.DB, `SELECT id FROM students ORDER BY id`)
}

func (s *Store) ClassIDs(ctx context.Context) ([]int64, error) {
	return ids(ctx, s.DB, `SELECT id FROM school_classes ORDER BY id`)
}

func (s *Store) Summary(ctx context.Context) (models.SchoolSummary, error) {
	var sum models.SchoolSummary
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(total_rating) FROM school_classes), 0),
			(SELECT COUNT(*) FROM school_classes),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM students)`).
		Scan(&sum.TotalSchoolRating, &sum.Classes, &sum.Events, &sum.Students)
	return sum, err
}

func ids(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
