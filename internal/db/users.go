package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/school-rating/internal/ctxutil"
	"github.com/Spok95/school-rating/internal/models"
)

// GetUserByTelegramID — nil, nil, если пользователь не зарегистрирован.
func GetUserByTelegramID(ctx context.Context, database *sql.DB, telegramID int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var u models.User
	err := database.QueryRowContext(ctx, `
		SELECT id, telegram_id, name, role, student_id, is_active
		FROM users WHERE telegram_id = $1`, telegramID).
		Scan(&u.ID, &u.TelegramID, &u.Name, &u.Role, &u.StudentID, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser создаёт или обновляет пользователя по telegram_id и заполняет u.ID.
func UpsertUser(ctx context.Context, database *sql.DB, u *models.User) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return database.QueryRowContext(ctx, `
		INSERT INTO users (telegram_id, name, role, student_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET name = EXCLUDED.name, role = EXCLUDED.role,
		    student_id = EXCLUDED.student_id, is_active = EXCLUDED.is_active
		RETURNING id`,
		u.TelegramID, u.Name, string(u.Role), u.StudentID, u.IsActive,
	).Scan(&u.ID)
}

// EnsureAdmins заводит записи для ADMIN_IDS. Существующим пользователям роль не меняет.
func EnsureAdmins(ctx context.Context, database *sql.DB, telegramIDs []int64) error {
	for _, id := range telegramIDs {
		_, err := database.ExecContext(ctx, `
			INSERT INTO users (telegram_id, name, role)
			VALUES ($1, 'Администратор', 'admin')
			ON CONFLICT (telegram_id) DO NOTHING`, id)
		if err != nil {
			return err
		}
	}
	return nil
}

// Users — справочник пользователей для бота.
type Users struct {
	DB *sql.DB
}

func (u Users) ByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return GetUserByTelegramID(ctx, u.DB, telegramID)
}

func (u Users) Upsert(ctx context.Context, user *models.User) error {
	return UpsertUser(ctx, u.DB, user)
}
