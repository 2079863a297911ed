package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-rating/internal/export"
	"github.com/Spok95/school-rating/internal/jobs"
	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/tg"
)

// SchoolYearCron — 1 сентября, 07:00.
const SchoolYearCron = "0 7 1 9 *"

type Leaderboards interface {
	ClassLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	StudentLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// SchoolYearReport рассылает админам итоговый рейтинг закончившегося учебного года.
func SchoolYearReport(bot tg.Sender, lb Leaderboards, adminIDs []int64, loc *time.Location) jobs.Job {
	return func(ctx context.Context) error {
		if len(adminIDs) == 0 {
			return nil
		}
		classes, err := lb.ClassLeaderboard(ctx, 10000)
		if err != nil {
			return err
		}
		students, err := lb.StudentLeaderboard(ctx, 10000)
		if err != nil {
			return err
		}
		wb, err := export.RatingsWorkbook(classes, students)
		if err != nil {
			return err
		}
		defer func() { _ = wb.Close() }()
		data, err := wb.Bytes()
		if err != nil {
			return err
		}

		startYear := export.CurrentSchoolYearStartYear(time.Now().In(loc))
		prev := export.SchoolYearLabel(startYear - 1)
		text := fmt.Sprintf("🎓 Начался учебный год %s. Итоговый рейтинг за %s во вложении.",
			export.SchoolYearLabel(startYear), prev)

		var firstErr error
		for _, chatID := range adminIDs {
			if _, err := tg.Send(bot, tgbotapi.NewMessage(chatID, text)); err != nil && firstErr == nil {
				firstErr = err
				continue
			}
			if _, err := tg.SendDocument(bot, chatID, export.BuildRatingsFilename(prev), data, ""); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
