package handlers

import (
	"context"

	"github.com/Spok95/school-rating/internal/export"
	"github.com/Spok95/school-rating/internal/models"
)

const exportLimit = 10000

// exportRatings выгружает полный рейтинг классов и учеников.
func (c *Commands) exportRatings(ctx context.Context, _ *models.User, _ []string) (Reply, error) {
	classes, err := c.svc.ClassLeaderboard(ctx, exportLimit)
	if err != nil {
		return Reply{}, err
	}
	students, err := c.svc.StudentLeaderboard(ctx, exportLimit)
	if err != nil {
		return Reply{}, err
	}
	wb, err := export.RatingsWorkbook(classes, students)
	if err != nil {
		return Reply{}, err
	}
	defer func() { _ = wb.Close() }()
	b, err := wb.Bytes()
	if err != nil {
		return Reply{}, err
	}
	label := export.CurrentSchoolYearLabel(c.now().In(c.loc))
	return Reply{
		Text:     "📥 Рейтинг за " + label,
		Document: &Document{Name: export.BuildRatingsFilename(label), Bytes: b},
	}, nil
}
