package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

const (
	usageParticipateStaff   = "/participate <id мероприятия> <id ученика>[:место] ... или /participate <id мероприятия> all [id класса]"
	usageParticipateStudent = "/participate <id мероприятия> [место]"
	usageGrant              = "/grant <id класса> <баллы> <причина>"
	usagePortfolio          = "/portfolio <тип> <баллы> <название>; типы: achievement, project, competition, olympiad, sport, art"
)

// participate: персонал записывает подтверждённое участие сразу нескольких
// учеников, ученик подаёт неподтверждённую заявку за себя.
func (c *Commands) participate(ctx context.Context, u *models.User, args []string) (Reply, error) {
	if u.Role.Can(models.CapRecordParticipation) {
		return c.recordParticipations(ctx, u, args)
	}
	if u.StudentID == nil {
		return Reply{Text: "❌ Ваша учётная запись не привязана к ученику."}, nil
	}
	if len(args) == 0 {
		return Reply{}, usage(usageParticipateStudent)
	}
	eventID, ok := parseID(args[0])
	if !ok {
		return Reply{}, usage(usageParticipateStudent)
	}
	place, ok := ParseOptionalPlace(args[1:])
	if !ok {
		return Reply{}, usage(usageParticipateStudent)
	}
	p, err := c.svc.RecordParticipation(ctx, rating.ParticipationInput{
		EventID:   eventID,
		StudentID: *u.StudentID,
		Place:     place,
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("📨 Заявка #%d на «%s» отправлена на подтверждение.", p.ID, p.EventName)}, nil
}

func (c *Commands) recordParticipations(ctx context.Context, u *models.User, args []string) (Reply, error) {
	if len(args) < 2 {
		return Reply{}, usage(usageParticipateStaff)
	}
	eventID, ok := parseID(args[0])
	if !ok {
		return Reply{}, usage(usageParticipateStaff)
	}
	by := u.ID
	in := rating.BulkParticipationInput{EventID: eventID, Approved: true, ApprovedBy: &by}
	if strings.EqualFold(args[1], "all") {
		classID, err := c.wholeClassArg(ctx, args[2:])
		if err != nil {
			return Reply{}, err
		}
		in.ClassID = classID
	} else {
		in.Entries, ok = ParseBulkEntries(args[1:])
		if !ok {
			return Reply{}, usage(usageParticipateStaff)
		}
	}
	parts, err := c.svc.RecordParticipations(ctx, in)
	if err != nil {
		return Reply{}, err
	}
	name := ""
	if len(parts) > 0 {
		name = parts[0].EventName
	}
	return Reply{Text: fmt.Sprintf("✅ Участие в «%s» записано: %d уч.", name, len(parts))}, nil
}

// wholeClassArg — класс для "all": явный id или класс из области учителя.
func (c *Commands) wholeClassArg(ctx context.Context, args []string) (int64, error) {
	switch len(args) {
	case 0:
		scope, ok := rating.ClassScope(ctx)
		if !ok {
			return 0, usage(usageParticipateStaff)
		}
		if scope == 0 {
			return 0, ErrForbidden
		}
		return scope, nil
	case 1:
		if id, ok := parseID(args[0]); ok {
			return id, nil
		}
	}
	return 0, usage(usageParticipateStaff)
}

// grant: учителю сервис разрешает только свой класс.
func (c *Commands) grant(ctx context.Context, u *models.User, args []string) (Reply, error) {
	classID, points, reason, ok := ParseGrant(args)
	if !ok {
		return Reply{}, usage(usageGrant)
	}
	cp, err := c.svc.GrantClassPoints(ctx, rating.ClassPointsInput{
		ClassID:   classID,
		Points:    points,
		Reason:    reason,
		GrantedBy: u.ID,
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ Классу #%d начислено %d баллов: %s", cp.ClassID, cp.Points, cp.Reason)}, nil
}

func (c *Commands) portfolio(ctx context.Context, u *models.User, args []string) (Reply, error) {
	if u.StudentID == nil {
		return Reply{Text: "❌ Ваша учётная запись не привязана к ученику."}, nil
	}
	entryType, points, title, ok := ParsePortfolio(args)
	if !ok {
		return Reply{}, usage(usagePortfolio)
	}
	e, err := c.svc.SubmitPortfolioEntry(ctx, rating.PortfolioInput{
		StudentID:    *u.StudentID,
		Title:        title,
		EntryType:    entryType,
		PointsEarned: points,
		DateAchieved: c.now().In(c.loc),
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("📨 Запись портфолио #%d «%s» отправлена на подтверждение.", e.ID, e.Title)}, nil
}

func (c *Commands) approvePortfolio(ctx context.Context, u *models.User, args []string) (Reply, error) {
	id, err := singleID(args, "/approve_portfolio <id>")
	if err != nil {
		return Reply{}, err
	}
	if err := c.svc.ApprovePortfolioEntry(ctx, id, u.ID); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ Запись портфолио #%d подтверждена.", id)}, nil
}

func (c *Commands) approveParticipation(ctx context.Context, u *models.User, args []string) (Reply, error) {
	return c.setParticipation(ctx, u, args, true)
}

func (c *Commands) rejectParticipation(ctx context.Context, u *models.User, args []string) (Reply, error) {
	return c.setParticipation(ctx, u, args, false)
}

func (c *Commands) setParticipation(ctx context.Context, u *models.User, args []string, approved bool) (Reply, error) {
	cmd, done := "/approve_participation", "подтверждено"
	if !approved {
		cmd, done = "/reject_participation", "отклонено"
	}
	id, err := singleID(args, cmd+" <id>")
	if err != nil {
		return Reply{}, err
	}
	if err := c.svc.SetParticipationApproval(ctx, id, approved, u.ID); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ Участие #%d %s.", id, done)}, nil
}

func singleID(args []string, use string) (int64, error) {
	if len(args) != 1 {
		return 0, usage(use)
	}
	id, ok := parseID(args[0])
	if !ok {
		return 0, usage(use)
	}
	return id, nil
}
