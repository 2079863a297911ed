package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/school-rating/internal/export"
	"github.com/Spok95/school-rating/internal/models"
)

const (
	usageAddEvent      = "/add_event <уровень> <тип> <баллы классу> <название>; уровни: school, city, republic, national; типы: student, class, both"
	usageAddClass      = "/add_class <параллель> <буква> [ФИО; ФИО; ...]"
	usageAssignTeacher = "/assign_teacher <id класса> <telegram id учителя | ->"
	usageLink          = "/link <telegram id> student <id ученика> или /link <telegram id> teacher|admin <ФИО>"
)

var errNoDirectory = errors.New("user directory is not configured")

func (c *Commands) addEvent(ctx context.Context, u *models.User, args []string) (Reply, error) {
	in, ok := ParseAddEvent(args)
	if !ok {
		return Reply{}, usage(usageAddEvent)
	}
	by := u.ID
	in.CreatedBy = &by
	ev, err := c.svc.CreateEvent(ctx, in)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ Мероприятие #%d «%s» создано: %s, %s.",
		ev.ID, ev.Name, ev.Level.Label(), strings.ToLower(ev.Type.Label()))}, nil
}

func (c *Commands) eventOff(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	return c.setEventActive(ctx, args, false)
}

func (c *Commands) eventOn(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	return c.setEventActive(ctx, args, true)
}

func (c *Commands) setEventActive(ctx context.Context, args []string, active bool) (Reply, error) {
	cmd, done := "/event_on", "снова активно"
	if !active {
		cmd, done = "/event_off", "скрыто"
	}
	id, err := singleID(args, cmd+" <id>")
	if err != nil {
		return Reply{}, err
	}
	if err := c.svc.SetEventActive(ctx, id, active); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ Мероприятие #%d %s.", id, done)}, nil
}

func (c *Commands) addClass(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	in, ok := ParseAddClass(args)
	if !ok {
		return Reply{}, usage(usageAddClass)
	}
	cls, students, err := c.svc.CreateClass(ctx, in)
	if err != nil {
		return Reply{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Класс %s создан, id %d.", cls.FullName(), cls.ID)
	for _, st := range students {
		fmt.Fprintf(&b, "\n#%d %s", st.ID, st.FullName)
	}
	return Reply{Text: b.String()}, nil
}

// assignTeacher: "-" вместо telegram id снимает классного руководителя.
func (c *Commands) assignTeacher(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	if len(args) != 2 {
		return Reply{}, usage(usageAssignTeacher)
	}
	classID, ok := parseID(args[0])
	if !ok {
		return Reply{}, usage(usageAssignTeacher)
	}
	if args[1] == "-" {
		if err := c.svc.AssignTeacher(ctx, classID, nil); err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("✅ У класса #%d больше нет классного руководителя.", classID)}, nil
	}
	tgID, ok := parseID(args[1])
	if !ok {
		return Reply{}, usage(usageAssignTeacher)
	}
	if c.users == nil {
		return Reply{}, errNoDirectory
	}
	t, err := c.users.ByTelegramID(ctx, tgID)
	if err != nil {
		return Reply{}, err
	}
	if t == nil || t.Role != models.RoleTeacher {
		return Reply{Text: "❌ Учитель с таким telegram id не зарегистрирован. Сначала /link."}, nil
	}
	if err := c.svc.AssignTeacher(ctx, classID, &t.ID); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ %s — классный руководитель класса #%d.", t.Name, classID)}, nil
}

// link регистрирует пользователя бота или меняет его роль.
func (c *Commands) link(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	tgID, role, rest, ok := ParseLink(args)
	if !ok {
		return Reply{}, usage(usageLink)
	}
	if c.users == nil {
		return Reply{}, errNoDirectory
	}
	nu := &models.User{TelegramID: tgID, Role: role, IsActive: true}
	if role == models.RoleStudent {
		id, ok := parseID(rest[0])
		if !ok {
			return Reply{}, usage(usageLink)
		}
		st, err := c.svc.GetStudent(ctx, id)
		if err != nil {
			return Reply{}, err
		}
		nu.Name, nu.StudentID = st.FullName, &st.ID
	} else {
		nu.Name = strings.Join(rest, " ")
	}
	if err := c.users.Upsert(ctx, nu); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✅ Пользователь %d: %s (%s).", tgID, nu.Name, roleLabel(role))}, nil
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleStudent:
		return "ученик"
	case models.RoleTeacher:
		return "учитель"
	case models.RoleAdmin:
		return "администратор"
	}
	return string(r)
}

func (c *Commands) summary(ctx context.Context, _ *models.User, _ []string) (Reply, error) {
	sum, err := c.svc.SchoolSummary(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("🏫 Школа: классов %d, учеников %d, мероприятий %d.\nОбщий рейтинг школы: %d",
		sum.Classes, sum.Students, sum.Events, sum.TotalSchoolRating)}, nil
}

func (c *Commands) classPoints(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	id, err := singleID(args, "/class_points <id класса>")
	if err != nil {
		return Reply{}, err
	}
	hist, err := c.svc.ClassPointsHistory(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	if len(hist) == 0 {
		return Reply{Text: fmt.Sprintf("Классу #%d баллы вручную не начислялись.", id)}, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Начисления классу #%d:\n", id)
	for _, cp := range hist {
		fmt.Fprintf(&b, "%s %+d — %s\n", cp.CreatedAt.In(c.loc).Format("02.01.2006"), cp.Points, cp.Reason)
	}
	return Reply{Text: b.String()}, nil
}

func (c *Commands) classReport(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	id, err := singleID(args, "/class_report <id класса>")
	if err != nil {
		return Reply{}, err
	}
	rep, err := c.svc.ClassReport(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	wb, err := export.ClassReportWorkbook(rep)
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
		Text:     fmt.Sprintf("📥 Отчёт по классу %s: рейтинг %d", rep.ClassName, rep.TotalRating),
		Document: &Document{Name: export.BuildClassReportFilename(rep.ClassName, label), Bytes: b},
	}, nil
}
