package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/school-rating/internal/models"
)

func (c *Commands) start(ctx context.Context, u *models.User, _ []string) (Reply, error) {
	text := "Добро пожаловать! Выберите действие:"
	if u.Name != "" {
		text = fmt.Sprintf("Добро пожаловать, %s! Выберите действие:", u.Name)
	}
	return Reply{Text: text, ShowMenu: true}, nil
}

func (c *Commands) help(ctx context.Context, u *models.User, _ []string) (Reply, error) {
	var b strings.Builder
	b.WriteString("Доступные команды:\n")
	b.WriteString("/top_classes — рейтинг классов\n/top_students — рейтинг учеников\n/events — мероприятия\n")
	if u.Role.Can(models.CapViewOwnRating) {
		b.WriteString("/my_rating — мой рейтинг\n")
	}
	if u.Role.Can(models.CapRequestParticipation) {
		b.WriteString("/participate <id мероприятия> [место] — заявка на участие\n")
	}
	if u.Role.Can(models.CapSubmitPortfolio) {
		b.WriteString("/portfolio <тип> <баллы> <название> — запись в портфолио\n")
	}
	if u.Role.Can(models.CapRecordParticipation) {
		b.WriteString("/participate <id мероприятия> <id ученика>[:место] ... — записать участие\n")
		b.WriteString("/participate <id мероприятия> all [id класса] — записать весь класс\n")
	}
	if u.Role.Can(models.CapViewAnyStatistics) {
		b.WriteString("/stats <id ученика> — статистика ученика\n")
		b.WriteString("/class_report <id класса> — отчёт по классу в Excel\n")
	}
	if u.Role.Can(models.CapGrantClassPoints) {
		b.WriteString("/grant <id класса> <баллы> <причина> — баллы классу\n")
		b.WriteString("/class_points <id класса> — история начислений\n")
	}
	if u.Role.Can(models.CapCollectPaper) {
		b.WriteString("/paper <id класса> <ГГГГ-ММ-ДД> <id ученика>:<кг> ... — сбор макулатуры\n")
		b.WriteString("/paper_stats <id класса>, /paper_export — итоги сбора\n")
	}
	if u.Role == models.RoleTeacher {
		b.WriteString("Учитель работает только со своим классом.\n")
	}
	if u.Role.Can(models.CapApprove) {
		b.WriteString("/approve_participation <id>, /reject_participation <id>, /approve_portfolio <id>\n")
	}
	if u.Role.Can(models.CapExport) {
		b.WriteString("/export — выгрузка рейтинга в Excel\n")
	}
	if u.Role.Can(models.CapManageCatalog) {
		b.WriteString("/add_event, /event_off <id>, /event_on <id> — мероприятия\n")
		b.WriteString("/add_class, /assign_teacher — классы\n")
		b.WriteString("/link — регистрация пользователей, /summary — сводка по школе\n")
	}
	return Reply{Text: b.String()}, nil
}

func (c *Commands) myRating(ctx context.Context, u *models.User, _ []string) (Reply, error) {
	if u.StudentID == nil {
		return Reply{Text: "❌ Ваша учётная запись не привязана к ученику. Обратитесь к администратору."}, nil
	}
	st, err := c.svc.StudentStatistics(ctx, *u.StudentID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatStatistics("📊 Ваш рейтинг", st)}, nil
}

func (c *Commands) stats(ctx context.Context, u *models.User, args []string) (Reply, error) {
	if len(args) != 1 {
		return Reply{}, usage("/stats <id ученика>")
	}
	id, ok := parseID(args[0])
	if !ok {
		return Reply{}, usage("/stats <id ученика>")
	}
	st, err := c.svc.StudentStatistics(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatStatistics(fmt.Sprintf("📊 Ученик #%d", id), st)}, nil
}

func (c *Commands) topClasses(ctx context.Context, _ *models.User, _ []string) (Reply, error) {
	list, err := c.svc.ClassLeaderboard(ctx, topLimit)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatLeaderboard("🏆 Рейтинг классов", list)}, nil
}

func (c *Commands) topStudents(ctx context.Context, _ *models.User, _ []string) (Reply, error) {
	list, err := c.svc.StudentLeaderboard(ctx, topLimit)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatLeaderboard("🏅 Рейтинг учеников", list)}, nil
}

func (c *Commands) events(ctx context.Context, _ *models.User, _ []string) (Reply, error) {
	evs, err := c.svc.ListEvents(ctx, true)
	if err != nil {
		return Reply{}, err
	}
	if len(evs) == 0 {
		return Reply{Text: "Активных мероприятий нет."}, nil
	}
	var b strings.Builder
	b.WriteString("📅 Мероприятия:\n")
	for _, e := range evs {
		fmt.Fprintf(&b, "#%d %s — %s, %s\n", e.ID, e.Name, e.Level.Label(), strings.ToLower(e.Type.Label()))
	}
	return Reply{Text: b.String()}, nil
}

// FormatStatistics — текст статистики ученика с разбивкой по уровням.
func FormatStatistics(title string, st models.StudentStatistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d баллов\n", title, st.TotalPoints)
	fmt.Fprintf(&b, "Мероприятий: %d, записей портфолио: %d\n\n", st.TotalEvents, st.PortfolioEntries)
	for _, l := range models.Levels {
		ls := st.LevelStats[l]
		fmt.Fprintf(&b, "▫️ %s: %d (%d баллов)\n", l.Label(), ls.Count, ls.Points)
	}
	return b.String()
}

func FormatLeaderboard(title string, list []models.LeaderboardEntry) string {
	if len(list) == 0 {
		return title + "\n\nПока пусто."
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for _, e := range list {
		if e.ClassName != "" {
			fmt.Fprintf(&b, "%d. %s (%s) — %d\n", e.Rank, e.Name, e.ClassName, e.Rating)
		} else {
			fmt.Fprintf(&b, "%d. %s — %d\n", e.Rank, e.Name, e.Rating)
		}
	}
	return b.String()
}
