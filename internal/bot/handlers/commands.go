package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/bot/menu"
	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

// RatingService — то, что боту нужно от rating.Service.
type RatingService interface {
	StudentStatistics(ctx context.Context, studentID int64) (models.StudentStatistics, error)
	ClassLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	StudentLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error)
	RecordParticipation(ctx context.Context, in rating.ParticipationInput) (*models.Participation, error)
	RecordParticipations(ctx context.Context, in rating.BulkParticipationInput) ([]models.Participation, error)
	SetParticipationApproval(ctx context.Context, id int64, approved bool, by int64) error
	GrantClassPoints(ctx context.Context, in rating.ClassPointsInput) (*models.ClassPoints, error)
	SubmitPortfolioEntry(ctx context.Context, in rating.PortfolioInput) (*models.PortfolioEntry, error)
	ApprovePortfolioEntry(ctx context.Context, entryID, by int64) error

	ManagedClass(ctx context.Context, teacherID int64) (*models.SchoolClass, error)
	GetStudent(ctx context.Context, studentID int64) (*models.Student, error)
	CreateEvent(ctx context.Context, in rating.EventInput) (*models.Event, error)
	SetEventActive(ctx context.Context, eventID int64, active bool) error
	CreateClass(ctx context.Context, in rating.ClassInput) (*models.SchoolClass, []models.Student, error)
	AssignTeacher(ctx context.Context, classID int64, teacherID *int64) error
	ClassPointsHistory(ctx context.Context, classID int64) ([]models.ClassPoints, error)
	ClassReport(ctx context.Context, classID int64) (models.ClassReport, error)
	SchoolSummary(ctx context.Context) (models.SchoolSummary, error)

	SavePaperCollection(ctx context.Context, in rating.PaperInput) ([]models.PaperCollection, error)
	ClassPaperStats(ctx context.Context, classID int64, since time.Time) (models.PaperStats, error)
	PaperOverview(ctx context.Context, since time.Time) ([]models.PaperStats, error)
}

// UserDirectory — учётные записи бота, см. db.Users.
type UserDirectory interface {
	ByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Upsert(ctx context.Context, u *models.User) error
}

// Document — файл для отправки в чат.
type Document struct {
	Name  string
	Bytes []byte
}

type Reply struct {
	Text     string
	ShowMenu bool
	Document *Document
}

var ErrForbidden = errors.New("forbidden")

var _ RatingService = (*rating.Service)(nil)

const topLimit = 10

type handlerFunc func(ctx context.Context, u *models.User, args []string) (Reply, error)

type route struct {
	// nil — доступно любой роли
	allowed func(models.Role) bool
	fn      handlerFunc
}

func can(c models.Capability) func(models.Role) bool {
	return func(r models.Role) bool { return r.Can(c) }
}

func anyOf(cs ...models.Capability) func(models.Role) bool {
	return func(r models.Role) bool {
		for _, c := range cs {
			if r.Can(c) {
				return true
			}
		}
		return false
	}
}

type Commands struct {
	svc    RatingService
	users  UserDirectory
	log    *zap.Logger
	loc    *time.Location
	now    func() time.Time
	routes map[string]route
}

func NewCommands(svc RatingService, users UserDirectory, log *zap.Logger, loc *time.Location) *Commands {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	c := &Commands{svc: svc, users: users, log: log, loc: loc, now: time.Now}
	c.routes = map[string]route{
		"/start":                 {nil, c.start},
		"/help":                  {nil, c.help},
		"/my_rating":             {can(models.CapViewOwnRating), c.myRating},
		"/top_classes":           {nil, c.topClasses},
		"/top_students":          {nil, c.topStudents},
		"/events":                {nil, c.events},
		"/stats":                 {can(models.CapViewAnyStatistics), c.stats},
		"/participate":           {anyOf(models.CapRecordParticipation, models.CapRequestParticipation), c.participate},
		"/grant":                 {can(models.CapGrantClassPoints), c.grant},
		"/portfolio":             {can(models.CapSubmitPortfolio), c.portfolio},
		"/approve_portfolio":     {can(models.CapApprove), c.approvePortfolio},
		"/approve_participation": {can(models.CapApprove), c.approveParticipation},
		"/reject_participation":  {can(models.CapApprove), c.rejectParticipation},
		"/export":                {can(models.CapExport), c.exportRatings},
		"/class_points":          {can(models.CapGrantClassPoints), c.classPoints},
		"/class_report":          {can(models.CapViewAnyStatistics), c.classReport},
		"/paper":                 {can(models.CapCollectPaper), c.paper},
		"/paper_stats":           {can(models.CapCollectPaper), c.paperStats},
		"/paper_export":          {can(models.CapCollectPaper), c.paperExport},
		"/summary":               {can(models.CapManageCatalog), c.summary},
		"/add_event":             {can(models.CapManageCatalog), c.addEvent},
		"/event_off":             {can(models.CapManageCatalog), c.eventOff},
		"/event_on":              {can(models.CapManageCatalog), c.eventOn},
		"/add_class":             {can(models.CapManageCatalog), c.addClass},
		"/assign_teacher":        {can(models.CapManageCatalog), c.assignTeacher},
		"/link":                  {can(models.CapManageCatalog), c.link},
	}
	return c
}

var buttonAliases = map[string]string{
	menu.BtnMyRating:    "/my_rating",
	menu.BtnTopClasses:  "/top_classes",
	menu.BtnTopStudents: "/top_students",
	menu.BtnEvents:      "/events",
	menu.BtnExport:      "/export",
}

// SplitCommand разбирает "/cmd@bot a b" на "/cmd" и аргументы. Кнопки меню
// превращаются в соответствующие команды.
func SplitCommand(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if cmd, ok := buttonAliases[text]; ok {
		return cmd, nil
	}
	f := strings.Fields(text)
	if len(f) == 0 || !strings.HasPrefix(f[0], "/") {
		return "", nil
	}
	cmd := strings.ToLower(f[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return cmd, f[1:]
}

// Handle выполняет команду от имени пользователя. Ответ пользователю есть
// всегда; ошибка возвращается только для системных сбоев.
func (c *Commands) Handle(ctx context.Context, u *models.User, text string) (Reply, error) {
	cmd, args := SplitCommand(text)
	r, ok := c.routes[cmd]
	if !ok {
		return Reply{Text: "⚠️ Неизвестная команда. Используйте /help"}, nil
	}
	if r.allowed != nil && !r.allowed(u.Role) {
		return Reply{Text: "🚫 Недостаточно прав."}, nil
	}
	if r.allowed != nil && u.Role == models.RoleTeacher {
		scoped, err := c.teacherScope(ctx, u)
		if err != nil {
			return c.errorReply(cmd, err)
		}
		ctx = scoped
	}
	rep, err := r.fn(ctx, u, args)
	if err == nil {
		return rep, nil
	}
	return c.errorReply(cmd, err)
}

// teacherScope ограничивает учителя классом, где он классный руководитель.
// Учитель без класса получает пустую область и не может менять ничего.
func (c *Commands) teacherScope(ctx context.Context, u *models.User) (context.Context, error) {
	cls, err := c.svc.ManagedClass(ctx, u.ID)
	if err != nil {
		return ctx, err
	}
	var id int64
	if cls != nil {
		id = cls.ID
	}
	return rating.WithClassScope(ctx, id), nil
}

func (c *Commands) errorReply(cmd string, err error) (Reply, error) {
	var usage *usageError
	var nf *rating.NotFoundError
	switch {
	case errors.As(err, &usage):
		return Reply{Text: "⚠️ Формат: " + usage.usage}, nil
	case errors.Is(err, ErrForbidden), rating.IsForbidden(err):
		return Reply{Text: "🚫 Недостаточно прав."}, nil
	case errors.As(err, &nf):
		return Reply{Text: "❌ Не найдено: " + entityLabel(nf.Entity) + " #" + itoa(nf.ID)}, nil
	case rating.IsValidation(err):
		return Reply{Text: "⚠️ Проверьте введённые данные."}, nil
	}
	c.log.Error("command failed", zap.String("cmd", cmd), zap.Error(err))
	return Reply{Text: "❌ Ошибка сохранения. Попробуйте позже."}, err
}

func entityLabel(e string) string {
	switch e {
	case "student":
		return "ученик"
	case "class":
		return "класс"
	case "event":
		return "мероприятие"
	case "participation":
		return "участие"
	case "portfolio entry":
		return "запись портфолио"
	}
	return e
}
