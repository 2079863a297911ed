package rating

import (
	"context"
	"time"

	"github.com/Spok95/school-rating/internal/models"
)

// Tx — единица работы. Get*/Lock* возвращают nil, nil, если записи нет.
// Lock* блокирует строку агрегата до конца транзакции.
type Tx interface {
	LockStudent(ctx context.Context, id int64) (*models.Student, error)
	LockClass(ctx context.Context, id int64) (*models.SchoolClass, error)
	GetClass(ctx context.Context, id int64) (*models.SchoolClass, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	GetParticipation(ctx context.Context, id int64) (*models.Participation, error)
	GetPortfolioEntry(ctx context.Context, id int64) (*models.PortfolioEntry, error)
	// ManagedClass — класс, где teacherID классный руководитель.
	ManagedClass(ctx context.Context, teacherID int64) (*models.SchoolClass, error)

	StudentsByIDs(ctx context.Context, ids []int64) ([]models.Student, error)
	ClassStudents(ctx context.Context, classID int64) ([]models.Student, error)
	// StudentParticipations — все участия ученика (в том числе неподтверждённые) с данными мероприятия.
	StudentParticipations(ctx context.Context, studentID int64) ([]models.Participation, error)
	StudentPortfolio(ctx context.Context, studentID int64) ([]models.PortfolioEntry, error)
	// ClassParticipations — подтверждённые участия учеников класса с данными мероприятия.
	ClassParticipations(ctx context.Context, classID int64) ([]models.Participation, error)
	ClassPoints(ctx context.Context, classID int64) ([]models.ClassPoints, error)
	// ClassPaperCollections — сбор макулатуры класса с даты since включительно, по дате.
	ClassPaperCollections(ctx context.Context, classID int64, since time.Time) ([]models.PaperCollection, error)

	InsertParticipation(ctx context.Context, p *models.Participation) error
	InsertPortfolioEntry(ctx context.Context, e *models.PortfolioEntry) error
	InsertClassPoints(ctx context.Context, cp *models.ClassPoints) error
	InsertEvent(ctx context.Context, e *models.Event) error
	InsertClass(ctx context.Context, c *models.SchoolClass) error
	InsertStudent(ctx context.Context, s *models.Student) error
	// UpsertPaperCollection перезаписывает килограммы за (ученик, класс, дата).
	UpsertPaperCollection(ctx context.Context, pc *models.PaperCollection) error
	DeletePaperCollection(ctx context.Context, studentID, classID int64, date time.Time) error

	SetParticipationApproval(ctx context.Context, id int64, approved bool, by *int64, at *time.Time) error
	SetPortfolioApproval(ctx context.Context, id int64, approved bool, by *int64, at *time.Time) error
	SetEventActive(ctx context.Context, id int64, active bool) error
	SetClassTeacher(ctx context.Context, classID int64, teacherID *int64) error

	SetPersonalRating(ctx context.Context, studentID int64, rating int) error
	SetTotalRating(ctx context.Context, classID int64, rating int) error
}

type Store interface {
	// WithinTx выполняет fn в одной транзакции: commit при nil, иначе rollback.
	WithinTx(ctx context.Context, fn func(Tx) error) error

	ClassLeaderboard(ctx context.Context, limit int) ([]models.SchoolClass, error)
	StudentLeaderboard(ctx context.Context, limit int) ([]models.Student, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error)
	ClassPointsHistory(ctx context.Context, classID int64) ([]models.ClassPoints, error)
	StudentIDs(ctx context.Context) ([]int64, error)
	ClassIDs(ctx context.Context) ([]int64, error)
	Summary(ctx context.Context) (models.SchoolSummary, error)
}
