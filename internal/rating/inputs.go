package rating

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Spok95/school-rating/internal/models"
)

type ParticipationInput struct {
	EventID           int64  `validate:"required"`
	StudentID         int64  `validate:"required"`
	Place             *int   // nil — участие без места
	Approved          bool   // заявка от ученика приходит неподтверждённой
	ApprovedBy        *int64 `validate:"required_if=Approved true"`
	NewsLink          string `validate:"max=500"`
	ParticipantsCount int    `validate:"gte=0"`
	Description       string
}

type BulkEntry struct {
	StudentID int64 `validate:"required"`
	Place     *int
}

// BulkParticipationInput — регистрация нескольких учеников на одно мероприятие.
// Ненулевой ClassID записывает весь класс, Entries при этом игнорируются.
type BulkParticipationInput struct {
	EventID           int64       `validate:"required"`
	ClassID           int64
	Entries           []BulkEntry `validate:"dive"`
	Approved          bool
	ApprovedBy        *int64 `validate:"required_if=Approved true"`
	NewsLink          string `validate:"max=500"`
	ParticipantsCount int    `validate:"gte=0"`
	Description       string
}

type ClassPointsInput struct {
	ClassID   int64  `validate:"required"`
	Points    int    // может быть отрицательным: списание
	Reason    string `validate:"required,max=500"`
	GrantedBy int64  `validate:"required"`
}

type PortfolioInput struct {
	StudentID    int64  `validate:"required"`
	Title        string `validate:"required,max=200"`
	Description  string
	EntryType    string `validate:"required,oneof=achievement project competition olympiad sport art"`
	DateAchieved time.Time
	PointsEarned int    `validate:"gte=0"`
	EvidenceLink string `validate:"max=500"`
}

type EventInput struct {
	Name        string `validate:"required,max=200"`
	Description string
	Level       models.EventLevel `validate:"required,oneof=school city republic national"`
	Type        models.EventType  `validate:"required,oneof=student class both"`
	ClassPoints int               `validate:"gte=0"`
	CreatedBy   *int64
}

type ClassInput struct {
	Grade    string   `validate:"required,max=10"`
	Name     string   `validate:"required,max=50"`
	Students []string `validate:"dive,max=100"`
}

// PaperEntry — килограммы ученика; 0 удаляет запись за этот день.
type PaperEntry struct {
	StudentID int64   `validate:"required"`
	Kilograms float64 `validate:"gte=0,lte=1000"`
}

type PaperInput struct {
	ClassID   int64 `validate:"required"`
	Date      time.Time
	Entries   []PaperEntry `validate:"required,min=1,dive"`
	CreatedBy int64        `validate:"required"`
}

func newValidator() *validator.Validate {
	return validator.New()
}

// trimmed обрезает пробелы до проверки, чтобы "   " не проходил required.
func trimmed(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
