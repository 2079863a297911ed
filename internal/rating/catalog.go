package rating

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/logging"
	"github.com/Spok95/school-rating/internal/models"
)

func (s *Service) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	trimmed(&in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	ev := &models.Event{
		Name:        in.Name,
		Description: in.Description,
		Level:       in.Level,
		Type:        in.Type,
		ClassPoints: in.ClassPoints,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.now(),
		IsActive:    true,
	}
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		return tx.InsertEvent(ctx, ev)
	})
	if err != nil {
		return nil, s.fail("create_event", err)
	}
	return ev, nil
}

func (s *Service) ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	evs, err := s.store.ListEvents(ctx, activeOnly)
	if err != nil {
		return nil, s.fail("list_events", err)
	}
	return evs, nil
}

// SetEventActive скрывает или возвращает мероприятие. На рейтинги не влияет:
// уже подтверждённые участия продолжают учитываться.
func (s *Service) SetEventActive(ctx context.Context, eventID int64, active bool) error {
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if ev == nil {
			return notFound("event", eventID)
		}
		return tx.SetEventActive(ctx, eventID, active)
	})
	return s.fail("set_event_active", err, logging.EventID(eventID))
}

// CreateClass создаёт класс и, если передан список ФИО, его учеников.
func (s *Service) CreateClass(ctx context.Context, in ClassInput) (*models.SchoolClass, []models.Student, error) {
	trimmed(&in.Grade, &in.Name)
	if err := s.check(in); err != nil {
		return nil, nil, err
	}
	cls := &models.SchoolClass{
		Grade:     in.Grade,
		Name:      in.Name,
		CreatedAt: s.now(),
	}
	var students []models.Student
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		if err := tx.InsertClass(ctx, cls); err != nil {
			return err
		}
		for _, name := range in.Students {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			st := &models.Student{FullName: name, ClassID: cls.ID, CreatedAt: cls.CreatedAt}
			if err := tx.InsertStudent(ctx, st); err != nil {
				return err
			}
			st.ClassName = cls.FullName()
			students = append(students, *st)
		}
		return nil
	})
	if err != nil {
		return nil, nil, s.fail("create_class", err)
	}
	return cls, students, nil
}

// AssignTeacher назначает классного руководителя; nil снимает назначение.
// Учитель руководит одним классом: прежнее назначение снимается.
func (s *Service) AssignTeacher(ctx context.Context, classID int64, teacherID *int64) error {
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		cls, err := tx.LockClass(ctx, classID)
		if err != nil {
			return err
		}
		if cls == nil {
			return notFound("class", classID)
		}
		if teacherID != nil {
			prev, err := tx.ManagedClass(ctx, *teacherID)
			if err != nil {
				return err
			}
			if prev != nil && prev.ID != classID {
				if err := tx.SetClassTeacher(ctx, prev.ID, nil); err != nil {
					return err
				}
			}
		}
		return tx.SetClassTeacher(ctx, classID, teacherID)
	})
	return s.fail("assign_teacher", err, logging.ClassID(classID))
}

// ManagedClass — класс учителя или nil, если он не классный руководитель.
func (s *Service) ManagedClass(ctx context.Context, teacherID int64) (*models.SchoolClass, error) {
	var cls *models.SchoolClass
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		cls, err = tx.ManagedClass(ctx, teacherID)
		return err
	})
	if err != nil {
		return nil, s.fail("managed_class", err, zap.Int64("teacher_id", teacherID))
	}
	return cls, nil
}

func (s *Service) GetStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	var st *models.Student
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		sts, err := tx.StudentsByIDs(ctx, []int64{studentID})
		if err != nil {
			return err
		}
		if len(sts) == 0 {
			return notFound("student", studentID)
		}
		st = &sts[0]
		return nil
	})
	if err != nil {
		return nil, s.fail("get_student", err, logging.StudentID(studentID))
	}
	return st, nil
}
