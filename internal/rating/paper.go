package rating

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/logging"
	"github.com/Spok95/school-rating/internal/models"
)

// SavePaperCollection записывает сбор макулатуры класса за один день.
// Повторная запись за тот же день перезаписывает килограммы, 0 удаляет запись.
// Возвращает сохранённые (ненулевые) записи.
func (s *Service) SavePaperCollection(ctx context.Context, in PaperInput) ([]models.PaperCollection, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, &ValidationError{Err: errors.New("collection date is required")}
	}
	day := truncateDay(in.Date)
	var out []models.PaperCollection
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		cls, err := tx.LockClass(ctx, in.ClassID)
		if err != nil {
			return err
		}
		if cls == nil {
			return notFound("class", in.ClassID)
		}
		if err := checkScope(ctx, in.ClassID); err != nil {
			return err
		}
		students, err := tx.ClassStudents(ctx, in.ClassID)
		if err != nil {
			return err
		}
		names := make(map[int64]string, len(students))
		for _, st := range students {
			names[st.ID] = st.FullName
		}
		for _, e := range in.Entries {
			name, ok := names[e.StudentID]
			if !ok {
				return notFound("student", e.StudentID)
			}
			if e.Kilograms == 0 {
				if err := tx.DeletePaperCollection(ctx, e.StudentID, in.ClassID, day); err != nil {
					return err
				}
				continue
			}
			pc := &models.PaperCollection{
				StudentID:   e.StudentID,
				StudentName: name,
				ClassID:     in.ClassID,
				Kilograms:   e.Kilograms,
				Date:        day,
				CreatedBy:   in.CreatedBy,
				CreatedAt:   s.now(),
			}
			if err := tx.UpsertPaperCollection(ctx, pc); err != nil {
				return err
			}
			out = append(out, *pc)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("save_paper_collection", err, logging.ClassID(in.ClassID))
	}
	s.log.Info("paper collection saved",
		logging.ClassID(in.ClassID),
		zap.Time("date", day),
		zap.Int("records", len(out)))
	return out, nil
}

// ClassPaperStats — сбор макулатуры класса начиная с since.
func (s *Service) ClassPaperStats(ctx context.Context, classID int64, since time.Time) (models.PaperStats, error) {
	var stats models.PaperStats
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		stats, err = s.classPaperStats(ctx, tx, classID, since)
		return err
	})
	if err != nil {
		return models.PaperStats{}, s.fail("class_paper_stats", err, logging.ClassID(classID))
	}
	return stats, nil
}

// PaperOverview — статистика по всем классам, доступным вызывающему, по убыванию сданного.
func (s *Service) PaperOverview(ctx context.Context, since time.Time) ([]models.PaperStats, error) {
	ids, err := s.store.ClassIDs(ctx)
	if err != nil {
		return nil, s.fail("paper_overview", err)
	}
	if scope, ok := ClassScope(ctx); ok {
		ids = []int64{scope}
		if scope == 0 {
			return nil, &ForbiddenError{}
		}
	}
	out := make([]models.PaperStats, 0, len(ids))
	err = s.store.WithinTx(ctx, func(tx Tx) error {
		for _, id := range ids {
			st, err := s.classPaperStats(ctx, tx, id, since)
			if IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, st)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("paper_overview", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalYear > out[j].TotalYear })
	return out, nil
}

func (s *Service) classPaperStats(ctx context.Context, tx Tx, classID int64, since time.Time) (models.PaperStats, error) {
	cls, err := tx.GetClass(ctx, classID)
	if err != nil {
		return models.PaperStats{}, err
	}
	if cls == nil {
		return models.PaperStats{}, notFound("class", classID)
	}
	if err := checkScope(ctx, classID); err != nil {
		return models.PaperStats{}, err
	}
	students, err := tx.ClassStudents(ctx, classID)
	if err != nil {
		return models.PaperStats{}, err
	}
	recs, err := tx.ClassPaperCollections(ctx, classID, truncateDay(since))
	if err != nil {
		return models.PaperStats{}, err
	}
	return PaperStatistics(*cls, students, recs), nil
}

// PaperStatistics сводит записи сбора: итог, последний день сбора, число дней,
// среднее за день, итоги учеников (включая не сдававших) и помесячные суммы.
func PaperStatistics(cls models.SchoolClass, students []models.Student, recs []models.PaperCollection) models.PaperStats {
	st := models.PaperStats{
		ClassID:   cls.ID,
		ClassName: cls.FullName(),
		Students:  make([]models.PaperStudentTotal, 0, len(students)),
		Months:    []models.PaperMonth{},
	}
	perStudent := make(map[int64]float64, len(students))
	perDay := map[time.Time]float64{}
	perMonth := map[string]float64{}
	for _, r := range recs {
		day := truncateDay(r.Date)
		st.TotalYear += r.Kilograms
		perStudent[r.StudentID] += r.Kilograms
		perDay[day] += r.Kilograms
		perMonth[day.Format("2006-01")] += r.Kilograms
	}
	for day, kg := range perDay {
		if st.LastDate == nil || day.After(*st.LastDate) {
			d := day
			st.LastDate = &d
			st.LastTotal = kg
		}
	}
	st.CollectionDays = len(perDay)
	if st.CollectionDays > 0 {
		st.AvgPerDay = round2(st.TotalYear / float64(st.CollectionDays))
	}
	st.TotalYear = round2(st.TotalYear)
	st.LastTotal = round2(st.LastTotal)

	for _, s := range students {
		st.Students = append(st.Students, models.PaperStudentTotal{
			StudentID: s.ID, Name: s.FullName, Kilograms: round2(perStudent[s.ID]),
		})
	}
	sort.SliceStable(st.Students, func(i, j int) bool {
		if st.Students[i].Kilograms != st.Students[j].Kilograms {
			return st.Students[i].Kilograms > st.Students[j].Kilograms
		}
		return st.Students[i].Name < st.Students[j].Name
	})
	for m, kg := range perMonth {
		st.Months = append(st.Months, models.PaperMonth{Month: m, Kilograms: round2(kg)})
	}
	sort.Slice(st.Months, func(i, j int) bool { return st.Months[i].Month < st.Months[j].Month })
	return st
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
