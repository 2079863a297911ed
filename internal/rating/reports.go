package rating

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/logging"
	"github.com/Spok95/school-rating/internal/models"
)

const DefaultLeaderboardLimit = 50

// ClassLeaderboard — классы по total_rating по убыванию, при равенстве по id.
func (s *Service) ClassLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	classes, err := s.store.ClassLeaderboard(ctx, limit)
	if err != nil {
		return nil, s.fail("class_leaderboard", err)
	}
	out := make([]models.LeaderboardEntry, 0, len(classes))
	for i, c := range classes {
		out = append(out, models.LeaderboardEntry{
			Rank:   i + 1,
			ID:     c.ID,
			Name:   c.FullName(),
			Rating: c.TotalRating,
		})
	}
	return out, nil
}

// StudentLeaderboard — ученики по personal_rating по убыванию, при равенстве по id.
func (s *Service) StudentLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	students, err := s.store.StudentLeaderboard(ctx, limit)
	if err != nil {
		return nil, s.fail("student_leaderboard", err)
	}
	out := make([]models.LeaderboardEntry, 0, len(students))
	for i, st := range students {
		out = append(out, models.LeaderboardEntry{
			Rank:      i + 1,
			ID:        st.ID,
			Name:      st.FullName,
			ClassName: st.ClassName,
			Rating:    st.PersonalRating,
		})
	}
	return out, nil
}

// ClassReport — рейтинг класса и подтверждённые участия каждого ученика.
func (s *Service) ClassReport(ctx context.Context, classID int64) (models.ClassReport, error) {
	var rep models.ClassReport
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		cls, err := tx.GetClass(ctx, classID)
		if err != nil {
			return err
		}
		if cls == nil {
			return notFound("class", classID)
		}
		if err := checkScope(ctx, classID); err != nil {
			return err
		}
		students, err := tx.ClassStudents(ctx, classID)
		if err != nil {
			return err
		}
		rep = models.ClassReport{
			ClassName:   cls.FullName(),
			TotalRating: cls.TotalRating,
			Students:    make([]models.ReportStudent, 0, len(students)),
		}
		for _, st := range students {
			parts, err := tx.StudentParticipations(ctx, st.ID)
			if err != nil {
				return err
			}
			rs := models.ReportStudent{
				Name:           st.FullName,
				PersonalRating: st.PersonalRating,
				Participations: []models.ReportParticipation{},
			}
			for _, p := range parts {
				if !p.Approved {
					continue
				}
				rs.Participations = append(rs.Participations, models.ReportParticipation{
					EventName: p.EventName,
					Points:    PointsForPlace(p.Place),
					Date:      p.CreatedAt,
				})
			}
			rep.Students = append(rep.Students, rs)
		}
		return nil
	})
	if err != nil {
		return models.ClassReport{}, s.fail("class_report", err, logging.ClassID(classID))
	}
	return rep, nil
}

// ClassPointsHistory — начисления классу, новые сверху.
func (s *Service) ClassPointsHistory(ctx context.Context, classID int64) ([]models.ClassPoints, error) {
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		cls, err := tx.GetClass(ctx, classID)
		if err != nil {
			return err
		}
		if cls == nil {
			return notFound("class", classID)
		}
		return checkScope(ctx, classID)
	})
	if err != nil {
		return nil, s.fail("class_points_history", err, logging.ClassID(classID))
	}
	out, err := s.store.ClassPointsHistory(ctx, classID)
	if err != nil {
		return nil, s.fail("class_points_history", err, logging.ClassID(classID))
	}
	return out, nil
}

func (s *Service) SchoolSummary(ctx context.Context) (models.SchoolSummary, error) {
	sum, err := s.store.Summary(ctx)
	if err != nil {
		return models.SchoolSummary{}, s.fail("school_summary", err)
	}
	return sum, nil
}

type ReconcileResult struct {
	Students int
	Classes  int
	Changed  int
	// из Changed: сколько личных и классных рейтингов расходились с записями
	StudentsFixed int
	ClassesFixed  int
}

// ReconcileAll пересчитывает всех учеников, затем все классы.
// Ненулевой Changed означает, что кэш расходился с записями.
func (s *Service) ReconcileAll(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	studentIDs, err := s.store.StudentIDs(ctx)
	if err != nil {
		return res, s.fail("reconcile", err)
	}
	for _, id := range studentIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := s.store.WithinTx(ctx, func(tx Tx) error {
			ps, err := s.recomputePersonal(ctx, tx, id)
			if err == nil && ps.changed {
				res.Changed++
				res.StudentsFixed++
			}
			return err
		})
		if IsNotFound(err) {
			continue // удалили между выборкой id и пересчётом
		}
		if err != nil {
			return res, s.fail("reconcile", err, logging.StudentID(id))
		}
		res.Students++
	}

	classIDs, err := s.store.ClassIDs(ctx)
	if err != nil {
		return res, s.fail("reconcile", err)
	}
	for _, id := range classIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := s.store.WithinTx(ctx, func(tx Tx) error {
			_, changed, err := s.recomputeTotal(ctx, tx, id)
			if changed {
				res.Changed++
				res.ClassesFixed++
			}
			return err
		})
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return res, s.fail("reconcile", err, logging.ClassID(id))
		}
		res.Classes++
	}
	if res.Changed > 0 {
		s.log.Warn("reconcile fixed stale ratings", zap.Int("changed", res.Changed))
	}
	return res, nil
}
