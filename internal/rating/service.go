package rating

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/logging"
	"github.com/Spok95/school-rating/internal/metrics"
	"github.com/Spok95/school-rating/internal/models"
)

// Service — единственный путь изменения personal_rating и total_rating.
// Каждый пересчёт читает записи и пишет агрегат в одной транзакции
// под блокировкой строки ученика или класса.
type Service struct {
	store    Store
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
}

// personalState — то, что прочитал пересчёт личного рейтинга.
type personalState struct {
	student *models.Student
	parts   []models.Participation
	entries []models.PortfolioEntry
	rating  int
	changed bool
}

func (s *Service) recomputePersonal(ctx context.Context, tx Tx, studentID int64) (*personalState, error) {
	start := time.Now()
	defer func() { metrics.ObserveRecompute(metrics.EntityStudent, time.Since(start)) }()

	st, err := tx.LockStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound("student", studentID)
	}
	parts, err := tx.StudentParticipations(ctx, studentID)
	if err != nil {
		return nil, err
	}
	entries, err := tx.StudentPortfolio(ctx, studentID)
	if err != nil {
		return nil, err
	}

	ps := &personalState{student: st, parts: parts, entries: entries}
	ps.rating = PersonalRating(parts, entries)
	if ps.rating != st.PersonalRating {
		if err := tx.SetPersonalRating(ctx, studentID, ps.rating); err != nil {
			return nil, err
		}
		ps.changed = true
		s.log.Debug("personal rating updated",
			logging.StudentID(studentID),
			zap.Int("old", st.PersonalRating),
			zap.Int("new", ps.rating))
	}
	st.PersonalRating = ps.rating
	return ps, nil
}

func (s *Service) recomputeTotal(ctx context.Context, tx Tx, classID int64) (int, bool, error) {
	start := time.Now()
	defer func() { metrics.ObserveRecompute(metrics.EntityClass, time.Since(start)) }()

	cls, err := tx.LockClass(ctx, classID)
	if err != nil {
		return 0, false, err
	}
	if cls == nil {
		return 0, false, notFound("class", classID)
	}
	parts, err := tx.ClassParticipations(ctx, classID)
	if err != nil {
		return 0, false, err
	}
	grants, err := tx.ClassPoints(ctx, classID)
	if err != nil {
		return 0, false, err
	}

	total := ClassRating(parts, grants)
	if total == cls.TotalRating {
		return total, false, nil
	}
	if err := tx.SetTotalRating(ctx, classID, total); err != nil {
		return 0, false, err
	}
	s.log.Debug("total rating updated",
		logging.ClassID(classID),
		zap.Int("old", cls.TotalRating),
		zap.Int("new", total))
	return total, true, nil
}

// fail приводит ошибку к доменной; сбои хранилища логируются и считаются в метрике.
func (s *Service) fail(op string, err error, fields ...zap.Field) error {
	err = wrap(op, err)
	if IsPersistence(err) {
		metrics.RecomputeErrors.WithLabelValues(op).Inc()
		s.log.Error("rating operation failed", append(fields, logging.Op(op), zap.Error(err))...)
	}
	return err
}

// RecomputePersonalRating пересчитывает и сохраняет личный рейтинг ученика.
func (s *Service) RecomputePersonalRating(ctx context.Context, studentID int64) (int, error) {
	var rating int
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ps, err := s.recomputePersonal(ctx, tx, studentID)
		if err != nil {
			return err
		}
		rating = ps.rating
		return nil
	})
	if err != nil {
		return 0, s.fail("recompute_personal_rating", err, logging.StudentID(studentID))
	}
	return rating, nil
}

// RecomputeTotalRating пересчитывает и сохраняет рейтинг класса.
func (s *Service) RecomputeTotalRating(ctx context.Context, classID int64) (int, error) {
	var total int
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		t, _, err := s.recomputeTotal(ctx, tx, classID)
		total = t
		return err
	})
	if err != nil {
		return 0, s.fail("recompute_total_rating", err, logging.ClassID(classID))
	}
	return total, nil
}

// StudentStatistics сначала освежает рейтинг, затем строит разбивку по уровням.
func (s *Service) StudentStatistics(ctx context.Context, studentID int64) (models.StudentStatistics, error) {
	var stats models.StudentStatistics
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ps, err := s.recomputePersonal(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if err := checkScope(ctx, ps.student.ClassID); err != nil {
			return err
		}
		stats = Statistics(studentID, ps.rating, ps.parts, ps.entries)
		return nil
	})
	if err != nil {
		return models.StudentStatistics{}, s.fail("student_statistics", err, logging.StudentID(studentID))
	}
	return stats, nil
}

// RecordParticipation сохраняет участие и пересчитывает ученика,
// а для подтверждённого классного мероприятия и его класс.
func (s *Service) RecordParticipation(ctx context.Context, in ParticipationInput) (*models.Participation, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Participation
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEvent(ctx, in.EventID)
		if err != nil {
			return err
		}
		if ev == nil {
			return notFound("event", in.EventID)
		}
		p := s.newParticipation(in.EventID, in.StudentID, in.Place, in.Approved, in.ApprovedBy,
			in.NewsLink, in.ParticipantsCount, in.Description)
		ps, err := s.recomputeAfterInsert(ctx, tx, p)
		if err != nil {
			return err
		}
		if p.Approved && ev.Type.CountsForClass() {
			if _, _, err := s.recomputeTotal(ctx, tx, ps.student.ClassID); err != nil {
				return err
			}
		}
		p.EventName, p.EventLevel, p.EventType = ev.Name, ev.Level, ev.Type
		out = p
		return nil
	})
	if err != nil {
		return nil, s.fail("record_participation", err,
			logging.EventID(in.EventID), logging.StudentID(in.StudentID))
	}
	return out, nil
}

func (s *Service) recomputeAfterInsert(ctx context.Context, tx Tx, p *models.Participation) (*personalState, error) {
	st, err := tx.LockStudent(ctx, p.StudentID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound("student", p.StudentID)
	}
	if err := checkScope(ctx, st.ClassID); err != nil {
		return nil, err
	}
	if err := tx.InsertParticipation(ctx, p); err != nil {
		return nil, err
	}
	return s.recomputePersonal(ctx, tx, p.StudentID)
}

func (s *Service) newParticipation(eventID, studentID int64, place *int, approved bool, by *int64,
	newsLink string, count int, descr string) *models.Participation {
	p := &models.Participation{
		EventID:          eventID,
		StudentID:        studentID,
		Place:            place,
		Approved:         approved,
		NewsLink:         newsLink,
		ParticipantCount: count,
		Description:      descr,
		CreatedAt:        s.now(),
	}
	if p.ParticipantCount == 0 {
		p.ParticipantCount = 1
	}
	if approved {
		at := p.CreatedAt
		p.ApprovedBy = by
		p.ApprovedAt = &at
	}
	return p
}

// RecordParticipations регистрирует сразу нескольких учеников: сначала все вставки,
// потом по одному пересчёту на ученика и ровно один на каждый затронутый класс.
// При заданном ClassID записывается весь класс без мест.
func (s *Service) RecordParticipations(ctx context.Context, in BulkParticipationInput) ([]models.Participation, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.ClassID == 0 && len(in.Entries) == 0 {
		return nil, &ValidationError{Err: errors.New("no students to record")}
	}
	var out []models.Participation
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		ev, err := tx.GetEvent(ctx, in.EventID)
		if err != nil {
			return err
		}
		if ev == nil {
			return notFound("event", in.EventID)
		}

		entries := in.Entries
		if in.ClassID != 0 {
			if entries, err = s.wholeClass(ctx, tx, in.ClassID); err != nil {
				return err
			}
		}

		ids := make([]int64, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.StudentID)
		}
		students, err := tx.StudentsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		classOf := make(map[int64]int64, len(students))
		for _, st := range students {
			classOf[st.ID] = st.ClassID
		}
		for _, id := range ids {
			classID, ok := classOf[id]
			if !ok {
				return notFound("student", id)
			}
			if err := checkScope(ctx, classID); err != nil {
				return err
			}
		}

		out = make([]models.Participation, 0, len(entries))
		for _, e := range entries {
			p := s.newParticipation(in.EventID, e.StudentID, e.Place, in.Approved, in.ApprovedBy,
				in.NewsLink, in.ParticipantsCount, in.Description)
			if err := tx.InsertParticipation(ctx, p); err != nil {
				return err
			}
			p.EventName, p.EventLevel, p.EventType = ev.Name, ev.Level, ev.Type
			out = append(out, *p)
		}

		for _, id := range uniqueSorted(ids) {
			if _, err := s.recomputePersonal(ctx, tx, id); err != nil {
				return err
			}
		}
		if !in.Approved || !ev.Type.CountsForClass() {
			return nil
		}
		classes := make([]int64, 0, len(classOf))
		for _, c := range classOf {
			classes = append(classes, c)
		}
		for _, classID := range uniqueSorted(classes) {
			if _, _, err := s.recomputeTotal(ctx, tx, classID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("record_participations", err, logging.EventID(in.EventID), logging.ClassID(in.ClassID))
	}
	return out, nil
}

func (s *Service) wholeClass(ctx context.Context, tx Tx, classID int64) ([]BulkEntry, error) {
	cls, err := tx.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if cls == nil {
		return nil, notFound("class", classID)
	}
	if err := checkScope(ctx, classID); err != nil {
		return nil, err
	}
	students, err := tx.ClassStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, &ValidationError{Err: errors.Errorf("class %d has no students", classID)}
	}
	out := make([]BulkEntry, 0, len(students))
	for _, st := range students {
		out = append(out, BulkEntry{StudentID: st.ID})
	}
	return out, nil
}

// SetParticipationApproval подтверждает или отзывает участие и пересчитывает затронутые рейтинги.
func (s *Service) SetParticipationApproval(ctx context.Context, id int64, approved bool, by int64) error {
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		p, err := tx.GetParticipation(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return notFound("participation", id)
		}
		if err := checkStudentScope(ctx, tx, p.StudentID); err != nil {
			return err
		}
		if p.Approved == approved {
			return nil
		}
		var byPtr *int64
		var at *time.Time
		if approved {
			now := s.now()
			byPtr, at = &by, &now
		}
		if err := tx.SetParticipationApproval(ctx, id, approved, byPtr, at); err != nil {
			return err
		}
		ps, err := s.recomputePersonal(ctx, tx, p.StudentID)
		if err != nil {
			return err
		}
		ev, err := tx.GetEvent(ctx, p.EventID)
		if err != nil {
			return err
		}
		if ev != nil && ev.Type.CountsForClass() {
			_, _, err = s.recomputeTotal(ctx, tx, ps.student.ClassID)
		}
		return err
	})
	return s.fail("set_participation_approval", err, zap.Int64("participation_id", id))
}

// GrantClassPoints добавляет ручное начисление классу и пересчитывает его рейтинг.
func (s *Service) GrantClassPoints(ctx context.Context, in ClassPointsInput) (*models.ClassPoints, error) {
	trimmed(&in.Reason)
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.ClassPoints
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
		cp := &models.ClassPoints{
			ClassID:    in.ClassID,
			Points:     in.Points,
			Reason:     in.Reason,
			AssignedBy: in.GrantedBy,
			CreatedAt:  s.now(),
		}
		if err := tx.InsertClassPoints(ctx, cp); err != nil {
			return err
		}
		if _, _, err := s.recomputeTotal(ctx, tx, in.ClassID); err != nil {
			return err
		}
		out = cp
		return nil
	})
	if err != nil {
		return nil, s.fail("grant_class_points", err, logging.ClassID(in.ClassID))
	}
	return out, nil
}

// SubmitPortfolioEntry сохраняет запись ученика; она не влияет на рейтинг до подтверждения.
func (s *Service) SubmitPortfolioEntry(ctx context.Context, in PortfolioInput) (*models.PortfolioEntry, error) {
	trimmed(&in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.PortfolioEntry
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		st, err := tx.LockStudent(ctx, in.StudentID)
		if err != nil {
			return err
		}
		if st == nil {
			return notFound("student", in.StudentID)
		}
		now := s.now()
		e := &models.PortfolioEntry{
			StudentID:    in.StudentID,
			Title:        in.Title,
			Description:  in.Description,
			EntryType:    in.EntryType,
			DateAchieved: in.DateAchieved,
			PointsEarned: in.PointsEarned,
			EvidenceLink: in.EvidenceLink,
			CreatedAt:    now,
		}
		if e.DateAchieved.IsZero() {
			e.DateAchieved = now
		}
		if err := tx.InsertPortfolioEntry(ctx, e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, s.fail("submit_portfolio_entry", err, logging.StudentID(in.StudentID))
	}
	return out, nil
}

func (s *Service) ApprovePortfolioEntry(ctx context.Context, entryID, by int64) error {
	return s.SetPortfolioApproval(ctx, entryID, true, by)
}

// SetPortfolioApproval подтверждает или отзывает запись портфолио и пересчитывает ученика.
func (s *Service) SetPortfolioApproval(ctx context.Context, entryID int64, approved bool, by int64) error {
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		e, err := tx.GetPortfolioEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if e == nil {
			return notFound("portfolio entry", entryID)
		}
		if err := checkStudentScope(ctx, tx, e.StudentID); err != nil {
			return err
		}
		if e.Approved == approved {
			return nil
		}
		var byPtr *int64
		var at *time.Time
		if approved {
			now := s.now()
			byPtr, at = &by, &now
		}
		if err := tx.SetPortfolioApproval(ctx, entryID, approved, byPtr, at); err != nil {
			return err
		}
		_, err = s.recomputePersonal(ctx, tx, e.StudentID)
		return err
	})
	return s.fail("set_portfolio_approval", err, zap.Int64("portfolio_entry_id", entryID))
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
