package rating_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

var errBoom = errors.New("boom")

// memStore — rating.Store в памяти. WithinTx сериализует транзакции и
// откатывает состояние к снимку, если fn вернула ошибку.
type memStore struct {
	mu sync.Mutex

	seq          int64
	students     map[int64]models.Student
	classes      map[int64]models.SchoolClass
	events       map[int64]models.Event
	parts        map[int64]models.Participation
	portfolio    map[int64]models.PortfolioEntry
	classPoints  map[int64]models.ClassPoints
	paper        map[int64]models.PaperCollection
	failOn       map[string]error
	classLocks   map[int64]int
	studentLocks map[int64]int
}

func newMemStore() *memStore {
	return &memStore{
		students:     map[int64]models.Student{},
		classes:      map[int64]models.SchoolClass{},
		events:       map[int64]models.Event{},
		parts:        map[int64]models.Participation{},
		portfolio:    map[int64]models.PortfolioEntry{},
		classPoints:  map[int64]models.ClassPoints{},
		paper:        map[int64]models.PaperCollection{},
		failOn:       map[string]error{},
		classLocks:   map[int64]int{},
		studentLocks: map[int64]int{},
	}
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

// fail заставляет метод op вернуть ошибку хранилища.
func (m *memStore) fail(op string) { m.failOn[op] = errBoom }

func (m *memStore) err(op string) error { return m.failOn[op] }

func (m *memStore) addClass(grade, name string) int64 {
	id := m.nextID()
	m.classes[id] = models.SchoolClass{ID: id, Grade: grade, Name: name}
	return id
}

func (m *memStore) addStudent(name string, classID int64) int64 {
	id := m.nextID()
	m.students[id] = models.Student{ID: id, FullName: name, ClassID: classID}
	return id
}

func (m *memStore) addEvent(name string, level models.EventLevel, typ models.EventType) int64 {
	id := m.nextID()
	m.events[id] = models.Event{ID: id, Name: name, Level: level, Type: typ, IsActive: true}
	return id
}

func (m *memStore) personalRating(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.students[id].PersonalRating
}

func (m *memStore) totalRating(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classes[id].TotalRating
}

// setPersonalRating портит кэш в обход сервиса.
func (m *memStore) setPersonalRating(id int64, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.students[id]
	st.PersonalRating = v
	m.students[id] = st
}

type snapshot struct {
	seq         int64
	students    map[int64]models.Student
	classes     map[int64]models.SchoolClass
	events      map[int64]models.Event
	parts       map[int64]models.Participation
	portfolio   map[int64]models.PortfolioEntry
	classPoints map[int64]models.ClassPoints
	paper       map[int64]models.PaperCollection
}

func clone[V any](in map[int64]V) map[int64]V {
	out := make(map[int64]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memStore) snapshot() snapshot {
	return snapshot{
		seq:         m.seq,
		students:    clone(m.students),
		classes:     clone(m.classes),
		events:      clone(m.events),
		parts:       clone(m.parts),
		portfolio:   clone(m.portfolio),
		classPoints: clone(m.classPoints),
		paper:       clone(m.paper),
	}
}

func (m *memStore) restore(s snapshot) {
	m.seq = s.seq
	m.students = s.students
	m.classes = s.classes
	m.events = s.events
	m.parts = s.parts
	m.portfolio = s.portfolio
	m.classPoints = s.classPoints
	m.paper = s.paper
}

func (m *memStore) WithinTx(ctx context.Context, fn func(rating.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("begin"); err != nil {
		return err
	}
	snap := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	if err := m.err("commit"); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) ClassLeaderboard(ctx context.Context, limit int) ([]models.SchoolClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SchoolClass, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRating != out[j].TotalRating {
			return out[i].TotalRating > out[j].TotalRating
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) StudentLeaderboard(ctx context.Context, limit int) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.err("StudentLeaderboard"); err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		s.ClassName = m.classes[s.ClassID].FullName()
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PersonalRating != out[j].PersonalRating {
			return out[i].PersonalRating > out[j].PersonalRating
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.events {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) ClassPointsHistory(ctx context.Context, classID int64) ([]models.ClassPoints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ClassPoints
	for _, cp := range m.classPoints {
		if cp.ClassID == classID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) StudentIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.students), nil
}

func (m *memStore) ClassIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.classes), nil
}

func (m *memStore) Summary(ctx context.Context) (models.SchoolSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := models.SchoolSummary{Classes: len(m.classes), Events: len(m.events), Students: len(m.students)}
	for _, c := range m.classes {
		sum.TotalSchoolRating += c.TotalRating
	}
	return sum, nil
}

func sortedKeys[V any](in map[int64]V) []int64 {
	out := make([]int64, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// memTx работает под m.mu, захваченным в WithinTx.
type memTx struct {
	m *memStore
}

func (t *memTx) LockStudent(ctx context.Context, id int64) (*models.Student, error) {
	if err := t.m.err("LockStudent"); err != nil {
		return nil, err
	}
	s, ok := t.m.students[id]
	if !ok {
		return nil, nil
	}
	t.m.studentLocks[id]++
	return &s, nil
}

func (t *memTx) LockClass(ctx context.Context, id int64) (*models.SchoolClass, error) {
	if err := t.m.err("LockClass"); err != nil {
		return nil, err
	}
	c, ok := t.m.classes[id]
	if !ok {
		return nil, nil
	}
	t.m.classLocks[id]++
	return &c, nil
}

func (t *memTx) GetClass(ctx context.Context, id int64) (*models.SchoolClass, error) {
	c, ok := t.m.classes[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *memTx) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	e, ok := t.m.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (t *memTx) GetParticipation(ctx context.Context, id int64) (*models.Participation, error) {
	p, ok := t.m.parts[id]
	if !ok {
		return nil, nil
	}
	t.join(&p)
	return &p, nil
}

func (t *memTx) GetPortfolioEntry(ctx context.Context, id int64) (*models.PortfolioEntry, error) {
	e, ok := t.m.portfolio[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (t *memTx) ManagedClass(ctx context.Context, teacherID int64) (*models.SchoolClass, error) {
	for _, id := range sortedKeys(t.m.classes) {
		c := t.m.classes[id]
		if c.ClassTeacherID != nil && *c.ClassTeacherID == teacherID {
			return &c, nil
		}
	}
	return nil, nil
}

func (t *memTx) StudentsByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	var out []models.Student
	for _, id := range ids {
		if s, ok := t.m.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *memTx) ClassStudents(ctx context.Context, classID int64) ([]models.Student, error) {
	var out []models.Student
	for _, id := range sortedKeys(t.m.students) {
		if s := t.m.students[id]; s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *memTx) join(p *models.Participation) {
	ev := t.m.events[p.EventID]
	p.EventName, p.EventLevel, p.EventType = ev.Name, ev.Level, ev.Type
}

func (t *memTx) StudentParticipations(ctx context.Context, studentID int64) ([]models.Participation, error) {
	if err := t.m.err("StudentParticipations"); err != nil {
		return nil, err
	}
	var out []models.Participation
	for _, id := range sortedKeys(t.m.parts) {
		p := t.m.parts[id]
		if p.StudentID == studentID {
			t.join(&p)
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memTx) StudentPortfolio(ctx context.Context, studentID int64) ([]models.PortfolioEntry, error) {
	var out []models.PortfolioEntry
	for _, id := range sortedKeys(t.m.portfolio) {
		if e := t.m.portfolio[id]; e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *memTx) ClassParticipations(ctx context.Context, classID int64) ([]models.Participation, error) {
	var out []models.Participation
	for _, id := range sortedKeys(t.m.parts) {
		p := t.m.parts[id]
		if !p.Approved || t.m.students[p.StudentID].ClassID != classID {
			continue
		}
		t.join(&p)
		out = append(out, p)
	}
	return out, nil
}

func (t *memTx) ClassPoints(ctx context.Context, classID int64) ([]models.ClassPoints, error) {
	var out []models.ClassPoints
	for _, id := range sortedKeys(t.m.classPoints) {
		if cp := t.m.classPoints[id]; cp.ClassID == classID {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (t *memTx) ClassPaperCollections(ctx context.Context, classID int64, since time.Time) ([]models.PaperCollection, error) {
	out := []models.PaperCollection{}
	for _, id := range sortedKeys(t.m.paper) {
		pc := t.m.paper[id]
		if pc.ClassID == classID && !pc.Date.Before(since) {
			pc.StudentName = t.m.students[pc.StudentID].FullName
			out = append(out, pc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (t *memTx) UpsertPaperCollection(ctx context.Context, pc *models.PaperCollection) error {
	if err := t.m.err("UpsertPaperCollection"); err != nil {
		return err
	}
	for id, old := range t.m.paper {
		if old.StudentID == pc.StudentID && old.ClassID == pc.ClassID && old.Date.Equal(pc.Date) {
			pc.ID = id
			t.m.paper[id] = *pc
			return nil
		}
	}
	pc.ID = t.m.nextID()
	t.m.paper[pc.ID] = *pc
	return nil
}

func (t *memTx) DeletePaperCollection(ctx context.Context, studentID, classID int64, date time.Time) error {
	for id, pc := range t.m.paper {
		if pc.StudentID == studentID && pc.ClassID == classID && pc.Date.Equal(date) {
			delete(t.m.paper, id)
		}
	}
	return nil
}

func (t *memTx) InsertParticipation(ctx context.Context, p *models.Participation) error {
	if err := t.m.err("InsertParticipation"); err != nil {
		return err
	}
	p.ID = t.m.nextID()
	t.m.parts[p.ID] = *p
	return nil
}

func (t *memTx) InsertPortfolioEntry(ctx context.Context, e *models.PortfolioEntry) error {
	e.ID = t.m.nextID()
	t.m.portfolio[e.ID] = *e
	return nil
}

func (t *memTx) InsertClassPoints(ctx context.Context, cp *models.ClassPoints) error {
	cp.ID = t.m.nextID()
	t.m.classPoints[cp.ID] = *cp
	return nil
}

func (t *memTx) InsertEvent(ctx context.Context, e *models.Event) error {
	e.ID = t.m.nextID()
	t.m.events[e.ID] = *e
	return nil
}

func (t *memTx) InsertClass(ctx context.Context, c *models.SchoolClass) error {
	c.ID = t.m.nextID()
	t.m.classes[c.ID] = *c
	return nil
}

func (t *memTx) InsertStudent(ctx context.Context, s *models.Student) error {
	if err := t.m.err("InsertStudent"); err != nil {
		return err
	}
	s.ID = t.m.nextID()
	t.m.students[s.ID] = *s
	return nil
}

func (t *memTx) SetParticipationApproval(ctx context.Context, id int64, approved bool, by *int64, at *time.Time) error {
	p := t.m.parts[id]
	p.Approved, p.ApprovedBy, p.ApprovedAt = approved, by, at
	t.m.parts[id] = p
	return nil
}

func (t *memTx) SetPortfolioApproval(ctx context.Context, id int64, approved bool, by *int64, at *time.Time) error {
	e := t.m.portfolio[id]
	e.Approved, e.ApprovedBy, e.ApprovedAt = approved, by, at
	t.m.portfolio[id] = e
	return nil
}

func (t *memTx) SetEventActive(ctx context.Context, id int64, active bool) error {
	e := t.m.events[id]
	e.IsActive = active
	t.m.events[id] = e
	return nil
}

func (t *memTx) SetClassTeacher(ctx context.Context, classID int64, teacherID *int64) error {
	c := t.m.classes[classID]
	c.ClassTeacherID = teacherID
	t.m.classes[classID] = c
	return nil
}

func (t *memTx) SetPersonalRating(ctx context.Context, studentID int64, v int) error {
	if err := t.m.err("SetPersonalRating"); err != nil {
		return err
	}
	s := t.m.students[studentID]
	s.PersonalRating = v
	t.m.students[studentID] = s
	return nil
}

func (t *memTx) SetTotalRating(ctx context.Context, classID int64, v int) error {
	if err := t.m.err("SetTotalRating"); err != nil {
		return err
	}
	c := t.m.classes[classID]
	c.TotalRating = v
	t.m.classes[classID] = c
	return nil
}
