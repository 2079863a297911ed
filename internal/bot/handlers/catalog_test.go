package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

func TestTeacherScope_AppliedToEveryClassCommand(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	ctx := context.Background()

	for _, text := range []string{
		"/class_points 4",
		"/class_report 4",
		"/paper 4 2025-10-03 12:1.5",
		"/paper_stats 4",
		"/participate 5 all 4",
	} {
		rep, err := c.Handle(ctx, teacher, text)
		require.NoError(t, err, text)
		require.Equal(t, "🚫 Недостаточно прав.", rep.Text, text)
	}

	// учитель без класса не может ничего, что касается классов
	orphan := &models.User{ID: 99, Role: models.RoleTeacher}
	rep, err := c.Handle(ctx, orphan, "/grant 3 1 x")
	require.NoError(t, err)
	require.Equal(t, "🚫 Недостаточно прав.", rep.Text)
	rep, err = c.Handle(ctx, orphan, "/participate 5 all")
	require.NoError(t, err)
	require.Equal(t, "🚫 Недостаточно прав.", rep.Text)
}

func TestParticipate_WholeClass(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	ctx := context.Background()

	rep, err := c.Handle(ctx, teacher, "/participate 5 all")
	require.NoError(t, err)
	require.Equal(t, "✅ Участие в «Спартакиада» записано: 2 уч.", rep.Text)
	require.Equal(t, int64(3), f.bulk.ClassID, "класс учителя")

	_, err = c.Handle(ctx, admin, "/participate 5 ALL 4")
	require.NoError(t, err)
	require.Equal(t, int64(4), f.bulk.ClassID)

	rep, err = c.Handle(ctx, admin, "/participate 5 all")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "⚠️ Формат", "администратор указывает класс")
}

func TestCatalogCommands(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	ctx := context.Background()

	rep, err := c.Handle(ctx, teacher, "/add_event city both 0 x")
	require.NoError(t, err)
	require.Equal(t, "🚫 Недостаточно прав.", rep.Text)

	rep, err = c.Handle(ctx, admin, "/add_event City BOTH 2 Весенний кросс")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "#9 «Весенний кросс»")
	require.Equal(t, models.LevelCity, f.event.Level)
	require.Equal(t, models.EventBoth, f.event.Type)
	require.Equal(t, 2, f.event.ClassPoints)
	require.Equal(t, int64(30), *f.event.CreatedBy)

	rep, err = c.Handle(ctx, admin, "/add_event city both много x")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "⚠️ Формат")

	_, err = c.Handle(ctx, admin, "/event_off 9")
	require.NoError(t, err)
	require.False(t, f.active[9])
	rep, err = c.Handle(ctx, admin, "/event_on 9")
	require.NoError(t, err)
	require.Equal(t, "✅ Мероприятие #9 снова активно.", rep.Text)
	require.True(t, f.active[9])

	rep, err = c.Handle(ctx, admin, "/add_class 6 Б Орлов Пётр; Зайцева Ольга;")
	require.NoError(t, err)
	require.Equal(t, []string{"Орлов Пётр", "Зайцева Ольга"}, f.class.Students)
	require.Contains(t, rep.Text, "Класс 6Б создан, id 4")
	require.Contains(t, rep.Text, "#101 Зайцева Ольга")

	rep, err = c.Handle(ctx, admin, "/summary")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "классов 3, учеников 60, мероприятий 4")
}

func TestAssignTeacher(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	ctx := context.Background()

	rep, err := c.Handle(ctx, admin, "/assign_teacher 4 500")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "Мария Ивановна")
	require.Equal(t, int64(21), *f.teachers[4], "назначается users.id, а не telegram id")

	rep, err = c.Handle(ctx, admin, "/assign_teacher 4 501")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "не зарегистрирован")

	_, err = c.Handle(ctx, admin, "/assign_teacher 4 -")
	require.NoError(t, err)
	require.Nil(t, f.teachers[4])
}

func TestLink(t *testing.T) {
	f := newFake()
	users := newUsers()
	c := NewCommands(f, users, nil, time.UTC)
	ctx := context.Background()

	rep, err := c.Handle(ctx, admin, "/link 700 student 7")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "Иванов Иван (ученик)")
	require.Len(t, users.saved, 1)
	got := users.saved[0]
	require.Equal(t, models.RoleStudent, got.Role)
	require.Equal(t, int64(7), *got.StudentID)
	require.True(t, got.IsActive)

	_, err = c.Handle(ctx, admin, "/link 701 учитель Анна Петровна")
	require.NoError(t, err)
	require.Equal(t, "Анна Петровна", users.byTG[701].Name)
	require.Equal(t, models.RoleTeacher, users.byTG[701].Role)
	require.Nil(t, users.byTG[701].StudentID)

	rep, err = c.Handle(ctx, admin, "/link 702 student 8")
	require.NoError(t, err)
	require.Equal(t, "❌ Не найдено: ученик #8", rep.Text)

	rep, err = c.Handle(ctx, admin, "/link 702 director Кто-то")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "⚠️ Формат")
	require.Len(t, users.saved, 2)

	nodir := NewCommands(f, nil, nil, time.UTC)
	_, err = nodir.Handle(ctx, admin, "/link 703 admin Завуч")
	require.Error(t, err)
}

func TestClassPointsAndReport(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	c.now = func() time.Time { return time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	rep, err := c.Handle(ctx, teacher, "/class_points 3")
	require.NoError(t, err)
	require.Contains(t, rep.Text, "02.10.2025 -2 — Опоздания")

	rep, err = c.Handle(ctx, teacher, "/class_report 3")
	require.NoError(t, err)
	require.NotNil(t, rep.Document)
	require.Equal(t, "Отчёт по классу — 6А — 2025–2026.xlsx", rep.Document.Name)
	require.NotEmpty(t, rep.Document.Bytes)
}

func TestPaperCommands(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	c.now = func() time.Time { return time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	rep, err := c.Handle(ctx, teacher, "/paper 3 2026-02-09 12:4,5 13:0 14:1.25")
	require.NoError(t, err)
	require.Equal(t, "♻️ Сбор за 09.02.2026 сохранён: 2 уч., 5.75 кг.", rep.Text)
	require.Equal(t, int64(20), f.paperIn.CreatedBy)
	require.Equal(t, 4.5, f.paperIn.Entries[0].Kilograms)
	require.Len(t, f.paperIn.Entries, 3)

	for _, bad := range []string{"/paper 3 09.02.2026 12:1", "/paper 3 2026-02-09 12", "/paper 3 2026-02-09"} {
		rep, err = c.Handle(ctx, teacher, bad)
		require.NoError(t, err)
		require.Contains(t, rep.Text, "⚠️ Формат", bad)
	}

	rep, err = c.Handle(ctx, teacher, "/paper_stats 3")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), f.since, "с начала учебного года")
	require.Contains(t, rep.Text, "Всего за учебный год: 9.50 кг")
	require.Contains(t, rep.Text, "Последний сбор 18.10.2025: 4.75 кг")
	require.Contains(t, rep.Text, "1. Алексеева Ирина — 5.50 кг")
	require.NotContains(t, rep.Text, "Васильев", "не сдававшие не попадают в топ")

	rep, err = c.Handle(ctx, admin, "/paper_export")
	require.NoError(t, err)
	require.Equal(t, "Макулатура — 2025–2026.xlsx", rep.Document.Name)

	rep, err = c.Handle(ctx, student, "/paper 3 2026-02-09 12:1")
	require.NoError(t, err)
	require.Equal(t, "🚫 Недостаточно прав.", rep.Text)

	require.Contains(t, FormatPaperStats(models.PaperStats{ClassName: "6Б"}), "Сборов пока не было")
}

func TestErrorReply_Forbidden(t *testing.T) {
	f := newFake()
	c := NewCommands(f, newUsers(), nil, time.UTC)
	f.err = &rating.ForbiddenError{ClassID: 4}
	rep, err := c.Handle(context.Background(), admin, "/grant 4 1 x")
	require.NoError(t, err)
	require.Equal(t, "🚫 Недостаточно прав.", rep.Text)
}
