//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Spok95/school-rating/internal/db"
	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
	"github.com/Spok95/school-rating/internal/testutil/testdb"
)

func startDB(t *testing.T) *sql.DB {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h.DB
}

func mustAdmin(t *testing.T, database *sql.DB) int64 {
	t.Helper()
	u := &models.User{TelegramID: 1001, Name: "Админ", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, db.UpsertUser(context.Background(), database, u))
	return u.ID
}

func mustEvent(t *testing.T, svc *rating.Service, name string, typ models.EventType) int64 {
	t.Helper()
	ev, err := svc.CreateEvent(context.Background(), rating.EventInput{
		Name: name, Level: models.LevelCity, Type: typ,
	})
	require.NoError(t, err)
	return ev.ID
}

func TestRecompute_Postgres(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)
	adminID := mustAdmin(t, database)
	svc := rating.NewService(db.NewStore(database), nil)

	cls, students, err := svc.CreateClass(ctx, rating.ClassInput{
		Grade: "7", Name: "В", Students: []string{"Орлов Пётр", "Зайцева Ольга"},
	})
	require.NoError(t, err)
	require.Len(t, students, 2)
	st := students[0]

	ev1 := mustEvent(t, svc, "Олимпиада", models.EventBoth)
	ev2 := mustEvent(t, svc, "Эстафета", models.EventClass)

	first := 1
	_, err = svc.RecordParticipation(ctx, rating.ParticipationInput{
		EventID: ev1, StudentID: st.ID, Place: &first, Approved: true, ApprovedBy: &adminID,
	})
	require.NoError(t, err)
	_, err = svc.RecordParticipations(ctx, rating.BulkParticipationInput{
		EventID:    ev2,
		Entries:    []rating.BulkEntry{{StudentID: st.ID}, {StudentID: students[1].ID}},
		Approved:   true,
		ApprovedBy: &adminID,
	})
	require.NoError(t, err)

	entry, err := svc.SubmitPortfolioEntry(ctx, rating.PortfolioInput{
		StudentID: st.ID, Title: "Проект", EntryType: "project",
		DateAchieved: time.Now(), PointsEarned: 3,
	})
	require.NoError(t, err)
	require.NoError(t, svc.ApprovePortfolioEntry(ctx, entry.ID, adminID))

	stats, err := svc.StudentStatistics(ctx, st.ID)
	require.NoError(t, err)
	require.Equal(t, 9, stats.TotalPoints)
	require.Equal(t, 2, stats.TotalEvents)

	_, err = svc.GrantClassPoints(ctx, rating.ClassPointsInput{
		ClassID: cls.ID, Points: 10, Reason: "Субботник", GrantedBy: adminID,
	})
	require.NoError(t, err)

	classes, err := svc.ClassLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, 14, classes[0].Rating)

	res, err := svc.ReconcileAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.Changed)
	require.Equal(t, 2, res.Students)
	require.Equal(t, 1, res.Classes)

	_, err = svc.RecomputePersonalRating(ctx, 999999)
	require.True(t, rating.IsNotFound(err))
}

func TestGrantClassPoints_Parallel(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)
	database.SetMaxOpenConns(20)
	adminID := mustAdmin(t, database)
	svc := rating.NewService(db.NewStore(database), nil)

	a, _, err := svc.CreateClass(ctx, rating.ClassInput{Grade: "9", Name: "А"})
	require.NoError(t, err)
	b, _, err := svc.CreateClass(ctx, rating.ClassInput{Grade: "9", Name: "Б"})
	require.NoError(t, err)

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.GrantClassPoints(ctx, rating.ClassPointsInput{ClassID: a.ID, Points: 10, Reason: "+", GrantedBy: adminID})
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.GrantClassPoints(ctx, rating.ClassPointsInput{ClassID: b.ID, Points: 10, Reason: "+", GrantedBy: adminID})
		}()
	}
	wg.Wait()

	ta, err := svc.RecomputeTotalRating(ctx, a.ID)
	require.NoError(t, err)
	tb, err := svc.RecomputeTotalRating(ctx, b.ID)
	require.NoError(t, err)
	if ta != 500 || tb != 500 {
		t.Fatalf("ожидали по 500 баллов, получили %d и %d", ta, tb)
	}

	var cached int
	require.NoError(t, database.QueryRow(`SELECT total_rating FROM school_classes WHERE id = $1`, a.ID).Scan(&cached))
	require.Equal(t, 500, cached)
}

func TestSeedDemo_Once(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)

	seeded, err := db.SeedDemo(ctx, database)
	require.NoError(t, err)
	require.True(t, seeded)

	seeded, err = db.SeedDemo(ctx, database)
	require.NoError(t, err)
	require.False(t, seeded)

	sum, err := db.NewStore(database).Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, sum.Classes)
	require.Equal(t, 5, sum.Students)
	require.Equal(t, 3, sum.Events)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)

	u, err := db.GetUserByTelegramID(ctx, database, 42)
	require.NoError(t, err)
	require.Nil(t, u)

	require.NoError(t, db.EnsureAdmins(ctx, database, []int64{42}))
	u, err = db.GetUserByTelegramID(ctx, database, 42)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, models.RoleAdmin, u.Role)
	require.True(t, u.IsActive)

	u.Name = "Директор"
	u.IsActive = false
	require.NoError(t, db.UpsertUser(ctx, database, u))
	require.NoError(t, db.EnsureAdmins(ctx, database, []int64{42}))

	got, err := db.GetUserByTelegramID(ctx, database, 42)
	require.NoError(t, err)
	require.Equal(t, "Директор", got.Name)
	require.False(t, got.IsActive)
	require.Equal(t, u.ID, got.ID)
}

func TestPaperAndTeacherScope_Postgres(t *testing.T) {
	ctx := context.Background()
	database := startDB(t)
	adminID := mustAdmin(t, database)
	svc := rating.NewService(db.NewStore(database), nil)

	teacher := &models.User{TelegramID: 2002, Name: "Петрова А.В.", Role: models.RoleTeacher, IsActive: true}
	require.NoError(t, db.Users{DB: database}.Upsert(ctx, teacher))

	a, students, err := svc.CreateClass(ctx, rating.ClassInput{Grade: "5", Name: "А", Students: []string{"Иванов Иван", "Смирнова Анна"}})
	require.NoError(t, err)
	b, _, err := svc.CreateClass(ctx, rating.ClassInput{Grade: "5", Name: "Б"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignTeacher(ctx, a.ID, &teacher.ID))
	require.NoError(t, svc.AssignTeacher(ctx, b.ID, &teacher.ID))
	managed, err := svc.ManagedClass(ctx, teacher.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, managed.ID)

	scoped := rating.WithClassScope(ctx, b.ID)
	_, err = svc.GrantClassPoints(scoped, rating.ClassPointsInput{ClassID: a.ID, Points: 5, Reason: "+", GrantedBy: teacher.ID})
	require.True(t, rating.IsForbidden(err))

	day := time.Date(2025, time.October, 7, 0, 0, 0, 0, time.UTC)
	save := func(kg float64) {
		t.Helper()
		_, err := svc.SavePaperCollection(ctx, rating.PaperInput{
			ClassID: a.ID, Date: day, CreatedBy: adminID,
			Entries: []rating.PaperEntry{{StudentID: students[0].ID, Kilograms: kg}, {StudentID: students[1].ID, Kilograms: 2}},
		})
		require.NoError(t, err)
	}
	save(3.5)
	save(4.25)

	since := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	st, err := svc.ClassPaperStats(ctx, a.ID, since)
	require.NoError(t, err)
	require.InDelta(t, 6.25, st.TotalYear, 0.001)
	require.Equal(t, 1, st.CollectionDays)

	save(0)
	st, err = svc.ClassPaperStats(ctx, a.ID, since)
	require.NoError(t, err)
	require.InDelta(t, 2.0, st.TotalYear, 0.001)
}
