package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

type fakeAPI struct {
	limit      int
	err        error
	activeOnly bool
	since      time.Time
}

func (f *fakeAPI) ClassLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.limit = limit
	return []models.LeaderboardEntry{{Rank: 1, ID: 3, Name: "6А", Rating: 14}}, f.err
}

func (f *fakeAPI) StudentLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.limit = limit
	return []models.LeaderboardEntry{{Rank: 1, ID: 7, Name: "Иванов Иван", ClassName: "5А", Rating: 9}}, f.err
}

func (f *fakeAPI) StudentStatistics(ctx context.Context, id int64) (models.StudentStatistics, error) {
	if id == 404 {
		return models.StudentStatistics{}, &rating.NotFoundError{Entity: "student", ID: id}
	}
	return models.StudentStatistics{StudentID: id, TotalPoints: 9}, f.err
}

func (f *fakeAPI) ClassReport(ctx context.Context, id int64) (models.ClassReport, error) {
	if f.err != nil {
		return models.ClassReport{}, f.err
	}
	return models.ClassReport{ClassName: "5А", TotalRating: 2, Students: []models.ReportStudent{}}, nil
}

func (f *fakeAPI) ClassPointsHistory(ctx context.Context, id int64) ([]models.ClassPoints, error) {
	if id == 403 {
		return nil, &rating.ForbiddenError{ClassID: id}
	}
	return []models.ClassPoints{{ID: 1, ClassID: id, Points: 10, Reason: "Субботник"}}, f.err
}

func (f *fakeAPI) ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	f.activeOnly = activeOnly
	return nil, f.err
}

func (f *fakeAPI) SchoolSummary(ctx context.Context) (models.SchoolSummary, error) {
	return models.SchoolSummary{TotalSchoolRating: 30, Classes: 3, Students: 5, Events: 3}, f.err
}

func (f *fakeAPI) ClassPaperStats(ctx context.Context, id int64, since time.Time) (models.PaperStats, error) {
	f.since = since
	return models.PaperStats{ClassID: id, ClassName: "5А", TotalYear: 9.5}, f.err
}

func (f *fakeAPI) PaperOverview(ctx context.Context, since time.Time) ([]models.PaperStats, error) {
	f.since = since
	return []models.PaperStats{{ClassID: 1, ClassName: "5А", TotalYear: 9.5}}, f.err
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, NewMux(fakePinger{}, &fakeAPI{}, nil), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = do(t, NewMux(fakePinger{err: errors.New("down")}, &fakeAPI{}, nil), "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLeaderboardEndpoints(t *testing.T) {
	api := &fakeAPI{}
	mux := NewMux(fakePinger{}, api, nil)

	rec := do(t, mux, "/api/ratings/classes")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, rating.DefaultLeaderboardLimit, api.limit)
	var classes []models.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
	require.Equal(t, "6А", classes[0].Name)

	rec = do(t, mux, "/api/ratings/students?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, api.limit)
	require.Contains(t, rec.Body.String(), `"class_name":"5А"`)

	rec = do(t, mux, "/api/ratings/students?limit=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentStatisticsEndpoint(t *testing.T) {
	mux := NewMux(fakePinger{}, &fakeAPI{}, nil)

	rec := do(t, mux, "/api/students/7/statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_points":9`)

	rec = do(t, mux, "/api/students/404/statistics")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "student 404 not found")

	rec = do(t, mux, "/api/students/abc/statistics")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassReportEndpoint_PersistenceError(t *testing.T) {
	api := &fakeAPI{err: &rating.PersistenceError{Op: "class_report", Err: errors.New("conn refused")}}
	rec := do(t, NewMux(fakePinger{}, api, nil), "/api/classes/1/report")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "conn refused")
}

func TestCatalogEndpoints(t *testing.T) {
	api := &fakeAPI{}
	mux := NewMux(fakePinger{}, api, nil)

	rec := do(t, mux, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_school_rating":30`)

	rec = do(t, mux, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	require.True(t, api.activeOnly)

	rec = do(t, mux, "/api/events?all=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, api.activeOnly)

	rec = do(t, mux, "/api/classes/2/points")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"reason":"Субботник"`)

	rec = do(t, mux, "/api/classes/403/points")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPaperEndpoints(t *testing.T) {
	api := &fakeAPI{}
	h := &apiHandler{api: api, log: zap.NewNop(), now: func() time.Time {
		return time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC)
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/classes/{id}/paper", h.classPaper)
	mux.HandleFunc("GET /api/paper", h.paperOverview)

	rec := do(t, mux, "/api/classes/1/paper")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_year":9.5`)
	require.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), api.since)

	rec = do(t, mux, "/api/paper?since=2025-10-01")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), api.since)

	rec = do(t, mux, "/api/paper?since=01.10.2025")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
