package app

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/ctxutil"
	"github.com/Spok95/school-rating/internal/export"
	"github.com/Spok95/school-rating/internal/metrics"
	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/observability"
	"github.com/Spok95/school-rating/internal/rating"
)

// RatingAPI — операции чтения, доступные по HTTP.
type RatingAPI interface {
	ClassLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	StudentLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	StudentStatistics(ctx context.Context, studentID int64) (models.StudentStatistics, error)
	ClassReport(ctx context.Context, classID int64) (models.ClassReport, error)
	ClassPointsHistory(ctx context.Context, classID int64) ([]models.ClassPoints, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]models.Event, error)
	SchoolSummary(ctx context.Context) (models.SchoolSummary, error)
	ClassPaperStats(ctx context.Context, classID int64, since time.Time) (models.PaperStats, error)
	PaperOverview(ctx context.Context, since time.Time) ([]models.PaperStats, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	srv *http.Server
}

func StartHTTP(ctx context.Context, addr string, db Pinger, api RatingAPI, log *zap.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(db, api, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}

func NewMux(db Pinger, api RatingAPI, log *zap.Logger) *http.ServeMux {
	if log == nil {
		log = zap.NewNop()
	}
	h := &apiHandler{api: api, log: log, now: time.Now}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/ratings/classes", h.classLeaderboard)
	mux.HandleFunc("GET /api/ratings/students", h.studentLeaderboard)
	mux.HandleFunc("GET /api/students/{id}/statistics", h.studentStatistics)
	mux.HandleFunc("GET /api/classes/{id}/report", h.classReport)
	mux.HandleFunc("GET /api/classes/{id}/points", h.classPoints)
	mux.HandleFunc("GET /api/classes/{id}/paper", h.classPaper)
	mux.HandleFunc("GET /api/paper", h.paperOverview)
	mux.HandleFunc("GET /api/events", h.events)
	mux.HandleFunc("GET /api/summary", h.summary)
	return mux
}

type apiHandler struct {
	api RatingAPI
	log *zap.Logger
	now func() time.Time
}

func (h *apiHandler) classLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	list, err := h.api.ClassLeaderboard(r.Context(), limit)
	h.respond(w, r, list, err)
}

func (h *apiHandler) studentLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	list, err := h.api.StudentLeaderboard(r.Context(), limit)
	h.respond(w, r, list, err)
}

func (h *apiHandler) studentStatistics(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	st, err := h.api.StudentStatistics(r.Context(), id)
	h.respond(w, r, st, err)
}

func (h *apiHandler) classReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rep, err := h.api.ClassReport(r.Context(), id)
	h.respond(w, r, rep, err)
}

func (h *apiHandler) classPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	hist, err := h.api.ClassPointsHistory(r.Context(), id)
	h.respond(w, r, hist, err)
}

func (h *apiHandler) classPaper(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	since, ok := h.sinceParam(w, r)
	if !ok {
		return
	}
	st, err := h.api.ClassPaperStats(r.Context(), id, since)
	h.respond(w, r, st, err)
}

func (h *apiHandler) paperOverview(w http.ResponseWriter, r *http.Request) {
	since, ok := h.sinceParam(w, r)
	if !ok {
		return
	}
	list, err := h.api.PaperOverview(r.Context(), since)
	h.respond(w, r, list, err)
}

// events: ?all=1 включает скрытые мероприятия.
func (h *apiHandler) events(w http.ResponseWriter, r *http.Request) {
	evs, err := h.api.ListEvents(r.Context(), r.URL.Query().Get("all") != "1")
	if evs == nil {
		evs = []models.Event{}
	}
	h.respond(w, r, evs, err)
}

func (h *apiHandler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.api.SchoolSummary(r.Context())
	h.respond(w, r, sum, err)
}

// sinceParam — ?since=ГГГГ-ММ-ДД, по умолчанию начало текущего учебного года.
func (h *apiHandler) sinceParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("since")
	if s == "" {
		return export.SchoolYearStart(h.now()), true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

func (h *apiHandler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case rating.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case rating.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case rating.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		ctx := ctxutil.WithRequestID(r.Context())
		rid, _ := ctxutil.RequestID(ctx)
		observability.CaptureWithTags(err, map[string]string{"path": r.URL.Path, "request_id": rid})
		h.log.Error("api", zap.String("path", r.URL.Path), zap.String("request_id", rid), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return rating.DefaultLeaderboardLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
