package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/observability"
)

type Job func(ctx context.Context) error

// Runner — планировщик фоновых задач поверх gocron. Задачи с одним именем
// не пересекаются: следующий запуск ждёт окончания предыдущего.
type Runner struct {
	ctx   context.Context
	sched gocron.Scheduler
	log   *zap.Logger
}

func New(ctx context.Context, log *zap.Logger, loc *time.Location) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	return &Runner{ctx: ctx, sched: s, log: log}, nil
}

func (r *Runner) Every(interval time.Duration, name string, fn Job) error {
	return r.add(gocron.DurationJob(interval), name, fn)
}

// Cron — стандартное пятипольное выражение, например "0 3 * * *".
func (r *Runner) Cron(expr, name string, fn Job) error {
	return r.add(gocron.CronJob(expr, false), name, fn)
}

func (r *Runner) add(def gocron.JobDefinition, name string, fn Job) error {
	_, err := r.sched.NewJob(def,
		gocron.NewTask(func() { r.run(name, fn) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	return nil
}

func (r *Runner) Start() { r.sched.Start() }

func (r *Runner) Stop() error { return r.sched.Shutdown() }

func (r *Runner) run(name string, fn Job) {
	if r.ctx.Err() != nil {
		return
	}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic in job %s: %v", name, rec)
			jobErrors.WithLabelValues(name).Inc()
			observability.CaptureErr(err)
			r.log.Error("job panic", zap.String("job", name), zap.Any("panic", rec))
		}
		jobRuns.WithLabelValues(name).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err := fn(r.ctx); err != nil {
		jobErrors.WithLabelValues(name).Inc()
		observability.CaptureErr(err)
		r.log.Warn("job failed", zap.String("job", name), zap.Error(err))
	}
}
