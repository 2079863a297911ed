package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/metrics"
	"github.com/Spok95/school-rating/internal/rating"
)

const ReconcileJob = "reconcile_ratings"

type Reconciler interface {
	ReconcileAll(ctx context.Context) (rating.ReconcileResult, error)
}

// Reconcile пересчитывает все кэшированные рейтинги. Расхождения пишутся
// предупреждением и в gauge schoolrating_reconcile_fixed.
func Reconcile(rc Reconciler, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		res, err := rc.ReconcileAll(ctx)
		if err != nil {
			return err
		}
		reconcileFixed.WithLabelValues(metrics.EntityStudent).Set(float64(res.StudentsFixed))
		reconcileFixed.WithLabelValues(metrics.EntityClass).Set(float64(res.ClassesFixed))
		reconcileLastSuccess.Set(float64(time.Now().Unix()))

		fields := []zap.Field{
			zap.Int("students", res.Students),
			zap.Int("classes", res.Classes),
			zap.Int("students_fixed", res.StudentsFixed),
			zap.Int("classes_fixed", res.ClassesFixed),
		}
		if res.Changed > 0 {
			log.Warn("ratings reconciled with drift", fields...)
			return nil
		}
		log.Info("ratings reconciled", fields...)
		return nil
	}
}
