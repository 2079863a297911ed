package ctxutil

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type key int

const (
	keyUserID key = iota
	keyOpName
	keyRequestID
)

// WithUserID /UserID — внутренний id пользователя, выполняющего действие.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyUserID).(int64)
	return id, ok
}

// WithOp /Op — имя операции для логов.
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyOpName).(string)
	return s, ok
}

// WithRequestID кладёт новый id запроса, если его ещё нет.
func WithRequestID(ctx context.Context) context.Context {
	if _, ok := RequestID(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, keyRequestID, uuid.NewString())
}

func RequestID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyRequestID).(string)
	return s, ok
}

var DefaultDBTimeout = 5 * time.Second

// WithDBTimeout — стандартный таймаут для БД; если у родителя осталось меньше, берём остаток.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok && time.Until(dl) < DefaultDBTimeout {
		return context.WithDeadline(parent, dl)
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
