package rating

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

type scopeKey struct{}

// WithClassScope ограничивает операции сервиса одним классом. classID 0
// означает «класса нет»: любая операция над классом или учеником запрещена.
func WithClassScope(ctx context.Context, classID int64) context.Context {
	return context.WithValue(ctx, scopeKey{}, classID)
}

// ClassScope — класс, которым ограничен ctx; ok=false, если ограничения нет.
func ClassScope(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(scopeKey{}).(int64)
	return id, ok
}

// ForbiddenError — операция затрагивает класс вне области вызывающего.
type ForbiddenError struct {
	ClassID int64
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("class %d is out of scope", e.ClassID)
}

func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

func checkScope(ctx context.Context, classID int64) error {
	scope, ok := ClassScope(ctx)
	if !ok || (scope != 0 && scope == classID) {
		return nil
	}
	return &ForbiddenError{ClassID: classID}
}

// checkStudentScope читает ученика без блокировки: класс ученика сервис не меняет.
func checkStudentScope(ctx context.Context, tx Tx, studentID int64) error {
	if _, ok := ClassScope(ctx); !ok {
		return nil
	}
	sts, err := tx.StudentsByIDs(ctx, []int64{studentID})
	if err != nil {
		return err
	}
	if len(sts) == 0 {
		return notFound("student", studentID)
	}
	return checkScope(ctx, sts[0].ClassID)
}
