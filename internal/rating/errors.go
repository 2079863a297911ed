package rating

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError — запрошенной сущности нет; это ошибка вызывающего.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PersistenceError — сбой хранилища. Транзакция откатывается, кэшированные
// рейтинги остаются прежними.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// wrap оставляет доменные ошибки как есть, остальное считает сбоем хранилища.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsPersistence(err) || IsValidation(err) || IsForbidden(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: errors.WithStack(err)}
}

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}
