package logging

import "go.uber.org/zap"

// Поля с одинаковыми ключами во всех логах рейтинга: по ним ищем в агрегаторе.

func StudentID(id int64) zap.Field { return zap.Int64("student_id", id) }

// ClassID пропускает нулевой id, чтобы не засорять лог пустым классом.
func ClassID(id int64) zap.Field {
	if id == 0 {
		return zap.Skip()
	}
	return zap.Int64("class_id", id)
}

func EventID(id int64) zap.Field { return zap.Int64("event_id", id) }

func Op(op string) zap.Field { return zap.String("op", op) }

// Actor — кто выполнил команду: telegram id и роль.
func Actor(telegramID int64, role string) zap.Field {
	return zap.Dict("actor", zap.Int64("telegram_id", telegramID), zap.String("role", role))
}
