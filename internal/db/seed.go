package db

import (
	"context"
	"database/sql"
	"fmt"
)

type demoEvent struct {
	name, description, level, eventType string
	classPoints                         int
}

var (
	demoClasses = [][2]string{{"5", "А"}, {"5", "Б"}, {"6", "А"}}

	// ученик → индекс класса в demoClasses
	demoStudents = []struct {
		name  string
		class int
	}{
		{"Иванов Иван", 0},
		{"Петрова Мария", 0},
		{"Сидоров Алексей", 1},
		{"Козлова Анна", 1},
		{"Смирнов Дмитрий", 2},
	}

	demoEvents = []demoEvent{
		{"Школьная олимпиада по математике", "Ежегодная олимпиада для учеников 5-11 классов", "school", "student", 0},
		{"Городской конкурс чтецов", "Конкурс выразительного чтения", "city", "both", 10},
		{"Республиканская спартакиада", "Спортивные соревнования между школами", "republic", "class", 20},
	}
)

// SeedDemo наполняет пустую базу демонстрационными классами, учениками и мероприятиями.
// Если классы уже есть — ничего не делает. Возвращает true, если данные добавлены.
func SeedDemo(ctx context.Context, database *sql.DB) (bool, error) {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM school_classes`).Scan(&count); err != nil {
		return false, fmt.Errorf("ошибка при проверке таблицы school_classes: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	classIDs := make([]int64, len(demoClasses))
	for i, c := range demoClasses {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO school_classes (grade, name) VALUES ($1, $2) RETURNING id`, c[0], c[1],
		).Scan(&classIDs[i]); err != nil {
			return false, fmt.Errorf("insert class %s%s: %w", c[0], c[1], err)
		}
	}
	for _, s := range demoStudents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO students (full_name, class_id) VALUES ($1, $2)`, s.name, classIDs[s.class],
		); err != nil {
			return false, fmt.Errorf("insert student %s: %w", s.name, err)
		}
	}
	for _, e := range demoEvents {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (name, description, level, event_type, class_points)
			VALUES ($1, $2, $3, $4, $5)`,
			e.name, e.description, e.level, e.eventType, e.classPoints,
		); err != nil {
			return false, fmt.Errorf("insert event %s: %w", e.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
