package export

import (
	"fmt"

	"github.com/Spok95/school-rating/internal/models"
)

const SheetPaper = "Макулатура"

// PaperWorkbook — сводка сбора макулатуры по классам и по листу на каждый класс
// с итогами учеников.
func PaperWorkbook(stats []models.PaperStats) (*Workbook, error) {
	sum := SheetSpec{
		Title:  SheetPaper,
		Header: []string{"Класс", "Всего, кг", "Последний сбор", "Сдано в последний сбор, кг", "Дней сбора", "В среднем за день, кг"},
	}
	sheets := []SheetSpec{sum}
	seen := map[string]bool{SheetPaper: true}
	for _, st := range stats {
		last := ""
		if st.LastDate != nil {
			last = st.LastDate.Format("02.01.2006")
		}
		sheets[0].Rows = append(sheets[0].Rows, []any{st.ClassName, st.TotalYear, last, st.LastTotal, st.CollectionDays, st.AvgPerDay})

		title := sheetTitle(st.ClassName)
		if seen[title] {
			title = sheetTitle(fmt.Sprintf("%s #%d", st.ClassName, st.ClassID))
		}
		seen[title] = true
		cls := SheetSpec{Title: title, Header: []string{"Ученик", "Сдано, кг"}}
		for _, s := range st.Students {
			cls.Rows = append(cls.Rows, []any{s.Name, s.Kilograms})
		}
		cls.Rows = append(cls.Rows, []any{"Итого по классу", st.TotalYear})
		sheets = append(sheets, cls)
	}
	return NewWorkbook(sheets)
}

// BuildPaperFilename — "Макулатура — 2025–2026.xlsx".
func BuildPaperFilename(yearLabel string) string {
	return sanitizeFileName(fmt.Sprintf("Макулатура — %s.xlsx", cleanName(yearLabel)))
}
