package export

import "github.com/Spok95/school-rating/internal/models"

const (
	SheetClasses  = "Классы"
	SheetStudents = "Ученики"
)

// RatingsWorkbook — рейтинг классов и учеников на двух листах.
func RatingsWorkbook(classes, students []models.LeaderboardEntry) (*Workbook, error) {
	cls := SheetSpec{
		Title:  SheetClasses,
		Header: []string{"Место", "Класс", "Рейтинг"},
	}
	for _, e := range classes {
		cls.Rows = append(cls.Rows, []any{e.Rank, e.Name, e.Rating})
	}
	st := SheetSpec{
		Title:  SheetStudents,
		Header: []string{"Место", "ФИО", "Класс", "Рейтинг"},
	}
	for _, e := range students {
		st.Rows = append(st.Rows, []any{e.Rank, e.Name, e.ClassName, e.Rating})
	}
	return NewWorkbook([]SheetSpec{cls, st})
}

// ClassReportWorkbook — по строке на подтверждённое участие; ученики без
// участий выводятся одной строкой с пустым мероприятием.
func ClassReportWorkbook(rep models.ClassReport) (*Workbook, error) {
	sh := SheetSpec{
		Title:  sheetTitle(rep.ClassName),
		Header: []string{"Ученик", "Личный рейтинг", "Мероприятие", "Баллы", "Дата"},
	}
	for _, s := range rep.Students {
		if len(s.Participations) == 0 {
			sh.Rows = append(sh.Rows, []any{s.Name, s.PersonalRating, "", "", ""})
			continue
		}
		for _, p := range s.Participations {
			sh.Rows = append(sh.Rows, []any{s.Name, s.PersonalRating, p.EventName, p.Points, p.Date.Format("02.01.2006")})
		}
	}
	sh.Rows = append(sh.Rows, []any{"Итого по классу", rep.TotalRating})
	return NewWorkbook([]SheetSpec{sh})
}

// sheetTitle — имя листа Excel: не длиннее 31 символа, без запрещённых знаков.
func sheetTitle(name string) string {
	name = invalidSheetRe.ReplaceAllString(cleanName(name), "_")
	r := []rune(name)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
