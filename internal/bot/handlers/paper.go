package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/school-rating/internal/export"
	"github.com/Spok95/school-rating/internal/models"
)

const usagePaper = "/paper <id класса> <ГГГГ-ММ-ДД> <id ученика>:<кг> ...; 0 кг удаляет запись"

// paper записывает сбор макулатуры за день.
func (c *Commands) paper(ctx context.Context, u *models.User, args []string) (Reply, error) {
	in, ok := ParsePaper(args, c.loc)
	if !ok {
		return Reply{}, usage(usagePaper)
	}
	in.CreatedBy = u.ID
	saved, err := c.svc.SavePaperCollection(ctx, in)
	if err != nil {
		return Reply{}, err
	}
	var kg float64
	for _, pc := range saved {
		kg += pc.Kilograms
	}
	return Reply{Text: fmt.Sprintf("♻️ Сбор за %s сохранён: %d уч., %.2f кг.",
		in.Date.Format("02.01.2006"), len(saved), kg)}, nil
}

func (c *Commands) paperStats(ctx context.Context, _ *models.User, args []string) (Reply, error) {
	id, err := singleID(args, "/paper_stats <id класса>")
	if err != nil {
		return Reply{}, err
	}
	since := export.SchoolYearStart(c.now().In(c.loc))
	st, err := c.svc.ClassPaperStats(ctx, id, since)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: FormatPaperStats(st)}, nil
}

// paperExport: учитель получает только свой класс, администратор — все.
func (c *Commands) paperExport(ctx context.Context, _ *models.User, _ []string) (Reply, error) {
	now := c.now().In(c.loc)
	stats, err := c.svc.PaperOverview(ctx, export.SchoolYearStart(now))
	if err != nil {
		return Reply{}, err
	}
	wb, err := export.PaperWorkbook(stats)
	if err != nil {
		return Reply{}, err
	}
	defer func() { _ = wb.Close() }()
	b, err := wb.Bytes()
	if err != nil {
		return Reply{}, err
	}
	label := export.CurrentSchoolYearLabel(now)
	return Reply{
		Text:     "📥 Макулатура за " + label,
		Document: &Document{Name: export.BuildPaperFilename(label), Bytes: b},
	}, nil
}

// FormatPaperStats — сводка сбора класса и первые десять учеников.
func FormatPaperStats(st models.PaperStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "♻️ Макулатура, %s\n", st.ClassName)
	fmt.Fprintf(&b, "Всего за учебный год: %.2f кг\n", st.TotalYear)
	if st.LastDate == nil {
		b.WriteString("Сборов пока не было.")
		return b.String()
	}
	fmt.Fprintf(&b, "Последний сбор %s: %.2f кг\n", st.LastDate.Format("02.01.2006"), st.LastTotal)
	fmt.Fprintf(&b, "Дней сбора: %d, в среднем %.2f кг\n\n", st.CollectionDays, st.AvgPerDay)
	for i, s := range st.Students {
		if i == topLimit || s.Kilograms == 0 {
			break
		}
		fmt.Fprintf(&b, "%d. %s — %.2f кг\n", i+1, s.Name, s.Kilograms)
	}
	return b.String()
}
