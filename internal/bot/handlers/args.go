package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/rating"
)

type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }

func usage(s string) error { return &usageError{usage: s} }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseBulkEntries разбирает "12:1 13 14:2" — id ученика и необязательное место.
func ParseBulkEntries(args []string) ([]rating.BulkEntry, bool) {
	if len(args) == 0 {
		return nil, false
	}
	out := make([]rating.BulkEntry, 0, len(args))
	for _, a := range args {
		idStr, placeStr, hasPlace := strings.Cut(a, ":")
		id, ok := parseID(idStr)
		if !ok {
			return nil, false
		}
		e := rating.BulkEntry{StudentID: id}
		if hasPlace {
			p, err := strconv.Atoi(placeStr)
			if err != nil {
				return nil, false
			}
			e.Place = &p
		}
		out = append(out, e)
	}
	return out, true
}

// ParseOptionalPlace — пусто означает участие без места.
func ParseOptionalPlace(args []string) (*int, bool) {
	switch len(args) {
	case 0:
		return nil, true
	case 1:
		p, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, false
		}
		return &p, true
	}
	return nil, false
}

// ParseGrant — "<class_id> <points> <reason...>".
func ParseGrant(args []string) (classID int64, points int, reason string, ok bool) {
	if len(args) < 3 {
		return 0, 0, "", false
	}
	classID, ok = parseID(args[0])
	if !ok {
		return 0, 0, "", false
	}
	points, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, "", false
	}
	return classID, points, strings.Join(args[2:], " "), true
}

// ParsePortfolio — "<type> <points> <title...>".
func ParsePortfolio(args []string) (entryType string, points int, title string, ok bool) {
	if len(args) < 3 {
		return "", 0, "", false
	}
	entryType = strings.ToLower(args[0])
	if _, known := models.PortfolioTypes[entryType]; !known {
		return "", 0, "", false
	}
	points, err := strconv.Atoi(args[1])
	if err != nil || points < 0 {
		return "", 0, "", false
	}
	return entryType, points, strings.Join(args[2:], " "), true
}

// ParseAddEvent — "<level> <type> <class_points> <name...>". Уровень и тип
// проверяет сервис.
func ParseAddEvent(args []string) (rating.EventInput, bool) {
	if len(args) < 4 {
		return rating.EventInput{}, false
	}
	points, err := strconv.Atoi(args[2])
	if err != nil || points < 0 {
		return rating.EventInput{}, false
	}
	return rating.EventInput{
		Level:       models.EventLevel(strings.ToLower(args[0])),
		Type:        models.EventType(strings.ToLower(args[1])),
		ClassPoints: points,
		Name:        strings.Join(args[3:], " "),
	}, true
}

// ParseAddClass — "<grade> <name> [ФИО; ФИО; ...]".
func ParseAddClass(args []string) (rating.ClassInput, bool) {
	if len(args) < 2 {
		return rating.ClassInput{}, false
	}
	in := rating.ClassInput{Grade: args[0], Name: args[1]}
	if rest := strings.Join(args[2:], " "); rest != "" {
		for _, name := range strings.Split(rest, ";") {
			if name = strings.TrimSpace(name); name != "" {
				in.Students = append(in.Students, name)
			}
		}
	}
	return in, true
}

// ParsePaper — "<class_id> <YYYY-MM-DD> <student_id>:<кг> ...". Дробная часть
// через точку или запятую.
func ParsePaper(args []string, loc *time.Location) (rating.PaperInput, bool) {
	if len(args) < 3 {
		return rating.PaperInput{}, false
	}
	classID, ok := parseID(args[0])
	if !ok {
		return rating.PaperInput{}, false
	}
	date, err := time.ParseInLocation("2006-01-02", args[1], loc)
	if err != nil {
		return rating.PaperInput{}, false
	}
	in := rating.PaperInput{ClassID: classID, Date: date}
	for _, a := range args[2:] {
		idStr, kgStr, found := strings.Cut(a, ":")
		id, ok := parseID(idStr)
		if !found || !ok {
			return rating.PaperInput{}, false
		}
		kg, err := strconv.ParseFloat(strings.Replace(kgStr, ",", ".", 1), 64)
		if err != nil {
			return rating.PaperInput{}, false
		}
		in.Entries = append(in.Entries, rating.PaperEntry{StudentID: id, Kilograms: kg})
	}
	return in, true
}

// ParseLink — "<telegram_id> student <student_id>" или "<telegram_id> teacher|admin <ФИО...>".
func ParseLink(args []string) (telegramID int64, role models.Role, rest []string, ok bool) {
	if len(args) < 3 {
		return 0, "", nil, false
	}
	telegramID, ok = parseID(args[0])
	if !ok {
		return 0, "", nil, false
	}
	role, ok = models.ParseRole(args[1])
	if !ok {
		return 0, "", nil, false
	}
	if role == models.RoleStudent && len(args) != 3 {
		return 0, "", nil, false
	}
	return telegramID, role, args[2:], true
}
