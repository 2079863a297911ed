package models

import "strings"

// Role — закрытый набор ролей. Проверки прав делает слой авторизации через Can.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ParseRole принимает "student|teacher|admin" и русские "ученик|учитель|админ".
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "ученик":
		return RoleStudent, true
	case "teacher", "учитель":
		return RoleTeacher, true
	case "admin", "админ":
		return RoleAdmin, true
	}
	return "", false
}

type Capability int

const (
	CapViewOwnRating Capability = iota
	CapSubmitPortfolio
	CapRequestParticipation
	CapRecordParticipation
	CapApprove
	CapGrantClassPoints
	CapViewAnyStatistics
	CapCollectPaper
	CapExport
	CapManageCatalog
)

var capabilities = map[Role]map[Capability]bool{
	RoleStudent: {
		CapViewOwnRating:        true,
		CapSubmitPortfolio:      true,
		CapRequestParticipation: true,
	},
	// учитель работает только со своим классом, см. rating.WithClassScope
	RoleTeacher: {
		CapRecordParticipation: true,
		CapApprove:             true,
		CapGrantClassPoints:    true,
		CapViewAnyStatistics:   true,
		CapCollectPaper:        true,
	},
	RoleAdmin: {
		CapRecordParticipation: true,
		CapApprove:             true,
		CapGrantClassPoints:    true,
		CapViewAnyStatistics:   true,
		CapCollectPaper:        true,
		CapExport:              true,
		CapManageCatalog:       true,
	},
}

func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// User — учётная запись бота. У ученика заполнен StudentID. Класс учителя
// хранится только в school_classes.class_teacher_id.
type User struct {
	ID         int64
	TelegramID int64
	Name       string
	Role       Role
	StudentID  *int64
	IsActive   bool
}
