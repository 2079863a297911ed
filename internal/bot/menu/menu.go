package menu

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-rating/internal/models"
)

// Подписи кнопок; обработчики принимают их наравне с командами.
const (
	BtnMyRating    = "📊 Мой рейтинг"
	BtnTopClasses  = "🏆 Рейтинг классов"
	BtnTopStudents = "🏅 Рейтинг учеников"
	BtnEvents      = "📅 Мероприятия"
	BtnExport      = "📥 Экспорт рейтинга"
)

// GetRoleMenu возвращает меню в зависимости от роли пользователя
func GetRoleMenu(role models.Role) tgbotapi.ReplyKeyboardMarkup {
	switch role {
	case models.RoleStudent:
		return studentMenu()
	case models.RoleTeacher:
		return teacherMenu()
	case models.RoleAdmin:
		return adminMenu()
	default:
		return tgbotapi.NewReplyKeyboard() // пустое меню
	}
}

func studentMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnMyRating),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnTopClasses),
			tgbotapi.NewKeyboardButton(BtnTopStudents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnEvents),
		),
	)
}

func teacherMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnTopClasses),
			tgbotapi.NewKeyboardButton(BtnTopStudents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnEvents),
		),
	)
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnTopClasses),
			tgbotapi.NewKeyboardButton(BtnTopStudents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnEvents),
			tgbotapi.NewKeyboardButton(BtnExport),
		),
	)
}
