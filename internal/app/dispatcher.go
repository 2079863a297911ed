package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/school-rating/internal/bot/handlers"
	"github.com/Spok95/school-rating/internal/bot/menu"
	"github.com/Spok95/school-rating/internal/ctxutil"
	"github.com/Spok95/school-rating/internal/logging"
	"github.com/Spok95/school-rating/internal/metrics"
	"github.com/Spok95/school-rating/internal/models"
	"github.com/Spok95/school-rating/internal/observability"
	"github.com/Spok95/school-rating/internal/tg"
)

// UserLookup — nil, nil для незарегистрированного пользователя.
type UserLookup func(ctx context.Context, telegramID int64) (*models.User, error)

const handlerTimeout = 30 * time.Second

type Dispatcher struct {
	bot     tg.Sender
	users   UserLookup
	cmds    *handlers.Commands
	limiter *ChatLimiter
	log     *zap.Logger
}

func NewDispatcher(bot tg.Sender, users UserLookup, cmds *handlers.Commands, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{bot: bot, users: users, cmds: cmds, limiter: NewChatLimiter(), log: log}
}

// Run читает обновления до закрытия канала или отмены ctx. Сообщения из
// разных чатов обрабатываются параллельно, из одного чата — по очереди.
func (d *Dispatcher) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			metrics.BotUpdates.Inc()
			if upd.Message == nil || upd.Message.From == nil {
				continue
			}
			go d.HandleMessage(ctx, upd.Message)
		}
	}
}

func (d *Dispatcher) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	unlock := d.limiter.lock(chatID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	ctx = ctxutil.WithRequestID(ctx)
	rid, _ := ctxutil.RequestID(ctx)
	log := d.log.With(zap.String("request_id", rid), zap.Int64("chat_id", chatID))

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerErrors.Inc()
			observability.CaptureErr(fmt.Errorf("panic in handler: %v", r))
			log.Error("handler panic", zap.Any("panic", r))
			d.sendText(chatID, "❌ Внутренняя ошибка. Попробуйте позже.")
		}
	}()

	user, err := d.users(ctx, msg.From.ID)
	if err != nil {
		metrics.HandlerErrors.Inc()
		observability.CaptureErr(err)
		log.Error("user lookup failed", zap.Error(err))
		d.sendText(chatID, "❌ Ошибка при получении данных.")
		return
	}
	if user == nil {
		d.sendText(chatID, fmt.Sprintf(
			"⚠️ Вы не зарегистрированы. Передайте администратору ваш id: %d", msg.From.ID))
		return
	}
	if !user.IsActive {
		rm := tgbotapi.NewMessage(chatID, "🚫 Доступ к боту временно закрыт. Обратитесь к администратору.")
		rm.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		_, _ = tg.Send(d.bot, rm)
		return
	}

	ctx = ctxutil.WithUserID(ctx, user.ID)
	cmd, _ := handlers.SplitCommand(msg.Text)
	ctx = ctxutil.WithOp(ctx, cmd)

	rep, err := d.cmds.Handle(ctx, user, msg.Text)
	if err != nil {
		metrics.HandlerErrors.Inc()
		observability.CaptureWithTags(err, map[string]string{"op": cmd, "request_id": rid})
		log.Warn("command failed", zap.String("cmd", cmd), logging.Actor(user.TelegramID, string(user.Role)), zap.Error(err))
	}
	d.reply(chatID, user.Role, rep)
}

func (d *Dispatcher) reply(chatID int64, role models.Role, rep handlers.Reply) {
	if rep.Document != nil {
		if _, err := tg.SendDocument(d.bot, chatID, rep.Document.Name, rep.Document.Bytes, rep.Text); err != nil {
			d.log.Warn("send document", zap.Error(err))
		}
		return
	}
	m := tgbotapi.NewMessage(chatID, rep.Text)
	if rep.ShowMenu {
		m.ReplyMarkup = menu.GetRoleMenu(role)
	}
	if _, err := tg.Send(d.bot, m); err != nil {
		d.log.Warn("send message", zap.Error(err))
	}
}

func (d *Dispatcher) sendText(chatID int64, text string) {
	_, _ = tg.Send(d.bot, tgbotapi.NewMessage(chatID, text))
}
