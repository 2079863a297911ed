package app

import (
	"sync"

	"github.com/Spok95/school-rating/internal/metrics"
)

// ChatLimiter выполняет команды одного чата по очереди: две записи участия
// или сбора макулатуры от одного учителя не пересекаются, и ответы приходят
// в порядке сообщений. Запись чата удаляется, когда очередь пуста.
type ChatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*chatSlot
}

type chatSlot struct {
	mu      sync.Mutex
	waiters int // держатель + ожидающие, под ChatLimiter.mu
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byID: make(map[int64]*chatSlot)}
}

func (l *ChatLimiter) lock(chatID int64) func() {
	l.mu.Lock()
	s, ok := l.byID[chatID]
	if !ok {
		s = &chatSlot{}
		l.byID[chatID] = s
	}
	s.waiters++
	if s.waiters > 1 {
		metrics.ChatQueueWaits.Inc()
	}
	l.mu.Unlock()

	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		l.mu.Lock()
		s.waiters--
		if s.waiters == 0 {
			delete(l.byID, chatID)
		}
		l.mu.Unlock()
	}
}

// active — число чатов, у которых сейчас есть команда в работе или в очереди.
func (l *ChatLimiter) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
