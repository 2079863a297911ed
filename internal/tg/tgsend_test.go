package tg

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestIsSystemErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad_request", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, false},
		{"forbidden", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}, false},
		{"flood", &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}, true},
		{"bad_gateway", &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}, true},
		{"network", errors.New("dial tcp: i/o timeout"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isSystemErr(tc.err); got != tc.want {
				t.Fatalf("isSystemErr(%v): ожидали %v, получили %v", tc.err, tc.want, got)
			}
		})
	}
}
