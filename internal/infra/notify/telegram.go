package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ocordel/chantier-api/internal/domain/alert"
)

// Telegram pushes overrun alerts to the conducteur/admin chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) AlertRaised(_ context.Context, a alert.Alert) error {
	text := fmt.Sprintf("⚠️ Chantier %d — %s\n%s", a.SiteID, a.AlertType, a.Message)
	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.api.Send(msg)
	return err
}
