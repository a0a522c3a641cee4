package notifier

import (
	"context"

	"StockRadar/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler is called when a user command is received. A non-empty
// return value is sent back as the reply.
type CommandHandler func(command string) string

// ListenForCommands long-polls for bot commands sent from the configured
// chat. Blocks until ctx is cancelled.
func (t *TelegramNotifier) ListenForCommands(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			logger.Info("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.dispatch(update, handler)
		}
	}
}

func (t *TelegramNotifier) dispatch(update tgbotapi.Update, handler CommandHandler) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	if msg.Chat == nil || msg.Chat.ID != t.chatID {
		logger.Warn("ignoring command /%s from chat %v", msg.Command(), msg.Chat)
		return
	}

	command := "/" + msg.Command()
	logger.Info("received command: %s", command)
	if reply := handler(command); reply != "" {
		if err := t.sendTo(msg.Chat.ID, reply); err != nil {
			logger.Error("send reply: %v", err)
		}
	}
}
