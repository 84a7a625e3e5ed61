package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// commandArg returns everything after the command token, trimmed
func commandArg(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// commandToken returns the command itself, lowercased and without a
// @botname suffix
func commandToken(text string) string {
	token := strings.ToLower(strings.SplitN(strings.TrimSpace(text), " ", 2)[0])
	if i := strings.Index(token, "@"); i > 0 {
		token = token[:i]
	}
	return token
}

// reply answers the message that triggered a handler
func (b *Bot) reply(ctx context.Context, msg *models.Message, text string) {
	if _, err := b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, text, nil); err != nil {
		b.logger.Error("failed to reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

// respond answers within a wrapped request
func (b *Bot) respond(ctx context.Context, req *request, text string) {
	if _, err := b.sendMessage(ctx, req.chatID, req.threadID, text, nil); err != nil {
		b.logger.Error("failed to respond", "chat_id", req.chatID, "error", err)
	}
}

// sendMessage sends a message, optionally into a topic thread
func (b *Bot) sendMessage(ctx context.Context, chatID int64, threadID int, text string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if threadID != 0 {
		params.MessageThreadID = threadID
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	return b.bot.SendMessage(ctx, params)
}

// editMessage rewrites an existing message in place
func (b *Bot) editMessage(ctx context.Context, chatID int64, msgID int, text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: msgID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := b.bot.EditMessageText(ctx, params)
	return err
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	_, err := b.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		b.logger.Error("failed to answer callback", "error", err)
	}
}

// Send dispatches a push notification; it implements the delivery router's
// sender contract.
func (b *Bot) Send(ctx context.Context, chatID int64, threadID int, text string, keyboard *models.InlineKeyboardMarkup) error {
	_, err := b.sendMessage(ctx, chatID, threadID, text, keyboard)
	return err
}
