// Package telegram — адаптер транспорта поверх go-telegram/bot.
// Сообщение с расписанием всегда отправляется в MarkdownV2 и всегда несёт
// клавиатуру навигации по неделям, в том числе при правках.
package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Токены команд недельной навигации. Одни и те же строки используются
// как slash-команды и как callback data кнопок.
const (
	CmdPreviousWeek = "get_previous_week"
	CmdCurrentWeek  = "get_current_week"
	CmdResetWeek    = "reset_current_week"
	CmdNextWeek     = "get_next_week"
)

// TransportError — ошибка вызова Telegram API.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// WeekKeyboard возвращает клавиатуру из четырёх кнопок навигации,
// отображённых 1:1 на токены команд.
func WeekKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "<", CallbackData: CmdPreviousWeek},
				{Text: "=", CallbackData: CmdCurrentWeek},
				{Text: "⟳", CallbackData: CmdResetWeek},
				{Text: ">", CallbackData: CmdNextWeek},
			},
		},
	}
}

// Client реализует транспорт сообщений расписания.
type Client struct {
	bot    *bot.Bot
	markup models.ReplyMarkup
	logger *zap.Logger
}

// NewClient создаёт адаптер над уже авторизованным ботом.
func NewClient(b *bot.Bot, logger *zap.Logger) *Client {
	return &Client{
		bot:    b,
		markup: WeekKeyboard(),
		logger: logger,
	}
}

// SendMessage отправляет новое сообщение с расписанием и возвращает его ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: c.markup,
	})
	if err != nil {
		return 0, &TransportError{Op: "send", Err: err}
	}

	c.logger.Debug("Schedule message sent",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", msg.ID))

	return msg.ID, nil
}

// EditMessage заменяет текст существующего сообщения, сохраняя клавиатуру.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := c.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: c.markup,
	})
	if err != nil {
		return &TransportError{Op: "edit", Err: err}
	}

	c.logger.Debug("Schedule message edited",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID))

	return nil
}

// PinMessage закрепляет сообщение в чате.
func (c *Client) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.bot.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return &TransportError{Op: "pin", Err: err}
	}
	return nil
}

// UnpinAllMessages снимает все закреплённые сообщения чата. Вызывается
// перед закреплением нового расписания, чтобы в чате оставалось ровно
// одно «живое» сообщение.
func (c *Client) UnpinAllMessages(ctx context.Context, chatID int64) error {
	_, err := c.bot.UnpinAllChatMessages(ctx, &bot.UnpinAllChatMessagesParams{
		ChatID: chatID,
	})
	if err != nil {
		return &TransportError{Op: "unpin_all", Err: err}
	}
	return nil
}
