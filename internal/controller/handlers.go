package controller

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/nmalginov/timetable_bot/internal/telegram"
)

// handleStart обрабатывает команды /start и /help
func (c *BotController) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := "Этот бот поможет тебе следить за расписанием занятий." +
		" Он будет автоматически обновлять расписание каждые сутки," +
		" но ты можешь сделать это и сам в любой момент." +
		" Также ты можешь перемещаться по расписанию на любое число недель" +
		" вперёд и назад (после можно сброситься до текущей недели).\n\n" +
		fmt.Sprintf("Для начала напиши команду: /%s. Далее используй кнопки, bona mente!", telegram.CmdCurrentWeek)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

func (c *BotController) handleCurrentWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.runWeekCommand(ctx, b, update.Message.Chat.ID, 0, false)
}

func (c *BotController) handleNextWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.runWeekCommand(ctx, b, update.Message.Chat.ID, 1, false)
}

func (c *BotController) handlePreviousWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.runWeekCommand(ctx, b, update.Message.Chat.ID, -1, false)
}

func (c *BotController) handleResetWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.runWeekCommand(ctx, b, update.Message.Chat.ID, 0, true)
}

// handleCallbackQuery распределяет нажатия кнопок по четырём токенам
// недельной навигации.
func (c *BotController) handleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	msg := callback.Message.Message
	if msg == nil {
		c.logger.Warn("Callback without accessible message",
			zap.String("data", callback.Data))
		return
	}
	chatID := msg.Chat.ID

	switch callback.Data {
	case telegram.CmdPreviousWeek:
		c.runWeekCommand(ctx, b, chatID, -1, false)
	case telegram.CmdCurrentWeek:
		c.runWeekCommand(ctx, b, chatID, 0, false)
	case telegram.CmdResetWeek:
		c.runWeekCommand(ctx, b, chatID, 0, true)
	case telegram.CmdNextWeek:
		c.runWeekCommand(ctx, b, chatID, 1, false)
	default:
		c.logger.Warn("Unknown callback",
			zap.String("data", callback.Data),
			zap.Int64("chat_id", chatID))
	}
}

// runWeekCommand выполняет синхронизацию и превращает ошибку рендера или
// транспорта в видимый пользователю ответ.
func (c *BotController) runWeekCommand(ctx context.Context, b *bot.Bot, chatID int64, deltaWeeks int, reset bool) {
	c.logger.Info("Week command",
		zap.Int64("chat_id", chatID),
		zap.Int("delta_weeks", deltaWeeks),
		zap.Bool("reset", reset))

	var err error
	if reset {
		err = c.sync.Reset(ctx, chatID)
	} else {
		err = c.sync.Sync(ctx, chatID, deltaWeeks)
	}

	if err != nil {
		c.logger.Error("Failed to sync schedule",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Не удалось получить расписание. Попробуйте позже.",
		})
	}
}
