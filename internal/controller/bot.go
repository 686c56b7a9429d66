package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/nmalginov/timetable_bot/internal/service"
	"github.com/nmalginov/timetable_bot/internal/telegram"
)

// BotController регистрирует обработчики команд и кнопок недельной
// навигации и транслирует их в вызовы контроллера синхронизации.
type BotController struct {
	bot    *bot.Bot
	sync   *service.SyncService
	logger *zap.Logger
}

// NewBotController создаёт контроллер бота.
func NewBotController(botInstance *bot.Bot, syncService *service.SyncService, logger *zap.Logger) *BotController {
	return &BotController{
		bot:    botInstance,
		sync:   syncService,
		logger: logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд и callback-кнопок.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handleStart)

	// Четыре команды недельной навигации
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+telegram.CmdCurrentWeek, bot.MatchTypeExact, c.handleCurrentWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+telegram.CmdNextWeek, bot.MatchTypeExact, c.handleNextWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+telegram.CmdPreviousWeek, bot.MatchTypeExact, c.handlePreviousWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/"+telegram.CmdResetWeek, bot.MatchTypeExact, c.handleResetWeek)

	// Нажатия на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота.
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: telegram.CmdCurrentWeek, Description: "📅 Показать расписание"},
		{Command: telegram.CmdPreviousWeek, Description: "⬅️ Неделя назад"},
		{Command: telegram.CmdNextWeek, Description: "➡️ Неделя вперёд"},
		{Command: telegram.CmdResetWeek, Description: "⟳ Вернуться к текущей неделе"},
		{Command: "help", Description: "❓ Справка"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает цикл получения обновлений; блокируется до отмены ctx.
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
