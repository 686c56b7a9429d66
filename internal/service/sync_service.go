package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nmalginov/timetable_bot/internal/format"
	"github.com/nmalginov/timetable_bot/internal/state"
)

// Transport — операции чат-платформы, нужные контроллеру синхронизации.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	PinMessage(ctx context.Context, chatID int64, messageID int) error
	UnpinAllMessages(ctx context.Context, chatID int64) error
}

// SyncService приводит сообщение чата в соответствие актуальному расписанию:
// сдвигает смещение недели, рендерит документ и решает, отправлять новое
// сообщение или править существующее.
type SyncService struct {
	store     *state.Store
	schedule  *ScheduleService
	transport Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewSyncService создаёт контроллер синхронизации.
func NewSyncService(store *state.Store, schedule *ScheduleService, transport Transport, logger *zap.Logger) *SyncService {
	return &SyncService{
		store:     store,
		schedule:  schedule,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// Sync сдвигает смещение недели чата на deltaWeeks (0 — показать текущее
// состояние) и синхронизирует сообщение. Операции одного чата сериализуются.
func (s *SyncService) Sync(ctx context.Context, chatID int64, deltaWeeks int) error {
	s.store.LockChat(chatID)
	defer s.store.UnlockChat(chatID)

	return s.refresh(ctx, chatID, deltaWeeks)
}

// Reset принудительно возвращает чат к текущей неделе и синхронизирует
// сообщение.
func (s *SyncService) Reset(ctx context.Context, chatID int64) error {
	s.store.LockChat(chatID)
	defer s.store.UnlockChat(chatID)

	s.store.ResetOffset(chatID)
	return s.refresh(ctx, chatID, 0)
}

func (s *SyncService) refresh(ctx context.Context, chatID int64, deltaWeeks int) error {
	offset := s.store.AdjustOffset(chatID, deltaWeeks)
	anchor := s.now().AddDate(0, 0, offset*7)

	text, err := s.schedule.Render(ctx, anchor)
	if err != nil {
		return err
	}

	tracked, ok := s.store.Tracked(chatID)
	if !ok {
		return s.post(ctx, chatID, text)
	}

	if format.CompareKey(text) == format.CompareKey(tracked.Text) {
		s.logger.Debug("Schedule unchanged, skipping edit",
			zap.Int64("chat_id", chatID),
			zap.Int("week_offset", offset))
		return nil
	}

	if err := s.transport.EditMessage(ctx, chatID, tracked.MessageID, text); err != nil {
		return err
	}
	s.store.SetTracked(chatID, state.TrackedMessage{MessageID: tracked.MessageID, Text: text})

	s.logger.Info("Schedule message updated",
		zap.Int64("chat_id", chatID),
		zap.Int("week_offset", offset))

	return nil
}

func (s *SyncService) post(ctx context.Context, chatID int64, text string) error {
	messageID, err := s.transport.SendMessage(ctx, chatID, text)
	if err != nil {
		return err
	}

	// Сообщение записывается сразу после отправки: даже если закрепление
	// сорвётся, повторный запрос не создаст второе расписание в чате.
	s.store.SetTracked(chatID, state.TrackedMessage{MessageID: messageID, Text: text})

	if err := s.transport.UnpinAllMessages(ctx, chatID); err != nil {
		return err
	}
	if err := s.transport.PinMessage(ctx, chatID, messageID); err != nil {
		return err
	}

	s.logger.Info("Schedule message posted and pinned",
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", messageID))

	return nil
}
