package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nmalginov/timetable_bot/internal/state"
)

// Syncer приводит сообщение чата в соответствие актуальному расписанию.
type Syncer interface {
	Sync(ctx context.Context, chatID int64, deltaWeeks int) error
}

// Reconciler — ежедневный обход всех отслеживаемых чатов. После каждого
// обхода спит до следующей локальной полуночи, поэтому обновление привязано
// к календарю, а не к длительности предыдущего обхода.
type Reconciler struct {
	store       *state.Store
	syncer      Syncer
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

// NewReconciler создаёт цикл сверки. concurrency ограничивает число
// одновременно обрабатываемых чатов в рамках одного обхода.
func NewReconciler(store *state.Store, syncer Syncer, concurrency int, logger *zap.Logger) *Reconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		store:       store,
		syncer:      syncer,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// Run выполняет первый обход сразу, затем после каждой полуночи, пока
// контекст не отменён.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Info("Starting reconciliation loop")

	for {
		r.runSweep(ctx)

		timer := time.NewTimer(untilNextMidnight(r.now()))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("Reconciliation loop stopped")
			return ctx.Err()
		}
	}
}

// runSweep перерисовывает расписание каждого отслеживаемого чата с его
// текущим смещением недели. Сбой одного чата логируется и не прерывает
// обход остальных.
func (r *Reconciler) runSweep(ctx context.Context) {
	sweepID := uuid.NewString()
	chats := r.store.TrackedChats()

	if len(chats) == 0 {
		r.logger.Debug("No tracked chats, skipping sweep", zap.String("sweep_id", sweepID))
		return
	}

	r.logger.Info("Starting sweep",
		zap.String("sweep_id", sweepID),
		zap.Int("chats", len(chats)))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for _, chatID := range chats {
		chatID := chatID
		g.Go(func() error {
			if err := r.syncer.Sync(ctx, chatID, 0); err != nil {
				r.logger.Warn("Failed to refresh chat schedule",
					zap.String("sweep_id", sweepID),
					zap.Int64("chat_id", chatID),
					zap.Error(err))
			}
			return nil
		})
	}
	g.Wait()

	r.logger.Info("Sweep finished", zap.String("sweep_id", sweepID))
}

// untilNextMidnight возвращает время до ближайшей локальной полуночи.
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
