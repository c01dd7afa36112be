package workers

import (
	"context"
	"time"

	"pharmaconnect_core/internal/logger"
)

// Refresher - фоновое обновление данных сессии.
// Неавторизованную сессию реализация пропускает сама.
type Refresher interface {
	RefreshUserData(ctx context.Context)
}

type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
}

func NewRefreshWorker(refresher Refresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{refresher: refresher, interval: interval}
}

// Start запускает периодическое обновление. Остановка - отменой ctx,
// возвращаемый канал закрывается после выхода из цикла.
func (w *RefreshWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if w.interval <= 0 {
		logger.Info("Refresh worker disabled")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		w.refreshLoop(ctx)
	}()
	return done
}

// refreshLoop обновляет данные пользователя каждые interval
func (w *RefreshWorker) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Refresh worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Refresh worker stopped")
			return
		case <-ticker.C:
			w.refresher.RefreshUserData(logger.WithWorkflow(ctx, "periodic_refresh"))
		}
	}
}
