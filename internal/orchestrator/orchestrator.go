package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/metrics"
	"pharmaconnect_core/internal/services"
	"pharmaconnect_core/internal/state"
	"pharmaconnect_core/internal/validator"
)

// Сообщения, которые видит пользователь
const (
	msgOffline        = "You appear to be offline. Please check your connection."
	msgSessionExpired = "Your session has expired. Please log in again."
)

// DefaultErrorClearDelay - через сколько ошибка исчезает с экрана
const DefaultErrorClearDelay = 5 * time.Second

// BackgroundErrorHook получает ошибки фоновых обновлений.
// В State.Error они не попадают.
type BackgroundErrorHook func(task string, err error)

// Orchestrator выполняет пользовательские сценарии: вызывает сервисы
// и переводит их ответы в действия над state.Store.
type Orchestrator struct {
	store     *state.Store
	services  *services.ServiceContainer
	validator *validator.Validator
	notifier  Notifier
	metrics   *metrics.Metrics

	errorClearDelay time.Duration
	backgroundHook  BackgroundErrorHook

	loadingMu    sync.Mutex
	loadingDepth int

	errorMu    sync.Mutex
	errorGen   atomic.Uint64
	clearTimer *time.Timer
}

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithErrorClearDelay - 0 или меньше отключает автоочистку
func WithErrorClearDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.errorClearDelay = d }
}

func WithBackgroundErrorHook(h BackgroundErrorHook) Option {
	return func(o *Orchestrator) { o.backgroundHook = h }
}

func New(store *state.Store, svc *services.ServiceContainer, v *validator.Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:           store,
		services:        svc,
		validator:       v,
		notifier:        LogNotifier{},
		errorClearDelay: DefaultErrorClearDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.validator == nil {
		o.validator = validator.New()
	}
	return o
}

// Store возвращает хранилище состояния для подписки UI
func (o *Orchestrator) Store() *state.Store {
	return o.store
}

func (o *Orchestrator) Snapshot() state.State {
	return o.store.Snapshot()
}

// Close останавливает отложенную очистку ошибки
func (o *Orchestrator) Close() {
	o.errorMu.Lock()
	defer o.errorMu.Unlock()
	if o.clearTimer != nil {
		o.clearTimer.Stop()
		o.clearTimer = nil
	}
}

// ============================================
// Флаг загрузки
// ============================================

// beginLoading выставляет isLoading и возвращает функцию освобождения.
// Вложенные сценарии (Login -> SetupSession) сбрасывают флаг только
// при выходе из внешнего. Использование: defer o.beginLoading()()
func (o *Orchestrator) beginLoading() func() {
	o.loadingMu.Lock()
	o.loadingDepth++
	if o.loadingDepth == 1 {
		o.store.Dispatch(state.SetLoading{Loading: true})
	}
	o.loadingMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.loadingMu.Lock()
			defer o.loadingMu.Unlock()
			o.loadingDepth--
			if o.loadingDepth <= 0 {
				o.loadingDepth = 0
				o.store.Dispatch(state.SetLoading{Loading: false})
			}
		})
	}
}

// ============================================
// Ошибки
// ============================================

// handleError - единая классификация ошибок пользовательских сценариев
func (o *Orchestrator) handleError(ctx context.Context, err error, fallback string) {
	if err == nil {
		return
	}

	switch {
	case appErrors.IsPrecondition(err):
		o.notifyPrecondition(err)
		return
	case appErrors.IsUnauthorized(err):
		logger.CtxWarn(ctx, "Session expired, forcing logout", "error", err.Error())
		o.forceLogout(ctx)
		o.setError(msgSessionExpired)
		return
	case appErrors.IsOffline(err):
		o.store.Dispatch(state.SetOffline{Offline: true})
		o.setError(msgOffline)
		return
	}

	logger.CtxWithError(ctx, fallback, err)
	o.setError(fallback)
}

// handleCredentialsError - ошибки входа и регистрации.
// 401 здесь означает неверные данные, а не истёкшую сессию.
func (o *Orchestrator) handleCredentialsError(ctx context.Context, err error, fallback string) {
	if appErrors.IsUnauthorized(err) {
		logger.CtxWarn(ctx, "Credentials rejected", "error", err.Error())
		o.setError(fallback)
		return
	}
	o.handleError(ctx, err, fallback)
}

// setError показывает ошибку и планирует её очистку.
// Очищается только если за это время не появилась более новая.
func (o *Orchestrator) setError(message string) {
	o.errorMu.Lock()
	defer o.errorMu.Unlock()

	gen := o.errorGen.Add(1)
	o.store.Dispatch(state.SetError{Message: state.Ptr(message)})

	if o.clearTimer != nil {
		o.clearTimer.Stop()
		o.clearTimer = nil
	}
	if o.errorClearDelay <= 0 {
		return
	}
	o.clearTimer = time.AfterFunc(o.errorClearDelay, func() {
		o.store.Update(func(s state.State) state.Action {
			if o.errorGen.Load() != gen || s.Error == nil {
				return nil
			}
			return state.SetError{}
		})
	})
}

// ClearError убирает ошибку с экрана
func (o *Orchestrator) ClearError() {
	o.errorMu.Lock()
	defer o.errorMu.Unlock()

	o.errorGen.Add(1)
	if o.clearTimer != nil {
		o.clearTimer.Stop()
		o.clearTimer = nil
	}
	o.store.Update(func(s state.State) state.Action {
		if s.Error == nil {
			return nil
		}
		return state.SetError{}
	})
}

// background - отдельный канал ошибок для фоновых обновлений
func (o *Orchestrator) background(ctx context.Context, task string, err error) {
	logger.BackgroundLog(ctx, task, err)
	if err == nil {
		return
	}
	o.metrics.BackgroundFailure(task)
	if o.backgroundHook != nil {
		o.backgroundHook(task, err)
	}

	// 401 в фоне завершает сессию
	if appErrors.IsUnauthorized(err) && o.store.Snapshot().IsAuthenticated {
		logger.CtxWarn(ctx, "Session expired in background, forcing logout", "task", task)
		o.forceLogout(ctx)
		o.setError(msgSessionExpired)
	}
}

func (o *Orchestrator) finish(ctx context.Context, workflow string, err error) {
	logger.WorkflowLog(ctx, workflow, err)
	o.metrics.Workflow(workflow, err)
}

// validate проверяет намерение до сетевого вызова
func (o *Orchestrator) validate(v interface{}) error {
	err := o.validator.Validate(v)
	if err == nil {
		return nil
	}
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		return appErrors.ValidationError(vErr.Errors)
	}
	return appErrors.ValidationError(err.Error())
}
