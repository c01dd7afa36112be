package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	log *slog.Logger
	mu  sync.RWMutex
)

// Init инициализирует глобальный логгер
// env: "development" или "production"
// Логи пишутся в stderr: stdout занят выводом CLI.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

// InitWithWriter - то же, что Init, но с произвольным приёмником (тесты)
func InitWithWriter(env string, w io.Writer) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: env != "test",
	}

	switch env {
	case "development":
		// Development: читаемый текстовый формат
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	case "test":
		opts.Level = slog.LevelWarn
		handler = slog.NewTextHandler(w, opts)
	default:
		// Production: JSON формат для парсинга
		handler = slog.NewJSONHandler(w, opts)
	}

	mu.Lock()
	log = slog.New(handler)
	mu.Unlock()
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l == nil {
		// Fallback если Init не вызван
		Init("development")
		return GetLogger()
	}
	return l
}

// ============================================
// Convenience функции для быстрого логирования
// ============================================

func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует fatal ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает новый логгер с дополнительными полями
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError создает логгер с полем error
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

// ============================================
// Специализированные логгеры
// ============================================

// HTTPLog логирует исходящий запрос к API
func HTTPLog(ctx context.Context, method, endpoint string, status int, duration time.Duration, attempt int) {
	fields := []any{
		"method", method,
		"endpoint", endpoint,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"attempt", attempt,
	}

	l := FromContext(ctx)
	switch {
	case status == 0:
		l.Warn("api request failed without response", fields...)
	case status >= 500:
		l.Error("api server error", fields...)
	case status >= 400:
		l.Warn("api client error", fields...)
	default:
		l.Debug("api request", fields...)
	}
}

// StorageLog логирует операцию локального хранилища
func StorageLog(operation string, keys int, duration time.Duration, err error) {
	fields := []any{
		"operation", operation,
		"keys", keys,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		GetLogger().Error("storage operation failed", fields...)
	} else {
		GetLogger().Debug("storage operation", fields...)
	}
}

// WorkflowLog логирует завершение пользовательского сценария
func WorkflowLog(ctx context.Context, workflow string, err error) {
	fields := []any{"workflow", workflow}

	if err != nil {
		fields = append(fields, "error", err.Error())
		FromContext(ctx).Warn("workflow failed", fields...)
	} else {
		FromContext(ctx).Info("workflow completed", fields...)
	}
}

// BackgroundLog - фоновые обновления: ошибки не видны пользователю, только в логах
func BackgroundLog(ctx context.Context, task string, err error) {
	fields := []any{"task", task}

	if err != nil {
		fields = append(fields, "error", err.Error())
		FromContext(ctx).Warn("background refresh failed", fields...)
	} else {
		FromContext(ctx).Debug("background refresh completed", fields...)
	}
}
