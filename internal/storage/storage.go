package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Storage - постоянное key-value хранилище сессии клиента
type Storage interface {
	// Get возвращает значение и признак наличия ключа
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key, value string) error

	// SetMany записывает все пары одной транзакцией
	SetMany(ctx context.Context, values map[string]string) error

	// Delete удаляет все ключи одной транзакцией. Отсутствующий ключ не ошибка.
	Delete(ctx context.Context, keys ...string) error

	Close() error
}

// Config holds storage configuration
type Config struct {
	Type       string // badger, memory
	Path       string // For badger
	SyncWrites bool   // For badger
	Logger     *slog.Logger
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "badger":
		return NewBadgerStorage(cfg)
	case "memory":
		return NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
