package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
)

type badgerStorage struct {
	db *badger.DB
}

// badgerLogger направляет внутренние логи badger в slog
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// NewBadgerStorage открывает хранилище на диске по cfg.Path
func NewBadgerStorage(cfg Config) (Storage, error) {
	if cfg.Path == "" {
		return nil, errors.New("path is required for badger storage")
	}
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", cfg.Path, err)
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1)
	return open(opts, cfg.Logger)
}

// NewMemoryStorage - badger в режиме in-memory, для тестов и режима без диска
func NewMemoryStorage() (Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	return open(opts, nil)
}

func open(opts badger.Options, l *slog.Logger) (Storage, error) {
	if l != nil {
		opts = opts.WithLogger(&badgerLogger{logger: l})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, appErrors.StorageError("open", err)
	}
	return &badgerStorage{db: db}, nil
}

func (s *badgerStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, appErrors.StorageError("get", err)
	}

	start := time.Now()
	var (
		value []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		value, err = item.ValueCopy(nil)
		return err
	})
	logger.StorageLog("get", 1, time.Since(start), err)
	if err != nil {
		return "", false, appErrors.StorageError("get", err)
	}
	return string(value), found, nil
}

func (s *badgerStorage) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *badgerStorage) SetMany(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return appErrors.StorageError("set", err)
	}

	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		for k, v := range values {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	logger.StorageLog("set", len(values), time.Since(start), err)
	if err != nil {
		return appErrors.StorageError("set", err)
	}
	return nil
}

func (s *badgerStorage) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return appErrors.StorageError("delete", err)
	}

	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	logger.StorageLog("delete", len(keys), time.Since(start), err)
	if err != nil {
		return appErrors.StorageError("delete", err)
	}
	return nil
}

func (s *badgerStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return appErrors.StorageError("close", err)
	}
	return nil
}
