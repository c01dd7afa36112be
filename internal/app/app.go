package app

import (
	"context"
	"fmt"

	"pharmaconnect_core/internal/apiclient"
	"pharmaconnect_core/internal/config"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/metrics"
	"pharmaconnect_core/internal/orchestrator"
	"pharmaconnect_core/internal/repositories"
	"pharmaconnect_core/internal/services"
	"pharmaconnect_core/internal/state"
	"pharmaconnect_core/internal/storage"
	"pharmaconnect_core/internal/validator"
	"pharmaconnect_core/internal/workers"
)

// App - собранный клиент: хранилище сессии, транспорт, сервисы,
// состояние и сценарии поверх него
type App struct {
	Config       *config.Config
	Storage      storage.Storage
	Tokens       repositories.TokenRepository
	Metrics      *metrics.Metrics
	Client       *apiclient.Client
	Services     *services.ServiceContainer
	Store        *state.Store
	Orchestrator *orchestrator.Orchestrator
	Worker       *workers.RefreshWorker
}

// New собирает зависимости в порядке:
// storage -> репозиторий токенов -> apiclient -> сервисы -> store -> оркестратор.
// Логгер должен быть инициализирован заранее.
func New(cfg *config.Config, opts ...orchestrator.Option) (*App, error) {
	kv, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		Path:       cfg.Storage.Path,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     logger.GetLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Debug("Storage initialized", "type", cfg.Storage.Type)

	// 1. Транспорт
	m := metrics.New()
	tokens := repositories.NewTokenRepository(kv)
	client := apiclient.NewClient(cfg.API.BaseURL, tokens,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithMetrics(m),
	)

	// 2. Сервисы и состояние
	serviceContainer := services.NewServiceContainer(client, tokens)
	store := state.NewStore(state.Initial())

	// 3. Сценарии
	orchOpts := []orchestrator.Option{
		orchestrator.WithMetrics(m),
		orchestrator.WithErrorClearDelay(cfg.UI.ErrorClearDelay),
	}
	orch := orchestrator.New(store, serviceContainer, validator.New(), append(orchOpts, opts...)...)

	return &App{
		Config:       cfg,
		Storage:      kv,
		Tokens:       tokens,
		Metrics:      m,
		Client:       client,
		Services:     serviceContainer,
		Store:        store,
		Orchestrator: orch,
		Worker:       workers.NewRefreshWorker(orch, cfg.Workers.RefreshInterval),
	}, nil
}

// Start восстанавливает сессию из хранилища
func (a *App) Start(ctx context.Context) {
	a.Orchestrator.Initialize(ctx)
}

// Close останавливает таймеры и закрывает хранилище
func (a *App) Close() error {
	a.Orchestrator.Close()
	if err := a.Storage.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
