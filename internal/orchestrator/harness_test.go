package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmaconnect_core/internal/apiclient"
	"pharmaconnect_core/internal/metrics"
	"pharmaconnect_core/internal/repositories"
	"pharmaconnect_core/internal/services"
	"pharmaconnect_core/internal/state"
	"pharmaconnect_core/internal/storage"
	"pharmaconnect_core/internal/validator"
	"pharmaconnect_core/test/helpers"
)

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

type backgroundRecorder struct {
	mu    sync.Mutex
	tasks []string
}

func (r *backgroundRecorder) hook(task string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

func (r *backgroundRecorder) Tasks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tasks...)
}

type harness struct {
	api        *helpers.FakeAPI
	kv         storage.Storage
	tokens     repositories.TokenRepository
	store      *state.Store
	orch       *Orchestrator
	notices    *noticeRecorder
	background *backgroundRecorder
	metrics    *metrics.Metrics
}

type harnessConfig struct {
	clientTimeout time.Duration
	opts          []Option
}

func newHarness(t *testing.T, opts ...Option) *harness {
	return newHarnessWith(t, harnessConfig{opts: opts})
}

func newHarnessWith(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	api := helpers.NewFakeAPI(t)
	kv, err := storage.NewMemoryStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	h := &harness{api: api, kv: kv}
	h.build(t, cfg)
	return h
}

// build собирает клиент поверх уже существующих FakeAPI и хранилища
func (h *harness) build(t *testing.T, cfg harnessConfig) {
	t.Helper()

	h.tokens = repositories.NewTokenRepository(h.kv)
	h.metrics = metrics.New()
	clientOpts := []apiclient.Option{apiclient.WithMetrics(h.metrics)}
	if cfg.clientTimeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(cfg.clientTimeout))
	}
	client := apiclient.NewClient(h.api.URL(), h.tokens, clientOpts...)

	h.notices = &noticeRecorder{}
	h.background = &backgroundRecorder{}
	h.store = state.NewStore(state.Initial())

	opts := []Option{
		WithNotifier(h.notices),
		WithMetrics(h.metrics),
		WithBackgroundErrorHook(h.background.hook),
		WithErrorClearDelay(0),
	}
	opts = append(opts, cfg.opts...)
	h.orch = New(h.store, services.NewServiceContainer(client, h.tokens), validator.New(), opts...)
	t.Cleanup(h.orch.Close)
}

func (h *harness) login(t *testing.T, email string) state.State {
	t.Helper()
	require.NoError(t, h.orch.Login(context.Background(), email, helpers.DemoPassword))
	s := h.store.Snapshot()
	require.True(t, s.IsAuthenticated)
	return s
}
