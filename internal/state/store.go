package state

import "sync"

// Listener получает каждое новое состояние в порядке применения действий.
// Listener не должен вызывать Dispatch/Update того же Store.
type Listener func(State)

// Store - владелец состояния приложения, единственная точка изменения.
// Создаётся на сессию приложения и передаётся оркестратору явно.
type Store struct {
	mu    sync.Mutex
	state State

	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextID    int
}

func NewStore(initial State) *Store {
	return &Store{
		state:     initial,
		listeners: make(map[int]Listener),
	}
}

// Dispatch применяет действие и возвращает новое состояние
func (s *Store) Dispatch(action Action) State {
	return s.Update(func(State) Action { return action })
}

// Update - чтение и изменение под одной блокировкой: fn видит актуальное
// состояние и возвращает действие (или nil, если менять нечего).
func (s *Store) Update(fn func(State) Action) State {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	action := fn(s.state)
	if action == nil {
		current := s.state
		s.mu.Unlock()
		return current
	}
	s.state = Reduce(s.state, action)
	next := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe возвращает функцию отписки
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
