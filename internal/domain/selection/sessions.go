package selection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxSessions — потолок живых машин в памяти. Киоск держит единицы
// сессий, запас на порядки; лишнее — защита от мусорных id извне.
const maxSessions = 512

type session struct {
	m        *Machine
	lastUsed time.Time
}

// Sessions — реестр машин по id сессии киоска. Машина живёт в памяти
// процесса; после рестарта поднимается из снапшота при первом
// обращении, за счёт чего выбор переживает перезапуск. Реестр
// ограничен по размеру: при переполнении самая давно не трогавшаяся
// сессия выгружается, её состояние остаётся в снапшоте.
type Sessions struct {
	store SnapshotStore
	log   *slog.Logger

	mu   sync.Mutex
	max  int
	byID map[string]*session
}

func NewSessions(store SnapshotStore, log *slog.Logger) *Sessions {
	return &Sessions{store: store, log: log, max: maxSessions, byID: make(map[string]*session)}
}

// Create заводит новую пустую сессию.
func (s *Sessions) Create() (string, *Machine) {
	id := uuid.NewString()
	m := New(id, s.store, s.log)
	s.mu.Lock()
	s.add(id, m)
	s.mu.Unlock()
	return id, m
}

// Get возвращает машину сессии, при необходимости восстанавливая её
// из снапшота. Неизвестный id — это просто пустая сессия.
func (s *Sessions) Get(ctx context.Context, id string) *Machine {
	s.mu.Lock()
	if e, ok := s.byID[id]; ok {
		e.lastUsed = time.Now()
		s.mu.Unlock()
		return e.m
	}
	s.mu.Unlock()

	m := Restore(ctx, id, s.store, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		// кто-то успел раньше — его машина главнее
		m.Close()
		e.lastUsed = time.Now()
		return e.m
	}
	s.add(id, m)
	return m
}

// add вызывается под mu.
func (s *Sessions) add(id string, m *Machine) {
	if len(s.byID) >= s.max {
		s.evictIdle()
	}
	s.byID[id] = &session{m: m, lastUsed: time.Now()}
}

// evictIdle выгружает самую давно не использованную сессию.
// Её писатель снапшотов дожимает очередь при Close, так что состояние
// поднимется при следующем Get. Вызывается под mu.
func (s *Sessions) evictIdle() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.byID {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID, oldest = id, e.lastUsed
		}
	}
	if oldestID == "" {
		return
	}
	e := s.byID[oldestID]
	delete(s.byID, oldestID)
	e.m.Close()
	s.log.Info("idle session evicted", "id", oldestID)
}

// Close останавливает всех писателей снапшотов.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.byID {
		e.m.Close()
	}
	s.byID = map[string]*session{}
}
