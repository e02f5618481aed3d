package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
)

// SnapshotStore — локальное durable-хранилище снапшотов выбора.
// Ошибки чтения/записи не фатальны: актуальным остаётся состояние в памяти.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrUnknownField возвращается toggle-операциям для незнакомого поля.
var ErrUnknownField = errors.New("selection: unknown detail field")

const persistTimeout = 5 * time.Second

type persistOp struct {
	data  []byte // nil — удалить снапшот
	erase bool
	done  chan struct{} // только для Flush
}

// Machine владеет Selection одной сессии. Все мутации идут через её
// операции; каждая мутация ставит запись снапшота в очередь
// (fire-and-forget, порядок записей совпадает с порядком мутаций).
type Machine struct {
	key   string
	store SnapshotStore
	log   *slog.Logger

	mu  sync.Mutex
	sel Selection

	writes chan persistOp
	wg     sync.WaitGroup
}

// New создаёт машину с пустым выбором.
func New(key string, store SnapshotStore, log *slog.Logger) *Machine {
	m := &Machine{
		key:    key,
		store:  store,
		log:    log,
		writes: make(chan persistOp, 64),
	}
	m.wg.Add(1)
	go m.persistLoop()
	return m
}

// Restore поднимает машину из сохранённого снапшота. Отсутствующий,
// битый или частичный снапшот не ломает сессию: неизвестные поля
// остаются пустыми, мусор целиком заменяется пустым выбором.
func Restore(ctx context.Context, key string, store SnapshotStore, log *slog.Logger) *Machine {
	m := New(key, store, log)
	raw, ok, err := store.Load(ctx, key)
	if err != nil {
		log.Error("snapshot load failed", "key", key, "err", err)
		return m
	}
	if !ok {
		return m
	}
	var s Selection
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Error("snapshot corrupt, starting empty", "key", key, "err", err)
		return m
	}
	m.sel = s
	return m
}

// Key — ключ снапшота (он же id сессии).
func (m *Machine) Key() string { return m.key }

// Selection — копия текущего выбора.
func (m *Machine) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sel.Clone()
}

// SetServiceType заменяет весь выбор пустым с новым типом услуги.
// Смена типа услуги обесценивает все последующие шаги, поэтому
// прежние стили и детали сбрасываются намеренно.
func (m *Machine) SetServiceType(t ServiceType) Selection {
	m.mu.Lock()
	m.sel = Selection{ServiceType: t}
	snap := m.sel.Clone()
	m.mu.Unlock()
	m.schedulePersist(snap)
	return snap
}

// SetHaircutStyle задаёт стиль стрижки, не трогая остальные поля
// (в том числе уже набранные детали стрижки).
func (m *Machine) SetHaircutStyle(style catalog.StyleOption) Selection {
	m.mu.Lock()
	m.sel.HaircutStyle = &style
	snap := m.sel.Clone()
	m.mu.Unlock()
	m.schedulePersist(snap)
	return snap
}

// SetBeardStyle задаёт стиль бороды.
func (m *Machine) SetBeardStyle(style catalog.StyleOption) Selection {
	m.mu.Lock()
	m.sel.BeardStyle = &style
	snap := m.sel.Clone()
	m.mu.Unlock()
	m.schedulePersist(snap)
	return snap
}

// SetHaircutDetails вливает непустые поля патча в детали стрижки.
func (m *Machine) SetHaircutDetails(p HaircutPatch) Selection {
	m.mu.Lock()
	d := &m.sel.HaircutDetails
	if p.Method != nil {
		d.Method = *p.Method
	}
	if p.MachineHeight != nil {
		d.MachineHeight = *p.MachineHeight
	}
	if p.FadeType != nil {
		d.FadeType = *p.FadeType
	}
	if p.SideStyle != nil {
		d.SideStyle = *p.SideStyle
	}
	if p.Finish != nil {
		d.Finish = *p.Finish
	}
	if p.ScissorHeight != nil {
		d.ScissorHeight = *p.ScissorHeight
	}
	snap := m.sel.Clone()
	m.mu.Unlock()
	m.schedulePersist(snap)
	return snap
}

// SetBeardDetails вливает непустые поля патча в детали бороды.
func (m *Machine) SetBeardDetails(p BeardPatch) Selection {
	m.mu.Lock()
	if p.Height != nil {
		m.sel.BeardDetails.Height = *p.Height
	}
	if p.Contour != nil {
		m.sel.BeardDetails.Contour = *p.Contour
	}
	snap := m.sel.Clone()
	m.mu.Unlock()
	m.schedulePersist(snap)
	return snap
}

// ToggleHaircutDetail реализует повторный тап по опции: если значение
// уже выбрано — сбрасывает его, иначе выбирает.
func (m *Machine) ToggleHaircutDetail(f DetailField, id string) (Selection, error) {
	m.mu.Lock()
	cur, ok := m.sel.HaircutDetails.field(f)
	m.mu.Unlock()
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	v := id
	if cur == id {
		v = ""
	}
	p := HaircutPatch{}
	switch f {
	case FieldMethod:
		p.Method = &v
	case FieldMachineHeight:
		p.MachineHeight = &v
	case FieldFadeType:
		p.FadeType = &v
	case FieldSideStyle:
		p.SideStyle = &v
	case FieldFinish:
		p.Finish = &v
	case FieldScissorHeight:
		p.ScissorHeight = &v
	}
	return m.SetHaircutDetails(p), nil
}

// ToggleBeardDetail — то же для деталей бороды.
func (m *Machine) ToggleBeardDetail(f DetailField, id string) (Selection, error) {
	m.mu.Lock()
	cur, ok := m.sel.BeardDetails.field(f)
	m.mu.Unlock()
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	v := id
	if cur == id {
		v = ""
	}
	p := BeardPatch{}
	switch f {
	case FieldBeardHeight:
		p.Height = &v
	case FieldBeardContour:
		p.Contour = &v
	}
	return m.SetBeardDetails(p), nil
}

func (m *Machine) schedulePersist(snap Selection) {
	raw, err := json.Marshal(snap)
	if err != nil {
		m.log.Error("snapshot marshal failed", "key", m.key, "err", err)
		return
	}
	m.enqueue(persistOp{data: raw})
}

func (m *Machine) enqueue(op persistOp) {
	select {
	case m.writes <- op:
	default:
		// очередь забита (хранилище висит) — теряем запись, не мутацию
		m.log.Error("snapshot queue full, write dropped", "key", m.key)
		if op.done != nil {
			close(op.done)
		}
	}
}

func (m *Machine) persistLoop() {
	defer m.wg.Done()
	for op := range m.writes {
		if op.done != nil {
			close(op.done)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		var err error
		if op.erase {
			err = m.store.Delete(ctx, m.key)
		} else {
			err = m.store.Save(ctx, m.key, op.data)
		}
		cancel()
		if err != nil {
			m.log.Error("snapshot write failed", "key", m.key, "err", err)
		}
	}
}

// Flush дожидается применения всех запланированных записей.
func (m *Machine) Flush() {
	done := make(chan struct{})
	m.writes <- persistOp{done: done}
	<-done
}

// Close останавливает писателя снапшотов.
func (m *Machine) Close() {
	close(m.writes)
	m.wg.Wait()
}

// Reset возвращает выбор к пустому и стирает снапшот.
func (m *Machine) Reset() Selection {
	m.mu.Lock()
	m.sel = Selection{}
	snap := m.sel.Clone()
	m.mu.Unlock()
	m.enqueue(persistOp{erase: true})
	return snap
}

// ProgressSteps — сколько всего шагов у текущего сценария.
// Current приходит от вызывающего экрана.
func (m *Machine) ProgressSteps(current int) Progress {
	m.mu.Lock()
	t := m.sel.ServiceType
	m.mu.Unlock()

	switch t {
	case ServiceHair, ServiceBeard:
		return Progress{Current: current, Total: 3}
	case ServiceBoth:
		return Progress{Current: current, Total: 5}
	}
	return Progress{Current: current, Total: 1}
}
