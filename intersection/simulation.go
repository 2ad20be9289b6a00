// Package intersection моделирует перекрёсток со знаками STOP со всех
// четырёх сторон: машины подъезжают, останавливаются и проезжают по одной
// в порядке прибытия.
package intersection

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Option настройка симуляции
type Option func(*Simulation)

// WithRand задаёт источник случайности для появления машин
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) {
		s.rng = r
	}
}

// WithObserver добавляет наблюдателя
func WithObserver(o Observer) Option {
	return func(s *Simulation) {
		s.observers = append(s.observers, o)
	}
}

// Simulation владеет всеми машинами и арбитром перекрёстка.
// Не потокобезопасна: вызывающий код сам сериализует доступ.
type Simulation struct {
	cfg      Config
	geometry Geometry
	arbiter  *Arbiter
	spawner  *SpawnController

	vehicles []*Vehicle
	lanes    lanes

	rng          *rand.Rand
	observers    []Observer
	spawnEnabled bool
	lastSpawn    time.Time
	nextID       uint64

	runID   string
	now     time.Time
	ticks   uint64
	spawned int
	exited  int
	evicted int
}

// NewSimulation создаёт симуляцию. Некорректная конфигурация возвращает ошибку.
func NewSimulation(cfg Config, opts ...Option) (*Simulation, error) {
	g, err := NewGeometry(cfg)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:          cfg,
		geometry:     g,
		arbiter:      NewArbiter(cfg.MinStop()),
		lanes:        make(lanes, len(Directions)),
		spawnEnabled: true,
		runID:        uuid.New().String(),
	}
	s.spawner = newSpawnController(g, cfg.SpawnClearance, s.lanes)

	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return s, nil
}

func (s *Simulation) Config() Config            { return s.cfg }
func (s *Simulation) Geometry() Geometry        { return s.geometry }
func (s *Simulation) Arbiter() *Arbiter         { return s.arbiter }
func (s *Simulation) Spawner() *SpawnController { return s.spawner }
func (s *Simulation) RunID() string             { return s.runID }

// Tick продвигает симуляцию на один шаг: появление машин, движение,
// удаление вышедших за границы.
func (s *Simulation) Tick(now time.Time) {
	s.now = now
	s.ticks++

	s.attemptSpawns(now)

	for _, v := range s.vehicles {
		if !v.advance(now, s.geometry, s.arbiter) {
			continue
		}
		switch v.state {
		case Queued:
			s.notify(func(o Observer) { o.OnArrive(v) })
		case Crossing:
			s.notify(func(o Observer) { o.OnGrant(v) })
		case Exited:
			s.exited++
			s.notify(func(o Observer) { o.OnExit(v) })
		}
	}

	s.evict()
}

func (s *Simulation) attemptSpawns(now time.Time) {
	if s.lastSpawn.IsZero() {
		s.lastSpawn = now
		return
	}
	if now.Sub(s.lastSpawn) < s.cfg.SpawnInterval() {
		return
	}
	s.lastSpawn = now

	if !s.spawnEnabled {
		return
	}
	for _, dir := range Directions {
		if s.rng.Float64() < s.cfg.SpawnProbability[dir] {
			s.Spawn(dir)
		}
	}
}

// Spawn добавляет машину в направлении dir, если это разрешает SpawnController
func (s *Simulation) Spawn(dir Direction) (*Vehicle, bool) {
	if !dir.Valid() || !s.spawner.CanSpawn(dir) {
		return nil, false
	}

	s.nextID++
	v := newVehicle(s.nextID, dir, s.geometry.Spawn(dir), s.cfg.BaseSpeed)
	s.vehicles = append(s.vehicles, v)
	s.lanes.add(v)
	s.spawned++

	s.notify(func(o Observer) { o.OnSpawn(v) })
	return v, true
}

func (s *Simulation) evict() {
	kept := s.vehicles[:0]
	removed := false
	for _, v := range s.vehicles {
		if s.geometry.OutOfBounds(v.box.X, v.box.Y) {
			removed = true
			s.evicted++
			s.notify(func(o Observer) { o.OnEvict(v) })
			continue
		}
		kept = append(kept, v)
	}
	for i := len(kept); i < len(s.vehicles); i++ {
		s.vehicles[i] = nil
	}
	s.vehicles = kept

	if removed {
		s.lanes.rebuild(s.vehicles)
	}
}

// CanSpawn см. SpawnController.CanSpawn
func (s *Simulation) CanSpawn(dir Direction) bool {
	return s.spawner.CanSpawn(dir)
}

// SetSpawnEnabled включает и выключает автоматическое появление машин
func (s *Simulation) SetSpawnEnabled(enabled bool) {
	s.spawnEnabled = enabled
}

// SpawnEnabled включено ли появление машин
func (s *Simulation) SpawnEnabled() bool {
	return s.spawnEnabled
}

// Reset удаляет все машины и сбрасывает счётчик прибытий.
// Идентификаторы машин продолжают расти.
func (s *Simulation) Reset() {
	s.vehicles = nil
	s.lanes.rebuild(nil)
	s.arbiter.Reset()
	s.lastSpawn = time.Time{}
	s.ticks = 0
	s.spawned = 0
	s.exited = 0
	s.evicted = 0
	s.runID = uuid.New().String()

	runID := s.runID
	s.notify(func(o Observer) { o.OnReset(runID) })
}

// Vehicles снимки живых машин в порядке появления
func (s *Simulation) Vehicles() []VehicleSnapshot {
	out := make([]VehicleSnapshot, len(s.vehicles))
	for i, v := range s.vehicles {
		out[i] = v.Snapshot()
	}
	return out
}

// Vehicle ищет живую машину по id
func (s *Simulation) Vehicle(id uint64) (*Vehicle, bool) {
	for _, v := range s.vehicles {
		if v.id == id {
			return v, true
		}
	}
	return nil, false
}

// Queue подписи ожидающих машин в порядке права проезда
func (s *Simulation) Queue() []string {
	ids := s.arbiter.Queue()
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.Vehicle(id); ok {
			labels = append(labels, v.Label())
		}
	}
	return labels
}

// Crossing подпись машины на перекрёстке или пустая строка
func (s *Simulation) Crossing() string {
	id, ok := s.arbiter.Occupant()
	if !ok {
		return ""
	}
	if v, ok := s.Vehicle(id); ok {
		return v.Label()
	}
	return ""
}

// Snapshot полное состояние для отрисовки и передачи клиентам
type Snapshot struct {
	RunID        string            `json:"runId"`
	Time         time.Time         `json:"time"`
	Ticks        uint64            `json:"ticks"`
	Vehicles     []VehicleSnapshot `json:"vehicles"`
	Queue        []string          `json:"queue"`
	Crossing     string            `json:"crossing,omitempty"`
	SpawnEnabled bool              `json:"spawnEnabled"`
	Spawned      int               `json:"spawned"`
	Exited       int               `json:"exited"`
	Evicted      int               `json:"evicted"`
	Width        float64           `json:"width"`
	Height       float64           `json:"height"`
}

// Snapshot собирает текущее состояние
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		RunID:        s.runID,
		Time:         s.now,
		Ticks:        s.ticks,
		Vehicles:     s.Vehicles(),
		Queue:        s.Queue(),
		Crossing:     s.Crossing(),
		SpawnEnabled: s.spawnEnabled,
		Spawned:      s.spawned,
		Exited:       s.exited,
		Evicted:      s.evicted,
		Width:        s.cfg.Width,
		Height:       s.cfg.Height,
	}
}

func (s *Simulation) notify(fn func(Observer)) {
	for _, o := range s.observers {
		fn(o)
	}
}
