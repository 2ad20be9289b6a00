package intersection

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// frame шаг часов в тестах, примерно 60 кадров в секунду
const frame = 16 * time.Millisecond

var epoch = time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)

// quietConfig конфигурация без случайного появления машин
func quietConfig() Config {
	cfg := DefaultConfig()
	for _, dir := range Directions {
		cfg.SpawnProbability[dir] = 0
	}
	return cfg
}

func newTestSimulation(t *testing.T, cfg Config, opts ...Option) *Simulation {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	sim, err := NewSimulation(cfg, opts...)
	require.NoError(t, err)
	return sim
}

// clock ручные часы симуляции
type clock struct {
	now time.Time
}

func newClock() *clock {
	return &clock{now: epoch}
}

func (c *clock) tick(sim *Simulation) {
	c.now = c.now.Add(frame)
	sim.Tick(c.now)
}

func (c *clock) ticks(sim *Simulation, n int) {
	for i := 0; i < n; i++ {
		c.tick(sim)
	}
}

// tickUntil крутит симуляцию, пока cond не станет истинным
func (c *clock) tickUntil(t *testing.T, sim *Simulation, limit int, cond func() bool) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		c.tick(sim)
		if cond() {
			return i
		}
	}
	t.Fatalf("condition not reached after %d ticks", limit)
	return 0
}

func countInState(sim *Simulation, st State) int {
	n := 0
	for _, v := range sim.vehicles {
		if v.state == st {
			n++
		}
	}
	return n
}

// queuedVehicle машина, уже стоящая в очереди арбитра
func queuedVehicle(a *Arbiter, id uint64, dir Direction, now time.Time) *Vehicle {
	v := newVehicle(id, dir, Rect{W: 24, H: 46}, 1)
	seq := a.Arrive(id, now)
	v.arrival = &Arrival{Seq: seq, At: now}
	v.state = Queued
	return v
}

type lifecycleEvent struct {
	label string
	dir   Direction
	seq   uint64
	at    time.Time
}

// recorder запоминает события вместе с временем часов
type recorder struct {
	BaseObserver
	clock    *clock
	spawns   []lifecycleEvent
	arrivals []lifecycleEvent
	grants   []lifecycleEvent
	exits    []lifecycleEvent
	resets   []string
}

func (r *recorder) event(v *Vehicle) lifecycleEvent {
	a, _ := v.Arrival()
	return lifecycleEvent{label: v.Label(), dir: v.Direction(), seq: a.Seq, at: r.clock.now}
}

func (r *recorder) OnSpawn(v *Vehicle)   { r.spawns = append(r.spawns, r.event(v)) }
func (r *recorder) OnArrive(v *Vehicle)  { r.arrivals = append(r.arrivals, r.event(v)) }
func (r *recorder) OnGrant(v *Vehicle)   { r.grants = append(r.grants, r.event(v)) }
func (r *recorder) OnExit(v *Vehicle)    { r.exits = append(r.exits, r.event(v)) }
func (r *recorder) OnReset(runID string) { r.resets = append(r.resets, runID) }
