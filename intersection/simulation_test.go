package intersection

import (
	"bytes"
	"log"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourWayArrivalOrder(t *testing.T) {
	c := newClock()
	rec := &recorder{clock: c}
	sim := newTestSimulation(t, quietConfig(), WithObserver(rec))

	// North и West стартуют дальше от стоп-линии, чем South и East,
	// поэтому прибытие N, E, S, W получается сдвигом появления.
	sim.Spawn(North)
	c.ticks(sim, 30)
	sim.Spawn(East)
	sim.Spawn(West)
	c.ticks(sim, 10)
	sim.Spawn(South)

	c.tickUntil(t, sim, 3000, func() bool {
		require.LessOrEqual(t, countInState(sim, Crossing), 1)
		return len(rec.exits) == 4
	})

	require.Len(t, rec.arrivals, 4)
	require.Len(t, rec.grants, 4)
	wantOrder := []Direction{North, East, South, West}
	for i, dir := range wantOrder {
		assert.Equal(t, dir, rec.arrivals[i].dir)
		assert.Equal(t, uint64(i+1), rec.arrivals[i].seq)
		assert.Equal(t, dir, rec.grants[i].dir, "grant %d", i)
	}

	// все четыре машины встали в пределах окна ожидания друг друга
	assert.Less(t, rec.arrivals[3].at.Sub(rec.arrivals[0].at), dwell)

	for i, g := range rec.grants {
		assert.GreaterOrEqual(t, g.at.Sub(rec.arrivals[i].at), dwell, "dwell for %s", g.label)
		if i > 0 {
			assert.False(t, g.at.Before(rec.exits[i-1].at), "%s granted before %s exited", g.label, rec.exits[i-1].label)
		}
	}
}

func TestMutualExclusionUnderRandomTraffic(t *testing.T) {
	cfg := DefaultConfig()
	sim := newTestSimulation(t, cfg, WithRand(rand.New(rand.NewSource(42))))
	c := newClock()

	entered := map[uint64]bool{}
	granted := []uint64{}
	for i := 0; i < 20000; i++ {
		c.tick(sim)
		crossing := 0
		for _, v := range sim.vehicles {
			if v.state == Crossing {
				crossing++
				if len(granted) == 0 || granted[len(granted)-1] != v.id {
					granted = append(granted, v.id)
				}
			}
			if entered[v.id] {
				require.True(t, v.entered, "latch cleared on %s", v.Label())
			}
			entered[v.id] = v.entered
		}
		require.LessOrEqual(t, crossing, 1, "tick %d", i)
	}

	assert.Greater(t, len(granted), 10, "traffic flows")
}

func TestGrantsFollowArrivalSequence(t *testing.T) {
	c := newClock()
	rec := &recorder{clock: c}
	sim := newTestSimulation(t, DefaultConfig(), WithRand(rand.New(rand.NewSource(7))), WithObserver(rec))

	c.ticks(sim, 20000)

	require.NotEmpty(t, rec.grants)
	for i := 1; i < len(rec.grants); i++ {
		assert.Greater(t, rec.grants[i].seq, rec.grants[i-1].seq)
	}
	for _, g := range rec.grants {
		assert.NotZero(t, g.seq)
	}
}

func TestSpawnAttemptsFollowInterval(t *testing.T) {
	cfg := DefaultConfig()
	for _, dir := range Directions {
		cfg.SpawnProbability[dir] = 1
	}
	sim := newTestSimulation(t, cfg)
	c := newClock()

	c.tick(sim)
	assert.Empty(t, sim.Vehicles(), "first tick only starts the spawn timer")

	// 1400 мс / 16 мс = 87.5 кадра
	c.ticks(sim, 86)
	assert.Empty(t, sim.Vehicles())
	c.tick(sim)
	c.tick(sim)
	assert.Len(t, sim.Vehicles(), 4)
}

func TestSpawnDisabled(t *testing.T) {
	cfg := DefaultConfig()
	for _, dir := range Directions {
		cfg.SpawnProbability[dir] = 1
	}
	sim := newTestSimulation(t, cfg)
	c := newClock()

	sim.SetSpawnEnabled(false)
	assert.False(t, sim.SpawnEnabled())
	c.ticks(sim, 500)
	assert.Empty(t, sim.Vehicles())

	sim.SetSpawnEnabled(true)
	c.ticks(sim, 100)
	assert.NotEmpty(t, sim.Vehicles())
}

func TestResetGivesFreshIdentity(t *testing.T) {
	c := newClock()
	rec := &recorder{clock: c}
	sim := newTestSimulation(t, quietConfig(), WithObserver(rec))
	oldRun := sim.RunID()

	// East доезжает до стоп-линии раньше North
	first, _ := sim.Spawn(East)
	second, _ := sim.Spawn(North)
	c.tickUntil(t, sim, 1000, func() bool { return sim.Crossing() != "" })
	require.Equal(t, first.Label(), sim.Crossing())
	require.Equal(t, []string{second.Label()}, sim.Queue())

	sim.Reset()

	assert.Empty(t, sim.Vehicles())
	assert.Empty(t, sim.Queue())
	assert.Equal(t, "", sim.Crossing())
	_, occupied := sim.Arbiter().Occupant()
	assert.False(t, occupied)
	assert.NotEqual(t, oldRun, sim.RunID())
	assert.Equal(t, []string{sim.RunID()}, rec.resets)

	fresh, ok := sim.Spawn(North)
	require.True(t, ok)
	assert.Greater(t, fresh.ID(), second.ID())

	c.tickUntil(t, sim, 1000, func() bool { return fresh.State() == Queued })
	a, _ := fresh.Arrival()
	assert.Equal(t, uint64(1), a.Seq, "arrival counter restarts")

	c.tickUntil(t, sim, 1000, func() bool { return fresh.State() == Crossing })
}

func TestSnapshot(t *testing.T) {
	sim := newTestSimulation(t, quietConfig())
	c := newClock()

	sim.Spawn(South)
	c.ticks(sim, 3)
	snap := sim.Snapshot()

	assert.Equal(t, sim.RunID(), snap.RunID)
	assert.Equal(t, c.now, snap.Time)
	assert.Equal(t, uint64(3), snap.Ticks)
	assert.Equal(t, 1, snap.Spawned)
	assert.True(t, snap.SpawnEnabled)
	require.Len(t, snap.Vehicles, 1)
	assert.Equal(t, "S1", snap.Vehicles[0].Label)
	assert.Equal(t, Approaching, snap.Vehicles[0].State)
	assert.Nil(t, snap.Vehicles[0].Arrival)
	assert.InDelta(t, -70+3*2.2, snap.Vehicles[0].Y, 1e-9)
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	sim := newTestSimulation(t, quietConfig(), WithObserver(NewLoggingObserver(LogInfo, logger)))
	c := newClock()

	sim.Spawn(West)
	c.tickUntil(t, sim, 1000, func() bool { return sim.Snapshot().Exited == 1 })
	sim.Reset()

	out := buf.String()
	assert.Contains(t, out, "grant W1 seq=1")
	assert.Contains(t, out, "exit W1")
	assert.Contains(t, out, "reset, run "+sim.RunID())
	assert.NotContains(t, out, "spawn W1", "spawns are debug level")
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []VehicleSnapshot {
		sim := newTestSimulation(t, DefaultConfig(), WithRand(rand.New(rand.NewSource(99))))
		now := epoch
		for i := 0; i < 2000; i++ {
			now = now.Add(frame)
			sim.Tick(now)
		}
		return sim.Vehicles()
	}

	assert.Equal(t, run(), run())
}

func TestStalledOccupantBlocksEveryone(t *testing.T) {
	sim := newTestSimulation(t, quietConfig())
	c := newClock()

	blocker, _ := sim.Spawn(North)
	c.tickUntil(t, sim, 1000, func() bool { return blocker.State() == Crossing })
	blocker.speed = 0

	waiting, _ := sim.Spawn(East)
	c.ticks(sim, 2000)

	assert.Equal(t, Crossing, blocker.State())
	assert.Equal(t, Queued, waiting.State())
}
