package main

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stopsign-simulation/intersection"
)

func TestSummarize(t *testing.T) {
	assert.Equal(t, summary{}, summarize(nil))

	waits := []time.Duration{}
	for i := 20; i >= 1; i-- {
		waits = append(waits, time.Duration(i)*time.Second)
	}
	s := summarize(waits)

	assert.Equal(t, 20, s.count)
	assert.Equal(t, 10500*time.Millisecond, s.mean)
	assert.Equal(t, 19*time.Second, s.p95)
	assert.Equal(t, 20*time.Second, s.max)
	assert.Equal(t, 20*time.Second, waits[0], "input is not reordered")

	one := summarize([]time.Duration{time.Second})
	assert.Equal(t, time.Second, one.p95)
}

func TestRunReport(t *testing.T) {
	now := time.Unix(0, 0).UTC()
	stats := newWaitStats(&now)
	sim, err := intersection.NewSimulation(intersection.DefaultConfig(),
		intersection.WithRand(rand.New(rand.NewSource(3))),
		intersection.WithObserver(stats),
	)
	require.NoError(t, err)

	run(sim, stats, &now, time.Minute, 16*time.Millisecond)

	total := 0
	for _, dir := range intersection.Directions {
		for _, w := range stats.waits[dir] {
			assert.GreaterOrEqual(t, w, 700*time.Millisecond)
		}
		total += len(stats.waits[dir])
	}
	assert.Greater(t, total, 0)
	assert.Greater(t, stats.maxLen, 0)

	var out bytes.Buffer
	printReport(&out, sim, stats, time.Minute)
	assert.Contains(t, out.String(), "=== Stop-sign intersection report ===")
	assert.Contains(t, out.String(), sim.RunID())
	assert.Contains(t, out.String(), "north")
}
