// Command report прогоняет симуляцию без отрисовки и печатает статистику ожидания.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"stopsign-simulation/intersection"
)

// waitStats собирает время стоянки у стоп-линии по направлениям
type waitStats struct {
	intersection.BaseObserver
	now    *time.Time
	waits  map[intersection.Direction][]time.Duration
	maxLen int
}

func newWaitStats(now *time.Time) *waitStats {
	return &waitStats{
		now:   now,
		waits: make(map[intersection.Direction][]time.Duration),
	}
}

func (w *waitStats) OnGrant(v *intersection.Vehicle) {
	a, ok := v.Arrival()
	if !ok {
		return
	}
	w.waits[v.Direction()] = append(w.waits[v.Direction()], w.now.Sub(a.At))
}

// sample фиксирует длину очереди после тика
func (w *waitStats) sample(sim *intersection.Simulation) {
	if n := len(sim.Queue()); n > w.maxLen {
		w.maxLen = n
	}
}

type summary struct {
	count int
	mean  time.Duration
	p95   time.Duration
	max   time.Duration
}

func summarize(waits []time.Duration) summary {
	if len(waits) == 0 {
		return summary{}
	}
	sorted := append([]time.Duration(nil), waits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	return summary{
		count: len(sorted),
		mean:  total / time.Duration(len(sorted)),
		p95:   sorted[(len(sorted)*95+99)/100-1],
		max:   sorted[len(sorted)-1],
	}
}

// run прогоняет симуляцию duration виртуального времени с шагом frame
func run(sim *intersection.Simulation, stats *waitStats, now *time.Time, duration, frame time.Duration) {
	end := now.Add(duration)
	for now.Before(end) {
		*now = now.Add(frame)
		sim.Tick(*now)
		stats.sample(sim)
	}
}

func printReport(out io.Writer, sim *intersection.Simulation, stats *waitStats, duration time.Duration) {
	snap := sim.Snapshot()

	fmt.Fprintln(out, "=== Stop-sign intersection report ===")
	fmt.Fprintf(out, "Run:       %s\n", snap.RunID)
	fmt.Fprintf(out, "Simulated: %s (%d ticks)\n", duration, snap.Ticks)
	fmt.Fprintf(out, "Spawned:   %d  Exited: %d  Evicted: %d  Still live: %d\n",
		snap.Spawned, snap.Exited, snap.Evicted, len(snap.Vehicles))
	fmt.Fprintf(out, "Max queue: %d\n", stats.maxLen)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-6s %6s %10s %10s %10s\n", "dir", "grants", "mean", "p95", "max")
	for _, dir := range intersection.Directions {
		s := summarize(stats.waits[dir])
		fmt.Fprintf(out, "%-6s %6d %10s %10s %10s\n", dir, s.count,
			s.mean.Round(time.Millisecond), s.p95.Round(time.Millisecond), s.max.Round(time.Millisecond))
	}
}

func main() {
	configPath := flag.String("config", "", "JSON-файл конфигурации перекрёстка")
	seed := flag.Int64("seed", 1, "зерно генератора")
	duration := flag.Duration("duration", 5*time.Minute, "виртуальное время прогона")
	frame := flag.Duration("frame", 16*time.Millisecond, "шаг тика")
	flag.Parse()

	cfg, err := intersection.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	now := time.Unix(0, 0).UTC()
	stats := newWaitStats(&now)
	sim, err := intersection.NewSimulation(cfg,
		intersection.WithRand(rand.New(rand.NewSource(*seed))),
		intersection.WithObserver(stats),
	)
	if err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	run(sim, stats, &now, *duration, *frame)
	printReport(os.Stdout, sim, stats, *duration)
}
