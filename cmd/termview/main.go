// Command termview показывает перекрёсток в терминале и управляет им с клавиатуры.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"stopsign-simulation/intersection"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

type viewer struct {
	screen tcell.Screen
	sim    *intersection.Simulation
	paused bool
}

// handleInput возвращает false, когда пора выходить
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) handleKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC {
		return false
	}
	if key != tcell.KeyRune {
		return true
	}
	switch r {
	case 'q':
		return false
	case ' ':
		v.sim.SetSpawnEnabled(!v.sim.SpawnEnabled())
	case 'r':
		v.sim.Reset()
	case 'p':
		v.paused = !v.paused
	case 'n', 's', 'e', 'w':
		v.spawnKey(r)
	}
	return true
}

// spawnKey ручное появление машины: n, s, e, w
func (v *viewer) spawnKey(r rune) {
	dirs := map[rune]intersection.Direction{
		'n': intersection.North,
		's': intersection.South,
		'e': intersection.East,
		'w': intersection.West,
	}
	v.sim.Spawn(dirs[r])
}

func (v *viewer) frame(now time.Time) {
	if !v.paused {
		v.sim.Tick(now)
	}
	draw(v.screen, v.sim.Config(), v.sim.Geometry(), v.sim.Snapshot(), v.paused)
	v.screen.Show()
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if ev == nil || !v.handleInput(ev) {
				return
			}
		case now := <-ticker.C:
			v.frame(now)
		}
	}
}

func main() {
	configPath := flag.String("config", "", "JSON-файл конфигурации перекрёстка")
	seed := flag.Int64("seed", time.Now().UnixNano(), "зерно генератора")
	sound := flag.Bool("sound", false, "звуковой сигнал при проезде")
	flag.Parse()

	cfg, err := intersection.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	opts := []intersection.Option{intersection.WithRand(rand.New(rand.NewSource(*seed)))}
	if *sound {
		c, err := newChime()
		if err != nil {
			// Без звука тоже можно работать
			log.Printf("Audio initialization failed: %v", err)
		} else {
			defer c.Close()
			opts = append(opts, intersection.WithObserver(c))
		}
	}

	sim, err := intersection.NewSimulation(cfg, opts...)
	if err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	(&viewer{screen: screen, sim: sim}).run()
}
