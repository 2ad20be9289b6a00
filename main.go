package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stopsign-simulation/intersection"
)

const (
	TickInterval      = 16 * time.Millisecond // примерно кадр анимации
	BroadcastInterval = 50 * time.Millisecond
)

func main() {
	addr := flag.String("addr", ":8080", "адрес HTTP-сервера")
	configPath := flag.String("config", "", "JSON-файл конфигурации перекрёстка")
	seed := flag.Int64("seed", 0, "зерно генератора, 0 означает текущее время")
	tick := flag.Duration("tick", TickInterval, "период тика симуляции")
	broadcastEvery := flag.Duration("broadcast", BroadcastInterval, "период рассылки состояния")
	verbose := flag.Bool("v", false, "подробный лог событий машин")
	flag.Parse()

	cfg, err := intersection.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	level := intersection.LogInfo
	if *verbose {
		level = intersection.LogDebug
	}

	sim, err := intersection.NewSimulation(cfg,
		intersection.WithRand(rand.New(rand.NewSource(*seed))),
		intersection.WithObserver(intersection.NewLoggingObserver(level, nil)),
	)
	if err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	server := NewServer(sim)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Запускаем цикл симуляции
	go server.simulationLoop(ctx, *tick)

	// Запускаем broadcast
	go server.broadcastLoop(ctx, *broadcastEvery)

	httpServer := &http.Server{Addr: *addr, Handler: server.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("Сервер запущен на http://localhost%s (run %s)", *addr, sim.RunID())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
