package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stopsign-simulation/intersection"
)

const (
	minTimeScale = 0.1
	maxTimeScale = 10.0
)

// client подключённый по websocket клиент. gorilla/websocket допускает
// только одного писателя на соединение.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server держит симуляцию и раздаёт её состояние клиентам
type Server struct {
	mu        sync.RWMutex
	sim       *intersection.Simulation
	running   bool
	timeScale float64
	simTime   time.Time

	upgrader  websocket.Upgrader
	clients   map[*client]bool
	clientsMu sync.RWMutex
}

// NewServer создаёт сервер поверх готовой симуляции. Симуляция сразу запущена.
func NewServer(sim *intersection.Simulation) *Server {
	return &Server{
		sim:       sim,
		running:   true,
		timeScale: 1.0,
		simTime:   time.Unix(0, 0).UTC(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]bool),
	}
}

// Update двигает виртуальные часы на dt с учётом множителя и делает тик
func (s *Server) Update(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.simTime = s.simTime.Add(time.Duration(float64(dt) * s.timeScale))
	s.sim.Tick(s.simTime)
}

// stateMessage то, что получает клиент
type stateMessage struct {
	intersection.Snapshot
	Running   bool    `json:"running"`
	TimeScale float64 `json:"timeScale"`
}

// GetState возвращает текущее состояние симуляции
func (s *Server) GetState() stateMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return stateMessage{
		Snapshot:  s.sim.Snapshot(),
		Running:   s.running,
		TimeScale: s.timeScale,
	}
}

// Start запускает симуляцию
func (s *Server) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

// Stop останавливает симуляцию
func (s *Server) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Reset сбрасывает симуляцию
func (s *Server) Reset() {
	s.mu.Lock()
	s.sim.Reset()
	s.mu.Unlock()
}

// SetSpawnEnabled включает или выключает появление машин
func (s *Server) SetSpawnEnabled(enabled bool) {
	s.mu.Lock()
	s.sim.SetSpawnEnabled(enabled)
	s.mu.Unlock()
}

// SetTimeScale устанавливает скорость времени
func (s *Server) SetTimeScale(scale float64) {
	s.mu.Lock()
	// Ограничиваем значения от 0.1x до 10x
	if scale < minTimeScale {
		scale = minTimeScale
	}
	if scale > maxTimeScale {
		scale = maxTimeScale
	}
	s.timeScale = scale
	s.mu.Unlock()
}

// command команда от клиента
type command struct {
	Action string          `json:"action"`
	Value  json.RawMessage `json:"value,omitempty"`
}

func (s *Server) apply(cmd command) error {
	switch cmd.Action {
	case "start":
		s.Start()
	case "stop":
		s.Stop()
	case "reset":
		s.Reset()
	case "spawn":
		var enabled bool
		if err := json.Unmarshal(cmd.Value, &enabled); err != nil {
			return fmt.Errorf("spawn: %w", err)
		}
		s.SetSpawnEnabled(enabled)
	case "timescale":
		var scale float64
		if err := json.Unmarshal(cmd.Value, &scale); err != nil {
			return fmt.Errorf("timescale: %w", err)
		}
		s.SetTimeScale(scale)
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	return nil
}

// Handlers
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
	}()

	// Отправляем начальное состояние
	data, err := json.Marshal(s.GetState())
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	if err := c.write(data); err != nil {
		return
	}

	// Слушаем команды от клиента
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var cmd command
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}
		if err := s.apply(cmd); err != nil {
			log.Println("command error:", err)
			continue
		}

		// Ответ на команду приходит сразу, не дожидаясь рассылки
		if data, err := json.Marshal(s.GetState()); err == nil {
			c.write(data)
		}
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.GetState()); err != nil {
		log.Println("JSON encode error:", err)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// broadcast отправляет состояние всем подключенным клиентам
func (s *Server) broadcast() {
	data, err := json.Marshal(s.GetState())
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	var failed []*client
	s.clientsMu.RLock()
	for c := range s.clients {
		if err := c.write(data); err != nil {
			log.Println("WebSocket write error:", err)
			failed = append(failed, c)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) == 0 {
		return
	}
	s.clientsMu.Lock()
	for _, c := range failed {
		c.conn.Close()
		delete(s.clients, c)
	}
	s.clientsMu.Unlock()
}

// broadcastLoop периодическая рассылка состояния
func (s *Server) broadcastLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcast()
		}
	}
}

// simulationLoop главный цикл симуляции
func (s *Server) simulationLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Update(interval)
		}
	}
}
