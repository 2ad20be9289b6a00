package intersection

import (
	"log"
	"os"
	"sync"
)

// Observer получает события жизненного цикла машин.
// Вызывается из Tick синхронно, в порядке обхода машин.
type Observer interface {
	OnSpawn(v *Vehicle)
	OnArrive(v *Vehicle)
	OnGrant(v *Vehicle)
	OnExit(v *Vehicle)
	OnEvict(v *Vehicle)
	OnReset(runID string)
}

// BaseObserver пустая реализация для встраивания
type BaseObserver struct{}

func (BaseObserver) OnSpawn(v *Vehicle)   {}
func (BaseObserver) OnArrive(v *Vehicle)  {}
func (BaseObserver) OnGrant(v *Vehicle)   {}
func (BaseObserver) OnExit(v *Vehicle)    {}
func (BaseObserver) OnEvict(v *Vehicle)   {}
func (BaseObserver) OnReset(runID string) {}

// LogLevel уровень подробности LoggingObserver
type LogLevel int

const (
	// LogInfo проезды и сбросы
	LogInfo LogLevel = iota
	// LogDebug все события, включая появление и удаление
	LogDebug
)

// LoggingObserver пишет события в log.Logger
type LoggingObserver struct {
	level  LogLevel
	logger *log.Logger
	mu     sync.Mutex
}

// NewLoggingObserver создаёт наблюдателя; nil logger пишет в stderr
func NewLoggingObserver(level LogLevel, logger *log.Logger) *LoggingObserver {
	if logger == nil {
		logger = log.New(os.Stderr, "[intersection] ", log.LstdFlags)
	}
	return &LoggingObserver{level: level, logger: logger}
}

func (o *LoggingObserver) logf(level LogLevel, format string, args ...interface{}) {
	if level > o.level {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logger.Printf(format, args...)
}

func (o *LoggingObserver) OnSpawn(v *Vehicle) {
	o.logf(LogDebug, "spawn %s at (%.1f, %.1f)", v.Label(), v.box.X, v.box.Y)
}

func (o *LoggingObserver) OnArrive(v *Vehicle) {
	a, _ := v.Arrival()
	o.logf(LogDebug, "arrive %s seq=%d", v.Label(), a.Seq)
}

func (o *LoggingObserver) OnGrant(v *Vehicle) {
	a, _ := v.Arrival()
	o.logf(LogInfo, "grant %s seq=%d", v.Label(), a.Seq)
}

func (o *LoggingObserver) OnExit(v *Vehicle) {
	o.logf(LogInfo, "exit %s", v.Label())
}

func (o *LoggingObserver) OnEvict(v *Vehicle) {
	o.logf(LogDebug, "evict %s", v.Label())
}

func (o *LoggingObserver) OnReset(runID string) {
	o.logf(LogInfo, "reset, run %s", runID)
}
