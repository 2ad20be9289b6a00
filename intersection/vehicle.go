package intersection

import (
	"fmt"
	"time"
)

// State этап жизни машины
type State int

const (
	// Approaching едет к стоп-линии
	Approaching State = iota
	// Queued стоит у стоп-линии и ждёт разрешения
	Queued
	// Crossing проезжает перекрёсток
	Crossing
	// Exited покинула перекрёсток, едет до края области
	Exited
)

func (s State) String() string {
	switch s {
	case Approaching:
		return "approaching"
	case Queued:
		return "queued"
	case Crossing:
		return "crossing"
	case Exited:
		return "exited"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText для JSON-снимков
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText разбирает имя состояния
func (s *State) UnmarshalText(text []byte) error {
	for st := Approaching; st <= Exited; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown vehicle state %q", text)
}

// Arrival момент остановки у стоп-линии. Назначается один раз.
type Arrival struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`
}

var palette = []string{"#2f80ed", "#eb5757", "#f2c94c", "#27ae60", "#9b51e0"}

// Vehicle машина. Позиция задаёт левый верхний угол габарита;
// передний край вычисляется по направлению движения.
type Vehicle struct {
	id    uint64
	dir   Direction
	box   Rect
	speed float64
	state State

	// arrival nil ровно пока машина в Approaching
	arrival *Arrival
	// entered защёлка: центр машины побывал внутри перекрёстка
	entered bool
}

func newVehicle(id uint64, dir Direction, spawn Rect, speed float64) *Vehicle {
	return &Vehicle{
		id:    id,
		dir:   dir,
		box:   spawn,
		speed: speed,
		state: Approaching,
	}
}

func (v *Vehicle) ID() uint64           { return v.id }
func (v *Vehicle) Direction() Direction { return v.dir }
func (v *Vehicle) Box() Rect            { return v.box }
func (v *Vehicle) Speed() float64       { return v.speed }
func (v *Vehicle) State() State         { return v.state }
func (v *Vehicle) Entered() bool        { return v.entered }

// Arrival возвращает данные остановки, если машина уже останавливалась
func (v *Vehicle) Arrival() (Arrival, bool) {
	if v.arrival == nil {
		return Arrival{}, false
	}
	return *v.arrival, true
}

// Label подпись вида N7
func (v *Vehicle) Label() string {
	return fmt.Sprintf("%s%d", v.dir.Initial(), v.id)
}

// Color цвет для отрисовки
func (v *Vehicle) Color() string {
	return palette[v.id%uint64(len(palette))]
}

// Center центр габарита
func (v *Vehicle) Center() (float64, float64) {
	return v.box.Center()
}

// LeadingEdge координата переднего края вдоль оси движения
func (v *Vehicle) LeadingEdge() float64 {
	switch v.dir {
	case North:
		return v.box.Y
	case South:
		return v.box.Y + v.box.H
	case East:
		return v.box.X + v.box.W
	default:
		return v.box.X
	}
}

// progressFrom путь, пройденный от точки появления вдоль направления
func (v *Vehicle) progressFrom(spawn Rect) float64 {
	vec := v.dir.Vector()
	return (v.box.X-spawn.X)*vec.X + (v.box.Y-spawn.Y)*vec.Y
}

func (v *Vehicle) move() {
	vec := v.dir.Vector()
	v.box.X += v.speed * vec.X
	v.box.Y += v.speed * vec.Y
}

func (v *Vehicle) reachedStopLine(g Geometry) bool {
	line := g.StopLine(v.dir)
	edge := v.LeadingEdge()
	switch v.dir {
	case North, West:
		return edge <= line
	default:
		return edge >= line
	}
}

// clampToStopLine ставит передний край точно на линию. Торможение мгновенное.
func (v *Vehicle) clampToStopLine(g Geometry) {
	line := g.StopLine(v.dir)
	switch v.dir {
	case North:
		v.box.Y = line
	case South:
		v.box.Y = line - v.box.H
	case East:
		v.box.X = line - v.box.W
	case West:
		v.box.X = line
	}
}

// advance один шаг автомата. Возвращает true, если сменилось состояние.
func (v *Vehicle) advance(now time.Time, g Geometry, arb *Arbiter) bool {
	switch v.state {
	case Approaching:
		v.move()
		if !v.reachedStopLine(g) {
			return false
		}
		v.clampToStopLine(g)
		seq := arb.Arrive(v.id, now)
		v.arrival = &Arrival{Seq: seq, At: now}
		v.state = Queued
		return true

	case Queued:
		if !arb.RequestCrossing(v, now) {
			return false
		}
		v.state = Crossing
		return true

	case Crossing:
		v.move()
		if g.InFootprint(v.Center()) {
			v.entered = true
			return false
		}
		if !v.entered {
			return false
		}
		v.state = Exited
		arb.Release(v.id)
		return true

	default:
		v.move()
		return false
	}
}

// VehicleSnapshot копия состояния машины для отрисовки
type VehicleSnapshot struct {
	ID        uint64    `json:"id"`
	Label     string    `json:"label"`
	Direction Direction `json:"direction"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	W         float64   `json:"w"`
	H         float64   `json:"h"`
	Speed     float64   `json:"speed"`
	State     State     `json:"state"`
	Arrival   *Arrival  `json:"arrival,omitempty"`
	Entered   bool      `json:"entered"`
	Color     string    `json:"color"`
}

// Snapshot копирует состояние машины
func (v *Vehicle) Snapshot() VehicleSnapshot {
	s := VehicleSnapshot{
		ID:        v.id,
		Label:     v.Label(),
		Direction: v.dir,
		X:         v.box.X,
		Y:         v.box.Y,
		W:         v.box.W,
		H:         v.box.H,
		Speed:     v.speed,
		State:     v.state,
		Entered:   v.entered,
		Color:     v.Color(),
	}
	if v.arrival != nil {
		a := *v.arrival
		s.Arrival = &a
	}
	return s
}
