package intersection

import "fmt"

// Direction направление движения машины
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions фиксированный порядок обхода направлений
var Directions = [4]Direction{North, South, East, West}

// Vector единичный вектор движения
type Vector struct {
	X float64
	Y float64
}

// Vector возвращает направление движения. Ось Y холста направлена вниз,
// поэтому машина на север уменьшает y.
func (d Direction) Vector() Vector {
	switch d {
	case North:
		return Vector{0, -1}
	case South:
		return Vector{0, 1}
	case East:
		return Vector{1, 0}
	case West:
		return Vector{-1, 0}
	}
	return Vector{}
}

// Valid сообщает, известно ли направление
func (d Direction) Valid() bool {
	return d.Vector() != Vector{}
}

// Initial заглавная буква направления для подписей
func (d Direction) Initial() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	}
	return "?"
}

// ParseDirection разбирает имя направления
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// Rect прямоугольник: левый верхний угол и размеры
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center центр прямоугольника
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Contains проверяет точку, границы включительно
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Overlaps пересекаются ли прямоугольники по внутренности
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Geometry производные константы перекрёстка. Вычисляется один раз
// из Config и далее только читается.
type Geometry struct {
	CenterX float64
	CenterY float64

	// Footprint квадрат перекрёстка
	Footprint Rect
	// Bounds видимая область; машины удаляются за её пределами с отступом
	Bounds Rect
	Margin float64

	stopLines map[Direction]float64
	spawns    map[Direction]Rect
}

// NewGeometry строит геометрию по конфигурации
func NewGeometry(cfg Config) (Geometry, error) {
	if err := cfg.Validate(); err != nil {
		return Geometry{}, err
	}

	cx, cy := cfg.Width/2, cfg.Height/2
	half := cfg.IntersectionHalf
	reach := half + cfg.StopLineClearance

	g := Geometry{
		CenterX:   cx,
		CenterY:   cy,
		Footprint: Rect{X: cx - half, Y: cy - half, W: 2 * half, H: 2 * half},
		Bounds:    Rect{X: 0, Y: 0, W: cfg.Width, H: cfg.Height},
		Margin:    cfg.OutOfBoundsMargin,
		stopLines: map[Direction]float64{
			North: cy + reach,
			South: cy - reach,
			East:  cx - reach,
			West:  cx + reach,
		},
	}

	lane, length := cfg.LaneWidth, cfg.VehicleLength
	off := cfg.SpawnOffset
	g.spawns = map[Direction]Rect{
		North: {X: cx - cfg.LaneOffset - lane/2, Y: cfg.Height + off, W: lane, H: length},
		South: {X: cx + cfg.LaneOffset - lane/2, Y: -off, W: lane, H: length},
		East:  {X: -off, Y: cy - cfg.LaneOffset - lane/2, W: length, H: lane},
		West:  {X: cfg.Width + off, Y: cy + cfg.LaneOffset - lane/2, W: length, H: lane},
	}

	return g, nil
}

// StopLine координата стоп-линии: y для north/south, x для east/west
func (g Geometry) StopLine(d Direction) float64 {
	return g.stopLines[d]
}

// Spawn прямоугольник появления машины
func (g Geometry) Spawn(d Direction) Rect {
	return g.spawns[d]
}

// InFootprint лежит ли точка внутри перекрёстка
func (g Geometry) InFootprint(x, y float64) bool {
	return g.Footprint.Contains(x, y)
}

// OutOfBounds покинула ли точка видимую область больше чем на отступ
func (g Geometry) OutOfBounds(x, y float64) bool {
	return x <= g.Bounds.X-g.Margin ||
		x >= g.Bounds.X+g.Bounds.W+g.Margin ||
		y <= g.Bounds.Y-g.Margin ||
		y >= g.Bounds.Y+g.Bounds.H+g.Margin
}
