package intersection

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config конфигурация перекрёстка. Все размеры в пикселях холста,
// скорость в пикселях за тик, интервалы в миллисекундах.
type Config struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	RoadWidth         float64 `json:"roadWidth"`
	LaneOffset        float64 `json:"laneOffset"`        // от оси дороги до разметки полосы
	LaneWidth         float64 `json:"laneWidth"`         // ширина машины поперёк полосы
	VehicleLength     float64 `json:"vehicleLength"`     // длина машины вдоль полосы
	IntersectionHalf  float64 `json:"intersectionHalf"`  // половина стороны квадрата перекрёстка
	StopLineClearance float64 `json:"stopLineClearance"` // отступ стоп-линии от перекрёстка

	BaseSpeed float64 `json:"baseSpeed"`
	MinStopMs float64 `json:"minStopMs"`

	SpawnIntervalMs  float64               `json:"spawnIntervalMs"`
	SpawnProbability map[Direction]float64 `json:"spawnProbability"`
	SpawnClearance   float64               `json:"spawnClearance"`
	SpawnOffset      float64               `json:"spawnOffset"` // насколько за краем холста появляется машина

	OutOfBoundsMargin float64 `json:"outOfBoundsMargin"`
}

// DefaultConfig возвращает параметры исходной демонстрации
func DefaultConfig() Config {
	return Config{
		Width:             760,
		Height:            760,
		RoadWidth:         220,
		LaneOffset:        34,
		LaneWidth:         24,
		VehicleLength:     46,
		IntersectionHalf:  70,
		StopLineClearance: 12,
		BaseSpeed:         2.2,
		MinStopMs:         700,
		SpawnIntervalMs:   1400,
		SpawnProbability: map[Direction]float64{
			North: 0.45,
			South: 0.45,
			East:  0.45,
			West:  0.45,
		},
		SpawnClearance:    92,
		SpawnOffset:       70,
		OutOfBoundsMargin: 120,
	}
}

// MinStop минимальное время стоянки у стоп-линии
func (c Config) MinStop() time.Duration {
	return msToDuration(c.MinStopMs)
}

// SpawnInterval период попыток появления машин
func (c Config) SpawnInterval() time.Duration {
	return msToDuration(c.SpawnIntervalMs)
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// Validate проверяет конфигурацию. Ошибка здесь фатальна для запуска:
// без неё положение стоп-линий не определено.
func (c Config) Validate() error {
	positive := []struct {
		field string
		value float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"roadWidth", c.RoadWidth},
		{"laneWidth", c.LaneWidth},
		{"vehicleLength", c.VehicleLength},
		{"intersectionHalf", c.IntersectionHalf},
		{"stopLineClearance", c.StopLineClearance},
		{"baseSpeed", c.BaseSpeed},
		{"spawnIntervalMs", c.SpawnIntervalMs},
		{"spawnClearance", c.SpawnClearance},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return newNonPositiveError(p.field, p.value)
		}
	}

	if c.MinStopMs < 0 {
		return newOutOfRangeError("minStopMs", c.MinStopMs, 0, 1e9)
	}
	if c.LaneOffset < 0 {
		return newOutOfRangeError("laneOffset", c.LaneOffset, 0, c.RoadWidth/2)
	}
	if c.SpawnOffset < 0 {
		return newOutOfRangeError("spawnOffset", c.SpawnOffset, 0, c.OutOfBoundsMargin)
	}
	if c.OutOfBoundsMargin < 0 {
		return newOutOfRangeError("outOfBoundsMargin", c.OutOfBoundsMargin, 0, 1e9)
	}

	for _, dir := range Directions {
		p := c.SpawnProbability[dir]
		if p < 0 || p > 1 {
			return newOutOfRangeError("spawnProbability."+string(dir), p, 0, 1)
		}
	}

	if c.LaneOffset+c.LaneWidth/2 > c.RoadWidth/2 {
		return newGeometryError("laneOffset", "lane edge %g exceeds half road width %g",
			c.LaneOffset+c.LaneWidth/2, c.RoadWidth/2)
	}
	if c.LaneOffset+c.LaneWidth/2 > c.IntersectionHalf {
		return newGeometryError("intersectionHalf", "lane edge %g lies outside the intersection half %g",
			c.LaneOffset+c.LaneWidth/2, c.IntersectionHalf)
	}

	reach := c.IntersectionHalf + c.StopLineClearance
	if reach >= c.Width/2 || reach >= c.Height/2 {
		return newGeometryError("stopLineClearance", "stop lines at %g from centre do not fit a %gx%g area",
			reach, c.Width, c.Height)
	}
	if c.SpawnClearance < c.VehicleLength {
		return newGeometryError("spawnClearance", "clearance %g is shorter than a vehicle (%g)",
			c.SpawnClearance, c.VehicleLength)
	}
	// Машина должна появляться внутри зоны жизни, иначе её сразу удалит проверка границ.
	if c.SpawnOffset >= c.OutOfBoundsMargin {
		return newGeometryError("spawnOffset", "spawn offset %g is not inside the eviction margin %g",
			c.SpawnOffset, c.OutOfBoundsMargin)
	}

	return nil
}

// LoadConfig читает JSON поверх конфигурации по умолчанию.
// Пустой путь означает конфигурацию по умолчанию.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
