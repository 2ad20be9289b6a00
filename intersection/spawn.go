package intersection

// lanes живые машины по направлениям в порядке появления
type lanes map[Direction][]*Vehicle

func (l lanes) add(v *Vehicle) {
	l[v.dir] = append(l[v.dir], v)
}

func (l lanes) rebuild(registry []*Vehicle) {
	for _, dir := range Directions {
		l[dir] = l[dir][:0]
	}
	for _, v := range registry {
		l.add(v)
	}
}

// SpawnController не даёт новой машине появиться поверх уже едущей
type SpawnController struct {
	geometry  Geometry
	clearance float64
	lanes     lanes
}

func newSpawnController(g Geometry, clearance float64, l lanes) *SpawnController {
	return &SpawnController{geometry: g, clearance: clearance, lanes: l}
}

// CanSpawn разрешает появление, если в полосе нет машин или ближайшая
// к точке появления отъехала дальше clearance. Уехавшие машины не учитываются.
func (c *SpawnController) CanSpawn(dir Direction) bool {
	_, dist, ok := c.nearest(dir)
	return !ok || dist > c.clearance
}

// nearest машина полосы с наименьшим пройденным от точки появления путём
func (c *SpawnController) nearest(dir Direction) (*Vehicle, float64, bool) {
	spawn := c.geometry.Spawn(dir)

	var (
		best     *Vehicle
		bestDist float64
	)
	for _, v := range c.lanes[dir] {
		if v.state == Exited {
			continue
		}
		d := v.progressFrom(spawn)
		if best == nil || d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, bestDist, best != nil
}
