package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"stopsign-simulation/intersection"
)

// hudRows строки сверху под текст
const hudRows = 2

var (
	styleGround   = tcell.StyleDefault.Background(tcell.NewRGBColor(0xe6, 0xed, 0xf5))
	styleRoad     = tcell.StyleDefault.Background(tcell.NewRGBColor(0x2b, 0x2b, 0x2b))
	styleLane     = styleRoad.Foreground(tcell.NewRGBColor(0xf0, 0xd8, 0x4c))
	styleStopLine = styleRoad.Foreground(tcell.ColorWhite).Bold(true)
	styleHud      = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x1f, 0x29, 0x37)).Background(tcell.ColorWhite)
)

// canvas переводит координаты холста симуляции в клетки терминала
type canvas struct {
	cfg      intersection.Config
	geometry intersection.Geometry
	cols     int
	rows     int
}

func newCanvas(cfg intersection.Config, g intersection.Geometry, width, height int) canvas {
	rows := height - hudRows
	if rows < 1 {
		rows = 1
	}
	return canvas{cfg: cfg, geometry: g, cols: width, rows: rows}
}

// point центр клетки в координатах холста
func (c canvas) point(col, row int) (float64, float64) {
	x := (float64(col) + 0.5) * c.cfg.Width / float64(c.cols)
	y := (float64(row) + 0.5) * c.cfg.Height / float64(c.rows)
	return x, y
}

// cells диапазон клеток, покрываемых прямоугольником
func (c canvas) cells(r intersection.Rect) (col0, row0, col1, row1 int) {
	cols, rows := float64(c.cols), float64(c.rows)
	col0 = int(math.Floor(r.X * cols / c.cfg.Width))
	row0 = int(math.Floor(r.Y * rows / c.cfg.Height))
	col1 = int(math.Ceil((r.X+r.W)*cols/c.cfg.Width)) - 1
	row1 = int(math.Ceil((r.Y+r.H)*rows/c.cfg.Height)) - 1
	if col1 < col0 {
		col1 = col0
	}
	if row1 < row0 {
		row1 = row0
	}
	return
}

func (c canvas) cellOf(x, y float64) (int, int) {
	return int(x * float64(c.cols) / c.cfg.Width), int(y * float64(c.rows) / c.cfg.Height)
}

func (c canvas) set(screen tcell.Screen, col, row int, r rune, style tcell.Style) {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	screen.SetContent(col, row+hudRows, r, nil, style)
}

func (c canvas) drawRoads(screen tcell.Screen) {
	half := c.cfg.RoadWidth / 2
	cx, cy := c.geometry.CenterX, c.geometry.CenterY

	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			x, y := c.point(col, row)
			style := styleGround
			if math.Abs(x-cx) <= half || math.Abs(y-cy) <= half {
				style = styleRoad
			}
			c.set(screen, col, row, ' ', style)
		}
	}

	// Разметка полос пунктиром, кроме самого перекрёстка
	for _, off := range []float64{-c.cfg.LaneOffset, c.cfg.LaneOffset} {
		laneCol, _ := c.cellOf(cx+off, 0)
		_, laneRow := c.cellOf(0, cy+off)
		for row := 0; row < c.rows; row += 2 {
			if _, y := c.point(laneCol, row); !c.geometry.InFootprint(cx, y) {
				c.set(screen, laneCol, row, '¦', styleLane)
			}
		}
		for col := 0; col < c.cols; col += 3 {
			if x, _ := c.point(col, laneRow); !c.geometry.InFootprint(x, cy) {
				c.set(screen, col, laneRow, '-', styleLane)
			}
		}
	}
}

func (c canvas) drawStopLines(screen tcell.Screen) {
	half := c.cfg.RoadWidth / 2
	cx, cy := c.geometry.CenterX, c.geometry.CenterY

	for _, dir := range []intersection.Direction{intersection.North, intersection.South} {
		line := c.geometry.StopLine(dir)
		col0, row := c.cellOf(cx-half, line)
		col1, _ := c.cellOf(cx+half, line)
		for col := col0; col < col1; col++ {
			c.set(screen, col, row, '─', styleStopLine)
		}
	}
	for _, dir := range []intersection.Direction{intersection.East, intersection.West} {
		line := c.geometry.StopLine(dir)
		col, row0 := c.cellOf(line, cy-half)
		_, row1 := c.cellOf(line, cy+half)
		for row := row0; row < row1; row++ {
			c.set(screen, col, row, '│', styleStopLine)
		}
	}
}

func (c canvas) drawVehicles(screen tcell.Screen, vehicles []intersection.VehicleSnapshot) {
	for _, v := range vehicles {
		color := tcell.GetColor(v.Color)
		style := tcell.StyleDefault.Background(color).Foreground(tcell.ColorBlack)
		col0, row0, col1, row1 := c.cells(intersection.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H})
		for row := row0; row <= row1; row++ {
			for col := col0; col <= col1; col++ {
				c.set(screen, col, row, ' ', style)
			}
		}
		// Подпись пишем по длинной стороне машины
		label := []rune(v.Label)
		for i, r := range label {
			if v.W >= v.H {
				if col0+i > col1 {
					break
				}
				c.set(screen, col0+i, row0, r, style)
			} else {
				if row0+i > row1 {
					break
				}
				c.set(screen, col0, row0+i, r, style)
			}
		}
	}
}

// hudLines текст панели над перекрёстком
func hudLines(state intersection.Snapshot, paused bool) [hudRows]string {
	queue := "none"
	if len(state.Queue) > 0 {
		queue = strings.Join(state.Queue, " -> ")
	}
	crossing := state.Crossing
	if crossing == "" {
		crossing = "none"
	}

	spawns := "on"
	if !state.SpawnEnabled {
		spawns = "off"
	}
	status := ""
	if paused {
		status = "  PAUSED"
	}

	return [hudRows]string{
		fmt.Sprintf("Queue: %s", queue),
		fmt.Sprintf("Crossing: %s  Spawns: %s  Exited: %d%s  [space] spawns [p] pause [r] reset [q] quit",
			crossing, spawns, state.Exited, status),
	}
}

func drawText(screen tcell.Screen, col, row int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(col, row, r, nil, style)
		col++
	}
}

// draw рисует кадр целиком
func draw(screen tcell.Screen, cfg intersection.Config, g intersection.Geometry, state intersection.Snapshot, paused bool) {
	width, height := screen.Size()
	c := newCanvas(cfg, g, width, height)

	screen.Clear()
	c.drawRoads(screen)
	c.drawStopLines(screen)
	c.drawVehicles(screen, state.Vehicles)

	for row, line := range hudLines(state, paused) {
		for col := 0; col < width; col++ {
			screen.SetContent(col, row, ' ', nil, styleHud)
		}
		drawText(screen, 1, row, line, styleHud)
	}
}
