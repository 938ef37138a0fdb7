package tui

import (
	"fmt"
	"math"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-spatial/geom"

	mgeom "mapview/internal/geom"
)

// hoverRadius is how close, in micro-pixels, a vertex must be to get marked.
const hoverRadius = 6.0

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		if m.handleKey(msg.String()) {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	if m.showAttrs {
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		d, err := mgeom.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			m.log.Warn("parse pasted wkt", "err", err)
			return m, nil
		}
		m.selPath = ""
		m.setData(d)
		m.preferLayers()
		pts, ls, polys := d.Counts()
		m.status = fmt.Sprintf("rendered WKT  counts: pts=%d ls=%d poly=%d", pts, ls, polys)
		m.log.Info("rendered pasted wkt", "points", pts, "lines", ls, "polygons", polys)
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// handleKey applies a key binding and reports whether the program should quit.
func (m *Model) handleKey(key string) bool {
	w, h := m.cam.Size()
	cx, cy := float64(w)/2, float64(h)/2
	step := m.cfg.PanStep
	switch key {
	case "ctrl+c", "q":
		return true
	case "1":
		m.showPoints = !m.showPoints
		m.status = fmt.Sprintf("points: %v", m.showPoints)
	case "2":
		m.showLines = !m.showLines
		m.status = fmt.Sprintf("lines: %v", m.showLines)
	case "3":
		m.showPolys = !m.showPolys
		m.status = fmt.Sprintf("polys: %v", m.showPolys)
	case "l":
		all := m.showPoints && m.showLines && m.showPolys
		m.showPoints = !all
		m.showLines = !all
		m.showPolys = !all
		m.status = fmt.Sprintf("layers: pts=%v ls=%v poly=%v", m.showPoints, m.showLines, m.showPolys)
	case "g":
		m.showGrid = !m.showGrid
		m.status = fmt.Sprintf("grid: %v", m.showGrid)
	case "+", "=":
		m.zoomAt(m.cfg.ZoomStep, cx, cy)
		m.status = fmt.Sprintf("zoom: %.2f", m.cam.Zoom())
	case "-", "_":
		m.zoomAt(1/m.cfg.ZoomStep, cx, cy)
		m.status = fmt.Sprintf("zoom: %.2f", m.cam.Zoom())
	case "[":
		m.cam.SetAngle(m.cam.Angle() - m.cfg.RotateStep*math.Pi/180)
		m.status = fmt.Sprintf("rotation: %.1f°", degrees(m.cam.Angle()))
	case "]":
		m.cam.SetAngle(m.cam.Angle() + m.cfg.RotateStep*math.Pi/180)
		m.status = fmt.Sprintf("rotation: %.1f°", degrees(m.cam.Angle()))
	case "n":
		m.cam.SetAngle(0)
		m.status = "north up"
	case "c":
		if m.data.Empty() {
			m.status = "nothing loaded"
		} else {
			m.fitData()
			m.status = "centred on data"
		}
	case "up":
		m.cam.Pan(0, step)
	case "down":
		m.cam.Pan(0, -step)
	case "left":
		m.cam.Pan(step, 0)
	case "right":
		m.cam.Pan(-step, 0)
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
		}
		m.resize()
	case "p":
		m.pasteMode = true
		m.ta.SetValue("")
		m.ta.Focus()
		m.status = "paste mode"
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrs()
		}
	case "i":
		if popup, ok := m.inspect(); ok {
			m.inspectPopup = popup
			m.status = "inspect popup"
		} else {
			m.inspectPopup = ""
			m.status = "no feature nearby"
		}
	case "esc":
		m.inspectPopup = ""
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				m.loadPath(it.path)
			}
		}
	}
	return false
}

// handleMouse tracks hover and turns drags and wheel events into camera moves.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	cellX, cellY := msg.X-m.mapX, msg.Y-m.mapY
	inside := cellX >= 0 && cellX < m.mapW && cellY >= 0 && cellY < m.mapH
	at := cellCentre(cellX, cellY)

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		m.zoomAt(m.cfg.ZoomStep, at.X(), at.Y())
	case msg.Button == tea.MouseButtonWheelDown && inside:
		m.zoomAt(1/m.cfg.ZoomStep, at.X(), at.Y())
	case msg.Action == tea.MouseActionPress && inside &&
		(msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonRight):
		m.drag = drag{
			active: true,
			rotate: msg.Button == tea.MouseButtonRight || msg.Shift,
			startX: at.X(), startY: at.Y(),
			lastX: at.X(), lastY: at.Y(),
		}
	case msg.Action == tea.MouseActionRelease:
		m.drag = drag{}
	case msg.Action == tea.MouseActionMotion && m.drag.active:
		m.dragTo(at)
	}

	m.hovering = inside
	m.hoverVertex = false
	if !inside {
		return
	}
	m.hoverLon, m.hoverLat = m.cam.ScreenToLonLat(at)
	if _, s, ok := m.nearestVertex(at.X(), at.Y(), hoverRadius); ok {
		m.hoverVertex = true
		m.hoverMicX, m.hoverMicY = int(math.Floor(s.X())), int(math.Floor(s.Y()))
	}
}

func (m *Model) dragTo(at geom.Point) {
	last := geom.Point{m.drag.lastX, m.drag.lastY}
	if m.drag.rotate {
		anchor := geom.Point{m.drag.startX, m.drag.startY}
		m.cam.RotateAround(anchor, last, at)
		m.status = fmt.Sprintf("rotation: %.1f°", degrees(m.cam.Angle()))
	} else {
		m.cam.Pan(at.X()-last.X(), at.Y()-last.Y())
	}
	m.drag.lastX, m.drag.lastY = at.X(), at.Y()
}

// preferLayers shows the richest geometry kind present in the data.
func (m *Model) preferLayers() {
	pts, ls, polys := m.data.Counts()
	m.showPolys = polys > 0
	m.showLines = ls > 0 && !m.showPolys
	m.showPoints = pts > 0 && !m.showPolys
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
