package tui

import (
	"io"
	"math"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"mapview/internal/config"
	"mapview/internal/geom"
	"mapview/internal/linebuf"
	"mapview/internal/transform"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2

	minZoom = -4.0
	maxZoom = 22.0
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	cfg config.View
	log *log.Logger

	// camera in braille micro-pixels
	cam transform.Transform

	// vertex buffers per tile, rebuilt after every load
	device *linebuf.HostDevice
	tiles  *tileCache
	grid   *linebuf.Buffer

	// File explorer
	cwd     string
	l       list.Model
	selPath string

	data geom.Data

	// map area in cells
	mapX, mapY int
	mapW, mapH int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showPoints bool
	showLines  bool
	showPolys  bool
	showGrid   bool

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverVertex bool
	hoverMicX   int
	hoverMicY   int
	hoverLon    float64
	hoverLat    float64

	drag drag

	// attributes table
	showAttrs bool
	tbl       table.Model
}

// drag tracks a mouse gesture in micro-pixels.
type drag struct {
	active bool
	rotate bool
	startX float64
	startY float64
	lastX  float64
	lastY  float64
}

// New returns a viewer with the camera configured by cfg. A nil logger
// discards output.
func New(cfg config.View, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := Model{
		helpVisible: true,
		status:      "mapview ready",
		cfg:         cfg,
		log:         logger,
		showPoints:  true,
		showLines:   true,
		showPolys:   true,
		showGrid:    cfg.ShowGrid,
	}
	m.cam = transform.New(transform.WithTileSize(cfg.TileSize))
	m.cam.SetZoom(clampZoom(cfg.Zoom))
	m.cam.SetLonLat(cfg.Longitude, cfg.Latitude)
	m.cam.SetAngle(cfg.Angle * math.Pi / 180)

	m.device = linebuf.NewHostDevice()
	m.tiles = newTileCache(m.device, cfg.MaxCachedTiles)
	m.grid = linebuf.New(m.device)
	geom.Outline(m.grid)

	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here, one geometry per line. Enter renders, Esc cancels."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// columns are set per dataset
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a file's data at launch.
func NewWithPath(cfg config.View, logger *log.Logger, path string) Model {
	m := New(cfg, logger)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// resize recomputes the map area and the camera viewport.
func (m *Model) resize() {
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)

	m.mapX, m.mapY = 0, headerHeight
	m.mapW = contentWidth
	if m.showSidebar {
		m.mapX = sidebarWidth + 1
		m.mapW = contentWidth - sidebarWidth - 1
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}
	m.mapW = max(10, m.mapW)
	m.mapH = contentHeight
	m.cam.SetViewport(m.mapW*2, m.mapH*4)
}

// setData replaces the dataset, drops cached tiles and fits the view.
func (m *Model) setData(d geom.Data) {
	m.data = d
	if err := m.tiles.reset(); err != nil {
		m.log.Warn("release tile buffers", "err", err)
	}
	m.inspectPopup = ""
	m.hovering = false
	m.fitData()
}

// fitData centres the camera on the data bounds and zooms so they fit.
func (m *Model) fitData() {
	if m.data.Empty() {
		return
	}
	b := m.data.BBox
	c := b.Center()
	defer m.cam.SetLonLat(c.Lon(), c.Lat())

	w, h := m.cam.Size()
	if w <= 0 || h <= 0 {
		return
	}
	nw := transform.Project(b.Min.Lon(), b.Max.Lat())
	se := transform.Project(b.Max.Lon(), b.Min.Lat())
	dx := (se.X() - nw.X()) * m.cam.TileSize()
	dy := (se.Y() - nw.Y()) * m.cam.TileSize()
	if dx <= 0 && dy <= 0 {
		// single point
		m.setZoom(math.Max(m.cam.Zoom(), 12))
		return
	}
	scale := math.Inf(1)
	if dx > 0 {
		scale = float64(w) / dx
	}
	if dy > 0 {
		scale = math.Min(scale, float64(h)/dy)
	}
	m.setZoom(math.Log2(scale * 0.9))
}

func (m *Model) setZoom(zoom float64) {
	m.cam.SetZoom(clampZoom(zoom))
}

// zoomAt scales by ds around a micro-pixel, keeping the zoom in range.
func (m *Model) zoomAt(ds, x, y float64) {
	target := m.cam.Zoom() + math.Log2(ds)
	if target < minZoom || target > maxZoom {
		return
	}
	m.cam.ZoomAround(ds, x, y)
}

func clampZoom(z float64) float64 {
	return math.Min(math.Max(z, minZoom), maxZoom)
}
