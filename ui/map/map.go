package mapview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonas-p/go-shp"

	"downlink/config"
	"downlink/monitoring"
)

// Constants for Panning and Zooming
const (
	panFactor  = 0.1
	zoomFactor = 1.2

	maxTrail = 64 // fixes kept per callsign
)

// world is the view used when no base layer is loaded.
var world = shp.Box{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90}

// Position is a GNSS fix to plot. Send it to Update.
type Position struct {
	Callsign string
	Lon, Lat float64
	Altitude float64
}

// Model holds the map's state
type Model struct {
	width  int
	height int

	mapPolygons    []*shp.Polygon
	originalBounds shp.Box
	viewBounds     shp.Box

	stationLon    float64
	stationLat    float64
	stationExists bool

	// trails by callsign, oldest first; order is first-heard order
	trails map[string][]Position
	order  []string
	follow bool
}

// loadMapData reads the shapefile
func loadMapData(path string) ([]*shp.Polygon, shp.Box, error) {
	shapeFile, err := shp.Open(path)
	if err != nil {
		return nil, shp.Box{}, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shapeFile.Close()

	var polygons []*shp.Polygon
	bounds := shp.Box{MinX: 1e9, MinY: 1e9, MaxX: -1e9, MaxY: -1e9}

	for shapeFile.Next() {
		_, shape := shapeFile.Shape()
		polygon, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		polygons = append(polygons, polygon)
		bounds.Extend(polygon.BBox())
	}

	if len(polygons) == 0 {
		return nil, shp.Box{}, fmt.Errorf("no polygons found in shapefile")
	}
	return polygons, bounds, nil
}

// New creates a new map model. The base layer from conf.Map.Shapefile is
// optional; without it fixes are plotted on an empty world grid.
func New(conf config.Config) (Model, error) {
	m := Model{
		originalBounds: world,
		viewBounds:     world,
		width:          80,
		height:         23,
		trails:         make(map[string][]Position),
	}
	if conf.Map.Shapefile != "" {
		polygons, bounds, err := loadMapData(conf.Map.Shapefile)
		if err != nil {
			return Model{}, err
		}
		m.mapPolygons = polygons
		m.originalBounds = bounds
		m.viewBounds = bounds
	}

	stationGrid := conf.Station.GridSquare
	if stationGrid != "" {
		lon, lat, err := GridSquareToLatLon(stationGrid)
		if err != nil {
			monitoring.Logf("Warning: Could not parse station gridsquare '%s': %v", stationGrid, err)
		} else {
			m.stationLon = lon
			m.stationLat = lat
			m.stationExists = true
		}
	}

	if m.stationExists && conf.Map.DefaultZoom > 1.0 {
		m.setCenterAndZoom(m.stationLon, m.stationLat, conf.Map.DefaultZoom)
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) setCenterAndZoom(lon, lat, zoomLevel float64) {
	newWidth := (m.originalBounds.MaxX - m.originalBounds.MinX) / zoomLevel
	newHeight := (m.originalBounds.MaxY - m.originalBounds.MinY) / zoomLevel
	m.viewBounds.MinX = lon - (newWidth / 2)
	m.viewBounds.MaxX = lon + (newWidth / 2)
	m.viewBounds.MinY = lat - (newHeight / 2)
	m.viewBounds.MaxY = lat + (newHeight / 2)
}

func (m *Model) center() (lon, lat float64) {
	return (m.viewBounds.MinX + m.viewBounds.MaxX) / 2, (m.viewBounds.MinY + m.viewBounds.MaxY) / 2
}

func (m *Model) zoomByFactor(factor float64) {
	centerX, centerY := m.center()
	width := m.viewBounds.MaxX - m.viewBounds.MinX
	height := m.viewBounds.MaxY - m.viewBounds.MinY
	newWidth := width * factor
	newHeight := height * factor
	if newWidth > (m.originalBounds.MaxX-m.originalBounds.MinX) || newHeight > (m.originalBounds.MaxY-m.originalBounds.MinY) {
		m.viewBounds = m.originalBounds
		return
	}
	m.viewBounds.MinX = centerX - (newWidth / 2)
	m.viewBounds.MaxX = centerX + (newWidth / 2)
	m.viewBounds.MinY = centerY - (newHeight / 2)
	m.viewBounds.MaxY = centerY + (newHeight / 2)
}

func (m *Model) pan(dx, dy float64) {
	width := m.viewBounds.MaxX - m.viewBounds.MinX
	height := m.viewBounds.MaxY - m.viewBounds.MinY
	panX := width * dx
	panY := height * dy
	m.viewBounds.MinX += panX
	m.viewBounds.MaxX += panX
	m.viewBounds.MinY += panY
	m.viewBounds.MaxY += panY
}

func (m Model) GetZoomLevel() float64 {
	if m.viewBounds.MaxX == m.viewBounds.MinX {
		return 1.0
	}
	return (m.originalBounds.MaxX - m.originalBounds.MinX) / (m.viewBounds.MaxX - m.viewBounds.MinX)
}

// Following reports whether the view tracks the newest fix.
func (m Model) Following() bool { return m.follow }

// Latest returns the newest fix for callsign.
func (m Model) Latest(callsign string) (Position, bool) {
	trail := m.trails[callsign]
	if len(trail) == 0 {
		return Position{}, false
	}
	return trail[len(trail)-1], true
}

func (m *Model) add(p Position) {
	trail, seen := m.trails[p.Callsign]
	if !seen {
		m.order = append(m.order, p.Callsign)
	}
	trail = append(trail, p)
	if len(trail) > maxTrail {
		trail = append(trail[:0], trail[len(trail)-maxTrail:]...)
	}
	m.trails[p.Callsign] = trail
	if m.follow {
		zoom := m.GetZoomLevel()
		m.setCenterAndZoom(p.Lon, p.Lat, zoom)
	}
}

// Update function
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Position:
		m.add(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "k", "up":
			m.pan(0, panFactor)
		case "l", "down":
			m.pan(0, -panFactor)
		case "j", "left":
			m.pan(-panFactor, 0)
		case ";", "right":
			m.pan(panFactor, 0)
		case "K":
			m.zoomByFactor(1 / zoomFactor)
		case "L":
			m.zoomByFactor(zoomFactor)
		case "r":
			m.viewBounds = m.originalBounds
		case "f":
			m.follow = !m.follow
		}
	}
	return m, nil
}

// project converts lon/lat to terminal x/y coordinates
func (m *Model) project(lon, lat float64, viewWidth, viewHeight int) (int, int) {
	if m.viewBounds.MaxX == m.viewBounds.MinX {
		m.viewBounds.MaxX += 1e-6
	}
	if m.viewBounds.MaxY == m.viewBounds.MinY {
		m.viewBounds.MaxY += 1e-6
	}
	x := (lon - m.viewBounds.MinX) / (m.viewBounds.MaxX - m.viewBounds.MinX)
	y := (m.viewBounds.MaxY - lat) / (m.viewBounds.MaxY - m.viewBounds.MinY) // Invert Y-axis for screen coords
	tuiX := int(x * float64(viewWidth))
	tuiY := int(y * float64(viewHeight))
	return tuiX, tuiY
}

// renderMapViewport
func (m Model) renderMapViewport(viewWidth, viewHeight int) string {
	if viewWidth <= 0 {
		viewWidth = 1
	}
	if viewHeight <= 0 {
		viewHeight = 1
	}

	grid := make([][]rune, viewHeight)
	for i := range grid {
		grid[i] = make([]rune, viewWidth)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}
	plot := func(lon, lat float64, r rune) (int, int, bool) {
		x, y := m.project(lon, lat, viewWidth, viewHeight)
		if x < 0 || x >= viewWidth || y < 0 || y >= viewHeight {
			return x, y, false
		}
		grid[y][x] = r
		return x, y, true
	}

	// 1. Draw the map
	for _, polygon := range m.mapPolygons {
		polyBounds := polygon.BBox()
		if polyBounds.MaxX < m.viewBounds.MinX || polyBounds.MinX > m.viewBounds.MaxX ||
			polyBounds.MaxY < m.viewBounds.MinY || polyBounds.MinY > m.viewBounds.MaxY {
			continue
		}
		for _, point := range polygon.Points {
			plot(point.X, point.Y, '.')
		}
	}

	// 2. Plot the home station "house"
	if m.stationExists {
		plot(m.stationLon, m.stationLat, 'H')
	}

	// 3. Draw the trails, then the newest fix and its callsign
	for _, call := range m.order {
		trail := m.trails[call]
		for _, p := range trail[:len(trail)-1] {
			plot(p.Lon, p.Lat, '+')
		}
		last := trail[len(trail)-1]
		x, y, ok := plot(last.Lon, last.Lat, '*')
		if !ok || y+1 >= viewHeight {
			continue
		}
		// Draw callsign UNDER the fix, if there's room
		callRunes := []rune(call)
		startOffset := x - (len(callRunes) / 2)
		for i := 0; i < len(callRunes); i++ {
			plotX := startOffset + i
			if plotX >= 0 && plotX < viewWidth && grid[y+1][plotX] == ' ' {
				grid[y+1][plotX] = callRunes[i]
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteRune('\n')
	}
	return b.String()
}

// View function
func (m Model) View() string {
	mapStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(m.width - 2).
		Height(m.height - 2)

	hPadding := mapStyle.GetPaddingLeft() + mapStyle.GetPaddingRight()
	vPadding := mapStyle.GetPaddingTop() + mapStyle.GetPaddingBottom()

	// Width and Height exclude the border already
	mapViewWidth := mapStyle.GetWidth() - hPadding
	mapViewHeight := mapStyle.GetHeight() - vPadding

	if mapViewWidth <= 0 {
		mapViewWidth = 1
	}
	if mapViewHeight <= 0 {
		mapViewHeight = 1
	}

	mapContent := m.renderMapViewport(mapViewWidth, mapViewHeight)

	return mapStyle.Render(strings.TrimSuffix(mapContent, "\n"))
}
