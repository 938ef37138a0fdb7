package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)

	header := titleStyle.Render(" mapview ─ tiled web mercator viewer ")
	header = lipgloss.NewStyle().Width(contentWidth).Render(header)

	var mapView string
	switch {
	case m.showAttrs:
		// infer a reasonable width from columns
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		if colW == 0 {
			colW = min(60, contentWidth-6)
		}
		maxW := min(m.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(m.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(m.mapW, m.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.pasteMode:
		m.ta.SetWidth(m.mapW)
		m.ta.SetHeight(min(m.mapH, 12))
		mapView = lipgloss.NewStyle().Width(m.mapW).Height(m.mapH).Render(m.ta.View())
	default:
		mapView = lipgloss.NewStyle().Width(m.mapW).Height(m.mapH).Render(m.renderMap(m.mapW, m.mapH))
	}

	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		box := boxStyle.MaxWidth(max(20, min(56, contentWidth/2))).Render(m.inspectPopup)
		popup = lipgloss.Place(contentWidth, lipgloss.Height(box), lipgloss.Left, lipgloss.Top, box)
	}

	body := mapView
	if m.showSidebar {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Height(contentHeight).Render(m.l.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, m.renderFooter(contentWidth))
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderFooter shows the status and camera on the first line and the key
// help on the second.
func (m Model) renderFooter(width int) string {
	lon, lat := m.cam.LonLat()
	camera := fmt.Sprintf("%.5f, %.5f  z%.2f  %.1f°", lon, lat, m.cam.Zoom(), degrees(m.cam.Angle()))
	if m.hovering {
		camera = fmt.Sprintf("cursor %.5f, %.5f  │  ", m.hoverLon, m.hoverLat) + camera
	}
	camera = dimStyle.Render(" " + camera + " ")

	statusW := max(0, width-lipgloss.Width(camera))
	status := dimStyle.Render(clip(" "+m.status, statusW))
	gap := strings.Repeat(" ", max(0, statusW-lipgloss.Width(status)))
	line := status + gap + camera

	return lipgloss.JoinVertical(lipgloss.Left, line, clip(m.renderHelp(), width))
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→/drag pan",
		"+/-/wheel zoom",
		"[ ]/right-drag rotate",
		"n north",
		"c centre",
		"g grid",
		"1/2/3/l layers",
		"Tab files",
		"p paste",
		"a attrs",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
