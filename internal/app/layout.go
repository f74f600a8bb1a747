package app

import (
	"github.com/charmbracelet/lipgloss"
	appscreen "github.com/chmouel/apollo/internal/app/screen"
)

const (
	minListWidth   = 28
	minDetailWidth = 32
	minBodyHeight  = 6
)

// layoutDims holds the computed pane sizes.
type layoutDims struct {
	width   int
	height  int
	originX int // Columns taken by the decoration frame on the left

	alertHeight int
	bodyHeight  int

	listWidth         int
	detailWidth       int
	listInnerWidth    int
	listInnerHeight   int
	detailInnerWidth  int
	detailInnerHeight int
}

func (m *Model) setWindowSize(width, height int) {
	m.windowWidth = width
	m.windowHeight = height
	m.applyLayout(m.computeLayout())
	if help, ok := m.screens.Current().(*appscreen.HelpScreen); ok {
		help.SetSize(width, height)
	}
}

func (m *Model) computeLayout() layoutDims {
	width := m.windowWidth
	height := m.windowHeight
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 40
	}

	originX := 0
	if m.state.Decorations {
		width -= 2
		height -= 2
		originX = 1
	}

	alertHeight := 0
	if m.state.Alert != nil {
		alertHeight = 1
	}
	// Tab bar, control bar and status bar.
	bodyHeight := max(height-3-alertHeight, minBodyHeight)

	listWidth := max(minListWidth, width*45/100)
	detailWidth := width - listWidth
	if detailWidth < minDetailWidth {
		detailWidth = minDetailWidth
		listWidth = max(width-detailWidth, 1)
	}

	pane := m.paneStyle(false)
	frameX := pane.GetHorizontalFrameSize()
	frameY := pane.GetVerticalFrameSize()

	return layoutDims{
		width:             width,
		height:            height,
		originX:           originX,
		alertHeight:       alertHeight,
		bodyHeight:        bodyHeight,
		listWidth:         listWidth,
		detailWidth:       detailWidth,
		listInnerWidth:    max(1, listWidth-frameX),
		listInnerHeight:   max(1, bodyHeight-frameY),
		detailInnerWidth:  max(1, detailWidth-frameX),
		detailInnerHeight: max(1, bodyHeight-frameY),
	}
}

// applyLayout resizes the detail viewport, re-wrapping its content when
// the width changed.
func (m *Model) applyLayout(layout layoutDims) {
	widthChanged := m.detail.Width != layout.detailInnerWidth
	m.detail.Width = layout.detailInnerWidth
	m.detail.Height = layout.detailInnerHeight
	if widthChanged {
		m.refreshDetail()
	}
}

func (m *Model) paneStyle(focused bool) lipgloss.Style {
	border := m.theme.BorderDim
	if focused {
		border = m.theme.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}
