package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/pipeline"
)

// Map styles
var (
	mapBorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	mapLineStyle    = lipgloss.NewStyle().Foreground(colorDim)
	mapCellStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	mapGrabbedStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	mapCursorStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	helpStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	// inspectTick is how often the inspector drains work posted by
	// background renderers.
	inspectTick = 100 * time.Millisecond

	resizeStep = 0.1
)

// inspectCommand creates the interactive inspector.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [doc.toml]",
		Short: "Explore a layout interactively in the terminal",
		Long: `Explore a layout interactively in the terminal.

Move the cursor to see which cell and hot line lie under it. Grab a hot line
with space to drag that row or column edge; the layout re-resolves as it
moves. + and - resize the canvas.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Logger = c.Logger

			scene, err := buildScene(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer scene.Close()

			m := newInspectModel(scene.Canvas, opts.Path)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(inspectModel); ok && fm.moved > 0 {
				printInfo("Moved %d hot line(s); the document was not modified", fm.moved)
			}
			return nil
		},
	}

	addSizeFlags(cmd, &opts)
	return cmd
}

// =============================================================================
// inspectModel - Interactive layout inspector
// =============================================================================

// tickMsg drives the inspector's drain loop.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(inspectTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// inspectModel is the bubbletea model of the inspector. Update runs on a
// single goroutine and owns the canvas; it drains after every change.
type inspectModel struct {
	canvas *canvas.Canvas
	path   string

	x, y    int // cursor in canvas pixels
	cols    int // map size in terminal cells
	rows    int
	grabbed *canvas.HotLine
	from    int // coordinate of the grabbed line when it was grabbed
	moved   int // hot lines released somewhere else
	status  string
}

func newInspectModel(c *canvas.Canvas, path string) inspectModel {
	w, h := c.Size()
	return inspectModel{canvas: c, path: path, x: w / 2, y: h / 2, cols: 64, rows: 20}
}

func (m inspectModel) Init() tea.Cmd {
	return tick()
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.drain()
		return m, tick()
	case tea.WindowSizeMsg:
		m.cols = clamp(msg.Width-4, 20, 160)
		m.rows = clamp(msg.Height-14, 8, 60)
	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m inspectModel) key(k string) (tea.Model, tea.Cmd) {
	sx, sy := m.step()
	switch k {
	case "q", "ctrl+c":
		if m.grabbed != nil {
			m.release()
		}
		return m, tea.Quit
	case "esc":
		if m.grabbed == nil {
			return m, tea.Quit
		}
		m.release()
	case "left", "h":
		m.moveCursor(-sx, 0)
	case "right", "l":
		m.moveCursor(sx, 0)
	case "up", "k":
		m.moveCursor(0, -sy)
	case "down", "j":
		m.moveCursor(0, sy)
	case "H":
		m.moveCursor(-5*sx, 0)
	case "L":
		m.moveCursor(5*sx, 0)
	case "K":
		m.moveCursor(0, -5*sy)
	case "J":
		m.moveCursor(0, 5*sy)
	case " ", "space", "enter":
		if m.grabbed != nil {
			m.release()
		} else {
			m.grab()
		}
	case "+", "=":
		m.resize(1 + resizeStep)
	case "-", "_":
		m.resize(1 - resizeStep)
	}
	return m, nil
}

// step is the size of one map cell in canvas pixels.
func (m inspectModel) step() (int, int) {
	w, h := m.canvas.Size()
	return max(1, w/m.cols), max(1, h/m.rows)
}

func (m *inspectModel) moveCursor(dx, dy int) {
	w, h := m.canvas.Size()
	m.x = clamp(m.x+dx, 0, w-1)
	m.y = clamp(m.y+dy, 0, h-1)
	if m.grabbed == nil {
		return
	}
	coord := m.y
	if m.grabbed.Position.Orientation() == canvas.Column {
		coord = m.x
	}
	if err := m.canvas.MoveHotLine(m.grabbed, coord); err != nil {
		m.status = err.Error()
		return
	}
	m.drain()
	m.status = fmt.Sprintf("%s → %d", m.grabbed, m.grabbed.Coord())
}

// grab picks the hot line under the cursor, or the nearest one within a
// map cell, since the cursor moves in map-cell steps.
func (m *inspectModel) grab() {
	h := m.canvas.Cells().LineAt(m.x, m.y)
	if h == nil {
		sx, sy := m.step()
		h = nearestLine(m.canvas.Cells().HotLines(), m.x, m.y, sx, sy)
	}
	if h == nil {
		m.status = "no hot line under the cursor"
		return
	}
	m.grabbed, m.from = h, h.Coord()
	if h.Position.Orientation() == canvas.Column {
		m.x = h.Coord()
	} else {
		m.y = h.Coord()
	}
	m.status = "grabbed " + h.String()
}

func (m *inspectModel) release() {
	if m.grabbed.Coord() != m.from {
		m.moved++
	}
	m.status = "released " + m.grabbed.String()
	m.grabbed = nil
}

func (m *inspectModel) resize(f float64) {
	w, h := m.canvas.Size()
	nw, nh := max(1, int(float64(w)*f)), max(1, int(float64(h)*f))
	if err := m.canvas.Resize(nw, nh); err != nil {
		m.status = err.Error()
		return
	}
	m.drain()
	m.x = clamp(m.x*nw/w, 0, nw-1)
	m.y = clamp(m.y*nh/h, 0, nh-1)
	m.status = fmt.Sprintf("canvas %dx%d", nw, nh)
}

func (m *inspectModel) drain() {
	if _, err := m.canvas.Drain(); err != nil {
		m.status = err.Error()
	}
}

// nearestLine returns the hot line closest to (x, y) within the given
// tolerances, rows before columns on ties.
func nearestLine(lines []*canvas.HotLine, x, y, tolX, tolY int) *canvas.HotLine {
	var best *canvas.HotLine
	bestDist := 0
	for _, h := range lines {
		d, tol := abs(h.Coord()-y), tolY
		if h.Position.Orientation() == canvas.Column {
			d, tol = abs(h.Coord()-x), tolX
		}
		if d > tol {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// =============================================================================
// View
// =============================================================================

func (m inspectModel) View() string {
	var b strings.Builder

	w, h := m.canvas.Size()
	b.WriteString(StyleTitle.Render("gridplot inspect"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %dx%d · em %gpx", m.path, w, h, m.canvas.EmSize())))
	b.WriteString("\n")
	b.WriteString(mapBorderStyle.Render(m.renderMap()))
	b.WriteString("\n")

	res := hitTest(m.canvas, m.x, m.y)
	b.WriteString(infoLine("cursor", fmt.Sprintf("(%d, %d)", m.x, m.y)))
	if res.Cell != nil {
		b.WriteString(infoLine("cell", fmt.Sprintf("%s × %s %s", res.Cell.Row, res.Cell.Column, res.Cell.Rect)))
	} else {
		b.WriteString(infoLine("cell", "—"))
	}
	if res.Line != nil {
		b.WriteString(infoLine("hot line", fmt.Sprintf("%s %s @ %d", res.Line.Position, res.Line.Edge, res.Line.Coord)))
	} else {
		b.WriteString(infoLine("hot line", "—"))
	}
	for _, name := range res.Components {
		if comp, ok := m.canvas.Component(name); ok {
			r, _ := m.canvas.ResolveBounds(comp)
			b.WriteString(infoLine("component", fmt.Sprintf("%s %s %s", name, r, m.canvas.State(comp))))
		}
	}
	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←↑↓→/hjkl move  HJKL fast  space grab/release  +/- resize  q quit"))
	return b.String()
}

func infoLine(key, value string) string {
	k := lipgloss.NewStyle().Foreground(colorGray).Width(11).Render(key)
	return k + " " + StyleValue.Render(value) + "\n"
}

// renderMap draws hot lines, the cell under the cursor and the cursor
// itself on a cols×rows character grid.
func (m inspectModel) renderMap() string {
	w, h := m.canvas.Size()
	grid := make([][]rune, m.rows)
	kind := make([][]byte, m.rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", m.cols))
		kind[r] = make([]byte, m.cols)
	}
	toCol := func(x int) int { return clamp(x*m.cols/w, 0, m.cols-1) }
	toRow := func(y int) int { return clamp(y*m.rows/h, 0, m.rows-1) }

	if cell := m.canvas.Cells().CellAt(m.x, m.y); cell != nil {
		rc := cell.Rect()
		for r := toRow(rc.Y); r <= toRow(rc.Y+rc.H-1); r++ {
			for c := toCol(rc.X); c <= toCol(rc.X+rc.W-1); c++ {
				grid[r][c], kind[r][c] = '·', 'c'
			}
		}
	}
	for _, line := range m.canvas.Cells().HotLines() {
		k := byte('l')
		if line == m.grabbed {
			k = 'g'
		}
		if line.Position.Orientation() == canvas.Row {
			r := toRow(line.Coord())
			for c := range grid[r] {
				grid[r][c] = cross(grid[r][c], '─')
				kind[r][c] = strongest(kind[r][c], k)
			}
		} else {
			c := toCol(line.Coord())
			for r := range grid {
				grid[r][c] = cross(grid[r][c], '│')
				kind[r][c] = strongest(kind[r][c], k)
			}
		}
	}
	cr, cc := toRow(m.y), toCol(m.x)
	grid[cr][cc], kind[cr][cc] = '●', 'x'

	var b strings.Builder
	for r := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c, ch := range grid[r] {
			s := string(ch)
			switch kind[r][c] {
			case 'c':
				s = mapCellStyle.Render(s)
			case 'l':
				s = mapLineStyle.Render(s)
			case 'g':
				s = mapGrabbedStyle.Render(s)
			case 'x':
				s = mapCursorStyle.Render(s)
			}
			b.WriteString(s)
		}
	}
	return b.String()
}

func cross(cur, line rune) rune {
	switch {
	case cur == '─' && line == '│', cur == '│' && line == '─', cur == '┼':
		return '┼'
	}
	return line
}

// strongest keeps the grabbed highlight over plain lines and cells.
func strongest(cur, k byte) byte {
	if cur == 'g' {
		return cur
	}
	return k
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
