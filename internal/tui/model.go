// Package tui is a terminal host for the puzzle engine. The player steers a
// virtual pointer over the board with the arrow keys and drags shapes exactly
// the way a mouse would, through press, move and release events.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wricardo/tilematch/game/engine"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/service"
)

// CellQuanta is how many snap quanta one arrow press moves the pointer.
// Shift+arrow moves a single quantum.
const CellQuanta = 10

type hintMsg struct {
	hint *service.HintResult
	err  error
}

// Model is the bubbletea model for one play session.
type Model struct {
	svc       service.PuzzleService
	ctx       context.Context
	sessionID string

	puzzle   string
	state    *engine.State
	pointer  geom.Vec2
	dragging int // shape id, -1 when idle

	message string
	style   lipgloss.Style
	width   int
	height  int
}

// New creates a model for an existing session.
func New(ctx context.Context, svc service.PuzzleService, sessionID string) (Model, error) {
	info, err := svc.GetSession(ctx, sessionID)
	if err != nil {
		return Model{}, err
	}
	m := Model{
		svc:       svc,
		ctx:       ctx,
		sessionID: sessionID,
		dragging:  -1,
		style:     StyleDim,
	}
	m.load(info)
	m.message = "Drag every shape onto the shaded targets."
	return m, nil
}

// load switches to a session snapshot and parks the pointer on the first
// draggable shape.
func (m *Model) load(info *service.SessionInfo) {
	m.puzzle = info.Puzzle
	m.state = info.State
	m.dragging = -1
	m.pointer = geom.V(0, 0)
	for _, s := range m.state.Shapes {
		if s.Draggable {
			half := m.state.TileSide / 2
			m.pointer = s.Current.Add(geom.V(half, half))
			break
		}
	}
}

// Pointer returns the virtual pointer position in world pixels.
func (m Model) Pointer() geom.Vec2 { return m.pointer }

// State returns the last snapshot received from the service.
func (m Model) State() *engine.State { return m.state }

// Message returns the status line text.
func (m Model) Message() string { return m.message }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case hintMsg:
		m.showHint(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.state.TileSide
	fine := m.state.Quantum
	if fine <= 0 {
		fine = step / CellQuanta
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.dragging >= 0 {
			m.pointerEvent(service.PointerRelease)
		}
		return m, tea.Quit
	case "up":
		m.movePointer(geom.V(0, -step))
	case "down":
		m.movePointer(geom.V(0, step))
	case "left":
		m.movePointer(geom.V(-step, 0))
	case "right":
		m.movePointer(geom.V(step, 0))
	case "shift+up":
		m.movePointer(geom.V(0, -fine))
	case "shift+down":
		m.movePointer(geom.V(0, fine))
	case "shift+left":
		m.movePointer(geom.V(-fine, 0))
	case "shift+right":
		m.movePointer(geom.V(fine, 0))
	case " ", "space", "enter":
		if m.dragging >= 0 {
			m.pointerEvent(service.PointerRelease)
		} else {
			m.pointerEvent(service.PointerPress)
		}
	case "v":
		m.validate()
	case "n":
		m.stepPuzzle(1)
	case "p":
		m.stepPuzzle(-1)
	case "r":
		m.reset()
	case "h":
		m.setMessage(StyleDim, "Thinking...")
		return m, m.hintCmd()
	}
	return m, nil
}

func (m *Model) setMessage(style lipgloss.Style, format string, args ...any) {
	m.style = style
	m.message = fmt.Sprintf(format, args...)
}

func (m *Model) fail(err error) {
	m.setMessage(StyleError, "%s %v", iconError, err)
}

func (m *Model) movePointer(delta geom.Vec2) {
	m.pointer = m.pointer.Add(delta)
	if m.dragging >= 0 {
		m.pointerEvent(service.PointerMove)
	}
}

func (m *Model) pointerEvent(event service.PointerEvent) {
	res, err := m.svc.Pointer(m.ctx, m.sessionID, event, m.pointer)
	if err != nil {
		m.fail(err)
		return
	}
	m.state = res.State

	switch event {
	case service.PointerPress:
		if !res.Handled {
			m.setMessage(StyleWarning, "%s Nothing to drag here.", iconWarning)
			return
		}
		m.dragging = res.Shape
		m.setMessage(StyleDim, "Dragging shape %d.", res.Shape)
	case service.PointerRelease:
		m.dragging = -1
		if res.Handled {
			s := m.state.Shapes[res.Shape]
			m.setMessage(StyleDim, "Dropped shape %d at %s.", res.Shape, s.Current)
		}
	}
}

func (m *Model) validate() {
	res, err := m.svc.Validate(m.ctx, m.sessionID)
	if err != nil {
		m.fail(err)
		return
	}
	if res.Valid {
		m.setMessage(StyleSuccess, "%s %s", iconSuccess, res.Message)
		return
	}
	m.setMessage(StyleError, "%s %s (%d unmatched tiles)", iconError, res.Message, len(res.Unsatisfied))
}

func (m *Model) stepPuzzle(delta int) {
	info, err := m.svc.StepPuzzle(m.ctx, m.sessionID, delta)
	if err != nil {
		m.fail(err)
		return
	}
	m.load(info)
	m.setMessage(StyleDim, "Puzzle %s.", info.Puzzle)
}

func (m *Model) reset() {
	state, err := m.svc.Reset(m.ctx, m.sessionID)
	if err != nil {
		m.fail(err)
		return
	}
	m.state = state
	m.dragging = -1
	m.setMessage(StyleDim, "Shapes returned to their starting positions.")
}

func (m Model) hintCmd() tea.Cmd {
	svc, ctx, id := m.svc, m.ctx, m.sessionID
	return func() tea.Msg {
		hint, err := svc.Hint(ctx, id)
		return hintMsg{hint: hint, err: err}
	}
}

func (m *Model) showHint(msg hintMsg) {
	switch {
	case msg.err != nil:
		m.fail(msg.err)
	case msg.hint.Found:
		m.setMessage(StyleWarning, "Hint: move shape %d to (%g, %g).", msg.hint.Shape, msg.hint.World.X, msg.hint.World.Y)
	default:
		m.setMessage(StyleDim, "%s", msg.hint.Message)
	}
}

func (m Model) View() string {
	var b strings.Builder

	title := "Tile Match"
	if m.state.Valid {
		title += " " + iconSuccess
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(StyleDim.Render(" · " + m.puzzle))
	b.WriteString("\n\n")

	b.WriteString(m.renderBoard())
	b.WriteString("\n")

	status := fmt.Sprintf("pointer %s", m.pointer)
	if m.dragging >= 0 {
		status += fmt.Sprintf(" · dragging shape %d", m.dragging)
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")
	b.WriteString(m.style.Render(m.message))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("←↑↓→ move  shift fine  space grab/drop  v check  h hint  r reset  n/p puzzle  q quit"))
	return b.String()
}

type boardCell struct {
	fg, bg         bool
	fgColor, color string
}

func (m Model) renderBoard() string {
	side := m.state.TileSide
	if side <= 0 {
		return ""
	}

	cells := make(map[geom.Cell]*boardCell)
	focus := m.pointer.Cell(side)
	lo, hi := focus, focus
	for _, s := range m.state.Shapes {
		for _, t := range s.Tiles {
			c := s.Current.Add(t.Local.World(side)).Cell(side)
			bc := cells[c]
			if bc == nil {
				bc = &boardCell{}
				cells[c] = bc
			}
			if t.Type == puzzle.Foreground {
				bc.fg, bc.fgColor = true, s.Color
			} else {
				bc.bg, bc.color = true, s.Color
			}
			lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
			hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
		}
	}

	maxCols, maxRows := 40, 20
	if m.width > 0 {
		maxCols = max(4, m.width/2-1)
	}
	if m.height > 0 {
		maxRows = max(4, m.height-8)
	}
	x0, x1 := window(lo.X, hi.X, focus.X, maxCols)
	y0, y1 := window(lo.Y, hi.Y, focus.Y, maxRows)

	var b strings.Builder
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := geom.Cell{X: x, Y: y}
			if c == focus {
				b.WriteString(stylePointer.Render(glyphPointer))
				continue
			}
			bc := cells[c]
			switch {
			case bc == nil:
				b.WriteString(StyleDim.Render(glyphEmpty))
			case bc.fg && bc.bg:
				b.WriteString(tileStyle(bc.fgColor).Render(glyphCovered))
			case bc.fg:
				b.WriteString(tileStyle(bc.fgColor).Render(glyphForeground))
			default:
				b.WriteString(tileStyle(bc.color).Render(glyphBackground))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func tileStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// window picks at most size cells out of [lo, hi], keeping focus visible.
func window(lo, hi, focus, size int) (int, int) {
	if hi-lo+1 <= size {
		return lo, hi
	}
	start := focus - size/2
	start = max(lo, min(start, hi-size+1))
	return start, start + size - 1
}

// Run plays a session in the terminal until the player quits.
func Run(ctx context.Context, svc service.PuzzleService, sessionID string) error {
	m, err := New(ctx, svc, sessionID)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
