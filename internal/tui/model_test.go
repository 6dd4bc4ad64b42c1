package tui

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/service"
	"github.com/wricardo/tilematch/game/session"
)

func newTestModel(t *testing.T) (Model, service.PuzzleService, string) {
	t.Helper()
	cat, err := catalog.New(fstest.MapFS{
		"ab.txt":   {Data: []byte("AB\nAB\nA ")},
		"line.txt": {Data: []byte("AA")},
	}, catalog.Options{})
	require.NoError(t, err)

	svc := service.NewPuzzleService(session.NewManager(nil), cat, service.Options{})
	info, err := svc.CreateSession(context.Background(), "ab", 0)
	require.NoError(t, err)

	m, err := New(context.Background(), svc, info.ID)
	require.NoError(t, err)
	return m, svc, info.ID
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func repeat(k string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestNew(t *testing.T) {
	m, _, _ := newTestModel(t)

	// pointer starts at the centre of the first tile of shape 1
	assert.Equal(t, geom.V(100, 100), m.Pointer())
	assert.Len(t, m.State().Shapes, 3)

	_, err := New(context.Background(), service.NewPuzzleService(session.NewManager(nil), nil, service.Options{}), "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestDragWithKeys(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, "space")
	assert.Equal(t, 1, m.dragging)
	assert.Contains(t, m.Message(), "Dragging shape 1")

	keys := append(repeat("right", 8), repeat("shift+right", 5)...)
	m, _ = press(t, m, keys...)
	assert.Equal(t, geom.V(950, 100), m.Pointer())
	assert.Equal(t, geom.V(900, 50), m.State().Shapes[1].Current, "shape follows the pointer")

	m, _ = press(t, m, "space")
	assert.Equal(t, -1, m.dragging)
	assert.Contains(t, m.Message(), "Dropped shape 1")
	assert.Equal(t, geom.V(900, 50), m.State().Shapes[1].Rest)

	m, _ = press(t, m, "v")
	assert.Contains(t, m.Message(), service.InvalidMessage)

	m, _ = press(t, m, "r")
	assert.Equal(t, m.State().Shapes[1].Home, m.State().Shapes[1].Current)
}

func TestPressOnEmptyCell(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, "left", "left", "space")
	assert.Equal(t, -1, m.dragging)
	assert.Contains(t, m.Message(), "Nothing to drag here")
}

func TestStepPuzzle(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, "n")
	assert.Equal(t, "line", m.puzzle)
	assert.Len(t, m.State().Shapes, 2)

	m, _ = press(t, m, "p")
	assert.Equal(t, "ab", m.puzzle)
}

func TestHint(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := press(t, m, "h")
	require.NotNil(t, cmd)
	assert.Equal(t, "Thinking...", m.Message())

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Contains(t, m.Message(), "Hint: move shape")
}

func TestValidSolution(t *testing.T) {
	m, svc, id := newTestModel(t)
	ctx := context.Background()

	_, err := svc.MoveShape(ctx, id, 1, geom.V(900, 50))
	require.NoError(t, err)
	_, err = svc.MoveShape(ctx, id, 2, geom.V(1000, 50))
	require.NoError(t, err)

	m, _ = press(t, m, "v")
	assert.Contains(t, m.Message(), service.ValidMessage)

	m, cmd := press(t, m, "h")
	next, _ := m.Update(cmd())
	assert.Equal(t, service.ValidMessage, next.(Model).Message())
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, "space")
	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, -1, m.dragging, "quitting drops the held shape")
}

func TestView(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	view := next.(Model).View()

	assert.Contains(t, view, "Tile Match")
	assert.Contains(t, view, "ab")
	assert.Contains(t, view, glyphPointer)
	assert.Contains(t, view, glyphBackground)
	assert.True(t, strings.Contains(view, glyphForeground) || strings.Contains(view, glyphCovered))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name                string
		lo, hi, focus, size int
		start, end          int
	}{
		{"fits", 0, 5, 2, 10, 0, 5},
		{"clamped low", 0, 20, 2, 10, 0, 9},
		{"clamped high", 0, 20, 18, 10, 11, 20},
		{"centered", 0, 20, 10, 10, 5, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := window(tt.lo, tt.hi, tt.focus, tt.size)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
