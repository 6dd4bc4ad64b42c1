package engine

import (
	"testing"

	"github.com/wricardo/tilematch/game/geom"
)

func TestDragLifecycle(t *testing.T) {
	p := newTestPuzzle(t)
	start, _ := p.Shape(1)

	if !p.Press(1, geom.V(60, 60)) {
		t.Fatal("Expected press on a draggable shape to start a drag")
	}
	if got := p.Dragging(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("Expected shape 1 dragging, got %v", got)
	}

	// 14 rounds down and 26 rounds up to the 10 unit quantum
	p.Update(geom.V(74, 86))
	s, _ := p.Shape(1)
	if s.Current != start.Current.Add(geom.V(10, 30)) {
		t.Errorf("Expected snapped drag position, got %v", s.Current)
	}
	if s.Rest != start.Rest {
		t.Error("Update must not commit the position")
	}

	if !p.Release(1, geom.V(64, 101)) {
		t.Fatal("Expected release to end the drag")
	}
	s, _ = p.Shape(1)
	want := start.Current.Add(geom.V(0, 40))
	if s.Current != want || s.Rest != want {
		t.Errorf("Expected committed %v, got current %v rest %v", want, s.Current, s.Rest)
	}
	if s.Drag.Dragging() {
		t.Error("Expected idle after release")
	}
	if len(p.GetMoveHistory()) != 1 {
		t.Errorf("Expected one recorded move, got %d", len(p.GetMoveHistory()))
	}
}

func TestDragIgnoresBackground(t *testing.T) {
	p := newTestPuzzle(t)

	if p.Press(0, geom.V(10, 10)) {
		t.Error("Background shape should ignore press")
	}
	p.Update(geom.V(500, 500))
	if p.Release(0, geom.V(500, 500)) {
		t.Error("Background shape should ignore release")
	}
	s, _ := p.Shape(0)
	if s.Current != geom.V(0, 0) {
		t.Errorf("Background moved to %v", s.Current)
	}
}

func TestReleaseWithoutPress(t *testing.T) {
	p := newTestPuzzle(t)
	before, _ := p.Shape(2)

	if p.Release(2, geom.V(900, 900)) {
		t.Error("Release without press should be ignored")
	}
	after, _ := p.Shape(2)
	if before.Current != after.Current {
		t.Error("Ignored release must not move the shape")
	}
	if p.Release(42, geom.V(0, 0)) || p.Press(-1, geom.V(0, 0)) {
		t.Error("Out of range ids should be ignored")
	}
}

func TestSecondPressRestartsDrag(t *testing.T) {
	p := newTestPuzzle(t)
	start, _ := p.Shape(1)

	p.Press(1, geom.V(0, 0))
	p.Update(geom.V(100, 0))
	p.Press(1, geom.V(500, 500))
	p.Update(geom.V(500, 520))
	p.Release(1, geom.V(500, 520))

	s, _ := p.Shape(1)
	if want := start.Current.Add(geom.V(100, 20)); s.Rest != want {
		t.Errorf("Expected %v, got %v", want, s.Rest)
	}
}

func TestPressAtAndReleaseAll(t *testing.T) {
	p := newTestPuzzle(t)

	s2, _ := p.Shape(2)
	grab := s2.Current.Add(geom.V(5, 10))

	id, ok := p.PressAt(grab)
	if !ok || id != 2 {
		t.Fatalf("Expected to grab shape 2, got %d ok=%v", id, ok)
	}
	if _, ok := p.PressAt(geom.V(5, 5)); ok {
		t.Error("Background area should not be grabbable")
	}

	released := p.ReleaseAll(grab)
	if len(released) != 1 || released[0] != 2 {
		t.Errorf("Expected shape 2 released, got %v", released)
	}
	if len(p.Dragging()) != 0 {
		t.Error("Expected no drags after ReleaseAll")
	}
	if s, _ := p.Shape(2); s.Rest != s2.Current {
		t.Errorf("Expected shape 2 to stay at %v, got %v", s2.Current, s.Rest)
	}
}

func TestShapeAtTopmost(t *testing.T) {
	p := newTestPuzzle(t)
	if err := p.MoveShape(1, geom.V(400, 400)); err != nil {
		t.Fatal(err)
	}
	if err := p.MoveShape(2, geom.V(400, 400)); err != nil {
		t.Fatal(err)
	}

	id, ok := p.ShapeAt(geom.V(450, 450))
	if !ok || id != 2 {
		t.Errorf("Expected topmost shape 2, got %d", id)
	}
	if _, ok := p.ShapeAt(geom.V(500, 450)); ok {
		t.Error("Tile squares are half open on the right edge")
	}
}
