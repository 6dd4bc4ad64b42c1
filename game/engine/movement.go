package engine

import (
	"github.com/wricardo/tilematch/game/geom"
)

// Press starts dragging shape id from the pointer position. Shapes without
// foreground tiles ignore the press. Pressing a shape that is already being
// dragged restarts the drag from its displayed position.
func (p *Puzzle) Press(id int, pointer geom.Vec2) bool {
	if id < 0 || id >= len(p.shapes) {
		return false
	}
	s := &p.shapes[id]
	if !s.Draggable {
		return false
	}

	s.Drag = DragState{
		Active:       true,
		StartShape:   s.Current,
		StartPointer: pointer,
	}
	return true
}

// Update is called once per tick with the live pointer position. Every
// dragging shape follows the pointer delta, snapped to the quantum. Nothing
// is committed until Release.
func (p *Puzzle) Update(pointer geom.Vec2) {
	for i := range p.shapes {
		s := &p.shapes[i]
		if !s.Drag.Active {
			continue
		}
		s.Current = p.dragTarget(s.Drag, pointer)
	}
}

// Release ends the drag of shape id and commits its position. A release
// without a matching press is ignored and returns false.
func (p *Puzzle) Release(id int, pointer geom.Vec2) bool {
	if id < 0 || id >= len(p.shapes) {
		return false
	}
	s := &p.shapes[id]
	if !s.Drag.Active {
		return false
	}

	target := p.dragTarget(s.Drag, pointer)
	s.Drag = DragState{}
	p.commit(s, target)
	return true
}

// ReleaseAll releases every dragging shape at pointer and returns their ids.
func (p *Puzzle) ReleaseAll(pointer geom.Vec2) []int {
	released := []int{}
	for i := range p.shapes {
		if p.Release(i, pointer) {
			released = append(released, i)
		}
	}
	return released
}

// Dragging returns the ids of shapes currently being dragged.
func (p *Puzzle) Dragging() []int {
	ids := []int{}
	for i := range p.shapes {
		if p.shapes[i].Drag.Active {
			ids = append(ids, i)
		}
	}
	return ids
}

// PressAt presses the topmost draggable shape under the pointer.
func (p *Puzzle) PressAt(pointer geom.Vec2) (int, bool) {
	id, ok := p.ShapeAt(pointer)
	if !ok {
		return -1, false
	}
	return id, p.Press(id, pointer)
}

func (p *Puzzle) dragTarget(d DragState, pointer geom.Vec2) geom.Vec2 {
	return d.StartShape.Add(pointer.Sub(d.StartPointer)).Snapped(p.quantum)
}
