package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionArithmetic(t *testing.T) {
	a, b := Pos(3, 1), Pos(1, 4)

	assert.Equal(t, Pos(4, 5), a.Add(b))
	assert.Equal(t, Pos(2, 0), a.Sub(Pos(1, 1)))
	assert.Equal(t, Pos(1, 1), a.Min(b))
	assert.Equal(t, Pos(3, 4), a.Max(b))
	assert.Equal(t, V(300, 100), a.World(100))
}

func TestMinOfMaxOf(t *testing.T) {
	ps := []Position{Pos(2, 5), Pos(4, 1), Pos(3, 3)}

	assert.Equal(t, Pos(2, 1), MinOf(ps))
	assert.Equal(t, Pos(4, 5), MaxOf(ps))
	assert.Equal(t, Position{}, MinOf(nil))
	assert.Equal(t, Position{}, MaxOf(nil))
}

func TestVec2Snapped(t *testing.T) {
	tests := []struct {
		name string
		in   Vec2
		q    float64
		want Vec2
	}{
		{"nearest", V(14, 16), 10, V(10, 20)},
		{"half rounds away", V(15, 25), 10, V(20, 30)},
		{"negative", V(-14, -16), 10, V(-10, -20)},
		{"zero quantum", V(123.4, 5), 0, V(123.4, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Snapped(tt.q))
		})
	}
}

func TestVec2Cell(t *testing.T) {
	assert.Equal(t, Cell{X: 1, Y: 2}, V(150, 299.9).Cell(100))
	assert.Equal(t, Cell{X: 0, Y: 0}, V(-50, 99).Cell(100))
	assert.Equal(t, Cell{X: -1, Y: 3}, V(-100, 300).Cell(100))
}
