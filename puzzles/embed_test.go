package puzzles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/tilematch/game/catalog"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/game/solver"
	"github.com/wricardo/tilematch/puzzles"
)

func TestBundledPuzzles(t *testing.T) {
	cat, err := catalog.New(puzzles.FS, catalog.Options{})
	require.NoError(t, err)
	require.Equal(t, 6, cat.Len())

	name, err := cat.DefaultName()
	require.NoError(t, err)
	assert.Equal(t, "01-first-steps", name)

	for _, name := range cat.Names() {
		t.Run(name, func(t *testing.T) {
			def, err := cat.Get(name)
			require.NoError(t, err)

			report := puzzle.Check(def)
			assert.Empty(t, report.Errors)
			assert.Empty(t, report.Warnings)
			assert.Equal(t, report.Stats.ForegroundTiles, report.Stats.BackgroundTiles,
				"bundled puzzles cover their targets exactly")

			sol, err := solver.Solve(context.Background(), def)
			require.NoError(t, err)
			assert.Len(t, sol.Moves, report.Stats.Interactable)
		})
	}
}
