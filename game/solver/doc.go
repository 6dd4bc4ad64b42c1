// Package solver searches for placements of draggable shapes that make a
// puzzle valid.
//
// The search only translates shapes; it never rotates them. Non-draggable
// shapes stay where the layout (or the player) put them and their background
// tiles define the target cells. Each draggable shape may only sit where all
// of its foreground tiles cover target cells. Shapes with the fewest such
// positions are tried first, and a branch is abandoned once the remaining
// foreground tiles cannot possibly cover the remaining target cells. Every
// complete assignment is confirmed with engine.Validate.
//
// Usage:
//
//	sol, err := solver.Solve(ctx, def)
//	if errors.Is(err, solver.ErrNoSolution) {
//		fmt.Println("unsolvable")
//	}
//
//	move, ok, err := solver.Hint(ctx, p)
package solver
