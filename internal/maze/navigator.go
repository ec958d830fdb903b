package maze

// Navigator moves the current marker of a borrowed grid one cell at a time.
// A failed move leaves the grid untouched.
type Navigator struct {
	grid *Grid
}

func NewNavigator(g *Grid) *Navigator {
	return &Navigator{grid: g}
}

func (n *Navigator) Current() Cell {
	return n.grid.current
}

// IsOpen reports whether the current cell has a passage toward d.
func (n *Navigator) IsOpen(d Direction) bool {
	return n.grid.IsOpen(n.grid.current, d)
}

// Move steps the current marker one cell in direction d.
func (n *Navigator) Move(d Direction) error {
	if !d.Valid() {
		return newError(NotAdjacent, "invalid direction %d", uint8(d))
	}
	return n.moveTo(n.grid.current.Step(d), d)
}

// MoveTo steps the current marker to target, which must share an edge with
// the current cell.
func (n *Navigator) MoveTo(target Cell) error {
	from := n.grid.current
	d, ok := directionTo(from, target)
	if !ok {
		return newError(NotAdjacent,
			"trying to move from cell %s to non-adjacent cell %s", from, target)
	}
	return n.moveTo(target, d)
}

func (n *Navigator) moveTo(target Cell, d Direction) error {
	g := n.grid
	from := g.current
	if !g.InBounds(target) {
		return newError(OutOfBounds,
			"trying to move to cell %s which is outside the maze", target)
	}
	if !g.IsOpen(from, d) {
		return newError(WallBlocking,
			"trying to move from cell %s to cell %s and there is a wall in between", from, target)
	}

	// stepping back onto the trail means we are retreating, so the trail
	// shrinks behind us
	if g.trail[g.index(target)] {
		g.trail[g.index(from)] = false
	}
	g.setCurrent(target)
	return nil
}

func (n *Navigator) GoalReached() bool {
	return n.grid.current == n.grid.goal
}
