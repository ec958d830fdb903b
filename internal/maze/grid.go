package maze

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"slices"
)

// walls is a bitmask of the sides of a cell that are blocked.
type walls uint8

const allWalls walls = 1<<Up | 1<<Down | 1<<Left | 1<<Right

func (w walls) blocked(d Direction) bool {
	return w&(1<<d) != 0
}

/*
 * A Grid stores, for each logical cell, which of its four sides are
 * blocked. Every interior edge is recorded twice (once per cell) and the
 * two records are always changed together, so the grid never disagrees
 * with itself about an edge. Border sides are never opened.
 */
type Grid struct {
	rows, cols int
	walls      []walls
	trail      []bool
	current    Cell
	goal       Cell
	frontier   Cell
	building   bool
	built      bool
}

// MaxCells bounds rows*cols for every grid.
const MaxCells = 1 << 20

// NewGrid returns an unbuilt grid with every edge blocked.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows < 2 {
		return nil, newError(InvalidDimension, "number of rows must be > 1, got %d", rows)
	}
	if cols < 2 {
		return nil, newError(InvalidDimension, "number of columns must be > 1, got %d", cols)
	}
	if rows > MaxCells/cols {
		return nil, newError(InvalidDimension,
			"maze of %d x %d cells exceeds %d cells", rows, cols, MaxCells)
	}
	g := &Grid{
		rows:  rows,
		cols:  cols,
		walls: make([]walls, rows*cols),
		trail: make([]bool, rows*cols),
	}
	for i := range g.walls {
		g.walls[i] = allWalls
	}
	return g, nil
}

func (g *Grid) Rows() int     { return g.rows }
func (g *Grid) Cols() int     { return g.cols }
func (g *Grid) Built() bool   { return g.built }
func (g *Grid) Current() Cell { return g.current }
func (g *Grid) Goal() Cell    { return g.goal }

func (g *Grid) InBounds(c Cell) bool {
	return 0 <= c.Row && c.Row < g.rows && 0 <= c.Col && c.Col < g.cols
}

func (g *Grid) index(c Cell) int {
	return c.Row*g.cols + c.Col
}

// IsEdgeOpen reports whether the edge between two adjacent in-bounds cells
// is passable.
func (g *Grid) IsEdgeOpen(a, b Cell) (bool, error) {
	if !g.InBounds(a) {
		return false, newError(OutOfBounds, "cell %s is outside the maze", a)
	}
	if !g.InBounds(b) {
		return false, newError(OutOfBounds, "cell %s is outside the maze", b)
	}
	d, ok := directionTo(a, b)
	if !ok {
		return false, newError(NotAdjacent, "cells %s and %s are not adjacent", a, b)
	}
	return !g.walls[g.index(a)].blocked(d), nil
}

// IsOpen reports whether c has a passage toward d. Cells outside the grid
// and border sides are never open.
func (g *Grid) IsOpen(c Cell, d Direction) bool {
	if !g.InBounds(c) || !d.Valid() {
		return false
	}
	return !g.walls[g.index(c)].blocked(d)
}

func (g *Grid) OnTrail(c Cell) bool {
	return g.InBounds(c) && g.trail[g.index(c)]
}

func (g *Grid) Status(c Cell) Status {
	switch {
	case !g.InBounds(c):
		return Normal
	case g.built && c == g.current:
		return Current
	case g.built && c == g.goal:
		return Goal
	case g.building && c == g.frontier:
		return Frontier
	case !g.built && g.walls[g.index(c)] == allWalls:
		return Unvisited
	default:
		return Normal
	}
}

// OpenEdges counts passable edges, each shared edge once.
func (g *Grid) OpenEdges() int {
	n := 0
	for row := range g.rows {
		for col := range g.cols {
			w := g.walls[row*g.cols+col]
			if !w.blocked(Down) {
				n++
			}
			if !w.blocked(Right) {
				n++
			}
		}
	}
	return n
}

// Equal compares dimensions, every edge and the current and goal cells.
// Trail markers are display state and do not take part.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.rows == o.rows &&
		g.cols == o.cols &&
		g.current == o.current &&
		g.goal == o.goal &&
		slices.Equal(g.walls, o.walls)
}

// Clone returns a deep copy that shares nothing with g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.walls = slices.Clone(g.walls)
	c.trail = slices.Clone(g.trail)
	return &c
}

func (g *Grid) allBlocked(c Cell) bool {
	return g.walls[g.index(c)] == allWalls
}

// openEdge expects a and b to be adjacent and in bounds.
func (g *Grid) openEdge(a, b Cell) {
	d, _ := directionTo(a, b)
	g.walls[g.index(a)] &^= 1 << d
	g.walls[g.index(b)] &^= 1 << d.Opposite()
}

func (g *Grid) setCurrent(c Cell) {
	g.current = c
	g.trail[g.index(c)] = true
}

func (g *Grid) setGoal(c Cell) {
	g.goal = c
}

type gridData struct {
	Rows, Cols    int
	Walls         []uint8
	Trail         []bool
	Current, Goal Cell
	Built         bool
}

func (g *Grid) GobEncode() ([]byte, error) {
	data := gridData{
		Rows:    g.rows,
		Cols:    g.cols,
		Walls:   make([]uint8, len(g.walls)),
		Trail:   g.trail,
		Current: g.current,
		Goal:    g.goal,
		Built:   g.built,
	}
	for i, w := range g.walls {
		data.Walls[i] = uint8(w)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Grid) GobDecode(buf []byte) error {
	var data gridData
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&data); err != nil {
		return err
	}
	decoded, err := NewGrid(data.Rows, data.Cols)
	if err != nil {
		return err
	}
	n := data.Rows * data.Cols
	if len(data.Walls) != n || len(data.Trail) != n {
		return fmt.Errorf("invalid grid data: expected %d cells", n)
	}
	for i, w := range data.Walls {
		decoded.walls[i] = walls(w) & allWalls
	}
	copy(decoded.trail, data.Trail)
	if !decoded.InBounds(data.Current) || !decoded.InBounds(data.Goal) {
		return fmt.Errorf("invalid grid data: current or goal outside the maze")
	}
	if err := decoded.checkEdges(); err != nil {
		return err
	}
	decoded.current, decoded.goal, decoded.built = data.Current, data.Goal, data.Built
	*g = *decoded
	return nil
}

// checkEdges verifies that both records of each edge agree and that border
// sides are blocked.
func (g *Grid) checkEdges() error {
	for row := range g.rows {
		for col := range g.cols {
			c := Cell{Row: row, Col: col}
			for _, d := range Directions {
				n := c.Step(d)
				open := g.IsOpen(c, d)
				if !g.InBounds(n) {
					if open {
						return fmt.Errorf("invalid grid data: border of %s is open", c)
					}
					continue
				}
				if open != g.IsOpen(n, d.Opposite()) {
					return fmt.Errorf("invalid grid data: edge %s-%s is inconsistent", c, n)
				}
			}
		}
	}
	return nil
}
