package maze

import "fmt"

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) Step(d Direction) Cell {
	dr, dc := d.Delta()
	return Cell{Row: c.Row + dr, Col: c.Col + dc}
}

func (c Cell) String() string {
	return fmt.Sprintf("<%d, %d>", c.Row, c.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IsAdjacent reports whether a and b share an edge: one coordinate differs
// by exactly one and the other is equal.
func IsAdjacent(a, b Cell) bool {
	dr, dc := abs(a.Row-b.Row), abs(a.Col-b.Col)
	return dr+dc == 1
}

// directionTo returns the direction leading from a to an adjacent b.
func directionTo(a, b Cell) (Direction, bool) {
	for _, d := range Directions {
		if a.Step(d) == b {
			return d, true
		}
	}
	return 0, false
}

type Status int8

const (
	Normal Status = iota
	Current
	Goal
	Frontier  // carver head, build time only
	Unvisited // every edge still blocked, build time only
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case Current:
		return "current"
	case Goal:
		return "goal"
	case Frontier:
		return "frontier"
	case Unvisited:
		return "unvisited"
	default:
		return "!"
	}
}
