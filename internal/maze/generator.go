package maze

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Generate carves a perfect maze into an unbuilt grid using a randomized
// iterative depth-first search ("recursive backtracker"). r is the only
// source of randomness; hook, if not nil, sees the grid after every carve
// or backtrack.
func Generate(g *Grid, r *rand.Rand, hook Hook) error {
	if g.built || g.building {
		return newError(AlreadyBuilt, "cannot build maze - it has already been built")
	}
	g.building = true
	defer func() { g.building = false }()

	Log.WithFields(logrus.Fields{
		"rows": g.rows,
		"cols": g.cols,
	}).Debug("beginning to build the maze")

	total := g.rows * g.cols
	current := Cell{Row: r.IntN(g.rows), Col: r.IntN(g.cols)}
	g.frontier = current
	visited := 1

	stack := make([]Cell, 0, total)
	neighbors := make([]Cell, 0, len(Directions))

	for visited < total {
		hook.call(readOnly{g})

		neighbors = neighbors[:0]
		for _, d := range Directions {
			n := current.Step(d)
			if g.InBounds(n) && g.allBlocked(n) {
				neighbors = append(neighbors, n)
			}
		}

		if len(neighbors) > 0 {
			next := neighbors[r.IntN(len(neighbors))]
			g.openEdge(current, next)
			stack = append(stack, current)
			current = next
			visited++
		} else {
			// the start cell is always below us on the stack while cells
			// remain unvisited
			current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		g.frontier = current
	}

	g.setCurrent(Cell{Row: 0, Col: 0})
	g.setGoal(Cell{Row: g.rows - 1, Col: g.cols - 1})
	g.built = true

	Log.Debug("finished building the maze")
	hook.call(readOnly{g})
	return nil
}

// NewRand returns the generator source used for a maze seed, so the same
// seed builds the same maze everywhere.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
