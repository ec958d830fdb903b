package maze

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
)

type Phase uint8

const (
	Exploring Phase = iota
	Backtracking
	Solved
)

func (p Phase) String() string {
	switch p {
	case Exploring:
		return "exploring"
	case Backtracking:
		return "backtracking"
	case Solved:
		return "solved"
	default:
		return "!"
	}
}

// Solver walks a maze depth-first, one step per call, remembering which
// cells it has visited and the directions it took to reach the current
// cell. The next step depends only on the grid, the visited set and the
// path, so a solver restored from its [State] continues exactly where the
// original left off.
type Solver struct {
	grid    *Grid
	nav     *Navigator
	visited []bool
	path    []Direction
	phase   Phase
	err     error
	hook    Hook
}

// NewSolver builds a fresh rows x cols maze from r and returns a solver
// positioned at its start.
func NewSolver(rows, cols int, r *rand.Rand) (*Solver, error) {
	g, err := NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	if err := Generate(g, r, nil); err != nil {
		return nil, err
	}
	return newSolver(g, make([]bool, rows*cols), nil), nil
}

func newSolver(g *Grid, visited []bool, path []Direction) *Solver {
	s := &Solver{
		grid:    g,
		nav:     NewNavigator(g),
		visited: visited,
		path:    path,
	}
	if s.nav.GoalReached() {
		s.phase = Solved
	}
	return s
}

// SetHook installs a hook called after every step.
func (s *Solver) SetHook(h Hook) {
	s.hook = h
}

func (s *Solver) Rows() int { return s.grid.rows }
func (s *Solver) Cols() int { return s.grid.cols }

// Phase is Exploring until the goal is reached and Solved afterwards.
func (s *Solver) Phase() Phase { return s.phase }

func (s *Solver) Solved() bool { return s.phase == Solved }

// Err returns the error that ended the session, if any.
func (s *Solver) Err() error { return s.err }

func (s *Solver) Current() Cell { return s.nav.Current() }

func (s *Solver) Visited(c Cell) bool {
	return s.grid.InBounds(c) && s.visited[s.grid.index(c)]
}

// Path returns a copy of the path stack, bottom first.
func (s *Solver) Path() []Direction {
	return slices.Clone(s.path)
}

// View exposes the live grid read-only.
func (s *Solver) View() View {
	return readOnly{s.grid}
}

// Snapshot returns a detached copy of the grid.
func (s *Solver) Snapshot() View {
	return s.grid.Clone()
}

// MaxSteps bounds the number of steps needed to reach the goal: every edge
// of the spanning tree is walked at most once in each direction.
func (s *Solver) MaxSteps() int {
	return 2 * s.grid.rows * s.grid.cols
}

// Step advances the search by one move. It returns Solved if the goal is
// reached (or had been reached before), otherwise the phase the step ran
// in. An [Underflow] error ends the session; every later call returns it
// again.
func (s *Solver) Step() (Phase, error) {
	if s.phase == Solved {
		return Solved, nil
	}
	if s.err != nil {
		return s.phase, s.err
	}

	phase, err := s.step()
	if err != nil {
		s.err = err
		return phase, err
	}
	if s.nav.GoalReached() {
		s.phase = Solved
		phase = Solved
	}
	s.hook.call(readOnly{s.grid})
	return phase, nil
}

func (s *Solver) step() (Phase, error) {
	g := s.grid
	current := s.nav.Current()
	s.visited[g.index(current)] = true

	for _, d := range Directions {
		if s.nav.IsOpen(d) && !s.visited[g.index(current.Step(d))] {
			if err := s.nav.Move(d); err != nil {
				return Exploring, err
			}
			s.path = append(s.path, d)
			return Exploring, nil
		}
	}

	if len(s.path) == 0 {
		return Backtracking, newError(Underflow,
			"dead end at %s with an empty path stack", current)
	}
	last := s.path[len(s.path)-1]
	if err := s.nav.Move(last.Opposite()); err != nil {
		return Backtracking, err
	}
	s.path = s.path[:len(s.path)-1]
	return Backtracking, nil
}

// Run steps until the goal is reached, ctx is done or the step budget is
// exhausted, and returns the number of steps taken.
func (s *Solver) Run(ctx context.Context) (int, error) {
	steps := 0
	for !s.Solved() {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		if steps >= s.MaxSteps() {
			return steps, fmt.Errorf("goal not reached after %d steps", steps)
		}
		if _, err := s.Step(); err != nil {
			return steps, err
		}
		steps++
	}
	return steps, nil
}
