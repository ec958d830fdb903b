package maze

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"slices"
)

// State is everything a paused solver needs to continue.
type State struct {
	Grid    *Grid
	Visited []bool
	Path    []Direction
}

// State returns a deep copy of the solver's state.
func (s *Solver) State() *State {
	return &State{
		Grid:    s.grid.Clone(),
		Visited: slices.Clone(s.visited),
		Path:    slices.Clone(s.path),
	}
}

// Resume validates st and returns a solver that owns a private copy of it.
func Resume(st *State) (*Solver, error) {
	if err := st.validate(); err != nil {
		return nil, err
	}
	c := st.Clone()
	return newSolver(c.Grid, c.Visited, c.Path), nil
}

func (st *State) Clone() *State {
	return &State{
		Grid:    st.Grid.Clone(),
		Visited: slices.Clone(st.Visited),
		Path:    slices.Clone(st.Path),
	}
}

func (st *State) Equal(o *State) bool {
	if st == nil || o == nil {
		return st == o
	}
	return st.Grid.Equal(o.Grid) &&
		slices.Equal(st.Grid.trail, o.Grid.trail) &&
		slices.Equal(st.Visited, o.Visited) &&
		slices.Equal(st.Path, o.Path)
}

// validate replays the path from the start cell; it must only cross open
// edges and end on the current cell.
func (st *State) validate() error {
	g := st.Grid
	if g == nil {
		return fmt.Errorf("invalid solver state: no grid")
	}
	if !g.built {
		return fmt.Errorf("invalid solver state: maze is not built")
	}
	if len(st.Visited) != g.rows*g.cols {
		return fmt.Errorf(
			"invalid solver state: visited set has %d cells, want %d",
			len(st.Visited), g.rows*g.cols,
		)
	}
	at := Cell{}
	for i, d := range st.Path {
		if !g.IsOpen(at, d) {
			return fmt.Errorf(
				"invalid solver state: path step %d (%s) from %s is blocked", i, d, at,
			)
		}
		at = at.Step(d)
	}
	if at != g.current {
		return fmt.Errorf(
			"invalid solver state: path ends at %s but current cell is %s", at, g.current,
		)
	}
	return nil
}

func DecodeState(buf []byte) (*State, error) {
	var st State
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (st State) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
