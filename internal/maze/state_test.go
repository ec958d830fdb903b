package maze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	s := newSolverT(t, 9, 11, 6)
	for range 17 {
		_, err := s.Step()
		require.NoError(t, err)
	}

	st := s.State()
	b, err := st.Bytes()
	require.NoError(t, err)

	decoded, err := DecodeState(b)
	require.NoError(t, err)
	assert.True(t, st.Equal(decoded))
}

func TestStateRoundTripFresh(t *testing.T) {
	s := newSolverT(t, 2, 3, 1)
	b, err := s.State().Bytes()
	require.NoError(t, err)

	decoded, err := DecodeState(b)
	require.NoError(t, err)
	assert.True(t, s.State().Equal(decoded))
}

func TestResumeMatchesUninterrupted(t *testing.T) {
	for pause := range 40 {
		uninterrupted := newSolverT(t, 7, 7, 8)
		paused := newSolverT(t, 7, 7, 8)

		for i := 0; i < pause && !paused.Solved(); i++ {
			_, err := paused.Step()
			require.NoError(t, err)
		}
		b, err := paused.State().Bytes()
		require.NoError(t, err)
		st, err := DecodeState(b)
		require.NoError(t, err)
		resumed, err := Resume(st)
		require.NoError(t, err)

		want, err := uninterrupted.Run(context.Background())
		require.NoError(t, err)
		rest, err := resumed.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, want, min(pause, want)+rest, "pause %d", pause)
		assert.True(t, uninterrupted.State().Equal(resumed.State()), "pause %d", pause)
	}
}

func TestResumeOwnsItsState(t *testing.T) {
	s := newSolverT(t, 5, 5, 1)
	st := s.State()
	resumed, err := Resume(st)
	require.NoError(t, err)

	_, err = resumed.Step()
	require.NoError(t, err)
	assert.Empty(t, st.Path)
	assert.Equal(t, Cell{}, st.Grid.Current())
}

func TestResumeRejectsInvalidState(t *testing.T) {
	s := newSolverT(t, 4, 4, 1)
	_, err := s.Step()
	require.NoError(t, err)

	st := s.State()
	st.Visited = st.Visited[:3]
	_, err = Resume(st)
	assert.Error(t, err)

	st = s.State()
	st.Path = nil
	_, err = Resume(st)
	assert.Error(t, err)

	unbuilt, err := NewGrid(4, 4)
	require.NoError(t, err)
	_, err = Resume(&State{Grid: unbuilt, Visited: make([]bool, 16)})
	assert.Error(t, err)

	_, err = Resume(&State{})
	assert.Error(t, err)
}

func TestResumeSolved(t *testing.T) {
	s := newSolverT(t, 3, 3, 1)
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	resumed, err := Resume(s.State())
	require.NoError(t, err)
	assert.True(t, resumed.Solved())
}
