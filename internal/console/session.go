package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/maze-solver/internal/maze"
)

// Display shows the maze after every command.
type Display interface {
	Show(v maze.View)
}

type Saver interface {
	Save(name string, st *maze.State) error
}

// Text writes the text rendering of the maze to an [io.Writer].
type Text struct {
	W io.Writer
}

func (t Text) Show(v maze.View) {
	fmt.Fprint(t.W, maze.Render(v))
}

// Session drives a solver from an [Input] until the goal is reached, the
// user quits or input runs out.
type Session struct {
	Solver  *maze.Solver
	Input   Input
	Display Display
	Saver   Saver
	Out     io.Writer
	Log     logrus.FieldLogger
}

func (s *Session) say(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, format+"\n", args...)
	}
}

func (s *Session) show() {
	if s.Display != nil {
		s.Display.Show(s.Solver.Snapshot())
	}
}

// Run processes commands. It returns nil when the goal is reached, on Quit
// and at the end of input; a solver error ends the session.
func (s *Session) Run(ctx context.Context) error {
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
	s.show()
	s.say("Please enter Q to quit, S to save, R to run to the goal or ENTER to move:")

	for !s.Solver.Solved() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, arg, err := s.Input.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrInvalidCommand) {
			s.Log.WithError(err).Warn("ignoring command")
			continue
		}
		if err != nil {
			return fmt.Errorf("unable to read command: %w", err)
		}

		switch cmd {
		case Quit:
			s.Log.Info("quitting")
			return nil
		case Save:
			s.save(arg)
			continue
		case StepOnce:
			phase, err := s.Solver.Step()
			if err != nil {
				return fmt.Errorf("step failed: %w", err)
			}
			s.Log.WithFields(logrus.Fields{
				"phase":   phase.String(),
				"current": s.Solver.Current().String(),
				"depth":   len(s.Solver.Path()),
			}).Debug("step")
		case Run:
			steps, err := s.Solver.Run(ctx)
			if err != nil {
				return fmt.Errorf("run failed after %d steps: %w", steps, err)
			}
			s.Log.WithField("steps", steps).Debug("ran to the goal")
		}
		s.show()
	}

	s.say("goal reached in %d moves", len(s.Solver.Path()))
	return nil
}

func (s *Session) save(name string) {
	if s.Saver == nil {
		s.say("saving is not available")
		return
	}
	if err := s.Saver.Save(name, s.Solver.State()); err != nil {
		s.Log.WithError(err).WithField("name", name).Error("unable to save")
		s.say("unable to save: %v", err)
		return
	}
	s.Log.WithField("name", name).Info("saved")
	s.say("saved as %s", name)
}
