package tui

import (
	"io"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vancomm/maze-solver/internal/console"
	"github.com/vancomm/maze-solver/internal/maze"
)

var (
	wallStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	currentStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	goalStyle    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	trailStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	carverStyle  = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Screen draws mazes on a terminal and turns key presses into console
// commands, so it serves a [console.Session] as both display and input.
type Screen struct {
	screen   tcell.Screen
	saveName string
	status   string
	last     maze.View
}

// New wraps an initialized screen. Saves requested with 's' use saveName.
func New(screen tcell.Screen, saveName string) *Screen {
	return &Screen{screen: screen, saveName: saveName}
}

func styleFor(r rune) tcell.Style {
	switch r {
	case '@':
		return currentStyle
	case 'G':
		return goalStyle
	case '.':
		return trailStyle
	case '*':
		return carverStyle
	default:
		return wallStyle
	}
}

// Show paints v followed by a status line.
func (s *Screen) Show(v maze.View) {
	s.last = v
	s.screen.Clear()
	lines := strings.Split(strings.TrimSuffix(maze.Render(v), "\n"), "\n")
	for y, line := range lines {
		for x, r := range []rune(line) {
			s.screen.SetContent(x, y, r, nil, styleFor(r))
		}
	}
	status := s.status
	if status == "" {
		status = "ENTER step  r run  s save  q quit"
	}
	for x, r := range []rune(status) {
		s.screen.SetContent(x, len(lines)+1, r, nil, statusStyle)
	}
	s.screen.Show()
}

// SetStatus replaces the help line shown under the maze.
func (s *Screen) SetStatus(status string) {
	s.status = status
	if s.last != nil {
		s.Show(s.last)
	}
}

// Hook returns a maze hook that repaints after every step and then waits
// for delay, which is how builds and runs are animated.
func (s *Screen) Hook(delay time.Duration) maze.Hook {
	return func(v maze.View) {
		s.Show(v)
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// commandFor maps a key to a command; ok is false for keys with no meaning.
func commandFor(key tcell.Key, r rune) (cmd console.Command, ok bool) {
	switch key {
	case tcell.KeyEnter, tcell.KeyDown:
		return console.StepOnce, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return console.Quit, true
	case tcell.KeyRune:
		switch r {
		case ' ', 'j':
			return console.StepOnce, true
		case 'q', 'Q':
			return console.Quit, true
		case 's', 'S':
			return console.Save, true
		case 'r', 'R':
			return console.Run, true
		}
	}
	return 0, false
}

// Next blocks until a key with a meaning is pressed. It returns [io.EOF]
// once the screen has been finalized.
func (s *Screen) Next() (console.Command, string, error) {
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return 0, "", io.EOF
		case *tcell.EventResize:
			s.screen.Sync()
			if s.last != nil {
				s.Show(s.last)
			}
		case *tcell.EventKey:
			cmd, ok := commandFor(ev.Key(), ev.Rune())
			if !ok {
				continue
			}
			if cmd == console.Save {
				return cmd, s.saveName, nil
			}
			return cmd, "", nil
		}
	}
}

var (
	_ console.Display = (*Screen)(nil)
	_ console.Input   = (*Screen)(nil)
)
