package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Command uint8

const (
	StepOnce Command = iota
	Save
	Quit
	Run
)

func (c Command) String() string {
	switch c {
	case StepOnce:
		return "step"
	case Save:
		return "save"
	case Quit:
		return "quit"
	case Run:
		return "run"
	default:
		return "!"
	}
}

var ErrInvalidCommand = errors.New("invalid command")

// Maps known commands to whether they take an argument
var commandArgs = map[string]bool{
	"":  false,
	"q": false,
	"s": true,
	"r": false,
}

// ParseCommand reads one line of input: an empty line steps once, "q"
// quits, "r" runs to the goal and "s [name]" saves. Letters are case
// insensitive.
func ParseCommand(line string) (Command, string, error) {
	parts := strings.Fields(line)
	name := ""
	if len(parts) > 0 {
		name = strings.ToLower(parts[0])
	}
	takesArg, ok := commandArgs[name]
	if !ok {
		return 0, "", fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, parts[0])
	}
	if len(parts) > 2 || (!takesArg && len(parts) > 1) {
		return 0, "", fmt.Errorf("%w: invalid number of arguments", ErrInvalidCommand)
	}
	arg := ""
	if len(parts) == 2 {
		arg = parts[1]
	}
	switch name {
	case "q":
		return Quit, "", nil
	case "s":
		return Save, arg, nil
	case "r":
		return Run, "", nil
	default:
		return StepOnce, "", nil
	}
}

// Input supplies commands to a [Session]. Next returns [io.EOF] when there
// is nothing more to read.
type Input interface {
	Next() (Command, string, error)
}

// Lines reads commands line by line, prompting on w.
type Lines struct {
	scanner *bufio.Scanner
	w       io.Writer
}

func NewLines(r io.Reader, w io.Writer) *Lines {
	return &Lines{scanner: bufio.NewScanner(r), w: w}
}

func (l *Lines) readLine() (string, error) {
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return l.scanner.Text(), nil
}

func (l *Lines) Next() (Command, string, error) {
	line, err := l.readLine()
	if err != nil {
		return 0, "", err
	}
	cmd, arg, err := ParseCommand(line)
	if err != nil {
		return 0, "", err
	}
	if cmd == Save && arg == "" {
		fmt.Fprint(l.w, "what name should we save under? ")
		line, err := l.readLine()
		if err != nil {
			return 0, "", err
		}
		arg = strings.TrimSpace(line)
	}
	return cmd, arg, nil
}
