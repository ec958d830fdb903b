package maze

import "fmt"

type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in the order the solver tries them.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return +1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, +1
	}
	return 0, 0
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) Valid() bool {
	return d <= Right
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection accepts full names and their first letters.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "u", "U":
		return Up, nil
	case "down", "d", "D":
		return Down, nil
	case "left", "l", "L":
		return Left, nil
	case "right", "r", "R":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
