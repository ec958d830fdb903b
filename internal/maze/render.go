package maze

import "strings"

// Symbol is the character drawn inside a cell.
func Symbol(v View, c Cell) rune {
	switch v.Status(c) {
	case Current:
		return '@'
	case Goal:
		return 'G'
	case Frontier:
		return '*'
	}
	if v.OnTrail(c) {
		return '.'
	}
	return ' '
}

// Render draws v as text, three columns and one line per cell plus walls:
//
//	+---+---+
//	| @ .   |
//	+---+   +
//	|     G |
//	+---+---+
func Render(v View) string {
	var b strings.Builder
	for row := range v.Rows() {
		b.WriteByte('+')
		for col := range v.Cols() {
			if v.IsOpen(Cell{Row: row, Col: col}, Up) {
				b.WriteString("   +")
			} else {
				b.WriteString("---+")
			}
		}
		b.WriteByte('\n')

		b.WriteByte('|')
		for col := range v.Cols() {
			c := Cell{Row: row, Col: col}
			b.WriteByte(' ')
			b.WriteRune(Symbol(v, c))
			b.WriteByte(' ')
			if v.IsOpen(c, Right) {
				b.WriteByte(' ')
			} else {
				b.WriteByte('|')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteByte('+')
	b.WriteString(strings.Repeat("---+", v.Cols()))
	b.WriteByte('\n')
	return b.String()
}

func (g *Grid) String() string {
	return Render(g)
}
