package maze

// View is the read-only face of a [Grid] handed to renderers and encoders.
type View interface {
	Rows() int
	Cols() int
	Built() bool
	Current() Cell
	Goal() Cell
	IsOpen(c Cell, d Direction) bool
	OnTrail(c Cell) bool
	Status(c Cell) Status
}

var _ View = (*Grid)(nil)

// Hook observes the grid between algorithm steps. It is the only place a
// caller may pace or animate generation and solving; nil hooks are skipped.
type Hook func(View)

func (h Hook) call(v View) {
	if h != nil {
		h(v)
	}
}

// readOnly exposes a grid through [View] only; unlike a *Grid it cannot be
// asserted back to something with mutating methods.
type readOnly struct {
	g *Grid
}

func (v readOnly) Rows() int                       { return v.g.Rows() }
func (v readOnly) Cols() int                       { return v.g.Cols() }
func (v readOnly) Built() bool                     { return v.g.Built() }
func (v readOnly) Current() Cell                   { return v.g.Current() }
func (v readOnly) Goal() Cell                      { return v.g.Goal() }
func (v readOnly) IsOpen(c Cell, d Direction) bool { return v.g.IsOpen(c, d) }
func (v readOnly) OnTrail(c Cell) bool             { return v.g.OnTrail(c) }
func (v readOnly) Status(c Cell) Status            { return v.g.Status(c) }
