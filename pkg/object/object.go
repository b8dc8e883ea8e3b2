package object

// Object is a named, renderable handle.
type Object interface {
	Name() string
	SetName(name string)
	Kind() Kind
}

// Titled objects carry a title and its font size.
type Titled interface {
	Title() string
	SetTitle(title string)
	SetTitleSize(size float64)
}

// Axes is implemented by objects that expose their axes directly.
type Axes interface {
	XAxis() *Axis
	YAxis() *Axis
}

// Colored objects have a line and a marker colour.
type Colored interface {
	LineColor() Color
	SetLineColor(c Color)
	MarkerColor() Color
	SetMarkerColor(c Color)
}

// StatsBoxer is implemented by objects that can show a statistics box.
type StatsBoxer interface {
	SetStats(show bool)
	StatsEnabled() bool
}

// Painter is implemented by objects whose drawable representation is only
// built when they are first rendered. Toolkits call Paint on draw.
type Painter interface {
	Paint()
}

// Releaser is implemented by objects holding resources that should be freed
// once the registry drops them.
type Releaser interface {
	Release()
}

// Described objects record the expression that produced them.
type Described interface {
	VarInfo() string
	SetVarInfo(v string)
}
