package layout

// LayoutStrategy renders a frame as a list of terminal lines. Lines may
// carry colour sequences but never exceed the sizer width in visible cells.
type LayoutStrategy interface {
	Render(view View, sizer *Sizer) []string
	GetName() string
}

// Layout styles, cycled with the layout key
const (
	StyleFull = iota
	StyleCompact
	styleCount
)

// NextStyle returns the style after style
func NextStyle(style int) int {
	return (style + 1) % styleCount
}

// GetLayoutStrategy returns the appropriate layout strategy based on the style
func GetLayoutStrategy(layoutStyle int) LayoutStrategy {
	switch layoutStyle {
	case StyleCompact:
		return &CompactLayoutStrategy{}
	default:
		return &FullLayoutStrategy{}
	}
}
