package render

// Options configures the markdown renderer behavior.
type Options struct {
	// Width is the word-wrap column
	Width int

	// Style is a glamour style name ("dark", "light", "dracula", "notty",
	// "ascii", "tokyo-night") or a path to a JSON style file
	Style string

	// EnableEmoji converts :emoji: to unicode characters
	EnableEmoji bool

	// PreserveNewLines keeps single line breaks
	PreserveNewLines bool

	// TableWrap wraps long table cells
	TableWrap bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      false,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
