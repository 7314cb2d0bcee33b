package report

import "github.com/fatih/color"

// palette holds the colours of one report. Every colour is disabled unless the
// report was asked for colour, regardless of the terminal.
type palette struct {
	title    *color.Color
	version  *color.Color
	location *color.Color
	warning  *color.Color
	emphasis *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:    color.New(color.Bold),
		version:  color.New(color.FgCyan, color.Bold),
		location: color.New(color.FgGreen, color.Bold),
		warning:  color.New(color.FgYellow),
		emphasis: color.New(color.FgMagenta, color.Bold),
	}
	for _, c := range []*color.Color{p.title, p.version, p.location, p.warning, p.emphasis} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
