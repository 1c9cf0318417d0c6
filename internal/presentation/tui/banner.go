package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the handheld banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{` _                     _ _          _     _ `, "#22d3ee"},
		{`| |__   __ _ _ __   __| | |__   ___| | __| |`, "#38bdf8"},
		{`| '_ \ / _' | '_ \ / _' | '_ \ / _ \ |/ _' |`, "#60a5fa"},
		{`| | | | (_| | | | | (_| | | | |  __/ | (_| |`, "#818cf8"},
		{`|_| |_|\__,_|_| |_|\__,_|_| |_|\___|_|\__,_|`, "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
