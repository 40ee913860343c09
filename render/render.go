// Package render contains the backends that turn a prepared SVG file into the requested output format.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/tdewolff/svglayers"
)

// ByName returns the renderer with the given name. The Inkscape renderers run the binary command
// and relay its diagnostics to stderr.
func ByName(name, command string, stderr io.Writer) (svglayers.Renderer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	switch name {
	case "inkscape":
		return &Inkscape{Command: command, Stderr: stderr}, nil
	case "inkscape-legacy":
		return &Inkscape{Command: command, Legacy: true, Stderr: stderr}, nil
	case "canvas":
		return &Canvas{Resolution: DefaultResolution}, nil
	}
	return nil, fmt.Errorf("unknown renderer: %s", name)
}
