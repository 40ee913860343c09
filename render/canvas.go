package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"github.com/tdewolff/svglayers"
)

// DefaultResolution is 96 DPI, the resolution at which Inkscape exports by default.
var DefaultResolution = canvas.DPMM(96.0 / 25.4)

// Canvas renders in-process without external dependencies. It supports the formats of
// renderers.Write, such as PDF, SVG, PNG and JPEG. Text support is limited. The resolution only
// applies to raster formats.
type Canvas struct {
	Resolution canvas.Resolution
}

func (r *Canvas) Render(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := canvas.ParseSVG(f)
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", svglayers.ErrRender, src, err)
	}

	opts := []interface{}{}
	if isRaster(dst) {
		resolution := r.Resolution
		if resolution == 0.0 {
			resolution = DefaultResolution
		}
		opts = append(opts, resolution)
	}
	if err := renderers.Write(dst, c, opts...); err != nil {
		return fmt.Errorf("%w: write %s: %v", svglayers.ErrRender, dst, err)
	}
	return nil
}

// isRaster returns true for the formats that take a resolution.
func isRaster(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff":
		return true
	}
	return false
}
