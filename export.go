package svglayers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

// Renderer converts the SVG file src into the output file dst. The format of dst is given by its
// extension.
type Renderer interface {
	Render(src, dst string) error
}

// Options select what is exported.
type Options struct {
	Selections []Selection // nil exports every layer that is visible in the source document
	Crop       string      // path of the layer to crop to, or empty
}

// Exporter renders a selection of layers of a document into an output file.
type Exporter struct {
	Renderer Renderer
	Minify   bool
	Log      logrus.FieldLogger
}

func (e *Exporter) log() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

// Prepare returns a copy of doc with the selected layers visible and translated by their offsets,
// and cropped to the crop layer if set.
func (e *Exporter) Prepare(doc *Document, opts Options) (*Document, error) {
	tree, err := BuildTree(doc)
	if err != nil {
		return nil, err
	}

	set, offsets := AllVisible(), TransformMap{}
	if opts.Selections != nil {
		if set, offsets, err = tree.Select(opts.Selections); err != nil {
			return nil, err
		}
		e.log().WithField("layers", len(set.Layers())).Debug("resolved selections")
	}

	var crop *Layer
	if opts.Crop != "" {
		// fail before any transformation when the crop layer does not exist
		if crop, err = tree.LookupPath(opts.Crop); err != nil {
			return nil, err
		}
	}

	if doc, err = ApplyVisibility(doc, tree, set); err != nil {
		return nil, err
	}
	if 0 < len(offsets) {
		if doc, err = ApplyOffsets(doc, offsets); err != nil {
			return nil, err
		}
		e.log().WithField("layers", len(offsets)).Debug("applied offsets")
	}
	if crop != nil {
		var rect canvas.Rect
		if doc, rect, err = CropToLayer(doc, tree, crop); err != nil {
			return nil, err
		}
		e.log().WithFields(logrus.Fields{
			"layer":   crop.String(),
			"viewBox": fmt.Sprintf("%v %v %v %v", rect.X0, rect.Y0, rect.X1-rect.X0, rect.Y1-rect.Y0),
		}).Debug("cropped")
	}
	return doc, nil
}

// Export prepares doc and renders it to dst. The output is rendered to a temporary file next to
// dst, which is renamed to dst only on success. On failure dst is left untouched.
func (e *Exporter) Export(doc *Document, dst string, opts Options) error {
	if e.Renderer == nil {
		return fmt.Errorf("no renderer")
	}
	doc, err := e.Prepare(doc, opts)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "svglayers")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "document.svg")
	if err := e.writeSVG(doc, src); err != nil {
		return err
	}

	tmp := tempPath(dst)
	e.log().WithFields(logrus.Fields{"src": src, "dst": tmp}).Debug("rendering")
	if err := e.Renderer.Render(src, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	e.log().WithField("dst", dst).Info("exported")
	return nil
}

func (e *Exporter) writeSVG(doc *Document, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if e.Minify {
		buf := &bytes.Buffer{}
		if _, err := doc.WriteTo(buf); err != nil {
			f.Close()
			return err
		}
		m := minify.New()
		m.AddFunc("image/svg+xml", svg.Minify)
		if err := m.Minify("image/svg+xml", f, buf); err != nil {
			f.Close()
			return fmt.Errorf("minify: %w", err)
		}
	} else if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// tempPath returns a unique hidden path in the directory of dst with the same extension.
func tempPath(dst string) string {
	dir, base := filepath.Split(dst)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+"."+uuid.NewString()+ext)
}

// ListLayers writes the path of every layer except the root, one per line in pre-order.
func ListLayers(w io.Writer, tree *Tree) error {
	for _, l := range tree.Flatten() {
		if l.IsRoot() {
			continue
		}
		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}
	}
	return nil
}
