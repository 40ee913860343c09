package svglayers

import (
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
)

// TransformMap maps layer identities to the offsets by which the layers are translated.
type TransformMap map[string]canvas.Point

// ApplyOffsets returns a copy of doc in which every layer in offsets is translated by its offset.
// The translation is prepended to the transform of the layer so that it composes with the existing one.
func ApplyOffsets(doc *Document, offsets TransformMap) (*Document, error) {
	doc = doc.Copy()
	for id, offset := range offsets {
		if offset.IsZero() {
			continue
		}
		n, ok := doc.ElementByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: layer with id %s", ErrNotFound, id)
		}

		translate := fmt.Sprintf("translate(%s,%s)", ftos(offset.X), ftos(offset.Y))
		if transform, ok := doc.Attr(n, "transform"); ok && strings.TrimSpace(transform) != "" {
			translate += " " + strings.TrimSpace(transform)
		}
		doc.SetAttr(n, "transform", translate)
	}
	return doc, nil
}

// ViewBox returns the viewBox of the root element.
func ViewBox(doc *Document) (canvas.Rect, bool) {
	val, ok := doc.Attr(doc.Root(), "viewBox")
	if !ok {
		return canvas.Rect{}, false
	}
	v, err := parseNumbers(val)
	if err != nil || len(v) != 4 || v[2] < 0.0 || v[3] < 0.0 {
		return canvas.Rect{}, false
	}
	return canvas.Rect{X0: v[0], Y0: v[1], X1: v[0] + v[2], Y1: v[1] + v[3]}, true
}

// pageBox returns the viewBox of the root element, or the box spanned by its width and height.
func pageBox(doc *Document) (canvas.Rect, bool) {
	if viewBox, ok := ViewBox(doc); ok {
		return viewBox, true
	}
	root := doc.Root()
	w, okW := doc.Attr(root, "width")
	h, okH := doc.Attr(root, "height")
	if !okW || !okH {
		return canvas.Rect{}, false
	}
	width, err := parseLength(w, 0.0)
	if err != nil || width <= 0.0 {
		return canvas.Rect{}, false
	}
	height, err := parseLength(h, 0.0)
	if err != nil || height <= 0.0 {
		return canvas.Rect{}, false
	}
	return canvas.Rect{X0: 0.0, Y0: 0.0, X1: width, Y1: height}, true
}

// CropToLayer returns a copy of doc whose page is the bounding box of the rendered content of
// layer l. The width and height of the root element are scaled by the ratio of the new to the old
// page size keeping their units, and the viewBox is set to the bounding box. Content coordinates
// are left unchanged.
func CropToLayer(doc *Document, tree *Tree, l *Layer) (*Document, canvas.Rect, error) {
	n, err := l.node(doc)
	if err != nil {
		return nil, canvas.Rect{}, err
	}
	rect, err := Bounds(doc, n)
	if err != nil {
		return nil, canvas.Rect{}, fmt.Errorf("%w (layer %s)", err, l)
	}

	doc = doc.Copy()
	root := doc.Root()
	if old, ok := pageBox(doc); ok {
		for _, dim := range []struct {
			key      string
			old, new float64
		}{
			{"width", old.X1 - old.X0, rect.X1 - rect.X0},
			{"height", old.Y1 - old.Y0, rect.Y1 - rect.Y0},
		} {
			val, ok := doc.Attr(root, dim.key)
			if !ok || dim.old <= 0.0 {
				continue
			}
			num, unit, err := splitDimension(val)
			if err != nil {
				return nil, canvas.Rect{}, fmt.Errorf("root %s: %w", dim.key, err)
			}
			doc.SetAttr(root, dim.key, ftos(num*dim.new/dim.old)+unit)
		}
	}
	doc.SetAttr(root, "viewBox", strings.Join([]string{
		ftos(rect.X0),
		ftos(rect.Y0),
		ftos(rect.X1 - rect.X0),
		ftos(rect.Y1 - rect.Y0),
	}, " "))
	return doc, rect, nil
}
