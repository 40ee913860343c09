package svglayers

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
)

// nonRendered are containers whose content is never rendered directly.
var nonRendered = map[string]bool{
	"defs":           true,
	"clipPath":       true,
	"mask":           true,
	"marker":         true,
	"pattern":        true,
	"symbol":         true,
	"metadata":       true,
	"title":          true,
	"desc":           true,
	"style":          true,
	"script":         true,
	"linearGradient": true,
	"radialGradient": true,
	"filter":         true,
}

type boundsWalker struct {
	doc           *Document
	width, height float64 // viewport for percentages

	rect  canvas.Rect
	empty bool

	uses map[Node]bool
}

// Bounds returns the bounding box of the rendered content of element n in the user space of the
// root element. It includes the stroke of shapes and all transforms of n and its ancestors. Hidden
// descendants are not included, text is not measured. It returns ErrEmptyBounds when n has no
// measurable content.
func Bounds(doc *Document, n Node) (canvas.Rect, error) {
	m := canvas.Identity
	ancestors := []Node{}
	for a := doc.Parent(n); 0 < a; a = doc.Parent(a) {
		ancestors = append(ancestors, a)
	}
	for i := len(ancestors) - 1; 0 <= i; i-- {
		if val, ok := doc.Attr(ancestors[i], "transform"); ok {
			t, err := parseTransform(val)
			if err != nil {
				return canvas.Rect{}, err
			}
			m = m.Mul(t)
		}
	}

	w := &boundsWalker{
		doc:   doc,
		empty: true,
		uses:  map[Node]bool{},
	}
	if viewBox, ok := ViewBox(doc); ok {
		w.width, w.height = viewBox.X1-viewBox.X0, viewBox.Y1-viewBox.Y0
	}
	if err := w.element(n, m); err != nil {
		return canvas.Rect{}, err
	} else if w.empty || !(w.rect.X0 < w.rect.X1) || !(w.rect.Y0 < w.rect.Y1) {
		return canvas.Rect{}, fmt.Errorf("%w: %s", ErrEmptyBounds, describe(doc, n))
	}
	return w.rect, nil
}

func describe(doc *Document, n Node) string {
	if id, ok := doc.Attr(n, "id"); ok {
		return fmt.Sprintf("%s#%s", doc.Name(n), id)
	}
	return doc.Name(n)
}

func (w *boundsWalker) add(r canvas.Rect) {
	if math.IsNaN(r.X0) || math.IsNaN(r.Y0) || math.IsNaN(r.X1) || math.IsNaN(r.Y1) {
		return
	} else if w.empty {
		w.rect = r
		w.empty = false
		return
	}
	w.rect.X0 = math.Min(w.rect.X0, r.X0)
	w.rect.Y0 = math.Min(w.rect.Y0, r.Y0)
	w.rect.X1 = math.Max(w.rect.X1, r.X1)
	w.rect.Y1 = math.Max(w.rect.Y1, r.Y1)
}

// svgName returns the local name of an SVG element, or the empty string for other nodes.
func (w *boundsWalker) svgName(n Node) string {
	if w.doc.Type(n) != ElementNode {
		return ""
	}
	prefix, name := splitName(w.doc.Name(n))
	if w.doc.namespace(n, prefix) != svgNS {
		return ""
	}
	return name
}

func (w *boundsWalker) children(n Node, m canvas.Matrix) error {
	for _, c := range w.doc.Elements(n) {
		if w.doc.hidden(c) {
			continue
		}
		if err := w.element(c, m); err != nil {
			return err
		}
	}
	return nil
}

func (w *boundsWalker) element(n Node, m canvas.Matrix) error {
	name := w.svgName(n)
	if name == "" || nonRendered[name] {
		return nil
	}
	if val, ok := w.doc.Attr(n, "transform"); ok {
		t, err := parseTransform(val)
		if err != nil {
			return err
		}
		m = m.Mul(t)
	}

	switch name {
	case "svg", "g", "a", "switch":
		if name == "svg" && n != w.doc.Root() {
			x, _ := w.length(n, "x", w.width)
			y, _ := w.length(n, "y", w.height)
			m = m.Translate(x, y)
		}
		return w.children(n, m)
	case "use":
		return w.use(n, m)
	}

	p, err := w.shape(n, name)
	if err != nil || p == nil {
		return err
	}
	if name != "image" {
		if p, err = w.stroke(n, p); err != nil {
			return err
		}
	}
	if !p.Empty() {
		w.add(p.Transform(m).Bounds())
	}
	return nil
}

func (w *boundsWalker) use(n Node, m canvas.Matrix) error {
	href, ok := w.doc.AttrNS(n, xlinkNS, "href")
	if !ok {
		href, ok = w.doc.Attr(n, "href")
	}
	if !ok || !strings.HasPrefix(href, "#") {
		return nil
	}
	target, ok := w.doc.ElementByID(href[1:])
	if !ok || w.uses[target] {
		return nil
	}

	x, err := w.length(n, "x", w.width)
	if err != nil {
		return err
	}
	y, err := w.length(n, "y", w.height)
	if err != nil {
		return err
	}
	m = m.Translate(x, y)

	w.uses[target] = true
	defer delete(w.uses, target)
	if w.svgName(target) == "symbol" {
		return w.children(target, m)
	} else if w.doc.hidden(target) {
		return nil
	}
	return w.element(target, m)
}

func (w *boundsWalker) length(n Node, key string, parent float64) (float64, error) {
	val, ok := w.doc.Attr(n, key)
	if !ok {
		return 0.0, nil
	}
	l, err := parseLength(val, parent)
	if err != nil {
		return 0.0, fmt.Errorf("%s: %w", describe(w.doc, n), err)
	}
	return l, nil
}

func (w *boundsWalker) lengths(n Node, keys ...string) ([]float64, error) {
	diagonal := math.Sqrt((w.width*w.width + w.height*w.height) / 2.0)
	vals := make([]float64, len(keys))
	for i, key := range keys {
		parent := diagonal
		switch key {
		case "x", "cx", "x1", "x2", "width", "rx":
			parent = w.width
		case "y", "cy", "y1", "y2", "height", "ry":
			parent = w.height
		}
		var err error
		if vals[i], err = w.length(n, key, parent); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

// shape returns the geometry of a basic shape in its own user space, or nil if it renders nothing.
func (w *boundsWalker) shape(n Node, name string) (*canvas.Path, error) {
	switch name {
	case "path":
		d, ok := w.doc.Attr(n, "d")
		if !ok || strings.TrimSpace(d) == "" {
			return nil, nil
		}
		p, err := canvas.ParseSVGPath(d)
		if err != nil {
			return nil, fmt.Errorf("%s: bad path: %w", describe(w.doc, n), err)
		}
		return p, nil
	case "rect", "image":
		v, err := w.lengths(n, "x", "y", "width", "height")
		if err != nil || v[2] <= 0.0 || v[3] <= 0.0 {
			return nil, err
		}
		return canvas.Rectangle(v[2], v[3]).Translate(v[0], v[1]), nil
	case "circle":
		v, err := w.lengths(n, "cx", "cy", "r")
		if err != nil || v[2] <= 0.0 {
			return nil, err
		}
		return canvas.Circle(v[2]).Translate(v[0], v[1]), nil
	case "ellipse":
		v, err := w.lengths(n, "cx", "cy", "rx", "ry")
		if err != nil || v[2] <= 0.0 || v[3] <= 0.0 {
			return nil, err
		}
		return canvas.Ellipse(v[2], v[3]).Translate(v[0], v[1]), nil
	case "line":
		v, err := w.lengths(n, "x1", "y1", "x2", "y2")
		if err != nil {
			return nil, err
		}
		p := &canvas.Path{}
		p.MoveTo(v[0], v[1])
		p.LineTo(v[2], v[3])
		return p, nil
	case "polyline", "polygon":
		val, _ := w.doc.Attr(n, "points")
		points, err := parseNumbers(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", describe(w.doc, n), err)
		} else if len(points) < 2 {
			return nil, nil
		}
		p := &canvas.Path{}
		p.MoveTo(points[0], points[1])
		for i := 2; i+1 < len(points); i += 2 {
			p.LineTo(points[i], points[i+1])
		}
		if name == "polygon" {
			p.Close()
		}
		return p, nil
	}
	return nil, nil
}

// stroke returns the outline of the stroke of p united with p itself, or p if the shape is not stroked.
func (w *boundsWalker) stroke(n Node, p *canvas.Path) (*canvas.Path, error) {
	if paint, ok := w.doc.inheritedProperty(n, "stroke"); !ok || paint == "none" || paint == "" {
		return p, nil
	}

	width := 1.0
	if val, ok := w.doc.inheritedProperty(n, "stroke-width"); ok {
		var err error
		diagonal := math.Sqrt((w.width*w.width + w.height*w.height) / 2.0)
		if width, err = parseLength(val, diagonal); err != nil {
			return nil, fmt.Errorf("%s: %w", describe(w.doc, n), err)
		}
	}
	if width <= 0.0 {
		return p, nil
	}

	var capper canvas.Capper = canvas.ButtCap
	if val, _ := w.doc.inheritedProperty(n, "stroke-linecap"); val == "round" {
		capper = canvas.RoundCap
	} else if val == "square" {
		capper = canvas.SquareCap
	}
	var joiner canvas.Joiner = canvas.MiterJoin
	if val, _ := w.doc.inheritedProperty(n, "stroke-linejoin"); val == "round" {
		joiner = canvas.RoundJoin
	} else if val == "bevel" {
		joiner = canvas.BevelJoin
	}

	outline := p.Stroke(width, capper, joiner, canvas.Tolerance)
	return outline.Append(p), nil
}
