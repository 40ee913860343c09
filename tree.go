package svglayers

import (
	"fmt"
	"html"
	"strings"
)

// Layer is a layer group of a document. The root layer represents the document itself, it has no
// identity and an empty path.
type Layer struct {
	ID   string
	Path []string

	tree     *Tree
	index    int
	parent   int
	children []int
}

// Name returns the last path element, or the empty string for the root layer.
func (l *Layer) Name() string {
	if len(l.Path) == 0 {
		return ""
	}
	return l.Path[len(l.Path)-1]
}

// IsRoot returns true for the root layer.
func (l *Layer) IsRoot() bool {
	return l.parent == -1
}

// Parent returns the parent layer, or nil for the root layer.
func (l *Layer) Parent() *Layer {
	if l.parent == -1 {
		return nil
	}
	return &l.tree.layers[l.parent]
}

// Children returns the child layers in document order.
func (l *Layer) Children() []*Layer {
	children := make([]*Layer, len(l.children))
	for i, c := range l.children {
		children[i] = &l.tree.layers[c]
	}
	return children
}

// Child returns the first child layer with the given name.
func (l *Layer) Child(name string) (*Layer, bool) {
	for _, c := range l.children {
		if l.tree.layers[c].Name() == name {
			return &l.tree.layers[c], true
		}
	}
	return nil, false
}

// Ancestors returns the chain of layers from l up to and including the root layer.
func (l *Layer) Ancestors() []*Layer {
	chain := []*Layer{}
	for i := l.index; i != -1; i = l.tree.layers[i].parent {
		chain = append(chain, &l.tree.layers[i])
	}
	return chain
}

func (l *Layer) String() string {
	return strings.Join(l.Path, "/")
}

// Tree is the immutable hierarchy of layers of a document. Layers are stored in pre-order, the
// root layer first.
type Tree struct {
	layers []Layer
}

// BuildTree gathers the layers of a document. Layers are SVG groups with inkscape:groupmode="layer"
// that are children of the root element or of another layer. Every layer must have an id attribute
// so that it can be found again in copies of the document.
func BuildTree(doc *Document) (*Tree, error) {
	t := &Tree{}
	t.layers = append(t.layers, Layer{tree: t, index: 0, parent: -1})
	if err := t.gather(doc, doc.Root(), 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) gather(doc *Document, n Node, parent int) error {
	for _, c := range doc.Elements(n) {
		if !doc.IsElement(c, svgNS, "g") {
			continue
		} else if mode, _ := doc.AttrNS(c, inkscapeNS, "groupmode"); mode != "layer" {
			continue
		}

		id, ok := doc.Attr(c, "id")
		if !ok || id == "" {
			if label, ok := doc.AttrNS(c, inkscapeNS, "label"); ok {
				return fmt.Errorf("%w: layer %s in %q", ErrMissingIdentity, html.UnescapeString(label), t.layers[parent].String())
			}
			return fmt.Errorf("%w: unnamed layer in %q", ErrMissingIdentity, t.layers[parent].String())
		}
		name := id
		if label, ok := doc.AttrNS(c, inkscapeNS, "label"); ok {
			name = html.UnescapeString(label)
		}

		path := make([]string, len(t.layers[parent].Path), len(t.layers[parent].Path)+1)
		copy(path, t.layers[parent].Path)
		path = append(path, name)

		index := len(t.layers)
		t.layers = append(t.layers, Layer{
			ID:     id,
			Path:   path,
			tree:   t,
			index:  index,
			parent: parent,
		})
		t.layers[parent].children = append(t.layers[parent].children, index)
		if err := t.gather(doc, c, index); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the root layer.
func (t *Tree) Root() *Layer {
	return &t.layers[0]
}

// Lookup returns the layer at the given path, choosing the first matching child at each level.
func (t *Tree) Lookup(path []string) (*Layer, error) {
	l := t.Root()
	for _, name := range path {
		var ok bool
		if l, ok = l.Child(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(path, "/"))
		}
	}
	return l, nil
}

// LookupPath returns the layer at a slash-separated path.
func (t *Tree) LookupPath(path string) (*Layer, error) {
	if path == "" {
		return t.Root(), nil
	}
	return t.Lookup(strings.Split(path, "/"))
}

// Flatten returns all layers in pre-order, starting with the root layer.
func (t *Tree) Flatten() []*Layer {
	layers := make([]*Layer, len(t.layers))
	for i := range t.layers {
		layers[i] = &t.layers[i]
	}
	return layers
}

// node locates the element of layer l in doc, which may be a copy of the document the tree was built from.
func (l *Layer) node(doc *Document) (Node, error) {
	if l.IsRoot() {
		return doc.Root(), nil
	}
	n, ok := doc.ElementByID(l.ID)
	if !ok {
		return NoNode, fmt.Errorf("%w: %s (id %s)", ErrNotFound, l.String(), l.ID)
	}
	return n, nil
}
