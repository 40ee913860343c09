package svglayers

import "fmt"

// LayerSet is either every layer that is visible in the source document, or an explicit set of layers.
type LayerSet struct {
	all    bool
	layers []*Layer
}

// AllVisible returns the set that keeps the visibility of the source document.
func AllVisible() LayerSet {
	return LayerSet{all: true}
}

// Explicit returns the set of the given layers.
func Explicit(layers ...*Layer) LayerSet {
	return LayerSet{layers: layers}
}

// IsAll returns true for AllVisible.
func (s LayerSet) IsAll() bool {
	return s.all
}

// Layers returns the layers of an explicit set.
func (s LayerSet) Layers() []*Layer {
	return s.layers
}

// ApplyVisibility returns a copy of doc in which exactly the selected layers and the elements on
// their path to the root element are visible. Elements that are siblings of that path are hidden,
// all other elements keep their visibility from the source document. With AllVisible the document
// keeps the visibility of its layers and only the root element is shown.
func ApplyVisibility(doc *Document, tree *Tree, set LayerSet) (*Document, error) {
	layers := set.layers
	if set.all {
		layers = []*Layer{tree.Root()}
	} else if len(layers) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrNoMatch)
	}

	doc = doc.Copy()
	selected := map[Node]bool{}
	closure := map[Node]bool{}
	order := []Node{}
	for _, l := range layers {
		n, err := l.node(doc)
		if err != nil {
			return nil, err
		}
		selected[n] = true
		for ; 0 < n; n = doc.Parent(n) {
			if !closure[n] {
				closure[n] = true
				order = append(order, n)
			}
		}
	}

	// hide the siblings of the paths from the root to the selected layers
	for _, n := range order {
		if selected[n] {
			continue
		}
		for _, c := range doc.Elements(n) {
			if !closure[c] {
				doc.hide(c)
			}
		}
	}

	// show the paths themselves
	for _, n := range order {
		doc.show(n)
	}
	return doc, nil
}
