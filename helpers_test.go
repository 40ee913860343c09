package svglayers

import (
	"math"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/test"
)

// layersSVG has the layers A, A/B and C, where A/B is hidden.
const layersSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" width="100mm" height="50mm" viewBox="0 0 100 50">
<g inkscape:groupmode="layer" id="layer1" inkscape:label="A">
<rect id="rect1" x="10" y="10" width="20" height="10"/>
<g inkscape:groupmode="layer" id="layer2" inkscape:label="B" style="display:none">
<rect id="rect2" x="50" y="30" width="10" height="10"/>
</g>
</g>
<g inkscape:groupmode="layer" id="layer3" inkscape:label="C">
<path id="path1" d="M60 10L90 10" style="fill:none;stroke:#000;stroke-width:2"/>
</g>
</svg>`

func parseString(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func buildTree(t *testing.T, doc *Document) *Tree {
	t.Helper()
	tree, err := BuildTree(doc)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func elementByID(t *testing.T, doc *Document, id string) Node {
	t.Helper()
	n, ok := doc.ElementByID(id)
	if !ok {
		t.Fatalf("element %s not found", id)
	}
	return n
}

func testRect(t *testing.T, r, expected canvas.Rect) {
	t.Helper()
	testRectTolerance(t, r, expected, 1e-6)
}

// testRectTolerance compares boxes of flattened curves, such as stroked circles.
func testRectTolerance(t *testing.T, r, expected canvas.Rect, epsilon float64) {
	t.Helper()
	if math.Abs(r.X0-expected.X0) > epsilon || math.Abs(r.Y0-expected.Y0) > epsilon ||
		math.Abs(r.X1-expected.X1) > epsilon || math.Abs(r.Y1-expected.Y1) > epsilon {
		test.Fail(t, r, "!=", expected)
	}
}
