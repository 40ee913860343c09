package svglayers

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestParse(t *testing.T) {
	var tests = []string{
		`<svg/>`,
		`<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<svg xmlns="http://www.w3.org/2000/svg"><g id="a"><rect width="1" height="2"/></g></svg>`,
		`<!DOCTYPE svg><svg><!-- comment --><text>a &amp; b</text></svg>`,
		`<svg><style><![CDATA[rect{fill:red}]]></style></svg>`,
		`<svg><g style='font-family:"Arial"'>x</g></svg>`,
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			doc := parseString(t, tt)
			test.String(t, doc.String(), tt)
		})
	}
}

func TestParseError(t *testing.T) {
	var tests = []string{
		``,
		`<!-- only a comment -->`,
		`<svg><g></svg>`,
		`<svg>`,
		`<svg/><svg/>`,
		`</svg>`,
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt))
			test.That(t, err != nil, "expected error")
			test.That(t, !IsUserError(err), "parse errors are internal errors")
		})
	}
}

func TestParseFile(t *testing.T) {
	doc, err := ParseFile("testdata/layers.svg")
	test.Error(t, err)

	n := elementByID(t, doc, "layer2")
	label, _ := doc.AttrNS(n, inkscapeNS, "label")
	test.String(t, label, "Figures &amp; Notes")
	test.T(t, doc.Type(n), ElementNode)
	test.T(t, doc.Parent(n), doc.Root())

	_, err = ParseFile("testdata/missing.svg")
	test.That(t, os.IsNotExist(err))
}

func TestParseEncoding(t *testing.T) {
	b := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><svg><g id=\"a\" title=\"caf\xe9\"/></svg>")
	doc, err := Parse(bytes.NewReader(b))
	test.Error(t, err)

	title, _ := doc.Attr(elementByID(t, doc, "a"), "title")
	test.String(t, title, "café")
	test.String(t, doc.String(), `<?xml version="1.0" encoding="UTF-8"?><svg><g id="a" title="café"/></svg>`)
}

func TestDocumentCopy(t *testing.T) {
	doc := parseString(t, layersSVG)
	orig := doc.String()

	cp := doc.Copy()
	n := elementByID(t, cp, "layer1")
	cp.SetAttr(n, "transform", "translate(1,2)")
	cp.RemoveAttr(n, "id")
	cp.SetStyle(elementByID(t, cp, "layer3"), "display", "none")

	test.String(t, doc.String(), orig)
	_, ok := doc.Attr(elementByID(t, doc, "layer1"), "transform")
	test.That(t, !ok, "source must not be modified")

	// node references are shared between copies
	m := elementByID(t, doc, "rect1")
	test.T(t, cp.Name(m), "rect")
}

func TestDocumentAttr(t *testing.T) {
	doc := parseString(t, `<svg><g id="a" x="1"/></svg>`)
	n := elementByID(t, doc, "a")

	doc.SetAttr(n, "x", "2")
	doc.SetAttr(n, "y", `say "hi"`)
	test.String(t, doc.String(), `<svg><g id="a" x="2" y='say "hi"'/></svg>`)

	doc.SetAttr(n, "y", `'"`)
	test.String(t, doc.String(), `<svg><g id="a" x="2" y="'&quot;"/></svg>`)

	doc.RemoveAttr(n, "y")
	doc.RemoveAttr(n, "z")
	test.String(t, doc.String(), `<svg><g id="a" x="2"/></svg>`)
}

func TestDocumentNamespaces(t *testing.T) {
	doc := parseString(t, `<svg:svg xmlns:svg="http://www.w3.org/2000/svg" xmlns:ink="http://www.inkscape.org/namespaces/inkscape">
<svg:g id="a" ink:groupmode="layer"/>
<g id="b" xmlns="http://example.com" ink:groupmode="layer"/>
<g id="c" inkscape:groupmode="layer"/>
</svg:svg>`)

	a := elementByID(t, doc, "a")
	test.That(t, doc.IsElement(a, svgNS, "g"))
	mode, ok := doc.AttrNS(a, inkscapeNS, "groupmode")
	test.That(t, ok)
	test.String(t, mode, "layer")

	b := elementByID(t, doc, "b")
	test.That(t, !doc.IsElement(b, svgNS, "g"), "element in other namespace")

	// undeclared well-known prefix
	c := elementByID(t, doc, "c")
	test.That(t, doc.IsElement(c, svgNS, "g"))
	_, ok = doc.AttrNS(c, inkscapeNS, "groupmode")
	test.That(t, ok)
}

func TestDocumentElements(t *testing.T) {
	doc := parseString(t, layersSVG)
	root := doc.Root()
	test.String(t, doc.Name(root), "svg")

	elems := doc.Elements(root)
	test.T(t, len(elems), 2)
	test.That(t, len(doc.Children(root)) > len(elems), "children include text nodes")

	_, ok := doc.ElementByID("nonexistent")
	test.That(t, !ok)
}
