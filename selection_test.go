package svglayers

import (
	"errors"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/test"
)

func TestParseSelection(t *testing.T) {
	var tests = []struct {
		token     string
		ok        bool
		selection Selection
	}{
		{"A@10,5", true, Selection{"A", canvas.Point{X: 10.0, Y: 5.0}}},
		{"A", true, Selection{"A", canvas.Point{}}},
		{"", false, Selection{}},
		{"   ", false, Selection{}},
		{"# comment", false, Selection{}},
		{"  A/*  ", true, Selection{"A/*", canvas.Point{}}},
		{"A@,5", true, Selection{"A", canvas.Point{X: 0.0, Y: 5.0}}},
		{"A@-2.5", true, Selection{"A", canvas.Point{X: -2.5, Y: 0.0}}},
		{"A@", true, Selection{"A", canvas.Point{}}},
		{"A@B@1e1, 2", true, Selection{"A@B", canvas.Point{X: 10.0, Y: 2.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			sel, ok, err := ParseSelection(tt.token)
			test.Error(t, err)
			test.T(t, ok, tt.ok)
			test.T(t, sel, tt.selection)
		})
	}
}

func TestParseSelectionError(t *testing.T) {
	var tests = []string{
		"A@1,2,3",
		"A@x,1",
		"A@1,y",
		"A@NaN,0",
		"A@0,-Inf",
		"A@Infinity",
		"A@0x1p3,0",
		"A@1e999",
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, _, err := ParseSelection(tt)
			test.That(t, errors.Is(err, ErrInvalidSelection))
			test.That(t, strings.Contains(err.Error(), tt), err)
		})
	}
}

func TestReadSelections(t *testing.T) {
	sels, err := ReadSelections(strings.NewReader("# background\nA\n\n  C@0,-10\n"))
	test.Error(t, err)
	test.T(t, sels, []Selection{{"A", canvas.Point{}}, {"C", canvas.Point{X: 0.0, Y: -10.0}}})
	test.String(t, sels[1].String(), "C@0,-10")
}

func TestResolve(t *testing.T) {
	tree := buildTree(t, parseString(t, layersSVG))

	var tests = []struct {
		pattern string
		paths   []string
	}{
		{"A/*", []string{"A/B"}},
		{"*", []string{"A", "C"}},
		{"?", []string{"A", "C"}},
		{"[AB]", []string{"A"}},
		{"*/B", []string{"A/B"}},
		{"C", []string{"C"}},
		{"[!A]", []string{"C"}},
		{"[^A]", []string{"C"}},
		{"[!C]/[!A]", []string{"A/B"}},
		{"\\[!A]", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			layers, err := tree.Resolve(tt.pattern)
			if tt.paths == nil {
				test.That(t, errors.Is(err, ErrNoMatch), err)
				return
			}
			test.Error(t, err)
			paths := []string{}
			for _, l := range layers {
				paths = append(paths, l.String())
			}
			test.T(t, paths, tt.paths)
		})
	}
}

func TestResolveError(t *testing.T) {
	tree := buildTree(t, parseString(t, layersSVG))

	var tests = []struct {
		pattern string
		err     error
	}{
		{"Z", ErrNoMatch},
		{"a", ErrNoMatch},
		{"A/B/*", ErrNoMatch},
		{"Z/*", ErrNoMatch},
		{"", ErrNoMatch},
		{"[", ErrInvalidSelection},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := tree.Resolve(tt.pattern)
			test.That(t, errors.Is(err, tt.err), err)
			test.That(t, strings.Contains(err.Error(), tt.pattern), err)
		})
	}
}

func TestShellGlob(t *testing.T) {
	var tests = []struct {
		glob     string
		expected string
	}{
		{"abc", "abc"},
		{"[!a]", "[^a]"},
		{"x[!a-c]y[!d]", "x[^a-c]y[^d]"},
		{"[a!]", "[a!]"},
		{"!a", "!a"},
		{"\\[!a]", "\\[!a]"},
		{"[\\]!]", "[\\]!]"},
	}
	for _, tt := range tests {
		t.Run(tt.glob, func(t *testing.T) {
			test.String(t, shellGlob(tt.glob), tt.expected)
		})
	}
}

func TestResolveOrder(t *testing.T) {
	// same layers as layersSVG with the siblings in reverse order
	reversed := parseString(t, `<svg xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
<g inkscape:groupmode="layer" id="layer3" inkscape:label="C"/>
<g inkscape:groupmode="layer" id="layer1" inkscape:label="A">
<g inkscape:groupmode="layer" id="layer2" inkscape:label="B"/>
</g>
</svg>`)
	trees := []*Tree{buildTree(t, parseString(t, layersSVG)), buildTree(t, reversed)}

	for _, pattern := range []string{"*", "?", "A/*", "*/*", "[AC]", "[!B]", "C"} {
		t.Run(pattern, func(t *testing.T) {
			sets := []map[string]bool{}
			for _, tree := range trees {
				layers, err := tree.Resolve(pattern)
				test.Error(t, err)
				ids := map[string]bool{}
				for _, l := range layers {
					ids[l.ID] = true
				}
				test.T(t, len(ids), len(layers), "no duplicates")
				sets = append(sets, ids)
			}
			test.T(t, sets[0], sets[1])
		})
	}
}

func TestSelect(t *testing.T) {
	tree := buildTree(t, parseString(t, layersSVG))

	set, offsets, err := tree.Select([]Selection{
		{"*", canvas.Point{X: 1.0, Y: 2.0}},
		{"A/B", canvas.Point{}},
		{"A", canvas.Point{X: 3.0, Y: 4.0}},
	})
	test.Error(t, err)
	test.That(t, !set.IsAll())

	ids := []string{}
	for _, l := range set.Layers() {
		ids = append(ids, l.ID)
	}
	test.T(t, ids, []string{"layer1", "layer3", "layer2"})
	test.T(t, offsets, TransformMap{
		"layer1": canvas.Point{X: 3.0, Y: 4.0},
		"layer3": canvas.Point{X: 1.0, Y: 2.0},
	})

	_, _, err = tree.Select([]Selection{{"A", canvas.Point{}}, {"Z", canvas.Point{}}})
	test.That(t, errors.Is(err, ErrNoMatch))
}

func TestSelectLastOffset(t *testing.T) {
	tree := buildTree(t, parseString(t, layersSVG))

	var tests = []struct {
		name    string
		sels    []Selection
		offsets TransformMap
	}{
		{"zero after offset", []Selection{{"A", canvas.Point{X: 10.0, Y: 5.0}}, {"A", canvas.Point{}}}, TransformMap{}},
		{"offset after zero", []Selection{{"A", canvas.Point{}}, {"A", canvas.Point{X: 10.0, Y: 5.0}}}, TransformMap{"layer1": canvas.Point{X: 10.0, Y: 5.0}}},
		{"glob then name", []Selection{{"*", canvas.Point{X: 1.0, Y: 1.0}}, {"C", canvas.Point{}}}, TransformMap{"layer1": canvas.Point{X: 1.0, Y: 1.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, offsets, err := tree.Select(tt.sels)
			test.Error(t, err)
			test.T(t, offsets, tt.offsets)
		})
	}
}
