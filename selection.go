package svglayers

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/parse/v2"
)

// Selection is a layer pattern with an optional offset by which the selected layers are moved.
type Selection struct {
	Pattern string
	Offset  canvas.Point
}

func (s Selection) String() string {
	if s.Offset.IsZero() {
		return s.Pattern
	}
	return fmt.Sprintf("%s@%v,%v", s.Pattern, s.Offset.X, s.Offset.Y)
}

// ParseSelection parses a token of the form pattern[@x,y]. Blank tokens and tokens starting with #
// return false. A missing offset coordinate defaults to zero.
func ParseSelection(token string) (Selection, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" || token[0] == '#' {
		return Selection{}, false, nil
	}

	i := strings.LastIndexByte(token, '@')
	if i == -1 {
		return Selection{Pattern: token}, true, nil
	}

	sel := Selection{Pattern: token[:i]}
	coords := strings.Split(token[i+1:], ",")
	if 2 < len(coords) {
		return Selection{}, false, fmt.Errorf("%w: %s", ErrInvalidSelection, token)
	}
	for j, coord := range coords {
		coord = strings.TrimSpace(coord)
		if coord == "" {
			continue
		} else if parse.Number([]byte(coord)) != len(coord) {
			// only decimal numbers, no NaN, Inf or hexadecimal floats
			return Selection{}, false, fmt.Errorf("%w: %s", ErrInvalidSelection, token)
		}
		f, err := strconv.ParseFloat(coord, 64)
		if err != nil {
			return Selection{}, false, fmt.Errorf("%w: %s", ErrInvalidSelection, token)
		}
		if j == 0 {
			sel.Offset.X = f
		} else {
			sel.Offset.Y = f
		}
	}
	return sel, true, nil
}

// ParseSelections parses a list of tokens, skipping blank and comment tokens.
func ParseSelections(tokens []string) ([]Selection, error) {
	sels := []Selection{}
	for _, token := range tokens {
		sel, ok, err := ParseSelection(token)
		if err != nil {
			return nil, err
		} else if ok {
			sels = append(sels, sel)
		}
	}
	return sels, nil
}

// ReadSelections parses one selection token per line.
func ReadSelections(r io.Reader) ([]Selection, error) {
	tokens := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParseSelections(tokens)
}

// Resolve returns the layers matching a slash-separated pattern of shell globs, where each glob
// matches the name of a layer at the corresponding depth. The result is in pre-order and holds
// every layer only once.
func (t *Tree) Resolve(pattern string) ([]*Layer, error) {
	frontier := []*Layer{t.Root()}
	for _, glob := range strings.Split(pattern, "/") {
		glob = shellGlob(glob)
		next := []*Layer{}
		seen := map[int]bool{}
		for _, l := range frontier {
			for _, c := range l.Children() {
				match, err := path.Match(glob, c.Name())
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSelection, pattern, err)
				} else if match && !seen[c.index] {
					seen[c.index] = true
					next = append(next, c)
				}
			}
		}
		if len(next) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
		}
		frontier = next
	}
	return frontier, nil
}

// shellGlob converts negated character classes written as [!...] into the [^...] form of path.Match.
func shellGlob(glob string) string {
	b := []byte(glob)
	class := false
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' {
			i++
		} else if !class && b[i] == '[' {
			class = true
			if i+1 < len(b) && b[i+1] == '!' {
				b[i+1] = '^'
				i++
			}
		} else if class && b[i] == ']' {
			class = false
		}
	}
	return string(b)
}

// Select resolves all selections into a set of layers and the offsets of the selected layers. When
// several selections match the same layer, the offset of the last one wins, even if it is zero.
// Only nonzero offsets are returned.
func (t *Tree) Select(sels []Selection) (LayerSet, TransformMap, error) {
	layers := []*Layer{}
	seen := map[int]bool{}
	offsets := TransformMap{}
	for _, sel := range sels {
		matches, err := t.Resolve(sel.Pattern)
		if err != nil {
			return LayerSet{}, nil, err
		}
		for _, l := range matches {
			if !seen[l.index] {
				seen[l.index] = true
				layers = append(layers, l)
			}
			offsets[l.ID] = sel.Offset
		}
	}
	for id, offset := range offsets {
		if offset.IsZero() {
			delete(offsets, id)
		}
	}
	return Explicit(layers...), offsets, nil
}
