package svglayers

import (
	"slices"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Style is the ordered set of declarations of an inline style attribute.
type Style struct {
	keys []string
	vals map[string]string
}

// ParseStyle parses the declarations of an inline style attribute, such as "fill:red;display:none".
// Malformed trailing declarations are dropped.
func ParseStyle(s string) Style {
	style := Style{vals: map[string]string{}}
	p := css.NewParser(parse.NewInputString(s), true)
	for {
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			break
		} else if gt != css.DeclarationGrammar && gt != css.CustomPropertyGrammar {
			continue
		}

		sb := strings.Builder{}
		for _, val := range p.Values() {
			sb.Write(val.Data)
		}
		style.Set(string(data), strings.TrimSpace(sb.String()))
	}
	return style
}

// Get returns the value of a declaration.
func (s Style) Get(key string) (string, bool) {
	val, ok := s.vals[key]
	return val, ok
}

// Set sets a declaration, a new key is appended after the existing ones.
func (s *Style) Set(key, val string) {
	if s.vals == nil {
		s.vals = map[string]string{}
	}
	if _, ok := s.vals[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.vals[key] = val
}

// Remove removes a declaration.
func (s *Style) Remove(key string) {
	if _, ok := s.vals[key]; !ok {
		return
	}
	delete(s.vals, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool {
		return k == key
	})
}

// Len returns the number of declarations.
func (s Style) Len() int {
	return len(s.keys)
}

func (s Style) String() string {
	sb := strings.Builder{}
	for i, key := range s.keys {
		if i != 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(key)
		sb.WriteByte(':')
		sb.WriteString(s.vals[key])
	}
	return sb.String()
}

// Style returns the parsed style attribute of n.
func (d *Document) Style(n Node) Style {
	val, _ := d.Attr(n, "style")
	return ParseStyle(val)
}

// SetStyle sets a single declaration in the style attribute of n.
func (d *Document) SetStyle(n Node, key, val string) {
	style := d.Style(n)
	style.Set(key, val)
	d.SetAttr(n, "style", style.String())
}

// RemoveStyle removes a single declaration from the style attribute of n. The attribute is removed
// when no declarations remain.
func (d *Document) RemoveStyle(n Node, key string) {
	if _, ok := d.Attr(n, "style"); !ok {
		return
	}
	style := d.Style(n)
	style.Remove(key)
	if style.Len() == 0 {
		d.RemoveAttr(n, "style")
	} else {
		d.SetAttr(n, "style", style.String())
	}
}

// property returns a presentation property of n, the style attribute takes precedence over the
// presentation attribute. It is not inherited.
func (d *Document) property(n Node, key string) (string, bool) {
	if val, ok := d.Style(n).Get(key); ok {
		return val, true
	}
	val, ok := d.Attr(n, key)
	return strings.TrimSpace(val), ok
}

// inheritedProperty returns a presentation property of n or its closest ancestor that sets it.
func (d *Document) inheritedProperty(n Node, key string) (string, bool) {
	for ; 0 < n; n = d.nodes[n].parent {
		if val, ok := d.property(n, key); ok && val != "inherit" {
			return val, true
		}
	}
	return "", false
}

func (d *Document) hidden(n Node) bool {
	val, _ := d.property(n, "display")
	return val == "none"
}

func (d *Document) hide(n Node) {
	d.SetStyle(n, "display", "none")
}

// show clears the hidden flag of n, which may be set by the style or by the presentation attribute.
func (d *Document) show(n Node) {
	d.RemoveStyle(n, "display")
	d.RemoveAttr(n, "display")
}

// Visible returns true if neither n nor any of its ancestors has display set to none.
func (d *Document) Visible(n Node) bool {
	for ; 0 < n; n = d.nodes[n].parent {
		if d.hidden(n) {
			return false
		}
	}
	return true
}
