package svglayers

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
	"golang.org/x/net/html/charset"
)

const (
	svgNS      = "http://www.w3.org/2000/svg"
	inkscapeNS = "http://www.inkscape.org/namespaces/inkscape"
	sodipodiNS = "http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
	xlinkNS    = "http://www.w3.org/1999/xlink"
	xmlNS      = "http://www.w3.org/XML/1998/namespace"
)

// wellKnownNS is used for prefixes that are used without being declared, which Inkscape tolerates.
var wellKnownNS = map[string]string{
	"svg":      svgNS,
	"inkscape": inkscapeNS,
	"sodipodi": sodipodiNS,
	"xlink":    xlinkNS,
	"xml":      xmlNS,
}

// NodeType is the type of a document node.
type NodeType int

// see NodeType
const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	CDATANode
	DOCTYPENode
	ProcInstNode
)

// Node references a node in a Document. Node references remain valid in copies of the document.
type Node int

// NoNode is returned when a node does not exist.
const NoNode Node = -1

// Attr is an attribute of an element or processing instruction. Values are stored as they appear
// in the source, that is with entities still encoded.
type Attr struct {
	Name, Val string
}

type node struct {
	typ      NodeType
	name     string
	attrs    []Attr
	data     string
	parent   Node
	children []Node
}

// Document is an XML document stored as an arena of nodes. Node 0 is the document node, which
// holds the prolog, the root element and any trailing misc nodes.
type Document struct {
	nodes []node
	root  Node
	ids   map[string]Node
}

// ParseFile parses the XML document in the named file.
func ParseFile(filename string) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse parses an XML document. Documents declaring an encoding other than UTF-8 are transcoded
// to UTF-8, and their XML declaration is updated accordingly.
func Parse(r io.Reader) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, encoding, err := parseBytes(b)
	if err != nil {
		return nil, err
	}
	if encoding == "" || isUTF8(encoding) {
		return doc, nil
	}

	cr, err := charset.NewReaderLabel(encoding, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %s: %w", encoding, err)
	}
	if b, err = io.ReadAll(cr); err != nil {
		return nil, err
	}
	if doc, _, err = parseBytes(b); err != nil {
		return nil, err
	}
	doc.setEncoding("UTF-8")
	return doc, nil
}

func isUTF8(encoding string) bool {
	encoding = strings.ToLower(encoding)
	return encoding == "utf-8" || encoding == "utf8"
}

func parseBytes(b []byte) (*Document, string, error) {
	z := parse.NewInputBytes(b)
	defer z.Restore()

	l := xml.NewLexer(z)
	doc := &Document{
		nodes: []node{{typ: DocumentNode, parent: NoNode}},
		root:  NoNode,
	}

	encoding := ""
	cur := Node(0)
	for {
		tt, data := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return nil, "", l.Err()
			} else if cur != 0 {
				return nil, "", parse.NewErrorLexer(z, "unexpected end of file, unclosed element %s", doc.nodes[cur].name)
			} else if doc.root == NoNode {
				return nil, "", parse.NewErrorLexer(z, "expected root element")
			}
			doc.index()
			return doc, encoding, nil
		case xml.StartTagToken:
			name := string(data[1:])
			attrs, tt := readAttrs(l)
			if tt != xml.StartTagCloseToken && tt != xml.StartTagCloseVoidToken {
				return nil, "", parse.NewErrorLexer(z, "unterminated start tag %s", name)
			}
			if cur == 0 {
				if doc.root != NoNode {
					return nil, "", parse.NewErrorLexer(z, "unexpected second root element %s", name)
				}
				doc.root = Node(len(doc.nodes))
			}
			n := doc.appendChild(cur, node{typ: ElementNode, name: name, attrs: attrs})
			if tt == xml.StartTagCloseToken {
				cur = n
			}
		case xml.StartTagPIToken:
			name := string(data[2:])
			attrs, tt := readAttrs(l)
			if tt != xml.StartTagClosePIToken {
				return nil, "", parse.NewErrorLexer(z, "unterminated processing instruction %s", name)
			}
			n := doc.appendChild(cur, node{typ: ProcInstNode, name: name, attrs: attrs})
			if name == "xml" && cur == 0 {
				encoding, _ = doc.Attr(n, "encoding")
			}
		case xml.EndTagToken:
			name := strings.TrimSpace(string(data[2 : len(data)-1]))
			if cur == 0 || doc.nodes[cur].name != name {
				return nil, "", parse.NewErrorLexer(z, "unexpected end tag %s", name)
			}
			cur = doc.nodes[cur].parent
		case xml.TextToken:
			doc.appendChild(cur, node{typ: TextNode, data: string(data)})
		case xml.CommentToken:
			doc.appendChild(cur, node{typ: CommentNode, data: string(data)})
		case xml.CDATAToken:
			doc.appendChild(cur, node{typ: CDATANode, data: string(data)})
		case xml.DOCTYPEToken:
			doc.appendChild(cur, node{typ: DOCTYPENode, data: string(data)})
		}
	}
}

func readAttrs(l *xml.Lexer) ([]Attr, xml.TokenType) {
	attrs := []Attr{}
	for {
		tt, _ := l.Next()
		if tt != xml.AttributeToken {
			return attrs, tt
		}
		val := l.AttrVal()
		if 2 <= len(val) && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		attrs = append(attrs, Attr{Name: string(l.Text()), Val: string(val)})
	}
}

func (d *Document) appendChild(parent Node, nd node) Node {
	n := Node(len(d.nodes))
	nd.parent = parent
	d.nodes = append(d.nodes, nd)
	d.nodes[parent].children = append(d.nodes[parent].children, n)
	return n
}

// index builds the id index, the first element in document order wins for duplicate ids.
func (d *Document) index() {
	d.ids = map[string]Node{}
	for i := range d.nodes {
		if d.nodes[i].typ != ElementNode {
			continue
		}
		if id, ok := d.Attr(Node(i), "id"); ok {
			if _, ok := d.ids[id]; !ok {
				d.ids[id] = Node(i)
			}
		}
	}
}

func (d *Document) setEncoding(encoding string) {
	for _, n := range d.nodes[0].children {
		if d.nodes[n].typ == ProcInstNode && d.nodes[n].name == "xml" {
			if _, ok := d.Attr(n, "encoding"); ok {
				d.SetAttr(n, "encoding", encoding)
			}
		}
	}
}

// Copy returns a deep copy of the document. Node references of d are valid in the copy.
func (d *Document) Copy() *Document {
	c := &Document{
		nodes: make([]node, len(d.nodes)),
		root:  d.root,
		ids:   maps.Clone(d.ids),
	}
	for i, nd := range d.nodes {
		nd.attrs = slices.Clone(nd.attrs)
		nd.children = slices.Clone(nd.children)
		c.nodes[i] = nd
	}
	return c
}

// Root returns the root element.
func (d *Document) Root() Node {
	return d.root
}

// ElementByID returns the first element with the given id attribute.
func (d *Document) ElementByID(id string) (Node, bool) {
	n, ok := d.ids[id]
	if !ok {
		return NoNode, false
	}
	return n, true
}

// Type returns the node type.
func (d *Document) Type(n Node) NodeType {
	return d.nodes[n].typ
}

// Name returns the qualified name of an element or the target of a processing instruction.
func (d *Document) Name(n Node) string {
	return d.nodes[n].name
}

// Parent returns the parent of n, which is NoNode for the document node.
func (d *Document) Parent(n Node) Node {
	return d.nodes[n].parent
}

// Children returns all child nodes of n.
func (d *Document) Children(n Node) []Node {
	return slices.Clone(d.nodes[n].children)
}

// Elements returns the child elements of n.
func (d *Document) Elements(n Node) []Node {
	elems := []Node{}
	for _, c := range d.nodes[n].children {
		if d.nodes[c].typ == ElementNode {
			elems = append(elems, c)
		}
	}
	return elems
}

// Attr returns the raw value of the attribute with the given qualified name.
func (d *Document) Attr(n Node, name string) (string, bool) {
	for _, attr := range d.nodes[n].attrs {
		if attr.Name == name {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, appending it if it does not exist yet.
func (d *Document) SetAttr(n Node, name, val string) {
	nd := &d.nodes[n]
	for i := range nd.attrs {
		if nd.attrs[i].Name == name {
			nd.attrs[i].Val = val
			return
		}
	}
	nd.attrs = append(nd.attrs, Attr{Name: name, Val: val})
}

// RemoveAttr removes an attribute.
func (d *Document) RemoveAttr(n Node, name string) {
	nd := &d.nodes[n]
	nd.attrs = slices.DeleteFunc(nd.attrs, func(attr Attr) bool {
		return attr.Name == name
	})
}

func splitName(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i != -1 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// namespace resolves a prefix for element n. The empty prefix defaults to the SVG namespace.
func (d *Document) namespace(n Node, prefix string) string {
	key := "xmlns"
	if prefix != "" {
		key = "xmlns:" + prefix
	}
	for ; 0 < n; n = d.nodes[n].parent {
		if uri, ok := d.Attr(n, key); ok {
			return uri
		}
	}
	if prefix == "" {
		return svgNS
	}
	return wellKnownNS[prefix]
}

// IsElement returns true if n is an element with the given namespace URI and local name.
func (d *Document) IsElement(n Node, ns, local string) bool {
	nd := &d.nodes[n]
	if nd.typ != ElementNode {
		return false
	}
	prefix, name := splitName(nd.name)
	return name == local && d.namespace(n, prefix) == ns
}

// AttrNS returns the raw value of a prefixed attribute by namespace URI and local name.
func (d *Document) AttrNS(n Node, ns, local string) (string, bool) {
	for _, attr := range d.nodes[n].attrs {
		prefix, name := splitName(attr.Name)
		if prefix == "" || prefix == "xmlns" || name != local {
			continue
		} else if d.namespace(n, prefix) == ns {
			return attr.Val, true
		}
	}
	return "", false
}

// WriteTo serializes the document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}
	d.write(buf, 0)
	return buf.WriteTo(w)
}

// String returns the serialized document.
func (d *Document) String() string {
	buf := &bytes.Buffer{}
	d.write(buf, 0)
	return buf.String()
}

func (d *Document) write(buf *bytes.Buffer, n Node) {
	nd := &d.nodes[n]
	switch nd.typ {
	case DocumentNode:
		for _, c := range nd.children {
			d.write(buf, c)
		}
	case ElementNode:
		buf.WriteByte('<')
		buf.WriteString(nd.name)
		writeAttrs(buf, nd.attrs)
		if len(nd.children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, c := range nd.children {
			d.write(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(nd.name)
		buf.WriteByte('>')
	case ProcInstNode:
		buf.WriteString("<?")
		buf.WriteString(nd.name)
		writeAttrs(buf, nd.attrs)
		buf.WriteString("?>")
	default:
		buf.WriteString(nd.data)
	}
}

func writeAttrs(buf *bytes.Buffer, attrs []Attr) {
	for _, attr := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(attr.Name)
		buf.WriteByte('=')
		if !strings.ContainsRune(attr.Val, '"') {
			buf.WriteByte('"')
			buf.WriteString(attr.Val)
			buf.WriteByte('"')
		} else if !strings.ContainsRune(attr.Val, '\'') {
			buf.WriteByte('\'')
			buf.WriteString(attr.Val)
			buf.WriteByte('\'')
		} else {
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(attr.Val, `"`, "&quot;"))
			buf.WriteByte('"')
		}
	}
}
