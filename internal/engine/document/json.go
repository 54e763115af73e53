package document

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultAtoms lists the node types decoded as atoms when ParseOptions does
// not name any.
var DefaultAtoms = []string{"hardBreak", "horizontalRule", "image"}

// ParseOptions configures Parse.
type ParseOptions struct {
	// Atoms lists the node types that are leaves. Nil means DefaultAtoms.
	Atoms []string
}

func (o ParseOptions) isAtom(typ string) bool {
	if o.Atoms == nil {
		return slices.Contains(DefaultAtoms, typ)
	}
	return slices.Contains(o.Atoms, typ)
}

// Parse decodes a document from editor JSON. Attribute values are kept as
// strings; numbers and booleans keep their JSON spelling and null values are
// dropped. Marks may be given as objects with a type or as plain strings.
func Parse(data []byte, opts ParseOptions) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level value is not an object", ErrInvalidJSON)
	}
	return parseNode(root, "$", opts)
}

func parseNode(v gjson.Result, path string, opts ParseOptions) (*Node, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: %s is not an object", ErrInvalidNode, path)
	}
	typ := v.Get("type")
	if typ.Type != gjson.String || typ.String() == "" {
		return nil, fmt.Errorf("%w: %s has no type", ErrInvalidNode, path)
	}

	if typ.String() == TypeText {
		text := v.Get("text")
		if text.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s text node without text", ErrInvalidNode, path)
		}
		marks, err := parseMarks(v.Get("marks"), path)
		if err != nil {
			return nil, err
		}
		return NewText(text.String(), marks...), nil
	}

	attrs, err := parseAttrs(v.Get("attrs"), path)
	if err != nil {
		return nil, err
	}

	content := v.Get("content")
	if content.Exists() && !content.IsArray() {
		return nil, fmt.Errorf("%w: %s content is not an array", ErrInvalidNode, path)
	}
	items := content.Array()

	if opts.isAtom(typ.String()) {
		if len(items) > 0 {
			return nil, fmt.Errorf("%w: %s atom %q has content", ErrInvalidNode, path, typ.String())
		}
		return NewAtom(typ.String(), attrs), nil
	}

	children := make([]*Node, 0, len(items))
	for i, item := range items {
		c, err := parseNode(item, path+".content."+strconv.Itoa(i), opts)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return NewElement(typ.String(), attrs, children...), nil
}

func parseAttrs(v gjson.Result, path string) (Attrs, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: %s attrs is not an object", ErrInvalidNode, path)
	}
	attrs := Attrs{}
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
		case gjson.String:
			attrs[key.String()] = value.String()
		case gjson.Number, gjson.True, gjson.False:
			attrs[key.String()] = value.Raw
		default:
			err = fmt.Errorf("%w: %s attribute %q is not a scalar", ErrInvalidNode, path, key.String())
			return false
		}
		return true
	})
	return attrs, err
}

func parseMarks(v gjson.Result, path string) ([]string, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: %s marks is not an array", ErrInvalidNode, path)
	}
	var marks []string
	for _, m := range v.Array() {
		switch {
		case m.Type == gjson.String:
			marks = append(marks, m.String())
		case m.IsObject() && m.Get("type").Type == gjson.String:
			marks = append(marks, m.Get("type").String())
		default:
			return nil, fmt.Errorf("%w: %s invalid mark %s", ErrInvalidNode, path, m.Raw)
		}
	}
	return marks, nil
}

// Marshal encodes a node as editor JSON. Attributes are written as strings in
// key order and content is omitted for empty elements.
func Marshal(n *Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrInvalidNode)
	}
	s, err := marshalNode(n)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func marshalNode(n *Node) (string, error) {
	js, err := sjson.Set("{}", "type", n.typ)
	if err != nil {
		return "", err
	}

	if len(n.attrs) > 0 {
		for _, k := range sortedKeys(n.attrs) {
			if js, err = sjson.Set(js, "attrs."+escapePath(k), n.attrs[k]); err != nil {
				return "", err
			}
		}
	}

	if n.IsText() {
		if js, err = sjson.Set(js, "text", n.text); err != nil {
			return "", err
		}
		for _, m := range n.marks {
			mark, err := sjson.Set("{}", "type", m)
			if err != nil {
				return "", err
			}
			if js, err = sjson.SetRaw(js, "marks.-1", mark); err != nil {
				return "", err
			}
		}
		return js, nil
	}

	for _, c := range n.content {
		raw, err := marshalNode(c)
		if err != nil {
			return "", err
		}
		if js, err = sjson.SetRaw(js, "content.-1", raw); err != nil {
			return "", err
		}
	}
	return js, nil
}

// escapePath escapes the characters sjson treats as path syntax.
func escapePath(key string) string {
	if !strings.ContainsAny(key, `.*?|#@\!:`) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`.*?|#@\!:`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
