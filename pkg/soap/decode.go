package soap

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// DecodeElement converts an XML element into a Value. Elements with
// child elements become Objects (repeated names collapse into a slice,
// anchored at the first occurrence); leaf elements become typed values
// driven by xsi:type and xsi:nil where present, strings otherwise.
func DecodeElement(el *etree.Element) Value {
	if isNil(el) {
		return nil
	}
	children := el.ChildElements()
	if len(children) == 0 {
		return decodeLeaf(el)
	}
	return DecodeChildren(el)
}

// DecodeChildren converts the child elements of el into an Object.
func DecodeChildren(el *etree.Element) Object {
	var obj Object
	index := make(map[string]int)

	for _, child := range el.ChildElements() {
		val := DecodeElement(child)
		if i, ok := index[child.Tag]; ok {
			switch existing := obj[i].Value.(type) {
			case []Value:
				obj[i].Value = append(existing, val)
			default:
				obj[i].Value = []Value{existing, val}
			}
			continue
		}
		index[child.Tag] = len(obj)
		obj = append(obj, Field{Name: child.Tag, Value: val})
	}
	return obj
}

func isNil(el *etree.Element) bool {
	for _, attr := range el.Attr {
		if attr.Key == "nil" && attr.Space != "" {
			return attr.Value == "true" || attr.Value == "1"
		}
	}
	return false
}

// decodeLeaf applies xsi:type hints to a text node. Without a hint the
// value stays a string: the client has no schema of its own to consult.
func decodeLeaf(el *etree.Element) Value {
	text := el.Text()

	typ := ""
	for _, attr := range el.Attr {
		if attr.Key == "type" && attr.Space != "" {
			typ = attr.Value
			break
		}
	}
	if typ == "" {
		return text
	}
	if i := strings.IndexByte(typ, ':'); i >= 0 {
		typ = typ[i+1:]
	}

	switch typ {
	case "boolean":
		switch strings.TrimSpace(text) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	case "int", "integer", "long", "short", "byte",
		"unsignedInt", "unsignedLong", "unsignedShort", "unsignedByte",
		"decimal", "float", "double", "nonNegativeInteger", "positiveInteger":
		if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return n
		}
	}
	return text
}
