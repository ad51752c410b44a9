package soap

import (
	"bytes"
	"encoding/json"
)

// Value is a node in the dynamic result tree. It is one of:
// string, float64, bool, nil, Object, or []Value.
//
// The tree is deliberately schema-less: the shape of a response payload
// is defined at runtime by the remote service description, so the client
// reproduces whatever structure the service returned without assuming
// anything beyond well-formed XML.
type Value any

// Field is a single named member of an Object.
type Field struct {
	Name  string
	Value Value
}

// Object is an ordered string-keyed mapping. Order follows the document
// order of the source XML, and JSON marshalling preserves it.
type Object []Field

// Get returns the value for the first field with the given name.
func (o Object) Get(name string) (Value, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the object as a JSON object with fields in
// insertion order. encoding/json maps would lose the ordering.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
