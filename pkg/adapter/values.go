package adapter

import (
	"fmt"
	"time"
)

// PropertyKind discriminates the PropertyValue union.
type PropertyKind string

const (
	PropString   PropertyKind = "string"
	PropInt32    PropertyKind = "int32"
	PropInt64    PropertyKind = "int64"
	PropFloat32  PropertyKind = "float32"
	PropFloat64  PropertyKind = "float64"
	PropBool     PropertyKind = "bool"
	PropBytes    PropertyKind = "bytes"
	PropDateTime PropertyKind = "datetime"
	PropPoint    PropertyKind = "point"
	PropNull     PropertyKind = "null"
)

// Point is a geographic coordinate, the payload of a PropPoint value.
type Point struct {
	Longitude float64
	Latitude  float64
}

// PropertyValue is a tagged union over the scalar types every backend
// (AQL, Cypher, Gremlin/GraphSON) can round-trip. Construct with the
// PropXxx helpers; read with Kind plus the matching AsXxx accessor.
type PropertyValue struct {
	kind PropertyKind
	s    string
	i32  int32
	i64  int64
	f32  float32
	f64  float64
	b    bool
	by   []byte
	t    time.Time
	pt   Point
}

func PropValString(v string) PropertyValue     { return PropertyValue{kind: PropString, s: v} }
func PropValInt32(v int32) PropertyValue       { return PropertyValue{kind: PropInt32, i32: v} }
func PropValInt64(v int64) PropertyValue       { return PropertyValue{kind: PropInt64, i64: v} }
func PropValFloat32(v float32) PropertyValue   { return PropertyValue{kind: PropFloat32, f32: v} }
func PropValFloat64(v float64) PropertyValue   { return PropertyValue{kind: PropFloat64, f64: v} }
func PropValBool(v bool) PropertyValue         { return PropertyValue{kind: PropBool, b: v} }
func PropValBytes(v []byte) PropertyValue      { return PropertyValue{kind: PropBytes, by: v} }
func PropValDateTime(v time.Time) PropertyValue { return PropertyValue{kind: PropDateTime, t: v} }
func PropValPoint(v Point) PropertyValue       { return PropertyValue{kind: PropPoint, pt: v} }
func PropValNull() PropertyValue               { return PropertyValue{kind: PropNull} }

// Kind reports which variant is populated.
func (p PropertyValue) Kind() PropertyKind { return p.kind }

// IsNull reports whether this is the null variant.
func (p PropertyValue) IsNull() bool { return p.kind == PropNull }

func (p PropertyValue) AsString() (string, bool)         { return p.s, p.kind == PropString }
func (p PropertyValue) AsInt32() (int32, bool)           { return p.i32, p.kind == PropInt32 }
func (p PropertyValue) AsInt64() (int64, bool)           { return p.i64, p.kind == PropInt64 }
func (p PropertyValue) AsFloat32() (float32, bool)       { return p.f32, p.kind == PropFloat32 }
func (p PropertyValue) AsFloat64() (float64, bool)       { return p.f64, p.kind == PropFloat64 }
func (p PropertyValue) AsBool() (bool, bool)             { return p.b, p.kind == PropBool }
func (p PropertyValue) AsBytes() ([]byte, bool)          { return p.by, p.kind == PropBytes }
func (p PropertyValue) AsDateTime() (time.Time, bool)    { return p.t, p.kind == PropDateTime }
func (p PropertyValue) AsPoint() (Point, bool)           { return p.pt, p.kind == PropPoint }

// Interface returns the underlying Go value boxed as interface{}, for
// handing to a JSON encoder or a dialect-specific parameter binder.
func (p PropertyValue) Interface() interface{} {
	switch p.kind {
	case PropString:
		return p.s
	case PropInt32:
		return p.i32
	case PropInt64:
		return p.i64
	case PropFloat32:
		return p.f32
	case PropFloat64:
		return p.f64
	case PropBool:
		return p.b
	case PropBytes:
		return p.by
	case PropDateTime:
		return p.t
	case PropPoint:
		return map[string]float64{"lon": p.pt.Longitude, "lat": p.pt.Latitude}
	default:
		return nil
	}
}

func (p PropertyValue) String() string {
	if p.kind == PropNull {
		return "null"
	}
	return fmt.Sprintf("%v", p.Interface())
}

// property is one name/value pair inside a PropertyMap. The map preserves
// insertion order because several backends (notably AQL RETURN projections)
// are order-sensitive in their output shape.
type property struct {
	name  string
	value PropertyValue
}

// PropertyMap is an ordered collection of named PropertyValues, the
// payload carried by every Vertex and Edge.
type PropertyMap struct {
	entries []property
	index   map[string]int
}

// NewPropertyMap returns an empty, ready-to-use PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{index: make(map[string]int)}
}

// Set inserts or overwrites a property, preserving original position on
// overwrite and appending on first insertion.
func (m *PropertyMap) Set(name string, value PropertyValue) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[name]; ok {
		m.entries[i].value = value
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, property{name: name, value: value})
}

// Get returns the named property and whether it was present.
func (m *PropertyMap) Get(name string) (PropertyValue, bool) {
	if m == nil || m.index == nil {
		return PropertyValue{}, false
	}
	i, ok := m.index[name]
	if !ok {
		return PropertyValue{}, false
	}
	return m.entries[i].value, true
}

// Delete removes a property if present.
func (m *PropertyMap) Delete(name string) {
	i, ok := m.index[name]
	if !ok {
		return
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, name)
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].name] = j
	}
}

// Names returns property names in insertion order.
func (m *PropertyMap) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.name
	}
	return names
}

// Len reports the number of properties.
func (m *PropertyMap) Len() int { return len(m.entries) }

// Map renders the PropertyMap as a plain map[string]interface{}, the shape
// every backend's JSON/AQL-bind-vars/Cypher-params layer expects.
func (m *PropertyMap) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(m.entries))
	for _, e := range m.entries {
		out[e.name] = e.value.Interface()
	}
	return out
}
