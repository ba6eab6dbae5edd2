package heap

import (
	"ecmacore/pkg/value"
	"strconv"
	"sync"
)

// KeyKind distinguishes how a property is addressed.
type KeyKind uint8

const (
	KeyString KeyKind = iota
	KeySymbol
)

// PropertyKey is a property name: either a string or a symbol Value.
type PropertyKey struct {
	Kind   KeyKind
	Name   string
	Symbol value.Value // valid when Kind == KeySymbol
}

func StringKey(name string) PropertyKey { return PropertyKey{Kind: KeyString, Name: name} }
func SymbolKey(sym value.Value) PropertyKey { return PropertyKey{Kind: KeySymbol, Symbol: sym} }

// hash is the child-transition map key: cheap, stable, and distinct
// across kinds (a symbol's identity is its heap index, which can't
// collide with the "s:" string namespace).
func (k PropertyKey) hash() string {
	if k.Kind == KeySymbol {
		return "y:" + strconv.FormatUint(uint64(k.Symbol.HeapIndex()), 10)
	}
	return "s:" + k.Name
}

// Hash exposes the same stable key pkg/object uses to address the
// Getters/Setters/PrivateFields side maps on ObjectRecord.
func (k PropertyKey) Hash() string { return k.hash() }

// DescriptorKind distinguishes a data property from an accessor pair.
type DescriptorKind uint8

const (
	DescriptorData DescriptorKind = iota
	DescriptorAccessor
)

// Field is one entry in a Shape: a property key plus its attribute kind.
// The slot index into an object's Properties vector is the field's
// position in Shape.Fields, so looking a property up is "find the field
// by key, read Properties[i]" — no separate slot-index table needed.
type Field struct {
	Key          PropertyKey
	Kind         DescriptorKind
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Shape is one node in the hidden-class tree: a prototype, an
// extensibility flag, and the ordered field sequence leading to this
// node from the tree's root. Shapes are plain Go values held by
// pointer, not entries of a heap subspace: pkg/gc neither marks nor
// sweeps them, and Go's own collector reclaims a shape once no object
// or transition map points at it.
type Shape struct {
	Parent      *Shape
	Prototype   value.Value
	Fields      []Field
	Extensible  bool
	transitions map[string]*Shape
	mu          sync.Mutex
}

// RootShape returns the empty-object shape for a given prototype. Every
// object that has never had a property added shares this same node.
func RootShape(prototype value.Value) *Shape {
	return &Shape{Prototype: prototype, Extensible: true}
}

// GetChildShape returns the existing child transition for (key, kind) if
// one exists, or allocates and caches a new one. This is the mechanism
// that makes two objects built via the same sequence of property
// additions share shape identity (spec testable property 4).
func (s *Shape) GetChildShape(f Field) *Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitions == nil {
		s.transitions = make(map[string]*Shape)
	}
	h := f.Key.hash()
	if child, ok := s.transitions[h]; ok {
		return child
	}
	child := &Shape{
		Parent:     s,
		Prototype:  s.Prototype,
		Fields:     append(append([]Field{}, s.Fields...), f),
		Extensible: s.Extensible,
	}
	s.transitions[h] = child
	return child
}

// WithPrototype returns a shape identical to s but rooted at a different
// prototype. Changing [[Prototype]] never shares a transition cache with
// the original root since the two shape trees are for different roots
// entirely; SetPrototypeOf always moves an object to a freshly-derived
// root shape with the same field sequence replayed on top.
func (s *Shape) WithPrototype(proto value.Value) *Shape {
	root := RootShape(proto)
	cur := root
	for _, f := range s.Fields {
		cur = cur.GetChildShape(f)
	}
	cur.Extensible = s.Extensible
	return cur
}

// WithExtensible returns a shape identical to s but with a different
// extensibility flag. PreventExtensions never adds a field, so this is a
// direct mutation-free copy rather than a transition-tree node (there is
// no shared subtree to cache against).
func (s *Shape) WithExtensible(extensible bool) *Shape {
	return &Shape{
		Parent:      s.Parent,
		Prototype:   s.Prototype,
		Fields:      s.Fields,
		Extensible:  extensible,
		transitions: nil,
	}
}

// WithoutField returns a shape with the field matching key removed, for
// property deletion. Like WithUpdatedField, this does not reuse the
// transition cache — deletion is comparatively rare and modeling it as a
// tree node would mean caching a shape keyed by "started from X, deleted
// Y", which nothing else would ever transition through again.
func (s *Shape) WithoutField(key PropertyKey) *Shape {
	h := key.hash()
	fields := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key.hash() == h {
			continue
		}
		fields = append(fields, f)
	}
	return &Shape{
		Parent:     s.Parent,
		Prototype:  s.Prototype,
		Fields:     fields,
		Extensible: s.Extensible,
	}
}

// IndexOf returns the field's slot index and whether it exists.
func (s *Shape) IndexOf(key PropertyKey) (int, bool) {
	h := key.hash()
	for i, f := range s.Fields {
		if f.Key.hash() == h {
			return i, true
		}
	}
	return -1, false
}

// WithUpdatedField returns a new shape with the field at index i replaced
// by f, used when DefineOwnProperty changes an existing property's
// attributes (writable promotion, data/accessor transition) without
// adding a new one. This does not reuse the transition cache (attribute
// changes are comparatively rare and the tree models additions, not
// mutations of existing fields).
func (s *Shape) WithUpdatedField(i int, f Field) *Shape {
	fields := append([]Field{}, s.Fields...)
	fields[i] = f
	return &Shape{
		Parent:     s.Parent,
		Prototype:  s.Prototype,
		Fields:     fields,
		Extensible: s.Extensible,
	}
}
