// Package model is the read-only query interface over a loaded domain
// model: objects, attributes, binary and associative relationships, and
// sub/supertype edges. Parsing, validation, and persistence of the model
// are out of scope here — a well-formed model is assumed (§1 non-goals);
// this package only exposes deterministic, sorted views over it.
package model

import (
	"sort"

	"github.com/google/uuid"
)

// Cardinality is the multiplicity of one side of a relationship.
type Cardinality int

const (
	One Cardinality = iota
	Many
)

// Conditionality is whether a relationship side is optional.
type Conditionality int

const (
	Unconditional Conditionality = iota
	Conditional
)

// PrimitiveKind enumerates the attribute types §3.1 allows.
type PrimitiveKind int

const (
	Uuid PrimitiveKind = iota
	String
	Boolean
	Integer
	Float
	External
	ObjectRef
)

// Type is an attribute's primitive type. External and ObjectRef carry an
// extra payload (the external type name, or the referenced object's id).
type Type struct {
	Kind         PrimitiveKind
	ExternalName string
	ObjectID     uuid.UUID
}

// Object is a named entity in the domain model.
type Object struct {
	ID          uuid.UUID
	Name        string
	Description string
}

// Attribute is a single field owned by an Object.
type Attribute struct {
	Owner uuid.UUID
	Name  string
	Type  Type
}

// BinarySide is one endpoint of a Binary Relationship.
type BinarySide struct {
	Object         uuid.UUID
	RefAttrName    string // only meaningful on the Referrer side
	Cardinality    Cardinality
	Conditionality Conditionality
}

// BinaryRelationship is a numbered relationship between a Referrer (which
// stores the foreign id) and a Referent.
type BinaryRelationship struct {
	ID       int
	Referrer BinarySide
	Referent BinarySide
}

// AssocSide is one referent endpoint of an Associative Relationship.
type AssocSide struct {
	Object         uuid.UUID
	RefAttrName    string
	Cardinality    Cardinality
	Conditionality Conditionality
}

// AssociativeRelationship is a three-party relationship: a Referrer object
// holding two named foreign ids, "one" and "other", each pointing at a
// Referent object.
type AssociativeRelationship struct {
	ID       int
	Referrer uuid.UUID
	One      AssocSide
	Other    AssocSide
}

// Isa is a sub/supertype edge: one Supertype, one or more Subtypes.
type Isa struct {
	ID         int
	Supertype  uuid.UUID
	Subtypes   []uuid.UUID
}

// ExternalBinding configures an Object to wrap an external native type.
type ExternalBinding struct {
	Name        string
	Ctor        string
	WrappedType string
}

// View is the read-only query surface the Classifier, Woog Builder and
// Emission Engine are built against. Every collection it returns is sorted
// by the documented key — name, except explicitly numbered relationships,
// which sort by their numeric id. Implementations must be pure: no method
// on View may mutate the underlying model.
type View interface {
	Objects() []Object
	Object(id uuid.UUID) (Object, bool)

	// Attributes returns id's attributes sorted by name, including "id"
	// itself (callers that need non-id attributes filter it out).
	Attributes(id uuid.UUID) []Attribute

	// Referrers returns the binary relationships in which id is the
	// Referrer, sorted by the Referent object's name.
	Referrers(id uuid.UUID) []BinaryRelationship

	// Referents returns the binary relationships in which id is the
	// Referent, sorted by the Referrer object's name.
	Referents(id uuid.UUID) []BinaryRelationship

	// AssociativeReferrers returns the associative relationships in which
	// id is the Referrer, in model-declaration order (by numeric id).
	AssociativeReferrers(id uuid.UUID) []AssociativeRelationship

	// AssociativeReferents returns the associative relationships in which
	// id is named by either side, in model-declaration order.
	AssociativeReferents(id uuid.UUID) []AssociativeRelationship

	// SupertypeOf returns the Isa edge in which id is a Subtype, if any.
	SupertypeOf(id uuid.UUID) (Isa, bool)

	// IsaOf returns the Isa edge in which id is the Supertype, if any.
	IsaOf(id uuid.UUID) (Isa, bool)
}

// InMemory is a simple View backed by in-process slices; it is the
// reference implementation used by the fixture loader and by tests.
type InMemory struct {
	objects    map[uuid.UUID]Object
	attributes map[uuid.UUID][]Attribute
	binaries   []BinaryRelationship
	assocs     []AssociativeRelationship
	isas       []Isa
}

// NewInMemory builds an InMemory view from raw slices. Inputs need not be
// pre-sorted; View methods sort on read.
func NewInMemory(objects []Object, attrs []Attribute, binaries []BinaryRelationship, assocs []AssociativeRelationship, isas []Isa) *InMemory {
	m := &InMemory{
		objects:    make(map[uuid.UUID]Object, len(objects)),
		attributes: make(map[uuid.UUID][]Attribute),
		binaries:   append([]BinaryRelationship(nil), binaries...),
		assocs:     append([]AssociativeRelationship(nil), assocs...),
		isas:       append([]Isa(nil), isas...),
	}
	for _, o := range objects {
		m.objects[o.ID] = o
	}
	for _, a := range attrs {
		m.attributes[a.Owner] = append(m.attributes[a.Owner], a)
	}
	return m
}

func (m *InMemory) Objects() []Object {
	out := make([]Object, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *InMemory) Object(id uuid.UUID) (Object, bool) {
	o, ok := m.objects[id]
	return o, ok
}

func (m *InMemory) Attributes(id uuid.UUID) []Attribute {
	attrs := append([]Attribute(nil), m.attributes[id]...)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	return attrs
}

func (m *InMemory) Referrers(id uuid.UUID) []BinaryRelationship {
	var out []BinaryRelationship
	for _, b := range m.binaries {
		if b.Referrer.Object == id {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.objects[out[i].Referent.Object].Name < m.objects[out[j].Referent.Object].Name
	})
	return out
}

func (m *InMemory) Referents(id uuid.UUID) []BinaryRelationship {
	var out []BinaryRelationship
	for _, b := range m.binaries {
		if b.Referent.Object == id {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.objects[out[i].Referrer.Object].Name < m.objects[out[j].Referrer.Object].Name
	})
	return out
}

func (m *InMemory) AssociativeReferrers(id uuid.UUID) []AssociativeRelationship {
	var out []AssociativeRelationship
	for _, a := range m.assocs {
		if a.Referrer == id {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *InMemory) AssociativeReferents(id uuid.UUID) []AssociativeRelationship {
	var out []AssociativeRelationship
	for _, a := range m.assocs {
		if a.One.Object == id || a.Other.Object == id {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *InMemory) SupertypeOf(id uuid.UUID) (Isa, bool) {
	for _, isa := range m.isas {
		for _, sub := range isa.Subtypes {
			if sub == id {
				return isa, true
			}
		}
	}
	return Isa{}, false
}

func (m *InMemory) IsaOf(id uuid.UUID) (Isa, bool) {
	for _, isa := range m.isas {
		if isa.Supertype == id {
			return isa, true
		}
	}
	return Isa{}, false
}
