// Package woog builds the Intermediate Method Model (§3.3, §4.2): for
// every non-imported, non-singleton, non-enum object, one or more
// Constructor Descriptors describing a constructor's parameters, fields,
// locals, and linked-list ordering. This is the bridge between raw model
// facts and generated source; the Emission Engine never assembles a
// constructor signature from scratch, it only walks a Constructor built
// here (§9 DESIGN NOTES: "Woog as explicit IR").
package woog

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/gracelog"
	"github.com/uberFoo/grace-sub001/internal/model"
	"github.com/uberFoo/grace-sub001/internal/typecheck"
)

// Ownership is a parameter's ownership mode.
type Ownership int

const (
	Borrowed Ownership = iota
	Owned
	Mutable
)

// Parameter is one constructor input (§3.3).
type Parameter struct {
	ID        uuid.UUID
	Name      string
	Ownership Ownership
	Type      typecheck.GType
	Next      *uuid.UUID
}

// Field is one constructor-assigned struct field, storage-typed (§3.3).
type Field struct {
	ID   uuid.UUID
	Name string
	Type typecheck.GType
	Next *uuid.UUID
}

// Local is a constructor-local variable (§3.3: `id: Uuid`, `new:
// Reference(Self)`).
type Local struct {
	ID   uuid.UUID
	Name string
	Type typecheck.GType
}

// Constructor is one Constructor Descriptor: the full signature and field
// assignment plan for one emitted `new`-shaped function.
type Constructor struct {
	// Name is the emitted function name: "new", "new_<subtype>", or the
	// configured External ctor name.
	Name   string
	Object uuid.UUID

	// Subtype, when non-nil, marks this as a Hybrid per-subtype
	// constructor; SubtypeParam is nil when the subtype is itself a
	// singleton (§4.4.2: "the constructor omits the subtype parameter").
	Subtype       *uuid.UUID
	SubtypeParam  *Parameter
	SubtypeField  *Field
	EnumVariant   string

	// ExtValueParam/-Field mark an External constructor's wrapped-value
	// slot (prepended, ownership Owned, §4.2 step 6).
	ExtValueParam *Parameter
	ExtValueField *Field

	Parameters []Parameter
	Fields     []Field
	Locals     []Local
}

// Woog is the built intermediate model: every non-enum, non-imported,
// non-singleton object maps to one or more Constructor Descriptors.
type Woog struct {
	Constructors map[uuid.UUID][]Constructor
}

// ConstructorsFor returns the Constructor Descriptors built for id, or nil
// if id has none (Enum, Imported, Singleton objects get none here).
func (w *Woog) ConstructorsFor(id uuid.UUID) []Constructor {
	return w.Constructors[id]
}

// Builder constructs a Woog model over one (Model, Config, Classifier)
// triple.
type Builder struct {
	view model.View
	cfg  *config.Config
	cls  *classifier.Classifier
}

// New returns a Builder over the given Model/Config/Classifier.
func New(view model.View, cfg *config.Config, cls *classifier.Classifier) *Builder {
	return &Builder{view: view, cfg: cfg, cls: cls}
}

// uuidNS is a fixed namespace used to derive deterministic ids for
// generated Parameters/Fields/Locals, so that a re-run over the same
// (Model, Config) produces byte-identical ids and therefore byte-
// identical emitted text (§8 invariant 1).
var uuidNS = uuid.MustParse("f6a7b8c9-0000-4000-8000-000000000001")

func deriveID(parts ...string) uuid.UUID {
	name := ""
	for _, p := range parts {
		name += p + "\x1f"
	}
	return uuid.NewSHA1(uuidNS, []byte(name))
}

// SingletonUUID derives the fixed constant a Singleton object's emitted
// `uuid!(...)` literal carries — deterministic in the object's own id, so
// the same Model always yields the same constant without persisting one.
func SingletonUUID(objID uuid.UUID) uuid.UUID {
	return deriveID(objID.String(), "singleton")
}

// Build runs the Woog Builder over every object the Model View exposes,
// producing Constructor Descriptors for every Struct, External, and
// Hybrid object (§4.2). Enum, Imported, and Singleton objects get none.
func (b *Builder) Build() (*Woog, error) {
	log := gracelog.Get(gracelog.CategoryWoog)
	w := &Woog{Constructors: make(map[uuid.UUID][]Constructor)}

	for _, obj := range b.view.Objects() {
		shape := b.cls.Classify(obj.ID)
		switch shape {
		case classifier.StructShape:
			log.Debugw("building struct constructor", "object", obj.Name)
			ctor, err := b.buildStructConstructor(obj)
			if err != nil {
				return nil, err
			}
			w.Constructors[obj.ID] = []Constructor{ctor}

		case classifier.ExternalShape:
			log.Debugw("building external constructor", "object", obj.Name)
			ctor, err := b.buildExternalConstructor(obj)
			if err != nil {
				return nil, err
			}
			w.Constructors[obj.ID] = []Constructor{ctor}

		case classifier.HybridShape:
			log.Debugw("building hybrid constructors", "object", obj.Name)
			ctors, err := b.buildHybridConstructors(obj)
			if err != nil {
				return nil, err
			}
			w.Constructors[obj.ID] = ctors

		default:
			// Enum, Imported, Singleton: no Woog constructors (§4.2).
		}
	}

	return w, nil
}

// collectAttributesAndRefs implements §4.2 steps 3–5: attributes sorted
// by name (Fields include "id", Parameters exclude it), then binary
// referrers sorted by target name,
// then associative referrers in declaration order with sides in (one,
// other) order. It returns parallel Parameter/Field slices not yet linked
// into a forward list.
func (b *Builder) collectAttributesAndRefs(objID uuid.UUID, namePrefix string) ([]Parameter, []Field, error) {
	var params []Parameter
	var fields []Field

	for _, attr := range b.view.Attributes(objID) {
		gt, err := b.attributeGType(attr.Type)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, Field{
			ID:   deriveID(namePrefix, "field", attr.Name),
			Name: attr.Name,
			Type: gt,
		})
		if attr.Name == "id" {
			continue
		}
		params = append(params, Parameter{
			ID:        deriveID(namePrefix, "param", attr.Name),
			Name:      attr.Name,
			Ownership: Borrowed,
			Type:      gt,
		})
	}

	for _, rel := range b.view.Referrers(objID) {
		target, ok := b.view.Object(rel.Referent.Object)
		if !ok {
			return nil, nil, fmt.Errorf("referent object %s not found", rel.Referent.Object)
		}
		targetEnum := b.cls.IsEnum(target.ID)
		name := rel.Referrer.RefAttrName

		var paramType, fieldType typecheck.GType
		if rel.Referent.Conditionality == model.Conditional {
			paramType = typecheck.GType{Kind: typecheck.OptionReferenceKind, Name: target.Name, TargetEnum: targetEnum}
			fieldType = typecheck.GType{Kind: typecheck.OptionUuidKind}
		} else {
			paramType = typecheck.GType{Kind: typecheck.ReferenceKind, Name: target.Name, TargetEnum: targetEnum}
			fieldType = typecheck.GType{Kind: typecheck.UuidKind}
		}

		params = append(params, Parameter{ID: deriveID(namePrefix, "param", name), Name: name, Ownership: Borrowed, Type: paramType})
		fields = append(fields, Field{ID: deriveID(namePrefix, "field", name), Name: name, Type: fieldType})
	}

	for _, assoc := range b.view.AssociativeReferrers(objID) {
		for _, side := range []model.AssocSide{assoc.One, assoc.Other} {
			target, ok := b.view.Object(side.Object)
			if !ok {
				return nil, nil, fmt.Errorf("associative referent %s not found", side.Object)
			}
			targetEnum := b.cls.IsEnum(target.ID)
			paramType := typecheck.GType{Kind: typecheck.ReferenceKind, Name: target.Name, TargetEnum: targetEnum}
			fieldType := typecheck.GType{Kind: typecheck.UuidKind}
			name := side.RefAttrName
			params = append(params, Parameter{ID: deriveID(namePrefix, "param", name), Name: name, Ownership: Borrowed, Type: paramType})
			fields = append(fields, Field{ID: deriveID(namePrefix, "field", name), Name: name, Type: fieldType})
		}
	}

	return params, fields, nil
}

// linkParameters folds the slice in reverse, writing each node's Next to
// the previously seen id — the deterministic forward-linkage pattern of
// §3.3 and §9 DESIGN NOTES, lifted from the original woog.rs.
func linkParameters(params []Parameter) []Parameter {
	var next *uuid.UUID
	for i := len(params) - 1; i >= 0; i-- {
		if next != nil {
			n := *next
			params[i].Next = &n
		}
		id := params[i].ID
		next = &id
	}
	return params
}

func linkFields(fields []Field) []Field {
	var next *uuid.UUID
	for i := len(fields) - 1; i >= 0; i-- {
		if next != nil {
			n := *next
			fields[i].Next = &n
		}
		id := fields[i].ID
		next = &id
	}
	return fields
}

func (b *Builder) locals(namePrefix string, objName string) []Local {
	return []Local{
		{ID: deriveID(namePrefix, "local", "id"), Name: "id", Type: typecheck.GType{Kind: typecheck.UuidKind}},
		{ID: deriveID(namePrefix, "local", "new"), Name: "new", Type: typecheck.GType{Kind: typecheck.ReferenceKind, Name: objName}},
	}
}

func (b *Builder) appendStoreParam(namePrefix string, params []Parameter) []Parameter {
	if b.cfg.GetTarget().Kind != config.Domain {
		return params
	}
	return append(params, Parameter{
		ID:        deriveID(namePrefix, "param", "store"),
		Name:      "store",
		Ownership: Mutable,
		Type:      typecheck.GType{Kind: typecheck.Identity, Name: "Store"},
	})
}

func (b *Builder) buildStructConstructor(obj model.Object) (Constructor, error) {
	prefix := obj.ID.String()
	params, fields, err := b.collectAttributesAndRefs(obj.ID, prefix)
	if err != nil {
		return Constructor{}, err
	}
	params = b.appendStoreParam(prefix, params)

	return Constructor{
		Name:       "new",
		Object:     obj.ID,
		Parameters: linkParameters(params),
		Fields:     linkFields(fields),
		Locals:     b.locals(prefix, obj.Name),
	}, nil
}

func (b *Builder) buildExternalConstructor(obj model.Object) (Constructor, error) {
	prefix := obj.ID.String()
	ext, ok := b.cfg.IsExternal(obj.ID)
	if !ok {
		return Constructor{}, fmt.Errorf("object %s is not configured external", obj.Name)
	}

	params, fields, err := b.collectAttributesAndRefs(obj.ID, prefix)
	if err != nil {
		return Constructor{}, err
	}

	extParam := Parameter{
		ID:        deriveID(prefix, "param", "ext_value"),
		Name:      "ext_value",
		Ownership: Owned,
		Type:      typecheck.GType{Kind: typecheck.Identity, Name: ext.WrappedType},
	}
	extField := Field{
		ID:   deriveID(prefix, "field", "ext_value"),
		Name: "ext_value",
		Type: typecheck.GType{Kind: typecheck.Identity, Name: ext.WrappedType},
	}
	params = append([]Parameter{extParam}, params...)
	fields = append([]Field{extField}, fields...)
	params = b.appendStoreParam(prefix, params)

	return Constructor{
		Name:          ext.Ctor,
		Object:        obj.ID,
		ExtValueParam: &extParam,
		ExtValueField: &extField,
		Parameters:    linkParameters(params),
		Fields:        linkFields(fields),
		Locals:        b.locals(prefix, obj.Name),
	}, nil
}

func (b *Builder) buildHybridConstructors(obj model.Object) ([]Constructor, error) {
	isa, ok := b.view.IsaOf(obj.ID)
	if !ok {
		return nil, fmt.Errorf("hybrid object %s has no Isa edge", obj.Name)
	}

	subtypes := make([]model.Object, 0, len(isa.Subtypes))
	for _, sid := range isa.Subtypes {
		s, ok := b.view.Object(sid)
		if !ok {
			return nil, fmt.Errorf("subtype %s of %s not found", sid, obj.Name)
		}
		subtypes = append(subtypes, s)
	}
	sort.Slice(subtypes, func(i, j int) bool { return subtypes[i].Name < subtypes[j].Name })

	var ctors []Constructor
	for _, sub := range subtypes {
		prefix := obj.ID.String() + "/" + sub.ID.String()

		params, fields, err := b.collectAttributesAndRefs(obj.ID, prefix)
		if err != nil {
			return nil, err
		}

		subEnum := b.cls.IsEnum(sub.ID)
		subField := Field{
			ID:   deriveID(prefix, "field", "subtype"),
			Name: "subtype",
			Type: typecheck.GType{Kind: typecheck.UuidKind},
		}
		fields = append(fields, subField)

		var subParam *Parameter
		if !b.cls.IsSingleton(sub.ID) {
			p := Parameter{
				ID:        deriveID(prefix, "param", "subtype"),
				Name:      "subtype",
				Ownership: Borrowed,
				Type:      typecheck.GType{Kind: typecheck.ReferenceKind, Name: sub.Name, TargetEnum: subEnum},
			}
			params = append(params, p)
			subParam = &p
		}

		params = b.appendStoreParam(prefix, params)

		ctors = append(ctors, Constructor{
			Name:         "new_" + identName(sub.Name),
			Object:       obj.ID,
			Subtype:      &sub.ID,
			SubtypeParam: subParam,
			SubtypeField: &subField,
			EnumVariant:  sub.Name,
			Parameters:   linkParameters(params),
			Fields:       linkFields(fields),
			Locals:       b.locals(prefix, obj.Name),
		})
	}

	return ctors, nil
}

func (b *Builder) attributeGType(t model.Type) (typecheck.GType, error) {
	switch t.Kind {
	case model.Uuid:
		return typecheck.GType{Kind: typecheck.UuidKind}, nil
	case model.External:
		return typecheck.GType{Kind: typecheck.Identity, Name: t.ExternalName}, nil
	case model.ObjectRef:
		target, ok := b.view.Object(t.ObjectID)
		if !ok {
			return typecheck.GType{}, fmt.Errorf("attribute references unknown object %s", t.ObjectID)
		}
		return typecheck.GType{Kind: typecheck.ReferenceKind, Name: target.Name, TargetEnum: b.cls.IsEnum(target.ID)}, nil
	default:
		return typecheck.GType{Kind: typecheck.Identity, Name: primitiveName(t.Kind)}, nil
	}
}

func primitiveName(k model.PrimitiveKind) string {
	switch k {
	case model.String:
		return "String"
	case model.Boolean:
		return "bool"
	case model.Integer:
		return "i64"
	case model.Float:
		return "f64"
	default:
		return "Uuid"
	}
}

// identName lower-snake-cases an object name for use in `new_<subtype>`
// function names.
func identName(name string) string {
	out := make([]byte, 0, len(name)+4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i != 0 {
				out = append(out, '_')
			}
			out = append(out, byte(r-'A'+'a'))
		} else {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
