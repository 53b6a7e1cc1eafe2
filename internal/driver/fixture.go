package driver

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/uberFoo/grace-sub001/internal/model"
)

// fixtureAttribute/-Object/... mirror model's types but with string ids,
// so a domain model can be authored as human-editable YAML the same way
// grace.yaml configures the generator itself (§3 DOMAIN STACK: "the
// fixture Model View also loads its graph from a YAML document").
type fixtureType struct {
	Kind     string `yaml:"kind"`
	External string `yaml:"external,omitempty"`
	Object   string `yaml:"object,omitempty"`
}

type fixtureAttribute struct {
	Name string      `yaml:"name"`
	Type fixtureType `yaml:"type"`
}

type fixtureObject struct {
	Name        string             `yaml:"name"`
	ID          string             `yaml:"id"`
	Description string             `yaml:"description,omitempty"`
	Attributes  []fixtureAttribute `yaml:"attributes,omitempty"`
}

type fixtureBinarySide struct {
	Object         string `yaml:"object"`
	RefAttrName    string `yaml:"ref_attr_name,omitempty"`
	Cardinality    string `yaml:"cardinality,omitempty"`
	Conditionality string `yaml:"conditionality,omitempty"`
}

type fixtureBinary struct {
	ID       int               `yaml:"id"`
	Referrer fixtureBinarySide `yaml:"referrer"`
	Referent fixtureBinarySide `yaml:"referent"`
}

type fixtureAssocSide struct {
	Object         string `yaml:"object"`
	RefAttrName    string `yaml:"ref_attr_name"`
	Cardinality    string `yaml:"cardinality,omitempty"`
	Conditionality string `yaml:"conditionality,omitempty"`
}

type fixtureAssoc struct {
	ID       int              `yaml:"id"`
	Referrer string           `yaml:"referrer"`
	One      fixtureAssocSide `yaml:"one"`
	Other    fixtureAssocSide `yaml:"other"`
}

type fixtureIsa struct {
	ID        int      `yaml:"id"`
	Supertype string   `yaml:"supertype"`
	Subtypes  []string `yaml:"subtypes"`
}

type fixtureDoc struct {
	Objects  []fixtureObject `yaml:"objects"`
	Binaries []fixtureBinary `yaml:"binaries,omitempty"`
	Assocs   []fixtureAssoc  `yaml:"associations,omitempty"`
	Isas     []fixtureIsa    `yaml:"isas,omitempty"`
}

// LoadFixtureModel parses a YAML domain-model document into an
// *model.InMemory View, resolving object-name references to uuid.UUID via
// a name table built from the declared objects.
func LoadFixtureModel(path string) (*model.InMemory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture model %s: %w", path, err)
	}
	return ParseFixtureModel(data)
}

// ParseFixtureModel is LoadFixtureModel's in-memory counterpart, used by
// tests that embed a fixture document as a string literal.
func ParseFixtureModel(data []byte) (*model.InMemory, error) {
	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixture model: %w", err)
	}

	byName := make(map[string]uuid.UUID, len(doc.Objects))
	for _, o := range doc.Objects {
		id, err := resolveID(o.Name, o.ID)
		if err != nil {
			return nil, err
		}
		byName[o.Name] = id
	}
	lookup := func(name string) (uuid.UUID, error) {
		id, ok := byName[name]
		if !ok {
			return uuid.UUID{}, fmt.Errorf("fixture references unknown object %q", name)
		}
		return id, nil
	}

	var objects []model.Object
	var attrs []model.Attribute
	for _, o := range doc.Objects {
		id := byName[o.Name]
		objects = append(objects, model.Object{ID: id, Name: o.Name, Description: o.Description})
		for _, a := range o.Attributes {
			t, err := resolveType(a.Type, lookup)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, model.Attribute{Owner: id, Name: a.Name, Type: t})
		}
	}

	var binaries []model.BinaryRelationship
	for _, b := range doc.Binaries {
		rel, err := resolveBinary(b, lookup)
		if err != nil {
			return nil, err
		}
		binaries = append(binaries, rel)
	}

	var assocs []model.AssociativeRelationship
	for _, a := range doc.Assocs {
		rel, err := resolveAssoc(a, lookup)
		if err != nil {
			return nil, err
		}
		assocs = append(assocs, rel)
	}

	var isas []model.Isa
	for _, i := range doc.Isas {
		super, err := lookup(i.Supertype)
		if err != nil {
			return nil, err
		}
		var subs []uuid.UUID
		for _, s := range i.Subtypes {
			sid, err := lookup(s)
			if err != nil {
				return nil, err
			}
			subs = append(subs, sid)
		}
		isas = append(isas, model.Isa{ID: i.ID, Supertype: super, Subtypes: subs})
	}

	return model.NewInMemory(objects, attrs, binaries, assocs, isas), nil
}

func resolveID(name, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte("grace-fixture/"+name)), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("object %q has invalid id %q: %w", name, raw, err)
	}
	return id, nil
}

func resolveType(t fixtureType, lookup func(string) (uuid.UUID, error)) (model.Type, error) {
	switch t.Kind {
	case "string":
		return model.Type{Kind: model.String}, nil
	case "boolean":
		return model.Type{Kind: model.Boolean}, nil
	case "integer":
		return model.Type{Kind: model.Integer}, nil
	case "float":
		return model.Type{Kind: model.Float}, nil
	case "uuid", "":
		return model.Type{Kind: model.Uuid}, nil
	case "external":
		return model.Type{Kind: model.External, ExternalName: t.External}, nil
	case "object":
		id, err := lookup(t.Object)
		if err != nil {
			return model.Type{}, err
		}
		return model.Type{Kind: model.ObjectRef, ObjectID: id}, nil
	default:
		return model.Type{}, fmt.Errorf("unknown attribute type kind %q", t.Kind)
	}
}

func resolveBinarySide(s fixtureBinarySide, lookup func(string) (uuid.UUID, error)) (model.BinarySide, error) {
	id, err := lookup(s.Object)
	if err != nil {
		return model.BinarySide{}, err
	}
	side := model.BinarySide{Object: id, RefAttrName: s.RefAttrName}
	if s.Cardinality == "many" {
		side.Cardinality = model.Many
	}
	if s.Conditionality == "conditional" {
		side.Conditionality = model.Conditional
	}
	return side, nil
}

func resolveBinary(b fixtureBinary, lookup func(string) (uuid.UUID, error)) (model.BinaryRelationship, error) {
	referrer, err := resolveBinarySide(b.Referrer, lookup)
	if err != nil {
		return model.BinaryRelationship{}, err
	}
	referent, err := resolveBinarySide(b.Referent, lookup)
	if err != nil {
		return model.BinaryRelationship{}, err
	}
	return model.BinaryRelationship{ID: b.ID, Referrer: referrer, Referent: referent}, nil
}

func resolveAssocSide(s fixtureAssocSide, lookup func(string) (uuid.UUID, error)) (model.AssocSide, error) {
	id, err := lookup(s.Object)
	if err != nil {
		return model.AssocSide{}, err
	}
	side := model.AssocSide{Object: id, RefAttrName: s.RefAttrName}
	if s.Cardinality == "many" {
		side.Cardinality = model.Many
	}
	if s.Conditionality == "conditional" {
		side.Conditionality = model.Conditional
	}
	return side, nil
}

func resolveAssoc(a fixtureAssoc, lookup func(string) (uuid.UUID, error)) (model.AssociativeRelationship, error) {
	referrer, err := lookup(a.Referrer)
	if err != nil {
		return model.AssociativeRelationship{}, err
	}
	one, err := resolveAssocSide(a.One, lookup)
	if err != nil {
		return model.AssociativeRelationship{}, err
	}
	other, err := resolveAssocSide(a.Other, lookup)
	if err != nil {
		return model.AssociativeRelationship{}, err
	}
	return model.AssociativeRelationship{ID: a.ID, Referrer: referrer, One: one, Other: other}, nil
}
