package classifier

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
)

func id(n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(n)})
}

func blankConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("target:\n  kind: domain\n"))
	require.NoError(t, err)
	return cfg
}

// TestS1StructClassification mirrors spec.md S1: a single object with one
// own attribute and no relationships classifies as Struct.
func TestS1StructClassification(t *testing.T) {
	point := id(1)
	view := model.NewInMemory(
		[]model.Object{{ID: point, Name: "Point"}},
		[]model.Attribute{
			{Owner: point, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: point, Name: "x", Type: model.Type{Kind: model.Integer}},
		},
		nil, nil, nil,
	)
	cls := New(view, blankConfig(t))
	assert.Equal(t, StructShape, cls.Classify(point))
}

// TestS2OwnerIsStructNotSingleton mirrors spec.md S2: Owner has no
// attributes of its own and no referrers, but Pet refers to it — so it
// must remain a navigable Struct, not collapse to Singleton.
func TestS2OwnerIsStructNotSingleton(t *testing.T) {
	owner, pet := id(1), id(2)
	binaries := []model.BinaryRelationship{{
		ID:       1,
		Referrer: model.BinarySide{Object: pet, RefAttrName: "owner"},
		Referent: model.BinarySide{Object: owner},
	}}
	view := model.NewInMemory(
		[]model.Object{{ID: owner, Name: "Owner"}, {ID: pet, Name: "Pet"}},
		[]model.Attribute{
			{Owner: owner, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: pet, Name: "id", Type: model.Type{Kind: model.Uuid}},
		},
		binaries, nil, nil,
	)
	cls := New(view, blankConfig(t))
	assert.Equal(t, StructShape, cls.Classify(owner))
	assert.Equal(t, StructShape, cls.Classify(pet))
}

// TestSingletonHasNoDataOrParticipation verifies a true Singleton: no
// attributes beyond id, no relationship participation in either
// direction, and not a supertype.
func TestSingletonHasNoDataOrParticipation(t *testing.T) {
	red := id(1)
	view := model.NewInMemory(
		[]model.Object{{ID: red, Name: "Red"}},
		[]model.Attribute{{Owner: red, Name: "id", Type: model.Type{Kind: model.Uuid}}},
		nil, nil, nil,
	)
	cls := New(view, blankConfig(t))
	assert.Equal(t, SingletonShape, cls.Classify(red))
}

// TestS4HybridSupertypeWithOwnData mirrors spec.md S4: a supertype with
// its own attribute classifies Hybrid, not Enum.
func TestS4HybridSupertypeWithOwnData(t *testing.T) {
	shape, circle, square := id(1), id(2), id(3)
	isas := []model.Isa{{ID: 1, Supertype: shape, Subtypes: []uuid.UUID{circle, square}}}
	view := model.NewInMemory(
		[]model.Object{
			{ID: shape, Name: "Shape"},
			{ID: circle, Name: "Circle"},
			{ID: square, Name: "Square"},
		},
		[]model.Attribute{
			{Owner: shape, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: shape, Name: "color", Type: model.Type{Kind: model.String}},
			{Owner: circle, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: square, Name: "id", Type: model.Type{Kind: model.Uuid}},
		},
		nil, nil, isas,
	)
	cls := New(view, blankConfig(t))
	assert.Equal(t, HybridShape, cls.Classify(shape))
}

// TestEnumSupertypeWithNoOwnData verifies a plain enum supertype (no own
// attributes beyond id) classifies Enum.
func TestEnumSupertypeWithNoOwnData(t *testing.T) {
	kind, a, b := id(1), id(2), id(3)
	isas := []model.Isa{{ID: 1, Supertype: kind, Subtypes: []uuid.UUID{a, b}}}
	view := model.NewInMemory(
		[]model.Object{{ID: kind, Name: "TokenKind"}, {ID: a, Name: "A"}, {ID: b, Name: "B"}},
		[]model.Attribute{
			{Owner: kind, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: a, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: b, Name: "id", Type: model.Type{Kind: model.Uuid}},
		},
		nil, nil, isas,
	)
	cls := New(view, blankConfig(t))
	assert.Equal(t, EnumShape, cls.Classify(kind))
}

func TestImportedTakesPriorityOverEverything(t *testing.T) {
	obj := id(1)
	view := model.NewInMemory([]model.Object{{ID: obj, Name: "Foreign"}}, nil, nil, nil, nil)
	raw := "target:\n  kind: domain\nobjects:\n  " + obj.String() + ":\n    imported_from: other_crate\n"
	cfg, err := config.Parse([]byte(raw))
	require.NoError(t, err)
	cls := New(view, cfg)
	assert.Equal(t, Imported, cls.Classify(obj))
}
