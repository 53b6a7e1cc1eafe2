package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mid(n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(n)})
}

func TestObjectsIsSortedByName(t *testing.T) {
	a, b, c := mid(1), mid(2), mid(3)
	view := NewInMemory(
		[]Object{{ID: a, Name: "Zebra"}, {ID: b, Name: "Apple"}, {ID: c, Name: "Mango"}},
		nil, nil, nil, nil,
	)
	objs := view.Objects()
	require.Len(t, objs, 3)
	assert.Equal(t, []string{"Apple", "Mango", "Zebra"}, []string{objs[0].Name, objs[1].Name, objs[2].Name})
}

func TestAttributesIncludesIDAndSortsByName(t *testing.T) {
	point := mid(1)
	view := NewInMemory(
		[]Object{{ID: point, Name: "Point"}},
		[]Attribute{
			{Owner: point, Name: "y", Type: Type{Kind: Integer}},
			{Owner: point, Name: "id", Type: Type{Kind: Uuid}},
			{Owner: point, Name: "x", Type: Type{Kind: Integer}},
		},
		nil, nil, nil,
	)
	attrs := view.Attributes(point)
	require.Len(t, attrs, 3)
	assert.Equal(t, []string{"id", "x", "y"}, []string{attrs[0].Name, attrs[1].Name, attrs[2].Name})
}

func TestReferrersAndReferentsAreInverses(t *testing.T) {
	owner, pet := mid(1), mid(2)
	binaries := []BinaryRelationship{{
		ID:       1,
		Referrer: BinarySide{Object: pet, RefAttrName: "owner"},
		Referent: BinarySide{Object: owner},
	}}
	view := NewInMemory(
		[]Object{{ID: owner, Name: "Owner"}, {ID: pet, Name: "Pet"}},
		nil, binaries, nil, nil,
	)

	refs := view.Referrers(pet)
	require.Len(t, refs, 1)
	assert.Equal(t, owner, refs[0].Referent.Object)

	assert.Empty(t, view.Referrers(owner))

	rents := view.Referents(owner)
	require.Len(t, rents, 1)
	assert.Equal(t, pet, rents[0].Referrer.Object)

	assert.Empty(t, view.Referents(pet))
}

func TestAssociativeReferentsMatchesEitherSide(t *testing.T) {
	link, left, right := mid(1), mid(2), mid(3)
	assocs := []AssociativeRelationship{{
		ID:       1,
		Referrer: link,
		One:      AssocSide{Object: left},
		Other:    AssocSide{Object: right},
	}}
	view := NewInMemory(
		[]Object{{ID: link, Name: "Link"}, {ID: left, Name: "Left"}, {ID: right, Name: "Right"}},
		nil, nil, assocs, nil,
	)
	assert.Len(t, view.AssociativeReferents(left), 1)
	assert.Len(t, view.AssociativeReferents(right), 1)
	assert.Len(t, view.AssociativeReferrers(link), 1)
	assert.Empty(t, view.AssociativeReferrers(left))
}

func TestSupertypeOfAndIsaOfAreInverses(t *testing.T) {
	shape, circle := mid(1), mid(2)
	isas := []Isa{{ID: 1, Supertype: shape, Subtypes: []uuid.UUID{circle}}}
	view := NewInMemory(
		[]Object{{ID: shape, Name: "Shape"}, {ID: circle, Name: "Circle"}},
		nil, nil, nil, isas,
	)

	isa, ok := view.IsaOf(shape)
	require.True(t, ok)
	assert.Equal(t, shape, isa.Supertype)

	isa, ok = view.SupertypeOf(circle)
	require.True(t, ok)
	assert.Equal(t, shape, isa.Supertype)

	_, ok = view.SupertypeOf(shape)
	assert.False(t, ok)
	_, ok = view.IsaOf(circle)
	assert.False(t, ok)
}
