package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberFoo/grace-sub001/internal/graceerr"
)

func TestCoerceIdentityPassesThrough(t *testing.T) {
	got, err := Coerce(GType{Kind: Identity, Name: "String"}, GType{Kind: Identity, Name: "String"}, "name")
	require.NoError(t, err)
	assert.Equal(t, "name", got)
}

func TestCoerceStructReferenceUsesDotID(t *testing.T) {
	lhs := GType{Kind: UuidKind}
	rhs := GType{Kind: ReferenceKind, Name: "Owner", TargetEnum: false}
	got, err := Coerce(lhs, rhs, "owner")
	require.NoError(t, err)
	assert.Equal(t, "owner.id", got)
}

func TestCoerceEnumReferenceUsesIDMethod(t *testing.T) {
	lhs := GType{Kind: UuidKind}
	rhs := GType{Kind: ReferenceKind, Name: "TokenKind", TargetEnum: true}
	got, err := Coerce(lhs, rhs, "kind")
	require.NoError(t, err)
	assert.Equal(t, "kind.id()", got)
}

func TestCoerceOptionReferenceMapsOverOption(t *testing.T) {
	lhs := GType{Kind: OptionUuidKind}
	rhs := GType{Kind: OptionReferenceKind, Name: "TokenKind", TargetEnum: true}
	got, err := Coerce(lhs, rhs, "kind")
	require.NoError(t, err)
	assert.Equal(t, "kind.map(|t| t.id())", got)

	rhs.TargetEnum = false
	got, err = Coerce(lhs, rhs, "kind")
	require.NoError(t, err)
	assert.Equal(t, "kind.map(|t| t.id)", got)
}

func TestCoerceUncoveredPairIsTypeMismatch(t *testing.T) {
	lhs := GType{Kind: UuidKind}
	rhs := GType{Kind: Identity, Name: "String"}
	_, err := Coerce(lhs, rhs, "x")
	require.Error(t, err)

	var mismatch *graceerr.TypeMismatch
	require.ErrorAs(t, err, &mismatch)
}
