// Package typecheck implements typecheck_and_coerce (§4.3): the closed
// rule set that turns a parameter expression into the field-storage
// expression a constructor assigns, coercing relationship references into
// the Uuid values the store actually persists.
package typecheck

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/graceerr"
)

// Kind is the shape of a Woog-level type as typecheck_and_coerce sees it.
type Kind int

const (
	// Identity covers any type where the lhs and rhs are structurally
	// equal — primitives and pass-through Woog types.
	Identity Kind = iota
	UuidKind
	OptionUuidKind
	ReferenceKind
	OptionReferenceKind
)

// GType is one side of a coercion: its Kind, and — for Reference and
// OptionReference — whether the referenced object is an Enum (id() is a
// method there) or a Struct/Hybrid (id is a field).
type GType struct {
	Kind       Kind
	TargetEnum bool
	Name       string // diagnostic only
}

func (t GType) String() string {
	switch t.Kind {
	case UuidKind:
		return "Uuid"
	case OptionUuidKind:
		return "Option<Uuid>"
	case ReferenceKind:
		return fmt.Sprintf("Reference(%s)", t.Name)
	case OptionReferenceKind:
		return fmt.Sprintf("Option<Reference(%s)>", t.Name)
	default:
		return t.Name
	}
}

// Coerce computes the field-storage expression for rhsExpr, an expression
// of type rhs, being stored into a field of type lhs. The rule set is
// closed: anything not covered below is a TypeMismatch, which indicates a
// bug in the caller (the Woog Builder), not bad input.
func Coerce(lhs, rhs GType, rhsExpr string) (string, error) {
	if structurallyEqual(lhs, rhs) {
		return rhsExpr, nil
	}

	if lhs.Kind == UuidKind && rhs.Kind == ReferenceKind {
		if rhs.TargetEnum {
			return rhsExpr + ".id()", nil
		}
		return rhsExpr + ".id", nil
	}

	if lhs.Kind == OptionUuidKind && rhs.Kind == OptionReferenceKind {
		if rhs.TargetEnum {
			return rhsExpr + ".map(|t| t.id())", nil
		}
		return rhsExpr + ".map(|t| t.id)", nil
	}

	return "", &graceerr.TypeMismatch{LHS: lhs.String(), RHS: rhs.String()}
}

func structurallyEqual(a, b GType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ReferenceKind, OptionReferenceKind:
		return a.Name == b.Name && a.TargetEnum == b.TargetEnum
	default:
		return true
	}
}
