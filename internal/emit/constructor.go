package emit

import (
	"fmt"
	"strings"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
	"github.com/uberFoo/grace-sub001/internal/typecheck"
	"github.com/uberFoo/grace-sub001/internal/woog"
)

// singletonConstName renders the fixed Uuid constant name a Singleton
// object emits (§4.4.5): its name, upper-snake-cased.
func singletonConstName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i != 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		} else if r >= 'a' && r <= 'z' {
			b.WriteRune(r - 'a' + 'A')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fieldRHS computes the expression assigned to field inside the `Self {
// ... }` literal, applying §4.3 coercion for ordinary fields and the
// Hybrid subtype-enum wrap (§4.4.2) for the subtype field.
func fieldRHS(p *Pipeline, obj model.Object, ctor woog.Constructor, field woog.Field) (string, error) {
	if field.Name == "id" {
		return "id", nil
	}

	if ctor.SubtypeField != nil && field.ID == ctor.SubtypeField.ID {
		variant := fmt.Sprintf("%sEnum::%s", obj.Name, ctor.EnumVariant)
		if ctor.SubtypeParam == nil {
			subID := *ctor.Subtype
			sub, _ := p.View.Object(subID)
			return fmt.Sprintf("%s(%s)", variant, singletonConstName(sub.Name)), nil
		}
		idExpr, err := typecheck.Coerce(typecheck.GType{Kind: typecheck.UuidKind}, ctor.SubtypeParam.Type, ctor.SubtypeParam.Name)
		if err != nil {
			return "", err
		}
		if p.Config.GetOptimizationLevel() == config.OptVec && !p.Class.IsImported(*ctor.Subtype) {
			idExpr = fmt.Sprintf("(%s).as_u128() as usize", idExpr)
		}
		return fmt.Sprintf("%s(%s)", variant, idExpr), nil
	}

	if ctor.ExtValueField != nil && field.ID == ctor.ExtValueField.ID {
		return ctor.ExtValueParam.Name, nil
	}

	for _, param := range ctor.Parameters {
		if param.Name == field.Name {
			return typecheck.Coerce(field.Type, param.Type, param.Name)
		}
	}

	return "", fmt.Errorf("no parameter found to populate field %q on %s", field.Name, obj.Name)
}

// WriteConstructor emits one constructor function per §4.4.2: doc line,
// signature, and body. optimizedVec selects the Vec-optimization body
// shape (`store.inter_<obj>(|id| { Self { id, ... } })`) instead of the
// default `Uuid::new_v4()` + `inter_<obj>(new)` body. Either way
// the function returns whatever the Object Store hands back — the
// UberStore-wrapped type, same as every navigator and accessor — so a
// dedup hit under Vec mode surfaces the store's existing instance rather
// than the one just built locally.
func WriteConstructor(buf *buffer.Buffer, p *Pipeline, obj model.Object, ctor woog.Constructor, optimizedVec bool) error {
	tag := regionTag(obj.Name, "impl-"+ctor.Name)
	wrapped := p.Store.WrapperType(obj.Name)
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("/// Inter a new `%s` in the store, and return it's `id`.", obj.Name)
		buf.Emit("pub fn %s(%s) -> %s {", ctor.Name, renderParamList(ctor.Parameters), wrapped)

		if optimizedVec && hasStoreParam(ctor.Parameters) {
			buf.Emit("    store.inter_%s(|_id| {", identSnake(obj.Name))
			buf.Emit("        let id = Uuid::new_v4();")
			emitFieldListAsLet(buf, p, obj, ctor)
			buf.Emit("        %s", p.Store.Wrap("new"))
			buf.Emit("    })")
		} else {
			buf.Emit("    let id = Uuid::new_v4();")
			emitFieldListAsLet(buf, p, obj, ctor)
			buf.Emit("    store.inter_%s(new)", identSnake(obj.Name))
		}

		buf.Emit("}")
	})
}

func hasStoreParam(params []woog.Parameter) bool {
	for _, p := range params {
		if p.Name == "store" {
			return true
		}
	}
	return false
}

func emitFieldListAsLet(buf *buffer.Buffer, p *Pipeline, obj model.Object, ctor woog.Constructor) {
	buf.Emit("    let new = Self {")
	for _, f := range ctor.Fields {
		rhs, err := fieldRHS(p, obj, ctor, f)
		if err != nil {
			rhs = "/* " + err.Error() + " */"
		}
		buf.Emit("        %s: %s,", f.Name, rhs)
	}
	buf.Emit("    };")
}

func identSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i != 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
