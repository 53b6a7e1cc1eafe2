package emit

import (
	"github.com/google/uuid"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// WriteStruct emits the Struct shape (§4.4.1): use-statements, doc
// comment, derives, struct body, and an impl block with the constructor
// and one navigation method per relationship.
func WriteStruct(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	if err := writeUseStatements(buf, p, obj); err != nil {
		return err
	}

	tag := regionTag(obj.Name, "struct-definition")
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		docLines(buf, obj.Description)
		buf.Emit(deriveLine(derivesFor(p, obj)))
		buf.Emit("pub struct %s {", obj.Name)
		for _, attr := range p.View.Attributes(obj.ID) {
			buf.Emit("    pub %s: %s,", attr.Name, attrType(attr))
		}
		writeRelationalFieldDecls(buf, p, obj)
		buf.Emit("}")
	}); err != nil {
		return err
	}

	return writeImplBlock(buf, p, obj)
}

func writeImplBlock(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	tag := regionTag(obj.Name, "struct-impl")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl %s {", obj.Name)
		optimizedVec := p.Config.GetOptimizationLevel() == config.OptVec
		for _, ctor := range p.Woog.ConstructorsFor(obj.ID) {
			if err := WriteConstructor(buf, p, obj, ctor, optimizedVec); err != nil {
				buf.Emit("    /* constructor error: %v */", err)
			}
		}
		if err := WriteNavigators(buf, p, obj); err != nil {
			buf.Emit("    /* navigator error: %v */", err)
		}
		buf.Emit("}")
	})
}

// writeUseStatements collects referrer target types, referent source
// types, and the ObjectStore alias into a sorted, de-duplicated set and
// emits them once (§4.4.1).
func writeUseStatements(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	tag := regionTag(obj.Name, "use-statements")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("use uuid::Uuid;")
		buf.Emit("")
		for _, path := range p.Config.UsePaths(obj.ID) {
			buf.Emit("use %s;", path)
		}

		seen := map[uuid.UUID]bool{}
		var names []model.Object
		for _, r := range p.View.Referrers(obj.ID) {
			if !seen[r.Referent.Object] {
				seen[r.Referent.Object] = true
				if o, ok := p.View.Object(r.Referent.Object); ok {
					names = append(names, o)
				}
			}
		}
		for _, r := range p.View.Referents(obj.ID) {
			if !seen[r.Referrer.Object] {
				seen[r.Referrer.Object] = true
				if o, ok := p.View.Object(r.Referrer.Object); ok {
					names = append(names, o)
				}
			}
		}
		for _, a := range p.View.AssociativeReferents(obj.ID) {
			for _, side := range []uuid.UUID{a.Referrer} {
				if !seen[side] {
					seen[side] = true
					if o, ok := p.View.Object(side); ok {
						names = append(names, o)
					}
				}
			}
		}

		sortByName(names)
		for _, o := range names {
			buf.Emit("use crate::types::%s::%s;", identSnake(o.Name), o.Name)
		}
		buf.Emit("use crate::store::ObjectStore as Store;")
	})
}

func sortByName(objs []model.Object) {
	for i := 1; i < len(objs); i++ {
		for j := i; j > 0 && objs[j].Name < objs[j-1].Name; j-- {
			objs[j], objs[j-1] = objs[j-1], objs[j]
		}
	}
}

func writeRelationalFieldDecls(buf *buffer.Buffer, p *Pipeline, obj model.Object) {
	for _, r := range p.View.Referrers(obj.ID) {
		target, _ := p.View.Object(r.Referent.Object)
		if r.Referent.Conditionality == model.Conditional {
			buf.Emit("    pub %s: Option<Uuid>, // -> %s", r.Referrer.RefAttrName, target.Name)
		} else {
			buf.Emit("    pub %s: Uuid, // -> %s", r.Referrer.RefAttrName, target.Name)
		}
	}
	for _, a := range p.View.AssociativeReferrers(obj.ID) {
		for _, side := range []model.AssocSide{a.One, a.Other} {
			target, _ := p.View.Object(side.Object)
			buf.Emit("    pub %s: Uuid, // -> %s", side.RefAttrName, target.Name)
		}
	}
}

// attrType renders an attribute's storage type. Object(id) attribute
// references always store a Uuid (§3.5 invariant 2), regardless of
// whether the target classifies as Enum or Struct — the id()-vs-.id
// distinction only matters for the constructor's coercion expression, not
// for the storage type, which is Uuid either way.
func attrType(attr model.Attribute) string {
	switch attr.Type.Kind {
	case model.String:
		return "String"
	case model.Boolean:
		return "bool"
	case model.Integer:
		return "i64"
	case model.Float:
		return "f64"
	case model.External:
		return attr.Type.ExternalName
	default:
		return "Uuid"
	}
}
