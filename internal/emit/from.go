package emit

import (
	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// WriteFrom emits the cross-domain conversion glue of §4.7, when Config
// names a source domain: `impl From<&OtherStore> for ObjectStore`, plus
// one `impl From<&OtherModule::Obj> for Obj` per stored object — Hybrid
// and Enum objects delegate through a match over subtype variants, plain
// Struct/External objects project field-by-field.
func WriteFrom(buf *buffer.Buffer, p *Pipeline) error {
	domain, ok := p.Config.FromDomain()
	if !ok {
		return nil
	}
	objs := storedObjects(p)

	tag := "from-store"
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl From<&%s::ObjectStore> for ObjectStore {", domain)
		buf.Emit("    fn from(src: &%s::ObjectStore) -> Self {", domain)
		buf.Emit("        let mut store = Self::new();")
		for _, o := range objs {
			buf.Emit("        for value in src.iter_%s() {", identSnake(o.Name))
			buf.Emit("            store.inter_%s(Self::%s_from(value));", identSnake(o.Name), identSnake(o.Name))
			buf.Emit("        }")
		}
		buf.Emit("        store")
		buf.Emit("    }")
		buf.Emit("}")
	}); err != nil {
		return err
	}

	for _, o := range objs {
		if err := writeFromObject(buf, p, domain, o); err != nil {
			return err
		}
	}
	return nil
}

func writeFromObject(buf *buffer.Buffer, p *Pipeline, domain string, obj model.Object) error {
	tag := regionTag(obj.Name, "from-"+domain)
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl From<&%s::%s> for %s {", domain, obj.Name, obj.Name)
		buf.Emit("    fn from(src: &%s::%s) -> Self {", domain, obj.Name)

		switch p.Class.Classify(obj.ID) {
		case classifier.HybridShape, classifier.EnumShape:
			writeSupertypeFromBody(buf, p, domain, obj)
		default:
			writeStructFromBody(buf, p, domain, obj)
		}

		buf.Emit("    }")
		buf.Emit("}")
	})
}

// writeSupertypeFromBody projects a Hybrid/Enum object by matching over
// the source's subtype variants and recursively converting each payload
// (§4.7: "Supertype objects delegate via a match over subtype variants").
func writeSupertypeFromBody(buf *buffer.Buffer, p *Pipeline, domain string, obj model.Object) {
	isa, ok := p.View.IsaOf(obj.ID)
	if !ok {
		buf.Emit("        unreachable!()")
		return
	}
	buf.Emit("        match src {")
	for _, sub := range sortedByName(p.View, isa.Subtypes) {
		if p.Class.IsSingleton(sub.ID) {
			buf.Emit("            %s::%s::%s(_) => Self::%s(%s),", domain, obj.Name, sub.Name, sub.Name, singletonConstName(sub.Name))
			continue
		}
		buf.Emit("            %s::%s::%s(v) => Self::new_%s(&v.into(), store),", domain, obj.Name, sub.Name, identSnake(sub.Name))
	}
	buf.Emit("        }")
}

// writeStructFromBody projects an object field-by-field: String fields
// clone, other fields copy, and referential/associative attributes (both
// always Uuid) pass through unchanged (§4.7).
func writeStructFromBody(buf *buffer.Buffer, p *Pipeline, domain string, obj model.Object) {
	buf.Emit("        Self {")
	for _, attr := range p.View.Attributes(obj.ID) {
		if attr.Type.Kind == model.String {
			buf.Emit("            %s: src.%s.clone(),", attr.Name, attr.Name)
		} else {
			buf.Emit("            %s: src.%s,", attr.Name, attr.Name)
		}
	}
	for _, r := range p.View.Referrers(obj.ID) {
		buf.Emit("            %s: src.%s,", r.Referrer.RefAttrName, r.Referrer.RefAttrName)
	}
	for _, a := range p.View.AssociativeReferrers(obj.ID) {
		for _, side := range []model.AssocSide{a.One, a.Other} {
			buf.Emit("            %s: src.%s,", side.RefAttrName, side.RefAttrName)
		}
	}
	buf.Emit("        }")
}
