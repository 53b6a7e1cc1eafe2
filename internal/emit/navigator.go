package emit

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// WriteNavigators emits one navigation method per relationship obj
// participates in (§4.5): forward across a Referrer's foreign id,
// backward across a Referent's incoming Referrers, both sides of an
// Associative Relationship, and — when obj is a Subtype — the
// supertype-lookup method. Each method's return type is wrapped in the
// Pipeline's UberStore Strategy when the strategy isn't Single.
func WriteNavigators(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	for _, r := range p.View.Referrers(obj.ID) {
		writeForwardNavigator(buf, p, obj, r)
	}
	for _, r := range p.View.Referents(obj.ID) {
		writeBackwardNavigator(buf, p, obj, r)
	}
	for _, a := range p.View.AssociativeReferrers(obj.ID) {
		writeAssociativeNavigator(buf, p, obj, a.One)
		writeAssociativeNavigator(buf, p, obj, a.Other)
	}
	if isa, ok := p.View.SupertypeOf(obj.ID); ok {
		writeSupertypeNavigator(buf, p, obj, isa)
	}
	return nil
}

// writeForwardNavigator is the forward accessor for a Referrer's own
// foreign id: `r_<n>_<target>(&self, store) -> Vec<Reference(Target)>`
// (empty when the conditional side's id is unset), §4.5 row
// "forward-1"/"forward-1c" and the §8 S2 example.
func writeForwardNavigator(buf *buffer.Buffer, p *Pipeline, obj model.Object, r model.BinaryRelationship) {
	target, ok := p.View.Object(r.Referent.Object)
	if !ok {
		return
	}
	fnName := fmt.Sprintf("r_%d_%s", r.ID, identSnake(target.Name))
	retType := p.Store.WrapperType(target.Name)
	tag := regionTag(obj.Name, fnName)
	_ = buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		if r.Referent.Conditionality == model.Conditional {
			buf.Emit("    /// Navigate to [`%s`] across R%d(1c), if any.", target.Name, r.ID)
			buf.Emit("    pub fn %s(&self, store: &Store) -> Vec<%s> {", fnName, retType)
			buf.Emit("        match self.%s {", r.Referrer.RefAttrName)
			buf.Emit("            Some(id) => vec![store.exhume_%s(&id).unwrap()],", identSnake(target.Name))
			buf.Emit("            None => Vec::new(),")
			buf.Emit("        }")
			buf.Emit("    }")
		} else {
			buf.Emit("    /// Navigate to [`%s`] across R%d(1).", target.Name, r.ID)
			buf.Emit("    pub fn %s(&self, store: &Store) -> Vec<%s> {", fnName, retType)
			buf.Emit("        vec![store.exhume_%s(&self.%s).unwrap()]", identSnake(target.Name), r.Referrer.RefAttrName)
			buf.Emit("    }")
		}
	})
}

// writeBackwardNavigator is the navigation method from a Referent back to
// its Referrers: every form filters the Referrer's store by its foreign id
// and collects into a `Vec`, labelled 1-M when the Referrer side is Many
// and 1-1 otherwise; a conditional foreign id is compared as
// `Some(<self id>)` (§4.5 rows "backward-1-1", "backward-1-1c",
// "backward-1c-1c", "backward-1-M", "backward-1-Mc").
func writeBackwardNavigator(buf *buffer.Buffer, p *Pipeline, obj model.Object, r model.BinaryRelationship) {
	source, ok := p.View.Object(r.Referrer.Object)
	if !ok {
		return
	}
	wrapped := p.Store.WrapperType(source.Name)
	selfID := idAccessExpr(p, obj, "self")
	if r.Referent.Conditionality == model.Conditional {
		selfID = "Some(" + selfID + ")"
	}
	tag := regionTag(obj.Name, fmt.Sprintf("r_%d_%s_c", r.ID, identSnake(source.Name)))
	_ = buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		if r.Referrer.Cardinality == model.Many {
			fnName := fmt.Sprintf("r_%d_%s", r.ID, identSnake(source.Name))
			buf.Emit("    /// Navigate to [`%s`] across R%d(1-M).", source.Name, r.ID)
			buf.Emit("    pub fn %s(&self, store: &Store) -> Vec<%s> {", fnName, wrapped)
			buf.Emit("        store")
			buf.Emit("            .iter_%s()", identSnake(source.Name))
			buf.Emit("            .filter(|x| x.%s == %s)", r.Referrer.RefAttrName, selfID)
			buf.Emit("            .collect()")
			buf.Emit("    }")
			return
		}

		fnName := fmt.Sprintf("r_%d_%s", r.ID, identSnake(source.Name))
		buf.Emit("    /// Navigate to [`%s`] across R%d(1-1).", source.Name, r.ID)
		buf.Emit("    pub fn %s(&self, store: &Store) -> Vec<%s> {", fnName, wrapped)
		buf.Emit("        store")
		buf.Emit("            .iter_%s()", identSnake(source.Name))
		buf.Emit("            .filter(|x| x.%s == %s)", r.Referrer.RefAttrName, selfID)
		buf.Emit("            .collect()")
		buf.Emit("    }")
	})
}

// writeAssociativeNavigator emits the navigation method for one side of an
// Associative Relationship obj participates in as Referrer (§4.5 row
// "associative"): `r_a_<side>(&self, store) -> Vec<Reference(Side)>`.
func writeAssociativeNavigator(buf *buffer.Buffer, p *Pipeline, obj model.Object, side model.AssocSide) {
	target, ok := p.View.Object(side.Object)
	if !ok {
		return
	}
	fnName := "r_a_" + identSnake(target.Name)
	retType := p.Store.WrapperType(target.Name)
	tag := regionTag(obj.Name, fnName)
	_ = buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("    /// Navigate to [`%s`] across an associative relationship.", target.Name)
		buf.Emit("    pub fn %s(&self, store: &Store) -> Vec<%s> {", fnName, retType)
		buf.Emit("        vec![store.exhume_%s(&self.%s).unwrap()]", identSnake(target.Name), side.RefAttrName)
		buf.Emit("    }")
	})
}

// writeSupertypeNavigator emits the method a Subtype uses to reach its own
// enum wrapper in the supertype's store (§4.5 row "subtype-to-supertype").
func writeSupertypeNavigator(buf *buffer.Buffer, p *Pipeline, obj model.Object, isa model.Isa) {
	super, ok := p.View.Object(isa.Supertype)
	if !ok {
		return
	}
	fnName := "r_isa_" + identSnake(super.Name)
	retType := p.Store.WrapperType(super.Name)
	superID := idAccessExpr(p, super, "x")
	selfID := idAccessExpr(p, obj, "self")
	tag := regionTag(obj.Name, fnName)
	_ = buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("    /// Navigate to [`%s`] across the supertype relationship.", super.Name)
		buf.Emit("    pub fn %s(&self, store: &Store) -> Vec<%s> {", fnName, retType)
		buf.Emit("        vec![store")
		buf.Emit("            .iter_%s()", identSnake(super.Name))
		buf.Emit("            .find(|x| %s == %s)", superID, selfID)
		buf.Emit("            .unwrap()]")
		buf.Emit("    }")
	})
}
