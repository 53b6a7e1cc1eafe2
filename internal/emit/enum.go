package emit

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// WriteEnum emits the Enum shape (§4.4.3): a tagged union over the
// subtypes, an `id()` accessor, and one `new_<subtype>` factory per
// subtype — built directly from the Classifier, with no Woog involvement
// (§3.3: "none for Enum").
func WriteEnum(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	isa, ok := p.View.IsaOf(obj.ID)
	if !ok {
		return fmt.Errorf("enum object %s has no Isa edge", obj.Name)
	}
	subtypes := sortedByName(p.View, isa.Subtypes)
	vecMode := p.Config.GetOptimizationLevel() == config.OptVec

	tag := regionTag(obj.Name, "enum-definition")
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("use uuid::Uuid;")
		buf.Emit("")
		docLines(buf, obj.Description)
		buf.Emit(deriveLine(derivesFor(p, obj)))
		buf.Emit("pub enum %s {", obj.Name)
		for _, sub := range subtypes {
			payload := "Uuid"
			if vecMode && !p.Class.IsSingleton(sub.ID) && !p.Class.IsImported(sub.ID) {
				payload = "usize"
			}
			buf.Emit("    %s(%s),", sub.Name, payload)
		}
		buf.Emit("}")
	}); err != nil {
		return err
	}

	tag = regionTag(obj.Name, "enum-impl")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl %s {", obj.Name)
		buf.Emit("    pub fn id(&self) -> Uuid {")
		buf.Emit("        match self {")
		for _, sub := range subtypes {
			if vecMode && !p.Class.IsSingleton(sub.ID) && !p.Class.IsImported(sub.ID) {
				buf.Emit("            Self::%s(idx) => Uuid::from_u128(*idx as u128),", sub.Name)
			} else {
				buf.Emit("            Self::%s(id) => *id,", sub.Name)
			}
		}
		buf.Emit("        }")
		buf.Emit("    }")
		buf.Emit("")

		for _, sub := range subtypes {
			writeEnumFactory(buf, p, obj, sub, vecMode)
		}
		buf.Emit("}")
	})
}

func writeEnumFactory(buf *buffer.Buffer, p *Pipeline, obj, sub model.Object, vecMode bool) {
	fn := "new_" + identSnake(sub.Name)
	buf.Emit("    /// Inter a new `%s` in the store, and return it's `id`.", obj.Name)
	if p.Class.IsSingleton(sub.ID) {
		buf.Emit("    pub fn %s() -> Self {", fn)
		buf.Emit("        Self::%s(%s)", sub.Name, singletonConstName(sub.Name))
		buf.Emit("    }")
		buf.Emit("")
		return
	}

	usizePayload := vecMode && !p.Class.IsImported(sub.ID)
	subID := idAccessExpr(p, sub, "subtype")
	wrapped := p.Store.WrapperType(obj.Name)
	buf.Emit("    pub fn %s(subtype: &%s, store: &mut Store) -> %s {", fn, sub.Name, wrapped)
	if usizePayload {
		buf.Emit("        store.inter_%s(|_id| {", identSnake(obj.Name))
		buf.Emit("            let new = Self::%s((%s).as_u128() as usize);", sub.Name, subID)
		buf.Emit("            %s", p.Store.Wrap("new"))
		buf.Emit("        })")
	} else {
		buf.Emit("        let new = Self::%s(%s);", sub.Name, subID)
		buf.Emit("        store.inter_%s(new)", identSnake(obj.Name))
	}
	buf.Emit("    }")
	buf.Emit("")
}
