package emit

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// WriteHybrid emits the Hybrid shape (§4.4.4): an outer struct carrying
// the hybrid's own attributes/relationships plus a `subtype` field typed
// as a sibling `<Name>Enum`, that enum itself, and one `new_<subtype>`
// constructor per subtype built from the hybrid's own Constructor
// Descriptor (§9: "Hybrid diverges from Enum only in that its own data
// still needs a home").
func WriteHybrid(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	if err := writeUseStatements(buf, p, obj); err != nil {
		return err
	}

	isa, ok := p.View.IsaOf(obj.ID)
	if !ok {
		return fmt.Errorf("hybrid object %s has no Isa edge", obj.Name)
	}
	subtypes := sortedByName(p.View, isa.Subtypes)
	enumName := obj.Name + "Enum"
	vecMode := p.Config.GetOptimizationLevel() == config.OptVec

	tag := regionTag(obj.Name, "hybrid-enum")
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		enumDerives := []string{"Debug", "Clone"}
		if vecMode {
			enumDerives = append(enumDerives, "PartialEq")
		}
		buf.Emit(deriveLine(enumDerives))
		buf.Emit("pub enum %s {", enumName)
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

	tag = regionTag(obj.Name, "hybrid-struct")
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		docLines(buf, obj.Description)
		buf.Emit(deriveLine(derivesFor(p, obj)))
		buf.Emit("pub struct %s {", obj.Name)
		buf.Emit("    pub subtype: %s,", enumName)
		for _, attr := range p.View.Attributes(obj.ID) {
			buf.Emit("    pub %s: %s,", attr.Name, attrType(attr))
		}
		writeRelationalFieldDecls(buf, p, obj)
		buf.Emit("}")
	}); err != nil {
		return err
	}

	tag = regionTag(obj.Name, "hybrid-impl")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl %s {", obj.Name)
		for _, ctor := range p.Woog.ConstructorsFor(obj.ID) {
			if err := WriteConstructor(buf, p, obj, ctor, vecMode); err != nil {
				buf.Emit("    /* constructor error: %v */", err)
			}
		}
		if err := WriteNavigators(buf, p, obj); err != nil {
			buf.Emit("    /* navigator error: %v */", err)
		}
		buf.Emit("}")
	})
}
