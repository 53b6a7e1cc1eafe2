package emit

import (
	"fmt"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// WriteObject dispatches obj to the writer matching its classified Shape
// (§4.4): Imported objects get a bare re-export use-statement, External
// objects a wrapper newtype plus constructor, and the rest their full
// type/impl emission.
func WriteObject(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	switch p.Class.Classify(obj.ID) {
	case classifier.Imported:
		return writeImportedObject(buf, p, obj)
	case classifier.ExternalShape:
		return writeExternalObject(buf, p, obj)
	case classifier.SingletonShape:
		return WriteSingleton(buf, p, obj)
	case classifier.EnumShape:
		return WriteEnum(buf, p, obj)
	case classifier.HybridShape:
		return WriteHybrid(buf, p, obj)
	default:
		return WriteStruct(buf, p, obj)
	}
}

// writeImportedObject emits the re-export §4.4 reserves for objects
// sourced from another crate: no type definition of our own, just a
// `pub use` forwarding the configured path.
func writeImportedObject(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	from, _ := p.Config.IsImported(obj.ID)
	tag := regionTag(obj.Name, "imported")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("pub use %s::%s;", from, obj.Name)
	})
}

// writeExternalObject emits the External shape: a newtype wrapping the
// configured native Rust type, plus the Woog-built constructor that
// prepends `ext_value` (§4.2 step 6).
func writeExternalObject(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	ext, ok := p.Config.IsExternal(obj.ID)
	if !ok {
		return fmt.Errorf("object %s classified External but has no binding configured", obj.Name)
	}
	if err := writeUseStatements(buf, p, obj); err != nil {
		return err
	}

	tag := regionTag(obj.Name, "external-definition")
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		docLines(buf, obj.Description)
		buf.Emit(deriveLine(p.Config.Derives(obj.ID)))
		buf.Emit("pub struct %s {", obj.Name)
		buf.Emit("    pub id: Uuid,")
		buf.Emit("    pub ext_value: %s,", ext.WrappedType)
		for _, attr := range p.View.Attributes(obj.ID) {
			if attr.Name == "id" {
				continue
			}
			buf.Emit("    pub %s: %s,", attr.Name, attrType(attr))
		}
		writeRelationalFieldDecls(buf, p, obj)
		buf.Emit("}")
	}); err != nil {
		return err
	}

	tag = regionTag(obj.Name, "external-impl")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl %s {", obj.Name)
		for _, ctor := range p.Woog.ConstructorsFor(obj.ID) {
			if err := WriteConstructor(buf, p, obj, ctor, false); err != nil {
				buf.Emit("    /* constructor error: %v */", err)
			}
		}
		if err := WriteNavigators(buf, p, obj); err != nil {
			buf.Emit("    /* navigator error: %v */", err)
		}
		buf.Emit("}")
	})
}

// WriteModule emits every object in the model in sorted order, one file's
// worth of source per object, followed by the shared ObjectStore and, if
// configured, the cross-domain From-glue — the whole-module entry point a
// driver calls once per (Model, Config) pair.
func WriteModule(buf *buffer.Buffer, p *Pipeline) error {
	for _, obj := range p.View.Objects() {
		if err := WriteObject(buf, p, obj); err != nil {
			return fmt.Errorf("emitting object %s: %w", obj.Name, err)
		}
	}
	if err := WriteStore(buf, p); err != nil {
		return fmt.Errorf("emitting object store: %w", err)
	}
	if err := WriteFrom(buf, p); err != nil {
		return fmt.Errorf("emitting cross-domain from-glue: %w", err)
	}
	return nil
}
