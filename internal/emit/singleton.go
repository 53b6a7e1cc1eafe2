package emit

import (
	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/model"
	"github.com/uberFoo/grace-sub001/internal/woog"
)

// WriteSingleton emits the Singleton shape (§4.4.5): a single fixed Uuid
// constant, derived the same way Build derives every other synthetic id,
// so that the constant is stable across runs without the generator having
// to persist it anywhere.
func WriteSingleton(buf *buffer.Buffer, p *Pipeline, obj model.Object) error {
	tag := regionTag(obj.Name, "singleton-definition")
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("use uuid::{uuid, Uuid};")
		buf.Emit("")
		docLines(buf, obj.Description)
		buf.Emit("pub const %s: Uuid = uuid!(\"%s\");", singletonConstName(obj.Name), woog.SingletonUUID(obj.ID))
	})
}
