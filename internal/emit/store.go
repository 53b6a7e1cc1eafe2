package emit

import (
	"fmt"
	"sort"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// storedObjects returns every object the ObjectStore carries a container
// for: everything except Imported objects (which live in another crate)
// and Singleton objects (which are bare constants, never interned), §4.6.
func storedObjects(p *Pipeline) []model.Object {
	var out []model.Object
	for _, o := range p.View.Objects() {
		switch p.Class.Classify(o.ID) {
		case classifier.Imported, classifier.SingletonShape:
			continue
		default:
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// hasNameIndex reports whether obj carries a `String` attribute literally
// named "name", which earns it a secondary by-name lookup map (§4.6).
func hasNameIndex(p *Pipeline, obj model.Object) bool {
	for _, a := range p.View.Attributes(obj.ID) {
		if a.Name == "name" && a.Type.Kind == model.String {
			return true
		}
	}
	return false
}

// WriteStore emits the single ObjectStore type: its container fields, its
// per-object inter_/exhume_/exorcise_/iter_ methods, singleton-subtype
// seeding in `new()`, and the bincode/directory-of-JSON persistence pair
// (§4.6).
func WriteStore(buf *buffer.Buffer, p *Pipeline) error {
	objs := storedObjects(p)
	vecMode := p.Config.GetOptimizationLevel() == config.OptVec
	timestamped := p.Config.PersistTimestamps()

	tag := "store-imports"
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("use std::collections::HashMap;")
		buf.Emit("use std::fs;")
		buf.Emit("use std::path::Path;")
		buf.Emit("use uuid::Uuid;")
		for _, line := range p.Store.ImportBlock() {
			buf.Emit(line)
		}
		if timestamped {
			buf.Emit("use std::time::SystemTime;")
		}
		buf.Emit("")
		for _, o := range objs {
			buf.Emit("use crate::types::%s::%s;", identSnake(o.Name), o.Name)
		}
	}); err != nil {
		return err
	}

	tag = "store-definition"
	if err := buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("#[derive(Debug, Default)]")
		buf.Emit("pub struct ObjectStore {")
		for _, o := range objs {
			buf.Emit("    %s,", containerField(p, o, vecMode, timestamped))
			if hasNameIndex(p, o) {
				buf.Emit("    %s_by_name: HashMap<String, Uuid>,", identSnake(o.Name))
			}
			if vecMode {
				buf.Emit("    %s_free_list: Vec<usize>,", identSnake(o.Name))
			}
		}
		buf.Emit("}")
	}); err != nil {
		return err
	}

	tag = "store-impl"
	return buf.Block(buffer.IgnoreOriginal, tag, func(buf *buffer.Buffer) {
		buf.Emit("impl ObjectStore {")
		writeStoreNew(buf, p, objs)
		for _, o := range objs {
			writeStoreAccessors(buf, p, o, vecMode, timestamped)
		}
		writeStorePersistence(buf, p, objs, vecMode, timestamped)
		buf.Emit("}")
	})
}

func containerField(p *Pipeline, o model.Object, vecMode, timestamped bool) string {
	elem := p.Store.WrapperType(o.Name)
	if timestamped {
		elem = fmt.Sprintf("(%s, SystemTime)", elem)
	}
	name := identSnake(o.Name)
	if vecMode {
		return fmt.Sprintf("%s: Vec<Option<%s>>", name, elem)
	}
	return fmt.Sprintf("%s: HashMap<Uuid, %s>", name, elem)
}

// writeStoreNew emits `new()`, which recursively interns every singleton
// leaf reachable from a supertype's subtype graph — since a subtype may
// itself be a supertype, walking must recurse (§4.6 "Singleton subtype
// initialization").
func writeStoreNew(buf *buffer.Buffer, p *Pipeline, objs []model.Object) {
	vecMode := p.Config.GetOptimizationLevel() == config.OptVec
	buf.Emit("    pub fn new() -> Self {")
	buf.Emit("        let mut store = Self::default();")
	for _, o := range objs {
		if p.Class.IsSupertype(o.ID) {
			writeSingletonSeeds(buf, p, o, o, vecMode)
		}
	}
	buf.Emit("        store")
	buf.Emit("    }")
	buf.Emit("")
}

// writeSingletonSeeds walks cur's own Isa edge — cur starts as top but may
// recurse into a supertype nested arbitrarily far down top's subtype graph
// — emitting one inter_<top> call per singleton leaf found, in
// alphabetical subtype order at every level (§4.6, S5). A leaf several
// levels down nests one variant constructor per intermediate supertype
// (`Top::Mid(Mid::Leaf(LEAF))`), since each level is its own enum type and
// Rust has no single path that reaches across them.
func writeSingletonSeeds(buf *buffer.Buffer, p *Pipeline, top, cur model.Object, vecMode bool) {
	isa, ok := p.View.IsaOf(cur.ID)
	if !ok {
		return
	}
	for _, sub := range sortedByName(p.View, isa.Subtypes) {
		if p.Class.IsSingleton(sub.ID) {
			variant := nestedVariantExpr(p, top, cur, sub)
			if vecMode {
				buf.Emit("        store.inter_%s(|_id| %s);", identSnake(top.Name), p.Store.Wrap(variant))
			} else {
				buf.Emit("        store.inter_%s(%s);", identSnake(top.Name), variant)
			}
			continue
		}
		writeSingletonSeeds(buf, p, top, sub, vecMode)
	}
}

// nestedVariantExpr builds the expression that constructs leaf's singleton
// constant wrapped in one variant call per Isa level between parent and
// top, walking the chain back up via SupertypeOf.
func nestedVariantExpr(p *Pipeline, top, parent, leaf model.Object) string {
	expr := fmt.Sprintf("%s::%s(%s)", parent.Name, leaf.Name, singletonConstName(leaf.Name))
	cur := parent
	for cur.ID != top.ID {
		isa, ok := p.View.SupertypeOf(cur.ID)
		if !ok {
			break
		}
		super, ok := p.View.Object(isa.Supertype)
		if !ok {
			break
		}
		expr = fmt.Sprintf("%s::%s(%s)", super.Name, cur.Name, expr)
		cur = super
	}
	return expr
}

// writeStoreAccessors emits one object's full inter_/exhume_/exorcise_/
// iter_ surface. Two axes vary the shape: vecMode (§4.6 "Vec mode") swaps
// the HashMap<Uuid, T> container for a Vec<Option<T>> plus a recycled
// free-list, keying accessors by `usize` position instead of `Uuid`, and
// making `inter_` a closure-driven, value-equality-deduping allocator
// (grounded on the upstream Vec-domain `inter_a`/`exhume_a`/`exorcise_a`
// triad); the UberStore Strategy (possibly Single, a no-op) decides
// whether the stored element itself is lock-wrapped, and inter_ must
// construct that wrapper rather than assume the caller already built it.
func writeStoreAccessors(buf *buffer.Buffer, p *Pipeline, o model.Object, vecMode, timestamped bool) {
	name := identSnake(o.Name)
	wrapped := p.Store.WrapperType(o.Name)
	asyncKw, awaitSuffix := "", ""
	if p.Store.IsAsync() {
		asyncKw, awaitSuffix = "async ", ".await"
	}

	if vecMode {
		buf.Emit("    pub fn inter_%s<F>(&mut self, %s: F) -> %s", name, name, wrapped)
		buf.Emit("    where")
		buf.Emit("        F: Fn(usize) -> %s,", wrapped)
		buf.Emit("    {")
		buf.Emit("        let _index = if let Some(_index) = self.%s_free_list.pop() {", name)
		buf.Emit("            _index")
		buf.Emit("        } else {")
		buf.Emit("            let _index = self.%s.len();", name)
		buf.Emit("            self.%s.push(None);", name)
		buf.Emit("            _index")
		buf.Emit("        };")
		buf.Emit("")
		buf.Emit("        let %s = %s(_index);", name, name)
		buf.Emit("")
		storedCmp, valueCmp := "*stored", name
		if wrapped != o.Name {
			storedCmp = "*" + p.Store.LockRead("stored")
			valueCmp = "*" + p.Store.LockRead(name)
		}
		buf.Emit("        let found = self.%s.iter().find(|stored| {", name)
		buf.Emit("            if let Some(stored) = stored {")
		buf.Emit("                %s == %s", storedCmp, valueCmp)
		buf.Emit("            } else {")
		buf.Emit("                false")
		buf.Emit("            }")
		buf.Emit("        });")
		buf.Emit("")
		buf.Emit("        if let Some(Some(found)) = found {")
		buf.Emit("            self.%s_free_list.push(_index);", name)
		buf.Emit("            let found = found.clone();")
		if hasNameIndex(p, o) {
			buf.Emit("            self.%s_by_name.insert(%s.clone(), _index);", name, p.Store.LockRead("found")+".name")
		}
		buf.Emit("            found")
		buf.Emit("        } else {")
		buf.Emit("            self.%s[_index] = Some(%s.clone());", name, name)
		if hasNameIndex(p, o) {
			buf.Emit("            self.%s_by_name.insert(%s.clone(), _index);", name, p.Store.LockRead(name)+".name")
		}
		buf.Emit("            %s", name)
		buf.Emit("        }")
		buf.Emit("    }")
		buf.Emit("")

		buf.Emit("    pub fn exhume_%s(&self, id: &usize) -> Option<%s> {", name, wrapped)
		buf.Emit("        match self.%s.get(*id) {", name)
		buf.Emit("            Some(%s) => %s.clone(),", name, name)
		buf.Emit("            None => None,")
		buf.Emit("        }")
		buf.Emit("    }")
		buf.Emit("")

		buf.Emit("    pub fn exhume_%s_mut(&mut self, id: &usize) -> Option<&mut %s> {", name, wrapped)
		buf.Emit("        self.%s.get_mut(*id).and_then(|%s| %s.as_mut())", name, name, name)
		buf.Emit("    }")
		buf.Emit("")

		buf.Emit("    pub fn exorcise_%s(&mut self, id: &usize) -> Option<%s> {", name, wrapped)
		buf.Emit("        let result = self.%s[*id].take();", name)
		buf.Emit("        self.%s_free_list.push(*id);", name)
		buf.Emit("        result")
		buf.Emit("    }")
		buf.Emit("")

		buf.Emit("    pub fn iter_%s(&self) -> impl Iterator<Item = %s> + '_ {", name, wrapped)
		buf.Emit("        self.%s.iter().filter_map(|stored| stored.clone())", name)
		buf.Emit("    }")
		buf.Emit("")

		if hasNameIndex(p, o) {
			buf.Emit("    pub fn exhume_%s_by_name(&self, name: &str) -> Option<%s> {", name, wrapped)
			buf.Emit("        self.%s_by_name.get(name).and_then(|id| self.exhume_%s(id))", name, name)
			buf.Emit("    }")
			buf.Emit("")
		}
		return
	}

	buf.Emit("    pub %sfn inter_%s(&mut self, %s: %s) -> %s {", asyncKw, name, name, o.Name, wrapped)
	buf.Emit("        let id = %s.id;", name)
	if hasNameIndex(p, o) {
		buf.Emit("        self.%s_by_name.insert(%s.name.clone(), id);", name, name)
	}
	buf.Emit("        let %s = %s;", name, p.Store.Wrap(name))
	if timestamped {
		buf.Emit("        let %s = (%s, SystemTime::now());", name, name)
	}
	buf.Emit("        self.%s.insert(id, %s);", name, name)
	buf.Emit("        self.exhume_%s(&id)%s.unwrap()", name, awaitSuffix)
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub %sfn exhume_%s(&self, id: &Uuid) -> Option<%s> {", asyncKw, name, wrapped)
	buf.Emit("        self.%s.get(id).cloned()", name)
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub %sfn exhume_%s_mut(&mut self, id: &Uuid) -> Option<&mut %s> {", asyncKw, name, wrapped)
	buf.Emit("        self.%s.get_mut(id)", name)
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub %sfn exorcise_%s(&mut self, id: &Uuid) -> Option<%s> {", asyncKw, name, wrapped)
	buf.Emit("        self.%s.remove(id)", name)
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub fn iter_%s(&self) -> impl Iterator<Item = %s> + '_ {", name, wrapped)
	buf.Emit("        self.%s.values().cloned()", name)
	buf.Emit("    }")
	buf.Emit("")

	if hasNameIndex(p, o) {
		buf.Emit("    pub %sfn exhume_%s_by_name(&self, name: &str) -> Option<%s> {", asyncKw, name, wrapped)
		buf.Emit("        self.%s_by_name.get(name).and_then(|id| self.exhume_%s(id))", name, name)
		buf.Emit("    }")
		buf.Emit("")
	}

	if timestamped {
		buf.Emit("    pub fn %s_timestamp(&self, id: &Uuid) -> Option<SystemTime> {", name)
		buf.Emit("        self.%s.get(id).map(|(_, ts)| *ts)", name)
		buf.Emit("    }")
		buf.Emit("")
	}
}

// writeStorePersistence emits the bincode whole-store pair and the
// directory-of-JSON pair; when timestamps are persisted the JSON writer
// only rewrites an instance whose on-disk copy differs from memory
// (otherwise it rewrites every instance), and it always removes files for
// ids no longer present (§4.6).
func writeStorePersistence(buf *buffer.Buffer, p *Pipeline, objs []model.Object, vecMode, timestamped bool) {
	buf.Emit("    pub fn persist_bincode<P: AsRef<Path>>(&self, path: P) -> std::io::Result<()> {")
	buf.Emit("        let encoded = bincode::serialize(self).unwrap();")
	buf.Emit("        fs::write(path, encoded)")
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub fn load_bincode<P: AsRef<Path>>(path: P) -> std::io::Result<Self> {")
	buf.Emit("        let bytes = fs::read(path)?;")
	buf.Emit("        Ok(bincode::deserialize(&bytes).unwrap())")
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub fn persist<P: AsRef<Path>>(&self, dir: P) -> std::io::Result<()> {")
	buf.Emit("        let dir = dir.as_ref();")
	for _, o := range objs {
		name := identSnake(o.Name)
		buf.Emit("        let %s_dir = dir.join(%q);", name, name)
		buf.Emit("        fs::create_dir_all(&%s_dir)?;", name)
		buf.Emit("        let mut live = std::collections::HashSet::new();")
		buf.Emit("        for value in self.iter_%s() {", name)
		buf.Emit("            let id = %s;", idAccessExpr(p, o, p.Store.LockRead("value")))
		buf.Emit("            live.insert(id);")
		buf.Emit("            let file = %s_dir.join(format!(\"{}.json\", id));", name)
		if timestamped {
			buf.Emit("            let on_disk = fs::read_to_string(&file).ok().and_then(|s| serde_json::from_str::<%s>(&s).ok());", o.Name)
			buf.Emit("            if on_disk.as_ref() != Some(&value) {")
			buf.Emit("                fs::write(&file, serde_json::to_string_pretty(&value).unwrap())?;")
			buf.Emit("            }")
		} else {
			buf.Emit("            fs::write(&file, serde_json::to_string_pretty(&value).unwrap())?;")
		}
		buf.Emit("        }")
		buf.Emit("        if let Ok(entries) = fs::read_dir(&%s_dir) {", name)
		buf.Emit("            for entry in entries.flatten() {")
		buf.Emit("                let stem = entry.path().file_stem().unwrap().to_string_lossy().to_string();")
		buf.Emit("                if let Ok(id) = stem.parse::<Uuid>() {")
		buf.Emit("                    if !live.contains(&id) {")
		buf.Emit("                        let _ = fs::remove_file(entry.path());")
		buf.Emit("                    }")
		buf.Emit("                }")
		buf.Emit("            }")
		buf.Emit("        }")
	}
	buf.Emit("        Ok(())")
	buf.Emit("    }")
	buf.Emit("")

	buf.Emit("    pub fn load<P: AsRef<Path>>(dir: P) -> std::io::Result<Self> {")
	buf.Emit("        let dir = dir.as_ref();")
	buf.Emit("        let mut store = Self::default();")
	for _, o := range objs {
		name := identSnake(o.Name)
		buf.Emit("        let %s_dir = dir.join(%q);", name, name)
		buf.Emit("        if let Ok(entries) = fs::read_dir(&%s_dir) {", name)
		buf.Emit("            for entry in entries.flatten() {")
		buf.Emit("                if let Ok(text) = fs::read_to_string(entry.path()) {")
		buf.Emit("                    if let Ok(value) = serde_json::from_str::<%s>(&text) {", o.Name)
		if vecMode {
			buf.Emit("                        store.inter_%s(|_id| %s);", name, p.Store.Wrap("value"))
		} else {
			buf.Emit("                        store.inter_%s(value);", name)
		}
		buf.Emit("                    }")
		buf.Emit("                }")
		buf.Emit("            }")
		buf.Emit("        }")
	}
	buf.Emit("        Ok(store)")
	buf.Emit("    }")
}
