package emit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// TestS3ConditionalReferrerToEnumWrapsNavigatorInVec mirrors spec.md S3: a
// Widget holds an optional foreign id into an Enum supertype (TokenKind).
// The forward navigator must still return a Vec, empty on the None arm,
// and the enum itself keeps its plain Uuid-keyed variants since this
// fixture never turns on Vec-mode.
func TestS3ConditionalReferrerToEnumWrapsNavigatorInVec(t *testing.T) {
	kind, a, b, widget := tid(1), tid(2), tid(3), tid(4)
	isas := []model.Isa{{ID: 1, Supertype: kind, Subtypes: []uuid.UUID{a, b}}}
	binaries := []model.BinaryRelationship{{
		ID: 1,
		Referrer: model.BinarySide{
			Object: widget, RefAttrName: "kind",
			Cardinality: model.One, Conditionality: model.Conditional,
		},
		Referent: model.BinarySide{Object: kind, Cardinality: model.One},
	}}
	view := model.NewInMemory(
		[]model.Object{
			{ID: kind, Name: "TokenKind"}, {ID: a, Name: "A"}, {ID: b, Name: "B"},
			{ID: widget, Name: "Widget"},
		},
		[]model.Attribute{
			{Owner: kind, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: a, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: b, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: widget, Name: "id", Type: model.Type{Kind: model.Uuid}},
		},
		binaries, nil, isas,
	)
	cfg := domainCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteEnum(buf, p, model.Object{ID: kind, Name: "TokenKind"}))
	require.NoError(t, WriteStruct(buf, p, model.Object{ID: widget, Name: "Widget"}))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "A(Uuid)")
	assert.Contains(t, out, "pub fn r_1_token_kind(&self, store: &Store) -> Vec<TokenKind> {")
	assert.Contains(t, out, "Some(id) => vec![store.exhume_token_kind(&id).unwrap()],")
	assert.Contains(t, out, "None => Vec::new(),")
}

// TestS4HybridTwoSubtypesEmitsSiblingEnumAndBothFactories mirrors spec.md
// S4: a Shape supertype carrying its own attribute (area) classifies as
// Hybrid, with a sibling ShapeEnum over its two Struct subtypes and one
// new_<subtype> constructor apiece.
func TestS4HybridTwoSubtypesEmitsSiblingEnumAndBothFactories(t *testing.T) {
	shape, circle, square := tid(1), tid(2), tid(3)
	isas := []model.Isa{{ID: 1, Supertype: shape, Subtypes: []uuid.UUID{circle, square}}}
	view := model.NewInMemory(
		[]model.Object{{ID: shape, Name: "Shape"}, {ID: circle, Name: "Circle"}, {ID: square, Name: "Square"}},
		[]model.Attribute{
			{Owner: shape, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: shape, Name: "area", Type: model.Type{Kind: model.Float}},
			{Owner: circle, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: circle, Name: "radius", Type: model.Type{Kind: model.Float}},
			{Owner: square, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: square, Name: "side", Type: model.Type{Kind: model.Float}},
		},
		nil, nil, isas,
	)
	cfg := domainCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteHybrid(buf, p, model.Object{ID: shape, Name: "Shape"}))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "pub enum ShapeEnum {")
	assert.Contains(t, out, "Circle(Uuid)")
	assert.Contains(t, out, "Square(Uuid)")
	assert.Contains(t, out, "pub struct Shape {")
	assert.Contains(t, out, "pub subtype: ShapeEnum,")
	assert.Contains(t, out, "pub area: f64,")
	assert.Contains(t, out, "pub fn new_circle(")
	assert.Contains(t, out, "pub fn new_square(")
}

// TestS5RecursiveSingletonSeedingNestsVariantConstructors mirrors spec.md
// S5: Top's subtypes are the singleton Leaf1 and the supertype Mid, whose
// own subtypes are singletons Leaf2 and Leaf3. new() must seed all three,
// alphabetically at every level, nesting Mid's own enum inside Top's.
func TestS5RecursiveSingletonSeedingNestsVariantConstructors(t *testing.T) {
	top, mid, leaf1, leaf2, leaf3 := tid(1), tid(2), tid(3), tid(4), tid(5)
	isas := []model.Isa{
		{ID: 1, Supertype: top, Subtypes: []uuid.UUID{leaf1, mid}},
		{ID: 2, Supertype: mid, Subtypes: []uuid.UUID{leaf2, leaf3}},
	}
	view := model.NewInMemory(
		[]model.Object{
			{ID: top, Name: "Top"}, {ID: mid, Name: "Mid"},
			{ID: leaf1, Name: "Leaf1"}, {ID: leaf2, Name: "Leaf2"}, {ID: leaf3, Name: "Leaf3"},
		},
		[]model.Attribute{
			{Owner: top, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: mid, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: leaf1, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: leaf2, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: leaf3, Name: "id", Type: model.Type{Kind: model.Uuid}},
		},
		nil, nil, isas,
	)
	cfg := domainCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteStore(buf, p))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "store.inter_top(Top::Leaf1(LEAF1));")
	assert.Contains(t, out, "store.inter_top(Top::Mid(Mid::Leaf2(LEAF2)));")
	assert.Contains(t, out, "store.inter_top(Top::Mid(Mid::Leaf3(LEAF3)));")

	leaf1Idx := indexOf(out, "Top::Leaf1(LEAF1)")
	midIdx := indexOf(out, "Top::Mid(Mid::Leaf2(LEAF2))")
	require.GreaterOrEqual(t, leaf1Idx, 0)
	require.GreaterOrEqual(t, midIdx, 0)
	assert.Less(t, leaf1Idx, midIdx, "Leaf1 sorts before Mid at the top level")
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// TestS6AssociativeNavigatorReturnsVecOfBothSides mirrors spec.md S6: an
// Ownership associative object links Owner and Item, and each side's
// navigator wraps its single exhumed target in a Vec.
func TestS6AssociativeNavigatorReturnsVecOfBothSides(t *testing.T) {
	ownership, owner, item := tid(1), tid(2), tid(3)
	assocs := []model.AssociativeRelationship{{
		ID:       1,
		Referrer: ownership,
		One:      model.AssocSide{Object: owner, RefAttrName: "owner", Cardinality: model.One},
		Other:    model.AssocSide{Object: item, RefAttrName: "item", Cardinality: model.One},
	}}
	view := model.NewInMemory(
		[]model.Object{
			{ID: ownership, Name: "Ownership"}, {ID: owner, Name: "Owner"}, {ID: item, Name: "Item"},
		},
		[]model.Attribute{
			{Owner: ownership, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: ownership, Name: "owner", Type: model.Type{Kind: model.Uuid}},
			{Owner: ownership, Name: "item", Type: model.Type{Kind: model.Uuid}},
			{Owner: owner, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: item, Name: "id", Type: model.Type{Kind: model.Uuid}},
		},
		nil, assocs, nil,
	)
	cfg := domainCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteStruct(buf, p, model.Object{ID: ownership, Name: "Ownership"}))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "pub fn r_a_owner(&self, store: &Store) -> Vec<Owner> {")
	assert.Contains(t, out, "vec![store.exhume_owner(&self.owner).unwrap()]")
	assert.Contains(t, out, "pub fn r_a_item(&self, store: &Store) -> Vec<Item> {")
	assert.Contains(t, out, "vec![store.exhume_item(&self.item).unwrap()]")
}

// vecModeCfg builds a Config with optimization_level: vec, the selector
// the Object Store Writer reads to swap in the Vec<Option<T>>/free-list
// storage strategy (§4.6).
func vecModeCfg(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("target:\n  kind: domain\n  module: sarzak\noptimization_level: vec\n"))
	require.NoError(t, err)
	return cfg
}

// stdRwLockCfg builds a Config selecting the std::sync::RwLock UberStore
// strategy, so the Object Store Writer wraps every container element in
// Arc<RwLock<T>> and locks through it on every accessor (§5).
func stdRwLockCfg(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("target:\n  kind: domain\n  module: sarzak\nuber_store: std_rwlock\n"))
	require.NoError(t, err)
	return cfg
}

// TestVecModeStoreDedupsAndRecyclesSlots exercises the Vec-optimization
// Object Store end to end: inter_ takes a closure keyed by the allocated
// usize slot, exhume_/exorcise_ index by usize rather than Uuid, and the
// dedup scan compares stored values by equality before handing back a
// fresh slot.
func TestVecModeStoreDedupsAndRecyclesSlots(t *testing.T) {
	point := tid(1)
	view := model.NewInMemory(
		[]model.Object{{ID: point, Name: "Point"}},
		[]model.Attribute{
			{Owner: point, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: point, Name: "x", Type: model.Type{Kind: model.Integer}},
		},
		nil, nil, nil,
	)
	cfg := vecModeCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteStruct(buf, p, model.Object{ID: point, Name: "Point"}))
	require.NoError(t, WriteStore(buf, p))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "point: Vec<Option<Point>>")
	assert.Contains(t, out, "point_free_list: Vec<usize>,")
	assert.Contains(t, out, "pub fn inter_point<F>(&mut self, point: F) -> Point")
	assert.Contains(t, out, "F: Fn(usize) -> Point,")
	assert.Contains(t, out, "self.point_free_list.push(_index);")
	assert.Contains(t, out, "pub fn exhume_point(&self, id: &usize) -> Option<Point> {")
	assert.Contains(t, out, "pub fn exorcise_point(&mut self, id: &usize) -> Option<Point> {")
	assert.Contains(t, out, "#[derive(Debug, Clone, PartialEq)]")
	assert.Contains(t, out, "store.inter_point(|_id| {")
	assert.Contains(t, out, "let id = Uuid::new_v4();")
}

// TestVecModeEnumEncodesNonSingletonPayloadAsUsizeRoundTrip exercises the
// Enum shape under Vec mode: a non-singleton, non-imported subtype's
// variant payload becomes usize, id() reconstructs a Uuid from it via the
// same as_u128/from_u128 pair the factory used to build it, and the
// factory's inter_ call is closure-driven like every other Vec-mode
// intern.
func TestVecModeEnumEncodesNonSingletonPayloadAsUsizeRoundTrip(t *testing.T) {
	kind, a, b := tid(1), tid(2), tid(3)
	isas := []model.Isa{{ID: 1, Supertype: kind, Subtypes: []uuid.UUID{a, b}}}
	view := model.NewInMemory(
		[]model.Object{{ID: kind, Name: "TokenKind"}, {ID: a, Name: "A"}, {ID: b, Name: "B"}},
		[]model.Attribute{
			{Owner: kind, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: a, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: a, Name: "label", Type: model.Type{Kind: model.String}},
			{Owner: b, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: b, Name: "label", Type: model.Type{Kind: model.String}},
		},
		nil, nil, isas,
	)
	cfg := vecModeCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteEnum(buf, p, model.Object{ID: kind, Name: "TokenKind"}))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "A(usize)")
	assert.Contains(t, out, "B(usize)")
	assert.Contains(t, out, "Self::A(idx) => Uuid::from_u128(*idx as u128),")
	assert.Contains(t, out, "Self::B(idx) => Uuid::from_u128(*idx as u128),")
	assert.Contains(t, out, "pub fn new_a(subtype: &A, store: &mut Store) -> TokenKind {")
	assert.Contains(t, out, "store.inter_token_kind(|_id| {")
	assert.Contains(t, out, "let new = Self::A((subtype.id).as_u128() as usize);")
}

// TestVecModeHybridSiblingEnumUsesUsizePayload checks that the Hybrid
// shape's sibling enum honors Vec mode the same way the pure Enum shape
// does, rather than hardcoding Uuid regardless of optimization level.
func TestVecModeHybridSiblingEnumUsesUsizePayload(t *testing.T) {
	shape, circle, square := tid(1), tid(2), tid(3)
	isas := []model.Isa{{ID: 1, Supertype: shape, Subtypes: []uuid.UUID{circle, square}}}
	view := model.NewInMemory(
		[]model.Object{{ID: shape, Name: "Shape"}, {ID: circle, Name: "Circle"}, {ID: square, Name: "Square"}},
		[]model.Attribute{
			{Owner: shape, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: shape, Name: "area", Type: model.Type{Kind: model.Float}},
			{Owner: circle, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: circle, Name: "radius", Type: model.Type{Kind: model.Float}},
			{Owner: square, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: square, Name: "side", Type: model.Type{Kind: model.Float}},
		},
		nil, nil, isas,
	)
	cfg := vecModeCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteHybrid(buf, p, model.Object{ID: shape, Name: "Shape"}))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "pub enum ShapeEnum {")
	assert.Contains(t, out, "Circle(usize)")
	assert.Contains(t, out, "Square(usize)")
	assert.Contains(t, out, "#[derive(Debug, Clone, PartialEq)]\npub enum ShapeEnum {")
}

// TestUberStoreStdRwLockWrapsConstructionAndLocksAccessors verifies a
// non-Single UberStore selector actually builds its wrapper (Arc::new(
// RwLock::new(...))) at every interning site, rather than declaring the
// wrapped field type and leaving construction to the caller, and that
// accessors lock through it.
func TestUberStoreStdRwLockWrapsConstructionAndLocksAccessors(t *testing.T) {
	point := tid(1)
	view := model.NewInMemory(
		[]model.Object{{ID: point, Name: "Point"}},
		[]model.Attribute{
			{Owner: point, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: point, Name: "x", Type: model.Type{Kind: model.Integer}},
		},
		nil, nil, nil,
	)
	cfg := stdRwLockCfg(t)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteStruct(buf, p, model.Object{ID: point, Name: "Point"}))
	require.NoError(t, WriteStore(buf, p))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "use std::sync::{Arc, RwLock};")
	assert.Contains(t, out, "point: HashMap<Uuid, Arc<RwLock<Point>>>")
	assert.Contains(t, out, "let point = Arc::new(RwLock::new(point));")
	assert.Contains(t, out, "pub fn new(x: i64, store: &mut Store) -> Arc<RwLock<Point>> {")
	assert.Contains(t, out, "store.inter_point(new)")
}

// TestUberStoreStdRwLockVecModeDedupLocksThroughGuards combines Vec mode
// with a locked UberStore strategy: the dedup comparison must lock-read
// both the candidate and the freshly-built value rather than comparing
// guards or raw structs directly.
func TestUberStoreStdRwLockVecModeDedupLocksThroughGuards(t *testing.T) {
	point := tid(1)
	view := model.NewInMemory(
		[]model.Object{{ID: point, Name: "Point"}},
		[]model.Attribute{
			{Owner: point, Name: "id", Type: model.Type{Kind: model.Uuid}},
			{Owner: point, Name: "x", Type: model.Type{Kind: model.Integer}},
		},
		nil, nil, nil,
	)
	cfg, err := config.Parse([]byte("target:\n  kind: domain\n  module: sarzak\noptimization_level: vec\nuber_store: std_rwlock\n"))
	require.NoError(t, err)
	p := newPipeline(t, view, cfg)

	buf := buffer.New()
	require.NoError(t, WriteStore(buf, p))
	assert.True(t, buf.Balanced())

	out := buf.String()
	assert.Contains(t, out, "pub fn inter_point<F>(&mut self, point: F) -> Arc<RwLock<Point>>")
	assert.Contains(t, out, "*stored.read().unwrap() == *point.read().unwrap()")
}
