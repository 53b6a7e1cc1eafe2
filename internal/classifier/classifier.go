// Package classifier implements the Object Classifier (§4.1): a total,
// pure function from (Model, Config, Object) to exactly one emission
// Shape, plus the derived predicates the rest of the pipeline consults.
package classifier

import (
	"github.com/google/uuid"

	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/gracelog"
	"github.com/uberFoo/grace-sub001/internal/model"
)

// Shape is the Classifier's verdict for one object.
type Shape int

const (
	Imported Shape = iota
	ExternalShape
	SingletonShape
	EnumShape
	HybridShape
	StructShape
)

func (s Shape) String() string {
	switch s {
	case Imported:
		return "Imported"
	case ExternalShape:
		return "External"
	case SingletonShape:
		return "Singleton"
	case EnumShape:
		return "Enum"
	case HybridShape:
		return "Hybrid"
	case StructShape:
		return "Struct"
	default:
		return "Unknown"
	}
}

// Classifier answers shape queries for one (Model, Config) pair. It caches
// nothing that could go stale across calls — every method recomputes from
// the View and Config each time, so it is safe to share across goroutines
// reading the same immutable Model/Config pair.
type Classifier struct {
	view model.View
	cfg  *config.Config
}

// New builds a Classifier over the given Model View and Config View.
func New(view model.View, cfg *config.Config) *Classifier {
	return &Classifier{view: view, cfg: cfg}
}

// Classify assigns id exactly one Shape, in the priority order of §4.1.
func (c *Classifier) Classify(id uuid.UUID) Shape {
	if _, ok := c.cfg.IsImported(id); ok {
		return Imported
	}
	if _, ok := c.cfg.IsExternal(id); ok {
		return ExternalShape
	}
	if c.hasNoOwnData(id) && len(c.view.Referents(id)) == 0 && !c.IsSupertype(id) {
		return SingletonShape
	}
	if c.IsSupertype(id) {
		if c.hasNoOwnData(id) {
			return EnumShape
		}
		return HybridShape
	}
	return StructShape
}

// hasNoOwnData is the shared "no attributes beyond id, no relationship
// participation" test used by both the Singleton and Enum branches. A
// Singleton additionally requires no referents, since an object that is
// the target of a binary relationship must remain a navigable type, not a
// bare Uuid constant (see DESIGN.md's resolution of this reading of §4.1).
func (c *Classifier) hasNoOwnData(id uuid.UUID) bool {
	for _, a := range c.view.Attributes(id) {
		if a.Name != "id" {
			return false
		}
	}
	if len(c.view.Referrers(id)) > 0 {
		return false
	}
	if len(c.view.AssociativeReferrers(id)) > 0 {
		return false
	}
	if len(c.view.AssociativeReferents(id)) > 0 {
		return false
	}
	return true
}

// IsSupertype reports whether id is the Supertype side of an Isa edge.
func (c *Classifier) IsSupertype(id uuid.UUID) bool {
	_, ok := c.view.IsaOf(id)
	return ok
}

// IsSubtype reports whether id is a Subtype side of an Isa edge.
func (c *Classifier) IsSubtype(id uuid.UUID) bool {
	_, ok := c.view.SupertypeOf(id)
	return ok
}

// IsEnum reports whether id classifies as Enum.
func (c *Classifier) IsEnum(id uuid.UUID) bool { return c.Classify(id) == EnumShape }

// IsHybrid reports whether id classifies as Hybrid.
func (c *Classifier) IsHybrid(id uuid.UUID) bool { return c.Classify(id) == HybridShape }

// IsSingleton reports whether id classifies as Singleton.
func (c *Classifier) IsSingleton(id uuid.UUID) bool { return c.Classify(id) == SingletonShape }

// IsExternal reports whether id classifies as External.
func (c *Classifier) IsExternal(id uuid.UUID) bool { return c.Classify(id) == ExternalShape }

// IsImported reports whether id classifies as Imported.
func (c *Classifier) IsImported(id uuid.UUID) bool { return c.Classify(id) == Imported }

// ClassifyAll classifies every object in the model, logging the verdict
// at debug level — useful for the `grace classify` CLI subcommand.
func (c *Classifier) ClassifyAll() map[uuid.UUID]Shape {
	log := gracelog.Get(gracelog.CategoryClassifier)
	out := make(map[uuid.UUID]Shape)
	for _, o := range c.view.Objects() {
		shape := c.Classify(o.ID)
		log.Debugw("classified object", "object", o.Name, "shape", shape.String())
		out[o.ID] = shape
	}
	return out
}
