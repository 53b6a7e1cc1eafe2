// Package emit is the Emission Engine (§4.4–§4.7): a set of composable
// writers that, given a classified object, the Woog model, Config, and an
// output Buffer, produce Rust source text — type definitions,
// implementation blocks, the Object Store, and cross-domain From-blocks.
// Every writer obeys the Region Protocol (internal/buffer): it brackets
// its output in a named, directive-tagged region before emitting anything.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/uberFoo/grace-sub001/internal/buffer"
	"github.com/uberFoo/grace-sub001/internal/classifier"
	"github.com/uberFoo/grace-sub001/internal/config"
	"github.com/uberFoo/grace-sub001/internal/model"
	"github.com/uberFoo/grace-sub001/internal/typecheck"
	"github.com/uberFoo/grace-sub001/internal/uberstore"
	"github.com/uberFoo/grace-sub001/internal/woog"
)

// Pipeline bundles the five inputs every writer needs, so call sites don't
// thread five parameters through every function.
type Pipeline struct {
	View   model.View
	Config *config.Config
	Class  *classifier.Classifier
	Woog   *woog.Woog
	Store  uberstore.Strategy
}

// NewPipeline builds a Pipeline, resolving the UberStore strategy from cfg.
func NewPipeline(view model.View, cfg *config.Config, cls *classifier.Classifier, wg *woog.Woog) *Pipeline {
	return &Pipeline{View: view, Config: cfg, Class: cls, Woog: wg, Store: uberstore.For(cfg.GetUberStore())}
}

func rustTypeName(gt typecheck.GType) string {
	switch gt.Kind {
	case typecheck.UuidKind:
		return "Uuid"
	case typecheck.OptionUuidKind:
		return "Option<Uuid>"
	case typecheck.ReferenceKind:
		return gt.Name
	case typecheck.OptionReferenceKind:
		return "Option<" + gt.Name + ">"
	default:
		return gt.Name
	}
}

func paramTypeSyntax(p woog.Parameter) string {
	typ := paramBaseType(p)
	switch p.Ownership {
	case woog.Borrowed:
		if p.Type.Kind == typecheck.ReferenceKind {
			return "&" + typ
		}
		return typ
	case woog.Mutable:
		return "&mut " + typ
	default:
		return typ
	}
}

// paramBaseType renders the parameter's logical type before ownership
// sigils are applied: References render as the bare target type name
// (`&T`, not `&Reference<T>`), Options wrap that.
func paramBaseType(p woog.Parameter) string {
	switch p.Type.Kind {
	case typecheck.ReferenceKind:
		return p.Type.Name
	case typecheck.OptionReferenceKind:
		return "Option<&" + p.Type.Name + ">"
	default:
		return rustTypeName(p.Type)
	}
}

func renderParamList(params []woog.Parameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Name == "store" {
			parts = append(parts, "store: &mut Store")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, paramTypeSyntax(p)))
	}
	return strings.Join(parts, ", ")
}

// docLines splits a free-text description into one `///` comment per line,
// matching the teacher's one-comment-line-per-description-line convention.
func docLines(buf *buffer.Buffer, description string) {
	if description == "" {
		return
	}
	for _, line := range strings.Split(description, "\n") {
		buf.Emit("/// %s", line)
	}
}

func deriveLine(derives []string) string {
	if len(derives) == 0 {
		derives = []string{"Debug", "Clone"}
	}
	return fmt.Sprintf("#[derive(%s)]", strings.Join(derives, ", "))
}

// derivesFor is deriveLine's input when no explicit config override exists:
// the usual Debug+Clone default, plus PartialEq for any object the Object
// Store dedups by value under Vec-mode optimization (§4.6's "recycle the
// just-allocated slot on a value match" rule needs a working `==`).
func derivesFor(p *Pipeline, obj model.Object) []string {
	if derives := p.Config.Derives(obj.ID); len(derives) > 0 {
		return derives
	}
	derives := []string{"Debug", "Clone"}
	if p.Config.GetOptimizationLevel() != config.OptVec {
		return derives
	}
	switch p.Class.Classify(obj.ID) {
	case classifier.Imported, classifier.SingletonShape:
		return derives
	default:
		return append(derives, "PartialEq")
	}
}

// idAccessExpr renders the expression that reads obj's identity off recv:
// a method call for Enum (id() derives from the active variant) and a bare
// field for every other shape (Hybrid carries a real `id` attribute; so
// does Struct).
func idAccessExpr(p *Pipeline, obj model.Object, recv string) string {
	if p.Class.IsEnum(obj.ID) {
		return recv + ".id()"
	}
	return recv + ".id"
}

// sortedByName returns ids sorted by the Name a given lookup resolves them
// to — the recurring "sort subtypes/targets by name" rule (§3.5 inv. 1).
func sortedByName(view model.View, ids []uuid.UUID) []model.Object {
	out := make([]model.Object, 0, len(ids))
	for _, id := range ids {
		if o, ok := view.Object(id); ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func regionTag(objName, purpose string) string {
	return fmt.Sprintf("%s-%s", objName, purpose)
}
