// Package config is the read-only query interface over user-supplied
// generation configuration: target shape, derive annotations, extra
// imports, per-object overrides, and the global flags in spec.md §6.1.
// Documents are authored as YAML, following the same library the rest of
// the corpus uses for its own configuration.
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TargetKind selects the shape of the surrounding generated module.
type TargetKind int

const (
	Domain TargetKind = iota
	Application
	Dwarf
)

// Target is the compilation target: its Kind and the generated module's
// name. Only Kind is consulted by the pipeline (a Domain target gets the
// trailing `store` constructor parameter); Module is carried as configured.
type Target struct {
	Kind   TargetKind
	Module string
}

// rawTarget is Target's on-disk shape: Kind is authored as a lowercase
// word (matching optimization_level/uber_store's string-keyed style),
// not a bare YAML integer.
type rawTarget struct {
	Kind   string `yaml:"kind"`
	Module string `yaml:"module,omitempty"`
}

// OptimizationLevel selects the Object Store's storage strategy.
type OptimizationLevel int

const (
	OptNone OptimizationLevel = iota
	OptVec
)

// UberStoreKind selects the concurrency primitive baked into the emitted
// Object Store (§5).
type UberStoreKind int

const (
	Single UberStoreKind = iota
	StdRwLock
	StdMutex
	ParkingLotRwLock
	ParkingLotMutex
	AsyncRwLock
	NDRwLock
	Disabled
)

// ExternalBindingConfig mirrors model.ExternalBinding as it appears in a
// config document (object ids are authored as strings there).
type ExternalBindingConfig struct {
	Name        string `yaml:"name"`
	Ctor        string `yaml:"ctor"`
	WrappedType string `yaml:"wrapped_type"`
}

// ObjectOverride is the per-object configuration slice of §6.1.
type ObjectOverride struct {
	Derives      []string               `yaml:"derives,omitempty"`
	UsePaths     []string               `yaml:"use_paths,omitempty"`
	ImportedFrom *string                `yaml:"imported_from,omitempty"`
	External     *ExternalBindingConfig `yaml:"external_binding,omitempty"`
}

// raw is the on-disk document shape; object ids are strings for
// human-editability and parsed into uuid.UUID at load time.
type raw struct {
	Target            rawTarget                 `yaml:"target"`
	AlwaysProcess     bool                      `yaml:"always_process"`
	PersistTimestamps bool                      `yaml:"persist_timestamps"`
	OptimizationLevel string                    `yaml:"optimization_level"`
	UberStore         string                    `yaml:"uber_store"`
	IsMetaModel       bool                      `yaml:"is_meta_model"`
	IsSarzak          bool                      `yaml:"is_sarzak"`
	Tracy             bool                      `yaml:"tracy"`
	FromDomain        string                    `yaml:"from_domain,omitempty"`
	Objects           map[string]ObjectOverride `yaml:"objects,omitempty"`
}

// Config is the parsed, queryable configuration view.
type Config struct {
	target            Target
	alwaysProcess     bool
	persistTimestamps bool
	optimizationLevel OptimizationLevel
	uberStore         UberStoreKind
	isMetaModel       bool
	isSarzak          bool
	tracy             bool
	fromDomain        string
	objects           map[uuid.UUID]ObjectOverride
}

var optimizationLevels = map[string]OptimizationLevel{
	"":     OptNone,
	"none": OptNone,
	"vec":  OptVec,
}

var targetKinds = map[string]TargetKind{
	"":            Domain,
	"domain":      Domain,
	"application": Application,
	"dwarf":       Dwarf,
}

var uberStoreKinds = map[string]UberStoreKind{
	"":                  Single,
	"single":            Single,
	"std_rwlock":        StdRwLock,
	"std_mutex":         StdMutex,
	"parking_lot_rwlock": ParkingLotRwLock,
	"parking_lot_mutex":  ParkingLotMutex,
	"async_rwlock":      AsyncRwLock,
	"nd_rwlock":         NDRwLock,
	"disabled":          Disabled,
}

// Load parses a YAML configuration document from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a YAML configuration document from raw bytes.
func Parse(data []byte) (*Config, error) {
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	opt, ok := optimizationLevels[r.OptimizationLevel]
	if !ok {
		return nil, fmt.Errorf("unknown optimization_level %q", r.OptimizationLevel)
	}
	us, ok := uberStoreKinds[r.UberStore]
	if !ok {
		return nil, fmt.Errorf("unknown uber_store %q", r.UberStore)
	}
	tk, ok := targetKinds[r.Target.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown target kind %q", r.Target.Kind)
	}

	cfg := &Config{
		target:            Target{Kind: tk, Module: r.Target.Module},
		alwaysProcess:     r.AlwaysProcess,
		persistTimestamps: r.PersistTimestamps,
		optimizationLevel: opt,
		uberStore:         us,
		isMetaModel:       r.IsMetaModel,
		isSarzak:          r.IsSarzak,
		tracy:             r.Tracy,
		fromDomain:        r.FromDomain,
		objects:           make(map[uuid.UUID]ObjectOverride, len(r.Objects)),
	}

	for idStr, o := range r.Objects {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("object override key %q is not a uuid: %w", idStr, err)
		}
		cfg.objects[id] = o
	}

	return cfg, nil
}

// GetTarget returns the configured compilation target.
func (c *Config) GetTarget() Target { return c.target }

// AlwaysProcess reports whether staleness checks should be bypassed.
func (c *Config) AlwaysProcess() bool { return c.alwaysProcess }

// PersistTimestamps reports whether the Object Store Writer should emit
// timestamp-tracking storage.
func (c *Config) PersistTimestamps() bool { return c.persistTimestamps }

// GetOptimizationLevel returns the configured store storage strategy.
func (c *Config) GetOptimizationLevel() OptimizationLevel { return c.optimizationLevel }

// GetUberStore returns the configured concurrency strategy selector.
func (c *Config) GetUberStore() UberStoreKind { return c.uberStore }

func (c *Config) IsMetaModel() bool { return c.isMetaModel }
func (c *Config) IsSarzak() bool    { return c.isSarzak }
func (c *Config) Tracy() bool       { return c.tracy }

// FromDomain returns the configured cross-domain source module, if any.
func (c *Config) FromDomain() (string, bool) {
	if c.fromDomain == "" {
		return "", false
	}
	return c.fromDomain, true
}

// IsImported reports whether id is configured as imported, and from where.
func (c *Config) IsImported(id uuid.UUID) (string, bool) {
	o, ok := c.objects[id]
	if !ok || o.ImportedFrom == nil {
		return "", false
	}
	return *o.ImportedFrom, true
}

// IsExternal reports whether id is bound to an external entity.
func (c *Config) IsExternal(id uuid.UUID) (ExternalBindingConfig, bool) {
	o, ok := c.objects[id]
	if !ok || o.External == nil {
		return ExternalBindingConfig{}, false
	}
	return *o.External, true
}

// Derives returns the derive annotations configured for id.
func (c *Config) Derives(id uuid.UUID) []string {
	return append([]string(nil), c.objects[id].Derives...)
}

// UsePaths returns the extra import paths configured for id.
func (c *Config) UsePaths(id uuid.UUID) []string {
	return append([]string(nil), c.objects[id].UsePaths...)
}
