// Package filterconfig loads the per-entity filter tables from YAML.
package filterconfig

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/theplant/adminquery"
)

// Entity names used by the services.
const (
	Structures          = "structures"
	StructureAttributes = "structure-attributes"
	Persons             = "persons"
	PersonAttributes    = "person-attributes"
	Categories          = "categories"
	Lists               = "lists"
	Articles            = "articles"
)

//go:embed filters.yaml
var defaultFilters []byte

// Set holds the filter configuration of every entity. It is read-only once
// loaded.
type Set map[string]adminquery.FilterConfig

// Get returns the configuration of entity, or an empty one.
func (s Set) Get(entity string) adminquery.FilterConfig {
	if cfg, ok := s[entity]; ok {
		return cfg
	}
	return adminquery.FilterConfig{}
}

// Entities returns the configured entity names, sorted.
func (s Set) Entities() []string {
	entities := lo.Keys(s)
	sort.Strings(entities)
	return entities
}

// Merge returns a new Set where the entities of override replace those of s.
func (s Set) Merge(override Set) Set {
	return lo.Assign(s, override)
}

// Load decodes and validates a Set.
func Load(r io.Reader) (Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var set Set
	if err := dec.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return Set{}, nil
		}
		return nil, errors.Wrap(err, "decode filter config")
	}
	if set == nil {
		set = Set{}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFile loads a Set from path.
func LoadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open filter config %s", path)
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load filter config %s", path)
	}
	return set, nil
}

// Default returns the embedded configuration.
func Default() Set {
	set, err := Load(bytes.NewReader(defaultFilters))
	if err != nil {
		panic(err)
	}
	return set
}

// Validate checks that every entry names a field and uses known operators
// and value types.
func (s Set) Validate() error {
	for _, entity := range s.Entities() {
		if entity == "" {
			return errors.New("empty entity name")
		}
		cfg := s[entity]
		keys := lo.Keys(cfg)
		sort.Strings(keys)
		for _, key := range keys {
			fc := cfg[key]
			if fc.TargetField == "" {
				return errors.Errorf("%s.%s: missing field", entity, key)
			}
			if !fc.Operator.Valid() {
				return errors.Errorf("%s.%s: unknown operator %q", entity, key, fc.Operator)
			}
			if !fc.ValueType.Valid() {
				return errors.Errorf("%s.%s: unknown type %q", entity, key, fc.ValueType)
			}
		}
	}
	return nil
}
