package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// apostrophes are stripped from names before matching.
var apostrophes = strings.NewReplacer("'", "", "’", "", "‘", "")

// NormalizeName builds the loose lookup key for an entity name: apostrophes
// removed, whitespace runs collapsed to a single space, case folded.
func NormalizeName(name string) string {
	s := apostrophes.Replace(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// compactKey drops the remaining spaces of a normalized name so that
// "l aquila" (from "L' Aquila") and "laquila" (from "LAquila") coincide.
func compactKey(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "")
}

// Resolver maps raw entity names to registry entities. It is built once per
// ingestion batch and never fails per row; callers decide what an unmatched
// name means.
type Resolver struct {
	exact      map[string]Entity
	normalized map[string]Entity
	compact    map[string]Entity
}

// NewResolver indexes the entity registry. When two entities share a
// normalized key, the first one in registry order wins.
func NewResolver(entities []Entity) *Resolver {
	r := &Resolver{
		exact:      make(map[string]Entity, len(entities)),
		normalized: make(map[string]Entity, len(entities)),
		compact:    make(map[string]Entity, len(entities)),
	}
	for _, e := range entities {
		if _, ok := r.exact[e.Name]; !ok {
			r.exact[e.Name] = e
		}
		key := NormalizeName(e.Name)
		if _, ok := r.normalized[key]; !ok {
			r.normalized[key] = e
		}
		if _, ok := r.compact[compactKey(key)]; !ok {
			r.compact[compactKey(key)] = e
		}
	}
	return r
}

// Resolve looks a name up by exact match first, then by normalized key.
func (r *Resolver) Resolve(name string) (Entity, bool) {
	if e, ok := r.exact[name]; ok {
		return e, true
	}
	key := NormalizeName(name)
	if e, ok := r.normalized[key]; ok {
		return e, true
	}
	if e, ok := r.compact[compactKey(key)]; ok {
		return e, true
	}
	return Entity{}, false
}

// Len returns the number of distinct registry names.
func (r *Resolver) Len() int {
	return len(r.exact)
}
