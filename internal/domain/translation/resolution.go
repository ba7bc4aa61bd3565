package translation

import (
	"ptv/internal/core/id"
)

// Resolution tells whether a view model maps to a new entity or to a stored one.
// The only implementations are Created and Existing.
type Resolution interface {
	// EntityID is the id the translated entity gets.
	EntityID() id.ID
	// OwnerID is the id to stamp onto children, nil for a new entity whose
	// children are stamped by the repository on insert.
	OwnerID() *id.ID

	resolution()
}

// Created resolves to a new entity with a freshly generated id.
type Created struct {
	ID id.ID
}

// EntityID implements Resolution.
func (r Created) EntityID() id.ID { return r.ID }

// OwnerID implements Resolution.
func (Created) OwnerID() *id.ID { return nil }

func (Created) resolution() {}

// Existing resolves to an entity already in storage.
type Existing struct {
	ID id.ID
}

// EntityID implements Resolution.
func (r Existing) EntityID() id.ID { return r.ID }

// OwnerID implements Resolution.
func (r Existing) OwnerID() *id.ID { return id.Ptr(r.ID) }

func (Existing) resolution() {}

// IsNew reports whether r is Created.
func IsNew(r Resolution) bool {
	_, ok := r.(Created)
	return ok
}

// ResolveByKey picks the first candidate matching the natural key. It returns
// Existing with the match, or Created with a fresh id and the zero E.
func ResolveByKey[E any](candidates []E, matches func(E) bool, idOf func(E) id.ID) (Resolution, E) {
	for _, c := range candidates {
		if matches(c) {
			return Existing{ID: idOf(c)}, c
		}
	}
	var zero E
	return Created{ID: id.New()}, zero
}
