// Package cloning produces deep copies of aggregates.
//
// A clone shares no pointer with its source: scalars are copied by value, owned
// collections are copied element by element through sub-cloners, and
// navigation pointers to other aggregates are dropped while their keys are kept.
// Cloners are configured explicitly at construction; a slot left empty on
// purpose is filled with Skip.
package cloning

import (
	"errors"
	"fmt"
	"iter"
)

// ErrMissingSubCloner is returned when a cloner is constructed with a nil slot.
var ErrMissingSubCloner = errors.New("cloning: sub-cloner not configured")

// Cloner copies values of T.
type Cloner[T any] interface {
	// Clone returns a deep copy of src, or nil when src is nil.
	Clone(src *T) *T
	// CloneCollection copies every non-nil element of src.
	// The result is never nil, even for a nil or empty src.
	CloneCollection(src []*T) []*T
}

// Func adapts a copy function to Cloner. The function is only called with non-nil values.
type Func[T any] func(src *T) *T

// Clone implements Cloner.
func (f Func[T]) Clone(src *T) *T {
	if src == nil {
		return nil
	}
	return f(src)
}

// CloneCollection implements Cloner.
func (f Func[T]) CloneCollection(src []*T) []*T {
	return Collect(Seq(f, src), len(src))
}

// Value returns a Cloner that copies T by value. Only safe for types without
// pointers, slices or maps.
func Value[T any]() Cloner[T] {
	return Func[T](func(src *T) *T {
		c := *src
		return &c
	})
}

type skip[T any] struct{}

// Skip returns a Cloner that deliberately copies nothing: Clone yields nil and
// CloneCollection yields an empty slice.
func Skip[T any]() Cloner[T] {
	return skip[T]{}
}

func (skip[T]) Clone(*T) *T { return nil }

func (skip[T]) CloneCollection([]*T) []*T { return []*T{} }

// Seq lazily clones every non-nil element of src.
func Seq[T any](c Cloner[T], src []*T) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, s := range src {
			if s == nil {
				continue
			}
			cp := c.Clone(s)
			if cp == nil {
				continue
			}
			if !yield(cp) {
				return
			}
		}
	}
}

// Collect drains seq into a non-nil slice.
func Collect[T any](seq iter.Seq[*T], capacity int) []*T {
	out := make([]*T, 0, capacity)
	for v := range seq {
		out = append(out, v)
	}
	return out
}

type slot struct {
	name  string
	value any
}

// require reports the first unconfigured slot by name.
func require(slots ...slot) error {
	for _, s := range slots {
		if s.value == nil {
			return fmt.Errorf("%w: %s", ErrMissingSubCloner, s.name)
		}
	}
	return nil
}

func ptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
