// Package translation maps between stored entities and the view models of the
// import files and the API.
package translation

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by a translator for a direction it does not implement.
var ErrNotSupported = errors.New("translation: direction not supported")

// Translator converts between an entity and a view model.
type Translator[E, VM any] interface {
	TranslateEntityToVM(ctx context.Context, e E) (VM, error)
	TranslateVMToEntity(ctx context.Context, vm VM) (E, error)
}
