package country

import (
	"context"
)

// Repository defines persistence for countries.
type Repository interface {
	// FindByCode returns the country with the given code or a not found error.
	FindByCode(ctx context.Context, code string) (*Country, error)

	// List returns all countries ordered by code.
	List(ctx context.Context) ([]*Country, error)

	// Save inserts or updates the country together with its dial codes and names.
	Save(ctx context.Context, c *Country) error
}

// Translator builds a Country from an import entry, resolving it against stored countries.
type Translator interface {
	TranslateVMToEntity(ctx context.Context, vm VmJsonCountry) (*Country, error)
}
