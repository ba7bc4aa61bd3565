package generaldescription

import (
	"ptv/internal/domain"
)

// Repository defines the interface for general description storage.
type Repository interface {
	domain.VersionedRepository[*GeneralDescription]
}
