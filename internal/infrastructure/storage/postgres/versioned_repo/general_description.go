package versioned_repo

import (
	"ptv/internal/domain/versioned/generaldescription"
	"ptv/internal/infrastructure/storage/postgres"
)

const generalDescriptionTable = "general_description"

// GeneralDescriptionRepo implements generaldescription.Repository.
// General descriptions have no owning organization.
type GeneralDescriptionRepo struct {
	*BaseVersionedRepo[*generaldescription.GeneralDescription]
}

// NewGeneralDescriptionRepo creates a new general description repository.
func NewGeneralDescriptionRepo(txm *postgres.TxManager) *GeneralDescriptionRepo {
	return &GeneralDescriptionRepo{
		BaseVersionedRepo: NewBaseVersionedRepo[*generaldescription.GeneralDescription](
			txm,
			generalDescriptionTable,
			postgres.ExtractDBColumns[generaldescription.GeneralDescription](),
			func() *generaldescription.GeneralDescription { return &generaldescription.GeneralDescription{} },
			"",
		),
	}
}
