package versioned_repo

import (
	"ptv/internal/domain/versioned/channel"
	"ptv/internal/infrastructure/storage/postgres"
)

const channelTable = "service_channel"

// ChannelRepo implements channel.Repository.
type ChannelRepo struct {
	*BaseVersionedRepo[*channel.Channel]
}

// NewChannelRepo creates a new channel repository.
func NewChannelRepo(txm *postgres.TxManager) *ChannelRepo {
	return &ChannelRepo{
		BaseVersionedRepo: NewBaseVersionedRepo[*channel.Channel](
			txm,
			channelTable,
			postgres.ExtractDBColumns[channel.Channel](),
			func() *channel.Channel { return &channel.Channel{} },
			"organization_id",
		),
	}
}
