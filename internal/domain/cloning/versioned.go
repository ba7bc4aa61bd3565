package cloning

import (
	"ptv/internal/core/entity"
)

// AvailabilityCloner copies language availabilities including their timestamps.
func AvailabilityCloner() Cloner[entity.LanguageAvailability] {
	return Func[entity.LanguageAvailability](func(src *entity.LanguageAvailability) *entity.LanguageAvailability {
		c := *src
		c.LastFailedPublishAt = ptr(src.LastFailedPublishAt)
		c.ValidFrom = ptr(src.ValidFrom)
		c.ValidTo = ptr(src.ValidTo)
		c.Reviewed = ptr(src.Reviewed)
		return &c
	})
}

// AggregateClonerConfig lists the sub-cloners of AggregateCloner. Every slot is required.
type AggregateClonerConfig struct {
	Names          Cloner[entity.LocalizedName]
	Descriptions   Cloner[entity.LocalizedDescription]
	Availabilities Cloner[entity.LanguageAvailability]
}

// AggregateCloner copies the language-versioned part shared by every kind.
// Kind cloners call it for the embedded aggregate and copy their own fields.
type AggregateCloner struct {
	cfg AggregateClonerConfig
}

// NewAggregateCloner validates cfg and builds the cloner.
func NewAggregateCloner(cfg AggregateClonerConfig) (*AggregateCloner, error) {
	if err := require(
		slot{"names", cfg.Names},
		slot{"descriptions", cfg.Descriptions},
		slot{"availabilities", cfg.Availabilities},
	); err != nil {
		return nil, err
	}
	return &AggregateCloner{cfg: cfg}, nil
}

// DefaultAggregateCloner copies names, descriptions and availabilities.
func DefaultAggregateCloner() *AggregateCloner {
	return &AggregateCloner{cfg: AggregateClonerConfig{
		Names:          Value[entity.LocalizedName](),
		Descriptions:   Value[entity.LocalizedDescription](),
		Availabilities: AvailabilityCloner(),
	}}
}

// Clone implements Cloner.
func (c *AggregateCloner) Clone(src *entity.VersionedAggregate) *entity.VersionedAggregate {
	if src == nil {
		return nil
	}
	dst := &entity.VersionedAggregate{
		VersionedEntity:        src.VersionedEntity,
		Names:                  c.cfg.Names.CloneCollection(src.Names),
		Descriptions:           c.cfg.Descriptions.CloneCollection(src.Descriptions),
		LanguageAvailabilities: c.cfg.Availabilities.CloneCollection(src.LanguageAvailabilities),
	}
	dst.PreviousVersionID = ptr(src.PreviousVersionID)
	return dst
}

// CloneCollection implements Cloner.
func (c *AggregateCloner) CloneCollection(src []*entity.VersionedAggregate) []*entity.VersionedAggregate {
	return Collect(Seq[entity.VersionedAggregate](c, src), len(src))
}

// Kind builds a cloner for a versioned kind: the embedded aggregate is copied by agg
// and copyOwn copies the kind's own fields from src into dst.
func Kind[T any](agg *AggregateCloner, aggregate func(*T) *entity.VersionedAggregate, copyOwn func(dst, src *T)) Cloner[T] {
	return Func[T](func(src *T) *T {
		dst := new(T)
		copyOwn(dst, src)
		*aggregate(dst) = *agg.Clone(aggregate(src))
		return dst
	})
}
