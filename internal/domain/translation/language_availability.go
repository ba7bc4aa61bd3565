package translation

import (
	"context"
	"time"

	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/types"
)

// VmLanguageAvailabilityInfo is the read model of one language of a version.
type VmLanguageAvailabilityInfo struct {
	LanguageID          id.ID      `json:"languageId"`
	Language            string     `json:"language"`
	StatusID            id.ID      `json:"statusId"`
	Status              string     `json:"status"`
	LastFailedPublishAt *time.Time `json:"lastFailedPublishAt,omitempty"`
	ValidFrom           *time.Time `json:"validFrom,omitempty"`
	ValidTo             *time.Time `json:"validTo,omitempty"`
	Reviewed            *time.Time `json:"reviewed,omitempty"`
	ReviewedBy          string     `json:"reviewedBy,omitempty"`
	Modified            time.Time  `json:"modified"`
	ModifiedBy          string     `json:"modifiedBy,omitempty"`
}

// LanguageAvailabilityTranslator renders language availabilities. Availabilities
// change only through the versioning manager, so the write direction is not supported.
type LanguageAvailabilityTranslator struct {
	types types.Cache
}

// NewLanguageAvailabilityTranslator creates a new read-only translator.
func NewLanguageAvailabilityTranslator(cache types.Cache) *LanguageAvailabilityTranslator {
	return &LanguageAvailabilityTranslator{types: cache}
}

var _ Translator[*entity.LanguageAvailability, VmLanguageAvailabilityInfo] = (*LanguageAvailabilityTranslator)(nil)

// TranslateEntityToVM implements Translator.
func (t *LanguageAvailabilityTranslator) TranslateEntityToVM(ctx context.Context, la *entity.LanguageAvailability) (VmLanguageAvailabilityInfo, error) {
	lang, err := t.types.Code(types.KindLanguage, la.LanguageID)
	if err != nil {
		return VmLanguageAvailabilityInfo{}, err
	}
	status, err := t.types.Code(types.KindPublishingStatus, la.StatusID)
	if err != nil {
		return VmLanguageAvailabilityInfo{}, err
	}
	return VmLanguageAvailabilityInfo{
		LanguageID:          la.LanguageID,
		Language:            lang,
		StatusID:            la.StatusID,
		Status:              status,
		LastFailedPublishAt: la.LastFailedPublishAt,
		ValidFrom:           la.ValidFrom,
		ValidTo:             la.ValidTo,
		Reviewed:            la.Reviewed,
		ReviewedBy:          la.ReviewedBy,
		Modified:            la.Modified,
		ModifiedBy:          la.ModifiedBy,
	}, nil
}

// TranslateVMToEntity always returns ErrNotSupported.
func (t *LanguageAvailabilityTranslator) TranslateVMToEntity(ctx context.Context, vm VmLanguageAvailabilityInfo) (*entity.LanguageAvailability, error) {
	return nil, ErrNotSupported
}

// TranslateAll renders every availability of an aggregate, in stored order.
func (t *LanguageAvailabilityTranslator) TranslateAll(ctx context.Context, agg *entity.VersionedAggregate) ([]VmLanguageAvailabilityInfo, error) {
	out := make([]VmLanguageAvailabilityInfo, 0, len(agg.LanguageAvailabilities))
	for _, la := range agg.LanguageAvailabilities {
		vm, err := t.TranslateEntityToVM(ctx, la)
		if err != nil {
			return nil, err
		}
		out = append(out, vm)
	}
	return out, nil
}
