package dto

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/translation"
	"ptv/internal/domain/types"
)

// LocalizedText is a name or description in one language. Type defaults to
// Name for names and Description for descriptions.
type LocalizedText struct {
	Language string `json:"language" binding:"required"`
	Type     string `json:"type"`
	Value    string `json:"value"`
}

// VersionedRequest carries the fields shared by every versioned kind.
type VersionedRequest struct {
	Names        []LocalizedText `json:"names" binding:"required,min=1,dive"`
	Descriptions []LocalizedText `json:"descriptions" binding:"dive"`

	// Schedule sets ValidFrom and ValidTo per language; omitted languages keep theirs
	Schedule []LanguageSchedule `json:"schedule" binding:"dive"`

	// RowVersion is required on save for optimistic locking
	RowVersion int `json:"rowVersion"`
}

// LanguageSchedule publishes a language at ValidFrom and archives the version at ValidTo.
type LanguageSchedule struct {
	Language  string     `json:"language" binding:"required"`
	ValidFrom *time.Time `json:"validFrom"`
	ValidTo   *time.Time `json:"validTo"`
}

func lookup(cache types.Cache, kind types.Kind, code, field string) (id.ID, error) {
	v, err := cache.Get(kind, code)
	if err != nil {
		return id.Nil(), apperror.NewValidation(fmt.Sprintf("unknown %s", field)).
			WithDetail("field", field).WithDetail("value", code)
	}
	return v, nil
}

func optionalType(cache types.Cache, kind types.Kind, code, field string) (*id.ID, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	v, err := lookup(cache, kind, code, field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Apply writes names and descriptions onto agg, replacing the existing ones.
// Descriptions are stored as rich text; plain text is wrapped.
func (r VersionedRequest) Apply(cache types.Cache, agg *entity.VersionedAggregate) error {
	agg.Names = nil
	for _, n := range r.Names {
		lang, err := lookup(cache, types.KindLanguage, strings.ToLower(n.Language), "language")
		if err != nil {
			return err
		}
		typeCode := n.Type
		if typeCode == "" {
			typeCode = types.NameTypeName
		}
		typeID, err := lookup(cache, types.KindNameType, typeCode, "nameType")
		if err != nil {
			return err
		}
		agg.SetName(lang, typeID, strings.TrimSpace(n.Value))
	}

	agg.Descriptions = nil
	for _, d := range r.Descriptions {
		lang, err := lookup(cache, types.KindLanguage, strings.ToLower(d.Language), "language")
		if err != nil {
			return err
		}
		typeCode := d.Type
		if typeCode == "" {
			typeCode = types.DescriptionTypeDescription
		}
		typeID, err := lookup(cache, types.KindDescriptionType, typeCode, "descriptionType")
		if err != nil {
			return err
		}
		agg.SetDescription(lang, typeID, entity.NewRichText(d.Value))
	}

	agg.LanguageAvailabilities = nil
	for _, ls := range r.Schedule {
		lang, err := lookup(cache, types.KindLanguage, strings.ToLower(ls.Language), "language")
		if err != nil {
			return err
		}
		agg.LanguageAvailabilities = append(agg.LanguageAvailabilities, &entity.LanguageAvailability{
			LanguageID: lang,
			ValidFrom:  utc(ls.ValidFrom),
			ValidTo:    utc(ls.ValidTo),
		})
	}

	agg.RowVersion = r.RowVersion
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// PublishRequest selects the languages to publish; empty publishes all.
type PublishRequest struct {
	Languages []string `json:"languages"`
}

// LanguageIDs resolves the language codes.
func (r PublishRequest) LanguageIDs(cache types.Cache) ([]id.ID, error) {
	out := make([]id.ID, 0, len(r.Languages))
	for _, code := range r.Languages {
		v, err := lookup(cache, types.KindLanguage, strings.ToLower(code), "language")
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// VersionedResponse is the read model shared by every versioned kind.
type VersionedResponse struct {
	ID                     id.ID                                    `json:"id"`
	UnificRootID           id.ID                                    `json:"unificRootId"`
	PublishingStatus       string                                   `json:"publishingStatus"`
	Version                string                                   `json:"version"`
	RowVersion             int                                      `json:"rowVersion"`
	Names                  []LocalizedText                          `json:"names"`
	Descriptions           []LocalizedText                          `json:"descriptions"`
	LanguageAvailabilities []translation.VmLanguageAvailabilityInfo `json:"languageAvailabilities"`
	Created                time.Time                                `json:"created"`
	CreatedBy              string                                   `json:"createdBy,omitempty"`
	Modified               time.Time                                `json:"modified"`
	ModifiedBy             string                                   `json:"modifiedBy,omitempty"`
}

// FromAggregate renders agg. Unknown type ids are rendered as their id.
func FromAggregate(ctx context.Context, cache types.Cache, agg *entity.VersionedAggregate) (VersionedResponse, error) {
	code := func(kind types.Kind, v id.ID) string {
		c, err := cache.Code(kind, v)
		if err != nil {
			return v.String()
		}
		return c
	}

	resp := VersionedResponse{
		ID:               agg.ID,
		UnificRootID:     agg.UnificRootID,
		PublishingStatus: code(types.KindPublishingStatus, agg.PublishingStatusID),
		Version:          fmt.Sprintf("%d.%d", agg.VersionMajor, agg.VersionMinor),
		RowVersion:       agg.RowVersion,
		Names:            make([]LocalizedText, 0, len(agg.Names)),
		Descriptions:     make([]LocalizedText, 0, len(agg.Descriptions)),
		Created:          agg.Created,
		CreatedBy:        agg.CreatedBy,
		Modified:         agg.Modified,
		ModifiedBy:       agg.ModifiedBy,
	}
	for _, n := range agg.Names {
		resp.Names = append(resp.Names, LocalizedText{
			Language: code(types.KindLanguage, n.LocalizationID),
			Type:     code(types.KindNameType, n.TypeID),
			Value:    n.Name,
		})
	}
	for _, d := range agg.Descriptions {
		resp.Descriptions = append(resp.Descriptions, LocalizedText{
			Language: code(types.KindLanguage, d.LocalizationID),
			Type:     code(types.KindDescriptionType, d.TypeID),
			Value:    string(d.Description),
		})
	}

	las, err := translation.NewLanguageAvailabilityTranslator(cache).TranslateAll(ctx, agg)
	if err != nil {
		return VersionedResponse{}, err
	}
	resp.LanguageAvailabilities = las
	return resp, nil
}

func typeCode(cache types.Cache, kind types.Kind, v *id.ID) string {
	if v == nil {
		return ""
	}
	c, err := cache.Code(kind, *v)
	if err != nil {
		return v.String()
	}
	return c
}

func orEmpty(ids []id.ID) []id.ID {
	if ids == nil {
		return []id.ID{}
	}
	return ids
}
