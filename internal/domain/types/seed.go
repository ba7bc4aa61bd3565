package types

import (
	"github.com/google/uuid"

	"ptv/internal/core/id"
)

var seedNamespace = uuid.MustParse("6f1c7d4e-2b1a-4f0e-9a61-5d2f4c3b8a10")

// SeedID derives the stable id of a seeded type from its kind and code.
func SeedID(kind Kind, code string) id.ID {
	return uuid.NewSHA1(seedNamespace, []byte(string(kind)+"/"+code))
}

// SeedRows returns the lookup rows every installation starts with.
func SeedRows() []Type {
	table := []struct {
		kind  Kind
		codes []string
	}{
		{KindPublishingStatus, []string{StatusDraft, StatusPublished, StatusDeleted, StatusModified, StatusOldPublished}},
		{KindLanguage, []string{"fi", "sv", "en", "se", "smn", "sms"}},
		{KindNameType, []string{NameTypeName, NameTypeAlternateName}},
		{KindDescriptionType, []string{DescriptionTypeDescription, DescriptionTypeShortDescription, "ServiceUserInstruction", "ChargeTypeAdditionalInfo"}},
		{KindServiceType, []string{"Service", "PermissionAndObligation", "ProfessionalQualifications"}},
		{KindChannelType, []string{"EChannel", "WebPage", "PrintableForm", "Phone", "ServiceLocation"}},
		{KindOrganizationType, []string{"State", "Municipality", "RegionalOrganization", "Organization", "Company", "SotePublic", "SotePrivate"}},
		{KindChargeType, []string{"Charged", "Free", "Other"}},
		{KindProducerType, []string{ProducerSelfProduced, ProducerPurchased, ProducerOther}},
	}

	var rows []Type
	for _, k := range table {
		for i, code := range k.codes {
			rows = append(rows, Type{Kind: k.kind, ID: SeedID(k.kind, code), Code: code, OrderNumber: i + 1})
		}
	}
	return rows
}
