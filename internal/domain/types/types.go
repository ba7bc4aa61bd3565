// Package types maps stable type codes to database identifiers.
//
// Every lookup table of the registry (publishing statuses, languages, name
// types, ...) is addressed by a Kind and a Code. Snapshots are immutable; a
// reload builds a new Snapshot and publishes it atomically.
package types

import (
	"errors"
	"fmt"
	"sort"

	"ptv/internal/core/id"
)

// Kind names a lookup table.
type Kind string

const (
	KindPublishingStatus Kind = "publishing_status"
	KindLanguage         Kind = "language"
	KindNameType         Kind = "name_type"
	KindDescriptionType  Kind = "description_type"
	KindServiceType      Kind = "service_type"
	KindChannelType      Kind = "service_channel_type"
	KindOrganizationType Kind = "organization_type"
	KindChargeType       Kind = "service_charge_type"
	KindProducerType     Kind = "provision_type"
)

// Publishing status codes.
const (
	StatusDraft        = "Draft"
	StatusPublished    = "Published"
	StatusModified     = "Modified"
	StatusDeleted      = "Deleted"
	StatusOldPublished = "OldPublished"
)

// Name and description type codes.
const (
	NameTypeName          = "Name"
	NameTypeAlternateName = "AlternateName"

	DescriptionTypeDescription      = "Description"
	DescriptionTypeShortDescription = "ShortDescription"
)

// Provision type codes.
const (
	ProducerSelfProduced = "SelfProduced"
	ProducerPurchased    = "PurchaseServices"
	ProducerOther        = "Other"
)

// ErrUnknownType is returned when a code or id is not present in the snapshot.
var ErrUnknownType = errors.New("types: unknown type")

// Type is one row of a lookup table.
type Type struct {
	Kind        Kind   `db:"kind" json:"kind"`
	ID          id.ID  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	OrderNumber int    `db:"order_number" json:"orderNumber"`
}

// Cache resolves codes and ids. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the id of code in kind, or an error wrapping ErrUnknownType.
	Get(kind Kind, code string) (id.ID, error)
	// Code returns the code of typeID in kind, or an error wrapping ErrUnknownType.
	Code(kind Kind, typeID id.ID) (string, error)
	// Has reports whether code exists in kind.
	Has(kind Kind, code string) bool
	// Types lists the rows of kind ordered by OrderNumber.
	Types(kind Kind) []Type
	// Codes lists the codes of kind ordered by OrderNumber.
	Codes(kind Kind) []string
}

// Snapshot is an immutable view of all lookup tables.
type Snapshot struct {
	byCode map[Kind]map[string]Type
	byID   map[Kind]map[id.ID]Type
	sorted map[Kind][]Type
}

// NewSnapshot indexes rows. Later duplicates of the same kind and code win.
func NewSnapshot(rows []Type) *Snapshot {
	s := &Snapshot{
		byCode: make(map[Kind]map[string]Type),
		byID:   make(map[Kind]map[id.ID]Type),
		sorted: make(map[Kind][]Type),
	}
	for _, r := range rows {
		if s.byCode[r.Kind] == nil {
			s.byCode[r.Kind] = make(map[string]Type)
			s.byID[r.Kind] = make(map[id.ID]Type)
		}
		s.byCode[r.Kind][r.Code] = r
		s.byID[r.Kind][r.ID] = r
	}
	for kind, m := range s.byCode {
		list := make([]Type, 0, len(m))
		for _, t := range m {
			list = append(list, t)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].OrderNumber != list[j].OrderNumber {
				return list[i].OrderNumber < list[j].OrderNumber
			}
			return list[i].Code < list[j].Code
		})
		s.sorted[kind] = list
	}
	return s
}

// Get implements Cache.
func (s *Snapshot) Get(kind Kind, code string) (id.ID, error) {
	if t, ok := s.byCode[kind][code]; ok {
		return t.ID, nil
	}
	return id.Nil(), fmt.Errorf("%w: %s %q", ErrUnknownType, kind, code)
}

// Code implements Cache.
func (s *Snapshot) Code(kind Kind, typeID id.ID) (string, error) {
	if t, ok := s.byID[kind][typeID]; ok {
		return t.Code, nil
	}
	return "", fmt.Errorf("%w: %s id %s", ErrUnknownType, kind, typeID)
}

// Has implements Cache.
func (s *Snapshot) Has(kind Kind, code string) bool {
	_, ok := s.byCode[kind][code]
	return ok
}

// Types implements Cache. The returned slice is a copy.
func (s *Snapshot) Types(kind Kind) []Type {
	return append([]Type(nil), s.sorted[kind]...)
}

// Codes implements Cache.
func (s *Snapshot) Codes(kind Kind) []string {
	out := make([]string, 0, len(s.sorted[kind]))
	for _, t := range s.sorted[kind] {
		out = append(out, t.Code)
	}
	return out
}

// Len returns the number of rows across all kinds.
func (s *Snapshot) Len() int {
	n := 0
	for _, m := range s.byCode {
		n += len(m)
	}
	return n
}

// MustGet is Get for codes known to be seeded. Panics on a missing code.
func MustGet(c Cache, kind Kind, code string) id.ID {
	v, err := c.Get(kind, code)
	if err != nil {
		panic(err)
	}
	return v
}

var _ Cache = (*Snapshot)(nil)
