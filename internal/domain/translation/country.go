package translation

import (
	"context"
	"fmt"
	"strings"

	"ptv/internal/core/apperror"
	"ptv/internal/core/entity"
	"ptv/internal/core/id"
	"ptv/internal/domain/country"
	"ptv/internal/domain/types"
)

// CountryFinder looks up stored countries by code.
type CountryFinder interface {
	FindByCode(ctx context.Context, code string) (*country.Country, error)
}

// CountryTranslator maps import entries to countries. The natural key is Code.
type CountryTranslator struct {
	finder CountryFinder
	types  types.Cache
}

// NewCountryTranslator creates a new country translator.
func NewCountryTranslator(finder CountryFinder, cache types.Cache) *CountryTranslator {
	return &CountryTranslator{finder: finder, types: cache}
}

var _ Translator[*country.Country, country.VmJsonCountry] = (*CountryTranslator)(nil)

// TranslateVMToEntity implements Translator.
func (t *CountryTranslator) TranslateVMToEntity(ctx context.Context, vm country.VmJsonCountry) (*country.Country, error) {
	code := strings.ToUpper(strings.TrimSpace(vm.Code))

	var candidates []*country.Country
	stored, err := t.finder.FindByCode(ctx, code)
	switch {
	case err == nil && stored != nil:
		candidates = append(candidates, stored)
	case err != nil && !apperror.IsNotFound(err):
		return nil, fmt.Errorf("find country %s: %w", code, err)
	}

	res, existing := ResolveByKey(candidates,
		func(c *country.Country) bool { return strings.EqualFold(c.Code, code) },
		func(c *country.Country) id.ID { return c.ID },
	)

	out := &country.Country{ID: res.EntityID(), Code: code}
	if existing != nil {
		out.Audit = existing.Audit
	} else {
		out.Audit = entity.NewAudit("import")
	}
	owner := res.OwnerID()

	out.DialCodes = make([]*country.DialCode, 0, len(vm.DialCodes))
	seen := make(map[string]bool, len(vm.DialCodes))
	for _, raw := range vm.DialCodes {
		code := strings.TrimSpace(raw)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if existing != nil {
			if dc := existing.DialCode(code); dc != nil {
				out.DialCodes = append(out.DialCodes, &country.DialCode{ID: dc.ID, Code: dc.Code, CountryID: owner})
				continue
			}
		}
		out.DialCodes = append(out.DialCodes, &country.DialCode{ID: id.New(), Code: code, CountryID: owner})
	}

	out.Names = make([]*country.CountryName, 0, len(vm.Names))
	for _, n := range vm.Names {
		langID, err := t.types.Get(types.KindLanguage, strings.ToLower(n.Language))
		if err != nil {
			return nil, apperror.NewValidation("unknown language").
				WithDetail("country", code).WithDetail("language", n.Language).WithCause(err)
		}
		out.Names = append(out.Names, &country.CountryName{CountryID: owner, LocalizationID: langID, Name: n.Name})
	}
	return out, nil
}

// TranslateEntityToVM implements Translator.
func (t *CountryTranslator) TranslateEntityToVM(ctx context.Context, c *country.Country) (country.VmJsonCountry, error) {
	vm := country.VmJsonCountry{
		Code:      c.Code,
		DialCodes: make([]string, 0, len(c.DialCodes)),
		Names:     make([]country.VmJsonName, 0, len(c.Names)),
	}
	for _, dc := range c.DialCodes {
		vm.DialCodes = append(vm.DialCodes, dc.Code)
	}
	for _, n := range c.Names {
		lang, err := t.types.Code(types.KindLanguage, n.LocalizationID)
		if err != nil {
			return country.VmJsonCountry{}, err
		}
		vm.Names = append(vm.Names, country.VmJsonName{Language: lang, Name: n.Name})
	}
	return vm, nil
}
