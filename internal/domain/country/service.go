package country

import (
	"context"
	"fmt"

	"ptv/internal/core/apperror"
	"ptv/internal/core/tx"
	"ptv/pkg/logger"
)

// Service imports and lists countries.
type Service struct {
	repo       Repository
	translator Translator
	txManager  tx.Manager
}

// NewService creates a new country service.
func NewService(repo Repository, translator Translator, txManager tx.Manager) *Service {
	return &Service{repo: repo, translator: translator, txManager: txManager}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int `json:"imported"`
}

// Import translates and stores every entry in one unit of work.
func (s *Service) Import(ctx context.Context, items []VmJsonCountry) (ImportResult, error) {
	var result ImportResult
	err := s.txManager.ExecuteWriter(ctx, func(ctx context.Context) error {
		seen := make(map[string]bool, len(items))
		for _, vm := range items {
			if seen[vm.Code] {
				return apperror.NewDuplicityCheck("country", "code", vm.Code)
			}
			seen[vm.Code] = true

			c, err := s.translator.TranslateVMToEntity(ctx, vm)
			if err != nil {
				return fmt.Errorf("translate country %s: %w", vm.Code, err)
			}
			if err := c.Validate(ctx); err != nil {
				return err
			}
			if err := s.repo.Save(ctx, c); err != nil {
				return fmt.Errorf("save country %s: %w", vm.Code, err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	logger.Info(ctx, "countries imported", "count", result.Imported)
	return result, nil
}

// List returns every country.
func (s *Service) List(ctx context.Context) ([]*Country, error) {
	var out []*Country
	err := s.txManager.ExecuteReader(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.List(ctx)
		return err
	})
	return out, err
}
