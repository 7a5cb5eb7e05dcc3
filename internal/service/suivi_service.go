// file: internal/service/suivi_service.go
package service

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"errors"
	"fmt"
)

var suiviDatasets = []string{
	domain.DatasetSuivi, domain.DatasetBcSummary, domain.DatasetBcDetail, domain.DatasetTableauDeBord,
}

// SuiviService tracks the fulfilment of prestations.
type SuiviService struct {
	suivi port.SuiviRepository
	views port.ViewInvalidator
}

func NewSuiviService(suivi port.SuiviRepository, views port.ViewInvalidator) (*SuiviService, error) {
	if suivi == nil {
		return nil, errors.New("SuiviService: repository must not be nil")
	}
	if views == nil {
		views = noopInvalidator{}
	}
	return &SuiviService{suivi: suivi, views: views}, nil
}

// List returns the suivi rows for a scope; the coordinator e-mail wins over the
// back-office one.
func (s *SuiviService) List(ctx context.Context, scope port.Scope) ([]domain.SuiviPrestation, error) {
	return s.suivi.ListSuivi(ctx, scope)
}

func (s *SuiviService) Get(ctx context.Context, id int64) (*domain.SuiviPrestation, error) {
	return s.suivi.GetSuivi(ctx, id)
}

func (s *SuiviService) Create(ctx context.Context, req *domain.SuiviRequest) (*domain.SuiviPrestation, error) {
	if req.PrestationID == "" {
		return nil, fmt.Errorf("%w: prestation_id is required", port.ErrInvalidInput)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	id, err := s.suivi.CreateSuivi(ctx, req.PrestationID, req.Fields)
	if err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(suiviDatasets...)
	return s.suivi.GetSuivi(ctx, id)
}

// Update applies a partial field map to one suivi.
func (s *SuiviService) Update(ctx context.Context, id int64, fields map[string]any) (*domain.SuiviPrestation, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	if err := s.suivi.UpdateSuivi(ctx, id, fields); err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(suiviDatasets...)
	return s.suivi.GetSuivi(ctx, id)
}

// BulkUpdate applies every item in one transaction; nothing is written if one fails.
func (s *SuiviService) BulkUpdate(ctx context.Context, items []domain.SuiviBulkItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no suivi to update", port.ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if err := validateRequest(&it); err != nil {
			return err
		}
		if err := validateFields(it.Fields); err != nil {
			return fmt.Errorf("suivi %d: %w", it.ID, err)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: suivi %d appears twice", port.ErrInvalidInput, it.ID)
		}
		seen[it.ID] = true
	}
	if err := s.suivi.BulkUpdateSuivi(ctx, items); err != nil {
		return err
	}
	s.views.InvalidateDatasets(suiviDatasets...)
	return nil
}
