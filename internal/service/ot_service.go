// file: internal/service/ot_service.go
package service

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var otDatasets = []string{domain.DatasetOts}

// OtService handles ordres de travail.
type OtService struct {
	ots     port.OtRepository
	catalog port.CatalogRepository
	reports port.ReportRepository
	views   port.ViewInvalidator
}

func NewOtService(ots port.OtRepository, catalog port.CatalogRepository, reports port.ReportRepository, views port.ViewInvalidator) (*OtService, error) {
	if ots == nil || catalog == nil || reports == nil {
		return nil, errors.New("OtService: repositories must not be nil")
	}
	if views == nil {
		views = noopInvalidator{}
	}
	return &OtService{ots: ots, catalog: catalog, reports: reports, views: views}, nil
}

// otLine merges the free-form fields of a line request onto an OtPrestation, then the
// typed request fields on top. Unknown field names are rejected.
func otLine(req domain.OtPrestationRequest) (domain.OtPrestation, error) {
	var line domain.OtPrestation
	if len(req.Fields) > 0 {
		raw, err := json.Marshal(req.Fields)
		if err != nil {
			return line, fmt.Errorf("%w: %v", port.ErrInvalidInput, err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&line); err != nil {
			return line, fmt.Errorf("%w: line fields: %v", port.ErrInvalidInput, err)
		}
	}
	line.ID = 0
	line.OtID = ""
	line.Service = nil
	if req.NumLigne != nil {
		line.NumLigne = req.NumLigne
	}
	if req.QuantiteValide != nil {
		line.QuantiteValide = req.QuantiteValide
	}
	if req.ServiceID != nil {
		line.ServiceID = req.ServiceID
	}
	if req.Famille != nil {
		line.Famille = req.Famille
	}
	if req.CoordinateurID != nil {
		line.CoordinateurID = req.CoordinateurID
	}
	return line, nil
}

func (s *OtService) fromRequest(ctx context.Context, req *domain.OtRequest) (*domain.Ot, error) {
	numOt := strings.TrimSpace(req.NumOt)
	if numOt == "" {
		return nil, fmt.Errorf("%w: num_ot is required", port.ErrInvalidInput)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	boID, err := resolveBackOffice(ctx, s.catalog, req.BackOfficeEmail)
	if err != nil {
		return nil, err
	}
	ot := &domain.Ot{
		NumOt:          numOt,
		DivisionProjet: req.DivisionProjet,
		CodeProjet:     req.CodeProjet,
		ZoneID:         req.ZoneID,
		SiteID:         req.SiteID,
		DateGo:         req.DateGo,
		BackOfficeID:   boID,
		Prestations:    make([]domain.OtPrestation, 0, len(req.Prestations)),
	}
	for i, p := range req.Prestations {
		line, err := otLine(p)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		ot.Prestations = append(ot.Prestations, line)
	}
	return ot, nil
}

func (s *OtService) Create(ctx context.Context, req *domain.OtRequest) (*domain.Ot, error) {
	ot, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.ots.CreateOt(ctx, ot); err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(otDatasets...)
	return s.ots.GetOt(ctx, ot.NumOt)
}

// List returns every OT, or those of one back-office when email is set.
func (s *OtService) List(ctx context.Context, email string) ([]domain.Ot, error) {
	return s.ots.ListOts(ctx, port.Scope{BackOfficeEmail: email})
}

func (s *OtService) Get(ctx context.Context, numOt string) (*domain.Ot, error) {
	return s.ots.GetOt(ctx, numOt)
}

// Update replaces the header and lines of numOt. The bon de commande link is kept.
func (s *OtService) Update(ctx context.Context, numOt string, req *domain.OtRequest) (*domain.Ot, error) {
	if req.NumOt != "" && req.NumOt != numOt {
		return nil, fmt.Errorf("%w: num_ot %q does not match %q", port.ErrInvalidInput, req.NumOt, numOt)
	}
	current, err := s.ots.GetOt(ctx, numOt)
	if err != nil {
		return nil, err
	}
	req.NumOt = numOt
	ot, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	ot.BcID = current.BcID
	if err := s.ots.UpdateOt(ctx, ot); err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(otDatasets...)
	return s.ots.GetOt(ctx, numOt)
}

func (s *OtService) BulkUpdate(ctx context.Context, items []domain.OtBulkItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no ot to update", port.ErrInvalidInput)
	}
	for i := range items {
		if err := validateRequest(&items[i]); err != nil {
			return err
		}
		if err := validateFields(items[i].Fields); err != nil {
			return fmt.Errorf("ot %q: %w", items[i].NumOt, err)
		}
	}
	if err := s.ots.BulkUpdateOts(ctx, items); err != nil {
		return err
	}
	s.views.InvalidateDatasets(otDatasets...)
	return nil
}

// Link attaches OTs to a bon de commande and returns how many were linked.
func (s *OtService) Link(ctx context.Context, req *domain.LinkOtsRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	n, err := s.ots.LinkOts(ctx, req.NumBc, req.NumOts)
	if err != nil {
		return 0, err
	}
	s.views.InvalidateDatasets(otDatasets...)
	return n, nil
}

// Metrics sums the OT line costs of a back-office.
func (s *OtService) Metrics(ctx context.Context, email string) (*domain.OtMetrics, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", port.ErrInvalidInput)
	}
	return s.reports.OtMetrics(ctx, email)
}
