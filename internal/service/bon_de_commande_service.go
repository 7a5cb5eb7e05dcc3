// file: internal/service/bon_de_commande_service.go
package service

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"errors"
	"fmt"
	"strings"
)

// bcDatasets are the views whose rows depend on bons de commande and their lines.
var bcDatasets = []string{
	domain.DatasetBonsDeCommande, domain.DatasetBcSummary, domain.DatasetBcDetail,
	domain.DatasetPrestations, domain.DatasetTableauDeBord, domain.DatasetSuivi, domain.DatasetOts,
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateDatasets(...string) {}

// BonDeCommandeService handles bons de commande, their lines and the amount reports.
type BonDeCommandeService struct {
	bcs     port.BonDeCommandeRepository
	catalog port.CatalogRepository
	reports port.ReportRepository
	views   port.ViewInvalidator
}

// NewBonDeCommandeService wires the service. views may be nil.
func NewBonDeCommandeService(bcs port.BonDeCommandeRepository, catalog port.CatalogRepository, reports port.ReportRepository, views port.ViewInvalidator) (*BonDeCommandeService, error) {
	if bcs == nil || catalog == nil || reports == nil {
		return nil, errors.New("BonDeCommandeService: repositories must not be nil")
	}
	if views == nil {
		views = noopInvalidator{}
	}
	return &BonDeCommandeService{bcs: bcs, catalog: catalog, reports: reports, views: views}, nil
}

// resolveBackOffice maps an e-mail onto the id of a back-office user. An empty e-mail
// clears the assignment.
func resolveBackOffice(ctx context.Context, catalog port.CatalogRepository, email string) (*int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	u, err := catalog.FindUserByEmail(ctx, email)
	if errors.Is(err, port.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown back-office %q", port.ErrInvalidInput, email)
	}
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleBackOffice {
		return nil, fmt.Errorf("%w: %q is not a back-office user", port.ErrInvalidInput, email)
	}
	id := u.ID
	return &id, nil
}

func (s *BonDeCommandeService) fromRequest(ctx context.Context, req *domain.BonDeCommandeRequest) (*domain.BonDeCommande, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	boID, err := resolveBackOffice(ctx, s.catalog, req.BackOfficeEmail)
	if err != nil {
		return nil, err
	}
	bc := &domain.BonDeCommande{
		NumBc:                strings.TrimSpace(req.NumBc),
		DivisionProjet:       req.DivisionProjet,
		CodeProjet:           req.CodeProjet,
		Description:          req.Description,
		DateEdition:          req.DateEdition,
		NumProjetFacturation: req.NumProjetFacturation,
		NumPvReception:       req.NumPvReception,
		BackOfficeID:         boID,
		Prestations:          make([]domain.Prestation, 0, len(req.Prestations)),
	}
	if bc.NumBc == "" {
		return nil, fmt.Errorf("%w: num_bc is required", port.ErrInvalidInput)
	}
	for i, p := range req.Prestations {
		if p.QteBc < 0 {
			return nil, fmt.Errorf("%w: line %d has a negative quantity", port.ErrInvalidInput, i)
		}
		numLigne := p.NumLigne
		if numLigne == 0 {
			numLigne = i + 1
		}
		bc.Prestations = append(bc.Prestations, domain.Prestation{
			ID:          p.ID,
			NumLigne:    numLigne,
			Famille:     p.Famille,
			Description: p.Description,
			Fournisseur: p.Fournisseur,
			QteBc:       p.QteBc,
			ServiceID:   p.ServiceID,
		})
	}
	return bc, nil
}

func (s *BonDeCommandeService) Create(ctx context.Context, req *domain.BonDeCommandeRequest) (*domain.BonDeCommande, error) {
	bc, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.bcs.CreateBonDeCommande(ctx, bc); err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(bcDatasets...)
	return s.bcs.GetBonDeCommande(ctx, bc.NumBc)
}

// List returns every bon de commande, or those of one back-office when email is set.
func (s *BonDeCommandeService) List(ctx context.Context, email string) ([]domain.BonDeCommande, error) {
	return s.bcs.ListBonDeCommandes(ctx, port.Scope{BackOfficeEmail: email})
}

func (s *BonDeCommandeService) Get(ctx context.Context, numBc string) (*domain.BonDeCommande, error) {
	return s.bcs.GetBonDeCommande(ctx, numBc)
}

// Update replaces the header and reconciles the lines of numBc.
func (s *BonDeCommandeService) Update(ctx context.Context, numBc string, req *domain.BonDeCommandeRequest) (*domain.BonDeCommande, error) {
	if req.NumBc != "" && req.NumBc != numBc {
		return nil, fmt.Errorf("%w: num_bc %q does not match %q", port.ErrInvalidInput, req.NumBc, numBc)
	}
	req.NumBc = numBc
	bc, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.bcs.UpdateBonDeCommande(ctx, bc); err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(bcDatasets...)
	return s.bcs.GetBonDeCommande(ctx, numBc)
}

// Delete removes a bon de commande with its lines and suivi, and detaches its OTs.
func (s *BonDeCommandeService) Delete(ctx context.Context, numBc string) error {
	if err := s.bcs.DeleteBonDeCommande(ctx, numBc); err != nil {
		return err
	}
	s.views.InvalidateDatasets(bcDatasets...)
	return nil
}

// Prestations lists the lines of numBc, or of every bon de commande when numBc is empty.
func (s *BonDeCommandeService) Prestations(ctx context.Context, numBc string) ([]domain.Prestation, error) {
	if numBc != "" {
		if _, err := s.bcs.GetBonDeCommande(ctx, numBc); err != nil {
			return nil, err
		}
	}
	return s.bcs.ListPrestations(ctx, numBc)
}

func (s *BonDeCommandeService) Services(ctx context.Context, numBc string) ([]domain.ServiceSummary, error) {
	if _, err := s.bcs.GetBonDeCommande(ctx, numBc); err != nil {
		return nil, err
	}
	return s.bcs.ListServicesOfBc(ctx, numBc)
}

func (s *BonDeCommandeService) Summaries(ctx context.Context, email string) ([]domain.BcSummary, error) {
	return s.reports.BcSummaries(ctx, email)
}

func (s *BonDeCommandeService) Details(ctx context.Context, email string) ([]domain.BcDetail, error) {
	return s.reports.BcDetails(ctx, email)
}

func (s *BonDeCommandeService) TableauDeBord(ctx context.Context, email string) ([]domain.TableauDeBord, error) {
	return s.reports.TableauDeBord(ctx, email)
}
