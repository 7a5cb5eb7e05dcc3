// file: internal/service/catalog_service.go
package service

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"errors"
	"fmt"
	"strings"
)

// CatalogService exposes zones, sites, familles and the service catalog.
type CatalogService struct {
	catalog port.CatalogRepository
	views   port.ViewInvalidator
}

func NewCatalogService(catalog port.CatalogRepository, views port.ViewInvalidator) (*CatalogService, error) {
	if catalog == nil {
		return nil, errors.New("CatalogService: repository must not be nil")
	}
	if views == nil {
		views = noopInvalidator{}
	}
	return &CatalogService{catalog: catalog, views: views}, nil
}

func (s *CatalogService) Zones(ctx context.Context) ([]domain.Zone, error) {
	return s.catalog.ListZones(ctx)
}

func (s *CatalogService) Sites(ctx context.Context) ([]domain.Site, error) {
	return s.catalog.ListSites(ctx)
}

func (s *CatalogService) Familles(ctx context.Context) ([]domain.Famille, error) {
	return s.catalog.ListFamilles(ctx)
}

func (s *CatalogService) CreateFamille(ctx context.Context, req *domain.FamilleRequest) (*domain.Famille, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", port.ErrInvalidInput)
	}
	f, err := s.catalog.CreateFamille(ctx, name)
	if err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(domain.DatasetServices)
	return f, nil
}

// Services lists the catalog, optionally restricted to one famille.
func (s *CatalogService) Services(ctx context.Context, familleID *int64) ([]domain.Service, error) {
	return s.catalog.ListServices(ctx, familleID)
}

func (s *CatalogService) CreateService(ctx context.Context, req *domain.ServiceRequest) (*domain.Service, error) {
	ref := strings.TrimSpace(req.RefAuxigene)
	if ref == "" {
		return nil, fmt.Errorf("%w: ref_auxigene is required", port.ErrInvalidInput)
	}
	if req.Prix < 0 {
		return nil, fmt.Errorf("%w: prix must not be negative", port.ErrInvalidInput)
	}
	svc := &domain.Service{
		FamilleID:        req.FamilleID,
		RefAuxigene:      ref,
		Description:      req.Description,
		Unite:            req.Unite,
		Type:             req.Type,
		Prix:             req.Prix,
		Remarque:         req.Remarque,
		ModeleTechnique:  req.ModeleTechnique,
		TypeMateriel:     req.TypeMateriel,
		Specification:    req.Specification,
		FamilleTechnique: req.FamilleTechnique,
	}
	if err := s.catalog.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	s.views.InvalidateDatasets(domain.DatasetServices)
	return svc, nil
}

// BackOfficeEmails lists the e-mail of every back-office user; chef de projet
// screens pick the scope from it.
func (s *CatalogService) BackOfficeEmails(ctx context.Context) ([]string, error) {
	users, err := s.catalog.ListUsersByRole(ctx, domain.RoleBackOffice)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func (s *CatalogService) UserIDByEmail(ctx context.Context, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", port.ErrInvalidInput)
	}
	u, err := s.catalog.FindUserByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
