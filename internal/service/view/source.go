// Package view serves the tabular screens: it keeps one data store per screen and
// scope, and runs the search, filter, sort and pagination pipeline per request.
// file: internal/service/view/source.go
package view

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/tableview"
	"context"
	"fmt"
)

// RemoteRows loads a URL-sourced screen.
type RemoteRows interface {
	Rows(ctx context.Context, src domain.ScreenSource) ([]tableview.Row, error)
}

// Repositories groups the ports the built-in datasets read from.
type Repositories struct {
	Catalog port.CatalogRepository
	Bcs     port.BonDeCommandeRepository
	Reports port.ReportRepository
	Suivi   port.SuiviRepository
	Ots     port.OtRepository
}

// Source dispatches a screen to its built-in dataset or to its remote endpoint.
type Source struct {
	repos  Repositories
	remote RemoteRows
}

var _ port.RowSource = (*Source)(nil)

// NewSource builds a Source. remote may be nil when no screen uses a URL.
func NewSource(repos Repositories, remote RemoteRows) *Source {
	return &Source{repos: repos, remote: remote}
}

func (s *Source) Rows(ctx context.Context, def *domain.ScreenDefinition, scope port.Scope) ([]tableview.Row, error) {
	if def.Source.URL != "" {
		if s.remote == nil {
			return nil, fmt.Errorf("%w: screen %q: no remote fetcher configured", port.ErrFetchFailed, def.Name)
		}
		return s.remote.Rows(ctx, def.Source)
	}
	if !def.Source.Scoped {
		scope = port.Scope{}
	}
	data, err := s.dataset(ctx, def.Source.Dataset, scope)
	if err != nil {
		return nil, err
	}
	return tableview.RowsFrom(data)
}

func (s *Source) dataset(ctx context.Context, name string, scope port.Scope) (any, error) {
	r := s.repos
	switch name {
	case domain.DatasetBonsDeCommande:
		return r.Bcs.ListBonDeCommandes(ctx, port.Scope{BackOfficeEmail: scope.BackOfficeEmail})
	case domain.DatasetBcSummary:
		return r.Reports.BcSummaries(ctx, scope.BackOfficeEmail)
	case domain.DatasetBcDetail:
		return r.Reports.BcDetails(ctx, scope.BackOfficeEmail)
	case domain.DatasetTableauDeBord:
		return r.Reports.TableauDeBord(ctx, scope.BackOfficeEmail)
	case domain.DatasetPrestations:
		return r.Bcs.ListPrestations(ctx, "")
	case domain.DatasetSuivi:
		return r.Suivi.ListSuivi(ctx, scope)
	case domain.DatasetOts:
		return r.Ots.ListOts(ctx, port.Scope{BackOfficeEmail: scope.BackOfficeEmail})
	case domain.DatasetSites:
		return r.Catalog.ListSites(ctx)
	case domain.DatasetServices:
		return r.Catalog.ListServices(ctx, nil)
	}
	return nil, fmt.Errorf("%w: unknown dataset %q", port.ErrUnknownScreen, name)
}
