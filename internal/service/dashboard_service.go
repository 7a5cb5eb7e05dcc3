// file: internal/service/dashboard_service.go
package service

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// metricsConcurrency bounds the back-offices computed in parallel.
const metricsConcurrency = 4

// DashboardService computes and serves the daily dashboard snapshots.
type DashboardService struct {
	catalog   port.CatalogRepository
	reports   port.ReportRepository
	dashboard port.DashboardRepository
	now       func() time.Time
}

func NewDashboardService(catalog port.CatalogRepository, reports port.ReportRepository, dashboard port.DashboardRepository) (*DashboardService, error) {
	if catalog == nil || reports == nil || dashboard == nil {
		return nil, errors.New("DashboardService: repositories must not be nil")
	}
	return &DashboardService{catalog: catalog, reports: reports, dashboard: dashboard, now: time.Now}, nil
}

// ComputeDaily stores today's metrics for every back-office that has none yet and
// returns how many back-offices were computed.
func (s *DashboardService) ComputeDaily(ctx context.Context) (int, error) {
	date := s.now().Format(domain.DateLayout)
	backOffices, err := s.catalog.ListUsersByRole(ctx, domain.RoleBackOffice)
	if err != nil {
		return 0, fmt.Errorf("list back-offices: %w", err)
	}

	var computed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metricsConcurrency)
	for _, bo := range backOffices {
		g.Go(func() error {
			done, err := s.dashboard.MetricsComputed(gctx, bo.ID, date)
			if err != nil {
				return err
			}
			if done {
				slog.Debug("dashboard metrics already computed", "back_office", bo.Email, "date", date)
				return nil
			}
			rows, err := s.reports.TableauDeBord(gctx, bo.Email)
			if err != nil {
				return fmt.Errorf("tableau de bord of %q: %w", bo.Email, err)
			}
			if err := s.dashboard.SaveMetrics(gctx, metricsFor(bo.ID, date, rows)); err != nil {
				return err
			}
			computed.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(computed.Load()), err
}

// metricsFor turns the per-famille tableau de bord into snapshot rows plus the
// cross-famille "all" row.
func metricsFor(backOfficeID int64, date string, rows []domain.TableauDeBord) []domain.DashboardMetric {
	out := make([]domain.DashboardMetric, 0, len(rows)+1)
	all := domain.DashboardMetric{BackOfficeID: backOfficeID, Famille: domain.DashboardAllFamilies, CalculationDate: date}
	for _, r := range rows {
		out = append(out, domain.DashboardMetric{
			BackOfficeID:              backOfficeID,
			Famille:                   r.FamilleProjet,
			CalculationDate:           date,
			MontantTotalBc:            r.MontantTotalBc,
			MontantClotureTerrain:     r.MontantClotureTerrain,
			TauxRealisation:           r.TauxRealisation,
			MontantReceptionneFacture: r.MontantReceptionneFacture,
			MontantDeposeSys:          r.MontantDeposeReceptionSys,
			MontantADeposeSys:         r.MontantADeposerReceptionSys,
		})
		all.MontantTotalBc += r.MontantTotalBc
		all.MontantClotureTerrain += r.MontantClotureTerrain
		all.MontantReceptionneFacture += r.MontantReceptionneFacture
		all.MontantDeposeSys += r.MontantDeposeReceptionSys
		all.MontantADeposeSys += r.MontantADeposerReceptionSys
	}
	if all.MontantTotalBc > 0 {
		all.TauxRealisation = math.Round(all.MontantClotureTerrain/all.MontantTotalBc*10000) / 10000
	}
	return append(out, all)
}

// Metrics returns the stored snapshots of a back-office for a famille ("all" when
// empty) between two dates inclusive.
func (s *DashboardService) Metrics(ctx context.Context, q *domain.MetricsQuery) ([]domain.DashboardMetric, error) {
	if q.StartDate > q.EndDate {
		return nil, fmt.Errorf("%w: start %s is after end %s", port.ErrInvalidInput, q.StartDate, q.EndDate)
	}
	u, err := s.catalog.FindUserByEmail(ctx, q.Email)
	if err != nil {
		return nil, err
	}
	famille := q.Famille
	if famille == "" {
		famille = domain.DashboardAllFamilies
	}
	return s.dashboard.ListMetrics(ctx, u.ID, famille, q.StartDate, q.EndDate)
}
