// Package sqlite file: internal/adapter/datasource/sqlite/dashboard.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// MetricsComputed reports whether metrics exist for the back-office on date.
func (r *Repository) MetricsComputed(ctx context.Context, backOfficeID int64, date string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM dashboard_metrics WHERE back_office_id = ? AND calculation_date = ?`, backOfficeID, date)
	if err != nil {
		return false, mapError(err, "check dashboard metrics")
	}
	return n > 0, nil
}

// SaveMetrics upserts one snapshot batch.
func (r *Repository) SaveMetrics(ctx context.Context, metrics []domain.DashboardMetric) error {
	if len(metrics) == 0 {
		return nil
	}
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for i := range metrics {
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO dashboard_metrics
				(back_office_id, famille, calculation_date, montant_total_bc, montant_cloture_terrain, taux_realisation,
				 montant_receptionne_facture, montant_depose_sys, montant_a_depose_sys)
				VALUES (:back_office_id, :famille, :calculation_date, :montant_total_bc, :montant_cloture_terrain, :taux_realisation,
				 :montant_receptionne_facture, :montant_depose_sys, :montant_a_depose_sys)
				ON CONFLICT (back_office_id, famille, calculation_date) DO UPDATE SET
					montant_total_bc = excluded.montant_total_bc,
					montant_cloture_terrain = excluded.montant_cloture_terrain,
					taux_realisation = excluded.taux_realisation,
					montant_receptionne_facture = excluded.montant_receptionne_facture,
					montant_depose_sys = excluded.montant_depose_sys,
					montant_a_depose_sys = excluded.montant_a_depose_sys`, &metrics[i]); err != nil {
				return mapError(err, fmt.Sprintf("save metrics %s/%s", metrics[i].Famille, metrics[i].CalculationDate))
			}
		}
		return nil
	})
}

// ListMetrics returns the snapshots of a back-office and famille between start and end inclusive.
func (r *Repository) ListMetrics(ctx context.Context, backOfficeID int64, famille, start, end string) ([]domain.DashboardMetric, error) {
	out := []domain.DashboardMetric{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, back_office_id, famille, calculation_date, montant_total_bc,
			montant_cloture_terrain, taux_realisation, montant_receptionne_facture, montant_depose_sys, montant_a_depose_sys
		FROM dashboard_metrics
		WHERE back_office_id = ? AND famille = ? AND calculation_date BETWEEN ? AND ?
		ORDER BY calculation_date`, backOfficeID, famille, start, end)
	if err != nil {
		return nil, mapError(err, "list dashboard metrics")
	}
	return out, nil
}
