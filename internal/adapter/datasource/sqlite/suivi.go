// Package sqlite file: internal/adapter/datasource/sqlite/suivi.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const suiviTable = "suivi_prestation"

const suiviColumns = `sp.id, sp.prestation_id, sp.site_id, sp.zone_id, sp.coordinateur_id, sp.quantite_valide,
	sp.qte_realise, sp.qte_encours, sp.qte_tech, sp.qte_depose, sp.qteadepose, sp.qte_sys, sp.fournisseur,
	sp.date_planifiee, sp.date_go, sp.date_debut, sp.date_fin, sp.date_realisation, sp.statut_de_realisation,
	sp.date_recep_tech, sp.statut_de_recep_tech, sp.date_pf, sp.date_recep_sys, sp.statut_reception_system,
	sp.remarque, sp.delai_recep`

// ListSuivi returns suivi rows with their prestation, site, zone and coordinator.
// A coordinator scope wins over a back-office scope.
func (r *Repository) ListSuivi(ctx context.Context, scope port.Scope) ([]domain.SuiviPrestation, error) {
	rows := []domain.SuiviPrestation{}
	var err error
	switch {
	case scope.CoordinatorEmail != "":
		err = r.db.SelectContext(ctx, &rows, `SELECT `+suiviColumns+`
			FROM suivi_prestation sp
			JOIN utilisateurs c ON c.id = sp.coordinateur_id
			WHERE c.email = ?
			ORDER BY sp.id`, scope.CoordinatorEmail)
	case scope.BackOfficeEmail != "":
		err = r.db.SelectContext(ctx, &rows, `SELECT `+suiviColumns+`
			FROM suivi_prestation sp
			JOIN prestations p ON p.id = sp.prestation_id
			JOIN bon_de_commande bc ON bc.num_bc = p.bc_id
			JOIN utilisateurs u ON u.id = bc.back_office_id
			WHERE u.email = ?
			ORDER BY sp.id`, scope.BackOfficeEmail)
	default:
		err = r.db.SelectContext(ctx, &rows, `SELECT `+suiviColumns+` FROM suivi_prestation sp ORDER BY sp.id`)
	}
	if err != nil {
		return nil, mapError(err, "list suivi")
	}
	if err := r.hydrateSuivi(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) GetSuivi(ctx context.Context, id int64) (*domain.SuiviPrestation, error) {
	var s domain.SuiviPrestation
	if err := r.db.GetContext(ctx, &s, `SELECT `+suiviColumns+` FROM suivi_prestation sp WHERE sp.id = ?`, id); err != nil {
		return nil, mapError(err, fmt.Sprintf("get suivi %d", id))
	}
	one := []domain.SuiviPrestation{s}
	if err := r.hydrateSuivi(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *Repository) hydrateSuivi(ctx context.Context, rows []domain.SuiviPrestation) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, s := range rows {
		if _, ok := seen[s.PrestationID]; !ok {
			seen[s.PrestationID] = struct{}{}
			ids = append(ids, s.PrestationID)
		}
	}
	prestations, err := r.prestationsByID(ctx, ids)
	if err != nil {
		return err
	}
	sites, err := r.siteIndex(ctx)
	if err != nil {
		return err
	}
	zones, err := r.zoneIndex(ctx)
	if err != nil {
		return err
	}
	users, err := r.usersByID(ctx, collectIDs(rows, func(s *domain.SuiviPrestation) *int64 { return s.CoordinateurID }))
	if err != nil {
		return err
	}
	for i := range rows {
		s := &rows[i]
		if p, ok := prestations[s.PrestationID]; ok {
			s.Prestation = p
			s.BcNum = p.BcID
		}
		if s.SiteID != nil {
			s.Site = sites[*s.SiteID]
		}
		if s.ZoneID != nil {
			s.Zone = zones[*s.ZoneID]
		}
		if s.CoordinateurID != nil {
			s.Coordinateur = users[*s.CoordinateurID]
		}
	}
	return nil
}

// CreateSuivi inserts a suivi for prestationID with the given column values.
func (r *Repository) CreateSuivi(ctx context.Context, prestationID string, fields map[string]any) (int64, error) {
	data, err := r.coerceFields(ctx, suiviTable, fields, "id", "prestation_id")
	if err != nil {
		return 0, err
	}
	data["prestation_id"] = prestationID
	query, args, err := buildInsertSQL(suiviTable, data)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, fmt.Sprintf("create suivi for prestation %q", prestationID))
	}
	return res.LastInsertId()
}

// UpdateSuivi applies a partial update. An empty field map only checks existence.
func (r *Repository) UpdateSuivi(ctx context.Context, id int64, fields map[string]any) error {
	if _, err := r.tableColumns(ctx, suiviTable); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return r.updateSuiviTx(ctx, tx, id, fields)
	})
}

// BulkUpdateSuivi applies every partial update in one transaction; any failure
// rolls back the whole batch.
func (r *Repository) BulkUpdateSuivi(ctx context.Context, items []domain.SuiviBulkItem) error {
	if len(items) == 0 {
		return nil
	}
	// column metadata is read outside the transaction's connection
	if _, err := r.tableColumns(ctx, suiviTable); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, it := range items {
			if err := r.updateSuiviTx(ctx, tx, it.ID, it.Fields); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) updateSuiviTx(ctx context.Context, tx *sqlx.Tx, id int64, fields map[string]any) error {
	data, err := r.coerceFields(ctx, suiviTable, fields, "id", "prestation_id")
	if err != nil {
		return fmt.Errorf("suivi %d: %w", id, err)
	}
	what := fmt.Sprintf("update suivi %d", id)
	if len(data) == 0 {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT 1 FROM suivi_prestation WHERE id = ?`, id); err != nil {
			return mapError(err, what)
		}
		return nil
	}
	query, args, err := buildUpdateSQL(suiviTable, data, []condition{{Field: "id", Value: id}})
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, what)
	}
	return expectAffected(res, what)
}
