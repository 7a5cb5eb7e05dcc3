// Package sqlite file: internal/adapter/datasource/sqlite/ot.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const otTable = "ots"

const otColumns = `o.num_ot, o.division_projet, o.code_projet, o.zone_id, o.site_id, o.date_go, o.back_office_id, o.bc_id`

const otLineColumns = `id, ot_id, num_ligne, quantite_valide, service_id, famille, coordinateur_id, fournisseur,
	date_planifiee, date_go, date_debut, date_fin, date_realisation, statut_de_realisation,
	date_recep_tech, statut_de_recep_tech, date_pf, date_recep_sys, statut_reception_system,
	remarque, qte_realise, qte_encours, delai_recep`

const insertOtLine = `INSERT INTO ot_prestations
	(ot_id, num_ligne, quantite_valide, service_id, famille, coordinateur_id, fournisseur,
	date_planifiee, date_go, date_debut, date_fin, date_realisation, statut_de_realisation,
	date_recep_tech, statut_de_recep_tech, date_pf, date_recep_sys, statut_reception_system,
	remarque, qte_realise, qte_encours, delai_recep)
	VALUES (:ot_id, :num_ligne, :quantite_valide, :service_id, :famille, :coordinateur_id, :fournisseur,
	:date_planifiee, :date_go, :date_debut, :date_fin, :date_realisation, :statut_de_realisation,
	:date_recep_tech, :statut_de_recep_tech, :date_pf, :date_recep_sys, :statut_reception_system,
	:remarque, :qte_realise, :qte_encours, :delai_recep)`

// CreateOt inserts an ordre de travail with its lines.
func (r *Repository) CreateOt(ctx context.Context, ot *domain.Ot) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO ots
			(num_ot, division_projet, code_projet, zone_id, site_id, date_go, back_office_id, bc_id)
			VALUES (:num_ot, :division_projet, :code_projet, :zone_id, :site_id, :date_go, :back_office_id, :bc_id)`, ot); err != nil {
			return mapError(err, fmt.Sprintf("create ot %q", ot.NumOt))
		}
		return insertOtLines(ctx, tx, ot)
	})
}

func insertOtLines(ctx context.Context, tx *sqlx.Tx, ot *domain.Ot) error {
	for i := range ot.Prestations {
		line := &ot.Prestations[i]
		line.OtID = ot.NumOt
		res, err := tx.NamedExecContext(ctx, insertOtLine, line)
		if err != nil {
			return mapError(err, fmt.Sprintf("insert line %d of ot %q", i, ot.NumOt))
		}
		if id, err := res.LastInsertId(); err == nil {
			line.ID = id
		}
	}
	return nil
}

// ListOts returns the OTs, optionally of one back-office, with zone, site and lines.
func (r *Repository) ListOts(ctx context.Context, scope port.Scope) ([]domain.Ot, error) {
	ots := []domain.Ot{}
	err := r.db.SelectContext(ctx, &ots, `SELECT `+otColumns+`
		FROM ots o
		LEFT JOIN utilisateurs u ON u.id = o.back_office_id
		WHERE (? = '' OR u.email = ?)
		ORDER BY o.num_ot`, scope.BackOfficeEmail, scope.BackOfficeEmail)
	if err != nil {
		return nil, mapError(err, "list ots")
	}
	if err := r.hydrateOts(ctx, ots); err != nil {
		return nil, err
	}
	return ots, nil
}

func (r *Repository) GetOt(ctx context.Context, numOt string) (*domain.Ot, error) {
	var ot domain.Ot
	if err := r.db.GetContext(ctx, &ot, `SELECT `+otColumns+` FROM ots o WHERE o.num_ot = ?`, numOt); err != nil {
		return nil, mapError(err, fmt.Sprintf("get ot %q", numOt))
	}
	one := []domain.Ot{ot}
	if err := r.hydrateOts(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *Repository) hydrateOts(ctx context.Context, ots []domain.Ot) error {
	if len(ots) == 0 {
		return nil
	}
	nums := make([]string, len(ots))
	for i := range ots {
		nums[i] = ots[i].NumOt
	}
	query, args, err := sqlx.In(`SELECT `+otLineColumns+` FROM ot_prestations WHERE ot_id IN (?) ORDER BY ot_id, id`, nums)
	if err != nil {
		return err
	}
	lines := []domain.OtPrestation{}
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(query), args...); err != nil {
		return mapError(err, "load ot lines")
	}
	services, err := r.servicesByID(ctx, collectIDs(lines, func(l *domain.OtPrestation) *int64 { return l.ServiceID }))
	if err != nil {
		return err
	}
	byOt := make(map[string][]domain.OtPrestation, len(ots))
	for _, l := range lines {
		if l.ServiceID != nil {
			l.Service = services[*l.ServiceID]
		}
		byOt[l.OtID] = append(byOt[l.OtID], l)
	}
	sites, err := r.siteIndex(ctx)
	if err != nil {
		return err
	}
	zones, err := r.zoneIndex(ctx)
	if err != nil {
		return err
	}
	for i := range ots {
		ot := &ots[i]
		ot.Prestations = byOt[ot.NumOt]
		if ot.Prestations == nil {
			ot.Prestations = []domain.OtPrestation{}
		}
		if ot.SiteID != nil {
			ot.Site = sites[*ot.SiteID]
		}
		if ot.ZoneID != nil {
			ot.Zone = zones[*ot.ZoneID]
		}
	}
	return nil
}

// UpdateOt replaces the header and every line of an OT.
func (r *Repository) UpdateOt(ctx context.Context, ot *domain.Ot) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		what := fmt.Sprintf("update ot %q", ot.NumOt)
		res, err := tx.NamedExecContext(ctx, `UPDATE ots SET
			division_projet = :division_projet, code_projet = :code_projet, zone_id = :zone_id,
			site_id = :site_id, date_go = :date_go, back_office_id = :back_office_id, bc_id = :bc_id
			WHERE num_ot = :num_ot`, ot)
		if err != nil {
			return mapError(err, what)
		}
		if err := expectAffected(res, what); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM ot_prestations WHERE ot_id = ?`, ot.NumOt); err != nil {
			return mapError(err, what)
		}
		return insertOtLines(ctx, tx, ot)
	})
}

// BulkUpdateOts applies partial header updates in one transaction.
func (r *Repository) BulkUpdateOts(ctx context.Context, items []domain.OtBulkItem) error {
	if len(items) == 0 {
		return nil
	}
	if _, err := r.tableColumns(ctx, otTable); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, it := range items {
			data, err := r.coerceFields(ctx, otTable, it.Fields, "num_ot")
			if err != nil {
				return fmt.Errorf("ot %q: %w", it.NumOt, err)
			}
			if len(data) == 0 {
				continue
			}
			query, args, err := buildUpdateSQL(otTable, data, []condition{{Field: "num_ot", Value: it.NumOt}})
			if err != nil {
				return err
			}
			what := fmt.Sprintf("update ot %q", it.NumOt)
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return mapError(err, what)
			}
			if err := expectAffected(res, what); err != nil {
				return err
			}
		}
		return nil
	})
}

// LinkOts attaches the given OTs to a bon de commande and returns how many were linked.
func (r *Repository) LinkOts(ctx context.Context, numBc string, numOts []string) (int64, error) {
	if len(numOts) == 0 {
		return 0, nil
	}
	var linked int64
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT 1 FROM bon_de_commande WHERE num_bc = ?`, numBc); err != nil {
			return mapError(err, fmt.Sprintf("link ots to %q", numBc))
		}
		query, args, err := sqlx.In(`UPDATE ots SET bc_id = ? WHERE num_ot IN (?)`, numBc, numOts)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return mapError(err, fmt.Sprintf("link ots to %q", numBc))
		}
		linked, err = res.RowsAffected()
		return err
	})
	return linked, err
}
