// Package sqlite file: internal/adapter/datasource/sqlite/bon_de_commande.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const bcColumns = `bc.num_bc, bc.division_projet, bc.code_projet, bc.description, bc.date_edition,
	bc.num_projet_facturation, bc.num_pv_reception, bc.back_office_id`

const prestationColumns = `id, bc_id, num_ligne, famille, description, fournisseur, qte_bc, service_id`

// CreateBonDeCommande inserts the header and its lines in one transaction.
// Lines without an id get a new UUID.
func (r *Repository) CreateBonDeCommande(ctx context.Context, bc *domain.BonDeCommande) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO bon_de_commande
			(num_bc, division_projet, code_projet, description, date_edition, num_projet_facturation, num_pv_reception, back_office_id)
			VALUES (:num_bc, :division_projet, :code_projet, :description, :date_edition, :num_projet_facturation, :num_pv_reception, :back_office_id)`, bc); err != nil {
			return mapError(err, fmt.Sprintf("create bon de commande %q", bc.NumBc))
		}
		for i := range bc.Prestations {
			if err := insertPrestation(ctx, tx, bc.NumBc, &bc.Prestations[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertPrestation(ctx context.Context, tx *sqlx.Tx, numBc string, p *domain.Prestation) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.BcID = numBc
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO prestations
		(id, bc_id, num_ligne, famille, description, fournisseur, qte_bc, service_id)
		VALUES (:id, :bc_id, :num_ligne, :famille, :description, :fournisseur, :qte_bc, :service_id)`, p); err != nil {
		return mapError(err, fmt.Sprintf("insert prestation line %d of %q", p.NumLigne, numBc))
	}
	return nil
}

// ListBonDeCommandes returns headers with their lines, optionally for one back-office.
func (r *Repository) ListBonDeCommandes(ctx context.Context, scope port.Scope) ([]domain.BonDeCommande, error) {
	bcs := []domain.BonDeCommande{}
	err := r.db.SelectContext(ctx, &bcs, `SELECT `+bcColumns+`
		FROM bon_de_commande bc
		LEFT JOIN utilisateurs u ON u.id = bc.back_office_id
		WHERE (? = '' OR u.email = ?)
		ORDER BY bc.num_bc`, scope.BackOfficeEmail, scope.BackOfficeEmail)
	if err != nil {
		return nil, mapError(err, "list bons de commande")
	}
	if len(bcs) == 0 {
		return bcs, nil
	}

	lines, err := r.ListPrestations(ctx, "")
	if err != nil {
		return nil, err
	}
	byBc := make(map[string][]domain.Prestation)
	for _, p := range lines {
		byBc[p.BcID] = append(byBc[p.BcID], p)
	}
	users, err := r.usersByID(ctx, collectIDs(bcs, func(b *domain.BonDeCommande) *int64 { return b.BackOfficeID }))
	if err != nil {
		return nil, err
	}
	for i := range bcs {
		bcs[i].Prestations = byBc[bcs[i].NumBc]
		if bcs[i].Prestations == nil {
			bcs[i].Prestations = []domain.Prestation{}
		}
		if bcs[i].BackOfficeID != nil {
			bcs[i].BackOffice = users[*bcs[i].BackOfficeID]
		}
	}
	return bcs, nil
}

func (r *Repository) GetBonDeCommande(ctx context.Context, numBc string) (*domain.BonDeCommande, error) {
	var bc domain.BonDeCommande
	if err := r.db.GetContext(ctx, &bc, `SELECT `+bcColumns+` FROM bon_de_commande bc WHERE bc.num_bc = ?`, numBc); err != nil {
		return nil, mapError(err, fmt.Sprintf("get bon de commande %q", numBc))
	}
	lines, err := r.ListPrestations(ctx, numBc)
	if err != nil {
		return nil, err
	}
	bc.Prestations = lines
	if bc.BackOfficeID != nil {
		users, err := r.usersByID(ctx, []int64{*bc.BackOfficeID})
		if err != nil {
			return nil, err
		}
		bc.BackOffice = users[*bc.BackOfficeID]
	}
	return &bc, nil
}

// UpdateBonDeCommande replaces the header and reconciles the lines: lines whose id is
// known are updated, new ones inserted, and missing ones deleted with their suivi.
func (r *Repository) UpdateBonDeCommande(ctx context.Context, bc *domain.BonDeCommande) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `UPDATE bon_de_commande SET
			division_projet = :division_projet, code_projet = :code_projet, description = :description,
			date_edition = :date_edition, num_projet_facturation = :num_projet_facturation,
			num_pv_reception = :num_pv_reception, back_office_id = :back_office_id
			WHERE num_bc = :num_bc`, bc)
		if err != nil {
			return mapError(err, fmt.Sprintf("update bon de commande %q", bc.NumBc))
		}
		if err := expectAffected(res, fmt.Sprintf("update bon de commande %q", bc.NumBc)); err != nil {
			return err
		}

		var existing []string
		if err := tx.SelectContext(ctx, &existing, `SELECT id FROM prestations WHERE bc_id = ?`, bc.NumBc); err != nil {
			return mapError(err, "load existing lines")
		}
		keep := make(map[string]bool, len(existing))
		for _, id := range existing {
			keep[id] = false
		}

		for i := range bc.Prestations {
			p := &bc.Prestations[i]
			if _, known := keep[p.ID]; known && p.ID != "" {
				keep[p.ID] = true
				p.BcID = bc.NumBc
				if _, err := tx.NamedExecContext(ctx, `UPDATE prestations SET
					num_ligne = :num_ligne, famille = :famille, description = :description,
					fournisseur = :fournisseur, qte_bc = :qte_bc, service_id = :service_id
					WHERE id = :id`, p); err != nil {
					return mapError(err, fmt.Sprintf("update prestation %q", p.ID))
				}
				continue
			}
			if err := insertPrestation(ctx, tx, bc.NumBc, p); err != nil {
				return err
			}
		}

		for id, kept := range keep {
			if kept {
				continue
			}
			if err := deletePrestation(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func deletePrestation(ctx context.Context, tx *sqlx.Tx, id string) error {
	for _, stmt := range []struct {
		table string
		field string
	}{
		{"suivi_prestation", "prestation_id"},
		{"prestations", "id"},
	} {
		q, args, err := buildDeleteSQL(stmt.table, []condition{{Field: stmt.field, Value: id}})
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return mapError(err, fmt.Sprintf("delete prestation %q", id))
		}
	}
	return nil
}

// DeleteBonDeCommande removes the order, its lines and their suivi, and detaches its OTs.
func (r *Repository) DeleteBonDeCommande(ctx context.Context, numBc string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM suivi_prestation WHERE prestation_id IN (SELECT id FROM prestations WHERE bc_id = ?)`, numBc); err != nil {
			return mapError(err, "delete suivi")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM prestations WHERE bc_id = ?`, numBc); err != nil {
			return mapError(err, "delete prestations")
		}
		if _, err := tx.ExecContext(ctx, `UPDATE ots SET bc_id = NULL WHERE bc_id = ?`, numBc); err != nil {
			return mapError(err, "detach ots")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM bon_de_commande WHERE num_bc = ?`, numBc)
		if err != nil {
			return mapError(err, fmt.Sprintf("delete bon de commande %q", numBc))
		}
		return expectAffected(res, fmt.Sprintf("delete bon de commande %q", numBc))
	})
}

// ListPrestations returns the lines of numBc, or every line when numBc is empty,
// with their catalog service attached.
func (r *Repository) ListPrestations(ctx context.Context, numBc string) ([]domain.Prestation, error) {
	lines := []domain.Prestation{}
	err := r.db.SelectContext(ctx, &lines, `SELECT `+prestationColumns+` FROM prestations
		WHERE (? = '' OR bc_id = ?) ORDER BY bc_id, num_ligne`, numBc, numBc)
	if err != nil {
		return nil, mapError(err, "list prestations")
	}
	services, err := r.servicesByID(ctx, collectIDs(lines, func(p *domain.Prestation) *int64 { return p.ServiceID }))
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].ServiceID != nil {
			lines[i].Service = services[*lines[i].ServiceID]
		}
	}
	return lines, nil
}

// prestationsByID loads lines by id with their services.
func (r *Repository) prestationsByID(ctx context.Context, ids []string) (map[string]*domain.Prestation, error) {
	out := make(map[string]*domain.Prestation)
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+prestationColumns+` FROM prestations WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	lines := []domain.Prestation{}
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(query), args...); err != nil {
		return nil, mapError(err, "load prestations")
	}
	services, err := r.servicesByID(ctx, collectIDs(lines, func(p *domain.Prestation) *int64 { return p.ServiceID }))
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if lines[i].ServiceID != nil {
			lines[i].Service = services[*lines[i].ServiceID]
		}
		out[lines[i].ID] = &lines[i]
	}
	return out, nil
}

// ListServicesOfBc lists the distinct catalog services used by a bon de commande.
func (r *Repository) ListServicesOfBc(ctx context.Context, numBc string) ([]domain.ServiceSummary, error) {
	out := []domain.ServiceSummary{}
	err := r.db.SelectContext(ctx, &out, `SELECT s.id AS service_id, s.ref_auxigene, s.description, s.prix,
			COALESCE(SUM(p.qte_bc), 0.0) AS qte_bc
		FROM prestations p
		JOIN services s ON s.id = p.service_id
		WHERE p.bc_id = ?
		GROUP BY s.id
		ORDER BY s.ref_auxigene`, numBc)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("list services of %q", numBc))
	}
	return out, nil
}
