// Package sqlite file: internal/adapter/datasource/sqlite/report.go
package sqlite

import (
	"GestionBC/internal/core/domain"
	"context"
	"fmt"
)

// suiviTotals pre-aggregates suivi rows per prestation so a line with several
// suivi rows contributes its ordered quantity only once.
const suiviTotals = `WITH st AS (
	SELECT prestation_id,
		SUM(COALESCE(qte_realise, 0)) AS realise_all,
		SUM(COALESCE(qte_tech, 0))    AS tech_all,
		SUM(COALESCE(qte_sys, 0))     AS sys_all,
		SUM(COALESCE(qte_depose, 0))  AS depose_all,
		SUM(COALESCE(qteadepose, 0))  AS adepose_all,
		SUM(CASE WHEN statut_de_realisation = 'Realise' THEN COALESCE(qte_realise, 0) ELSE 0 END)        AS realise,
		SUM(CASE WHEN statut_de_realisation = 'En cours' THEN COALESCE(qte_encours, 0) ELSE 0 END)       AS en_cours,
		SUM(CASE WHEN statut_de_recep_tech = 'Receptionne' THEN COALESCE(qte_tech, 0) ELSE 0 END)        AS recep_tech,
		SUM(CASE WHEN statut_de_recep_tech = 'En cours' THEN COALESCE(qte_tech, 0) ELSE 0 END)           AS recep_tech_en_cours,
		SUM(CASE WHEN statut_de_recep_tech = 'Réserve' THEN COALESCE(qte_tech, 0) ELSE 0 END)            AS recep_tech_reserve,
		SUM(CASE WHEN statut_reception_system = 'Depose Sys' THEN COALESCE(qte_depose, 0) ELSE 0 END)    AS depose_sys,
		SUM(CASE WHEN statut_reception_system = 'A déposer Sys' THEN COALESCE(qteadepose, 0) ELSE 0 END) AS a_depose_sys,
		SUM(CASE WHEN statut_reception_system = 'Receptionne Sys' THEN COALESCE(qte_sys, 0) ELSE 0 END)  AS receptionne_sys
	FROM suivi_prestation
	GROUP BY prestation_id
)
`

// BcSummaries aggregates the amounts of every bon de commande of a back-office.
func (r *Repository) BcSummaries(ctx context.Context, email string) ([]domain.BcSummary, error) {
	out := []domain.BcSummary{}
	err := r.db.SelectContext(ctx, &out, suiviTotals+`SELECT
			bc.num_bc                                              AS num_bc,
			MAX(bc.division_projet)                                AS division_projet,
			MAX(bc.code_projet)                                    AS code_projet,
			MAX(bc.date_edition)                                   AS date_edition,
			MAX(fam.name)                                          AS famille_projet,
			MAX(bc.description)                                    AS description_prestation,
			COALESCE(SUM(p.qte_bc * s.prix), 0.0)                  AS montant_ht,
			COALESCE(SUM(st.realise_all * s.prix), 0.0)            AS montant_cloture,
			COALESCE(SUM(st.sys_all * s.prix), 0.0)                AS montant_facture_sys,
			COALESCE(SUM(st.depose_all * s.prix), 0.0)             AS montant_depose,
			COALESCE(SUM(st.adepose_all * s.prix), 0.0)            AS montant_a_deposer,
			COALESCE(SUM(st.tech_all * s.prix), 0.0)               AS tec,
			CASE WHEN SUM(p.qte_bc * s.prix) > 0
				THEN ROUND(COALESCE(SUM(st.realise_all * s.prix), 0) / SUM(p.qte_bc * s.prix), 4)
				ELSE 0.0 END                                       AS taux_realisation
		FROM bon_de_commande bc
		JOIN prestations p ON p.bc_id = bc.num_bc
		LEFT JOIN st ON st.prestation_id = p.id
		LEFT JOIN services s ON s.id = p.service_id
		LEFT JOIN familles fam ON fam.id = s.famille_id
		LEFT JOIN utilisateurs u ON u.id = bc.back_office_id
		WHERE (? = '' OR u.email = ?)
		GROUP BY bc.num_bc
		ORDER BY bc.num_bc`, email, email)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("bc summaries for %q", email))
	}
	return out, nil
}

// BcDetails returns one row per (bon de commande, article) with status-filtered quantities.
func (r *Repository) BcDetails(ctx context.Context, email string) ([]domain.BcDetail, error) {
	out := []domain.BcDetail{}
	err := r.db.SelectContext(ctx, &out, suiviTotals+`SELECT
			bc.num_bc                                       AS num_bc,
			MAX(bc.division_projet)                         AS division_projet,
			MAX(bc.code_projet)                             AS code_projet,
			MIN(p.num_ligne)                                AS num_ligne,
			MAX(bc.date_edition)                            AS date_edition,
			MAX(bc.description)                             AS description_prestation,
			s.description                                   AS description_article,
			COALESCE(SUM(p.qte_bc), 0.0)                    AS qte_bc,
			COALESCE(SUM(st.realise), 0.0)                  AS realise,
			COALESCE(SUM(st.en_cours), 0.0)                 AS en_cours,
			COALESCE(SUM(p.qte_bc), 0) - COALESCE(SUM(st.realise), 0) - COALESCE(SUM(st.en_cours), 0) AS reliquat,
			COALESCE(SUM(st.recep_tech), 0.0)               AS reception_tech,
			COALESCE(SUM(st.depose_sys), 0.0)               AS depose_sys,
			COALESCE(SUM(st.a_depose_sys), 0.0)             AS a_depose_sys,
			COALESCE(SUM(st.receptionne_sys), 0.0)          AS receptionne_sys,
			COALESCE(MAX(s.prix), 0.0)                      AS prix_unite,
			MAX(p.famille)                                  AS famille_projet
		FROM prestations p
		JOIN bon_de_commande bc ON bc.num_bc = p.bc_id
		LEFT JOIN st ON st.prestation_id = p.id
		LEFT JOIN services s ON s.id = p.service_id
		LEFT JOIN utilisateurs u ON u.id = bc.back_office_id
		WHERE (? = '' OR u.email = ?)
		GROUP BY bc.num_bc, s.description
		ORDER BY bc.num_bc, num_ligne`, email, email)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("bc details for %q", email))
	}
	for i := range out {
		out[i].Derive()
	}
	return out, nil
}

// TableauDeBord aggregates the amounts per famille of the catalog.
func (r *Repository) TableauDeBord(ctx context.Context, email string) ([]domain.TableauDeBord, error) {
	out := []domain.TableauDeBord{}
	err := r.db.SelectContext(ctx, &out, suiviTotals+`SELECT
			f.name                                                       AS famille_projet,
			COALESCE(SUM(p.qte_bc * s.prix), 0.0)                        AS montant_total_bc,
			COALESCE(SUM(st.realise * s.prix), 0.0)                      AS montant_cloture_terrain,
			COALESCE(SUM(st.realise * s.prix) / NULLIF(SUM(p.qte_bc * s.prix), 0), 0.0) AS taux_realisation,
			COALESCE(SUM(st.receptionne_sys * s.prix), 0.0)              AS montant_receptionne_facture,
			COALESCE(SUM(st.depose_sys * s.prix), 0.0)                   AS montant_depose_reception_sys,
			COALESCE(SUM(st.a_depose_sys * s.prix), 0.0)                 AS montant_a_deposer_reception_sys,
			COALESCE(SUM(st.recep_tech_en_cours * s.prix), 0.0)          AS montant_en_cours_recep_tech,
			COALESCE(SUM(st.recep_tech_reserve * s.prix), 0.0)           AS montant_avec_reserve_recep_tech,
			COALESCE(SUM(p.qte_bc * s.prix), 0) - COALESCE(SUM(st.realise * s.prix), 0) AS montant_restant_bc,
			COALESCE(SUM(st.en_cours * s.prix), 0.0)                     AS montant_travaux_en_cours
		FROM prestations p
		JOIN st ON st.prestation_id = p.id
		JOIN bon_de_commande bc ON bc.num_bc = p.bc_id
		JOIN services s ON s.id = p.service_id
		JOIN familles f ON f.id = s.famille_id
		LEFT JOIN utilisateurs u ON u.id = bc.back_office_id
		WHERE (? = '' OR u.email = ?)
		GROUP BY f.name
		ORDER BY f.name`, email, email)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("tableau de bord for %q", email))
	}
	return out, nil
}

// OtMetrics sums quantite_valide * prix over the OT lines of a back-office.
func (r *Repository) OtMetrics(ctx context.Context, email string) (*domain.OtMetrics, error) {
	var m struct {
		Total       float64 `db:"total"`
		Realise     float64 `db:"realise"`
		Receptionne float64 `db:"receptionne"`
	}
	err := r.db.GetContext(ctx, &m, `SELECT
			COALESCE(SUM(op.quantite_valide * s.prix), 0.0) AS total,
			COALESCE(SUM(CASE WHEN op.statut_de_realisation = 'REALISE' THEN op.quantite_valide * s.prix ELSE 0 END), 0.0) AS realise,
			COALESCE(SUM(CASE WHEN op.statut_de_recep_tech = 'RECEPTIONNE' THEN op.quantite_valide * s.prix ELSE 0 END), 0.0) AS receptionne
		FROM ot_prestations op
		JOIN ots o ON o.num_ot = op.ot_id
		JOIN services s ON s.id = op.service_id
		LEFT JOIN utilisateurs u ON u.id = o.back_office_id
		WHERE (? = '' OR u.email = ?)`, email, email)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("ot metrics for %q", email))
	}
	return &domain.OtMetrics{Total: m.Total, Realise: m.Realise, Receptionne: m.Receptionne}, nil
}
