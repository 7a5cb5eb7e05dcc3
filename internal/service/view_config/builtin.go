// Package view_config internal/service/view_config/builtin.go
package view_config

import "GestionBC/internal/core/domain"

func col(key, label, typ string) domain.ColumnSpec {
	return domain.ColumnSpec{Key: key, Label: label, Type: typ, Filterable: true}
}

func computed(key, label, typ, fn string) domain.ColumnSpec {
	return domain.ColumnSpec{Key: key, Label: label, Type: typ, Computed: fn}
}

// builtinScreens are the compiled-in screens. A YAML file with the same name replaces one.
func builtinScreens() []domain.ScreenDefinition {
	return []domain.ScreenDefinition{
		{
			Name:        domain.DatasetBonsDeCommande,
			DisplayName: "Bons de commande",
			Source:      domain.ScreenSource{Dataset: domain.DatasetBonsDeCommande, Scoped: true},
			Columns: []domain.ColumnSpec{
				col("num_bc", "N° BC", "text"),
				col("division_projet", "Division Projet", "text"),
				col("code_projet", "Code Projet", "text"),
				col("description", "Description", "text"),
				col("date_edition", "Date Édition", "date"),
				col("num_projet_facturation", "N° Projet Facturation", "text"),
				col("back_office.nom", "Back Office", "text"),
				computed("nb_lignes", "Lignes", "number", ComputedBcLineCount),
				computed("montant_ht", "Montant HT", "currency", ComputedBcMontantHt),
			},
			DefaultSort: &domain.SortSpec{Key: "num_bc", Direction: "asc"},
		},
		{
			Name:        domain.DatasetBcSummary,
			DisplayName: "Synthèse des BC",
			Source:      domain.ScreenSource{Dataset: domain.DatasetBcSummary, Scoped: true},
			Columns: []domain.ColumnSpec{
				col("num_bc", "N° BC", "text"),
				col("division_projet", "Division Projet", "text"),
				col("code_projet", "Code Projet", "text"),
				col("date_edition", "Date Édition", "date"),
				col("famille_projet", "Famille Projet", "text"),
				col("description_prestation", "Description Prestation", "text"),
				col("montant_ht", "Montant HT", "currency"),
				col("montant_cloture", "Montant Clôturé", "currency"),
				col("montant_facture_sys", "Montant Facturé Sys", "currency"),
				col("montant_depose", "Montant Déposé", "currency"),
				col("montant_a_deposer", "Montant A Déposer", "currency"),
				col("taux_realisation", "Taux Réalisation", "percentage"),
				col("tec", "TEC", "currency"),
			},
			Aggregates: []domain.AggregateSpec{
				{Name: "total_bcs", Op: "count"},
				{Name: "total_montant_ht", Op: "sum", Key: "montant_ht"},
				{Name: "total_montant_cloture", Op: "sum", Key: "montant_cloture"},
				{Name: "avg_taux_realisation", Op: "avg", Key: "taux_realisation"},
			},
		},
		{
			Name:        domain.DatasetBcDetail,
			DisplayName: "Détail des BC",
			Source:      domain.ScreenSource{Dataset: domain.DatasetBcDetail, Scoped: true},
			Columns: []domain.ColumnSpec{
				col("num_bc", "N° BC", "text"),
				col("division_projet", "Division Projet", "text"),
				col("code_projet", "Code Projet", "text"),
				col("num_ligne", "N° Ligne", "number"),
				col("date_edition", "Date Édition", "date"),
				col("description_article", "Article", "text"),
				col("famille_projet", "Famille", "text"),
				col("qte_bc", "Qté BC", "quantity"),
				col("realise", "Réalisé", "quantity"),
				col("en_cours", "En cours", "quantity"),
				col("reliquat", "Reliquat", "quantity"),
				col("prix_unite", "Prix Unitaire", "currency"),
				col("montant_ht", "Montant HT", "currency"),
				col("montant_cloture", "Montant Clôturé", "currency"),
				col("montant_receptionne_terrain", "Réceptionné Terrain", "currency"),
				col("montant_en_cours_reception_tech", "En cours Récep Tech", "currency"),
				col("montant_facture_systeme", "Facturé Système", "currency"),
				col("montant_depose", "Déposé", "currency"),
				col("montant_a_deposer", "A Déposer", "currency"),
			},
			Aggregates: []domain.AggregateSpec{
				{Name: "total_bcs", Op: "distinct", Key: "num_bc"},
				{Name: "total_qte", Op: "sum", Key: "qte_bc"},
				{Name: "total_montant_ht", Op: "sum", Key: "montant_ht"},
				{Name: "prix_moyen", Op: "ratio", Key: "montant_ht", Of: "qte_bc"},
			},
		},
		{
			Name:        domain.DatasetPrestations,
			DisplayName: "Prestations",
			Source:      domain.ScreenSource{Dataset: domain.DatasetPrestations},
			Columns: []domain.ColumnSpec{
				col("bc_id", "N° BC", "text"),
				col("num_ligne", "N° Ligne", "number"),
				col("famille", "Famille", "text"),
				col("description", "Description", "text"),
				col("fournisseur", "Fournisseur", "text"),
				col("qte_bc", "Qté BC", "quantity"),
				col("service.ref_auxigene", "Réf. Auxigène", "text"),
				col("service.prix", "Prix Unitaire", "currency"),
				computed("montant", "Montant", "currency", ComputedPrestationMontant),
			},
		},
		{
			Name:        domain.DatasetSuivi,
			DisplayName: "Suivi de prestation",
			Source:      domain.ScreenSource{Dataset: domain.DatasetSuivi, Scoped: true},
			Columns: []domain.ColumnSpec{
				col("num_bc", "BC Num", "text"),
				col("prestation.num_ligne", "Num Ligne", "number"),
				col("prestation.description", "Description", "text"),
				col("prestation.famille", "Famille", "text"),
				col("prestation.service.description", "Service", "text"),
				col("prestation.service.prix", "Prix Unitaire", "currency"),
				col("qte_realise", "Qté Réalisée", "quantity"),
				col("qte_encours", "Qté En Cours", "quantity"),
				computed("montant_realise", "Montant Réalisé", "currency", ComputedSuiviMontantRealise),
				col("zone.nom", "Zone", "text"),
				computed("site", "Site", "text", ComputedSuiviSite),
				col("coordinateur.nom", "Coordinateur", "text"),
				col("fournisseur", "Fournisseur", "text"),
				col("date_planifiee", "Date Planifiée", "date"),
				col("date_go", "Date GO", "date"),
				col("date_debut", "Date Début", "date"),
				col("date_fin", "Date Fin", "date"),
				col("date_realisation", "Date Réalisation", "date"),
				col("statut_de_realisation", "Statut Réalisation", "text"),
				col("date_recep_tech", "Date Récep Tech", "date"),
				col("statut_de_recep_tech", "Statut Récep Tech", "text"),
				col("date_pf", "Date PF", "date"),
				col("date_recep_sys", "Date Récep Sys", "date"),
				col("statut_reception_system", "Statut Réception Système", "text"),
				col("remarque", "Remarque", "text"),
				col("delai_recep", "Délai Récep", "number"),
			},
		},
		{
			Name:        domain.DatasetOts,
			DisplayName: "Ordres de travail",
			Source:      domain.ScreenSource{Dataset: domain.DatasetOts, Scoped: true},
			Columns: []domain.ColumnSpec{
				col("num_ot", "N° OT", "text"),
				col("division_projet", "Division Projet", "text"),
				col("code_projet", "Code Projet", "text"),
				col("zone.nom", "Zone", "text"),
				col("site.codesite", "Site", "text"),
				col("date_go", "Date GO", "date"),
				col("bc_id", "N° BC", "text"),
				computed("nb_lignes", "Lignes", "number", ComputedOtLineCount),
				computed("montant_total", "Montant", "currency", ComputedOtMontant),
			},
			DefaultSort: &domain.SortSpec{Key: "num_ot", Direction: "asc"},
		},
		{
			Name:        domain.DatasetSites,
			DisplayName: "Sites",
			Source:      domain.ScreenSource{Dataset: domain.DatasetSites},
			Columns: []domain.ColumnSpec{
				col("codesite", "Code Site", "text"),
				col("region", "Région", "text"),
				col("zone.nom", "Zone", "text"),
			},
			PageSize: 25,
		},
		{
			Name:        domain.DatasetServices,
			DisplayName: "Catalogue des services",
			Source:      domain.ScreenSource{Dataset: domain.DatasetServices},
			Columns: []domain.ColumnSpec{
				col("ref_auxigene", "Réf. Auxigène", "text"),
				col("description", "Description", "text"),
				col("famille.name", "Famille", "text"),
				col("unite", "Unité", "text"),
				col("type", "Type", "text"),
				col("prix", "Prix", "currency"),
				col("famille_technique", "Famille Technique", "text"),
			},
			PageSize: 25,
		},
		{
			Name:        domain.DatasetTableauDeBord,
			DisplayName: "Tableau de bord",
			Source:      domain.ScreenSource{Dataset: domain.DatasetTableauDeBord, Scoped: true},
			Columns: []domain.ColumnSpec{
				col("famille_projet", "Famille", "text"),
				col("montant_total_bc", "Montant Total BC", "currency"),
				col("montant_cloture_terrain", "Clôturé Terrain", "currency"),
				col("taux_realisation", "Taux Réalisation", "percentage"),
				col("montant_receptionne_facture", "Réceptionné Facturé", "currency"),
				col("montant_depose_reception_sys", "Déposé Récep Sys", "currency"),
				col("montant_a_deposer_reception_sys", "A Déposer Récep Sys", "currency"),
				col("montant_en_cours_recep_tech", "En cours Récep Tech", "currency"),
				col("montant_avec_reserve_recep_tech", "Avec Réserve", "currency"),
				col("montant_restant_bc", "Restant BC", "currency"),
				col("montant_travaux_en_cours", "Travaux En Cours", "currency"),
			},
		},
	}
}
