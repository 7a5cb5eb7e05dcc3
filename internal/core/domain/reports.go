// Package domain file: internal/core/domain/reports.go
package domain

// BcSummary aggregates the amounts of one bon de commande.
type BcSummary struct {
	NumBc                 string  `db:"num_bc" json:"num_bc"`
	DivisionProjet        string  `db:"division_projet" json:"division_projet"`
	CodeProjet            string  `db:"code_projet" json:"code_projet"`
	DateEdition           *string `db:"date_edition" json:"date_edition"`
	FamilleProjet         *string `db:"famille_projet" json:"famille_projet"`
	DescriptionPrestation string  `db:"description_prestation" json:"description_prestation"`
	MontantHt             float64 `db:"montant_ht" json:"montant_ht"`
	MontantCloture        float64 `db:"montant_cloture" json:"montant_cloture"`
	MontantFactureSys     float64 `db:"montant_facture_sys" json:"montant_facture_sys"`
	MontantDepose         float64 `db:"montant_depose" json:"montant_depose"`
	MontantADeposer       float64 `db:"montant_a_deposer" json:"montant_a_deposer"`
	TEC                   float64 `db:"tec" json:"tec"`
	TauxRealisation       float64 `db:"taux_realisation" json:"taux_realisation"`
}

// BcDetail is one (bon de commande, article) line of the detail report.
// Quantities come from the query; amounts are derived with Derive.
type BcDetail struct {
	NumBc                 string  `db:"num_bc" json:"num_bc"`
	DivisionProjet        string  `db:"division_projet" json:"division_projet"`
	CodeProjet            string  `db:"code_projet" json:"code_projet"`
	NumLigne              int     `db:"num_ligne" json:"num_ligne"`
	DateEdition           *string `db:"date_edition" json:"date_edition"`
	DescriptionPrestation string  `db:"description_prestation" json:"description_prestation"`
	DescriptionArticle    *string `db:"description_article" json:"description_article"`
	QteBc                 float64 `db:"qte_bc" json:"qte_bc"`
	Realise               float64 `db:"realise" json:"realise"`
	EnCours               float64 `db:"en_cours" json:"en_cours"`
	Reliquat              float64 `db:"reliquat" json:"reliquat"`
	ReceptionTech         float64 `db:"reception_tech" json:"reception_tech"`
	DeposeSys             float64 `db:"depose_sys" json:"depose_sys"`
	ADeposeSys            float64 `db:"a_depose_sys" json:"a_depose_sys"`
	ReceptionneSys        float64 `db:"receptionne_sys" json:"receptionne_sys"`
	PrixUnite             float64 `db:"prix_unite" json:"prix_unite"`
	FamilleProjet         *string `db:"famille_projet" json:"famille_projet"`

	MontantHt                   float64 `db:"-" json:"montant_ht"`
	MontantCloture              float64 `db:"-" json:"montant_cloture"`
	MontantReceptionneTerrain   float64 `db:"-" json:"montant_receptionne_terrain"`
	MontantEnCoursReceptionTech float64 `db:"-" json:"montant_en_cours_reception_tech"`
	MontantFactureSysteme       float64 `db:"-" json:"montant_facture_systeme"`
	MontantDepose               float64 `db:"-" json:"montant_depose"`
	MontantADeposer             float64 `db:"-" json:"montant_a_deposer"`
}

// Derive fills the amount fields from the unit price.
func (d *BcDetail) Derive() {
	d.MontantHt = d.PrixUnite * d.QteBc
	d.MontantCloture = d.PrixUnite * d.Realise
	d.MontantReceptionneTerrain = d.PrixUnite * d.ReceptionTech
	d.MontantEnCoursReceptionTech = d.PrixUnite * (d.Realise - d.ReceptionTech)
	d.MontantFactureSysteme = d.PrixUnite * d.ReceptionneSys
	d.MontantDepose = d.PrixUnite * d.DeposeSys
	d.MontantADeposer = d.PrixUnite * d.ADeposeSys
}

// TableauDeBord aggregates the amounts of one famille for a back-office.
type TableauDeBord struct {
	FamilleProjet               string  `db:"famille_projet" json:"famille_projet"`
	MontantTotalBc              float64 `db:"montant_total_bc" json:"montant_total_bc"`
	MontantClotureTerrain       float64 `db:"montant_cloture_terrain" json:"montant_cloture_terrain"`
	TauxRealisation             float64 `db:"taux_realisation" json:"taux_realisation"`
	MontantReceptionneFacture   float64 `db:"montant_receptionne_facture" json:"montant_receptionne_facture"`
	MontantDeposeReceptionSys   float64 `db:"montant_depose_reception_sys" json:"montant_depose_reception_sys"`
	MontantADeposerReceptionSys float64 `db:"montant_a_deposer_reception_sys" json:"montant_a_deposer_reception_sys"`
	MontantEnCoursRecepTech     float64 `db:"montant_en_cours_recep_tech" json:"montant_en_cours_recep_tech"`
	MontantAvecReserveRecepTech float64 `db:"montant_avec_reserve_recep_tech" json:"montant_avec_reserve_recep_tech"`
	MontantRestantBc            float64 `db:"montant_restant_bc" json:"montant_restant_bc"`
	MontantTravauxEnCours       float64 `db:"montant_travaux_en_cours" json:"montant_travaux_en_cours"`
}

// OtMetrics sums the OT line costs of one back-office.
type OtMetrics struct {
	Total       float64 `json:"total"`
	Realise     float64 `json:"realise"`
	Receptionne float64 `json:"receptionne"`
}

// ServiceSummary lists a catalog article used by a bon de commande.
type ServiceSummary struct {
	ServiceID   int64   `db:"service_id" json:"service_id"`
	RefAuxigene string  `db:"ref_auxigene" json:"ref_auxigene"`
	Description string  `db:"description" json:"description"`
	Prix        float64 `db:"prix" json:"prix"`
	QteBc       float64 `db:"qte_bc" json:"qte_bc"`
}

// DelayCandidate is a suivi whose next reception step is overdue, with the users to notify.
type DelayCandidate struct {
	SuiviID          int64   `db:"suivi_id"`
	PrestationID     string  `db:"prestation_id"`
	NumBc            string  `db:"num_bc"`
	CoordinatorID    *int64  `db:"coordinator_user_id"`
	BackOfficeID     *int64  `db:"back_office_user_id"`
	CoordinatorEmail *string `db:"coordinator_email"`
	BackOfficeEmail  *string `db:"back_office_email"`
}
