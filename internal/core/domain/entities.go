// Package domain file: internal/core/domain/entities.go
package domain

// Role of an application user.
type Role string

const (
	RoleBackOffice   Role = "BACK_OFFICE"
	RoleChefProjet   Role = "CHEF_PROJET"
	RoleCoordinateur Role = "COORDINATEUR"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBackOffice, RoleChefProjet, RoleCoordinateur:
		return true
	}
	return false
}

// Status values written by the field teams. They are compared verbatim in the
// aggregate queries.
const (
	StatutRealise        = "Realise"
	StatutEnCours        = "En cours"
	StatutReceptionne    = "Receptionne"
	StatutReserve        = "Réserve"
	StatutReceptionneSys = "Receptionne Sys"
	StatutDeposeSys      = "Depose Sys"
	StatutADeposerSys    = "A déposer Sys"

	StatutOtRealise     = "REALISE"
	StatutOtReceptionne = "RECEPTIONNE"
)

// Delay notification kinds; each is sent at most once per suivi.
const (
	NotificationRealisationDelay   = "realisation_delay"
	NotificationTechReceptionDelay = "tech_reception_delay"
)

// DashboardAllFamilies is the famille key of the cross-famille metric row.
const DashboardAllFamilies = "all"

// DateLayout is the storage format of every date column.
const DateLayout = "2006-01-02"

type Zone struct {
	ID  int64  `db:"id" json:"id"`
	Nom string `db:"nom" json:"nom"`
}

type Site struct {
	ID       int64  `db:"id" json:"id"`
	CodeSite string `db:"codesite" json:"codesite"`
	Region   string `db:"region" json:"region"`
	ZoneID   *int64 `db:"zone_id" json:"zone_id"`
	Zone     *Zone  `db:"-" json:"zone"`
}

type Famille struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Service is one catalog article with its unit price.
type Service struct {
	ID               int64    `db:"id" json:"id"`
	FamilleID        *int64   `db:"famille_id" json:"famille_id"`
	Famille          *Famille `db:"-" json:"famille"`
	RefAuxigene      string   `db:"ref_auxigene" json:"ref_auxigene"`
	Description      string   `db:"description" json:"description"`
	Unite            string   `db:"unite" json:"unite"`
	Type             string   `db:"type" json:"type"`
	Prix             float64  `db:"prix" json:"prix"`
	Remarque         *string  `db:"remarque" json:"remarque"`
	ModeleTechnique  *string  `db:"modele_technique" json:"modele_technique"`
	TypeMateriel     *string  `db:"type_materiel" json:"type_materiel"`
	Specification    *string  `db:"specification" json:"specification"`
	FamilleTechnique *string  `db:"famille_technique" json:"famille_technique"`
}

type User struct {
	ID     int64  `db:"id" json:"id"`
	Nom    string `db:"nom" json:"nom"`
	Email  string `db:"email" json:"email"`
	Role   Role   `db:"role" json:"role"`
	ZoneID *int64 `db:"zone_id" json:"zone_id,omitempty"`
}

// BonDeCommande is a purchase order header; its lines are Prestations.
type BonDeCommande struct {
	NumBc                string       `db:"num_bc" json:"num_bc"`
	DivisionProjet       string       `db:"division_projet" json:"division_projet"`
	CodeProjet           string       `db:"code_projet" json:"code_projet"`
	Description          string       `db:"description" json:"description"`
	DateEdition          *string      `db:"date_edition" json:"date_edition"`
	NumProjetFacturation *string      `db:"num_projet_facturation" json:"num_projet_facturation"`
	NumPvReception       *string      `db:"num_pv_reception" json:"num_pv_reception"`
	BackOfficeID         *int64       `db:"back_office_id" json:"back_office_id"`
	BackOffice           *User        `db:"-" json:"back_office,omitempty"`
	Prestations          []Prestation `db:"-" json:"prestations"`
}

// Prestation is one line of a bon de commande.
type Prestation struct {
	ID          string            `db:"id" json:"id"`
	BcID        string            `db:"bc_id" json:"bc_id"`
	NumLigne    int               `db:"num_ligne" json:"num_ligne"`
	Famille     string            `db:"famille" json:"famille"`
	Description string            `db:"description" json:"description"`
	Fournisseur *string           `db:"fournisseur" json:"fournisseur"`
	QteBc       float64           `db:"qte_bc" json:"qte_bc"`
	ServiceID   *int64            `db:"service_id" json:"service_id"`
	Service     *Service          `db:"-" json:"service"`
	Suivi       []SuiviPrestation `db:"-" json:"suivi,omitempty"`
}

// SuiviPrestation tracks the fulfilment of a prestation on one site.
type SuiviPrestation struct {
	ID                    int64    `db:"id" json:"id"`
	PrestationID          string   `db:"prestation_id" json:"prestation_id"`
	SiteID                *int64   `db:"site_id" json:"site_id"`
	ZoneID                *int64   `db:"zone_id" json:"zone_id"`
	CoordinateurID        *int64   `db:"coordinateur_id" json:"coordinateur_id"`
	QuantiteValide        *int64   `db:"quantite_valide" json:"quantite_valide"`
	QteRealise            *float64 `db:"qte_realise" json:"qte_realise"`
	QteEncours            *float64 `db:"qte_encours" json:"qte_encours"`
	QteTech               *float64 `db:"qte_tech" json:"qte_tech"`
	QteDepose             *float64 `db:"qte_depose" json:"qte_depose"`
	QteADepose            *float64 `db:"qteadepose" json:"qte_a_depose"`
	QteSys                *float64 `db:"qte_sys" json:"qte_sys"`
	Fournisseur           *string  `db:"fournisseur" json:"fournisseur"`
	DatePlanifiee         *string  `db:"date_planifiee" json:"date_planifiee"`
	DateGo                *string  `db:"date_go" json:"date_go"`
	DateDebut             *string  `db:"date_debut" json:"date_debut"`
	DateFin               *string  `db:"date_fin" json:"date_fin"`
	DateRealisation       *string  `db:"date_realisation" json:"date_realisation"`
	StatutDeRealisation   *string  `db:"statut_de_realisation" json:"statut_de_realisation"`
	DateRecepTech         *string  `db:"date_recep_tech" json:"date_recep_tech"`
	StatutDeRecepTech     *string  `db:"statut_de_recep_tech" json:"statut_de_recep_tech"`
	DatePf                *string  `db:"date_pf" json:"date_pf"`
	DateRecepSys          *string  `db:"date_recep_sys" json:"date_recep_sys"`
	StatutReceptionSystem *string  `db:"statut_reception_system" json:"statut_reception_system"`
	Remarque              *string  `db:"remarque" json:"remarque"`
	DelaiRecep            *int64   `db:"delai_recep" json:"delai_recep"`

	Prestation   *Prestation `db:"-" json:"prestation,omitempty"`
	Site         *Site       `db:"-" json:"site,omitempty"`
	Zone         *Zone       `db:"-" json:"zone,omitempty"`
	Coordinateur *User       `db:"-" json:"coordinateur,omitempty"`
	BcNum        string      `db:"-" json:"num_bc,omitempty"`
}

// Ot is an ordre de travail, optionally attached to a bon de commande.
type Ot struct {
	NumOt          string         `db:"num_ot" json:"num_ot"`
	DivisionProjet string         `db:"division_projet" json:"division_projet"`
	CodeProjet     string         `db:"code_projet" json:"code_projet"`
	ZoneID         *int64         `db:"zone_id" json:"zone_id"`
	SiteID         *int64         `db:"site_id" json:"site_id"`
	DateGo         *string        `db:"date_go" json:"date_go"`
	BackOfficeID   *int64         `db:"back_office_id" json:"back_office_id"`
	BcID           *string        `db:"bc_id" json:"bc_id"`
	Zone           *Zone          `db:"-" json:"zone,omitempty"`
	Site           *Site          `db:"-" json:"site,omitempty"`
	Prestations    []OtPrestation `db:"-" json:"prestations"`
}

type OtPrestation struct {
	ID                    int64    `db:"id" json:"id"`
	OtID                  string   `db:"ot_id" json:"ot_id"`
	NumLigne              *int64   `db:"num_ligne" json:"num_ligne"`
	QuantiteValide        *int64   `db:"quantite_valide" json:"quantite_valide"`
	ServiceID             *int64   `db:"service_id" json:"service_id"`
	Famille               *string  `db:"famille" json:"famille"`
	CoordinateurID        *int64   `db:"coordinateur_id" json:"coordinateur_id"`
	Fournisseur           *string  `db:"fournisseur" json:"fournisseur"`
	DatePlanifiee         *string  `db:"date_planifiee" json:"date_planifiee"`
	DateGo                *string  `db:"date_go" json:"date_go"`
	DateDebut             *string  `db:"date_debut" json:"date_debut"`
	DateFin               *string  `db:"date_fin" json:"date_fin"`
	DateRealisation       *string  `db:"date_realisation" json:"date_realisation"`
	StatutDeRealisation   *string  `db:"statut_de_realisation" json:"statut_de_realisation"`
	DateRecepTech         *string  `db:"date_recep_tech" json:"date_recep_tech"`
	StatutDeRecepTech     *string  `db:"statut_de_recep_tech" json:"statut_de_recep_tech"`
	DatePf                *string  `db:"date_pf" json:"date_pf"`
	DateRecepSys          *string  `db:"date_recep_sys" json:"date_recep_sys"`
	StatutReceptionSystem *string  `db:"statut_reception_system" json:"statut_reception_system"`
	Remarque              *string  `db:"remarque" json:"remarque"`
	QteRealise            float64  `db:"qte_realise" json:"qte_realise"`
	QteEncours            float64  `db:"qte_encours" json:"qte_encours"`
	DelaiRecep            *int64   `db:"delai_recep" json:"delai_recep"`
	Service               *Service `db:"-" json:"service,omitempty"`
}

type Notification struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	Message   string `db:"message" json:"message"`
	CreatedAt string `db:"created_at" json:"created_at"`
	IsRead    bool   `db:"is_read" json:"is_read"`
}

// DashboardMetric is one persisted daily snapshot per back-office and famille.
type DashboardMetric struct {
	ID                        int64   `db:"id" json:"id"`
	BackOfficeID              int64   `db:"back_office_id" json:"back_office_id"`
	Famille                   string  `db:"famille" json:"famille"`
	CalculationDate           string  `db:"calculation_date" json:"calculation_date"`
	MontantTotalBc            float64 `db:"montant_total_bc" json:"montant_total_bc"`
	MontantClotureTerrain     float64 `db:"montant_cloture_terrain" json:"montant_cloture_terrain"`
	TauxRealisation           float64 `db:"taux_realisation" json:"taux_realisation"`
	MontantReceptionneFacture float64 `db:"montant_receptionne_facture" json:"montant_receptionne_facture"`
	MontantDeposeSys          float64 `db:"montant_depose_sys" json:"montant_depose_sys"`
	MontantADeposeSys         float64 `db:"montant_a_depose_sys" json:"montant_a_depose_sys"`
}
