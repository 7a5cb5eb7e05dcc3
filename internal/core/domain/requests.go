// Package domain file: internal/core/domain/requests.go
package domain

// PrestationRequest is one line of a bon de commande create/update request.
type PrestationRequest struct {
	ID          string  `json:"id"`
	NumLigne    int     `json:"num_ligne" binding:"gte=0"`
	Famille     string  `json:"famille"`
	Description string  `json:"description"`
	Fournisseur *string `json:"fournisseur"`
	QteBc       float64 `json:"qte_bc" binding:"gte=0"`
	ServiceID   *int64  `json:"service_id"`
}

// BonDeCommandeRequest creates or replaces a bon de commande with its lines.
type BonDeCommandeRequest struct {
	NumBc                string              `json:"num_bc" binding:"required"`
	DivisionProjet       string              `json:"division_projet"`
	CodeProjet           string              `json:"code_projet"`
	Description          string              `json:"description"`
	DateEdition          *string             `json:"date_edition" binding:"omitempty,datetime=2006-01-02"`
	NumProjetFacturation *string             `json:"num_projet_facturation"`
	NumPvReception       *string             `json:"num_pv_reception"`
	BackOfficeEmail      string              `json:"back_office_email" binding:"omitempty,email"`
	Prestations          []PrestationRequest `json:"prestations" binding:"dive"`
}

// SuiviRequest creates a suivi; quantities, dates and statuses come through Fields.
type SuiviRequest struct {
	PrestationID string         `json:"prestation_id" binding:"required"`
	Fields       map[string]any `json:"fields"`
}

// SuiviBulkItem is a partial update of one suivi inside a bulk request.
type SuiviBulkItem struct {
	ID     int64          `json:"id" binding:"required,gt=0"`
	Fields map[string]any `json:"fields" binding:"required"`
}

// OtPrestationRequest is one line of an OT create/update request.
type OtPrestationRequest struct {
	NumLigne       *int64         `json:"num_ligne"`
	QuantiteValide *int64         `json:"quantite_valide" binding:"omitempty,gte=0"`
	ServiceID      *int64         `json:"service_id"`
	Famille        *string        `json:"famille"`
	CoordinateurID *int64         `json:"coordinateur_id"`
	Fields         map[string]any `json:"fields"`
}

// OtRequest creates or replaces an ordre de travail.
type OtRequest struct {
	NumOt           string                `json:"num_ot" binding:"required"`
	DivisionProjet  string                `json:"division_projet"`
	CodeProjet      string                `json:"code_projet"`
	ZoneID          *int64                `json:"zone_id"`
	SiteID          *int64                `json:"site_id"`
	DateGo          *string               `json:"date_go" binding:"omitempty,datetime=2006-01-02"`
	BackOfficeEmail string                `json:"back_office_email" binding:"omitempty,email"`
	Prestations     []OtPrestationRequest `json:"prestations" binding:"dive"`
}

// OtBulkItem is a partial header update of one OT.
type OtBulkItem struct {
	NumOt  string         `json:"num_ot" binding:"required"`
	Fields map[string]any `json:"fields" binding:"required"`
}

// LinkOtsRequest attaches OTs to a bon de commande.
type LinkOtsRequest struct {
	NumBc  string   `json:"num_bc" binding:"required"`
	NumOts []string `json:"num_ots" binding:"required,min=1"`
}

type FamilleRequest struct {
	Name string `json:"name" binding:"required"`
}

type ServiceRequest struct {
	FamilleID        *int64  `json:"famille_id"`
	RefAuxigene      string  `json:"ref_auxigene" binding:"required"`
	Description      string  `json:"description"`
	Unite            string  `json:"unite"`
	Type             string  `json:"type"`
	Prix             float64 `json:"prix" binding:"gte=0"`
	Remarque         *string `json:"remarque"`
	ModeleTechnique  *string `json:"modele_technique"`
	TypeMateriel     *string `json:"type_materiel"`
	Specification    *string `json:"specification"`
	FamilleTechnique *string `json:"famille_technique"`
}

// MetricsQuery selects persisted dashboard metrics.
type MetricsQuery struct {
	Email     string `form:"email" binding:"required,email"`
	Famille   string `form:"famille"`
	StartDate string `form:"start" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end" binding:"required,datetime=2006-01-02"`
}
