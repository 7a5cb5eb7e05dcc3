// Package domain file: internal/core/domain/config_models.go
package domain

// ScreenDefinition describes one tabular screen: where its rows come from and which
// columns it shows. Built-in screens are compiled in; YAML files may override them.
type ScreenDefinition struct {
	Name        string       `json:"name" yaml:"name"`
	DisplayName string       `json:"display_name" yaml:"display_name"`
	Source      ScreenSource `json:"source" yaml:"source"`
	Columns     []ColumnSpec `json:"columns" yaml:"columns"`
	PageSize    int          `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	// DefaultSort is applied when the request carries no sort.
	DefaultSort *SortSpec `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
	// Aggregates are summary figures over the filtered rows.
	Aggregates []AggregateSpec `json:"aggregates,omitempty" yaml:"aggregates,omitempty"`
}

// ScreenSource names a built-in dataset or a remote JSON endpoint.
type ScreenSource struct {
	Dataset string `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	// Token is sent as a bearer credential to URL; empty means the configured default.
	Token string `json:"-" yaml:"token,omitempty"`
	// Scoped sources take the back-office/coordinator e-mail from the request.
	Scoped bool `json:"scoped" yaml:"scoped"`
}

// ColumnSpec is the serialisable form of a table column.
type ColumnSpec struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type" yaml:"type"`
	// Computed names a registered accessor used instead of the dot-path.
	Computed   string `json:"computed,omitempty" yaml:"computed,omitempty"`
	Filterable bool   `json:"filterable" yaml:"filterable"`
}

// AggregateSpec names a summary figure: op is count, distinct, sum, avg or ratio.
// Key is the column folded; ratio divides the sum of Key by the sum of Of.
type AggregateSpec struct {
	Name string `json:"name" yaml:"name"`
	Op   string `json:"op" yaml:"op"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
	Of   string `json:"of,omitempty" yaml:"of,omitempty"`
}

type SortSpec struct {
	Key       string `json:"key" yaml:"key"`
	Direction string `json:"direction" yaml:"direction"`
}

// Built-in datasets a screen can be sourced from.
const (
	DatasetBonsDeCommande = "bons-de-commande"
	DatasetBcSummary      = "bc-summary"
	DatasetBcDetail       = "bc-detail"
	DatasetPrestations    = "prestations"
	DatasetSuivi          = "suivi"
	DatasetOts            = "ots"
	DatasetSites          = "sites"
	DatasetServices       = "services"
	DatasetTableauDeBord  = "tableau-de-bord"
)

// Datasets lists every built-in dataset name.
var Datasets = []string{
	DatasetBonsDeCommande, DatasetBcSummary, DatasetBcDetail, DatasetPrestations,
	DatasetSuivi, DatasetOts, DatasetSites, DatasetServices, DatasetTableauDeBord,
}
