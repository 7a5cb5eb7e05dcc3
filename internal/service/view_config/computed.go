// Package view_config internal/service/view_config/computed.go
package view_config

import (
	"GestionBC/internal/tableview"
	"strings"
)

// Names of the computed accessors a column may reference.
const (
	ComputedBcLineCount         = "bc.line_count"
	ComputedBcMontantHt         = "bc.montant_ht"
	ComputedPrestationMontant   = "prestation.montant"
	ComputedSuiviMontantRealise = "suivi.montant_realise"
	ComputedSuiviSite           = "suivi.site"
	ComputedOtLineCount         = "ot.line_count"
	ComputedOtMontant           = "ot.montant_total"
)

var (
	prixOfPrestation = tableview.PathAccessor("service.prix")
	prixOfSuivi      = tableview.PathAccessor("prestation.service.prix")
	prixOfOtLine     = tableview.PathAccessor("service.prix")
)

// computedAccessors are looked up by name when a screen is compiled.
var computedAccessors = map[string]tableview.Accessor{
	ComputedBcLineCount: func(r tableview.Row) any {
		return float64(len(list(r["prestations"])))
	},
	ComputedBcMontantHt: func(r tableview.Row) any {
		return sumLines(r["prestations"], func(line tableview.Row) (float64, bool) {
			return product(prixOfPrestation(line), line["qte_bc"])
		})
	},
	ComputedPrestationMontant: func(r tableview.Row) any {
		if v, ok := product(prixOfPrestation(r), r["qte_bc"]); ok {
			return v
		}
		return nil
	},
	ComputedSuiviMontantRealise: func(r tableview.Row) any {
		if v, ok := product(prixOfSuivi(r), r["qte_realise"]); ok {
			return v
		}
		return nil
	},
	ComputedSuiviSite: func(r tableview.Row) any {
		code := tableview.Stringify(tableview.Resolve(r, "site.codesite"))
		region := tableview.Stringify(tableview.Resolve(r, "site.region"))
		switch {
		case code == "":
			return nil
		case region == "":
			return code
		}
		return strings.Join([]string{code, region}, " - ")
	},
	ComputedOtLineCount: func(r tableview.Row) any {
		return float64(len(list(r["prestations"])))
	},
	ComputedOtMontant: func(r tableview.Row) any {
		return sumLines(r["prestations"], func(line tableview.Row) (float64, bool) {
			return product(prixOfOtLine(line), line["quantite_valide"])
		})
	},
}

// ComputedNames lists the registered computed accessors.
func ComputedNames() []string {
	out := make([]string, 0, len(computedAccessors))
	for name := range computedAccessors {
		out = append(out, name)
	}
	return out
}

func list(v any) []any {
	items, _ := v.([]any)
	return items
}

func sumLines(v any, amount func(tableview.Row) (float64, bool)) any {
	total := 0.0
	for _, item := range list(v) {
		line, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if a, ok := amount(line); ok {
			total += a
		}
	}
	return total
}

// product multiplies two JSON numbers; a missing operand yields false.
func product(a, b any) (float64, bool) {
	x, ok := a.(float64)
	if !ok {
		return 0, false
	}
	y, ok := b.(float64)
	if !ok {
		return 0, false
	}
	return x * y, true
}
