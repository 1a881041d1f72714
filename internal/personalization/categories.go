package personalization

import (
	"sort"
	"strings"

	"insights/internal/core"
)

// DefaultCategories are offered for alerts even before any transaction uses
// them.
var DefaultCategories = []string{
	"Salário",
	"Assinaturas",
	"Cartão de Crédito",
	"Comida",
	"Mercado",
	"Financiamento",
	"Internet",
	"Casa",
	"Pensão",
	"Reserva",
	"Investimentos",
	"Entretenimento",
	"Educação",
	"Transferência",
	"Depósito",
}

// Categories merges DefaultCategories with every category found in txs and
// returns them deduplicated and sorted.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{}, len(DefaultCategories)+len(txs))
	out := make([]string, 0, len(DefaultCategories))
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, c := range DefaultCategories {
		add(c)
	}
	for _, t := range txs {
		add(t.Category)
	}
	sort.Strings(out)
	return out
}
