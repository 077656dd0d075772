package stats

import (
	"strings"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/shopspring/decimal"
)

// DefaultDebtTargets is the family's fixed list of people whose expenses
// are grouped into personal commitment cards. Order matters: when a
// description could match more than one name, the first in this list wins.
var DefaultDebtTargets = []string{
	"Lili Torres",
	"Marcia Brito",
	"Marcia Bispo",
	"Rebecca Brito",
}

// DebtGroup accumulates the expenses owed to one person.
type DebtGroup struct {
	Name       string               `json:"name"`
	Total      decimal.Decimal      `json:"total"`
	PaidAmount decimal.Decimal      `json:"paidAmount"`
	Items      []domain.Transaction `json:"items"`
}

// matchTarget resolves which target an expense belongs to. An explicit
// Owner tag is authoritative; descriptions are only consulted as the
// legacy fallback (case-insensitive substring, first target wins).
func matchTarget(t *domain.Transaction, targets []string) (string, bool) {
	if t.Owner != "" {
		for _, target := range targets {
			if strings.EqualFold(t.Owner, target) {
				return target, true
			}
		}
		return "", false
	}
	desc := strings.ToLower(t.Description)
	for _, target := range targets {
		if strings.Contains(desc, strings.ToLower(target)) {
			return target, true
		}
	}
	return "", false
}

// GroupDebts buckets expenses per person. Unmatched expenses are left out
// entirely. Groups come out in target-list order.
func GroupDebts(m *domain.MonthData, targets []string) []DebtGroup {
	if m == nil {
		return nil
	}
	if targets == nil {
		targets = DefaultDebtTargets
	}

	groups := make(map[string]*DebtGroup)
	for i := range m.Expenses {
		t := &m.Expenses[i]
		name, ok := matchTarget(t, targets)
		if !ok {
			continue
		}
		g := groups[name]
		if g == nil {
			g = &DebtGroup{Name: name, Total: decimal.Zero, PaidAmount: decimal.Zero}
			groups[name] = g
		}
		g.Items = append(g.Items, t.Clone())
		g.Total = g.Total.Add(t.Amount)
		if t.Paid {
			g.PaidAmount = g.PaidAmount.Add(t.Amount)
		}
	}

	out := make([]DebtGroup, 0, len(groups))
	for _, target := range targets {
		if g, ok := groups[target]; ok {
			out = append(out, *g)
		}
	}
	return out
}
