package stats

import (
	"fmt"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/shopspring/decimal"
)

// Projection is the single-month-ahead cash flow view handed to the
// advisory collaborator.
type Projection struct {
	Month                 string          `json:"month"`
	Year                  int             `json:"year"`
	FixedIncome           decimal.Decimal `json:"fixedIncome"`
	RecurringExpenses     decimal.Decimal `json:"recurringExpenses"`
	CommittedInstallments decimal.Decimal `json:"committedInstallments"`
	TotalCommitted        decimal.Decimal `json:"totalCommitted"`
	Margin                decimal.Decimal `json:"margin"`
	Details               []string        `json:"details"`
}

// Project builds the projection for the currently viewed month.
func Project(m *domain.MonthData, year int) Projection {
	summary := Compute(m)

	recurring := decimal.Zero
	installments := decimal.Zero
	var details []string
	if m != nil {
		for i := range m.Expenses {
			t := &m.Expenses[i]
			if t.IsDistribution {
				continue
			}
			if t.Installments != nil {
				installments = installments.Add(t.Amount)
			} else {
				recurring = recurring.Add(t.Amount)
			}
			details = append(details, fmt.Sprintf("%s: %s", t.Description, t.Amount.StringFixed(2)))
		}
	}

	return Projection{
		Month:                 "Atual",
		Year:                  year,
		FixedIncome:           summary.Salary.Total,
		RecurringExpenses:     recurring,
		CommittedInstallments: installments,
		TotalCommitted:        summary.RealExpenses.Total,
		Margin:                summary.Salary.Total.Sub(summary.RealExpenses.Total),
		Details:               details,
	}
}
