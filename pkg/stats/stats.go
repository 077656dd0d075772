// Package stats derives summary figures from a MonthData snapshot. Every
// function is pure and safe to recompute on each render; amounts stay in
// decimal form end to end.
package stats

import (
	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/shopspring/decimal"
)

// mumbucaFactor is what remains of a Mumbuca credit after the flat 8%
// cash-out fee.
var mumbucaFactor = decimal.RequireFromString("0.92")

// salaryCategories are the income categories counted as salary-like.
var salaryCategories = map[domain.Category]bool{
	domain.CategorySalary:      true,
	domain.CategoryDonation:    true,
	domain.CategoryExtraIncome: true,
}

// Bucket is a total/paid pair over one group of transactions.
type Bucket struct {
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
}

// Summary is the full derivation over one MonthData snapshot.
type Summary struct {
	Salary       Bucket `json:"salary"`
	MumbucaRaw   Bucket `json:"mumbucaRaw"`
	MumbucaNet   Bucket `json:"mumbucaNet"`
	Shopping     Bucket `json:"shopping"`
	Combined     Bucket `json:"combined"`
	RealExpenses Bucket `json:"realExpenses"`
	Distribution Bucket `json:"distribution"`

	// SurplusRaw is combined total income minus real expense total. It
	// deliberately uses totals rather than paid-only figures so the
	// balance does not read negative before income is marked received.
	SurplusRaw decimal.Decimal `json:"surplusRaw"`
}

func sumBucket(items []domain.Transaction, match func(*domain.Transaction) bool) Bucket {
	b := Bucket{Total: decimal.Zero, Paid: decimal.Zero}
	for i := range items {
		t := &items[i]
		if match != nil && !match(t) {
			continue
		}
		b.Total = b.Total.Add(t.Amount)
		if t.Paid {
			b.Paid = b.Paid.Add(t.Amount)
		}
	}
	return b
}

// netMumbuca applies the 8% conversion fee, rounded to the cent.
func netMumbuca(raw decimal.Decimal) decimal.Decimal {
	return raw.Mul(mumbucaFactor).Round(2)
}

// Compute derives the Summary for a snapshot. A nil snapshot yields all
// zeros.
func Compute(m *domain.MonthData) Summary {
	if m == nil {
		m = &domain.MonthData{}
	}

	salary := sumBucket(m.Incomes, func(t *domain.Transaction) bool {
		return salaryCategories[t.Category]
	})
	mumbucaRaw := sumBucket(m.Incomes, func(t *domain.Transaction) bool {
		return t.Category == domain.CategoryMumbuca
	})
	mumbucaNet := Bucket{
		Total: netMumbuca(mumbucaRaw.Total),
		Paid:  netMumbuca(mumbucaRaw.Paid),
	}

	real := sumBucket(m.Expenses, func(t *domain.Transaction) bool {
		return !t.IsDistribution
	})
	distribution := sumBucket(m.Expenses, func(t *domain.Transaction) bool {
		return t.IsDistribution
	})

	combined := Bucket{
		Total: salary.Total.Add(mumbucaNet.Total),
		Paid:  salary.Paid.Add(mumbucaNet.Paid),
	}

	return Summary{
		Salary:       salary,
		MumbucaRaw:   mumbucaRaw,
		MumbucaNet:   mumbucaNet,
		Shopping:     sumBucket(m.ShoppingItems, nil),
		Combined:     combined,
		RealExpenses: real,
		Distribution: distribution,
		SurplusRaw:   combined.Total.Sub(real.Total),
	}
}

// CategoryShare is one slice of the real-expense breakdown.
type CategoryShare struct {
	Category domain.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Share    decimal.Decimal `json:"share"`
}

// CategoryBreakdown groups real expenses by category with each category's
// share of the total. Categories come out in the canonical order.
func CategoryBreakdown(m *domain.MonthData) []CategoryShare {
	if m == nil {
		return nil
	}

	totals := make(map[domain.Category]decimal.Decimal)
	grand := decimal.Zero
	for i := range m.Expenses {
		t := &m.Expenses[i]
		if t.IsDistribution {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
		grand = grand.Add(t.Amount)
	}

	// Divide-by-zero guard: an empty total behaves as 1.
	if grand.IsZero() {
		grand = decimal.NewFromInt(1)
	}

	out := make([]CategoryShare, 0, len(totals))
	for _, cat := range domain.Categories {
		total, ok := totals[cat]
		if !ok {
			continue
		}
		out = append(out, CategoryShare{
			Category: cat,
			Total:    total,
			Share:    total.Div(grand),
		})
	}
	return out
}

// GoalStatus is a goal together with how much of it is in hand: the full
// target once the linked transaction is paid, zero before.
type GoalStatus struct {
	Goal    domain.Goal     `json:"goal"`
	Current decimal.Decimal `json:"current"`
	Funded  bool            `json:"funded"`
}

// GoalProgress resolves each goal against its linked expense.
func GoalProgress(m *domain.MonthData) []GoalStatus {
	if m == nil {
		return nil
	}
	out := make([]GoalStatus, 0, len(m.Goals))
	for _, g := range m.Goals {
		status := GoalStatus{Goal: g, Current: decimal.Zero}
		if linked := m.Find(domain.ListExpenses, g.LinkedTransactionID); linked != nil && linked.Paid {
			status.Current = g.Amount
			status.Funded = true
		}
		out = append(out, status)
	}
	return out
}

// DerivedAccounts rebuilds the two display accounts from the summary: the
// main account holds the salary pool, the Mumbuca account its net value.
func DerivedAccounts(s Summary) []domain.BankAccount {
	return []domain.BankAccount{
		{ID: "acc_main", Name: "Conta Principal", Balance: s.Salary.Total},
		{ID: "acc_mum", Name: "Mumbuca", Balance: s.MumbucaNet.Total},
	}
}
