// Package generator produces the template MonthData for a month no one
// has opened yet. Generation is a pure function of (year, month) and the
// rule set; the sync engine owns persistence of the result.
package generator

import (
	"fmt"
	"strings"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/shopspring/decimal"
)

var mumbucaFactor = decimal.RequireFromString("0.92")

// Generator turns a rule set into month templates.
type Generator struct {
	rules RuleSet
}

// New creates a Generator over the given rules.
func New(rules RuleSet) *Generator {
	return &Generator{rules: rules}
}

// NewDefault creates a Generator over the family's standing rules.
func NewDefault() *Generator {
	return New(DefaultRules())
}

// Generate builds the full MonthData template for a month. Two calls with
// the same inputs produce structurally equal output except for UpdatedAt.
func (g *Generator) Generate(year, month int) *domain.MonthData {
	prevYear, prevMonth := domain.AddMonths(year, month, -1)

	incomes := g.incomes(year, month, prevYear, prevMonth)
	expenses := g.expenses(year, month)

	data := &domain.MonthData{
		Incomes:       incomes,
		Expenses:      expenses,
		ShoppingItems: []domain.Transaction{},
		AvulsosItems:  []domain.Transaction{},
		Goals:         []domain.Goal{},
		BankAccounts:  append([]domain.BankAccount(nil), g.rules.InitialAccounts...),
	}
	g.distributeSurplus(data, year, month)
	data.Touch()
	return data
}

func (g *Generator) isOpening(year, month int) bool {
	return year == g.rules.OpeningYear && month == g.rules.OpeningMonth
}

// paidAtOpening reports whether a description was already settled when
// the ledger was first seeded.
func (g *Generator) paidAtOpening(description string) bool {
	upper := strings.ToUpper(description)
	for _, token := range g.rules.PaidAtOpening {
		if strings.Contains(upper, token) {
			return true
		}
	}
	return false
}

func (g *Generator) incomes(year, month, prevYear, prevMonth int) []domain.Transaction {
	// Salary lands on the previous month's payday; Mumbuca on the 15th
	// of the viewed month.
	payDay := g.rules.DefaultPaymentDay
	if d, ok := g.rules.PaymentDays[prevMonth]; ok {
		payDay = d
	}
	salaryDate := fmt.Sprintf("%d-%02d-%02d", prevYear, prevMonth, payDay)
	mumbucaDate := fmt.Sprintf("%d-%02d-%02d", year, month, g.rules.MumbucaDay)

	opening := g.isOpening(year, month)

	incomes := make([]domain.Transaction, 0, len(g.rules.BaseIncomes)+2)
	for _, rule := range g.rules.BaseIncomes {
		date := salaryDate
		if rule.Category == domain.CategoryMumbuca {
			date = mumbucaDate
		}
		incomes = append(incomes, domain.Transaction{
			ID:          fmt.Sprintf("%s_%d_%d", rule.IDKey, year, month),
			Description: rule.Description,
			Amount:      rule.Amount,
			Category:    rule.Category,
			Paid:        opening,
			Date:        date,
		})
	}

	// 13º salário: first half in July, second half in January.
	if month == 7 {
		for _, rule := range g.rules.FirstBonus {
			incomes = append(incomes, domain.Transaction{
				ID:          fmt.Sprintf("%s_%d", rule.IDKey, year),
				Description: rule.Description,
				Amount:      rule.Amount,
				Category:    domain.CategorySalary,
				Date:        fmt.Sprintf("%d-06-26", year),
			})
		}
	}
	if month == 1 {
		for _, rule := range g.rules.SecondBonus {
			incomes = append(incomes, domain.Transaction{
				ID:          fmt.Sprintf("%s_%d", rule.IDKey, year),
				Description: rule.Description,
				Amount:      rule.Amount,
				Category:    domain.CategorySalary,
				Date:        fmt.Sprintf("%d-12-07", prevYear),
			})
		}
	}
	return incomes
}

func (g *Generator) expenses(year, month int) []domain.Transaction {
	opening := g.isOpening(year, month)
	afterOpeningYear, afterOpeningMonth := domain.AddMonths(g.rules.OpeningYear, g.rules.OpeningMonth, 1)
	monthAfterOpening := year == afterOpeningYear && month == afterOpeningMonth

	expenses := make([]domain.Transaction, 0, len(g.rules.Cyclical)+len(g.rules.Plans))

	for _, rule := range g.rules.Cyclical {
		// The Claro/Vivo lines were cancelled right after the opening
		// month and only come back once renegotiated.
		if monthAfterOpening &&
			(rule.Description == "CONTA DA CLARO ANDRÉ" || rule.Description == "CONTA DA VIVO ANDRÉ") {
			continue
		}

		amount := rule.Amount
		if strings.Contains(rule.Description, "ITAÚ") {
			// Statement amounts observed while the card was settling.
			if opening {
				amount = dec("56.40")
			} else if monthAfterOpening {
				amount = dec("57.00")
			}
		}

		expenses = append(expenses, domain.Transaction{
			ID:          fmt.Sprintf("exp_%d_%d_%s", year, month, stripSpaces(rule.Description)),
			Description: rule.Description,
			Amount:      amount,
			Category:    rule.Category,
			Paid:        opening && g.paidAtOpening(rule.Description),
			DueDate:     fmt.Sprintf("%d-%02d-%02d", year, month, rule.Day),
			Group:       "Despesas Fixas",
			Owner:       rule.Owner,
		})
	}

	for _, rule := range g.rules.Plans {
		inst, ok := installmentFor(rule.StartYear, rule.StartMonth, rule.Installments, year, month)
		if !ok {
			continue
		}
		amount := rule.TotalAmount.Div(decimal.NewFromInt(int64(rule.Installments))).Round(2)
		expenses = append(expenses, domain.Transaction{
			ID:          fmt.Sprintf("fin_%s_%d", stripSpaces(rule.Description), inst.Current),
			Description: rule.Description,
			Amount:      amount,
			Category:    rule.Category,
			Paid:        opening && g.paidAtOpening(rule.Description),
			DueDate:     fmt.Sprintf("%d-%02d-%02d", year, month, rule.Day),
			Installments: &domain.InstallmentInfo{
				Current: inst.Current,
				Total:   inst.Total,
			},
			Group: "Despesas Variáveis",
			Owner: rule.Owner,
		})
	}

	return expenses
}

// distributeSurplus adds the allocation placeholders and their goals when
// the projected surplus clears the floor.
func (g *Generator) distributeSurplus(data *domain.MonthData, year, month int) {
	// Distribution only runs within its configured year; later years get
	// replanned rules.
	if year != g.rules.DistributionFromYear || month < g.rules.DistributionFromMonth {
		return
	}

	salaryOnly := decimal.Zero
	mumbucaOnly := decimal.Zero
	for i := range data.Incomes {
		switch data.Incomes[i].Category {
		case domain.CategorySalary:
			salaryOnly = salaryOnly.Add(data.Incomes[i].Amount)
		case domain.CategoryMumbuca:
			mumbucaOnly = mumbucaOnly.Add(data.Incomes[i].Amount)
		}
	}
	committed := decimal.Zero
	for i := range data.Expenses {
		committed = committed.Add(data.Expenses[i].Amount)
	}

	surplus := salaryOnly.Add(mumbucaOnly.Mul(mumbucaFactor)).Sub(committed)
	if surplus.LessThanOrEqual(g.rules.SurplusFloor) {
		return
	}

	for _, split := range g.rules.Splits {
		amount := surplus.Mul(split.Share).Round(2)
		id := fmt.Sprintf("%s_%d_%d", split.IDKey, year, month)

		data.Expenses = append(data.Expenses, domain.Transaction{
			ID:             id,
			Description:    split.Description,
			Amount:         amount,
			Category:       split.Category,
			Date:           fmt.Sprintf("%d-%02d-05", year, month),
			Group:          "Distribuição de Sobras (Planejamento)",
			IsDistribution: true,
		})
		data.Goals = append(data.Goals, domain.Goal{
			ID:                  "goal_" + id,
			Name:                split.Description,
			Category:            split.Category,
			Amount:              amount,
			LinkedTransactionID: id,
		})
	}
}

// installmentFor places (targetYear, targetMonth) inside a payment plan
// window. Returns false when the plan has not started or is exhausted.
func installmentFor(startYear, startMonth, total, targetYear, targetMonth int) (domain.InstallmentInfo, bool) {
	diff := (targetYear-startYear)*12 + (targetMonth - startMonth)
	current := diff + 1
	if current < 1 || current > total {
		return domain.InstallmentInfo{}, false
	}
	return domain.InstallmentInfo{Current: current, Total: total}, true
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
