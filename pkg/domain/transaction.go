package domain

import (
	"github.com/shopspring/decimal"
)

// Category is the fixed set of transaction categories. The wire values are
// the Portuguese labels the family has always used; renaming them would
// orphan every stored document.
type Category string

const (
	CategorySalary      Category = "Salário"
	CategoryMumbuca     Category = "Mumbuca"
	CategoryHousing     Category = "Moradia"
	CategoryFood        Category = "Alimentação"
	CategoryTransport   Category = "Transporte"
	CategoryHealth      Category = "Saúde"
	CategoryEducation   Category = "Educação"
	CategoryLeisure     Category = "Lazer"
	CategoryDebt        Category = "Dívidas"
	CategoryInvestment  Category = "Investimento"
	CategoryFuel        Category = "Abastecimento"
	CategoryDonation    Category = "Doação"
	CategoryExtraIncome Category = "Renda Extra"
	CategoryOther       Category = "Outros"
)

// Categories lists every valid category.
var Categories = []Category{
	CategorySalary, CategoryMumbuca, CategoryHousing, CategoryFood,
	CategoryTransport, CategoryHealth, CategoryEducation, CategoryLeisure,
	CategoryDebt, CategoryInvestment, CategoryFuel, CategoryDonation,
	CategoryExtraIncome, CategoryOther,
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ListKey identifies one of the four transaction lists of a MonthData.
// The values double as JSON field names.
type ListKey string

const (
	ListIncomes       ListKey = "incomes"
	ListExpenses      ListKey = "expenses"
	ListShoppingItems ListKey = "shoppingItems"
	ListAvulsosItems  ListKey = "avulsosItems"
)

// ListKeys enumerates the four lists in document order.
var ListKeys = []ListKey{ListIncomes, ListExpenses, ListShoppingItems, ListAvulsosItems}

// InstallmentInfo describes the position of a transaction inside a
// fixed-count payment plan.
type InstallmentInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Transaction is an atomic money movement inside a month.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Paid        bool            `json:"paid"`

	// Date and DueDate are ISO dates (YYYY-MM-DD). DueDate takes
	// precedence as the effective date when both are set.
	Date    string `json:"date,omitempty"`
	DueDate string `json:"dueDate,omitempty"`

	Installments *InstallmentInfo `json:"installments,omitempty"`

	// Group overrides date-based grouping in the UI ("Despesas Fixas",
	// "Despesas Variáveis", "Distribuição de Sobras (Planejamento)").
	Group string `json:"group,omitempty"`

	// Owner is an explicit person tag for debt grouping. When empty the
	// legacy description substring matching applies.
	Owner string `json:"owner,omitempty"`

	// IsDistribution marks a surplus-allocation placeholder that is
	// excluded from real expense totals.
	IsDistribution bool `json:"isDistribution,omitempty"`
}

// EffectiveDate returns the date used for grouping and sorting.
func (t *Transaction) EffectiveDate() string {
	if t.DueDate != "" {
		return t.DueDate
	}
	return t.Date
}

// Validate checks the per-transaction invariants.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return ErrInvalidInput
	}
	if t.Amount.IsNegative() {
		return ErrInvalidInput
	}
	if t.Installments != nil {
		if t.Installments.Current < 1 || t.Installments.Current > t.Installments.Total {
			return ErrInvalidInput
		}
	}
	return nil
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() Transaction {
	out := *t
	if t.Installments != nil {
		inst := *t.Installments
		out.Installments = &inst
	}
	return out
}
