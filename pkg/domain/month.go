package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings or allocation target, optionally funded by a
// transaction whose paid flag marks the money as in hand.
type Goal struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name,omitempty"`
	Category            Category        `json:"category"`
	Amount              decimal.Decimal `json:"amount"`
	LinkedTransactionID string          `json:"linkedTransactionId,omitempty"`
}

// BankAccount is a display-only account balance.
type BankAccount struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthData is the root aggregate: one shared document per (year, month).
type MonthData struct {
	Incomes       []Transaction `json:"incomes"`
	Expenses      []Transaction `json:"expenses"`
	ShoppingItems []Transaction `json:"shoppingItems"`
	AvulsosItems  []Transaction `json:"avulsosItems"`
	Goals         []Goal        `json:"goals"`
	BankAccounts  []BankAccount `json:"bankAccounts"`

	// UpdatedAt is milliseconds since epoch at the last mutation. It is
	// informational only: conflict arbitration is remote-wins, never a
	// timestamp comparison.
	UpdatedAt int64 `json:"updatedAt"`
}

// NewMonthData returns an empty document with all lists allocated, so it
// serializes with explicit empty arrays rather than nulls.
func NewMonthData() *MonthData {
	return &MonthData{
		Incomes:       []Transaction{},
		Expenses:      []Transaction{},
		ShoppingItems: []Transaction{},
		AvulsosItems:  []Transaction{},
		Goals:         []Goal{},
		BankAccounts:  []BankAccount{},
	}
}

// List returns the transaction list named by key. The returned slice is
// the live backing array, not a copy.
func (m *MonthData) List(key ListKey) []Transaction {
	switch key {
	case ListIncomes:
		return m.Incomes
	case ListExpenses:
		return m.Expenses
	case ListShoppingItems:
		return m.ShoppingItems
	case ListAvulsosItems:
		return m.AvulsosItems
	}
	return nil
}

// SetList replaces the transaction list named by key.
func (m *MonthData) SetList(key ListKey, items []Transaction) {
	switch key {
	case ListIncomes:
		m.Incomes = items
	case ListExpenses:
		m.Expenses = items
	case ListShoppingItems:
		m.ShoppingItems = items
	case ListAvulsosItems:
		m.AvulsosItems = items
	}
}

// Find returns a pointer to the transaction with the given id inside the
// named list, or nil.
func (m *MonthData) Find(key ListKey, id string) *Transaction {
	list := m.List(key)
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// Touch stamps UpdatedAt with the current wall clock.
func (m *MonthData) Touch() {
	m.UpdatedAt = time.Now().UnixMilli()
}

// Clone returns a deep copy. Consumers treat engine snapshots as
// immutable, so every mutation path starts from a clone.
func (m *MonthData) Clone() *MonthData {
	out := &MonthData{UpdatedAt: m.UpdatedAt}
	for _, key := range ListKeys {
		src := m.List(key)
		if src == nil {
			continue
		}
		dst := make([]Transaction, len(src))
		for i := range src {
			dst[i] = src[i].Clone()
		}
		out.SetList(key, dst)
	}
	if m.Goals != nil {
		out.Goals = make([]Goal, len(m.Goals))
		copy(out.Goals, m.Goals)
	}
	if m.BankAccounts != nil {
		out.BankAccounts = make([]BankAccount, len(m.BankAccounts))
		copy(out.BankAccounts, m.BankAccounts)
	}
	return out
}

// Validate checks the aggregate invariants: valid transactions and ids
// unique within each list.
func (m *MonthData) Validate() error {
	for _, key := range ListKeys {
		seen := make(map[string]struct{})
		for i := range m.List(key) {
			t := &m.List(key)[i]
			if err := t.Validate(); err != nil {
				return fmt.Errorf("%s[%d] %q: %w", key, i, t.ID, err)
			}
			if _, dup := seen[t.ID]; dup {
				return fmt.Errorf("%s: duplicate id %q: %w", key, t.ID, ErrInvalidInput)
			}
			seen[t.ID] = struct{}{}
		}
	}
	return nil
}

// StorageKey is the local persistence key for a month
// ("financeData_2026_2"). Month is not zero-padded.
func StorageKey(prefix string, year, month int) string {
	return fmt.Sprintf("%s_%d_%d", prefix, year, month)
}

// MonthKey is the remote document key for a month ("2026-02").
func MonthKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// ValidMonth reports whether the pair denotes a real calendar month.
func ValidMonth(year, month int) bool {
	return month >= 1 && month <= 12 && year >= 1 && year <= 9999
}

// AddMonths applies a month delta to a (year, month) pair, carrying over
// year boundaries in both directions.
func AddMonths(year, month, diff int) (int, int) {
	total := year*12 + (month - 1) + diff
	return total / 12, total%12 + 1
}
