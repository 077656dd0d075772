package advisor

import (
	"testing"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/stats"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	data := domain.NewMonthData()
	data.Incomes = append(data.Incomes,
		domain.Transaction{ID: "inc_1", Description: "SALÁRIO", Amount: decimal.RequireFromString("3436.22"), Category: domain.CategorySalary},
		domain.Transaction{ID: "inc_2", Description: "MUMBUCA", Amount: decimal.RequireFromString("650.00"), Category: domain.CategoryMumbuca},
	)
	data.Expenses = append(data.Expenses,
		domain.Transaction{ID: "exp_1", Description: "ALUGUEL", Amount: decimal.RequireFromString("1300.00"), Category: domain.CategoryHousing},
	)

	projections := []stats.Projection{{
		Month:       "Atual",
		Year:        2026,
		FixedIncome: decimal.RequireFromString("6872.44"),
		Margin:      decimal.RequireFromString("2100.50"),
		Details:     []string{"ALUGUEL: 1300.00"},
	}}

	prompt, err := BuildPrompt("Quanto posso guardar para a viagem?", data, projections)
	require.NoError(t, err)

	// salary-like income only, not Mumbuca
	assert.Contains(t, prompt, "Entradas Totais (Salário Líquido): 3436.22")
	// Mumbuca after the 8% fee
	assert.Contains(t, prompt, "Mumbuca (Líquido após taxa): 598.00")
	assert.Contains(t, prompt, "Despesas Totais: 1300.00")
	assert.Contains(t, prompt, `"margin":"2100.5"`)
	assert.Contains(t, prompt, `"Quanto posso guardar para a viagem?"`)
}

func TestBuildPrompt_Validation(t *testing.T) {
	_, err := BuildPrompt("   ", domain.NewMonthData(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// nil month data is fine: everything reads as zero
	prompt, err := BuildPrompt("pergunta", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Despesas Totais: 0.00")
}
