package stats

import (
	"testing"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupDebts_SubstringMatch(t *testing.T) {
	m := &domain.MonthData{
		Expenses: []domain.Transaction{
			expense("e1", "Pagamento Lili Torres viagem", "100", true),
			expense("e2", "Mercado", "50", false),
		},
	}

	groups := GroupDebts(m, []string{"Lili Torres"})
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Lili Torres", g.Name)
	assert.True(t, g.Total.Equal(dec("100")))
	assert.True(t, g.PaidAmount.Equal(dec("100")))
	require.Len(t, g.Items, 1)
	assert.Equal(t, "e1", g.Items[0].ID)
}

func TestGroupDebts_CaseInsensitive(t *testing.T) {
	m := &domain.MonthData{
		Expenses: []domain.Transaction{
			expense("e1", "ESTADIA EM CIDADE DO CABO (LILI TORRES)", "239.40", false),
		},
	}
	groups := GroupDebts(m, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Lili Torres", groups[0].Name)
	assert.True(t, groups[0].PaidAmount.IsZero())
}

func TestGroupDebts_FirstTargetWinsOnAmbiguity(t *testing.T) {
	m := &domain.MonthData{
		Expenses: []domain.Transaction{
			expense("e1", "acerto marcia brito e marcia bispo", "75", false),
		},
	}
	groups := GroupDebts(m, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Marcia Brito", groups[0].Name)
}

func TestGroupDebts_OwnerTagOverridesDescription(t *testing.T) {
	tagged := expense("e1", "Pagamento Lili Torres viagem", "100", false)
	tagged.Owner = "Marcia Bispo"

	// The owner tag points elsewhere than the description text.
	m := &domain.MonthData{Expenses: []domain.Transaction{tagged}}
	groups := GroupDebts(m, nil)
	require.Len(t, groups, 1)
	assert.Equal(t, "Marcia Bispo", groups[0].Name)
}

func TestGroupDebts_UnknownOwnerTagExcluded(t *testing.T) {
	tagged := expense("e1", "Pagamento Lili Torres viagem", "100", false)
	tagged.Owner = "Alguém"

	m := &domain.MonthData{Expenses: []domain.Transaction{tagged}}
	assert.Empty(t, GroupDebts(m, nil))
}

func TestGroupDebts_AccumulatesPerPerson(t *testing.T) {
	m := &domain.MonthData{
		Expenses: []domain.Transaction{
			expense("e1", "GUARDA ROUPAS (MARCIA BRITO)", "182.90", true),
			expense("e2", "PASSAGENS ONIBUS RIO X SP (MARCIA BRITO)", "87.60", false),
			expense("e3", "CELULAR DA MARCELLY (MARCIA BISPO)", "385.74", false),
		},
	}

	groups := GroupDebts(m, nil)
	require.Len(t, groups, 2)

	brito := groups[0]
	assert.Equal(t, "Marcia Brito", brito.Name)
	assert.True(t, brito.Total.Equal(dec("270.50")))
	assert.True(t, brito.PaidAmount.Equal(dec("182.90")))
	assert.Len(t, brito.Items, 2)

	bispo := groups[1]
	assert.Equal(t, "Marcia Bispo", bispo.Name)
	assert.True(t, bispo.Total.Equal(dec("385.74")))
}
