package sync

import (
	"context"
	"testing"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedEngine(t *testing.T) *Engine {
	t.Helper()
	engine := New(store.NewMemoryStore(), nil, &countingGenerator{})
	t.Cleanup(func() { engine.Close() })
	_, err := engine.LoadMonth(context.Background(), 2026, 2)
	require.NoError(t, err)
	return engine
}

func TestEngine_TogglePaid(t *testing.T) {
	engine := loadedEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.TogglePaid(ctx, domain.ListExpenses, "exp_rent"))
	assert.True(t, engine.Current().Expenses[0].Paid)

	require.NoError(t, engine.TogglePaid(ctx, domain.ListExpenses, "exp_rent"))
	assert.False(t, engine.Current().Expenses[0].Paid)

	assert.ErrorIs(t, engine.TogglePaid(ctx, domain.ListExpenses, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, engine.TogglePaid(ctx, domain.ListIncomes, "exp_rent"), domain.ErrNotFound)
}

func TestEngine_ToggleGroupPaid(t *testing.T) {
	engine := loadedEngine(t)
	ctx := context.Background()
	group := "Moradia (Essencial)"

	// mixed state: paying the group pays everything
	require.NoError(t, engine.TogglePaid(ctx, domain.ListExpenses, "exp_rent"))
	require.NoError(t, engine.ToggleGroupPaid(ctx, domain.ListExpenses, group))
	current := engine.Current()
	assert.True(t, current.Expenses[0].Paid)
	assert.True(t, current.Expenses[1].Paid)

	// fully paid: toggling again unpays everything
	require.NoError(t, engine.ToggleGroupPaid(ctx, domain.ListExpenses, group))
	current = engine.Current()
	assert.False(t, current.Expenses[0].Paid)
	assert.False(t, current.Expenses[1].Paid)

	assert.ErrorIs(t, engine.ToggleGroupPaid(ctx, domain.ListExpenses, "Nope"), domain.ErrNotFound)
}

func TestEngine_TogglePaidAll(t *testing.T) {
	engine := loadedEngine(t)
	ctx := context.Background()
	ids := []string{"exp_rent", "exp_power"}

	// mixed state: paying the set pays everything in it
	require.NoError(t, engine.TogglePaid(ctx, domain.ListExpenses, "exp_power"))
	require.NoError(t, engine.TogglePaidAll(ctx, domain.ListExpenses, ids))
	current := engine.Current()
	assert.True(t, current.Expenses[0].Paid)
	assert.True(t, current.Expenses[1].Paid)

	// fully paid: toggling again unpays everything in it
	require.NoError(t, engine.TogglePaidAll(ctx, domain.ListExpenses, ids))
	current = engine.Current()
	assert.False(t, current.Expenses[0].Paid)
	assert.False(t, current.Expenses[1].Paid)

	// unknown ids are ignored as long as something matches
	require.NoError(t, engine.TogglePaidAll(ctx, domain.ListExpenses, []string{"exp_rent", "nope"}))
	current = engine.Current()
	assert.True(t, current.Expenses[0].Paid)
	assert.False(t, current.Expenses[1].Paid)

	assert.ErrorIs(t, engine.TogglePaidAll(ctx, domain.ListExpenses, []string{"nope"}), domain.ErrNotFound)
	assert.ErrorIs(t, engine.TogglePaidAll(ctx, domain.ListExpenses, nil), domain.ErrNotFound)
}

func TestEngine_AddUpdateDeleteTransaction(t *testing.T) {
	engine := loadedEngine(t)
	ctx := context.Background()

	tx := domain.Transaction{
		Description: "FARMÁCIA",
		Amount:      decimal.RequireFromString("89.90"),
		Category:    domain.CategoryHealth,
		Date:        "2026-02-14",
	}
	require.NoError(t, engine.AddTransaction(ctx, domain.ListAvulsosItems, tx))

	current := engine.Current()
	require.Len(t, current.AvulsosItems, 1)
	added := current.AvulsosItems[0]
	assert.NotEmpty(t, added.ID, "an id is assigned when the caller leaves it empty")

	added.Amount = decimal.RequireFromString("94.50")
	require.NoError(t, engine.UpdateTransaction(ctx, domain.ListAvulsosItems, added))
	assert.True(t, engine.Current().AvulsosItems[0].Amount.Equal(decimal.RequireFromString("94.50")))

	missing := added
	missing.ID = "nope"
	assert.ErrorIs(t, engine.UpdateTransaction(ctx, domain.ListAvulsosItems, missing), domain.ErrNotFound)

	require.NoError(t, engine.DeleteTransaction(ctx, domain.ListAvulsosItems, added.ID))
	assert.Empty(t, engine.Current().AvulsosItems)
	assert.ErrorIs(t, engine.DeleteTransaction(ctx, domain.ListAvulsosItems, added.ID), domain.ErrNotFound)
}

func TestEngine_MutationsWithoutLoadedMonth(t *testing.T) {
	engine := New(store.NewMemoryStore(), nil, &countingGenerator{})
	defer engine.Close()
	ctx := context.Background()

	assert.ErrorIs(t, engine.TogglePaid(ctx, domain.ListExpenses, "x"), domain.ErrNotFound)
	assert.ErrorIs(t, engine.AddTransaction(ctx, domain.ListExpenses, domain.Transaction{
		Description: "X", Amount: decimal.New(1, 0), Category: domain.CategoryOther,
	}), domain.ErrNotFound)
}
