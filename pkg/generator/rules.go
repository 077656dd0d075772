package generator

import (
	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// IncomeRule seeds one recurring income row per month.
type IncomeRule struct {
	IDKey       string
	Description string
	Amount      decimal.Decimal
	Category    domain.Category
}

// BonusRule seeds a 13º salário installment in a specific month.
type BonusRule struct {
	IDKey       string
	Description string
	Amount      decimal.Decimal
}

// CyclicalRule seeds one fixed expense due every month.
type CyclicalRule struct {
	Description string
	Amount      decimal.Decimal
	Category    domain.Category
	Day         int
	Owner       string
}

// InstallmentRule seeds one slice of a fixed-count payment plan for each
// month inside its window.
type InstallmentRule struct {
	Description  string
	TotalAmount  decimal.Decimal
	Category     domain.Category
	Day          int
	Installments int
	StartYear    int
	StartMonth   int
	Owner        string
}

// DistributionSplit is one leg of the projected-surplus allocation.
type DistributionSplit struct {
	IDKey       string
	Description string
	Category    domain.Category
	Share       decimal.Decimal
}

// RuleSet is everything the generator needs to produce a month template.
type RuleSet struct {
	// PaymentDays maps month number to the salary payment day of that
	// month. Salaries for month M land on the payday of M-1.
	PaymentDays map[int]int
	// DefaultPaymentDay applies when PaymentDays has no entry.
	DefaultPaymentDay int
	// MumbucaDay is the day of the viewed month the Mumbuca credit lands.
	MumbucaDay int

	BaseIncomes []IncomeRule

	// FirstBonus rows appear in July, dated June 26 of the same year.
	// SecondBonus rows appear in January, dated December 7 of the
	// previous year.
	FirstBonus  []BonusRule
	SecondBonus []BonusRule

	Cyclical []CyclicalRule
	Plans    []InstallmentRule

	// Splits drive the surplus distribution from DistributionFromYear/
	// Month onward, whenever the projected surplus exceeds SurplusFloor.
	Splits                []DistributionSplit
	SurplusFloor          decimal.Decimal
	DistributionFromYear  int
	DistributionFromMonth int

	InitialAccounts []domain.BankAccount

	// Opening-month seeding: rows whose description contains one of
	// PaidAtOpening start out paid in the opening month, and a couple of
	// amounts differ while the card statement was still settling.
	OpeningYear   int
	OpeningMonth  int
	PaidAtOpening []string
}

// DefaultRules returns the family's standing configuration.
func DefaultRules() RuleSet {
	return RuleSet{
		// Calendário da Folha de Pagamento 2026 (Maricá).
		PaymentDays: map[int]int{
			1: 28, 2: 26, 3: 27, 4: 28, 5: 22, 6: 26,
			7: 28, 8: 28, 9: 28, 10: 27, 11: 27, 12: 22,
		},
		DefaultPaymentDay: 28,
		MumbucaDay:        15,

		BaseIncomes: []IncomeRule{
			{IDKey: "inc_m", Description: "SALARIO MARCELLY", Amount: dec("3436.22"), Category: domain.CategorySalary},
			{IDKey: "inc_a", Description: "SALARIO ANDRE", Amount: dec("3436.22"), Category: domain.CategorySalary},
			{IDKey: "inc_mum_m", Description: "MUMBUCA MARCELLY", Amount: dec("650.00"), Category: domain.CategoryMumbuca},
			{IDKey: "inc_mum_a", Description: "MUMBUCA ANDRE", Amount: dec("650.00"), Category: domain.CategoryMumbuca},
		},

		FirstBonus: []BonusRule{
			{IDKey: "inc_13_1_m", Description: "1ª PARCELA 13º MARCELLY", Amount: dec("1718.11")},
			{IDKey: "inc_13_1_a", Description: "1ª PARCELA 13º ANDRÉ", Amount: dec("1718.11")},
		},
		SecondBonus: []BonusRule{
			{IDKey: "inc_13_2_m", Description: "2ª PARCELA 13º MARCELLY", Amount: dec("1500.00")},
			{IDKey: "inc_13_2_a", Description: "2ª PARCELA 13º ANDRÉ", Amount: dec("1500.00")},
		},

		Cyclical: []CyclicalRule{
			{Description: "ALUGUEL", Amount: dec("1300.00"), Category: domain.CategoryHousing, Day: 1},
			{Description: "PSICÓLOGA DA MARCELLY", Amount: dec("280.00"), Category: domain.CategoryHealth, Day: 10},
			{Description: "APPAI DA MARCELLY (MARCIA BISPO)", Amount: dec("110.00"), Category: domain.CategoryHealth, Day: 23, Owner: "Marcia Bispo"},
			{Description: "APPAI DO ANDRÉ (MARCIA BRITO)", Amount: dec("129.50"), Category: domain.CategoryHealth, Day: 20, Owner: "Marcia Brito"},
			{Description: "FATURA DO CARTÃO DO ANDRÉ ITAÚ", Amount: dec("150.00"), Category: domain.CategoryOther, Day: 24},
			{Description: "INTERNET DA CASA", Amount: dec("125.00"), Category: domain.CategoryHousing, Day: 18},
			{Description: "INTERMÉDICA DO ANDRÉ (MARCIA BRITO)", Amount: dec("123.00"), Category: domain.CategoryHealth, Day: 15, Owner: "Marcia Brito"},
			{Description: "CONTA DA CLARO ANDRÉ", Amount: dec("75.00"), Category: domain.CategoryHousing, Day: 5},
			{Description: "CONTA DA VIVO ANDRÉ", Amount: dec("110.00"), Category: domain.CategoryHousing, Day: 5},
			{Description: "SEGURO DO CARRO", Amount: dec("143.00"), Category: domain.CategoryTransport, Day: 20},
			{Description: "CONTA DA VIVO MARCELLY", Amount: dec("66.60"), Category: domain.CategoryHousing, Day: 23},
		},

		Plans: []InstallmentRule{
			{Description: "GUARDA ROUPAS (MARCIA BRITO)", TotalAmount: dec("914.48"), Category: domain.CategoryHousing, Day: 10, Installments: 5, StartYear: 2026, StartMonth: 1, Owner: "Marcia Brito"},
			{Description: "CELULAR DA MARCELLY (MARCIA BISPO)", TotalAmount: dec("4628.88"), Category: domain.CategoryOther, Day: 10, Installments: 12, StartYear: 2026, StartMonth: 1, Owner: "Marcia Bispo"},
			{Description: "CONSERTO DO CARRO DE OUTUBRO (MARCIA BRITO)", TotalAmount: dec("1447.00"), Category: domain.CategoryTransport, Day: 10, Installments: 4, StartYear: 2025, StartMonth: 11, Owner: "Marcia Brito"},
			{Description: "FACULDADE DA MARCELLY (MARCIA BRITO)", TotalAmount: dec("2026.80"), Category: domain.CategoryEducation, Day: 12, Installments: 10, StartYear: 2025, StartMonth: 11, Owner: "Marcia Brito"},
			{Description: "PASSAGENS AÉREAS SP X JOBURG (LILI TORRES)", TotalAmount: dec("4038.96"), Category: domain.CategoryLeisure, Day: 15, Installments: 8, StartYear: 2025, StartMonth: 12, Owner: "Lili Torres"},
			{Description: "PASSAGENS AÉREAS JOBURG X CAPE TOWN (MARCIA BRITO)", TotalAmount: dec("1560.00"), Category: domain.CategoryLeisure, Day: 15, Installments: 5, StartYear: 2026, StartMonth: 2, Owner: "Marcia Brito"},
			{Description: "ESTADIA DE IDA EM SÃO PAULO (LILI TORRES)", TotalAmount: dec("289.44"), Category: domain.CategoryLeisure, Day: 15, Installments: 4, StartYear: 2026, StartMonth: 2, Owner: "Lili Torres"},
			{Description: "ESTADIA DE VOLTA SÃO PAULO (LILI TORRES)", TotalAmount: dec("358.20"), Category: domain.CategoryLeisure, Day: 15, Installments: 4, StartYear: 2026, StartMonth: 2, Owner: "Lili Torres"},
			{Description: "ESTADIA EM CIDADE DO CABO (LILI TORRES)", TotalAmount: dec("1197.00"), Category: domain.CategoryLeisure, Day: 15, Installments: 5, StartYear: 2026, StartMonth: 2, Owner: "Lili Torres"},
			{Description: "ESTADIA DE JOHANESBURGO (LILI TORRES)", TotalAmount: dec("1363.93"), Category: domain.CategoryLeisure, Day: 15, Installments: 5, StartYear: 2026, StartMonth: 2, Owner: "Lili Torres"},
			{Description: "CIDADANIA PORTUGUESA (REBECCA BRITO)", TotalAmount: dec("5040.00"), Category: domain.CategoryDebt, Day: 12, Installments: 36, StartYear: 2024, StartMonth: 11, Owner: "Rebecca Brito"},
			{Description: "PASSAGENS ONIBUS RIO X SP (MARCIA BRITO)", TotalAmount: dec("438.00"), Category: domain.CategoryTransport, Day: 15, Installments: 5, StartYear: 2026, StartMonth: 2, Owner: "Marcia Brito"},
			{Description: "MALA DO ANDRÉ (MARCIA BRITO)", TotalAmount: dec("179.00"), Category: domain.CategoryLeisure, Day: 15, Installments: 3, StartYear: 2026, StartMonth: 2, Owner: "Marcia Brito"},
			{Description: "RENEGOCIAR CARREFOUR (MARCIA BRITO)", TotalAmount: dec("5000.00"), Category: domain.CategoryDebt, Day: 28, Installments: 16, StartYear: 2025, StartMonth: 11, Owner: "Marcia Brito"},
			{Description: "MULTAS", TotalAmount: dec("1040.00"), Category: domain.CategoryTransport, Day: 30, Installments: 4, StartYear: 2025, StartMonth: 10},
			{Description: "EMPRÉSTIMO TIA CÉLIA", TotalAmount: dec("1000.00"), Category: domain.CategoryDebt, Day: 10, Installments: 10, StartYear: 2025, StartMonth: 4},
			{Description: "EMPRÉSTIMO CONSERTO CELULAR (MARCIA BRITO)", TotalAmount: dec("130.00"), Category: domain.CategoryDebt, Day: 10, Installments: 1, StartYear: 2026, StartMonth: 2, Owner: "Marcia Brito"},
			{Description: "DEVOLVER O EMPRÉSTIMO (MARCIA BISPO)", TotalAmount: dec("1000.00"), Category: domain.CategoryDebt, Day: 10, Installments: 1, StartYear: 2026, StartMonth: 2, Owner: "Marcia Bispo"},
		},

		Splits: []DistributionSplit{
			{IDKey: "alloc_compras", Description: "🛒 COMPRAS DO MÊS (CASA)", Category: domain.CategoryFood, Share: dec("0.30")},
			{IDKey: "alloc_viagem", Description: "✈️ FUNDO VIAGEM (PASSAGEM/USO)", Category: domain.CategoryLeisure, Share: dec("0.30")},
			{IDKey: "alloc_poupanca", Description: "📈 RESERVA DE POUPANÇA", Category: domain.CategoryInvestment, Share: dec("0.20")},
			{IDKey: "alloc_diadia", Description: "💵 GIRO DO DIA A DIA (LIVRE)", Category: domain.CategoryOther, Share: dec("0.20")},
		},
		SurplusFloor:          dec("100"),
		DistributionFromYear:  2026,
		DistributionFromMonth: 3,

		InitialAccounts: []domain.BankAccount{
			{ID: "acc_main", Name: "Conta Principal", Balance: decimal.Zero},
			{ID: "acc_mum", Name: "Mumbuca", Balance: decimal.Zero},
		},

		OpeningYear:  2026,
		OpeningMonth: 1,
		PaidAtOpening: []string{
			"ALUGUEL", "REMÉDIOS", "PSICÓLOGA", "APPAI", "VIVO", "CLARO",
			"MULTAS", "RENEGOCIAR", "PASSAGENS", "FACULDADE", "CIDADANIA",
			"GUARDA ROUPAS", "CELULAR", "CONSERTO", "INTERNET",
			"INTERMÉDICA", "FATURA",
		},
	}
}
