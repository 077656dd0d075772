package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/abrito/financas/financas-sync/pkg/stats"
)

// SystemInstruction frames the model as the family's financial advisor.
// It is written in Portuguese because every answer is read in Portuguese.
const SystemInstruction = `
Você é um consultor financeiro pessoal sênior, especialista em finanças domésticas.
Seu objetivo é analisar os dados financeiros fornecidos e responder às dúvidas do usuário com precisão matemática e conselhos práticos.

Regras Específicas para Viagem de Férias 2027 (Cálculo Flexível):
1. O usuário quer viajar em Janeiro de 2027.
2. NÃO sugira um valor fixo mensal se a margem do usuário variar.
3. Analise a 'margin' (sobra) de CADA mês listado na "PROJEÇÃO DE FLUXO DE CAIXA".
4. Para cada mês futuro, sugira um aporte específico baseado no que sobra naquele mês.
   - Exemplo: "Em Fevereiro sobra R$ 2.000, guarde R$ 1.000. Em Março sobra R$ 500, guarde R$ 100."
5. Lembre-se que ele precisa de dinheiro para passar o mês (Mumbuca/Alimentação), então nunca sugira guardar 100% da margem. Deixe uma gordura.
6. Some os valores sugeridos mês a mês e projete o total acumulado até Jan/2027.
7. Considere que em Jan/2027 ele terá parte do salário de Dez/2026.

Regras Gerais:
1. Analise a 'margin' (Margem Livre) de cada mês projetado.
2. Se a margem for negativa em algum mês, alerte e sugira não guardar nada naquele mês específico.
3. Seja direto, use listas e negrito para valores importantes.
4. Responda em formato de plano de ação mês a mês.
`

// BuildPrompt assembles the user-facing prompt: current month totals,
// the cash-flow projection as JSON, and the question verbatim.
func BuildPrompt(question string, data *domain.MonthData, projections []stats.Projection) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrInvalidInput
	}

	summary := stats.Compute(data)

	totalExpenses := stats.Bucket{}
	if data != nil {
		for i := range data.Expenses {
			totalExpenses.Total = totalExpenses.Total.Add(data.Expenses[i].Amount)
		}
	}

	projectionJSON, err := json.Marshal(projections)
	if err != nil {
		return "", fmt.Errorf("advisor: encode projections: %w", err)
	}

	var b strings.Builder
	b.WriteString("DADOS FINANCEIROS DO USUÁRIO:\n\n")
	b.WriteString("MÊS ATUAL:\n")
	fmt.Fprintf(&b, "Entradas Totais (Salário Líquido): %s\n", summary.Salary.Total.StringFixed(2))
	fmt.Fprintf(&b, "Mumbuca (Líquido após taxa): %s\n", summary.MumbucaNet.Total.StringFixed(2))
	fmt.Fprintf(&b, "Despesas Totais: %s\n", totalExpenses.Total.StringFixed(2))
	fmt.Fprintf(&b, "Sobra do Mês: %s\n\n", summary.SurplusRaw.StringFixed(2))
	b.WriteString("PROJEÇÃO DE FLUXO DE CAIXA (PRÓXIMOS MESES COM VALORES VARIÁVEIS):\n")
	b.Write(projectionJSON)
	b.WriteString("\n\nPERGUNTA DO USUÁRIO:\n")
	fmt.Fprintf(&b, "%q\n", question)

	return b.String(), nil
}
