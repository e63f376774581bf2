package llm

import (
	"strings"

	"github.com/faturai/faturai/internal/institution"
)

// institutionPrompts holds the base extraction instructions per institution.
// The invoices are Brazilian, so the prompts stay in Portuguese.
var institutionPrompts = map[institution.Code]string{
	institution.Caixa: `Você é um especialista em extrair dados de faturas do Cartão Caixa.

REGRAS ESPECÍFICAS PARA CAIXA:
- Data, descrição e valor podem estar em linhas separadas
- Valores terminam com 'D' (débito) ou 'C' (crédito)
- Seções importantes: COMPRAS, COMPRAS PARCELADAS, COMPRAS INTERNACIONAIS
- Formato de data: DD/MM
- Valores no formato: 999,99

INSTRUÇÕES:
1. Extraia TODAS as transações das seções relevantes
2. Para cada transação, identifique: data, descrição e valor
3. Determine se é débito (D) ou crédito (C)
4. Encontre o valor total da fatura e data de vencimento
5. Retorne apenas JSON válido, sem explicações

Retorne no formato JSON especificado.`,

	institution.Nubank: `Você é um especialista em extrair dados de faturas do Nubank.

REGRAS ESPECÍFICAS PARA NUBANK:
- Formato compacto: data, descrição e valor geralmente na mesma linha
- Valores sempre em R$
- Seções: RESUMO DA FATURA, TRANSAÇÕES, COMPRAS
- Formato claro e organizado

INSTRUÇÕES:
1. Extraia TODAS as transações da fatura
2. Identifique data, descrição e valor para cada transação
3. Encontre o valor total da fatura e data de vencimento
4. Retorne apenas JSON válido, sem explicações

Retorne no formato JSON especificado.`,

	institution.BancoDoBrasil: `Você é um especialista em extrair dados de faturas do Banco do Brasil.

REGRAS ESPECÍFICAS PARA BB:
- Seções: EXTRATO, LANÇAMENTOS, COMPRAS, DÉBITOS
- Formato estruturado com data e histórico
- Valores com identificação clara

INSTRUÇÕES:
1. Extraia TODAS as transações da fatura
2. Identifique data, descrição e valor para cada transação
3. Encontre o valor total da fatura e data de vencimento
4. Retorne apenas JSON válido, sem explicações

Retorne no formato JSON especificado.`,

	institution.Generic: `Você é um especialista em extrair dados de faturas de cartão de crédito.

REGRAS GERAIS:
- Identifique todas as transações (compras, pagamentos, etc.)
- Para cada transação, extraia: data, descrição e valor
- Determine se é débito ou crédito
- Encontre valor total da fatura e data de vencimento

INSTRUÇÕES:
1. Extraia TODAS as transações da fatura
2. Seja preciso com datas, valores e descrições
3. Retorne apenas JSON válido, sem explicações

Retorne no formato JSON especificado.`,
}

// jsonExample shows the model the exact response schema.
const jsonExample = `{
  "transactions": [
    {
      "date": "2025-01-15",
      "description": "UBER TRIP 001",
      "amount": 25.50,
      "type": "debit",
      "installments": 1,
      "current_installment": 1,
      "total_purchase_amount": 25.50,
      "due_date": "2025-02-20",
      "category": "transport"
    },
    {
      "date": "2025-01-16",
      "description": "PAGAMENTO RECEBIDO",
      "amount": 500.00,
      "type": "credit",
      "installments": 1,
      "current_installment": 1,
      "total_purchase_amount": 500.00,
      "due_date": "2025-02-20",
      "category": "payment"
    },
    {
      "date": "2025-01-17",
      "description": "COMPRA PARCELADA LOJA XYZ",
      "amount": 150.00,
      "type": "debit",
      "installments": 3,
      "current_installment": 1,
      "total_purchase_amount": 450.00,
      "due_date": "2025-02-20",
      "category": "purchase"
    }
  ],
  "invoice_total": 914.30,
  "due_date": "2025-02-20"
}`

// providerAdjustment carries per-backend prompt and sampling tweaks.
type providerAdjustment struct {
	extraInstructions string
	temperature       float64
	maxTokens         int
}

var providerAdjustments = map[string]providerAdjustment{
	"openai": {
		extraInstructions: `IMPORTANTE: Seja preciso e consistente com os dados extraídos.
Verifique se a soma das transações bate com o total da fatura.`,
		temperature: 0,
		maxTokens:   1800,
	},
	"deepseek": {
		extraInstructions: `CRÍTICO: Retorne APENAS JSON válido, sem texto adicional, sem explicações, sem formatação markdown.
Comece diretamente com { e termine com }.

OBRIGATÓRIO: Inclua SEMPRE os campos:
- "due_date" no nível da fatura (formato YYYY-MM-DD)
- "due_date" em cada transação (pode ser o mesmo da fatura)
- "invoice_total" com o valor total da fatura

Se não conseguir identificar a data de vencimento, use uma data futura estimada no formato YYYY-MM-DD.`,
		temperature: 0,
		maxTokens:   2000,
	},
	"gemini": {
		extraInstructions: `CRÍTICO: Retorne APENAS JSON válido, sem cercas de código markdown.
A resposta deve começar com { e terminar com }.`,
		temperature: 0,
		maxTokens:   2048,
	},
}

// BuildPrompt assembles the full system prompt for a provider/institution
// pair: base institution rules, the institution's value-format hint, the
// provider's extra instructions, and the shared JSON example.
func BuildPrompt(providerName string, code institution.Code) string {
	base, ok := institutionPrompts[code]
	if !ok {
		base = institutionPrompts[institution.Generic]
	}

	var b strings.Builder
	b.WriteString(base)

	if hint := institution.ConfigFor(code).ValueFormatHint; hint != "" {
		b.WriteString("\n\nFORMATO DE VALORES: ")
		b.WriteString(hint)
	}

	if adj, ok := providerAdjustments[providerName]; ok && adj.extraInstructions != "" {
		b.WriteString("\n")
		b.WriteString(adj.extraInstructions)
	}

	b.WriteString("\n\nExample:")
	b.WriteString(jsonExample)

	return b.String()
}

// adjustmentFor returns the sampling settings for a backend, with safe
// defaults for names without an entry.
func adjustmentFor(providerName string) providerAdjustment {
	if adj, ok := providerAdjustments[providerName]; ok {
		return adj
	}
	return providerAdjustment{temperature: 0, maxTokens: 1500}
}
