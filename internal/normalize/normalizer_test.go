package normalize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faturai/faturai/internal/institution"
)

func TestNormalizeLengthCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&b, "15/01 COMPRA SUPERMERCADO %04d R$ 123,45\n", i)
	}

	out := Normalize(b.String(), institution.Generic)

	assert.LessOrEqual(t, len(out), MaxTextLength)
	// Truncation keeps whole lines: every surviving line is intact.
	for _, line := range strings.Split(out, "\n") {
		assert.Regexp(t, `R\$ 123,45$`, line)
	}
}

func TestNormalizeRemovesNoise(t *testing.T) {
	text := strings.Join([]string{
		"15/01 UBER TRIP R$ 25,50",
		"SAC 0800 123 4567",
		"www.banco.com.br",
		"........................",
		"3",
		"página 2",
		"© 2025 Banco",
		"16/01 IFOOD PEDIDO R$ 45,90",
	}, "\n")

	out := Normalize(text, institution.Generic)

	assert.Contains(t, out, "UBER TRIP")
	assert.Contains(t, out, "IFOOD PEDIDO")
	assert.NotContains(t, out, "SAC")
	assert.NotContains(t, out, "www.banco")
	assert.NotContains(t, out, "página")
	assert.NotContains(t, out, "©")
	assert.NotContains(t, out, "....")
}

func TestNormalizeCaixaSections(t *testing.T) {
	text := strings.Join([]string{
		"CARTÕES CAIXA",
		"PUBLICIDADE E AVISOS",
		"Conheça nosso novo aplicativo",
		"DEMONSTRATIVO",
		"15/01 SUPERMERCADO PÃO 152,30 D",
		"16/01 PAGAMENTO FATURA 500,00 C",
		"OUTRAS INFORMACOES",
		"Texto institucional irrelevante",
		"17/01 FARMACIA POPULAR 33,20 D",
		"VENCIMENTO: 20/02/2025",
	}, "\n")

	out := Normalize(text, institution.Caixa)

	// Lines inside the preserved section survive.
	assert.Contains(t, out, "SUPERMERCADO PÃO")
	assert.Contains(t, out, "PAGAMENTO FATURA")
	// Transaction lines survive even outside preserved sections.
	assert.Contains(t, out, "FARMACIA POPULAR")
	// Key fields survive wherever they appear.
	assert.Contains(t, out, "VENCIMENTO")
	// Prose outside preserved sections is dropped.
	assert.NotContains(t, out, "novo aplicativo")
	assert.NotContains(t, out, "institucional irrelevante")
}

func TestNormalizeCaixaRemovePatterns(t *testing.T) {
	text := strings.Join([]string{
		"DEMONSTRATIVO",
		"15/01 LOJA CENTRO 99,90 D",
		"SAC CAIXA: 0800 726 0101",
		"0800 726 0101",
		"Todos os direitos reservados",
	}, "\n")

	out := Normalize(text, institution.Caixa)

	assert.Contains(t, out, "LOJA CENTRO")
	assert.NotContains(t, out, "SAC CAIXA")
	assert.NotContains(t, out, "0800")
	assert.NotContains(t, out, "reservados")
}

func TestIsTransactionLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		code institution.Code
		want bool
	}{
		{"generic date and amount", "15/01 UBER TRIP R$ 25,50", institution.Generic, true},
		{"generic date only", "15/01 algum texto", institution.Generic, false},
		{"generic amount only", "TOTAL R$ 25,50", institution.Generic, false},
		{"caixa debit marker", "15/01 SUPERMERCADO 152,30 D", institution.Caixa, true},
		{"caixa credit marker", "16/01 PAGAMENTO 500,00 C", institution.Caixa, true},
		{"caixa missing marker", "15/01 SUPERMERCADO 152,30", institution.Caixa, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransactionLine(tt.line, tt.code))
		})
	}
}

func TestTruncateLinesNeverSplits(t *testing.T) {
	lines := []string{
		strings.Repeat("a", 10),
		strings.Repeat("b", 10),
		strings.Repeat("c", 10),
	}

	out := truncateLines(lines, 25)

	// Third line needs 11 more bytes and only 4 remain, so it is dropped
	// whole rather than clipped.
	assert.Equal(t, lines[0]+"\n"+lines[1], out)
}
