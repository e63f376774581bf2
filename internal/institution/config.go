package institution

import "regexp"

// Config drives the institution-aware text normalization and carries hints
// for downstream prompt building. Adding an institution is a data change.
type Config struct {
	// PreserveSections lists section headers worth keeping. When non-empty,
	// the normalizer keeps only lines inside these sections plus lines that
	// look like transactions or key fields.
	PreserveSections []string

	// RemovePatterns match noise lines that are always dropped.
	RemovePatterns []*regexp.Regexp

	// KeyFields are field labels that must survive cleaning wherever they
	// appear (due date, totals, column headers).
	KeyFields []string

	// ValueFormatHint describes the institution's amount notation. It is not
	// used by the normalizer itself; providers fold it into their prompts.
	ValueFormatHint string
}

var configs = map[Code]Config{
	Caixa: {
		PreserveSections: []string{"DEMONSTRATIVO", "COMPRAS", "COMPRAS PARCELADAS", "COMPRAS INTERNACIONAIS"},
		RemovePatterns: compilePatterns(
			`(?i)^SAC CAIXA:.*`,
			`(?i)^0800.*`,
			`(?i).*direitos.*reservados.*`,
		),
		KeyFields:       []string{"VENCIMENTO", "VALOR TOTAL", "Data", "Descrição"},
		ValueFormatHint: "valores terminam com 'D' (débito) ou 'C' (crédito), formato 999,99",
	},
	Nubank: {
		PreserveSections: []string{"RESUMO DA FATURA", "TRANSAÇÕES", "COMPRAS"},
		RemovePatterns: compilePatterns(
			`(?i)^Para.*dúvidas.*`,
			`(?i)^www\.nubank.*`,
		),
		KeyFields:       []string{"Data", "Descrição", "Valor"},
		ValueFormatHint: "valores sempre em R$, data/descrição/valor na mesma linha",
	},
	Generic: {
		PreserveSections: nil,
		RemovePatterns: compilePatterns(
			`(?i)^SAC.*`,
			`(?i)^www\..*`,
		),
		KeyFields:       []string{"Data", "Descrição", "Valor"},
		ValueFormatHint: "",
	},
}

// ConfigFor returns the normalization config for an institution. Unknown
// codes fall back to the GENERIC config and never error.
func ConfigFor(code Code) Config {
	if cfg, ok := configs[code]; ok {
		return cfg
	}
	return configs[Generic]
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
