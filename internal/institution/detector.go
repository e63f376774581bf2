package institution

import "strings"

// detectionRule maps a set of literal markers to an institution. Markers are
// matched against the uppercased document text.
type detectionRule struct {
	code    Code
	markers []string
}

// detectionRules is checked in order and the first match wins. The order
// matters: some institutions' markers are substrings of text that appears on
// other issuers' invoices, so the more specific banners come first.
var detectionRules = []detectionRule{
	{Caixa, []string{"CARTÕES CAIXA", "CAIXA ECONOMICA", "CAIXA ECONÔMICA", "00.360.305/0001-04"}},
	{Nubank, []string{"NUBANK", "NU PAGAMENTOS"}},
	{BancoDoBrasil, []string{"BANCO DO BRASIL", "BB.COM.BR", "001-9"}},
	{Bradesco, []string{"BRADESCO", "BRADESCARD"}},
	{Itau, []string{"ITAU", "ITAÚ", "CREDICARD"}},
}

// Detect classifies raw invoice text into a known institution code.
// It is a pure function: same input, same output, no side effects.
func Detect(text string) Code {
	upper := strings.ToUpper(text)

	for _, rule := range detectionRules {
		for _, marker := range rule.markers {
			if strings.Contains(upper, marker) {
				return rule.code
			}
		}
	}

	return Generic
}
