// Package institution identifies the issuing bank of an invoice and holds
// the per-institution text-cleaning configuration.
package institution

// Code identifies a known card-issuing institution.
type Code string

// Known institutions.
const (
	Caixa         Code = "CAIXA"
	Nubank        Code = "NUBANK"
	BancoDoBrasil Code = "BANCO DO BRASIL"
	Bradesco      Code = "BRADESCO"
	Itau          Code = "ITAU"
	Generic       Code = "GENERIC"
)

func (c Code) String() string {
	return string(c)
}
