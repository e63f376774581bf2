// Package model defines the data types exchanged between the extraction
// pipeline and its callers.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// TransactionType distinguishes charges from payments/refunds on an invoice.
type TransactionType string

// Valid transaction types.
const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

// Transaction is a single entry extracted from a credit-card invoice.
// Amount is always positive; the semantic sign is carried by Type.
type Transaction struct {
	Date                Date            `json:"date"`
	Description         string          `json:"description"`
	Amount              float64         `json:"amount"`
	Type                TransactionType `json:"type"`
	Installments        int             `json:"installments"`
	CurrentInstallment  int             `json:"current_installment"`
	TotalPurchaseAmount float64         `json:"total_purchase_amount"`
	DueDate             Date            `json:"due_date"`
	Category            string          `json:"category,omitempty"`
}

// Hash returns a stable key for duplicate detection. Two transactions with
// the same date, amount and description (case-insensitive) collide.
func (t *Transaction) Hash() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		t.Date.String(),
		t.Amount,
		strings.ToLower(strings.TrimSpace(t.Description)))
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s - %s: %.2f", t.Date, t.Description, t.Amount)
}

// ExtractionResult is the raw output of a provider call before validation.
type ExtractionResult struct {
	Transactions []Transaction
	InvoiceTotal float64
	DueDate      string
}

// ProcessingMetadata describes one completed extraction run.
type ProcessingMetadata struct {
	ProcessingTimeMs  int64   `json:"processing_time_ms"`
	TotalTransactions int     `json:"total_transactions"`
	ConfidenceScore   float64 `json:"confidence_score"`
	Provider          string  `json:"provider"`
	Institution       string  `json:"institution"`
}

// InvoiceResponse is the full response for one processed invoice.
type InvoiceResponse struct {
	Transactions []Transaction      `json:"transactions"`
	Metadata     ProcessingMetadata `json:"metadata"`
	Errors       []string           `json:"errors"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
	Provider  string `json:"ai_provider,omitempty"`
}
