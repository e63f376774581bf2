package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faturai/faturai/internal/model"
)

func makeTransaction(mutate func(*model.Transaction)) model.Transaction {
	t := model.Transaction{
		Date:                model.NewDate(2025, time.January, 15),
		Description:         "UBER TRIP 001",
		Amount:              25.50,
		Type:                model.TypeDebit,
		Installments:        1,
		CurrentInstallment:  1,
		TotalPurchaseAmount: 25.50,
		DueDate:             model.NewDate(2025, time.February, 20),
	}
	if mutate != nil {
		mutate(&t)
	}
	return t
}

func TestValidateCleanInvoice(t *testing.T) {
	transactions := []model.Transaction{makeTransaction(nil)}

	outcome := Validate(transactions, 25.50, "2025-02-20")

	assert.Empty(t, outcome.Errors)
	assert.InDelta(t, 1.0, outcome.ConfidenceScore, 1e-9)
}

func TestValidateEmptyTransactions(t *testing.T) {
	outcome := Validate(nil, 100.0, "2025-02-20")

	assert.Zero(t, outcome.ConfidenceScore)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "no transactions found")
}

func TestValidateScoreBounds(t *testing.T) {
	tests := []struct {
		name         string
		transactions []model.Transaction
		invoiceTotal float64
		dueDate      string
	}{
		{
			name:         "everything wrong",
			transactions: []model.Transaction{makeTransaction(func(tx *model.Transaction) { tx.Amount = 500000 })},
			invoiceTotal: 1.0,
			dueDate:      "not-a-date",
		},
		{
			name:         "everything right",
			transactions: []model.Transaction{makeTransaction(nil)},
			invoiceTotal: 25.50,
			dueDate:      "2025-02-20",
		},
		{
			name: "mixed",
			transactions: []model.Transaction{
				makeTransaction(nil),
				makeTransaction(func(tx *model.Transaction) { tx.Description = "OTHER"; tx.Amount = 200000; tx.TotalPurchaseAmount = 200000 }),
			},
			invoiceTotal: 25.50,
			dueDate:      "2025-02-20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.transactions, tt.invoiceTotal, tt.dueDate)
			assert.GreaterOrEqual(t, outcome.ConfidenceScore, 0.0)
			assert.LessOrEqual(t, outcome.ConfidenceScore, 1.0)
		})
	}
}

func TestValidateDuplicatesFlaggedOnce(t *testing.T) {
	transactions := []model.Transaction{
		makeTransaction(nil),
		makeTransaction(nil),
	}

	outcome := Validate(transactions, 51.00, "2025-02-20")

	var duplicateErrors int
	for _, msg := range outcome.Errors {
		if strings.Contains(msg, "duplicate") {
			duplicateErrors++
		}
	}
	assert.Equal(t, 1, duplicateErrors)
}

func TestValidateDuplicateDetectionIgnoresCase(t *testing.T) {
	transactions := []model.Transaction{
		makeTransaction(nil),
		makeTransaction(func(tx *model.Transaction) { tx.Description = "uber trip 001" }),
	}

	outcome := Validate(transactions, 51.00, "2025-02-20")

	assert.Contains(t, strings.Join(outcome.Errors, "\n"), "duplicate")
}

func TestValidateSumReconciliation(t *testing.T) {
	tests := []struct {
		name         string
		transactions []model.Transaction
		invoiceTotal float64
		wantPass     bool
	}{
		{
			name:         "exact match",
			transactions: []model.Transaction{makeTransaction(nil)},
			invoiceTotal: 25.50,
			wantPass:     true,
		},
		{
			name:         "within tolerance",
			transactions: []model.Transaction{makeTransaction(nil)},
			invoiceTotal: 25.51,
			wantPass:     true,
		},
		{
			name:         "off by two cents",
			transactions: []model.Transaction{makeTransaction(nil)},
			invoiceTotal: 25.52,
			wantPass:     false,
		},
		{
			name: "debit heavy with credit offset",
			transactions: []model.Transaction{
				makeTransaction(func(tx *model.Transaction) { tx.Amount = 800.00; tx.TotalPurchaseAmount = 800.00 }),
				makeTransaction(func(tx *model.Transaction) {
					tx.Description = "PAGAMENTO RECEBIDO"
					tx.Amount = 500.00
					tx.TotalPurchaseAmount = 500.00
					tx.Type = model.TypeCredit
				}),
			},
			invoiceTotal: 300.00,
			wantPass:     true,
		},
		{
			name: "credit heavy invoice goes negative",
			transactions: []model.Transaction{
				makeTransaction(func(tx *model.Transaction) { tx.Amount = 100.00; tx.TotalPurchaseAmount = 100.00 }),
				makeTransaction(func(tx *model.Transaction) {
					tx.Description = "ESTORNO COMPRA"
					tx.Amount = 350.00
					tx.TotalPurchaseAmount = 350.00
					tx.Type = model.TypeCredit
				}),
			},
			invoiceTotal: -250.00,
			wantPass:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.transactions, tt.invoiceTotal, "2025-02-20")

			joined := strings.Join(outcome.Errors, "\n")
			if tt.wantPass {
				assert.NotContains(t, joined, "sum mismatch")
			} else {
				assert.Contains(t, joined, "sum mismatch")
				// The message must name the difference.
				assert.Contains(t, joined, "difference")
			}
		})
	}
}

func TestValidateDateRules(t *testing.T) {
	future := model.Today()
	future.Time = future.AddDate(0, 0, 30)

	tests := []struct {
		name     string
		mutate   func(*model.Transaction)
		dueDate  string
		wantFail string
	}{
		{
			name:     "future date",
			mutate:   func(tx *model.Transaction) { tx.Date = future },
			dueDate:  "2099-12-31",
			wantFail: "in the future",
		},
		{
			name:     "after due date",
			mutate:   func(tx *model.Transaction) { tx.Date = model.NewDate(2025, time.March, 1) },
			dueDate:  "2025-02-20",
			wantFail: "after due date",
		},
		{
			name:     "unparseable due date counts as failed",
			mutate:   nil,
			dueDate:  "soon",
			wantFail: "due date is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate([]model.Transaction{makeTransaction(tt.mutate)}, 25.50, tt.dueDate)
			assert.Contains(t, strings.Join(outcome.Errors, "\n"), tt.wantFail)
			assert.Less(t, outcome.ConfidenceScore, 1.0)
		})
	}
}

func TestValidateAmountRange(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		wantPass bool
	}{
		{"minimum", 0.01, true},
		{"maximum", 100000.00, true},
		{"too small", 0.001, false},
		{"too large", 100000.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := makeTransaction(func(tx *model.Transaction) {
				tx.Amount = tt.amount
				tx.TotalPurchaseAmount = tt.amount
			})

			outcome := Validate([]model.Transaction{txn}, tt.amount, "2025-02-20")

			joined := strings.Join(outcome.Errors, "\n")
			if tt.wantPass {
				assert.NotContains(t, joined, "out of range")
			} else {
				assert.Contains(t, joined, "out of range")
			}
		})
	}
}

func TestValidateInstallmentConsistency(t *testing.T) {
	tests := []struct {
		name          string
		installments  int
		amount        float64
		totalPurchase float64
		wantPass      bool
	}{
		{"single installment ignores total", 1, 25.50, 0, true},
		{"consistent installments", 3, 150.00, 450.00, true},
		{"within tolerance", 3, 150.00, 450.01, true},
		{"inconsistent installments", 3, 150.00, 400.00, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := makeTransaction(func(tx *model.Transaction) {
				tx.Installments = tt.installments
				tx.Amount = tt.amount
				tx.TotalPurchaseAmount = tt.totalPurchase
			})

			outcome := Validate([]model.Transaction{txn}, tt.amount, "2025-02-20")

			joined := strings.Join(outcome.Errors, "\n")
			if tt.wantPass {
				assert.NotContains(t, joined, "installments inconsistency")
			} else {
				assert.Contains(t, joined, "installments inconsistency")
			}
		})
	}
}

func TestValidateDueDateConsistency(t *testing.T) {
	transactions := []model.Transaction{
		makeTransaction(nil),
		makeTransaction(func(tx *model.Transaction) {
			tx.Description = "OTHER PURCHASE"
			tx.DueDate = model.NewDate(2025, time.March, 20)
		}),
	}

	outcome := Validate(transactions, 51.00, "2025-02-20")

	assert.Contains(t, strings.Join(outcome.Errors, "\n"), "due date inconsistency")
}

func TestValidateConfidenceTally(t *testing.T) {
	// Two transactions: 4 per-transaction rules x2 instances + 3 batch
	// rules = 11 instances. One failing amount range leaves 10 passing.
	transactions := []model.Transaction{
		makeTransaction(nil),
		makeTransaction(func(tx *model.Transaction) {
			tx.Description = "HUGE PURCHASE"
			tx.Amount = 200000
			tx.TotalPurchaseAmount = 200000
		}),
	}

	outcome := Validate(transactions, 200025.50, "2025-02-20")

	require.Len(t, outcome.Errors, 1)
	assert.InDelta(t, 10.0/11.0, outcome.ConfidenceScore, 1e-9)
}
