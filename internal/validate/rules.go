package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/faturai/faturai/internal/model"
)

// Amount bounds for a plausible single invoice entry.
var (
	minAmount = decimal.NewFromFloat(0.01)
	maxAmount = decimal.NewFromFloat(100000.00)

	// tolerance absorbs float noise in money comparisons.
	tolerance = decimal.NewFromFloat(0.01)
)

// ruleContext carries the batch-level facts per-transaction rules need.
type ruleContext struct {
	today        model.Date
	dueDate      model.Date
	dueDateValid bool
}

// checkRequiredFields verifies date, description and amount are present.
func checkRequiredFields(t *model.Transaction) (bool, string) {
	if t.Date.IsZero() || t.Description == "" || t.Amount == 0 {
		return false, fmt.Sprintf("missing required fields in transaction: %s", t)
	}
	return true, ""
}

// checkDate rejects transactions dated in the future or after the invoice
// due date. An unparseable due date fails the instance rather than skipping.
func checkDate(t *model.Transaction, ctx ruleContext) (bool, string) {
	if !ctx.dueDateValid {
		return false, fmt.Sprintf("cannot check date of %s: invoice due date is invalid", t)
	}
	if t.Date.After(ctx.today) {
		return false, fmt.Sprintf("transaction date %s is in the future: %s", t.Date, t)
	}
	if t.Date.After(ctx.dueDate) {
		return false, fmt.Sprintf("transaction date %s is after due date %s: %s", t.Date, ctx.dueDate, t)
	}
	return true, ""
}

// checkAmountRange enforces 0.01 <= amount <= 100000.00.
func checkAmountRange(t *model.Transaction) (bool, string) {
	amount := decimal.NewFromFloat(t.Amount)
	if amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
		return false, fmt.Sprintf("transaction amount out of range: %.2f in transaction: %s", t.Amount, t)
	}
	return true, ""
}

// checkInstallments verifies total_purchase_amount == amount * installments
// for multi-installment purchases, within tolerance.
func checkInstallments(t *model.Transaction) (bool, string) {
	if t.Installments <= 1 {
		return true, ""
	}

	expected := decimal.NewFromFloat(t.Amount).Mul(decimal.NewFromInt(int64(t.Installments)))
	actual := decimal.NewFromFloat(t.TotalPurchaseAmount)

	if actual.Sub(expected).Abs().GreaterThan(tolerance) {
		return false, fmt.Sprintf("installments inconsistency: %d x %.2f != %.2f in transaction: %s",
			t.Installments, t.Amount, t.TotalPurchaseAmount, t)
	}
	return true, ""
}

// checkNoDuplicates flags the batch when any two transactions share date,
// amount and description. It fires at most once per batch.
func checkNoDuplicates(transactions []model.Transaction) (bool, string) {
	seen := make(map[string]struct{}, len(transactions))
	for i := range transactions {
		key := transactions[i].Hash()
		if _, dup := seen[key]; dup {
			return false, fmt.Sprintf("duplicate transaction found: %s", &transactions[i])
		}
		seen[key] = struct{}{}
	}
	return true, ""
}

// checkDueDateConsistency verifies every transaction carries the same due
// date as the invoice.
func checkDueDateConsistency(transactions []model.Transaction, ctx ruleContext) (bool, string) {
	if !ctx.dueDateValid {
		return false, "due date consistency unverifiable: invoice due date is invalid"
	}
	for i := range transactions {
		if !transactions[i].DueDate.Equal(ctx.dueDate) {
			return false, fmt.Sprintf("due date inconsistency: %s != %s",
				transactions[i].DueDate, ctx.dueDate)
		}
	}
	return true, ""
}

// checkSum reconciles the signed transaction sum against the invoice total.
// Sign convention: debits add, credits subtract.
func checkSum(transactions []model.Transaction, invoiceTotal float64) (bool, string) {
	total := decimal.Zero
	for i := range transactions {
		amount := decimal.NewFromFloat(transactions[i].Amount)
		if transactions[i].Type == model.TypeCredit {
			total = total.Sub(amount)
		} else {
			total = total.Add(amount)
		}
	}

	expected := decimal.NewFromFloat(invoiceTotal)
	diff := total.Sub(expected).Abs()

	if diff.GreaterThan(tolerance) {
		calculated, _ := total.Float64()
		return false, fmt.Sprintf("sum mismatch: calculated %.2f, expected %.2f (difference %s)",
			calculated, invoiceTotal, diff.StringFixed(2))
	}
	return true, ""
}
