// Package validate applies the business rules that turn a raw extraction
// into a scored result. Rule failures are data, never errors: they lower
// the confidence score and surface as messages.
package validate

import (
	"github.com/faturai/faturai/internal/model"
)

// Outcome is the result of running the rule set over one extraction.
type Outcome struct {
	ConfidenceScore float64
	Errors          []string
}

// Validate runs every rule in fixed order and tallies the confidence score
// as passed instances over total instances. Per-transaction rules count one
// instance per transaction; batch rules count one instance each. Instances
// that cannot be evaluated count as failed, not skipped.
func Validate(transactions []model.Transaction, invoiceTotal float64, dueDate string) Outcome {
	if len(transactions) == 0 {
		return Outcome{
			ConfidenceScore: 0.0,
			Errors:          []string{"no transactions found"},
		}
	}

	ctx := ruleContext{today: model.Today()}
	if parsed, err := model.ParseDate(dueDate); err == nil {
		ctx.dueDate = parsed
		ctx.dueDateValid = true
	}

	var passed, total int
	var errs []string

	record := func(ok bool, msg string) {
		total++
		if ok {
			passed++
		} else {
			errs = append(errs, msg)
		}
	}

	for i := range transactions {
		record(checkRequiredFields(&transactions[i]))
	}
	record(checkNoDuplicates(transactions))
	for i := range transactions {
		record(checkDate(&transactions[i], ctx))
	}
	for i := range transactions {
		record(checkAmountRange(&transactions[i]))
	}
	for i := range transactions {
		record(checkInstallments(&transactions[i]))
	}
	record(checkDueDateConsistency(transactions, ctx))
	record(checkSum(transactions, invoiceTotal))

	return Outcome{
		ConfidenceScore: float64(passed) / float64(total),
		Errors:          errs,
	}
}
