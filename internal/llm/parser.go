package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faturai/faturai/internal/common"
	"github.com/faturai/faturai/internal/model"
)

// maxDescriptionLength caps transaction descriptions per the schema.
const maxDescriptionLength = 500

// wireTransaction is the loosely-typed shape models actually return.
// Pointers distinguish absent numeric fields from zero values.
type wireTransaction struct {
	Date                string   `json:"date"`
	Description         string   `json:"description"`
	Amount              *float64 `json:"amount"`
	Type                string   `json:"type"`
	Installments        int      `json:"installments"`
	CurrentInstallment  int      `json:"current_installment"`
	TotalPurchaseAmount *float64 `json:"total_purchase_amount"`
	DueDate             string   `json:"due_date"`
	Category            string   `json:"category"`
}

type wireExtraction struct {
	Transactions []wireTransaction `json:"transactions"`
	InvoiceTotal *float64          `json:"invoice_total"`
	DueDate      string            `json:"due_date"`
}

// cleanMarkdownWrapper strips ```json fences and any prose around the JSON
// object. Models wrap replies in markdown no matter how firmly told not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = content[7:]
	} else if strings.HasPrefix(content, "```") {
		content = content[3:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	content = strings.TrimSpace(content)

	return content
}

// decodeExtraction parses a model reply into the wire shape. It tries the
// cleaned content first, then falls back to the outermost {...} window.
func decodeExtraction(raw string) (*wireExtraction, error) {
	content := cleanMarkdownWrapper(raw)

	var wire wireExtraction
	if err := json.Unmarshal([]byte(content), &wire); err == nil {
		return &wire, nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response: %.200s", content)
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &wire, nil
}

// buildResult converts the wire shape into the domain result. Transactions
// that fail schema validation are dropped and logged; the rest survive.
// A reply that yields zero transactions is a provider failure.
func buildResult(wire *wireExtraction, providerName string, logger *slog.Logger) (*model.ExtractionResult, error) {
	invoiceTotal := 0.0
	if wire.InvoiceTotal != nil {
		invoiceTotal = *wire.InvoiceTotal
	}

	transactions := make([]model.Transaction, 0, len(wire.Transactions))
	for i, wt := range wire.Transactions {
		txn, err := convertTransaction(wt, wire.DueDate)
		if err != nil {
			logger.Warn("dropping invalid transaction from provider reply",
				"provider", providerName,
				"index", i,
				"error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w (provider %s, %d candidates)",
			common.ErrEmptyExtraction, providerName, len(wire.Transactions))
	}

	return &model.ExtractionResult{
		Transactions: transactions,
		InvoiceTotal: invoiceTotal,
		DueDate:      wire.DueDate,
	}, nil
}

func convertTransaction(wt wireTransaction, invoiceDueDate string) (model.Transaction, error) {
	date, err := model.ParseDate(wt.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("date: %w", err)
	}

	description := strings.TrimSpace(wt.Description)
	if description == "" {
		return model.Transaction{}, fmt.Errorf("description is empty")
	}
	// Truncate on runes so accented descriptions stay valid UTF-8.
	if runes := []rune(description); len(runes) > maxDescriptionLength {
		description = string(runes[:maxDescriptionLength])
	}

	if wt.Amount == nil {
		return model.Transaction{}, fmt.Errorf("amount is missing")
	}
	if *wt.Amount < 0 {
		return model.Transaction{}, fmt.Errorf("amount %f is negative", *wt.Amount)
	}

	txnType := model.TransactionType(strings.ToLower(wt.Type))
	if wt.Type == "" {
		txnType = model.TypeDebit
	}
	if !txnType.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown transaction type %q", wt.Type)
	}

	installments := wt.Installments
	if installments < 1 {
		installments = 1
	}
	currentInstallment := wt.CurrentInstallment
	if currentInstallment < 1 {
		currentInstallment = 1
	}
	if currentInstallment > installments {
		return model.Transaction{}, fmt.Errorf("current installment %d exceeds total %d",
			currentInstallment, installments)
	}

	// A single-installment purchase has no separate total; whatever the
	// model supplied there is overridden so total always equals amount.
	totalPurchase := *wt.Amount
	if installments > 1 && wt.TotalPurchaseAmount != nil {
		totalPurchase = *wt.TotalPurchaseAmount
	}

	dueDateStr := wt.DueDate
	if dueDateStr == "" {
		dueDateStr = invoiceDueDate
	}
	dueDate, err := model.ParseDate(dueDateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("due_date: %w", err)
	}

	return model.Transaction{
		Date:                date,
		Description:         description,
		Amount:              *wt.Amount,
		Type:                txnType,
		Installments:        installments,
		CurrentInstallment:  currentInstallment,
		TotalPurchaseAmount: totalPurchase,
		DueDate:             dueDate,
		Category:            strings.TrimSpace(wt.Category),
	}, nil
}
