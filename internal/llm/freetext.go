package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Free-text reply grammar. Some backends drift away from JSON under long
// inputs; these patterns recover transactions, the invoice total and the
// due date from a plain-text reply as a last resort.
var (
	freeTextLine = regexp.MustCompile(`^(\d{2}/\d{2}(?:/\d{4})?|\d{4}-\d{2}-\d{2})\s+(.+?)\s+R?\$?\s*(\d{1,3}(?:\.\d{3})*,\d{2}|\d+\.\d{2})\s*([DC])?$`)
	anyAmount    = regexp.MustCompile(`R?\$?\s*(\d{1,3}(?:\.\d{3})*,\d{2}|\d+[.,]\d{2})`)
	anyDate      = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})`)
)

// fallbackParse scrapes a non-JSON reply line by line. It never fails; a
// reply with nothing recognizable simply yields zero transactions, which the
// caller turns into a provider error.
func fallbackParse(raw string) *wireExtraction {
	result := &wireExtraction{}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)

		// "R$" keeps merchant names containing "total" out of this branch.
		if result.InvoiceTotal == nil && strings.Contains(lower, "total") && strings.Contains(line, "R$") {
			if m := anyAmount.FindStringSubmatch(line); m != nil {
				if v, err := parseLocalizedAmount(m[1]); err == nil {
					result.InvoiceTotal = &v
				}
			}
			continue
		}

		if result.DueDate == "" && (strings.Contains(lower, "vencimento") || strings.Contains(lower, "due")) {
			if m := anyDate.FindStringSubmatch(line); m != nil {
				result.DueDate = toISODate(m[1])
			}
			continue
		}

		if m := freeTextLine.FindStringSubmatch(line); m != nil {
			amount, err := parseLocalizedAmount(m[3])
			if err != nil {
				continue
			}
			txnType := "debit"
			if m[4] == "C" {
				txnType = "credit"
			}
			result.Transactions = append(result.Transactions, wireTransaction{
				Date:        normalizeLineDate(m[1], result.DueDate),
				Description: strings.TrimSpace(m[2]),
				Amount:      &amount,
				Type:        txnType,
			})
		}
	}

	return result
}

// parseLocalizedAmount handles both 1.234,56 and 1234.56 notations.
func parseLocalizedAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		// Brazilian notation: dot as thousands separator, comma as decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", s, err)
	}
	return v, nil
}

// toISODate converts DD/MM/YYYY to YYYY-MM-DD; ISO input passes through.
func toISODate(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// normalizeLineDate turns a transaction-line date into ISO form. Dates
// without a year borrow it from the invoice due date, falling back to the
// current year.
func normalizeLineDate(s, dueDate string) string {
	if strings.Contains(s, "-") {
		return s
	}

	parts := strings.Split(s, "/")
	switch len(parts) {
	case 3:
		return parts[2] + "-" + parts[1] + "-" + parts[0]
	case 2:
		year := strconv.Itoa(time.Now().Year())
		if len(dueDate) >= 4 {
			year = dueDate[:4]
		}
		return year + "-" + parts[1] + "-" + parts[0]
	default:
		return s
	}
}
