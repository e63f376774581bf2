// Package normalize shrinks raw invoice text into something worth sending
// to a language model: institution-aware noise removal, section filtering
// and a hard length cap.
package normalize

import (
	"regexp"
	"strings"

	"github.com/faturai/faturai/internal/institution"
)

// MaxTextLength is the hard cap on normalized output, sized for the LLM
// input budget. Truncation never splits a line.
const MaxTextLength = 8000

var (
	datePattern      = regexp.MustCompile(`\d{2}/\d{2}`)
	amountPattern    = regexp.MustCompile(`R?\$?\s*\d+[,.]\d{2}`)
	bareAmount       = regexp.MustCompile(`\d+[,.]\d{2}`)
	decorationLine   = regexp.MustCompile(`^[.\-_\s•▪▫○●]+$`)
	pageNumberLine   = regexp.MustCompile(`^\d{1,2}$`)
	pageMarkerLine   = regexp.MustCompile(`^página\s*\d*$`)
	copyrightLine    = regexp.MustCompile(`^[©®]|copyright`)
	upperHeadingLine = regexp.MustCompile(`^[A-ZÀ-Ü][A-ZÀ-Ü\s]{3,}$`)
)

// Normalize cleans text according to the institution's config and truncates
// the result to MaxTextLength. Unknown institutions get the GENERIC rules.
func Normalize(text string, code institution.Code) string {
	cfg := institution.ConfigFor(code)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	filterBySection := len(cfg.PreserveSections) > 0
	inPreserved := false

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if len(line) < 2 {
			continue
		}

		if isNoise(line, cfg.RemovePatterns) {
			continue
		}

		// Section tracking: a preserved header opens a section, any other
		// heading closes it.
		if filterBySection && isHeading(line) {
			if matchesSection(line, cfg.PreserveSections) {
				inPreserved = true
				kept = append(kept, line)
				continue
			}
			inPreserved = false
		}

		// Transaction-looking lines and key fields survive regardless of
		// which section they landed in; OCR often scatters them.
		if isTransactionLine(line, code) || containsKeyField(line, cfg.KeyFields) {
			kept = append(kept, line)
			continue
		}

		if filterBySection && !inPreserved {
			continue
		}

		kept = append(kept, line)
	}

	return truncateLines(kept, MaxTextLength)
}

// isNoise reports whether a line should be dropped. Institution patterns are
// checked first, then the generic boilerplate set.
func isNoise(line string, removePatterns []*regexp.Regexp) bool {
	for _, p := range removePatterns {
		if p.MatchString(line) {
			return true
		}
	}

	lower := strings.ToLower(line)
	if decorationLine.MatchString(lower) ||
		pageNumberLine.MatchString(lower) ||
		pageMarkerLine.MatchString(lower) ||
		copyrightLine.MatchString(lower) {
		return true
	}

	return len(strings.ReplaceAll(line, " ", "")) < 3
}

// isTransactionLine recognizes lines carrying transaction data. CAIXA lists
// amounts with a trailing D/C marker; everything else pairs a DD/MM date
// with a currency amount.
func isTransactionLine(line string, code institution.Code) bool {
	if code == institution.Caixa {
		tail := line
		if len(line) > 5 {
			tail = line[len(line)-5:]
		}
		return datePattern.MatchString(line) &&
			(strings.Contains(tail, "D") || strings.Contains(tail, "C")) &&
			bareAmount.MatchString(line)
	}

	return datePattern.MatchString(line) && amountPattern.MatchString(line)
}

func containsKeyField(line string, keyFields []string) bool {
	upper := strings.ToUpper(line)
	for _, field := range keyFields {
		if strings.Contains(upper, strings.ToUpper(field)) {
			return true
		}
	}
	return false
}

func matchesSection(line string, sections []string) bool {
	upper := strings.ToUpper(line)
	for _, section := range sections {
		if strings.Contains(upper, strings.ToUpper(section)) {
			return true
		}
	}
	return false
}

func isHeading(line string) bool {
	return upperHeadingLine.MatchString(line)
}

// truncateLines joins lines up to the budget, keeping whole lines only.
func truncateLines(lines []string, budget int) string {
	var b strings.Builder

	for _, line := range lines {
		needed := len(line)
		if b.Len() > 0 {
			needed++ // newline
		}
		if b.Len()+needed > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}

	return b.String()
}
