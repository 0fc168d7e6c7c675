package pipeline

import "strings"

type DetectResult struct {
	IsSalesData bool
	Score       float64
	Reason      string
}

var detectKeywords = []string{"sale", "sales", "owner", "property", "listing", "lead", "parcel", "deed", "records"}

// DetectSalesData scores whether a dropped email actually carries a sales
// list before a campaign run is attempted. Newsletters and vendor invoices
// share the same mailbox.
func DetectSalesData(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") ||
			strings.HasSuffix(ln, ".csv") || strings.HasSuffix(ln, ".pdf") {
			score += 0.3
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}

	isSalesData := score >= 0.45
	reason := "rules_negative"
	if isSalesData {
		reason = "rules_positive"
	}

	return DetectResult{IsSalesData: isSalesData, Score: score, Reason: reason}
}
