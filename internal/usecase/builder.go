package usecase

import (
	"strings"
	"time"

	"CafeteriaScanner/internal/domain"
)

// BuildOrder assembles the canonical order record from a raw message and its
// extraction result. There is no failure path: a degenerate extraction still
// yields a well-formed order.
//
// Date precedence: the extracted date, then the leading token of the provider
// timestamp, then the processing date. The result is never empty.
func BuildOrder(msg domain.RawMessage, result domain.ExtractionResult, now time.Time) domain.Order {
	date := strings.TrimSpace(result.Date)
	if date == "" {
		if fields := strings.Fields(msg.Date); len(fields) > 0 {
			date = fields[0]
		}
	}
	if date == "" {
		date = now.Format("2006-01-02")
	}

	return domain.NewOrder(msg.ID, date, msg.Sender, msg.Subject, msg.Body, result.Items)
}
