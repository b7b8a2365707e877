// Package extraction is the sole boundary between the pipeline and the
// opaque extraction service. Every failure mode of the service collapses here
// into the empty result; callers never see an error.
package extraction

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"CafeteriaScanner/internal/domain"
	"CafeteriaScanner/internal/ports"
)

// Adapter wraps an Extractor and normalizes its output.
type Adapter struct {
	extractor ports.Extractor
	logger    *slog.Logger
}

// NewAdapter wires the underlying extractor; both arguments may be nil.
func NewAdapter(extractor ports.Extractor, log *slog.Logger) *Adapter {
	return &Adapter{extractor: extractor, logger: log}
}

// Extract runs the underlying service and returns a normalized result.
// Service errors, malformed replies, and a missing extractor all degrade to
// the empty ExtractionResult; this function never fails.
func (a *Adapter) Extract(ctx context.Context, rawText string) domain.ExtractionResult {
	if a == nil || a.extractor == nil {
		return domain.ExtractionResult{}
	}

	result, err := a.extractor.Extract(ctx, rawText)
	if err != nil {
		a.debug("extraction failed", "error", err)
		return domain.ExtractionResult{}
	}

	return normalize(result)
}

// normalize drops items without a usable name and clears dates that are not
// ISO YYYY-MM-DD. Downstream sorting depends on the date format, so a
// malformed date degrades to the timestamp fallback instead of poisoning the
// series.
func normalize(result domain.ExtractionResult) domain.ExtractionResult {
	items := make([]domain.OrderItem, 0, len(result.Items))
	for _, item := range result.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		items = append(items, domain.OrderItem{Name: name, IsUdon: item.IsUdon})
	}
	if len(items) == 0 {
		items = nil
	}

	date := strings.TrimSpace(result.Date)
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			date = ""
		}
	}

	return domain.ExtractionResult{Date: date, Items: items}
}

func (a *Adapter) debug(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
