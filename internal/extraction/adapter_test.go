package extraction

import (
	"context"
	"fmt"
	"testing"

	"CafeteriaScanner/internal/domain"
)

type fakeExtractor struct {
	result domain.ExtractionResult
	err    error
}

func (f fakeExtractor) Extract(context.Context, string) (domain.ExtractionResult, error) {
	return f.result, f.err
}

func TestExtractServiceErrorDegradesToEmpty(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(fakeExtractor{err: fmt.Errorf("timeout")}, nil)

	result := adapter.Extract(context.Background(), "body")

	if result.Date != "" || len(result.Items) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestExtractNilExtractor(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(nil, nil)

	result := adapter.Extract(context.Background(), "body")

	if result.Date != "" || len(result.Items) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestExtractDropsUnnamedItems(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(fakeExtractor{result: domain.ExtractionResult{
		Date: "2024-03-20",
		Items: []domain.OrderItem{
			{Name: "  "},
			{Name: "きつねうどん", IsUdon: true},
			{Name: ""},
		},
	}}, nil)

	result := adapter.Extract(context.Background(), "body")

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Items[0].Name != "きつねうどん" || !result.Items[0].IsUdon {
		t.Fatalf("unexpected item: %+v", result.Items[0])
	}
	if result.Date != "2024-03-20" {
		t.Fatalf("valid date dropped: %s", result.Date)
	}
}

func TestExtractClearsMalformedDate(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(fakeExtractor{result: domain.ExtractionResult{
		Date:  "March 20th",
		Items: []domain.OrderItem{{Name: "おにぎり"}},
	}}, nil)

	result := adapter.Extract(context.Background(), "body")

	if result.Date != "" {
		t.Fatalf("malformed date kept: %s", result.Date)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items lost with the date: %d", len(result.Items))
	}
}
