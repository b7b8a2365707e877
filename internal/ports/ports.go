package ports

import (
	"context"

	"CafeteriaScanner/internal/domain"
)

// MessageFeed delivers raw notification messages to the pipeline: the full
// mailbox at startup and newly arrived messages during polling. PollNew
// returns an empty slice when nothing arrived; that is not an error.
type MessageFeed interface {
	InitialBatch(ctx context.Context) ([]domain.RawMessage, error)
	PollNew(ctx context.Context) ([]domain.RawMessage, error)
}

// Extractor turns one message body into structured order data. Implementations
// may fail; callers go through the extraction adapter, which never does.
type Extractor interface {
	Extract(ctx context.Context, rawText string) (domain.ExtractionResult, error)
}
