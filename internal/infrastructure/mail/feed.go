// Package mail simulates the notification mailbox the pipeline polls. It
// stands in for a real mail provider behind the same ports.MessageFeed seam,
// so the sync logic is identical when a live feed replaces it.
package mail

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"CafeteriaScanner/internal/config"
	"CafeteriaScanner/internal/domain"
	"CafeteriaScanner/internal/ports"
	"CafeteriaScanner/pkg/logger"
)

// SimulatedFeed serves a fixed seed mailbox at startup and then fabricates
// new notifications with a weighted coin flip per poll. PollNew may be called
// concurrently (manual sync overlaps the polling loop), so the rng is guarded.
type SimulatedFeed struct {
	seed        []domain.RawMessage
	probability float64
	now         func() time.Time
	log         *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ports.MessageFeed = (*SimulatedFeed)(nil)

// Option tweaks the feed; used by tests to pin randomness and time.
type Option func(*SimulatedFeed)

// WithRand replaces the arrival randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(f *SimulatedFeed) { f.rng = rng }
}

// WithNow replaces the clock used for synthetic message timestamps.
func WithNow(now func() time.Time) Option {
	return func(f *SimulatedFeed) { f.now = now }
}

// NewSimulatedFeed builds the feed from mailbox configuration. Message IDs
// are assigned once at construction, so repeated InitialBatch calls return
// the same records.
func NewSimulatedFeed(cfg config.MailboxConfig, opts ...Option) *SimulatedFeed {
	feed := &SimulatedFeed{
		probability: cfg.ArrivalProbability,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
		log:         logger.New("mail.feed"),
	}
	for _, opt := range opts {
		opt(feed)
	}

	for _, msg := range cfg.Seed {
		feed.seed = append(feed.seed, domain.RawMessage{
			ID:      uuid.NewString(),
			Sender:  msg.Sender,
			Subject: msg.Subject,
			Date:    msg.Date,
			Body:    FlattenBody(msg.Body),
		})
	}

	return feed
}

// InitialBatch returns the mailbox contents present at startup.
func (f *SimulatedFeed) InitialBatch(ctx context.Context) ([]domain.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make([]domain.RawMessage, len(f.seed))
	copy(batch, f.seed)
	return batch, nil
}

// PollNew flips the weighted coin and fabricates at most one fresh
// notification. An empty result means nothing arrived.
func (f *SimulatedFeed) PollNew(ctx context.Context) ([]domain.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	arrived := f.rng.Float64() < f.probability
	var msg domain.RawMessage
	if arrived {
		msg = f.compose()
	}
	f.mu.Unlock()

	if !arrived {
		return nil, nil
	}

	f.log.Printf("synthetic notification arrived id=%s", msg.ID)
	return []domain.RawMessage{msg}, nil
}

var sampleMenus = [][]string{
	{"きつねうどん", "おにぎり"},
	{"カレーライス", "サラダ"},
	{"肉うどん", "みそ汁"},
	{"焼き魚定食", "ごはん"},
	{"天ぷらうどん"},
	{"ハンバーグ定食", "スープ"},
}

// compose fabricates one notification; the caller must hold mu.
func (f *SimulatedFeed) compose() domain.RawMessage {
	now := f.now()
	menu := sampleMenus[f.rng.Intn(len(sampleMenus))]

	var body strings.Builder
	body.WriteString("本日の注文内容\n")
	for _, dish := range menu {
		fmt.Fprintf(&body, "・%s\n", dish)
	}

	return domain.RawMessage{
		ID:      uuid.NewString(),
		Sender:  "cafeteria@example.co.jp",
		Subject: "【社食】ご注文ありがとうございます",
		Date:    now.Format("2006-01-02 15:04"),
		Body:    body.String(),
	}
}

// FlattenBody reduces an HTML notification body to plain text, one block
// element per line, so the extraction service always receives line-delimited
// entries. Plain-text bodies pass through untouched.
func FlattenBody(body string) string {
	if !strings.Contains(body, "<") || !strings.Contains(body, ">") {
		return body
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}

	var lines []string
	doc.Find("p, li, h1, h2, h3, div").Each(func(_ int, sel *goquery.Selection) {
		// containers are covered by their block children
		if sel.Children().Is("p, li, h1, h2, h3, div, ul, ol") {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})

	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(lines, "\n")
}
