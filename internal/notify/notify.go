package notify

import (
	"context"
	"sync"
	"time"

	"p2p-lending-ledger/internal/domain/event"
	"p2p-lending-ledger/internal/domain/loan"
)

// Message is the structured notification emitted after a transition commits.
// It mirrors the durable LedgerEvent; subscribers must treat it as
// best-effort and rebuild from the event log on reconnect.
type Message struct {
	ID              string      `json:"id"`
	EventID         string      `json:"event_id"`
	LoanID          uint64      `json:"loan_id"`
	Kind            event.Kind  `json:"kind"`
	Actor           string      `json:"actor"`
	ResultingStatus loan.Status `json:"resulting_status"`
	OccurredAt      time.Time   `json:"occurred_at"`
}

type Notifier interface {
	Publish(ctx context.Context, m Message) error
}

// Fanout is an in-process Notifier that copies each message to every
// subscriber channel. Slow subscribers drop messages rather than block
// the publisher.
type Fanout struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Message
}

func NewFanout() *Fanout { return &Fanout{subs: make(map[int]chan Message)} }

var _ Notifier = (*Fanout)(nil)

// Subscribe registers a buffered channel; call the returned func to
// unsubscribe and close it.
func (f *Fanout) Subscribe(buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Message, buffer)

	f.mu.Lock()
	idx := f.next
	f.next++
	f.subs[idx] = ch
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if sub, ok := f.subs[idx]; ok {
			delete(f.subs, idx)
			close(sub)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Fanout) Publish(_ context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- m:
		default:
		}
	}
	return nil
}
