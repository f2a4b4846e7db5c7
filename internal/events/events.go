// Package events publishes contractor membership transitions for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	TypeContractorAssigned = "contractor.assigned"
	TypeContractorPending  = "contractor.pending"
	TypeBranchAdded        = "contractor.branch_added"
	TypeBranchRemoved      = "contractor.branch_removed"
)

type Event struct {
	Type         string    `json:"type"`
	ContractorID string    `json:"contractor_id"`
	BranchID     string    `json:"branch_id,omitempty"`
	BranchIDs    []string  `json:"branch_ids,omitempty"`
	Actor        string    `json:"actor,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e Event) Key() []byte {
	return []byte(e.ContractorID)
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Delivery is best effort; callers log failures
// and never fail the originating write.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

type noopPublisher struct{}

func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, ...Event) error { return nil }
func (noopPublisher) Close() error                           { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []string {
	events := r.Events()
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
