package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Name identifies a domain event.
type Name string

const (
	// Region registry
	RegionMinted              Name = "region_minted"
	RegionBurned              Name = "region_burned"
	RegionTransferred         Name = "region_transferred"
	RegionLocked              Name = "region_locked"
	RegionUnlocked            Name = "region_unlocked"
	RegionRecordRequested     Name = "region_record_requested"
	RegionRecordRequestFailed Name = "region_record_request_failed"
	RegionRecordSet           Name = "region_record_set"
	RegionRecordUnavailable   Name = "region_record_unavailable"
	RegionDropped             Name = "region_dropped"

	// Market
	RegionListed       Name = "region_listed"
	RegionUnlisted     Name = "region_unlisted"
	RegionPriceUpdated Name = "region_price_updated"
	RegionPurchased    Name = "region_purchased"

	// Orders
	OrderCreated        Name = "order_created"
	OrderRemoved        Name = "order_removed"
	Contributed         Name = "contributed"
	ContributionRemoved Name = "contribution_removed"

	// Processor
	OrderProcessed   Name = "order_processed"
	RegionAssigned   Name = "region_assigned"
	AssignmentFailed Name = "assignment_failed"
)

var eventModules = map[Name]string{
	RegionMinted:              "regions",
	RegionBurned:              "regions",
	RegionTransferred:         "regions",
	RegionLocked:              "regions",
	RegionUnlocked:            "regions",
	RegionRecordRequested:     "regions",
	RegionRecordRequestFailed: "regions",
	RegionRecordSet:           "regions",
	RegionRecordUnavailable:   "regions",
	RegionDropped:             "regions",

	RegionListed:       "market",
	RegionUnlisted:     "market",
	RegionPriceUpdated: "market",
	RegionPurchased:    "market",

	OrderCreated:        "orders",
	OrderRemoved:        "orders",
	Contributed:         "orders",
	ContributionRemoved: "orders",

	OrderProcessed:   "processor",
	RegionAssigned:   "processor",
	AssignmentFailed: "processor",
}

// Module returns the emitting module. Unknown names map to "unknown".
func (n Name) Module() string {
	if m, ok := eventModules[n]; ok {
		return m
	}
	return "unknown"
}

// Event is emitted from domain logic after a state change. Attributes carry
// the event fields in their canonical text form.
type Event struct {
	ID         uuid.UUID
	Name       Name
	Timestamp  time.Time
	RequestID  string
	Attributes map[string]string
}

// New builds an event from alternating key/value pairs.
func New(name Name, kv ...string) Event {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return Event{
		ID:         uuid.New(),
		Name:       name,
		Timestamp:  time.Now(),
		Attributes: attrs,
	}
}

// Publisher accepts events. Implementations must respect the transaction in
// ctx: nothing becomes visible if the surrounding operation fails.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Fanout emits to every publisher in order and stops at the first error.
type Fanout []Publisher

func (f Fanout) Emit(ctx context.Context, event Event) error {
	for _, p := range f {
		if err := p.Emit(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
