// Package audit appends purchase events to an immutable audit trail. The
// trail is best-effort: the purchase path records events after its own
// writes and never fails a purchase on an audit error.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codenotary/immudb/pkg/client"
)

// PurchaseEvent is the audit record of one completed share purchase.
type PurchaseEvent struct {
	TransactionID string    `json:"transactionId"`
	InvestmentID  string    `json:"investmentId"`
	PropertyID    string    `json:"propertyId"`
	UserID        string    `json:"userId"`
	Amount        float64   `json:"amount"`
	Blocks        int       `json:"blocks"`
	Currency      string    `json:"currency,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Recorder appends purchase events to the audit trail.
type Recorder interface {
	RecordPurchase(ctx context.Context, event *PurchaseEvent) error
	Close(ctx context.Context) error
}

// NopRecorder discards every event. Used when auditing is disabled.
type NopRecorder struct{}

// RecordPurchase implements the Recorder interface
func (NopRecorder) RecordPurchase(ctx context.Context, event *PurchaseEvent) error { return nil }

// Close implements the Recorder interface
func (NopRecorder) Close(ctx context.Context) error { return nil }

// ImmuConfig holds the connection settings of the immudb audit trail.
type ImmuConfig struct {
	Address  string
	Port     int
	Username string
	Password string
	Database string
}

// ImmuRecorder appends purchase events to immudb with verified writes.
type ImmuRecorder struct {
	client    client.ImmuClient
	config    ImmuConfig
	connected bool
}

// NewImmuRecorder creates a recorder for the given immudb instance. The
// connection is established by Open.
func NewImmuRecorder(config ImmuConfig) *ImmuRecorder {
	return &ImmuRecorder{config: config}
}

// Open establishes the immudb session.
func (r *ImmuRecorder) Open(ctx context.Context) error {
	if r.connected {
		return nil
	}

	options := client.DefaultOptions().
		WithAddress(r.config.Address).
		WithPort(r.config.Port)

	c := client.NewClient().WithOptions(options)
	err := c.OpenSession(ctx, []byte(r.config.Username), []byte(r.config.Password), r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to audit trail: %w", err)
	}

	r.client = c
	r.connected = true
	return nil
}

// RecordPurchase implements the Recorder interface. The event is written
// with a verified set so the trail is tamper-evident.
func (r *ImmuRecorder) RecordPurchase(ctx context.Context, event *PurchaseEvent) error {
	if !r.connected {
		return fmt.Errorf("audit trail not connected")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	key := []byte("purchase:" + event.TransactionID)
	if _, err := r.client.VerifiedSet(ctx, key, value); err != nil {
		return fmt.Errorf("failed to append purchase event: %w", err)
	}
	return nil
}

// Close implements the Recorder interface
func (r *ImmuRecorder) Close(ctx context.Context) error {
	if !r.connected {
		return nil
	}
	r.connected = false
	return r.client.CloseSession(ctx)
}
