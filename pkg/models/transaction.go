package models

import (
	"time"

	"github.com/brickvest/brickvest/pkg/store"
)

// TransactionType categorizes a monetary movement
type TransactionType string

const (
	// Purchase represents a share purchase
	Purchase TransactionType = "PURCHASE"
	// Sale represents a share sale
	Sale TransactionType = "SALE"
	// Payout represents a return payout
	Payout TransactionType = "PAYOUT"
)

// TransactionStatus represents the settlement status of a transaction
type TransactionStatus string

const (
	// TransactionPending is a movement awaiting settlement
	TransactionPending TransactionStatus = "PENDING"
	// TransactionConfirmed is a settled movement
	TransactionConfirmed TransactionStatus = "CONFIRMED"
	// TransactionFailed is a movement that did not settle
	TransactionFailed TransactionStatus = "FAILED"
)

// Transaction is the append-only record of a monetary movement tied to an
// investment. Keyed by user with a time-leading sort key so a user's
// transactions read most-recent-first; reachable by property, by type and
// by status through the secondary indexes. Every PURCHASE transaction
// pairs with exactly one Investment through the shared investmentId.
type Transaction struct {
	PK     string `json:"-" dynamodbav:"PK"`
	SK     string `json:"-" dynamodbav:"SK"`
	GSI1PK string `json:"-" dynamodbav:"GSI1PK"`
	GSI1SK string `json:"-" dynamodbav:"GSI1SK"`
	GSI2PK string `json:"-" dynamodbav:"GSI2PK"`
	GSI2SK string `json:"-" dynamodbav:"GSI2SK"`
	GSI3PK string `json:"-" dynamodbav:"GSI3PK"`
	GSI3SK string `json:"-" dynamodbav:"GSI3SK"`

	TransactionID string `json:"transactionId" dynamodbav:"transactionId"`
	InvestmentID  string `json:"investmentId,omitempty" dynamodbav:"investmentId,omitempty"`
	UserID        string `json:"userId" dynamodbav:"userId"`
	PropertyID    string `json:"propertyId" dynamodbav:"propertyId"`

	Amount        float64           `json:"amount" dynamodbav:"amount"`
	Blocks        int               `json:"blocks,omitempty" dynamodbav:"blocks,omitempty"`
	Type          TransactionType   `json:"type" dynamodbav:"type"`
	Status        TransactionStatus `json:"status" dynamodbav:"status"`
	Currency      string            `json:"currency,omitempty" dynamodbav:"currency,omitempty"`
	PaymentMethod string            `json:"paymentMethod,omitempty" dynamodbav:"paymentMethod,omitempty"`
	ReturnRate    float64           `json:"returnRate,omitempty" dynamodbav:"returnRate,omitempty"`

	// Denormalized snapshot of the property at purchase time, never
	// refreshed afterwards.
	PropertyTitle    string `json:"propertyTitle,omitempty" dynamodbav:"propertyTitle,omitempty"`
	PropertyLocation string `json:"propertyLocation,omitempty" dynamodbav:"propertyLocation,omitempty"`
	PropertyImage    string `json:"propertyImage,omitempty" dynamodbav:"propertyImage,omitempty"`

	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// SetKeys fills the table and index key attributes from the record's own
// fields. Must be called before any write.
func (t *Transaction) SetKeys() {
	t.PK = store.UserPK(t.UserID)
	t.SK = store.TransactionSK(t.Timestamp, t.TransactionID)
	t.GSI1PK = store.PropertyPK(t.PropertyID)
	t.GSI1SK = store.TransactionSK(t.Timestamp, t.TransactionID)
	t.GSI2PK = store.StatusPK(string(t.Status))
	t.GSI2SK = store.TransactionKeyPrefix + store.TimeSK(t.Timestamp)
	t.GSI3PK = store.TxTypePK(string(t.Type))
	t.GSI3SK = store.TimeSK(t.Timestamp)
}
