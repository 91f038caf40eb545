package models

import (
	"time"

	"github.com/brickvest/brickvest/pkg/store"
)

// InvestmentStatus represents the lifecycle status of an investment
type InvestmentStatus string

const (
	// InvestmentActive is the status of a freshly purchased stake
	InvestmentActive InvestmentStatus = "ACTIVE"
	// InvestmentSold marks a stake that has been sold on
	InvestmentSold InvestmentStatus = "SOLD"
	// InvestmentCancelled marks a stake voided by administrative action
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// Investment is the append-only record of an investor's stake in a
// property. It is keyed by user, reachable by property through the
// by-property index and by status through the by-status index. Monetary
// fields are immutable history once written.
type Investment struct {
	PK     string `json:"-" dynamodbav:"PK"`
	SK     string `json:"-" dynamodbav:"SK"`
	GSI1PK string `json:"-" dynamodbav:"GSI1PK"`
	GSI1SK string `json:"-" dynamodbav:"GSI1SK"`
	GSI2PK string `json:"-" dynamodbav:"GSI2PK"`
	GSI2SK string `json:"-" dynamodbav:"GSI2SK"`

	InvestmentID string `json:"investmentId" dynamodbav:"investmentId"`
	UserID       string `json:"userId" dynamodbav:"userId"`
	PropertyID   string `json:"propertyId" dynamodbav:"propertyId"`

	Investment          float64          `json:"investment" dynamodbav:"investment"`
	Blocks              int              `json:"blocks" dynamodbav:"blocks"`
	OwnershipPercentage float64          `json:"ownershipPercentage,omitempty" dynamodbav:"ownershipPercentage,omitempty"`
	ReturnRate          float64          `json:"returnRate" dynamodbav:"returnRate"`
	YearlyReturn        float64          `json:"yearlyReturn" dynamodbav:"yearlyReturn"`
	MonthlyReturn       float64          `json:"monthlyReturn" dynamodbav:"monthlyReturn"`
	QuarterlyReturn     float64          `json:"quarterlyReturn" dynamodbav:"quarterlyReturn"`
	Currency            string           `json:"currency,omitempty" dynamodbav:"currency,omitempty"`
	Status              InvestmentStatus `json:"status" dynamodbav:"status"`

	// Denormalized snapshot of the property at purchase time, never
	// refreshed afterwards.
	PropertyTitle    string `json:"propertyTitle,omitempty" dynamodbav:"propertyTitle,omitempty"`
	PropertyLocation string `json:"propertyLocation,omitempty" dynamodbav:"propertyLocation,omitempty"`
	PropertyImage    string `json:"propertyImage,omitempty" dynamodbav:"propertyImage,omitempty"`

	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// SetKeys fills the table and index key attributes from the record's own
// fields. Must be called before any write.
func (i *Investment) SetKeys() {
	i.PK = store.UserPK(i.UserID)
	i.SK = store.InvestmentSK(i.InvestmentID)
	i.GSI1PK = store.PropertyPK(i.PropertyID)
	i.GSI1SK = store.InvestmentSK(i.InvestmentID)
	i.GSI2PK = store.StatusPK(string(i.Status))
	i.GSI2SK = store.InvestmentKeyPrefix + store.TimeSK(i.CreatedAt)
}
