package models

import (
	"time"

	"github.com/brickvest/brickvest/pkg/store"
)

// PropertyStatus represents the lifecycle status of a property listing
type PropertyStatus string

const (
	// StatusInProgress marks a draft still being built through workflow steps
	StatusInProgress PropertyStatus = "IN_PROGRESS"
	// StatusCommercialized marks a listing open for investment
	StatusCommercialized PropertyStatus = "COMMERCIALIZED"
	// StatusActive marks a legacy listing open for investment
	StatusActive PropertyStatus = "ACTIVE"
	// StatusFunded marks a fully funded listing
	StatusFunded PropertyStatus = "FUNDED"
)

// TimelineEvent is one dated milestone in a property's timeline
type TimelineEvent struct {
	Date        string `json:"date" dynamodbav:"date"`
	Title       string `json:"title,omitempty" dynamodbav:"title,omitempty"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Status      string `json:"status" dynamodbav:"status"`
	Color       string `json:"color,omitempty" dynamodbav:"color,omitempty"`
	DisplayDate string `json:"displayDate,omitempty" dynamodbav:"displayDate,omitempty"`
	LastItem    bool   `json:"lastItem" dynamodbav:"lastItem"`
}

// Property represents one property listing and its draft/publish lifecycle.
// It lives in the single table under PROPERTY#<id> / METADATA and is listed
// by status through the by-status index.
type Property struct {
	PK     string `json:"-" dynamodbav:"PK"`
	SK     string `json:"-" dynamodbav:"SK"`
	GSI2PK string `json:"-" dynamodbav:"GSI2PK"`
	GSI2SK string `json:"-" dynamodbav:"GSI2SK"`

	// Identity and classification
	PropertyID   string         `json:"propertyId" dynamodbav:"propertyId"`
	Title        string         `json:"title,omitempty" dynamodbav:"title,omitempty"`
	Description  string         `json:"description,omitempty" dynamodbav:"description,omitempty"`
	PropertyType string         `json:"propertyType,omitempty" dynamodbav:"propertyType,omitempty"`
	Status       PropertyStatus `json:"status" dynamodbav:"status"`

	// Physical facts
	Surface     float64 `json:"surface,omitempty" dynamodbav:"surface,omitempty"`
	Bedrooms    int     `json:"bedrooms,omitempty" dynamodbav:"bedrooms,omitempty"`
	Bathrooms   int     `json:"bathrooms,omitempty" dynamodbav:"bathrooms,omitempty"`
	YearBuilt   int     `json:"yearBuilt,omitempty" dynamodbav:"yearBuilt,omitempty"`
	EnergyClass string  `json:"energyClass,omitempty" dynamodbav:"energyClass,omitempty"`

	// Location
	Country     string  `json:"country,omitempty" dynamodbav:"country,omitempty"`
	CountryCode string  `json:"countryCode,omitempty" dynamodbav:"countryCode,omitempty"`
	State       string  `json:"state,omitempty" dynamodbav:"state,omitempty"`
	City        string  `json:"city,omitempty" dynamodbav:"city,omitempty"`
	Address     string  `json:"address,omitempty" dynamodbav:"address,omitempty"`
	Latitude    float64 `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`

	// Financials
	PropertyPrice          float64 `json:"propertyPrice,omitempty" dynamodbav:"propertyPrice,omitempty"`
	Currency               string  `json:"currency,omitempty" dynamodbav:"currency,omitempty"`
	BrutYield              float64 `json:"brutYield,omitempty" dynamodbav:"brutYield,omitempty"`
	NetYield               float64 `json:"netYield,omitempty" dynamodbav:"netYield,omitempty"`
	PricePerSquareFoot     float64 `json:"pricePerSquareFoot,omitempty" dynamodbav:"pricePerSquareFoot,omitempty"`
	YearlyInvestmentReturn float64 `json:"yearlyInvestmentReturn,omitempty" dynamodbav:"yearlyInvestmentReturn,omitempty"`
	FundingDate            string  `json:"fundingDate,omitempty" dynamodbav:"fundingDate,omitempty"`
	ClosingDate            string  `json:"closingDate,omitempty" dynamodbav:"closingDate,omitempty"`

	// Media and milestones
	Photos       []string        `json:"photos,omitempty" dynamodbav:"photos,omitempty"`
	TimelineData []TimelineEvent `json:"timelineData,omitempty" dynamodbav:"timelineData,omitempty"`

	// Opaque step documents, stored verbatim under the step's name
	Pricing    map[string]interface{} `json:"pricing,omitempty" dynamodbav:"pricing,omitempty"`
	Calculator map[string]interface{} `json:"calculator,omitempty" dynamodbav:"calculator,omitempty"`
	Contact    map[string]interface{} `json:"contact,omitempty" dynamodbav:"contact,omitempty"`

	// Ownership and audit
	CreatedBy       string    `json:"createdBy,omitempty" dynamodbav:"createdBy,omitempty"`
	CreatedByUserID string    `json:"createdByUserId,omitempty" dynamodbav:"createdByUserId,omitempty"`
	CreatedAt       time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
	UpdatedBy       string    `json:"updatedBy,omitempty" dynamodbav:"updatedBy,omitempty"`
}

// SetKeys fills the table and index key attributes from the record's own
// fields. Must be called before any write.
func (p *Property) SetKeys() {
	p.PK = store.PropertyPK(p.PropertyID)
	p.SK = store.PropertyMetadataSK
	p.GSI2PK = store.StatusPK(string(p.Status))
	p.GSI2SK = store.PropertyKeyPrefix + store.TimeSK(p.CreatedAt)
}

// Owns reports whether the given user created this property.
func (p *Property) Owns(userID string) bool {
	return userID != "" && p.CreatedByUserID == userID
}

// Investable reports whether shares of this property may be purchased.
func (p *Property) Investable() bool {
	return p.Status == StatusCommercialized || p.Status == StatusActive
}
