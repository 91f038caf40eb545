// Package invest holds the purchase orchestrator and the portfolio
// aggregator: the write and read sides of the fractional-investment
// ledger.
package invest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/audit"
	"github.com/brickvest/brickvest/internal/countries"
	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/internal/ledger"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store"
)

// DefaultReturnRate is the projected yearly return rate applied when a
// purchase request does not carry one.
const DefaultReturnRate = 7.0

// Service orchestrates purchases and aggregates portfolios.
type Service struct {
	store        store.Store
	properties   *property.Repository
	investments  *ledger.Investments
	transactions *ledger.Transactions
	audit        audit.Recorder
	pageSize     int32
	log          *zap.Logger
}

// NewService wires the purchase and portfolio paths together.
func NewService(s store.Store, properties *property.Repository, investments *ledger.Investments, transactions *ledger.Transactions, recorder audit.Recorder, pageSize int32, log *zap.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:        s,
		properties:   properties,
		investments:  investments,
		transactions: transactions,
		audit:        recorder,
		pageSize:     pageSize,
		log:          log,
	}
}

// PurchaseRequest is a request to buy blocks of a property.
type PurchaseRequest struct {
	PropertyID          string  `json:"propertyId"`
	UserID              string  `json:"userId"`
	Investment          float64 `json:"investment"`
	Blocks              int     `json:"blocks"`
	OwnershipPercentage float64 `json:"ownershipPercentage,omitempty"`
	ReturnRate          float64 `json:"returnRate,omitempty"`
	Currency            string  `json:"currency,omitempty"`
	PaymentMethod       string  `json:"paymentMethod,omitempty"`
	PropertyTitle       string  `json:"propertyTitle,omitempty"`
	PropertyLocation    string  `json:"propertyLocation,omitempty"`
	PropertyImage       string  `json:"propertyImage,omitempty"`
}

// PurchaseResult is the outcome of a completed purchase.
type PurchaseResult struct {
	TransactionID          string  `json:"transactionId"`
	InvestmentID           string  `json:"investmentId"`
	PropertyID             string  `json:"propertyId"`
	Blocks                 int     `json:"blocks"`
	Investment             float64 `json:"investment"`
	Status                 string  `json:"status"`
	EstimatedReturnYear    float64 `json:"estimatedReturnYear"`
	EstimatedReturnQuarter float64 `json:"estimatedReturnQuarter"`
	EstimatedReturnMonth   float64 `json:"estimatedReturnMonth"`
	ReturnRate             float64 `json:"returnRate"`
	Currency               string  `json:"currency"`
}

// BuyShares validates a buy request, mints identifiers, computes return
// projections and writes the Investment and Transaction pair as one
// atomic multi-item write: either both records land or neither does.
func (s *Service) BuyShares(ctx context.Context, req *PurchaseRequest) (*PurchaseResult, error) {
	var missing []string
	if req.PropertyID == "" {
		missing = append(missing, "propertyId")
	}
	if req.UserID == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return nil, errs.MissingFields(missing...)
	}

	var invalid []string
	if req.Investment <= 0 {
		invalid = append(invalid, "investment")
	}
	if req.Blocks <= 0 {
		invalid = append(invalid, "blocks")
	}
	if len(invalid) > 0 {
		return nil, &errs.ValidationError{
			Fields:  invalid,
			Message: "fields must be positive: " + strings.Join(invalid, ", "),
		}
	}

	p, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !p.Investable() {
		return nil, errs.Conflictf("property %s is not available for investment", req.PropertyID)
	}

	rate := req.ReturnRate
	if rate == 0 {
		rate = DefaultReturnRate
	}
	yearlyReturn := req.Investment * rate / 100
	monthlyReturn := yearlyReturn / 12
	quarterlyReturn := yearlyReturn / 4

	currency := req.Currency
	if currency == "" {
		currency = p.Currency
	}
	if currency == "" {
		currency = countries.CurrencyFor(p.Country)
	}
	if currency == "" {
		currency = "USD"
	}

	title, location, image := snapshot(req, p)

	now := time.Now().UTC()
	investmentID := uuid.NewString()
	transactionID := uuid.NewString()

	investment := &models.Investment{
		InvestmentID:        investmentID,
		UserID:              req.UserID,
		PropertyID:          req.PropertyID,
		Investment:          req.Investment,
		Blocks:              req.Blocks,
		OwnershipPercentage: req.OwnershipPercentage,
		ReturnRate:          rate,
		YearlyReturn:        yearlyReturn,
		MonthlyReturn:       monthlyReturn,
		QuarterlyReturn:     quarterlyReturn,
		Currency:            currency,
		Status:              models.InvestmentActive,
		PropertyTitle:       title,
		PropertyLocation:    location,
		PropertyImage:       image,
		CreatedAt:           now,
	}
	investment.SetKeys()

	transaction := &models.Transaction{
		TransactionID:    transactionID,
		InvestmentID:     investmentID,
		UserID:           req.UserID,
		PropertyID:       req.PropertyID,
		Amount:           req.Investment,
		Blocks:           req.Blocks,
		Type:             models.Purchase,
		Status:           models.TransactionConfirmed,
		Currency:         currency,
		PaymentMethod:    req.PaymentMethod,
		ReturnRate:       rate,
		PropertyTitle:    title,
		PropertyLocation: location,
		PropertyImage:    image,
		Timestamp:        now,
	}
	transaction.SetKeys()

	err = s.store.TransactPut(ctx, []store.TransactPutItem{
		{Record: investment, IfNotExists: true},
		{Record: transaction, IfNotExists: true},
	})
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, errs.Conflictf("purchase identifiers collided, retry the purchase")
		}
		return nil, fmt.Errorf("failed to write purchase records: %w", err)
	}

	if err := s.audit.RecordPurchase(ctx, &audit.PurchaseEvent{
		TransactionID: transactionID,
		InvestmentID:  investmentID,
		PropertyID:    req.PropertyID,
		UserID:        req.UserID,
		Amount:        req.Investment,
		Blocks:        req.Blocks,
		Currency:      currency,
		Timestamp:     now,
	}); err != nil {
		s.log.Warn("failed to append purchase to audit trail",
			zap.String("transactionId", transactionID),
			zap.Error(err))
	}

	s.log.Info("purchase completed",
		zap.String("transactionId", transactionID),
		zap.String("investmentId", investmentID),
		zap.String("propertyId", req.PropertyID),
		zap.String("userId", req.UserID),
		zap.Float64("investment", req.Investment),
		zap.Int("blocks", req.Blocks))

	return &PurchaseResult{
		TransactionID:          transactionID,
		InvestmentID:           investmentID,
		PropertyID:             req.PropertyID,
		Blocks:                 req.Blocks,
		Investment:             req.Investment,
		Status:                 string(models.TransactionConfirmed),
		EstimatedReturnYear:    yearlyReturn,
		EstimatedReturnQuarter: quarterlyReturn,
		EstimatedReturnMonth:   monthlyReturn,
		ReturnRate:             rate,
		Currency:               currency,
	}, nil
}

// snapshot resolves the denormalized property fields embedded in the
// ledger records: request-provided values win, the property fills the
// gaps. The snapshot reflects the property at purchase time and is never
// refreshed.
func snapshot(req *PurchaseRequest, p *models.Property) (title, location, image string) {
	title = req.PropertyTitle
	if title == "" {
		title = p.Title
	}
	location = req.PropertyLocation
	if location == "" {
		parts := make([]string, 0, 2)
		if p.City != "" {
			parts = append(parts, p.City)
		}
		if p.Country != "" {
			parts = append(parts, p.Country)
		}
		location = strings.Join(parts, ", ")
	}
	image = req.PropertyImage
	if image == "" && len(p.Photos) > 0 {
		image = p.Photos[0]
	}
	return title, location, image
}
