// Package ledger holds the append-only investment and transaction
// records that together record who owns what and how money moved.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store"
)

// Investments is the repository of investment records.
type Investments struct {
	store store.Store
	log   *zap.Logger
}

// NewInvestments creates an investment repository backed by the given store
func NewInvestments(s store.Store, log *zap.Logger) *Investments {
	if log == nil {
		log = zap.NewNop()
	}
	return &Investments{store: s, log: log}
}

// Get loads one investment of a user.
func (r *Investments) Get(ctx context.Context, userID, investmentID string) (*models.Investment, error) {
	var inv models.Investment
	err := r.store.Get(ctx, store.UserPK(userID), store.InvestmentSK(investmentID), &inv)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("investment", investmentID)
		}
		return nil, fmt.Errorf("failed to load investment %s: %w", investmentID, err)
	}
	return &inv, nil
}

// ByUser returns every investment of a user in one partition query.
// Records that fail to decode are logged and skipped.
func (r *Investments) ByUser(ctx context.Context, userID string) ([]*models.Investment, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		PartitionKey:     store.UserPK(userID),
		SortKeyPrefix:    store.InvestmentKeyPrefix,
		ScanIndexForward: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query investments for user %s: %w", userID, err)
	}
	return r.decode(out.Items), nil
}

// ByProperty returns every investment against a property.
func (r *Investments) ByProperty(ctx context.Context, propertyID string) ([]*models.Investment, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		Index:            store.IndexByProperty,
		PartitionKey:     store.PropertyPK(propertyID),
		SortKeyPrefix:    store.InvestmentKeyPrefix,
		ScanIndexForward: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query investments for property %s: %w", propertyID, err)
	}
	return r.decode(out.Items), nil
}

// ByStatus returns investments in the given status, oldest first.
func (r *Investments) ByStatus(ctx context.Context, status models.InvestmentStatus, limit int32) ([]*models.Investment, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		Index:            store.IndexByStatus,
		PartitionKey:     store.StatusPK(string(status)),
		SortKeyPrefix:    store.InvestmentKeyPrefix,
		Limit:            limit,
		ScanIndexForward: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query investments by status %s: %w", status, err)
	}
	return r.decode(out.Items), nil
}

// UpdateStatus applies a status correction to an investment. Monetary
// fields are immutable history and are never touched here.
func (r *Investments) UpdateStatus(ctx context.Context, userID, investmentID string, status models.InvestmentStatus) (*models.Investment, error) {
	var inv models.Investment
	err := r.store.Update(ctx, store.UserPK(userID), store.InvestmentSK(investmentID), map[string]interface{}{
		"status":         status,
		"updatedAt":      time.Now().UTC(),
		store.AttrGSI2PK: store.StatusPK(string(status)),
	}, &inv)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("investment", investmentID)
		}
		return nil, fmt.Errorf("failed to update investment %s: %w", investmentID, err)
	}
	return &inv, nil
}

// Delete removes an investment by explicit administrative action.
func (r *Investments) Delete(ctx context.Context, userID, investmentID string) error {
	err := r.store.Delete(ctx, store.UserPK(userID), store.InvestmentSK(investmentID), nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("investment", investmentID)
		}
		return fmt.Errorf("failed to delete investment %s: %w", investmentID, err)
	}
	return nil
}

// decode unmarshals raw items leniently: a record that fails to decode is
// logged and skipped rather than failing the whole read.
func (r *Investments) decode(items []map[string]types.AttributeValue) []*models.Investment {
	investments := make([]*models.Investment, 0, len(items))
	for _, item := range items {
		var inv models.Investment
		if err := store.Unmarshal(item, &inv); err != nil {
			r.log.Warn("skipping undecodable investment record", zap.Error(err))
			continue
		}
		investments = append(investments, &inv)
	}
	return investments
}
