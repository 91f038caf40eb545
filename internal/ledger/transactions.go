package ledger

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store"
)

// Transactions is the repository of transaction records. Transactions are
// immutable history: they are written once by the purchase path and only
// ever read here.
type Transactions struct {
	store store.Store
	log   *zap.Logger
}

// NewTransactions creates a transaction repository backed by the given store
func NewTransactions(s store.Store, log *zap.Logger) *Transactions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transactions{store: s, log: log}
}

// Page is one page of a cursor-paged transaction read. NextCursor is nil
// on the final page; otherwise it resumes the read when passed back.
type Page struct {
	Transactions []*models.Transaction
	NextCursor   map[string]string
}

// ByUser returns up to limit of a user's transactions, most recent first,
// resuming from cursor when non-nil.
func (r *Transactions) ByUser(ctx context.Context, userID string, limit int32, cursor map[string]string) (*Page, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		PartitionKey:      store.UserPK(userID),
		SortKeyPrefix:     store.TransactionKeyPrefix,
		Limit:             limit,
		ScanIndexForward:  false,
		ExclusiveStartKey: cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	return &Page{
		Transactions: r.decode(out.Items),
		NextCursor:   out.LastEvaluatedKey,
	}, nil
}

// ByProperty returns the transactions against a property, most recent
// first.
func (r *Transactions) ByProperty(ctx context.Context, propertyID string, limit int32) ([]*models.Transaction, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		Index:            store.IndexByProperty,
		PartitionKey:     store.PropertyPK(propertyID),
		SortKeyPrefix:    store.TransactionKeyPrefix,
		Limit:            limit,
		ScanIndexForward: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for property %s: %w", propertyID, err)
	}
	return r.decode(out.Items), nil
}

// ByType returns transactions of one movement type, most recent first.
func (r *Transactions) ByType(ctx context.Context, txType models.TransactionType, limit int32) ([]*models.Transaction, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		Index:            store.IndexByType,
		PartitionKey:     store.TxTypePK(string(txType)),
		Limit:            limit,
		ScanIndexForward: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by type %s: %w", txType, err)
	}
	return r.decode(out.Items), nil
}

// ByStatus returns transactions in one settlement status, most recent
// first.
func (r *Transactions) ByStatus(ctx context.Context, status models.TransactionStatus, limit int32) ([]*models.Transaction, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		Index:            store.IndexByStatus,
		PartitionKey:     store.StatusPK(string(status)),
		SortKeyPrefix:    store.TransactionKeyPrefix,
		Limit:            limit,
		ScanIndexForward: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by status %s: %w", status, err)
	}
	return r.decode(out.Items), nil
}

// decode unmarshals raw items leniently: a record that fails to decode is
// logged and skipped rather than failing the whole read.
func (r *Transactions) decode(items []map[string]types.AttributeValue) []*models.Transaction {
	transactions := make([]*models.Transaction, 0, len(items))
	for _, item := range items {
		var tx models.Transaction
		if err := store.Unmarshal(item, &tx); err != nil {
			r.log.Warn("skipping undecodable transaction record", zap.Error(err))
			continue
		}
		transactions = append(transactions, &tx)
	}
	return transactions
}
