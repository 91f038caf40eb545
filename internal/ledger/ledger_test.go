package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store/memory"
)

func seedInvestment(t *testing.T, m *memory.MemoryStore, userID, investmentID, propertyID string, amount float64) *models.Investment {
	t.Helper()
	inv := &models.Investment{
		InvestmentID: investmentID,
		UserID:       userID,
		PropertyID:   propertyID,
		Investment:   amount,
		Blocks:       int(amount / 100),
		ReturnRate:   7,
		YearlyReturn: amount * 0.07,
		Currency:     "EUR",
		Status:       models.InvestmentActive,
		CreatedAt:    time.Now().UTC(),
	}
	inv.SetKeys()
	require.NoError(t, m.Put(context.Background(), inv, nil))
	return inv
}

func seedTransaction(t *testing.T, m *memory.MemoryStore, userID, transactionID, propertyID string, txType models.TransactionType, at time.Time) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		TransactionID: transactionID,
		InvestmentID:  "inv-" + transactionID,
		UserID:        userID,
		PropertyID:    propertyID,
		Amount:        500,
		Blocks:        5,
		Type:          txType,
		Status:        models.TransactionConfirmed,
		Currency:      "EUR",
		Timestamp:     at,
	}
	tx.SetKeys()
	require.NoError(t, m.Put(context.Background(), tx, nil))
	return tx
}

func TestInvestmentsGetAndByUser(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewInvestments(m, nil)

	seedInvestment(t, m, "user-1", "inv-1", "prop-1", 1000)
	seedInvestment(t, m, "user-1", "inv-2", "prop-2", 2000)
	seedInvestment(t, m, "user-2", "inv-3", "prop-1", 500)

	inv, err := repo.Get(ctx, "user-1", "inv-1")
	require.NoError(t, err)
	assert.Equal("prop-1", inv.PropertyID)
	assert.InDelta(1000, inv.Investment, 0.001)

	_, err = repo.Get(ctx, "user-1", "inv-9")
	assert.True(errs.IsNotFound(err))

	mine, err := repo.ByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(mine, 2)

	none, err := repo.ByUser(ctx, "user-9")
	require.NoError(t, err)
	assert.Empty(none)
}

func TestInvestmentsByProperty(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewInvestments(m, nil)

	seedInvestment(t, m, "user-1", "inv-1", "prop-1", 1000)
	seedInvestment(t, m, "user-2", "inv-2", "prop-1", 500)
	seedInvestment(t, m, "user-2", "inv-3", "prop-2", 500)

	holders, err := repo.ByProperty(ctx, "prop-1")
	require.NoError(t, err)
	assert.Len(holders, 2)
}

func TestInvestmentsUpdateStatusMovesIndex(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewInvestments(m, nil)

	seedInvestment(t, m, "user-1", "inv-1", "prop-1", 1000)
	seedInvestment(t, m, "user-1", "inv-2", "prop-2", 2000)

	updated, err := repo.UpdateStatus(ctx, "user-1", "inv-1", models.InvestmentSold)
	require.NoError(t, err)
	assert.Equal(models.InvestmentSold, updated.Status)
	// Monetary fields untouched by a status correction.
	assert.InDelta(1000, updated.Investment, 0.001)

	active, err := repo.ByStatus(ctx, models.InvestmentActive, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal("inv-2", active[0].InvestmentID)

	sold, err := repo.ByStatus(ctx, models.InvestmentSold, 10)
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal("inv-1", sold[0].InvestmentID)

	_, err = repo.UpdateStatus(ctx, "user-1", "inv-9", models.InvestmentSold)
	assert.True(errs.IsNotFound(err))
}

func TestInvestmentsDelete(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewInvestments(m, nil)

	seedInvestment(t, m, "user-1", "inv-1", "prop-1", 1000)

	require.NoError(t, repo.Delete(ctx, "user-1", "inv-1"))
	_, err := repo.Get(ctx, "user-1", "inv-1")
	assert.True(errs.IsNotFound(err))
	assert.True(errs.IsNotFound(repo.Delete(ctx, "user-1", "inv-1")))
}

func TestTransactionsByUserRecentFirst(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewTransactions(m, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTransaction(t, m, "user-1", "tx-1", "prop-1", models.Purchase, base)
	seedTransaction(t, m, "user-1", "tx-2", "prop-1", models.Purchase, base.Add(time.Hour))
	seedTransaction(t, m, "user-1", "tx-3", "prop-2", models.Purchase, base.Add(2*time.Hour))

	page, err := repo.ByUser(ctx, "user-1", 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 3)
	assert.Nil(page.NextCursor)
	assert.Equal("tx-3", page.Transactions[0].TransactionID)
	assert.Equal("tx-1", page.Transactions[2].TransactionID)
}

func TestTransactionsByUserCursorPaging(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewTransactions(m, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"tx-1", "tx-2", "tx-3", "tx-4", "tx-5"} {
		seedTransaction(t, m, "user-1", id, "prop-1", models.Purchase, base.Add(time.Duration(i)*time.Hour))
	}

	page, err := repo.ByUser(ctx, "user-1", 2, nil)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	require.NotNil(t, page.NextCursor)
	assert.Equal("tx-5", page.Transactions[0].TransactionID)

	page, err = repo.ByUser(ctx, "user-1", 2, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	assert.Equal("tx-3", page.Transactions[0].TransactionID)

	page, err = repo.ByUser(ctx, "user-1", 2, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	assert.Equal("tx-1", page.Transactions[0].TransactionID)
	assert.Nil(page.NextCursor)
}

func TestTransactionsByPropertyAndType(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewTransactions(m, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTransaction(t, m, "user-1", "tx-1", "prop-1", models.Purchase, base)
	seedTransaction(t, m, "user-2", "tx-2", "prop-1", models.Purchase, base.Add(time.Hour))
	seedTransaction(t, m, "user-1", "tx-3", "prop-2", models.Payout, base.Add(2*time.Hour))

	byProperty, err := repo.ByProperty(ctx, "prop-1", 10)
	require.NoError(t, err)
	assert.Len(byProperty, 2)

	purchases, err := repo.ByType(ctx, models.Purchase, 10)
	require.NoError(t, err)
	assert.Len(purchases, 2)

	payouts, err := repo.ByType(ctx, models.Payout, 10)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal("tx-3", payouts[0].TransactionID)
}

func TestTransactionsByStatus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	m := memory.NewMemoryStore()
	repo := NewTransactions(m, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedTransaction(t, m, "user-1", "tx-1", "prop-1", models.Purchase, base)

	pending := &models.Transaction{
		TransactionID: "tx-2",
		UserID:        "user-1",
		PropertyID:    "prop-1",
		Amount:        100,
		Type:          models.Purchase,
		Status:        models.TransactionPending,
		Timestamp:     base.Add(time.Hour),
	}
	pending.SetKeys()
	require.NoError(t, m.Put(ctx, pending, nil))

	confirmed, err := repo.ByStatus(ctx, models.TransactionConfirmed, 10)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal("tx-1", confirmed[0].TransactionID)
}
