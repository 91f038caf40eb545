package invest

import (
	"context"
	"time"

	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
)

// PortfolioOptions tunes a portfolio read.
type PortfolioOptions struct {
	// TransactionLimit bounds the transaction page; the service default
	// applies when zero.
	TransactionLimit int32
	// Cursor resumes the transaction page from a previous read.
	Cursor map[string]string
}

// PropertySummary is one investment mapped to a portfolio row.
type PropertySummary struct {
	InvestmentID          string    `json:"investmentId"`
	PropertyID            string    `json:"propertyId"`
	Title                 string    `json:"title,omitempty"`
	Location              string    `json:"location,omitempty"`
	Image                 string    `json:"image,omitempty"`
	InvestedAmount        float64   `json:"investedAmount"`
	Blocks                int       `json:"blocks"`
	OwnershipPercentage   float64   `json:"ownershipPercentage,omitempty"`
	ReturnRate            float64   `json:"returnRate"`
	EstimatedYearlyReturn float64   `json:"estimatedYearlyReturn"`
	CurrentValue          float64   `json:"currentValue"`
	Status                string    `json:"status"`
	Currency              string    `json:"currency,omitempty"`
	PurchasedAt           time.Time `json:"purchasedAt"`
}

// PortfolioStats are the folded statistics of a portfolio read.
type PortfolioStats struct {
	TotalProperties      int            `json:"totalProperties"`
	AverageReturn        float64        `json:"averageReturn"`
	TransactionsByStatus map[string]int `json:"transactionsByStatus"`
	PortfolioGrowth      float64        `json:"portfolioGrowth"`
	DiversificationScore int            `json:"diversificationScore"`
}

// Portfolio is a user's aggregated holdings, recomputed from the ledger
// on every read.
type Portfolio struct {
	TotalInvested float64               `json:"totalInvested"`
	TotalValue    float64               `json:"totalValue"`
	TotalReturn   float64               `json:"totalReturn"`
	Properties    []PropertySummary     `json:"properties"`
	Transactions  []*models.Transaction `json:"transactions"`
	Stats         PortfolioStats        `json:"stats"`
	NextCursor    map[string]string     `json:"nextCursor,omitempty"`
}

// GetPortfolio reads a user's investments and most recent transactions
// and folds them into portfolio totals and per-property summaries. Pure
// read-time fold: nothing is persisted, so the result is always
// self-consistent with the ledger's current contents.
func (s *Service) GetPortfolio(ctx context.Context, userID string, opts *PortfolioOptions) (*Portfolio, error) {
	if userID == "" {
		return nil, errs.MissingFields("userId")
	}
	if opts == nil {
		opts = &PortfolioOptions{}
	}
	limit := opts.TransactionLimit
	if limit <= 0 {
		limit = s.pageSize
	}

	investments, err := s.investments.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	page, err := s.transactions.ByUser(ctx, userID, limit, opts.Cursor)
	if err != nil {
		return nil, err
	}

	portfolio := &Portfolio{
		Properties:   make([]PropertySummary, 0, len(investments)),
		Transactions: page.Transactions,
		NextCursor:   page.NextCursor,
	}

	distinctProperties := make(map[string]bool)
	for _, inv := range investments {
		portfolio.TotalInvested += inv.Investment
		portfolio.TotalReturn += inv.YearlyReturn
		distinctProperties[inv.PropertyID] = true

		// A deliberately simplified valuation, not mark-to-market.
		currentValue := inv.Investment + inv.YearlyReturn
		portfolio.Properties = append(portfolio.Properties, PropertySummary{
			InvestmentID:          inv.InvestmentID,
			PropertyID:            inv.PropertyID,
			Title:                 inv.PropertyTitle,
			Location:              inv.PropertyLocation,
			Image:                 inv.PropertyImage,
			InvestedAmount:        inv.Investment,
			Blocks:                inv.Blocks,
			OwnershipPercentage:   inv.OwnershipPercentage,
			ReturnRate:            inv.ReturnRate,
			EstimatedYearlyReturn: inv.YearlyReturn,
			CurrentValue:          currentValue,
			Status:                string(inv.Status),
			Currency:              inv.Currency,
			PurchasedAt:           inv.CreatedAt,
		})
	}
	portfolio.TotalValue = portfolio.TotalInvested + portfolio.TotalReturn

	stats := PortfolioStats{
		TotalProperties:      len(distinctProperties),
		TransactionsByStatus: make(map[string]int),
	}
	for _, tx := range page.Transactions {
		stats.TransactionsByStatus[string(tx.Status)]++
	}
	if portfolio.TotalInvested > 0 {
		stats.AverageReturn = portfolio.TotalReturn / portfolio.TotalInvested * 100
		stats.PortfolioGrowth = (portfolio.TotalValue - portfolio.TotalInvested) / portfolio.TotalInvested * 100
	}
	// Crude heuristic: 20 points per distinct property, capped at 100.
	stats.DiversificationScore = len(distinctProperties) * 20
	if stats.DiversificationScore > 100 {
		stats.DiversificationScore = 100
	}
	portfolio.Stats = stats

	return portfolio, nil
}
