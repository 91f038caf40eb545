package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/invest"
	"github.com/brickvest/brickvest/internal/ledger"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store/dynamodb"
)

func usage() {
	fmt.Println("Usage: brickctl <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  portfolio   -user <id> [-limit n] [-chart out.png]   show a user's holdings")
	fmt.Println("  properties  -status <status> [-limit n]              list properties by status")
	os.Exit(1)
}

func openStore() *dynamodb.DynamoDBStore {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	tableName := os.Getenv("DYNAMODB_TABLE")
	if tableName == "" {
		tableName = "Brickvest"
	}

	db, err := dynamodb.NewDynamoDBStore(dynamodb.DynamoDBConfig{
		Region:    region,
		TableName: tableName,
		Endpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
	})
	if err != nil {
		fmt.Printf("Error creating store: %v\n", err)
		os.Exit(1)
	}
	if err := db.Initialize(context.Background()); err != nil {
		fmt.Printf("Error initializing store: %v\n", err)
		os.Exit(1)
	}
	return db
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "portfolio":
		runPortfolio(os.Args[2:])
	case "properties":
		runProperties(os.Args[2:])
	default:
		usage()
	}
}

func runPortfolio(args []string) {
	flags := flag.NewFlagSet("portfolio", flag.ExitOnError)
	userID := flags.String("user", "", "user id")
	limit := flags.Int("limit", 50, "max transactions to load")
	chartFile := flags.String("chart", "", "write an invested-per-property chart PNG to this file")
	flags.Parse(args)

	if *userID == "" {
		fmt.Println("portfolio requires -user")
		os.Exit(1)
	}

	db := openStore()
	defer db.Close()
	logger := zap.NewNop()

	service := invest.NewService(db, property.NewRepository(db),
		ledger.NewInvestments(db, logger),
		ledger.NewTransactions(db, logger),
		nil, int32(*limit), logger)

	portfolio, err := service.GetPortfolio(context.Background(), *userID, nil)
	if err != nil {
		fmt.Printf("Error loading portfolio: %v\n", err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Property", "Title", "Invested", "Blocks", "Rate (%)", "Yearly Return", "Current Value", "Status"})
	for _, row := range portfolio.Properties {
		table.Append([]string{
			row.PropertyID,
			row.Title,
			fmt.Sprintf("%.2f", row.InvestedAmount),
			fmt.Sprintf("%d", row.Blocks),
			fmt.Sprintf("%.2f", row.ReturnRate),
			fmt.Sprintf("%.2f", row.EstimatedYearlyReturn),
			fmt.Sprintf("%.2f", row.CurrentValue),
			row.Status,
		})
	}
	table.Render()

	fmt.Printf("\nTotal invested: %.2f  Total value: %.2f  Total return: %.2f\n",
		portfolio.TotalInvested, portfolio.TotalValue, portfolio.TotalReturn)
	fmt.Printf("Properties: %d  Diversification: %d/100  Growth: %.2f%%\n",
		portfolio.Stats.TotalProperties, portfolio.Stats.DiversificationScore, portfolio.Stats.PortfolioGrowth)

	if *chartFile != "" {
		if err := renderInvestmentChart(portfolio, *chartFile); err != nil {
			fmt.Printf("Warning: Failed to render chart: %v\n", err)
			return
		}
		fmt.Printf("Chart saved to: %s\n", *chartFile)
	}
}

// renderInvestmentChart draws invested amount per property as a bar chart
func renderInvestmentChart(portfolio *invest.Portfolio, outputFile string) error {
	byProperty := make(map[string]float64)
	for _, row := range portfolio.Properties {
		label := row.Title
		if label == "" {
			label = row.PropertyID
		}
		byProperty[label] += row.InvestedAmount
	}

	var bars []chart.Value
	for label, value := range byProperty {
		bars = append(bars, chart.Value{Label: label, Value: value})
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Label < bars[j].Label
	})

	barChart := chart.BarChart{
		Title: "Invested Amount by Property",
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  800,
		Height: 400,
		Bars:   bars,
	}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return fmt.Sprintf("%.2f", vf)
		}
		return ""
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return barChart.Render(chart.PNG, f)
}

func runProperties(args []string) {
	flags := flag.NewFlagSet("properties", flag.ExitOnError)
	status := flags.String("status", string(models.StatusCommercialized), "property status")
	limit := flags.Int("limit", 100, "max properties to list")
	flags.Parse(args)

	db := openStore()
	defer db.Close()

	properties, err := property.NewRepository(db).ListByStatus(context.Background(), models.PropertyStatus(*status), int32(*limit))
	if err != nil {
		fmt.Printf("Error listing properties: %v\n", err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Property", "Title", "Type", "City", "Country", "Price", "Status", "Owner"})
	for _, p := range properties {
		table.Append([]string{
			p.PropertyID,
			p.Title,
			p.PropertyType,
			p.City,
			p.Country,
			fmt.Sprintf("%.2f", p.PropertyPrice),
			string(p.Status),
			p.CreatedByUserID,
		})
	}
	table.Render()
	fmt.Printf("\n%d properties in status %s\n", len(properties), *status)
}
