package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/invest"
	"github.com/brickvest/brickvest/internal/ledger"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/store/dynamodb"
)

// Request is the input for the portfolio Lambda function
type Request struct {
	UserID string            `json:"userId"`
	Limit  int32             `json:"limit,omitempty"`
	Cursor map[string]string `json:"cursor,omitempty"`
}

// Response is the output from the portfolio Lambda function
type Response struct {
	Success bool              `json:"success"`
	Data    *invest.Portfolio `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

var service *invest.Service

func init() {
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)

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

	properties := property.NewRepository(db)
	service = invest.NewService(db, properties,
		ledger.NewInvestments(db, logger),
		ledger.NewTransactions(db, logger),
		nil, 50, logger)
}

func handleRequest(ctx context.Context, request Request) (Response, error) {
	portfolio, err := service.GetPortfolio(ctx, request.UserID, &invest.PortfolioOptions{
		TransactionLimit: request.Limit,
		Cursor:           request.Cursor,
	})
	if err != nil {
		return Response{Success: false, Error: err.Error()}, nil
	}
	return Response{Success: true, Data: portfolio}, nil
}

func main() {
	lambda.Start(handleRequest)
}
