package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/audit"
	"github.com/brickvest/brickvest/internal/invest"
	"github.com/brickvest/brickvest/internal/ledger"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/store/dynamodb"
)

// Response is the output from the share-purchase Lambda function
type Response struct {
	Success bool                   `json:"success"`
	Data    *invest.PurchaseResult `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
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

	var recorder audit.Recorder = audit.NopRecorder{}
	if os.Getenv("AUDIT_ADDRESS") != "" {
		port := 3322
		if p, err := strconv.Atoi(os.Getenv("AUDIT_PORT")); err == nil {
			port = p
		}
		immu := audit.NewImmuRecorder(audit.ImmuConfig{
			Address:  os.Getenv("AUDIT_ADDRESS"),
			Port:     port,
			Username: os.Getenv("AUDIT_USERNAME"),
			Password: os.Getenv("AUDIT_PASSWORD"),
			Database: os.Getenv("AUDIT_DATABASE"),
		})
		if err := immu.Open(context.Background()); err != nil {
			logger.Warn("audit trail unavailable, continuing without it", zap.Error(err))
		} else {
			recorder = immu
		}
	}

	properties := property.NewRepository(db)
	service = invest.NewService(db, properties,
		ledger.NewInvestments(db, logger),
		ledger.NewTransactions(db, logger),
		recorder, 50, logger)
}

func handleRequest(ctx context.Context, request invest.PurchaseRequest) (Response, error) {
	result, err := service.BuyShares(ctx, &request)
	if err != nil {
		return Response{Success: false, Error: err.Error()}, nil
	}
	return Response{Success: true, Data: result}, nil
}

func main() {
	lambda.Start(handleRequest)
}
