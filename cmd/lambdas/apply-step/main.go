package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store/dynamodb"
)

// Request is the input for the step-application Lambda function. The
// caller identity is resolved upstream by the API gateway authorizer.
type Request struct {
	UserID     string          `json:"userId"`
	Groups     []string        `json:"groups,omitempty"`
	Step       string          `json:"step"`
	PropertyID string          `json:"propertyId,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Response is the output from the step-application Lambda function
type Response struct {
	Success       bool                  `json:"success"`
	PropertyID    string                `json:"propertyId,omitempty"`
	Step          string                `json:"step,omitempty"`
	Status        models.PropertyStatus `json:"status,omitempty"`
	IsNewProperty bool                  `json:"isNewProperty,omitempty"`
	Property      *models.Property      `json:"property,omitempty"`
	Error         string                `json:"error,omitempty"`
}

var engine *property.Engine

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

	engine = property.NewEngine(property.NewRepository(db), logger)
}

func handleRequest(ctx context.Context, request Request) (Response, error) {
	caller := auth.Identity{UserID: request.UserID, Groups: request.Groups}
	result, err := engine.ApplyStep(ctx, caller, property.Submission{
		Step:       request.Step,
		PropertyID: request.PropertyID,
		Data:       request.Data,
	})
	if err != nil {
		return Response{Success: false, Error: err.Error()}, nil
	}
	return Response{
		Success:       true,
		PropertyID:    result.PropertyID,
		Step:          string(result.Step),
		Status:        result.Status,
		IsNewProperty: result.IsNewProperty,
		Property:      result.Property,
	}, nil
}

func main() {
	lambda.Start(handleRequest)
}
