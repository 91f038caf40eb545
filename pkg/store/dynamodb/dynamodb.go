package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/brickvest/brickvest/pkg/store"
)

// DynamoDBStore is an implementation of the Store interface for AWS DynamoDB
type DynamoDBStore struct {
	client      *dynamodb.Client
	tableName   string
	initialized bool
}

// DynamoDBConfig holds the configuration for a DynamoDB store
type DynamoDBConfig struct {
	Region          string
	TableName       string
	Endpoint        string
	ProvisionedRCUs int64
	ProvisionedWCUs int64
	CreateTable     bool
}

// DynamoDBFactory creates DynamoDB store instances
type DynamoDBFactory struct{}

// NewDynamoDBFactory creates a new DynamoDB factory
func NewDynamoDBFactory() *DynamoDBFactory {
	return &DynamoDBFactory{}
}

// CreateStore implements the store.Factory interface
func (f *DynamoDBFactory) CreateStore(config map[string]interface{}) (store.Store, error) {
	dbConfig := DynamoDBConfig{
		Region:          "us-east-1",
		TableName:       "Brickvest",
		ProvisionedRCUs: 5,
		ProvisionedWCUs: 5,
		CreateTable:     false,
	}

	if region, ok := config["region"].(string); ok {
		dbConfig.Region = region
	}
	if tableName, ok := config["tableName"].(string); ok {
		dbConfig.TableName = tableName
	}
	if endpoint, ok := config["endpoint"].(string); ok {
		dbConfig.Endpoint = endpoint
	}
	if rcus, ok := config["provisionedRCUs"].(int64); ok {
		dbConfig.ProvisionedRCUs = rcus
	}
	if wcus, ok := config["provisionedWCUs"].(int64); ok {
		dbConfig.ProvisionedWCUs = wcus
	}
	if createTable, ok := config["createTable"].(bool); ok {
		dbConfig.CreateTable = createTable
	}

	return NewDynamoDBStore(dbConfig)
}

// NewDynamoDBStore creates a new DynamoDB store instance
func NewDynamoDBStore(dbConfig DynamoDBConfig) (*DynamoDBStore, error) {
	db := &DynamoDBStore{
		tableName:   dbConfig.TableName,
		initialized: false,
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(dbConfig.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	if dbConfig.Endpoint != "" {
		// Use a custom endpoint (e.g., for local DynamoDB)
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           dbConfig.Endpoint,
				SigningRegion: dbConfig.Region,
			}, nil
		})
		awsCfg.EndpointResolverWithOptions = customResolver
	}

	db.client = dynamodb.NewFromConfig(awsCfg)

	if dbConfig.CreateTable {
		err = db.createTable(dbConfig.ProvisionedRCUs, dbConfig.ProvisionedWCUs)
		if err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	return db, nil
}

// Initialize implements the Store interface
func (db *DynamoDBStore) Initialize(ctx context.Context) error {
	if db.initialized {
		return nil
	}

	_, err := db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(db.tableName),
	})
	if err != nil {
		var notFoundErr *types.ResourceNotFoundException
		if errors.As(err, &notFoundErr) {
			return fmt.Errorf("table %s does not exist", db.tableName)
		}
		return fmt.Errorf("error checking table: %w", err)
	}

	db.initialized = true
	return nil
}

// Close implements the Store interface
func (db *DynamoDBStore) Close() error {
	// DynamoDB doesn't require explicit connection closing
	db.initialized = false
	return nil
}

// Get implements the Store interface
func (db *DynamoDBStore) Get(ctx context.Context, pk, sk string, out interface{}) error {
	if !db.initialized {
		return errors.New("store not initialized")
	}

	result, err := db.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			store.AttrPK: &types.AttributeValueMemberS{Value: pk},
			store.AttrSK: &types.AttributeValueMemberS{Value: sk},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("GetItem operation failed: %w", err)
	}

	if len(result.Item) == 0 {
		return store.ErrNotFound
	}

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return nil
}

// Put implements the Store interface
func (db *DynamoDBStore) Put(ctx context.Context, record interface{}, options *store.WriteOptions) error {
	if !db.initialized {
		return errors.New("store not initialized")
	}
	if record == nil {
		return errors.New("record cannot be nil")
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(db.tableName),
		Item:      item,
	}
	if options != nil && options.IfNotExists {
		input.ConditionExpression = aws.String("attribute_not_exists(" + store.AttrPK + ")")
	}

	_, err = db.client.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return store.ErrConditionFailed
		}
		return fmt.Errorf("PutItem operation failed: %w", err)
	}
	return nil
}

// Update implements the Store interface
func (db *DynamoDBStore) Update(ctx context.Context, pk, sk string, fields map[string]interface{}, out interface{}) error {
	if !db.initialized {
		return errors.New("store not initialized")
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	// Deterministic expression ordering keeps requests reproducible.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	updateExpr := "SET "
	exprNames := make(map[string]string, len(fields))
	exprValues := make(map[string]types.AttributeValue, len(fields))
	for i, name := range names {
		av, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return fmt.Errorf("failed to marshal field %s: %w", name, err)
		}
		placeholder := fmt.Sprintf("#f%d", i)
		valueRef := fmt.Sprintf(":v%d", i)
		if i > 0 {
			updateExpr += ", "
		}
		updateExpr += placeholder + " = " + valueRef
		exprNames[placeholder] = name
		exprValues[valueRef] = av
	}

	result, err := db.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			store.AttrPK: &types.AttributeValueMemberS{Value: pk},
			store.AttrSK: &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ConditionExpression:       aws.String("attribute_exists(" + store.AttrPK + ")"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return store.ErrNotFound
		}
		return fmt.Errorf("UpdateItem operation failed: %w", err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}
	return nil
}

// Delete implements the Store interface
func (db *DynamoDBStore) Delete(ctx context.Context, pk, sk string, out interface{}) error {
	if !db.initialized {
		return errors.New("store not initialized")
	}

	result, err := db.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(db.tableName),
		Key: map[string]types.AttributeValue{
			store.AttrPK: &types.AttributeValueMemberS{Value: pk},
			store.AttrSK: &types.AttributeValueMemberS{Value: sk},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("DeleteItem operation failed: %w", err)
	}

	if len(result.Attributes) == 0 {
		return store.ErrNotFound
	}
	if out != nil {
		if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}
	return nil
}

// Query implements the Store interface
func (db *DynamoDBStore) Query(ctx context.Context, input *store.QueryInput) (*store.QueryOutput, error) {
	if !db.initialized {
		return nil, errors.New("store not initialized")
	}
	if input == nil || input.PartitionKey == "" {
		return nil, errors.New("query requires a partition key")
	}

	pkAttr, skAttr := store.IndexKeyAttrs(input.Index)

	keyCondition := "#pk = :pk"
	exprNames := map[string]string{"#pk": pkAttr}
	exprValues := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: input.PartitionKey},
	}
	if input.SortKeyPrefix != "" {
		keyCondition += " AND begins_with(#sk, :sk)"
		exprNames["#sk"] = skAttr
		exprValues[":sk"] = &types.AttributeValueMemberS{Value: input.SortKeyPrefix}
	}

	queryInput := &dynamodb.QueryInput{
		TableName:                 aws.String(db.tableName),
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ScanIndexForward:          aws.Bool(input.ScanIndexForward),
	}
	if input.Index != "" {
		queryInput.IndexName = aws.String(input.Index)
	} else {
		queryInput.ConsistentRead = aws.Bool(true)
	}
	if input.Limit > 0 {
		queryInput.Limit = aws.Int32(input.Limit)
	}
	if len(input.ExclusiveStartKey) > 0 {
		startKey := make(map[string]types.AttributeValue, len(input.ExclusiveStartKey))
		for name, value := range input.ExclusiveStartKey {
			startKey[name] = &types.AttributeValueMemberS{Value: value}
		}
		queryInput.ExclusiveStartKey = startKey
	}

	result, err := db.client.Query(ctx, queryInput)
	if err != nil {
		return nil, fmt.Errorf("Query operation failed: %w", err)
	}

	output := &store.QueryOutput{Items: result.Items}
	if len(result.LastEvaluatedKey) > 0 {
		output.LastEvaluatedKey = make(map[string]string, len(result.LastEvaluatedKey))
		for name, value := range result.LastEvaluatedKey {
			if s, ok := value.(*types.AttributeValueMemberS); ok {
				output.LastEvaluatedKey[name] = s.Value
			}
		}
	}
	return output, nil
}

// TransactPut implements the Store interface
func (db *DynamoDBStore) TransactPut(ctx context.Context, items []store.TransactPutItem) error {
	if !db.initialized {
		return errors.New("store not initialized")
	}
	if len(items) == 0 {
		return nil
	}
	// DynamoDB TransactWriteItems limit is 25
	if len(items) > 25 {
		return fmt.Errorf("too many items for a single transact write (limit is 25)")
	}

	transactItems := make([]types.TransactWriteItem, 0, len(items))
	for _, put := range items {
		item, err := attributevalue.MarshalMap(put.Record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		p := &types.Put{
			TableName: aws.String(db.tableName),
			Item:      item,
		}
		if put.IfNotExists {
			p.ConditionExpression = aws.String("attribute_not_exists(" + store.AttrPK + ")")
		}
		transactItems = append(transactItems, types.TransactWriteItem{Put: p})
	}

	_, err := db.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var canceledErr *types.TransactionCanceledException
		if errors.As(err, &canceledErr) {
			for _, reason := range canceledErr.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return store.ErrConditionFailed
				}
			}
		}
		return fmt.Errorf("TransactWriteItems operation failed: %w", err)
	}
	return nil
}

// createTable creates the single table with its secondary indexes
func (db *DynamoDBStore) createTable(rcus, wcus int64) error {
	gsiThroughput := &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(rcus),
		WriteCapacityUnits: aws.Int64(wcus),
	}

	newIndex := func(name, pkAttr, skAttr string) types.GlobalSecondaryIndex {
		return types.GlobalSecondaryIndex{
			IndexName: aws.String(name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(pkAttr), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(skAttr), KeyType: types.KeyTypeRange},
			},
			Projection: &types.Projection{
				ProjectionType: types.ProjectionTypeAll,
			},
			ProvisionedThroughput: gsiThroughput,
		}
	}

	attrDef := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		}
	}

	createTableInput := &dynamodb.CreateTableInput{
		TableName: aws.String(db.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			attrDef(store.AttrPK),
			attrDef(store.AttrSK),
			attrDef(store.AttrGSI1PK),
			attrDef(store.AttrGSI1SK),
			attrDef(store.AttrGSI2PK),
			attrDef(store.AttrGSI2SK),
			attrDef(store.AttrGSI3PK),
			attrDef(store.AttrGSI3SK),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(store.AttrPK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(store.AttrSK), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			newIndex(store.IndexByProperty, store.AttrGSI1PK, store.AttrGSI1SK),
			newIndex(store.IndexByStatus, store.AttrGSI2PK, store.AttrGSI2SK),
			newIndex(store.IndexByType, store.AttrGSI3PK, store.AttrGSI3SK),
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(rcus),
			WriteCapacityUnits: aws.Int64(wcus),
		},
	}

	_, err := db.client.CreateTable(context.Background(), createTableInput)
	if err != nil {
		var alreadyExistsErr *types.ResourceInUseException
		if errors.As(err, &alreadyExistsErr) {
			// Table already exists, which is fine
			return nil
		}
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(db.client)
	err = waiter.Wait(context.Background(), &dynamodb.DescribeTableInput{
		TableName: aws.String(db.tableName),
	}, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to wait for table creation: %w", err)
	}

	return nil
}
