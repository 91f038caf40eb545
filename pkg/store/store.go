package store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotFound is returned when no record exists at the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrConditionFailed is returned when a conditional write is rejected,
	// e.g. a create against an already-occupied key.
	ErrConditionFailed = errors.New("conditional write failed")
)

// WriteOptions represents options for write operations
type WriteOptions struct {
	// IfNotExists rejects the write when a record already occupies the key.
	IfNotExists bool
}

// QueryInput represents a single-partition query against the table or one
// of its secondary indexes.
type QueryInput struct {
	// Index is empty for the base table, or one of the IndexBy* names.
	Index string

	// PartitionKey is the full partition key value, e.g. "USER#42".
	PartitionKey string

	// SortKeyPrefix restricts results to sort keys with this prefix.
	// Empty matches the whole partition.
	SortKeyPrefix string

	Limit            int32
	ScanIndexForward bool

	// ExclusiveStartKey resumes a paged query. The value returned in
	// QueryOutput.LastEvaluatedKey is passed back verbatim.
	ExclusiveStartKey map[string]string
}

// QueryOutput carries raw items plus the cursor for the next page, if any.
type QueryOutput struct {
	Items            []map[string]types.AttributeValue
	LastEvaluatedKey map[string]string
}

// TransactPutItem is one put inside an atomic multi-item write.
type TransactPutItem struct {
	Record      interface{}
	IfNotExists bool
}

// Store defines the standard interface that all storage implementations
// must satisfy. Records are plain structs marshaled via attributevalue;
// every record carries its own PK/SK (and index key) attributes.
type Store interface {
	Initialize(ctx context.Context) error
	Close() error

	// Get loads the record at (pk, sk) into out. Returns ErrNotFound when
	// the key is empty.
	Get(ctx context.Context, pk, sk string, out interface{}) error

	// Put writes a full record, optionally guarded by IfNotExists.
	Put(ctx context.Context, record interface{}, options *WriteOptions) error

	// Update applies a field-level patch to the record at (pk, sk): only
	// the named fields change, omitted fields are untouched. The updated
	// record is loaded into out when out is non-nil. Returns ErrNotFound
	// when no record exists at the key.
	Update(ctx context.Context, pk, sk string, fields map[string]interface{}, out interface{}) error

	// Delete removes the record at (pk, sk), loading the old record into
	// out when out is non-nil. Returns ErrNotFound when absent.
	Delete(ctx context.Context, pk, sk string, out interface{}) error

	// Query runs a single-partition query.
	Query(ctx context.Context, input *QueryInput) (*QueryOutput, error)

	// TransactPut writes all items atomically: either every put succeeds
	// or none is applied.
	TransactPut(ctx context.Context, items []TransactPutItem) error
}

// Factory creates and configures a specific storage implementation
type Factory interface {
	CreateStore(config map[string]interface{}) (Store, error)
}

// Unmarshal decodes a raw item into out.
func Unmarshal(item map[string]types.AttributeValue, out interface{}) error {
	return attributevalue.UnmarshalMap(item, out)
}

// Marshal encodes a record into a raw item.
func Marshal(record interface{}) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(record)
}
