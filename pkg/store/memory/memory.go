package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/brickvest/brickvest/pkg/store"
)

// MemoryStore is an in-memory implementation of the Store interface. It
// keeps items as marshaled attribute maps so that records round-trip
// exactly as they would through DynamoDB. Used by unit tests and local
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

// Initialize implements the Store interface
func (m *MemoryStore) Initialize(ctx context.Context) error { return nil }

// Close implements the Store interface
func (m *MemoryStore) Close() error { return nil }

func itemKey(pk, sk string) string {
	return pk + "\x00" + sk
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if av, ok := item[name].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}

// Get implements the Store interface
func (m *MemoryStore) Get(ctx context.Context, pk, sk string, out interface{}) error {
	m.mu.RLock()
	item, ok := m.items[itemKey(pk, sk)]
	m.mu.RUnlock()
	if !ok {
		return store.ErrNotFound
	}
	return attributevalue.UnmarshalMap(item, out)
}

// Put implements the Store interface
func (m *MemoryStore) Put(ctx context.Context, record interface{}, options *store.WriteOptions) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return err
	}
	pk := stringAttr(item, store.AttrPK)
	sk := stringAttr(item, store.AttrSK)
	if pk == "" || sk == "" {
		return errors.New("record is missing key attributes")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey(pk, sk)
	if options != nil && options.IfNotExists {
		if _, exists := m.items[key]; exists {
			return store.ErrConditionFailed
		}
	}
	m.items[key] = item
	return nil
}

// Update implements the Store interface
func (m *MemoryStore) Update(ctx context.Context, pk, sk string, fields map[string]interface{}, out interface{}) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	m.mu.Lock()
	key := itemKey(pk, sk)
	item, ok := m.items[key]
	if !ok {
		m.mu.Unlock()
		return store.ErrNotFound
	}
	updated := make(map[string]types.AttributeValue, len(item)+len(fields))
	for name, value := range item {
		updated[name] = value
	}
	for name, value := range fields {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		updated[name] = av
	}
	m.items[key] = updated
	m.mu.Unlock()

	if out != nil {
		return attributevalue.UnmarshalMap(updated, out)
	}
	return nil
}

// Delete implements the Store interface
func (m *MemoryStore) Delete(ctx context.Context, pk, sk string, out interface{}) error {
	m.mu.Lock()
	key := itemKey(pk, sk)
	item, ok := m.items[key]
	if ok {
		delete(m.items, key)
	}
	m.mu.Unlock()

	if !ok {
		return store.ErrNotFound
	}
	if out != nil {
		return attributevalue.UnmarshalMap(item, out)
	}
	return nil
}

// Query implements the Store interface
func (m *MemoryStore) Query(ctx context.Context, input *store.QueryInput) (*store.QueryOutput, error) {
	if input == nil || input.PartitionKey == "" {
		return nil, errors.New("query requires a partition key")
	}

	pkAttr, skAttr := store.IndexKeyAttrs(input.Index)

	m.mu.RLock()
	matched := make([]map[string]types.AttributeValue, 0)
	for _, item := range m.items {
		if stringAttr(item, pkAttr) != input.PartitionKey {
			continue
		}
		if input.SortKeyPrefix != "" && !strings.HasPrefix(stringAttr(item, skAttr), input.SortKeyPrefix) {
			continue
		}
		matched = append(matched, item)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := stringAttr(matched[i], skAttr), stringAttr(matched[j], skAttr)
		if input.ScanIndexForward {
			return a < b
		}
		return a > b
	})

	// Resume strictly after the cursor item.
	if len(input.ExclusiveStartKey) > 0 {
		startPK := input.ExclusiveStartKey[store.AttrPK]
		startSK := input.ExclusiveStartKey[store.AttrSK]
		from := 0
		for i, item := range matched {
			if stringAttr(item, store.AttrPK) == startPK && stringAttr(item, store.AttrSK) == startSK {
				from = i + 1
				break
			}
		}
		matched = matched[from:]
	}

	output := &store.QueryOutput{}
	if input.Limit > 0 && int(input.Limit) < len(matched) {
		output.Items = matched[:input.Limit]
		last := matched[input.Limit-1]
		output.LastEvaluatedKey = map[string]string{
			store.AttrPK: stringAttr(last, store.AttrPK),
			store.AttrSK: stringAttr(last, store.AttrSK),
		}
		if input.Index != "" {
			output.LastEvaluatedKey[pkAttr] = stringAttr(last, pkAttr)
			output.LastEvaluatedKey[skAttr] = stringAttr(last, skAttr)
		}
	} else {
		output.Items = matched
	}
	return output, nil
}

// TransactPut implements the Store interface
func (m *MemoryStore) TransactPut(ctx context.Context, items []store.TransactPutItem) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > 25 {
		return errors.New("too many items for a single transact write (limit is 25)")
	}

	type staged struct {
		key  string
		item map[string]types.AttributeValue
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stagedItems := make([]staged, 0, len(items))
	for _, put := range items {
		item, err := attributevalue.MarshalMap(put.Record)
		if err != nil {
			return err
		}
		pk := stringAttr(item, store.AttrPK)
		sk := stringAttr(item, store.AttrSK)
		if pk == "" || sk == "" {
			return errors.New("record is missing key attributes")
		}
		key := itemKey(pk, sk)
		if put.IfNotExists {
			if _, exists := m.items[key]; exists {
				return store.ErrConditionFailed
			}
		}
		stagedItems = append(stagedItems, staged{key: key, item: item})
	}

	// All conditions passed, apply every put.
	for _, s := range stagedItems {
		m.items[s.key] = s.item
	}
	return nil
}

// Len reports the number of stored items.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
