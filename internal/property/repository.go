package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store"
)

// Repository is the property record store: one record per property under
// PROPERTY#<id> / METADATA.
type Repository struct {
	store store.Store
}

// NewRepository creates a property repository backed by the given store
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Get loads a property by id.
func (r *Repository) Get(ctx context.Context, propertyID string) (*models.Property, error) {
	var p models.Property
	err := r.store.Get(ctx, store.PropertyPK(propertyID), store.PropertyMetadataSK, &p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("property", propertyID)
		}
		return nil, fmt.Errorf("failed to load property %s: %w", propertyID, err)
	}
	return &p, nil
}

// Create writes a new property record. The property id must be unoccupied.
func (r *Repository) Create(ctx context.Context, p *models.Property) error {
	p.SetKeys()
	err := r.store.Put(ctx, p, &store.WriteOptions{IfNotExists: true})
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return errs.Conflictf("property %s already exists", p.PropertyID)
		}
		return fmt.Errorf("failed to create property %s: %w", p.PropertyID, err)
	}
	return nil
}

// Patch applies a field-level update: only the named fields change,
// omitted fields are untouched. Returns the updated property.
func (r *Repository) Patch(ctx context.Context, propertyID string, fields map[string]interface{}) (*models.Property, error) {
	if len(fields) == 0 {
		return nil, errs.Validationf("no fields to update")
	}

	// A status change moves the record to another by-status partition.
	if status, ok := fields["status"]; ok {
		fields[store.AttrGSI2PK] = store.StatusPK(fmt.Sprintf("%v", status))
	}

	var p models.Property
	err := r.store.Update(ctx, store.PropertyPK(propertyID), store.PropertyMetadataSK, fields, &p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("property", propertyID)
		}
		return nil, fmt.Errorf("failed to patch property %s: %w", propertyID, err)
	}
	return &p, nil
}

// Delete removes a property record entirely, returning the old record.
func (r *Repository) Delete(ctx context.Context, propertyID string) (*models.Property, error) {
	var p models.Property
	err := r.store.Delete(ctx, store.PropertyPK(propertyID), store.PropertyMetadataSK, &p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("property", propertyID)
		}
		return nil, fmt.Errorf("failed to delete property %s: %w", propertyID, err)
	}
	return &p, nil
}

// ListByStatus returns properties in the given status, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, status models.PropertyStatus, limit int32) ([]*models.Property, error) {
	out, err := r.store.Query(ctx, &store.QueryInput{
		Index:            store.IndexByStatus,
		PartitionKey:     store.StatusPK(string(status)),
		SortKeyPrefix:    store.PropertyKeyPrefix,
		Limit:            limit,
		ScanIndexForward: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list properties by status %s: %w", status, err)
	}

	properties := make([]*models.Property, 0, len(out.Items))
	for _, item := range out.Items {
		var p models.Property
		if err := store.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal property: %w", err)
		}
		properties = append(properties, &p)
	}
	return properties, nil
}
