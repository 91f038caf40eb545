package property

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
)

// legalTargets is the set of statuses a direct transition may request.
var legalTargets = map[models.PropertyStatus]bool{
	models.StatusInProgress:     true,
	models.StatusCommercialized: true,
	models.StatusFunded:         true,
}

// statusOrder ranks statuses along the publish lifecycle. ACTIVE is a
// legacy alias for an investable listing and ranks with COMMERCIALIZED.
var statusOrder = map[models.PropertyStatus]int{
	models.StatusInProgress:     1,
	models.StatusCommercialized: 2,
	models.StatusActive:         2,
	models.StatusFunded:         3,
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another. Transitions only move forward; a same-rank
// transition is permitted so retries are idempotent.
func CanTransition(from, to models.PropertyStatus) bool {
	return statusOrder[to] >= statusOrder[from]
}

// SetStatus applies a direct status transition to a property. The caller
// must own the property or be an administrator, the target status must be
// one of IN_PROGRESS, COMMERCIALIZED or FUNDED, and the transition must
// move forward along the lifecycle.
func (e *Engine) SetStatus(ctx context.Context, caller auth.Identity, propertyID string, status models.PropertyStatus) (*models.Property, error) {
	if propertyID == "" {
		return nil, errs.MissingFields("propertyId")
	}
	if !legalTargets[status] {
		return nil, errs.Validationf("invalid status %q: must be one of IN_PROGRESS, COMMERCIALIZED, FUNDED", status)
	}

	p, err := e.properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(caller.UserID) && !caller.IsAdmin() {
		return nil, errs.Forbiddenf("caller does not own property %s", propertyID)
	}

	if p.Status == status {
		return p, nil
	}
	if !CanTransition(p.Status, status) {
		return nil, errs.Conflictf("property %s cannot move from %s to %s", propertyID, p.Status, status)
	}

	updated, err := e.properties.Patch(ctx, propertyID, map[string]interface{}{
		"status":    status,
		"updatedAt": time.Now().UTC(),
		"updatedBy": caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("property status changed",
		zap.String("propertyId", propertyID),
		zap.String("from", string(p.Status)),
		zap.String("to", string(status)))

	return updated, nil
}

// PatchFields applies a direct field-level patch on behalf of the owner
// or an administrator. Identity and audit fields are not patchable.
func (e *Engine) PatchFields(ctx context.Context, caller auth.Identity, propertyID string, fields map[string]interface{}) (*models.Property, error) {
	if propertyID == "" {
		return nil, errs.MissingFields("propertyId")
	}
	if len(fields) == 0 {
		return nil, errs.Validationf("no fields to update")
	}
	for _, name := range []string{"propertyId", "createdAt", "createdBy", "createdByUserId", "PK", "SK"} {
		if _, ok := fields[name]; ok {
			return nil, errs.Validationf("field %q cannot be patched", name)
		}
	}

	p, err := e.properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(caller.UserID) && !caller.IsAdmin() {
		return nil, errs.Forbiddenf("caller does not own property %s", propertyID)
	}

	fields["updatedAt"] = time.Now().UTC()
	fields["updatedBy"] = caller.UserID
	return e.properties.Patch(ctx, propertyID, fields)
}

// Remove deletes a property record on behalf of the owner or an
// administrator, returning the removed record.
func (e *Engine) Remove(ctx context.Context, caller auth.Identity, propertyID string) (*models.Property, error) {
	p, err := e.properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(caller.UserID) && !caller.IsAdmin() {
		return nil, errs.Forbiddenf("caller does not own property %s", propertyID)
	}
	return e.properties.Delete(ctx, propertyID)
}
