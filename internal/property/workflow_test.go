package property

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store/memory"
)

var (
	owner    = auth.Identity{UserID: "user-1"}
	stranger = auth.Identity{UserID: "user-2"}
	admin    = auth.Identity{UserID: "admin-1", Groups: []string{auth.AdminGroup}}
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(NewRepository(memory.NewMemoryStore()), nil)
}

func applyStep(t *testing.T, e *Engine, caller auth.Identity, step, propertyID, data string) *Result {
	t.Helper()
	result, err := e.ApplyStep(context.Background(), caller, Submission{
		Step:       step,
		PropertyID: propertyID,
		Data:       json.RawMessage(data),
	})
	require.NoError(t, err)
	return result
}

func createProperty(t *testing.T, e *Engine) string {
	t.Helper()
	result := applyStep(t, e, owner, "basic", "", `{"title":"Villa Aurora","description":"Sea view","propertyType":"villa"}`)
	return result.PropertyID
}

func TestBasicStepCreatesProperty(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)

	result := applyStep(t, e, owner, "basic", "", `{"title":"Villa Aurora","propertyType":"villa"}`)

	assert.True(result.IsNewProperty)
	assert.NotEmpty(result.PropertyID)
	assert.Equal(models.StatusInProgress, result.Status)
	assert.Equal("Villa Aurora", result.Property.Title)
	assert.Equal("villa", result.Property.PropertyType)
	assert.Equal(owner.UserID, result.Property.CreatedByUserID)

	// A second basic submission without an id mints a distinct property.
	again := applyStep(t, e, owner, "basic", "", `{"title":"Loft Nine"}`)
	assert.NotEqual(result.PropertyID, again.PropertyID)
}

func TestNonBasicStepRequiresPropertyID(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)

	_, err := e.ApplyStep(context.Background(), owner, Submission{
		Step: "location",
		Data: json.RawMessage(`{"city":"Lisbon"}`),
	})
	assert.True(errs.IsValidation(err))
}

func TestUnknownStepRejected(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)

	_, err := e.ApplyStep(context.Background(), owner, Submission{
		Step: "bogus",
		Data: json.RawMessage(`{}`),
	})
	assert.True(errs.IsValidation(err))
}

func TestStepOnUnknownPropertyNotFound(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)

	_, err := e.ApplyStep(context.Background(), owner, Submission{
		Step:       "details",
		PropertyID: "missing",
		Data:       json.RawMessage(`{"bedrooms":3}`),
	})
	assert.True(errs.IsNotFound(err))
}

func TestStepByNonOwnerForbidden(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	_, err := e.ApplyStep(context.Background(), stranger, Submission{
		Step:       "basic",
		PropertyID: id,
		Data:       json.RawMessage(`{"title":"Hijacked"}`),
	})
	assert.True(errs.IsForbidden(err))

	// The rejected write must not have touched the record.
	p, err := e.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal("Villa Aurora", p.Title)
	assert.Equal(owner.UserID, p.UpdatedBy)
}

func TestStepByAdminAllowed(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	result := applyStep(t, e, admin, "basic", id, `{"description":"Updated by ops"}`)
	assert.Equal("Updated by ops", result.Property.Description)
	assert.Equal(admin.UserID, result.Property.UpdatedBy)
}

func TestLocationStepDerivesCountryCodeAndCurrency(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	result := applyStep(t, e, owner, "location", id,
		`{"country":"Portugal","city":"Lisbon","address":"Rua Augusta 10","latitude":38.7,"longitude":-9.1}`)

	p := result.Property
	assert.Equal("Portugal", p.Country)
	assert.Equal("PT", p.CountryCode)
	assert.Equal("EUR", p.Currency)
	assert.Equal("Lisbon", p.City)
	assert.InDelta(38.7, p.Latitude, 0.001)
}

func TestLocationStepUnknownCountryKeepsName(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	result := applyStep(t, e, owner, "location", id, `{"country":"Atlantis"}`)
	assert.Equal("Atlantis", result.Property.Country)
	assert.Empty(result.Property.CountryCode)
}

func TestStepsOnlyTouchSubmittedFields(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	applyStep(t, e, owner, "details", id, `{"surface":120.5,"bedrooms":3,"bathrooms":2}`)
	result := applyStep(t, e, owner, "details", id, `{"yearBuilt":1998}`)

	p := result.Property
	assert.Equal(3, p.Bedrooms)
	assert.Equal(1998, p.YearBuilt)
	assert.InDelta(120.5, p.Surface, 0.001)
	// Fields from earlier steps survive later ones.
	assert.Equal("Villa Aurora", p.Title)
}

func TestPhotosStepRequiresList(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	_, err := e.ApplyStep(context.Background(), owner, Submission{
		Step:       "photos",
		PropertyID: id,
		Data:       json.RawMessage(`{}`),
	})
	assert.True(errs.IsValidation(err))

	result := applyStep(t, e, owner, "photos", id, `{"photos":["https://cdn/a.jpg","https://cdn/b.jpg"]}`)
	assert.Len(result.Property.Photos, 2)
}

func TestTimelineStepNormalizesEntries(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	result := applyStep(t, e, owner, "timeline", id, `[
		{"date":"2026-01-15","title":"Acquisition","status":"completed"},
		{"date":"2026-06-01","title":"Renovation","status":"pending"},
		{"date":"2027-01-01","title":"First payout","status":"projected"}
	]`)

	events := result.Property.TimelineData
	require.Len(t, events, 3)
	assert.Equal("#10B981", events[0].Color)
	assert.Equal("#F59E0B", events[1].Color)
	assert.Equal("#6B7280", events[2].Color)
	assert.Equal("Jan 15, 2026", events[0].DisplayDate)
	assert.False(events[0].LastItem)
	assert.False(events[1].LastItem)
	assert.True(events[2].LastItem)
}

func TestTimelineStepRejectsInvalidStatus(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	_, err := e.ApplyStep(context.Background(), owner, Submission{
		Step:       "timeline",
		PropertyID: id,
		Data:       json.RawMessage(`[{"date":"2026-01-15","status":"done"}]`),
	})
	assert.True(errs.IsValidation(err))
}

func TestContactStepCommercializes(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	result := applyStep(t, e, owner, "contact", id, `{"name":"Ana","email":"ana@example.com"}`)
	assert.Equal(models.StatusCommercialized, result.Status)
	assert.Equal("ana@example.com", result.Property.Contact["email"])

	// A later non-contact step pulls the listing back into progress.
	result = applyStep(t, e, owner, "pricing", id, `{"blockPrice":100}`)
	assert.Equal(models.StatusInProgress, result.Status)

	// Contact republishes regardless of the prior status.
	result = applyStep(t, e, owner, "contact", id, `{"name":"Ana"}`)
	assert.Equal(models.StatusCommercialized, result.Status)
}

func TestOpaqueStepsStoredVerbatim(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)
	id := createProperty(t, e)

	result := applyStep(t, e, owner, "calculator", id, `{"rate":7.5,"horizonYears":5}`)
	assert.InDelta(7.5, result.Property.Calculator["rate"].(float64), 0.001)

	result = applyStep(t, e, owner, "pricing", id, `{"blockPrice":100,"totalBlocks":5000}`)
	assert.InDelta(100.0, result.Property.Pricing["blockPrice"].(float64), 0.001)
}

func TestUnauthenticatedCallerForbidden(t *testing.T) {
	assert := assert.New(t)
	e := newTestEngine(t)

	_, err := e.ApplyStep(context.Background(), auth.Identity{}, Submission{
		Step: "basic",
		Data: json.RawMessage(`{"title":"x"}`),
	})
	assert.True(errs.IsForbidden(err))
}
