package property

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/countries"
	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/pkg/models"
)

// Step is one named, independently submittable portion of a property's
// draft data.
type Step string

const (
	StepBasic      Step = "basic"
	StepLocation   Step = "location"
	StepDetails    Step = "details"
	StepPricing    Step = "pricing"
	StepPhotos     Step = "photos"
	StepTimeline   Step = "timeline"
	StepCalculator Step = "calculator"
	StepContact    Step = "contact"
)

// ParseStep validates a step name.
func ParseStep(name string) (Step, error) {
	switch s := Step(name); s {
	case StepBasic, StepLocation, StepDetails, StepPricing,
		StepPhotos, StepTimeline, StepCalculator, StepContact:
		return s, nil
	}
	return "", errs.Validationf("unknown step %q", name)
}

// Submission is one step of draft data submitted against a property. An
// empty PropertyID creates a new property, which only the basic step may
// do.
type Submission struct {
	Step       string          `json:"step"`
	PropertyID string          `json:"propertyId,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Result is the outcome of a step application.
type Result struct {
	PropertyID    string                `json:"propertyId"`
	Step          Step                  `json:"step"`
	Status        models.PropertyStatus `json:"status"`
	IsNewProperty bool                  `json:"isNewProperty"`
	Property      *models.Property      `json:"property"`
}

// Engine applies workflow steps to properties. Each step is accepted
// independently and is safe to retry: reapplying a step writes the same
// fields again.
type Engine struct {
	properties *Repository
	log        *zap.Logger
}

// NewEngine creates a workflow engine over the given property repository
func NewEngine(properties *Repository, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{properties: properties, log: log}
}

// Get loads a property for display.
func (e *Engine) Get(ctx context.Context, propertyID string) (*models.Property, error) {
	return e.properties.Get(ctx, propertyID)
}

// ApplyStep applies one named step of data to a property, creating the
// property when no id is supplied.
func (e *Engine) ApplyStep(ctx context.Context, caller auth.Identity, sub Submission) (*Result, error) {
	step, err := ParseStep(sub.Step)
	if err != nil {
		return nil, err
	}
	if caller.UserID == "" {
		return nil, errs.Forbiddenf("caller is not authenticated")
	}

	if sub.PropertyID == "" {
		return e.createFromBasic(ctx, caller, step, sub.Data)
	}

	p, err := e.properties.Get(ctx, sub.PropertyID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(caller.UserID) && !caller.IsAdmin() {
		return nil, errs.Forbiddenf("caller does not own property %s", sub.PropertyID)
	}

	fields, err := stepFields(step, sub.Data)
	if err != nil {
		return nil, err
	}

	// Every step keeps the draft in progress except contact, which
	// publishes the listing.
	status := models.StatusInProgress
	if step == StepContact {
		status = models.StatusCommercialized
	}
	fields["status"] = status
	fields["updatedAt"] = time.Now().UTC()
	fields["updatedBy"] = caller.UserID

	updated, err := e.properties.Patch(ctx, sub.PropertyID, fields)
	if err != nil {
		return nil, err
	}

	e.log.Info("applied workflow step",
		zap.String("propertyId", sub.PropertyID),
		zap.String("step", string(step)),
		zap.String("status", string(status)))

	return &Result{
		PropertyID:    sub.PropertyID,
		Step:          step,
		Status:        updated.Status,
		IsNewProperty: false,
		Property:      updated,
	}, nil
}

// createFromBasic mints a fresh property from a basic step submission.
func (e *Engine) createFromBasic(ctx context.Context, caller auth.Identity, step Step, data json.RawMessage) (*Result, error) {
	if step != StepBasic {
		return nil, errs.Validationf("step %q requires a propertyId; only the basic step may create a property", step)
	}

	var payload basicStep
	if err := decodeStep(data, &payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Property{
		PropertyID:      uuid.NewString(),
		Status:          models.StatusInProgress,
		CreatedBy:       caller.UserID,
		CreatedByUserID: caller.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
		UpdatedBy:       caller.UserID,
	}
	if payload.Title != nil {
		p.Title = *payload.Title
	}
	if payload.Description != nil {
		p.Description = *payload.Description
	}
	if payload.PropertyType != nil {
		p.PropertyType = *payload.PropertyType
	}

	if err := e.properties.Create(ctx, p); err != nil {
		return nil, err
	}

	e.log.Info("created property from basic step",
		zap.String("propertyId", p.PropertyID),
		zap.String("userId", caller.UserID))

	return &Result{
		PropertyID:    p.PropertyID,
		Step:          step,
		Status:        p.Status,
		IsNewProperty: true,
		Property:      p,
	}, nil
}

type basicStep struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	PropertyType *string `json:"propertyType"`
}

type locationStep struct {
	Country   *string  `json:"country"`
	State     *string  `json:"state"`
	City      *string  `json:"city"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type detailsStep struct {
	Surface     *float64 `json:"surface"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	YearBuilt   *int     `json:"yearBuilt"`
	EnergyClass *string  `json:"energyClass"`
}

type photosStep struct {
	Photos []string `json:"photos"`
}

type timelineEntry struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func decodeStep(data json.RawMessage, out interface{}) error {
	if len(data) == 0 {
		return errs.Validationf("step data is required")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.Validationf("malformed step data: %v", err)
	}
	return nil
}

// stepFields maps a step payload onto the property fields it touches.
func stepFields(step Step, data json.RawMessage) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	switch step {
	case StepBasic:
		var payload basicStep
		if err := decodeStep(data, &payload); err != nil {
			return nil, err
		}
		setIfPresent(fields, "title", payload.Title)
		setIfPresent(fields, "description", payload.Description)
		setIfPresent(fields, "propertyType", payload.PropertyType)

	case StepLocation:
		var payload locationStep
		if err := decodeStep(data, &payload); err != nil {
			return nil, err
		}
		setIfPresent(fields, "state", payload.State)
		setIfPresent(fields, "city", payload.City)
		setIfPresent(fields, "address", payload.Address)
		setIfPresent(fields, "latitude", payload.Latitude)
		setIfPresent(fields, "longitude", payload.Longitude)
		if payload.Country != nil {
			fields["country"] = *payload.Country
			if c, ok := countries.Lookup(*payload.Country); ok {
				fields["countryCode"] = c.Code
				fields["currency"] = c.Currency
			}
		}

	case StepDetails:
		var payload detailsStep
		if err := decodeStep(data, &payload); err != nil {
			return nil, err
		}
		setIfPresent(fields, "surface", payload.Surface)
		setIfPresent(fields, "bedrooms", payload.Bedrooms)
		setIfPresent(fields, "bathrooms", payload.Bathrooms)
		setIfPresent(fields, "yearBuilt", payload.YearBuilt)
		setIfPresent(fields, "energyClass", payload.EnergyClass)

	case StepPhotos:
		var payload photosStep
		if err := decodeStep(data, &payload); err != nil {
			return nil, err
		}
		if payload.Photos == nil {
			return nil, errs.Validationf("photos step requires a photos list")
		}
		fields["photos"] = payload.Photos

	case StepTimeline:
		var entries []timelineEntry
		if err := decodeStep(data, &entries); err != nil {
			return nil, err
		}
		events, err := normalizeTimeline(entries)
		if err != nil {
			return nil, err
		}
		fields["timelineData"] = events

	case StepPricing, StepCalculator, StepContact:
		// The entire payload is stored verbatim under the step's name.
		var doc map[string]interface{}
		if err := decodeStep(data, &doc); err != nil {
			return nil, err
		}
		fields[string(step)] = doc
	}

	return fields, nil
}

func setIfPresent(fields map[string]interface{}, name string, value interface{}) {
	switch v := value.(type) {
	case *string:
		if v != nil {
			fields[name] = *v
		}
	case *float64:
		if v != nil {
			fields[name] = *v
		}
	case *int:
		if v != nil {
			fields[name] = *v
		}
	}
}

var timelineColors = map[string]string{
	"completed": "#10B981",
	"pending":   "#F59E0B",
	"projected": "#6B7280",
}

// normalizeTimeline validates each entry's status, derives the display
// color and a human-readable date, and flags the final entry.
func normalizeTimeline(entries []timelineEntry) ([]models.TimelineEvent, error) {
	events := make([]models.TimelineEvent, 0, len(entries))
	for i, entry := range entries {
		color, ok := timelineColors[entry.Status]
		if !ok {
			return nil, errs.Validationf("timeline entry %d has invalid status %q", i, entry.Status)
		}
		events = append(events, models.TimelineEvent{
			Date:        entry.Date,
			Title:       entry.Title,
			Description: entry.Description,
			Status:      entry.Status,
			Color:       color,
			DisplayDate: displayDate(entry.Date),
			LastItem:    i == len(entries)-1,
		})
	}
	return events, nil
}

// displayDate renders an ISO date human-readably, falling back to the raw
// value when it cannot be parsed.
func displayDate(iso string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return iso
}
