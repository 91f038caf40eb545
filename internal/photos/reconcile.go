// Package photos reconciles a property's photo list against the binary
// object store: keep some, delete some, upload some, and write the final
// list back to the property record in one patch.
package photos

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/errs"
	"github.com/brickvest/brickvest/internal/property"
)

// Upload is one new photo to store.
type Upload struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data"`
}

// ItemResult reports the outcome of one delete or upload so callers can
// distinguish "all succeeded" from "n of m succeeded".
type ItemResult struct {
	Key    string `json:"key"`
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Service reconciles property photo lists.
type Service struct {
	objects    ObjectStore
	properties *property.Repository
	baseURL    string
	log        *zap.Logger
}

// NewService creates a photo reconciliation service. baseURL is the
// public prefix of the object store, used to map photo URLs back to keys.
func NewService(objects ObjectStore, properties *property.Repository, baseURL string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{objects: objects, properties: properties, baseURL: baseURL, log: log}
}

// keyPrefix is the object-key namespace of one property's photos.
func keyPrefix(propertyID string) string {
	return "properties/" + propertyID + "/"
}

// objectKey maps a photo URL back to its object key.
func (s *Service) objectKey(photoURL string) string {
	if s.baseURL != "" && strings.HasPrefix(photoURL, s.baseURL) {
		return strings.TrimPrefix(strings.TrimPrefix(photoURL, s.baseURL), "/")
	}
	u, err := url.Parse(photoURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// Replace reconciles a property's photos: URLs in keep stay, URLs in
// remove are deleted from the object store, uploads are stored fresh, and
// the final list (kept plus uploaded) is written back in one patch.
//
// Deletes outside the property's key namespace are rejected without
// touching the object store. Delete and upload failures are best-effort:
// each is reported in its item result and the reconciliation continues.
func (s *Service) Replace(ctx context.Context, caller auth.Identity, propertyID string, keep, remove []string, uploads []Upload) ([]string, []ItemResult, error) {
	if propertyID == "" {
		return nil, nil, errs.MissingFields("propertyId")
	}

	p, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if !p.Owns(caller.UserID) && !caller.IsAdmin() {
		return nil, nil, errs.Forbiddenf("caller does not own property %s", propertyID)
	}

	prefix := keyPrefix(propertyID)
	results := make([]ItemResult, 0, len(remove)+len(uploads))

	for _, photoURL := range remove {
		key := s.objectKey(photoURL)
		if key == "" || !strings.HasPrefix(key, prefix) {
			results = append(results, ItemResult{
				Key:    key,
				Action: "delete",
				OK:     false,
				Error:  "photo is outside the property namespace",
			})
			continue
		}
		if err := s.objects.Delete(ctx, key); err != nil {
			s.log.Warn("failed to delete photo",
				zap.String("propertyId", propertyID),
				zap.String("key", key),
				zap.Error(err))
			results = append(results, ItemResult{Key: key, Action: "delete", OK: false, Error: err.Error()})
			continue
		}
		results = append(results, ItemResult{Key: key, Action: "delete", OK: true})
	}

	final := make([]string, 0, len(keep)+len(uploads))
	final = append(final, keep...)

	for _, upload := range uploads {
		key := prefix + uuid.NewString() + strings.ToLower(path.Ext(upload.FileName))
		photoURL, err := s.objects.Put(ctx, key, upload.Data, upload.ContentType)
		if err != nil {
			s.log.Warn("failed to upload photo",
				zap.String("propertyId", propertyID),
				zap.String("key", key),
				zap.Error(err))
			results = append(results, ItemResult{Key: key, Action: "upload", OK: false, Error: err.Error()})
			continue
		}
		results = append(results, ItemResult{Key: key, Action: "upload", OK: true, URL: photoURL})
		final = append(final, photoURL)
	}

	_, err = s.properties.Patch(ctx, propertyID, map[string]interface{}{
		"photos":    final,
		"updatedAt": time.Now().UTC(),
		"updatedBy": caller.UserID,
	})
	if err != nil {
		return nil, results, err
	}
	return final, results, nil
}
