package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/invest"
	"github.com/brickvest/brickvest/internal/ledger"
	"github.com/brickvest/brickvest/internal/photos"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/models"
	"github.com/brickvest/brickvest/pkg/store/memory"
)

const testSecret = "test-signing-secret"

type apiFixture struct {
	store      *memory.MemoryStore
	properties *property.Repository
	server     *httptest.Server
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	m := memory.NewMemoryStore()
	properties := property.NewRepository(m)
	engine := property.NewEngine(properties, nil)
	investSvc := invest.NewService(m, properties,
		ledger.NewInvestments(m, nil),
		ledger.NewTransactions(m, nil),
		nil, 50, nil)
	photoSvc := photos.NewService(nil, properties, "https://photos.example.com", nil)

	server := NewServer(engine, investSvc, photoSvc, auth.NewVerifier(testSecret), nil)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return &apiFixture{store: m, properties: properties, server: ts}
}

func token(t *testing.T, userID string, groups ...string) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": userID}
	if len(groups) > 0 {
		claims["groups"] = groups
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (f *apiFixture) request(t *testing.T, method, path, bearer, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := make(map[string]interface{})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (f *apiFixture) seedProperty(t *testing.T, id, ownerID string, status models.PropertyStatus) {
	t.Helper()
	p := &models.Property{
		PropertyID:      id,
		Title:           "Villa Aurora",
		Status:          status,
		Currency:        "EUR",
		CreatedByUserID: ownerID,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, f.properties.Create(context.Background(), p))
}

func TestHealthCheck(t *testing.T) {
	f := newAPIFixture(t)
	resp, _ := f.request(t, http.MethodGet, "/_hc", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplyStepRoundTrip(t *testing.T) {
	assert := assert.New(t)
	f := newAPIFixture(t)
	bearer := token(t, "user-1")

	resp, body := f.request(t, http.MethodPost, "/properties/steps", bearer,
		`{"step":"basic","data":{"title":"Villa Aurora","propertyType":"villa"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(true, data["isNewProperty"])
	assert.Equal(string(models.StatusInProgress), data["status"])
	propertyID := data["propertyId"].(string)
	require.NotEmpty(t, propertyID)

	resp, body = f.request(t, http.MethodPut, "/properties/steps", bearer,
		`{"step":"contact","propertyId":"`+propertyID+`","data":{"email":"ana@example.com"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	assert.Equal(string(models.StatusCommercialized), data["status"])

	resp, body = f.request(t, http.MethodGet, "/properties/"+propertyID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := body["data"].(map[string]interface{})
	assert.Equal("Villa Aurora", got["title"])
}

func TestAuthRequired(t *testing.T) {
	assert := assert.New(t)
	f := newAPIFixture(t)

	resp, _ := f.request(t, http.MethodPost, "/properties/steps", "",
		`{"step":"basic","data":{}}`)
	assert.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.request(t, http.MethodPost, "/properties/steps", "garbage",
		`{"step":"basic","data":{}}`)
	assert.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	assert := assert.New(t)
	f := newAPIFixture(t)
	f.seedProperty(t, "prop-1", "user-1", models.StatusFunded)
	bearer := token(t, "user-1")

	// Unknown property: 404.
	resp, body := f.request(t, http.MethodGet, "/properties/missing", "", "")
	assert.Equal(http.StatusNotFound, resp.StatusCode)
	assert.Contains(body["error"], "not found")

	// Unknown step: 400 with field details.
	resp, body = f.request(t, http.MethodPost, "/properties/steps", bearer,
		`{"step":"bogus","data":{}}`)
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(body["error"])

	// Backward status transition: 400 conflict.
	resp, _ = f.request(t, http.MethodPut, "/properties/prop-1/status", bearer,
		`{"status":"IN_PROGRESS"}`)
	assert.Equal(http.StatusBadRequest, resp.StatusCode)

	// Another user's property: 403.
	resp, _ = f.request(t, http.MethodDelete, "/properties/prop-1", token(t, "user-2"), "")
	assert.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestBuyAndPortfolio(t *testing.T) {
	assert := assert.New(t)
	f := newAPIFixture(t)
	f.seedProperty(t, "prop-1", "seller-1", models.StatusCommercialized)
	bearer := token(t, "user-1")

	resp, body := f.request(t, http.MethodPost, "/investments/buy", bearer,
		`{"propertyId":"prop-1","investment":1000,"blocks":10}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.InDelta(70.0, data["estimatedReturnYear"].(float64), 0.001)

	resp, body = f.request(t, http.MethodGet, "/portfolio", bearer, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(1000.0, body["totalInvested"].(float64), 0.001)
	assert.Len(body["properties"], 1)

	// Reading someone else's portfolio needs the admin group.
	resp, _ = f.request(t, http.MethodGet, "/portfolio?userId=user-1", token(t, "user-2"), "")
	assert.Equal(http.StatusForbidden, resp.StatusCode)

	resp, body = f.request(t, http.MethodGet, "/portfolio?userId=user-1", token(t, "ops-1", auth.AdminGroup), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(1000.0, body["totalInvested"].(float64), 0.001)
}

func TestBuyForAnotherUserForbidden(t *testing.T) {
	assert := assert.New(t)
	f := newAPIFixture(t)
	f.seedProperty(t, "prop-1", "seller-1", models.StatusCommercialized)

	resp, _ := f.request(t, http.MethodPost, "/investments/buy", token(t, "user-2"),
		`{"propertyId":"prop-1","userId":"user-1","investment":1000,"blocks":10}`)
	assert.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestPortfolioCursorToken(t *testing.T) {
	assert := assert.New(t)
	f := newAPIFixture(t)
	f.seedProperty(t, "prop-1", "seller-1", models.StatusCommercialized)
	bearer := token(t, "user-1")

	for i := 0; i < 3; i++ {
		resp, _ := f.request(t, http.MethodPost, "/investments/buy", bearer,
			`{"propertyId":"prop-1","investment":100,"blocks":1}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := f.request(t, http.MethodGet, "/portfolio?limit=2", bearer, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(body["transactions"], 2)
	next := body["nextCursor"].(string)
	require.NotEmpty(t, next)

	resp, body = f.request(t, http.MethodGet, "/portfolio?limit=2&cursor="+next, bearer, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(body["transactions"], 1)
	assert.Empty(body["nextCursor"])

	resp, _ = f.request(t, http.MethodGet, "/portfolio?cursor=%25bad", bearer, "")
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
}
