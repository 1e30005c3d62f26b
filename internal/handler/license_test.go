package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"license-validation-service/internal/auth"
	"license-validation-service/internal/database"
	"license-validation-service/internal/license"
	"license-validation-service/internal/middleware"
	"license-validation-service/internal/model"
	"license-validation-service/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func strPtr(s string) *string { return &s }

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	db := database.OpenTest()
	t.Cleanup(func() { database.CleanTest(db) })

	s := store.New(db)
	h := New(s, license.NewChecker(s), nil)
	gate := auth.NewGate(testAPIKey, "")

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/validate", h.HandleValidate)

	licenses := api.Group("/licenses")
	licenses.Use(middleware.APIKey(gate))
	licenses.Put("/", h.HandleLicenseUpsert)
	licenses.Get("/", h.HandleGetAllLicenses)
	licenses.Get("/:key", h.HandleGetLicense)
	licenses.Delete("/:key", h.HandleLicenseDeactivate)

	return app, s
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func seedLicense(t *testing.T, s *store.Store, rec *model.License) {
	t.Helper()
	_, err := s.Upsert(rec)
	require.NoError(t, err)
}

func TestHandleValidate(t *testing.T) {
	app, s := newTestApp(t)

	seedLicense(t, s, &model.License{
		Owner:            "u1",
		Key:              "LICENSE-1234-5678",
		SubscriptionDate: "2023-03-03",
		ExpirationDate:   strPtr("2099-12-31"),
		Active:           true,
	})
	seedLicense(t, s, &model.License{
		Owner:            "u2",
		Key:              "LICENSE-9876-5432",
		SubscriptionDate: "2020-01-01",
		ExpirationDate:   strPtr("2020-12-31"),
		Active:           true,
	})

	tests := []struct {
		name        string
		body        interface{}
		wantStatus  int
		wantValid   bool
		wantMessage string
	}{
		{
			name:        "valid license",
			body:        fiber.Map{"license": "LICENSE-1234-5678"},
			wantStatus:  http.StatusOK,
			wantValid:   true,
			wantMessage: "license valid",
		},
		{
			name:        "expired license",
			body:        fiber.Map{"license": "LICENSE-9876-5432"},
			wantStatus:  http.StatusOK,
			wantValid:   false,
			wantMessage: "license expired",
		},
		{
			name:        "unknown key",
			body:        fiber.Map{"license": "NO-SUCH-KEY"},
			wantStatus:  http.StatusOK,
			wantValid:   false,
			wantMessage: "license invalid or deactivated",
		},
		{
			name:        "missing key field",
			body:        fiber.Map{},
			wantStatus:  http.StatusBadRequest,
			wantValid:   false,
			wantMessage: "no license key supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest("POST", "/api/validate", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, tt.wantValid, body["valid"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestHandleValidateEchoesRecord(t *testing.T) {
	app, s := newTestApp(t)

	seedLicense(t, s, &model.License{
		Owner:            "u1",
		Key:              "LICENSE-1234-5678",
		SubscriptionDate: "2023-03-03",
		ExpirationDate:   strPtr("2099-12-31"),
		Active:           true,
	})

	resp, err := app.Test(jsonRequest("POST", "/api/validate", fiber.Map{"license": "LICENSE-1234-5678"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "u1", body["owner"])
	assert.Equal(t, "2023-03-03", body["subscription_date"])
	assert.Equal(t, "2099-12-31", body["expiration_date"])
}

func TestHandleValidateBadStoredDate(t *testing.T) {
	app, s := newTestApp(t)

	// Malformed data written behind the API's back must surface as a
	// server fault, not as an invalid license.
	seedLicense(t, s, &model.License{
		Owner:            "u1",
		Key:              "LICENSE-BAD-DATE",
		SubscriptionDate: "2023-03-03",
		ExpirationDate:   strPtr("not-a-date"),
		Active:           true,
	})

	resp, err := app.Test(jsonRequest("POST", "/api/validate", fiber.Map{"license": "LICENSE-BAD-DATE"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "date format error", body["error"])
}

func TestHandleLicenseUpsert(t *testing.T) {
	app, _ := newTestApp(t)

	input := fiber.Map{
		"owner":             "u1",
		"key":               "LICENSE-1234-5678",
		"subscription_date": "2023-03-03",
		"expiration_date":   "2023-12-31",
		"active":            true,
	}

	req := jsonRequest("PUT", "/api/licenses", input)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["created"])

	// Same key again is an update, not a duplicate.
	input["owner"] = "u2"
	req = jsonRequest("PUT", "/api/licenses", input)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["created"])
}

func TestHandleLicenseUpsertValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name  string
		input fiber.Map
	}{
		{
			name: "missing owner",
			input: fiber.Map{
				"key":               "LICENSE-1234-5678",
				"subscription_date": "2023-03-03",
			},
		},
		{
			name: "missing key",
			input: fiber.Map{
				"owner":             "u1",
				"subscription_date": "2023-03-03",
			},
		},
		{
			name: "bad subscription date",
			input: fiber.Map{
				"owner":             "u1",
				"key":               "LICENSE-1234-5678",
				"subscription_date": "03/03/2023",
			},
		},
		{
			name: "bad expiration date",
			input: fiber.Map{
				"owner":             "u1",
				"key":               "LICENSE-1234-5678",
				"subscription_date": "2023-03-03",
				"expiration_date":   "soon",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest("PUT", "/api/licenses", tt.input)
			req.Header.Set("X-API-Key", testAPIKey)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleLicenseDeactivate(t *testing.T) {
	app, s := newTestApp(t)

	seedLicense(t, s, &model.License{
		Owner:            "u1",
		Key:              "LICENSE-1234-5678",
		SubscriptionDate: "2023-03-03",
		ExpirationDate:   strPtr("2099-12-31"),
		Active:           true,
	})

	req := jsonRequest("DELETE", "/api/licenses/LICENSE-1234-5678", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Validation now reports the license as invalid.
	resp, err = app.Test(jsonRequest("POST", "/api/validate", fiber.Map{"license": "LICENSE-1234-5678"}))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "license invalid or deactivated", body["message"])

	// Unknown key is a 404 for the admin caller.
	req = jsonRequest("DELETE", "/api/licenses/NO-SUCH-KEY", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleGetAllLicenses(t *testing.T) {
	app, s := newTestApp(t)

	seedLicense(t, s, &model.License{
		Owner:            "u1",
		Key:              "KEY-A",
		SubscriptionDate: "2023-01-01",
		Active:           true,
	})
	seedLicense(t, s, &model.License{
		Owner:            "u2",
		Key:              "KEY-B",
		SubscriptionDate: "2023-02-01",
		Active:           false,
	})

	req := jsonRequest("GET", "/api/licenses", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	licensesField, ok := body["licenses"].([]interface{})
	require.True(t, ok)
	require.Len(t, licensesField, 2)

	first := licensesField[0].(map[string]interface{})
	assert.Equal(t, "KEY-A", first["key"])
}

func TestHandleGetLicense(t *testing.T) {
	app, s := newTestApp(t)

	seedLicense(t, s, &model.License{
		Owner:            "u1",
		Key:              "LICENSE-1234-5678",
		SubscriptionDate: "2023-03-03",
		Active:           true,
	})

	req := jsonRequest("GET", "/api/licenses/LICENSE-1234-5678", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", decodeBody(t, resp)["owner"])

	req = jsonRequest("GET", "/api/licenses/NO-SUCH-KEY", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutesRejectBadKey(t *testing.T) {
	app, s := newTestApp(t)

	input := fiber.Map{
		"owner":             "u1",
		"key":               "LICENSE-1234-5678",
		"subscription_date": "2023-03-03",
		"active":            true,
	}

	requests := []*http.Request{
		jsonRequest("PUT", "/api/licenses", input),
		jsonRequest("GET", "/api/licenses", nil),
		jsonRequest("GET", "/api/licenses/LICENSE-1234-5678", nil),
		jsonRequest("DELETE", "/api/licenses/LICENSE-1234-5678", nil),
	}

	for _, req := range requests {
		req.Header.Set("X-API-Key", "wrong-secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", req.Method, req.URL.Path)
	}

	// The rejected upsert must not have touched the store.
	all, err := s.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}
