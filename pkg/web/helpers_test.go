package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func Test_ParseID(t *testing.T) {
	testCases := []struct {
		name         string
		pathValue    string
		expectedID   int64
		expectedOK   bool
		expectedBody string
	}{
		{name: "Success - valid id", pathValue: "42", expectedID: 42, expectedOK: true},
		{name: "Error - not a number", pathValue: "abc", expectedOK: false, expectedBody: `{"error":"Invalid ID: abc"}`},
		{name: "Error - empty", pathValue: "", expectedOK: false, expectedBody: `{"error":"Invalid ID: "}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/productById/"+tc.pathValue, nil)
			req.SetPathValue("id", tc.pathValue)
			rr := httptest.NewRecorder()
			// when
			id, ok := ParseID(rr, req, discardLogger)
			// then
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedID, id)
			if !tc.expectedOK {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}

func Test_ParseOptionalFloat(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		expected   *float64
		expectedOK bool
	}{
		{name: "Absent", query: "", expected: nil, expectedOK: true},
		{name: "Empty value", query: "?minPrice=", expected: nil, expectedOK: true},
		{name: "Valid value", query: "?minPrice=10.5", expected: ptr(10.5), expectedOK: true},
		{name: "Invalid value", query: "?minPrice=ten", expectedOK: false},
		{name: "NaN rejected", query: "?minPrice=NaN", expectedOK: false},
		{name: "Inf rejected", query: "?minPrice=Inf", expectedOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/products/search"+tc.query, nil)
			rr := httptest.NewRecorder()

			value, ok := ParseOptionalFloat(rr, req, discardLogger, "minPrice")

			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expected, value)
			if !tc.expectedOK {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			}
		})
	}
}

func Test_RequiredString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products/search/keyword?keyword=", nil)
	rr := httptest.NewRecorder()
	value, ok := RequiredString(rr, req, discardLogger, "keyword")
	assert.True(t, ok)
	assert.Equal(t, "", value)

	req = httptest.NewRequest(http.MethodGet, "/products/search/keyword", nil)
	rr = httptest.NewRecorder()
	_, ok = RequiredString(rr, req, discardLogger, "keyword")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"keyword url parameter is required"}`, rr.Body.String())
}

func Test_OptionalString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products/search?name=lap", nil)
	require.NotNil(t, OptionalString(req, "name"))
	assert.Equal(t, "lap", *OptionalString(req, "name"))
	assert.Nil(t, OptionalString(req, "other"))
}

func Test_RespondValidationError(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	rr := httptest.NewRecorder()

	RespondValidationError(rr, discardLogger, err)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"validation_errors":{"Name":"failed on rule: required"}}`, rr.Body.String())
}

func Test_RespondJSON_NilPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondJSON(rr, discardLogger, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func ptr(f float64) *float64 {
	return &f
}
