package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name   string  `json:"name" validate:"required"`
	Status string  `json:"status" validate:"required,oneof=Active Inactive"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

func TestValidatorStructUsesJSONNames(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Status: "Retired"})

	issues := v.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, ValidationIssue{Field: "amount", Reason: "must be greater than 0"}, issues[0])
	assert.Equal(t, ValidationIssue{Field: "name", Reason: "is required"}, issues[1])
	assert.Equal(t, ValidationIssue{Field: "status", Reason: "must be one of: Active, Inactive"}, issues[2])
}

func TestValidatorDates(t *testing.T) {
	v := NewValidator()
	assert.Nil(t, v.OptionalDate("endDate", " "))
	start := v.OptionalDate("startDate", "2024-02-01")
	require.NotNil(t, start)
	end, ok := v.Date("endDate", "2024-01-01")
	require.True(t, ok)
	v.DateOrder("startDate", *start, "endDate", end)
	_, ok = v.Date("receivedDate", "01/02/2024")
	assert.False(t, ok)

	assert.Len(t, v.Issues(), 3)
}

func TestParseDateNormalisesToUTCMidnight(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	got, err := ParseDate("2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseDate("2024-03-09T18:30:00+05:30")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseDate("09-03-2024")
	assert.Error(t, err)
}

func TestRejectWritesEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("firstName", "  ", "is required")

	rec := httptest.NewRecorder()
	require.True(t, v.Reject(rec, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, []ValidationIssue{{Field: "firstName", Reason: "is required"}}, body.Error.Details.Fields)
}
