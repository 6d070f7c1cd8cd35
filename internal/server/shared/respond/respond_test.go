package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]any{"success": true})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, "missing_session", "session header required")

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrorBody{Error: true, Code: "missing_session", Message: "session header required"}, body)
	assert.NotContains(t, rec.Body.String(), "stage")
}

func TestStageError(t *testing.T) {
	rec := httptest.NewRecorder()
	StageError(rec, http.StatusBadGateway, "storage_error", "upload failed", "uploading")

	assert.JSONEq(t, `{"error":true,"code":"storage_error","message":"upload failed","stage":"uploading"}`, rec.Body.String())
}
