package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteJSON(rec, http.StatusTeapot, map[string]int{"n": 7})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body["n"])
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantError  string
	}{
		{
			name:       "bad request",
			write:      func(w http.ResponseWriter) { WriteBadRequest(w, "nope") },
			wantStatus: http.StatusBadRequest,
			wantError:  "nope",
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter) { WriteNotFoundError(w, "gone") },
			wantStatus: http.StatusNotFound,
			wantError:  "gone",
		},
		{
			name:       "conflict",
			write:      func(w http.ResponseWriter) { WriteConflict(w, "taken") },
			wantStatus: http.StatusConflict,
			wantError:  "taken",
		},
		{
			name:       "internal",
			write:      func(w http.ResponseWriter) { WriteInternalError(w, errors.New("boom")) },
			wantStatus: http.StatusInternalServerError,
			wantError:  "boom",
		},
		{
			name:       "unavailable",
			write:      func(w http.ResponseWriter) { WriteServiceUnavailable(w, "later") },
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
