package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "gradebook/internal/errors"
	"gradebook/internal/shared/testutil"
)

type studentDTO struct {
	FullName string         `json:"full_name" validate:"required"`
	Class    string         `json:"class" validate:"required"`
	Grades   map[string]any `json:"grades"`
}

type uploadDTO struct {
	Filename string `json:"filename" validate:"required,filename"`
}

func newValidation(t *testing.T, max int64) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false), max)
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		dto        any
		wantFields []string
	}{
		{
			name: "valid student",
			dto: &studentDTO{FullName: "Иванов", Class: "5А", Grades: map[string]any{
				"Математика": 5.0, "Физика": "4", "Химия": "", "Биология": 3,
			}},
		},
		{
			name:       "missing identity",
			dto:        &studentDTO{Grades: map[string]any{}},
			wantFields: []string{"full_name", "class"},
		},
		{
			name: "grades are left to the roster",
			dto: &studentDTO{FullName: "Иванов", Class: "5А", Grades: map[string]any{
				"Математика": 6.0, "НетТакого": "пять",
			}},
		},
		{
			name: "long class label",
			dto:  &studentDTO{FullName: "Иванов", Class: strings.Repeat("А", 23)},
		},
		{
			name: "upload filename",
			dto:  &uploadDTO{Filename: "журнал..2024.csv"},
		},
		{
			name:       "upload filename with directory",
			dto:        &uploadDTO{Filename: "../journal.csv"},
			wantFields: []string{"filename"},
		},
		{
			name:       "upload filename with backslash",
			dto:        &uploadDTO{Filename: `C:\journal.csv`},
			wantFields: []string{"filename"},
		},
		{
			name:       "upload dot dot",
			dto:        &uploadDTO{Filename: ".."},
			wantFields: []string{"filename"},
		},
		{
			name:       "missing upload filename",
			dto:        &uploadDTO{},
			wantFields: []string{"filename"},
		},
	}

	v := newValidation(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.dto)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details := apiErr.Details.(apierrors.ValidationErrors)
			got := make([]string, 0, len(details.Errors))
			for _, e := range details.Errors {
				got = append(got, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	v := newValidation(t, 0)

	var dto studentDTO
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"full_name":"Петров","class":"10Б","grades":{"Физика":3}}`))
	require.NoError(t, v.DecodeJSON(req, &dto))
	assert.Equal(t, "Петров", dto.FullName)
	assert.Equal(t, 3.0, dto.Grades["Физика"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"full_name":`))
	var apiErr *apierrors.APIError
	require.ErrorAs(t, v.DecodeJSON(req, &dto), &apiErr)
	assert.Equal(t, apierrors.CodeInvalidRequest, apiErr.ErrorCode)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{"valid json", http.MethodPost, "application/json", `{"full_name":"Иванов"}`, http.StatusOK},
		{"invalid json", http.MethodPost, "application/json", `{"full_name":`, http.StatusBadRequest},
		{"too large", http.MethodPost, "application/json", `{"full_name":"` + strings.Repeat("я", 64) + `"}`, http.StatusRequestEntityTooLarge},
		{"multipart passes", http.MethodPost, "multipart/form-data; boundary=x", "--x--", http.StatusOK},
		{"get skipped", http.MethodGet, "", "", http.StatusOK},
	}

	v := newValidation(t, 64)
	h := v.ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") == "application/json" {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body), "body is replayed for the handler")
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/journal/students", bytes.NewBufferString(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("application/json")(http.HandlerFunc(okHandler))

	tests := []struct {
		contentType string
		want        int
	}{
		{"application/json; charset=utf-8", http.StatusOK},
		{"text/plain", http.StatusUnsupportedMediaType},
		{"", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	tests := []struct {
		query  string
		want   int
		wantOK bool
	}{
		{"", 10, true},
		{"limit=3", 3, true},
		{"limit=abc", 0, false},
		{"limit=0", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil), "limit", 1, 1000, 10)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
