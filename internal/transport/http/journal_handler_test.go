package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "gradebook/internal/errors"
	"gradebook/internal/exporter"
	"gradebook/internal/middleware"
	"gradebook/internal/roster"
	"gradebook/internal/services"
	"gradebook/internal/shared/testutil"
	"gradebook/internal/statistics"
	"gradebook/internal/storage"
	"gradebook/internal/tabular"
)

// MockJournalService is a mock implementation of JournalServiceInterface
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) Import(ctx context.Context, filename string, r io.Reader) (*services.ImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(filename, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportResult), args.Error(1)
}

func (m *MockJournalService) List(ctx context.Context) roster.Snapshot {
	return m.Called().Get(0).(roster.Snapshot)
}

func (m *MockJournalService) Preview(ctx context.Context, limit int) services.Preview {
	return m.Called(limit).Get(0).(services.Preview)
}

func (m *MockJournalService) Get(ctx context.Context, index int) (roster.Record, error) {
	args := m.Called(index)
	return args.Get(0).(roster.Record), args.Error(1)
}

func (m *MockJournalService) Create(ctx context.Context, in roster.Input) (int, error) {
	args := m.Called(in)
	return args.Int(0), args.Error(1)
}

func (m *MockJournalService) Update(ctx context.Context, index int, in roster.Input) error {
	return m.Called(index, in).Error(0)
}

func (m *MockJournalService) Delete(ctx context.Context, index int) error {
	return m.Called(index).Error(0)
}

func (m *MockJournalService) Statistics(ctx context.Context) (statistics.Report, error) {
	args := m.Called()
	return args.Get(0).(statistics.Report), args.Error(1)
}

func (m *MockJournalService) Charts(ctx context.Context) ([]statistics.Series, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]statistics.Series), args.Error(1)
}

func (m *MockJournalService) Export(ctx context.Context, format tabular.Format, w io.Writer) error {
	args := m.Called(format)
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

func newTestRouter(t *testing.T, service JournalServiceInterface, maxBody int64) (http.Handler, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	handler := NewJournalHandler(
		service,
		middleware.NewValidationMiddleware(logger, errorHandler, maxBody),
		middleware.NewQueryParamValidator(logger, errorHandler),
		logger,
		errorHandler,
	)

	r := chi.NewRouter()
	r.Mount("/api/journal", handler.Routes())
	return r, logs
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func sampleSnapshot() roster.Snapshot {
	return roster.Snapshot{
		Subjects: []string{"Математика"},
		Records: []roster.Record{
			{FullName: "Иванов Иван", ClassLabel: "10Б", Grades: map[string]roster.Grade{"Математика": roster.MustGrade(5)}},
			{FullName: "Петров Пётр", ClassLabel: "2А", Grades: map[string]roster.Grade{"Математика": roster.Ungraded()}},
		},
	}
}

func TestJournalHandler_List(t *testing.T) {
	svc := new(MockJournalService)
	svc.On("List").Return(sampleSnapshot())
	router, _ := newTestRouter(t, svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 2, body["total"])

	data := body["data"].(map[string]interface{})
	records := data["records"].([]interface{})
	first := records[0].(map[string]interface{})
	assert.Equal(t, "Иванов Иван", first["full_name"])
	assert.EqualValues(t, 5, first["grades"].(map[string]interface{})["Математика"])
	second := records[1].(map[string]interface{})
	assert.Equal(t, "", second["grades"].(map[string]interface{})["Математика"])
	svc.AssertExpectations(t)
}

func TestJournalHandler_Preview(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(m *MockJournalService)
		expectedStatus int
	}{
		{
			name:  "default limit",
			query: "",
			setupMock: func(m *MockJournalService) {
				m.On("Preview", 10).Return(services.Preview{Total: 2})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "explicit limit",
			query: "?limit=1",
			setupMock: func(m *MockJournalService) {
				m.On("Preview", 1).Return(services.Preview{Total: 2})
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "zero limit rejected",
			query:          "?limit=0",
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non numeric limit rejected",
			query:          "?limit=ten",
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJournalService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc, 0)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal/preview"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestJournalHandler_Import(t *testing.T) {
	csv := testutil.DelimitedText(testutil.SampleTable(), ",")

	tests := []struct {
		name           string
		field          string
		filename       string
		setupMock      func(m *MockJournalService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "successful import",
			field:    "file",
			filename: "journal.csv",
			setupMock: func(m *MockJournalService) {
				m.On("Import", "journal.csv", csv).Return(&services.ImportResult{
					Filename: "journal.csv",
					Format:   tabular.FormatCSV,
					Records:  4,
					Subjects: []string{"Математика", "Физика"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing file field",
			field:          "upload",
			filename:       "journal.csv",
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeInvalidRequest,
		},
		{
			name:           "filename with directory part",
			field:          "file",
			filename:       `uploads\journal.csv`,
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:     "unsupported extension",
			field:    "file",
			filename: "journal.pdf",
			setupMock: func(m *MockJournalService) {
				m.On("Import", "journal.pdf", csv).Return(nil, &tabular.UnsupportedFormatError{Name: "journal.pdf"})
			},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedCode:   apierrors.CodeUnsupportedFormat,
		},
		{
			name:     "empty dataset",
			field:    "file",
			filename: "journal.csv",
			setupMock: func(m *MockJournalService) {
				m.On("Import", "journal.csv", csv).Return(nil, &tabular.EmptyDatasetError{Format: tabular.FormatCSV})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.CodeEmptyDataset,
		},
		{
			name:     "storage failure",
			field:    "file",
			filename: "journal.csv",
			setupMock: func(m *MockJournalService) {
				m.On("Import", "journal.csv", csv).Return(nil, apierrors.NewStorageError("persist", errors.New("disk full")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apierrors.CodeStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJournalService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc, 0)

			body, contentType := multipartUpload(t, tt.field, tt.filename, csv)
			req := httptest.NewRequest(http.MethodPost, "/api/journal/import", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			resp := decodeBody(t, rec)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, resp["error_code"])
			} else {
				assert.Equal(t, "success", resp["status"])
				assert.EqualValues(t, 4, resp["data"].(map[string]interface{})["records"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestJournalHandler_ImportTooLarge(t *testing.T) {
	svc := new(MockJournalService)
	router, _ := newTestRouter(t, svc, 64)

	body, contentType := multipartUpload(t, "file", "journal.csv", strings.Repeat("x", 1024))
	req := httptest.NewRequest(http.MethodPost, "/api/journal/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	svc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
}

func TestJournalHandler_CreateStudent(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockJournalService)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "numbers strings and null grades",
			body: `{"full_name":"Сидоров","class":"5А","grades":{"Математика":5,"Физика":"4","Химия":null}}`,
			setupMock: func(m *MockJournalService) {
				m.On("Create", roster.Input{
					FullName:   "Сидоров",
					ClassLabel: "5А",
					Grades:     map[string]string{"Математика": "5", "Физика": "4", "Химия": ""},
				}).Return(2, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "grade out of range",
			body: `{"full_name":"Сидоров","class":"5А","grades":{"Математика":6}}`,
			setupMock: func(m *MockJournalService) {
				m.On("Create", roster.Input{
					FullName:   "Сидоров",
					ClassLabel: "5А",
					Grades:     map[string]string{"Математика": "6"},
				}).Return(-1, &roster.ValidationError{
					Fields: []roster.FieldError{{Field: "Математика", Message: "grade must be between 1 and 5"}},
				})
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "Математика",
		},
		{
			name:           "missing name",
			body:           `{"class":"5А","grades":{}}`,
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "full_name",
		},
		{
			name: "rejected by roster",
			body: `{"full_name":"  ","class":"5А"}`,
			setupMock: func(m *MockJournalService) {
				m.On("Create", mock.Anything).Return(-1, &roster.ValidationError{
					Fields: []roster.FieldError{{Field: tabular.FieldFullName, Message: "full name is required"}},
				})
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  tabular.FieldFullName,
		},
		{
			name:           "malformed json",
			body:           `{"full_name":`,
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJournalService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc, 0)

			req := httptest.NewRequest(http.MethodPost, "/api/journal/students", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			resp := decodeBody(t, rec)
			if tt.expectedStatus == http.StatusCreated {
				assert.EqualValues(t, 2, resp["data"].(map[string]interface{})["index"])
			}
			if tt.expectedField != "" {
				details := resp["details"].(map[string]interface{})
				fields := details["errors"].([]interface{})
				require.NotEmpty(t, fields)
				assert.Equal(t, tt.expectedField, fields[0].(map[string]interface{})["field"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestJournalHandler_StudentGradesAgainstRoster(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	journal := services.NewJournalService(roster.NewStore(storage.NewMemory(), "", logger), nil, nil, nil, logger)
	_, err := journal.Import(context.Background(), "journal.csv",
		strings.NewReader(testutil.DelimitedText(testutil.SampleTable(), ",")))
	require.NoError(t, err)
	router, _ := newTestRouter(t, journal, 0)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedField  string
	}{
		{
			name:           "unknown subject is dropped",
			body:           `{"full_name":"Иванов","class":"5А","grades":{"НетТакого":"abc","Математика":4}}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "long class label",
			body:           `{"full_name":"Иванов","class":"` + strings.Repeat("Б", 23) + `"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "long name",
			body:           `{"full_name":"` + strings.Repeat("Я", 250) + `","class":"5А"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "known subject out of range",
			body:           `{"full_name":"Иванов","class":"5А","grades":{"Математика":6}}`,
			expectedStatus: http.StatusBadRequest,
			expectedField:  "Математика",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/journal/students", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			resp := decodeBody(t, rec)
			if tt.expectedField != "" {
				fields := resp["details"].(map[string]interface{})["errors"].([]interface{})
				require.Len(t, fields, 1)
				assert.Equal(t, tt.expectedField, fields[0].(map[string]interface{})["field"])
				return
			}

			index := int(resp["data"].(map[string]interface{})["index"].(float64))
			student, err := journal.Get(context.Background(), index)
			require.NoError(t, err)
			assert.NotContains(t, student.Grades, "НетТакого")
		})
	}
}

func TestJournalHandler_CreateStudentRequiresJSON(t *testing.T) {
	svc := new(MockJournalService)
	router, _ := newTestRouter(t, svc, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/journal/students", strings.NewReader("full_name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestJournalHandler_StudentByIndex(t *testing.T) {
	rec0 := sampleSnapshot().Records[0]
	update := `{"full_name":"Иванов Иван","class":"11Б","grades":{"Математика":"4"}}`

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMock      func(m *MockJournalService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/api/journal/students/0",
			setupMock: func(m *MockJournalService) {
				m.On("Get", 0).Return(rec0, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get out of range",
			method: http.MethodGet,
			path:   "/api/journal/students/7",
			setupMock: func(m *MockJournalService) {
				m.On("Get", 7).Return(roster.Record{}, &roster.IndexOutOfRangeError{Index: 7, Len: 2})
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.CodeStudentNotFound,
		},
		{
			name:           "non numeric index",
			method:         http.MethodGet,
			path:           "/api/journal/students/abc",
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeValidationFailed,
		},
		{
			name:   "update",
			method: http.MethodPut,
			path:   "/api/journal/students/1",
			body:   update,
			setupMock: func(m *MockJournalService) {
				m.On("Update", 1, roster.Input{
					FullName:   "Иванов Иван",
					ClassLabel: "11Б",
					Grades:     map[string]string{"Математика": "4"},
				}).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "update negative index",
			method: http.MethodPut,
			path:   "/api/journal/students/-1",
			body:   update,
			setupMock: func(m *MockJournalService) {
				m.On("Update", -1, mock.Anything).Return(&roster.IndexOutOfRangeError{Index: -1, Len: 2})
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.CodeStudentNotFound,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/api/journal/students/0",
			setupMock: func(m *MockJournalService) {
				m.On("Delete", 0).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "delete from empty journal",
			method: http.MethodDelete,
			path:   "/api/journal/students/0",
			setupMock: func(m *MockJournalService) {
				m.On("Delete", 0).Return(&roster.IndexOutOfRangeError{Index: 0, Len: 0})
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   apierrors.CodeStudentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJournalService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc, 0)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeBody(t, rec)["error_code"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestJournalHandler_Statistics(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(m *MockJournalService)
		expectedStatus int
	}{
		{
			name: "report",
			setupMock: func(m *MockJournalService) {
				m.On("Statistics").Return(statistics.Report{
					Overall: []statistics.Summary{{Label: "Математика", Count: 1, Mean: 5, Median: 5}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "empty journal",
			setupMock: func(m *MockJournalService) {
				m.On("Statistics").Return(statistics.Report{}, roster.ErrRosterEmpty)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJournalService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc, 0)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal/statistics", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if rec.Code == http.StatusNotFound {
				assert.Equal(t, apierrors.CodeNoData, decodeBody(t, rec)["error_code"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestJournalHandler_Charts(t *testing.T) {
	svc := new(MockJournalService)
	svc.On("Charts").Return([]statistics.Series{
		{Subject: "Математика", Classes: []string{"2А", "10Б"}, Means: []float64{0, 5}},
	}, nil)
	router, _ := newTestRouter(t, svc, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal/charts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	series := decodeBody(t, rec)["data"].([]interface{})
	require.Len(t, series, 1)
	assert.Equal(t, []interface{}{"2А", "10Б"}, series[0].(map[string]interface{})["classes"])
}

func TestJournalHandler_Export(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		setupMock       func(m *MockJournalService)
		expectedStatus  int
		expectedType    string
		expectedFile    string
		expectedContent string
	}{
		{
			name: "csv",
			path: "/api/journal/export/csv",
			setupMock: func(m *MockJournalService) {
				m.On("Export", tabular.FormatCSV).Return("ФИО,Класс\n", nil)
			},
			expectedStatus:  http.StatusOK,
			expectedType:    exporter.ContentType(tabular.FormatCSV),
			expectedFile:    "journal.csv",
			expectedContent: "ФИО,Класс\n",
		},
		{
			name: "txt",
			path: "/api/journal/export/txt",
			setupMock: func(m *MockJournalService) {
				m.On("Export", tabular.FormatText).Return("ФИО\tКласс\n", nil)
			},
			expectedStatus:  http.StatusOK,
			expectedType:    exporter.ContentType(tabular.FormatText),
			expectedFile:    "journal.txt",
			expectedContent: "ФИО\tКласс\n",
		},
		{
			name: "xlsx",
			path: "/api/journal/export/xlsx",
			setupMock: func(m *MockJournalService) {
				m.On("Export", tabular.FormatWorkbook).Return("PK", nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   exporter.ContentType(tabular.FormatWorkbook),
			expectedFile:   "journal.xlsx",
		},
		{
			name:           "unknown format",
			path:           "/api/journal/export/pdf",
			setupMock:      func(m *MockJournalService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name: "empty journal",
			path: "/api/journal/export/csv",
			setupMock: func(m *MockJournalService) {
				m.On("Export", tabular.FormatCSV).Return("", exporter.ErrNothingToExport)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockJournalService)
			tt.setupMock(svc)
			router, _ := newTestRouter(t, svc, 0)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedFile != "" {
				assert.Equal(t, tt.expectedType, rec.Header().Get("Content-Type"))
				assert.Equal(t, `attachment; filename="`+tt.expectedFile+`"`, rec.Header().Get("Content-Disposition"))
			}
			if tt.expectedContent != "" {
				assert.Equal(t, tt.expectedContent, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestJournalHandler_LogsImports(t *testing.T) {
	svc := new(MockJournalService)
	svc.On("Import", "j.txt", "ФИО\tКласс\nА\t1А").Return(&services.ImportResult{Filename: "j.txt", Records: 1}, nil)
	router, logs := newTestRouter(t, svc, 0)

	body, contentType := multipartUpload(t, "file", "j.txt", "ФИО\tКласс\nА\t1А")
	req := httptest.NewRequest(http.MethodPost, "/api/journal/import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, logs.ContainsMessage("journal imported"))
	assert.Equal(t, 0, len(logs.GetRecordsByLevel(slog.LevelError)))
}
