package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gradebook/internal/config"
	apierrors "gradebook/internal/errors"
	"gradebook/internal/exporter"
	"gradebook/internal/middleware"
	"gradebook/internal/roster"
	"gradebook/internal/tabular"
)

// maxPreviewLimit bounds the preview query parameter.
const maxPreviewLimit = 1000

// GradeValue is a grade as sent by a client: a number, a numeric string,
// "" or null. Values are checked by the roster against the subject list.
type GradeValue string

// UnmarshalJSON accepts numbers, strings and null.
func (g *GradeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*g = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GradeValue(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("grade must be a number or a string: %w", err)
		}
		*g = GradeValue(n.String())
		return nil
	}
}

// StudentRequest is the body of create and update requests. Grades for
// subjects outside the journal are dropped by the roster.
type StudentRequest struct {
	FullName string                `json:"full_name" validate:"required"`
	Class    string                `json:"class" validate:"required"`
	Grades   map[string]GradeValue `json:"grades"`
}

// ImportRequest describes the uploaded file part of an import.
type ImportRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// Input converts the request into a roster input.
func (req StudentRequest) Input() roster.Input {
	grades := make(map[string]string, len(req.Grades))
	for subject, g := range req.Grades {
		grades[subject] = string(g)
	}
	return roster.Input{FullName: req.FullName, ClassLabel: req.Class, Grades: grades}
}

// JournalHandler handles grade journal HTTP requests
type JournalHandler struct {
	service      JournalServiceInterface
	validation   *middleware.ValidationMiddleware
	queries      *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(
	service JournalServiceInterface,
	validation *middleware.ValidationMiddleware,
	queries *middleware.QueryParamValidator,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *JournalHandler {
	return &JournalHandler{
		service:      service,
		validation:   validation,
		queries:      queries,
		logger:       logger.With(slog.String("handler", "journal")),
		errorHandler: errorHandler,
	}
}

// Routes returns the journal router, mounted under /api/journal.
func (h *JournalHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.validation.ValidateRequest)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/", h.List)
		r.Get("/preview", h.Preview)
		r.Get("/statistics", h.Statistics)
		r.Get("/charts", h.Charts)

		r.With(middleware.ContentTypeValidator("multipart/form-data")).Post("/import", h.Import)

		r.Route("/students", func(r chi.Router) {
			r.With(middleware.ContentTypeValidator("application/json")).Post("/", h.CreateStudent)

			r.Route("/{index}", func(r chi.Router) {
				r.Use(h.IndexCtx)
				r.Get("/", h.GetStudent)
				r.With(middleware.ContentTypeValidator("application/json")).Put("/", h.UpdateStudent)
				r.Delete("/", h.DeleteStudent)
			})
		})
	})

	r.Route("/export/{format}", func(r chi.Router) {
		r.Use(h.FormatCtx)
		r.Get("/", h.Export)
	})

	return r
}

type ctxKey string

const (
	indexKey  ctxKey = "index"
	formatKey ctxKey = "format"
)

// IndexCtx parses the {index} parameter. Range checks are left to the
// service so that they see the roster under its lock.
func (h *JournalHandler) IndexCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "index")
		index, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("index", "index must be an integer"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), indexKey, index)))
	})
}

// FormatCtx validates the {format} parameter.
func (h *JournalHandler) FormatCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format, err := tabular.ParseFormat(chi.URLParam(r, "format"))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formatKey, format)))
	})
}

// List handles GET /api/journal
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.service.List(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snap,
		"total":  snap.Len(),
	})
}

// Preview handles GET /api/journal/preview?limit=N
func (h *JournalHandler) Preview(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queries.ValidateInt(w, r, "limit", 1, maxPreviewLimit, config.DefaultPreviewLimit)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Preview(r.Context(), limit),
	})
}

// Import handles POST /api/journal/import with a multipart "file" field.
func (h *JournalHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.validation.MaxBodySize()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.PayloadTooLarge(tooLarge.Limit))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	req := ImportRequest{Filename: header.Filename}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Import(r.Context(), req.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "journal imported",
		slog.String("filename", result.Filename),
		slog.Int("records", result.Records),
		slog.Int("subjects", len(result.Subjects)))

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Data successfully loaded",
		"data":    result,
	})
}

// GetStudent handles GET /api/journal/students/{index}
func (h *JournalHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	index := r.Context().Value(indexKey).(int)
	rec, err := h.service.Get(r.Context(), index)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rec,
	})
}

// CreateStudent handles POST /api/journal/students
func (h *JournalHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	index, err := h.service.Create(r.Context(), req.Input())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Student added",
		"data":    map[string]int{"index": index},
	})
}

// UpdateStudent handles PUT /api/journal/students/{index}
func (h *JournalHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	index := r.Context().Value(indexKey).(int)

	var req StudentRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), index, req.Input()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Student updated",
		"data":    map[string]int{"index": index},
	})
}

// DeleteStudent handles DELETE /api/journal/students/{index}
func (h *JournalHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	index := r.Context().Value(indexKey).(int)
	if err := h.service.Delete(r.Context(), index); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"message": "Student deleted",
	})
}

// Statistics handles GET /api/journal/statistics
func (h *JournalHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Statistics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// Charts handles GET /api/journal/charts
func (h *JournalHandler) Charts(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.Charts(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   series,
	})
}

// Export handles GET /api/journal/export/{format}. The document is buffered
// so that a failed export still produces a problem response.
func (h *JournalHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.Context().Value(formatKey).(tabular.Format)

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.Filename(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}
