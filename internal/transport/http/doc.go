// Package http implements the REST handlers for the grade journal.
// Handlers stay thin: they decode and validate requests, call the journal
// service and render the result. Business rules live in the services and
// roster packages.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → JournalService → roster.Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *JournalHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
//	    var req StudentRequest
//	    if err := h.validation.DecodeJSON(r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    index, err := h.service.Create(r.Context(), req.Input())
//	    ...
//	    render.JSON(w, r, map[string]interface{}{"status": "success", "data": ...})
//	}
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem documents by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/journal/students"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a mocked JournalServiceInterface.
package http
