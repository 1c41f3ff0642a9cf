package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/auth"
	"github.com/axis-inc/goal-engine/pkg/services"
)

// CustomFieldsHandler handles custom field definition HTTP requests, both
// nested under a goal type and addressed standalone by definition id.
type CustomFieldsHandler struct {
	fieldService services.CustomFieldDefinitionService
	logger       *zap.Logger
}

// NewCustomFieldsHandler creates a new custom fields handler.
func NewCustomFieldsHandler(fieldService services.CustomFieldDefinitionService, logger *zap.Logger) *CustomFieldsHandler {
	return &CustomFieldsHandler{
		fieldService: fieldService,
		logger:       logger,
	}
}

// RegisterRoutes registers the custom field routes on the given mux.
func (h *CustomFieldsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, ownerMiddleware OwnerMiddleware) {
	mux.HandleFunc("POST /api/goal-types/{id}/fields", authMiddleware.RequireAuth(ownerMiddleware(h.Create)))
	mux.HandleFunc("GET /api/goal-types/{id}/fields", authMiddleware.RequireAuth(ownerMiddleware(h.ListByGoalType)))
	mux.HandleFunc("GET /api/fields/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/fields/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Update)))
	mux.HandleFunc("DELETE /api/fields/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Delete)))
}

// Create handles POST /api/goal-types/{id}/fields
func (h *CustomFieldsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	goalTypeID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var payload customFieldPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	def, err := h.fieldService.Create(r.Context(), userID, goalTypeID, definitionInput(payload))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusCreated, def))
}

// ListByGoalType handles GET /api/goal-types/{id}/fields
func (h *CustomFieldsHandler) ListByGoalType(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	goalTypeID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	defs, err := h.fieldService.ListByGoalType(r.Context(), userID, goalTypeID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, defs))
}

// Get handles GET /api/fields/{id}
func (h *CustomFieldsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	def, err := h.fieldService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, def))
}

// Update handles PUT /api/fields/{id}
func (h *CustomFieldsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var payload customFieldPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	def, err := h.fieldService.Update(r.Context(), userID, id, definitionInput(payload))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, def))
}

// Delete handles DELETE /api/fields/{id}
func (h *CustomFieldsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := h.fieldService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
