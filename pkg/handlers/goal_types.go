package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/auth"
	"github.com/axis-inc/goal-engine/pkg/services"
)

// customFieldPayload is a submitted custom field definition. ID is set
// when the client refers to an existing definition during a full-replace
// update.
type customFieldPayload struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Type        string     `json:"type"`
	Required    bool       `json:"required"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// goalTypePayload is the request body for goal type writes. The level
// number is server-assigned and absent on purpose.
type goalTypePayload struct {
	Title        string               `json:"title"`
	CustomFields []customFieldPayload `json:"custom_fields"`
}

// GoalTypesHandler handles goal type HTTP requests.
type GoalTypesHandler struct {
	goalTypeService services.GoalTypeService
	logger          *zap.Logger
}

// NewGoalTypesHandler creates a new goal types handler.
func NewGoalTypesHandler(goalTypeService services.GoalTypeService, logger *zap.Logger) *GoalTypesHandler {
	return &GoalTypesHandler{
		goalTypeService: goalTypeService,
		logger:          logger,
	}
}

// RegisterRoutes registers the goal type routes on the given mux.
func (h *GoalTypesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, ownerMiddleware OwnerMiddleware) {
	mux.HandleFunc("POST /api/goal-types", authMiddleware.RequireAuth(ownerMiddleware(h.Create)))
	mux.HandleFunc("GET /api/goal-types", authMiddleware.RequireAuth(ownerMiddleware(h.List)))
	mux.HandleFunc("GET /api/goal-types/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/goal-types/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Update)))
	mux.HandleFunc("DELETE /api/goal-types/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Delete)))
}

// Create handles POST /api/goal-types
func (h *GoalTypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var payload goalTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	goalType, err := h.goalTypeService.Create(r.Context(), userID, goalTypeInput(payload))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusCreated, goalType))
}

// List handles GET /api/goal-types
func (h *GoalTypesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	page, err := h.goalTypeService.List(r.Context(), userID, pageRequest(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, page))
}

// Get handles GET /api/goal-types/{id}
func (h *GoalTypesHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	goalType, err := h.goalTypeService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, goalType))
}

// Update handles PUT /api/goal-types/{id}
func (h *GoalTypesHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var payload goalTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	goalType, err := h.goalTypeService.Update(r.Context(), userID, id, goalTypeInput(payload))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, goalType))
}

// Delete handles DELETE /api/goal-types/{id}
func (h *GoalTypesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.goalTypeService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func goalTypeInput(payload goalTypePayload) services.GoalTypeInput {
	input := services.GoalTypeInput{Title: payload.Title}
	for _, field := range payload.CustomFields {
		input.CustomFields = append(input.CustomFields, definitionInput(field))
	}
	return input
}

func definitionInput(field customFieldPayload) services.CustomFieldDefinitionInput {
	return services.CustomFieldDefinitionInput{
		ID:          field.ID,
		Key:         field.Key,
		Label:       field.Label,
		Type:        field.Type,
		Required:    field.Required,
		Placeholder: field.Placeholder,
	}
}
