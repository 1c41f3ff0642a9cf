package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/auth"
	"github.com/axis-inc/goal-engine/pkg/repositories"
	"github.com/axis-inc/goal-engine/pkg/services"
)

// answerPayload is one submitted custom field answer.
type answerPayload struct {
	FieldDefinitionID uuid.UUID `json:"field_definition_id"`
	Value             string    `json:"value"`
}

// goalPayload is the request body for goal writes.
type goalPayload struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TypeID        uuid.UUID       `json:"type_id"`
	Status        string          `json:"status"`
	ParentID      *uuid.UUID      `json:"parent_id"`
	CustomAnswers []answerPayload `json:"custom_answers"`
}

// GoalsHandler handles goal HTTP requests.
type GoalsHandler struct {
	goalService services.GoalService
	logger      *zap.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(goalService services.GoalService, logger *zap.Logger) *GoalsHandler {
	return &GoalsHandler{
		goalService: goalService,
		logger:      logger,
	}
}

// RegisterRoutes registers the goal routes on the given mux.
func (h *GoalsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, ownerMiddleware OwnerMiddleware) {
	mux.HandleFunc("POST /api/goals", authMiddleware.RequireAuth(ownerMiddleware(h.Create)))
	mux.HandleFunc("GET /api/goals", authMiddleware.RequireAuth(ownerMiddleware(h.List)))
	mux.HandleFunc("GET /api/goals/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/goals/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Update)))
	mux.HandleFunc("DELETE /api/goals/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Delete)))
}

// Create handles POST /api/goals
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var payload goalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	goal, err := h.goalService.Create(r.Context(), userID, goalInput(payload))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusCreated, goal))
}

// List handles GET /api/goals
// Optional query parameters: status, type_id.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	filter := repositories.GoalFilter{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("type_id"); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "validation_failed", "invalid type_id: must be a UUID"))
			return
		}
		filter.TypeID = typeID
	}

	page, err := h.goalService.List(r.Context(), userID, filter, pageRequest(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, page))
}

// Get handles GET /api/goals/{id}
func (h *GoalsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	goal, err := h.goalService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, goal))
}

// Update handles PUT /api/goals/{id}
func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var payload goalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	goal, err := h.goalService.Update(r.Context(), userID, id, goalInput(payload))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, goal))
}

// Delete handles DELETE /api/goals/{id}
func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.goalService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func goalInput(payload goalPayload) services.GoalInput {
	input := services.GoalInput{
		Title:       payload.Title,
		Description: payload.Description,
		TypeID:      payload.TypeID,
		Status:      payload.Status,
		ParentID:    payload.ParentID,
	}
	for _, answer := range payload.CustomAnswers {
		input.CustomAnswers = append(input.CustomAnswers, services.AnswerSubmission{
			FieldDefinitionID: answer.FieldDefinitionID,
			Value:             answer.Value,
		})
	}
	return input
}
