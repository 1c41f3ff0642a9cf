package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/axis-inc/goal-engine/pkg/auth"
	"github.com/axis-inc/goal-engine/pkg/services"
)

// answerValuePayload is the request body for answer value updates. The
// definition binding is immutable, so only the value is accepted.
type answerValuePayload struct {
	Value string `json:"value"`
}

// CustomFieldAnswersHandler handles custom field answer HTTP requests,
// both nested under a goal and addressed standalone by answer id.
type CustomFieldAnswersHandler struct {
	answerService services.CustomFieldAnswerService
	logger        *zap.Logger
}

// NewCustomFieldAnswersHandler creates a new custom field answers handler.
func NewCustomFieldAnswersHandler(answerService services.CustomFieldAnswerService, logger *zap.Logger) *CustomFieldAnswersHandler {
	return &CustomFieldAnswersHandler{
		answerService: answerService,
		logger:        logger,
	}
}

// RegisterRoutes registers the answer routes on the given mux.
func (h *CustomFieldAnswersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, ownerMiddleware OwnerMiddleware) {
	mux.HandleFunc("POST /api/goals/{id}/answers", authMiddleware.RequireAuth(ownerMiddleware(h.Create)))
	mux.HandleFunc("GET /api/goals/{id}/answers", authMiddleware.RequireAuth(ownerMiddleware(h.ListByGoal)))
	mux.HandleFunc("GET /api/answers/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Get)))
	mux.HandleFunc("PUT /api/answers/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Update)))
	mux.HandleFunc("DELETE /api/answers/{id}", authMiddleware.RequireAuth(ownerMiddleware(h.Delete)))
}

// Create handles POST /api/goals/{id}/answers
func (h *CustomFieldAnswersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	goalID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var payload answerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	answer, err := h.answerService.Create(r.Context(), userID, goalID, services.AnswerSubmission{
		FieldDefinitionID: payload.FieldDefinitionID,
		Value:             payload.Value,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusCreated, answer))
}

// ListByGoal handles GET /api/goals/{id}/answers
func (h *CustomFieldAnswersHandler) ListByGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	goalID, err := pathUUID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	answers, err := h.answerService.ListByGoal(r.Context(), userID, goalID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, answers))
}

// Get handles GET /api/answers/{id}
func (h *CustomFieldAnswersHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	answer, err := h.answerService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, answer))
}

// Update handles PUT /api/answers/{id}
func (h *CustomFieldAnswersHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var payload answerValuePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOrLog(h.logger, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	answer, err := h.answerService.Update(r.Context(), userID, id, payload.Value)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeOrLog(h.logger, WriteJSON(w, http.StatusOK, answer))
}

// Delete handles DELETE /api/answers/{id}
func (h *CustomFieldAnswersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.answerService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
