package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Error.Fields = fields
	return resp
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Request body must be valid JSON", r))
		return false
	}
	return true
}

// requireUser returns the authenticated user id, answering 422 when the
// request carries no usable identity.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("INVALID_IDENTITY", "Invalid user identity in token", r))
		return uuid.Nil, false
	}
	return userID, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var (
		validationErr *services.ValidationError
		conflictErr   *services.ConflictError
		notFoundErr   *services.NotFoundError
		unauthErr     *services.UnauthorizedError
		identityErr   *services.IdentityError
		parseErr      *services.GenerationParseError
		persistErr    *services.PersistenceError
	)
	requestID := r.Header.Get(middleware.RequestIDHeader)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", validationErr.Error(), validationErr.Fields, r))
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", conflictErr.Message, r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &unauthErr):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthErr.Message, r))
	case errors.As(err, &identityErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("INVALID_IDENTITY", identityErr.Message, r))
	case errors.As(err, &parseErr):
		log.Error("Generation output rejected", "request_id", requestID, "error", parseErr.Message)
		resp := errorResp("GENERATION_PARSE_ERROR", parseErr.Message, r)
		resp.RawResponseSnippet = parseErr.Snippet()
		writeJSON(w, http.StatusInternalServerError, resp)
	case errors.As(err, &persistErr):
		log.Error("Persistence failure", "request_id", requestID, "op", persistErr.Op, "error", persistErr.Err)
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Failed to save changes", r))
	default:
		log.Error("Unhandled error", "request_id", requestID, "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
