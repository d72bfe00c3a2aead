package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Jomoregie1/greetingapi/internal/greetings"
	"github.com/Jomoregie1/greetingapi/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	reader greetings.Reader
	db     store.DataStore
	redis  *store.RedisStore
	logger zerolog.Logger
}

// NewHandler creates a new Handler. redis may be nil.
func NewHandler(reader greetings.Reader, db store.DataStore, redis *store.RedisStore, logger zerolog.Logger) *Handler {
	return &Handler{reader: reader, db: db, redis: redis, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, detail string) {
	h.JSON(w, status, map[string]string{"detail": detail})
}

// fail translates a greetings error into a response. Store failures are
// logged with the request id and reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := greetings.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("kind", string(kind)).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("greetings read failed")
	}
	h.Error(w, status, greetings.DetailOf(err))
}

// statusFor maps error kinds to HTTP status codes. Unknown categories are
// reported as 404 because the token is part of the resource address.
func statusFor(kind greetings.Kind) int {
	switch kind {
	case greetings.KindOutOfRange, greetings.KindInvalidParameter:
		return http.StatusBadRequest
	case greetings.KindUnknownCategory, greetings.KindPageOutOfBounds,
		greetings.KindNotFound, greetings.KindNoTypesAvailable:
		return http.StatusNotFound
	case greetings.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
