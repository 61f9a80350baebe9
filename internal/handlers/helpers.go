package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"herald/internal/fault"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return fault.New(fault.Validation, "request body required")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fault.Wrap(fault.Validation, "malformed request body", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError maps the fault kind onto an HTTP status. Internal errors are
// logged with detail but reported generically to the client.
func respondError(w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)
	status := statusFor(kind)

	body := map[string]any{"error": err.Error()}
	var fe *fault.Error
	if errors.As(err, &fe) {
		body["error"] = fe.Msg
		if len(fe.Fields) > 0 {
			body["fields"] = fe.Fields
		}
	}
	if kind == fault.Internal {
		log.Error().Err(err).Msg("request failed")
		body["error"] = "internal error"
	}
	respondJSON(w, status, body)
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.Validation:
		return http.StatusUnprocessableEntity
	case fault.Unauthenticated:
		return http.StatusUnauthorized
	case fault.Forbidden:
		return http.StatusForbidden
	case fault.NotFound:
		return http.StatusNotFound
	case fault.Conflict:
		return http.StatusConflict
	case fault.Dependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// urlUUID parses a uuid route parameter, e.g. /articles/{id}.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fault.Newf(fault.Validation, "invalid %s", name)
	}
	return id, nil
}

func parseUUIDField(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fault.Invalid(map[string]string{name: "must be a uuid"})
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
