package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"inkwell/app/services"
	"inkwell/app/validation"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string            `json:"error"`
	Kind    string            `json:"kind,omitempty"`
	ID      int               `json:"id,omitempty"`
	Details validation.Errors `json:"details,omitempty"`
}

var errMalformed = errors.New("malformed request body")

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, errorResponse{Error: message})
}

// handleError maps service errors onto status codes. Anything unexpected is
// logged and hidden behind a 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nf   *services.NotFoundError
		verr *services.ValidationError
	)
	switch {
	case errors.As(err, &verr):
		sendJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Validation failed", Details: verr.Errors})
	case errors.As(err, &nf):
		sendJSON(w, http.StatusNotFound, errorResponse{Error: "Record not found", Kind: nf.Kind, ID: nf.ID})
	case errors.Is(err, errMalformed):
		sendError(w, http.StatusBadRequest, "Invalid JSON")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		sendError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody reads a JSON object into v. Keys outside v's fields are ignored
// and an empty body counts as an empty object.
func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errMalformed
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errMalformed
	}
	return nil
}

// pathID reads the numeric {id} route variable. Ids too large for int cannot
// name a record.
func pathID(r *http.Request, kind string) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &services.NotFoundError{Kind: kind}
	}
	return id, nil
}
