// Package handlers implements the REST API endpoints.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyhq/compliance-engine/pkg/errors"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps any error to the API envelope.  Application errors carry
// their own HTTP status; anything else is an opaque 500.
func writeError(w http.ResponseWriter, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := "internal server error"
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logging.Err(err))
	}

	writeJSON(w, status, common.NewErrorResponse(string(code), message))
}

// parseID extracts and validates a UUID path parameter.
func parseID(r *http.Request, name string) (common.ID, error) {
	id := common.ID(chi.URLParam(r, name))
	if err := id.Validate(); err != nil {
		return "", errors.InvalidParam("invalid " + name + ": must be a UUID")
	}
	return id, nil
}

// parsePositive parses a positive integer query parameter.
func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a positive integer", s)
	}
	return n, nil
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.InvalidParam("invalid request body: " + err.Error())
	}
	return nil
}
