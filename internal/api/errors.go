package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/types"
)

var (
	errMissingCaller = types.NewErrorWithMsg(types.AuthorizationError, "MISSING_CALLER", "missing "+callerHeader+" header")
	errBadRequest    = types.NewErrorWithMsg(types.ValidationError, "BAD_REQUEST", "bad request")
)

func badRequest(format string, args ...any) *types.Error {
	return types.NewError(errBadRequest.Kind, errBadRequest.Code, fmt.Errorf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError renders err with the status of its kind. Errors that do not
// come from the ledger are reported as internal and their text is hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ledgerErr *types.Error
	if !errors.As(err, &ledgerErr) {
		ledgerErr = types.NewInternalError(err)
	}
	status := ledgerErr.StatusCode()

	resp := ErrorResponse{
		Code:    ledgerErr.Code.String(),
		Kind:    ledgerErr.Kind.String(),
		Message: ledgerErr.Error(),
	}
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}
