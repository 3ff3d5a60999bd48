package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/warp/timesheet-engine/timesheet"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// errBadRequest marks malformed input detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

// publicErrors lists the sentinels whose message is safe to show clients,
// most specific first.
var publicErrors = []error{
	timesheet.ErrImmutableApprovedEntry,
	timesheet.ErrCrossTenant,
	timesheet.ErrForbidden,
	timesheet.ErrUserNotFound,
	timesheet.ErrProjectNotFound,
	timesheet.ErrWorkspaceNotFound,
	timesheet.ErrWorkspaceMismatch,
	timesheet.ErrInvalidInterval,
	timesheet.ErrInvalidClockTime,
	timesheet.ErrFutureDate,
	timesheet.ErrBackdateLimitExceeded,
	timesheet.ErrInvalidStatus,
	timesheet.ErrInvalidFilter,
	timesheet.ErrNotFound,
	errBadRequest,
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case timesheet.IsConflict(err):
		return http.StatusConflict
	case timesheet.IsForbidden(err):
		return http.StatusForbidden
	case timesheet.IsNotFound(err):
		return http.StatusNotFound
	case timesheet.IsClientError(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Internal errors are
// logged and never leak their text.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, status, "internal server error", nil)
		return
	}

	message := http.StatusText(status)
	for _, sentinel := range publicErrors {
		if errors.Is(err, sentinel) {
			message = sentinel.Error()
			break
		}
	}
	writeError(w, status, message, err)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
