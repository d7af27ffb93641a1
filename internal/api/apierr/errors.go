package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/teamrank/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidPlayerName = "INVALID_PLAYER_NAME"
	CodeInvalidWinner     = "INVALID_WINNER"
	CodeEmptyTeam         = "EMPTY_TEAM"
	CodeDuplicatePlayer   = "DUPLICATE_PLAYER"
	CodePlayerOnBothTeams = "PLAYER_ON_BOTH_TEAMS"
	CodeRosterTooSmall    = "ROSTER_TOO_SMALL"
	CodeOddRoster         = "ODD_ROSTER"
	CodeRosterTooLarge    = "ROSTER_TOO_LARGE"
	CodeInvalidMetric     = "INVALID_METRIC"
	CodePlayerNotFound    = "PLAYER_NOT_FOUND"
	CodeNotFound          = "NOT_FOUND"
	CodeStorageCorrupt    = "STORAGE_CORRUPT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// validationCodes refines ErrValidation; the first match wins
var validationCodes = []struct {
	err  error
	code string
}{
	{model.ErrInvalidPlayerName, CodeInvalidPlayerName},
	{model.ErrInvalidWinner, CodeInvalidWinner},
	{model.ErrEmptyTeam, CodeEmptyTeam},
	{model.ErrPlayerOnBothTeams, CodePlayerOnBothTeams},
	{model.ErrDuplicatePlayer, CodeDuplicatePlayer},
	{model.ErrRosterTooSmall, CodeRosterTooSmall},
	{model.ErrOddRoster, CodeOddRoster},
	{model.ErrRosterTooLarge, CodeRosterTooLarge},
	{model.ErrInvalidMetric, CodeInvalidMetric},
}

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, err.Error()}}
	case errors.Is(err, model.ErrValidation):
		code := CodeValidationFailed
		for _, vc := range validationCodes {
			if errors.Is(err, vc.err) {
				code = vc.code
				break
			}
		}
		return &httpError{http.StatusBadRequest, APIError{code, err.Error()}}
	case errors.Is(err, model.ErrStorageCorrupt):
		return &httpError{http.StatusInternalServerError, APIError{CodeStorageCorrupt, "Player store is corrupt"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a 404 for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
