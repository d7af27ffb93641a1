package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamrank/internal/model"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("%w: zed", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{"winner", model.ErrInvalidWinner, http.StatusBadRequest, CodeInvalidWinner},
		{"both teams", fmt.Errorf("%w: alice", model.ErrPlayerOnBothTeams), http.StatusBadRequest, CodePlayerOnBothTeams},
		{"odd roster", model.ErrOddRoster, http.StatusBadRequest, CodeOddRoster},
		{"too large", model.ErrRosterTooLarge, http.StatusBadRequest, CodeRosterTooLarge},
		{"plain validation", fmt.Errorf("%w: bad", model.ErrValidation), http.StatusBadRequest, CodeValidationFailed},
		{"corrupt", fmt.Errorf("%w: bob: wins exceed matches", model.ErrStorageCorrupt), http.StatusInternalServerError, CodeStorageCorrupt},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
		{"invalid request", NewInvalidRequestError("invalid request body"), http.StatusBadRequest, CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestCorruptMessageHidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, fmt.Errorf("%w: /var/lib/teamrank/players.json: unexpected EOF", model.ErrStorageCorrupt))

	assert.NotContains(t, rr.Body.String(), "/var/lib")
}
