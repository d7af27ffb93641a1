package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/teamrank/internal/api/apierr"
)

// maxBodyBytes bounds request bodies; the largest valid body is a short list of names
const maxBodyBytes = 64 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}
