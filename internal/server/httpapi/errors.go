package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/imaging"
	"github.com/dmitrijs2005/notekeeper/internal/server/shared/respond"
)

type errorClass struct {
	target error
	status int
	code   string
}

// Order matters: ErrTooLarge is also an ErrValidation.
var errorClasses = []errorClass{
	{common.ErrTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
	{common.ErrValidation, http.StatusBadRequest, "validation_error"},
	{common.ErrImageDecode, http.StatusUnprocessableEntity, "image_decode_failed"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{common.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{common.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{common.ErrNotFound, http.StatusNotFound, "not_found"},
	{common.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	{common.ErrStorage, http.StatusBadGateway, "storage_error"},
	{common.ErrCredential, http.StatusInternalServerError, "credential_error"},
}

func classify(err error) (int, string) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c.status, c.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError answers with the status and code err maps to. Details of server
// side failures are logged, not returned.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "code", code, "error", err)
		msg = http.StatusText(status)
	}

	if stage, ok := imaging.StageOf(err); ok {
		respond.StageError(w, status, code, msg, string(stage))
		return
	}
	respond.Error(w, status, code, msg)
}
