package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/errs"
)

// errNoAuth marks a request that carried no credentials at all, as
// opposed to bad ones.
var errNoAuth = errors.New("missing credentials")

// writeError renders the error envelope with the status the taxonomy
// prescribes: 400 validation/conflict, 401 missing credentials, 403
// forbidden, 404 not found, 500 everything else. Internal causes are
// logged, not surfaced.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNoAuth) {
		s.render.JSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "unauthorized"})
		return
	}

	var validationErr *errs.ValidationError
	if errors.As(err, &validationErr) {
		body := map[string]interface{}{"error": validationErr.Error()}
		if len(validationErr.Fields) > 0 {
			body["details"] = map[string]interface{}{"fields": validationErr.Fields}
		}
		s.render.JSON(w, http.StatusBadRequest, body)
		return
	}

	var notFoundErr *errs.NotFoundError
	if errors.As(err, &notFoundErr) {
		s.render.JSON(w, http.StatusNotFound, map[string]interface{}{"error": notFoundErr.Error()})
		return
	}

	var forbiddenErr *errs.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		s.render.JSON(w, http.StatusForbidden, map[string]interface{}{"error": forbiddenErr.Error()})
		return
	}

	var conflictErr *errs.ConflictError
	if errors.As(err, &conflictErr) {
		s.render.JSON(w, http.StatusBadRequest, map[string]interface{}{"error": conflictErr.Error()})
		return
	}

	s.log.Error("internal error", zap.Error(err))
	s.render.JSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
}
