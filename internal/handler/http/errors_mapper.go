package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/service"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidIdentifier:     http.StatusBadRequest,
	service.ErrNotFound:              http.StatusNotFound,
	service.ErrAccessDenied:          http.StatusForbidden,
	service.ErrDuplicateKey:          http.StatusConflict,
	service.ErrInvalidCredentials:    http.StatusUnauthorized,
	service.ErrUnauthenticated:       http.StatusUnauthorized,
	service.ErrTokenInvalid:          http.StatusBadRequest,
	service.ErrMailNotSent:           http.StatusBadGateway,
	service.ErrVersionIsNotSpecified: http.StatusBadRequest,

	ErrInvalidForm:    http.StatusBadRequest,
	ErrAvatarTooLarge: http.StatusRequestEntityTooLarge,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// handleError answers a failed page request. Lookup and ownership failures
// redirect home with a notice, each with its own log line; everything else
// renders the error page.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	switch {
	case errors.Is(err, service.ErrInvalidIdentifier):
		log.Info().Err(err).Str("uri", r.RequestURI).Msg("invalid identifier")
		h.flash(w, r, "/", models.FlashError, noticeInvalidID)
	case errors.Is(err, service.ErrNotFound):
		log.Info().Err(err).Str("uri", r.RequestURI).Msg("not found")
		h.flash(w, r, "/", models.FlashError, noticeNotFound)
	case errors.Is(err, service.ErrAccessDenied):
		log.Warn().Err(err).Str("uri", r.RequestURI).Msg("access denied")
		h.flash(w, r, "/", models.FlashError, noticeAccessDenied)
	case errors.Is(err, service.ErrUnauthenticated):
		log.Debug().Str("uri", r.RequestURI).Msg("sign in required")
		http.Redirect(w, r, "/account/signin", http.StatusFound)
	default:
		status := statusFromError(err)
		log.Err(err).Int("status", status).Str("uri", r.RequestURI).Msg("request failed")
		h.renderError(w, r, status)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int) {
	view := h.view(r)
	view["status"] = status
	view["message"] = http.StatusText(status)
	h.render(w, r, status, "error", view)
}
