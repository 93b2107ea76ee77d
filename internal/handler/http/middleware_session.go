package http

import (
	"net/http"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/rs/zerolog"
)

// withSession resolves the session cookie into a [models.RequestContext]
// and stores it in the request context. Invalid or stale cookies leave the
// visitor anonymous; the request only fails when it was already cancelled.
//
// For signed-in users the request logger gets a "user_id" field.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		ctx := r.Context()

		var value string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			value = cookie.Value
		}

		rc, err := h.services.AuthService.Resolve(ctx, value)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withSession").Msg("session was not resolved")
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		if value != "" && rc.Session == nil {
			clearSessionCookie(w)
		}

		if rc.Identity.Authenticated {
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Int64("user_id", rc.Identity.UserID)
			})
		}

		next.ServeHTTP(w, r.WithContext(utils.WithRequestContext(ctx, rc)))
	})
}

// requireAuth sends anonymous visitors to the home page.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestContext(r).Identity.Authenticated {
			logger.FromRequest(r).Debug().Str("func", "*Handler.requireAuth").Str("uri", r.RequestURI).Msg("anonymous access to protected page")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
