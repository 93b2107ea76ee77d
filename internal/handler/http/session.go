// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
)

// sessionCookieName is the cookie that carries the signed session token.
const sessionCookieName = "go_blog_session"

func setSessionCookie(w http.ResponseWriter, r *http.Request, token models.Token) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.SignedString,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if token.ExpiresAt != nil {
		cookie.Expires = token.ExpiresAt.Time
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// requestContext returns the context resolved by withSession, or an
// anonymous one for requests that did not pass through it.
func requestContext(r *http.Request) *models.RequestContext {
	if rc, ok := utils.GetRequestContext(r.Context()); ok {
		return rc
	}
	return &models.RequestContext{Identity: models.Anonymous()}
}

// redirectWithFlash stores flash in session (a new anonymous session when
// nil) and redirects to url. A failure to store the flash is logged and the
// redirect still happens.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, session *models.Session, url string, flash models.Flash) {
	_, token, err := h.services.AuthService.AddFlash(r.Context(), session, flash)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.redirectWithFlash").Msg("flash was not stored")
	} else {
		setSessionCookie(w, r, token)
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, url, kind, message string) {
	h.redirectWithFlash(w, r, requestContext(r).Session, url, models.Flash{Kind: kind, Message: message})
}

// view returns the data every page gets: the identity and the notices
// popped for this request.
func (h *Handler) view(r *http.Request) View {
	rc := requestContext(r)
	return View{
		"identity":          rc.Identity,
		"authenticated":     rc.Identity.Authenticated,
		models.FlashSuccess: rc.NoticesOf(models.FlashSuccess),
		models.FlashError:   rc.NoticesOf(models.FlashError),
		models.FlashFailure: rc.NoticesOf(models.FlashFailure),
	}
}

// render writes the page and logs a renderer failure.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, view View) {
	if err := h.renderer.Render(w, status, name, view); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.render").Str("view", name).Msg("failed to render view")
	}
}

// renderForm re-renders a form page with its field messages.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, name string, view View, verr validators.ValidationError, failure string) {
	view["errors"] = verr
	if failure != "" {
		failures, _ := view[models.FlashFailure].([]string)
		view[models.FlashFailure] = append(failures, failure)
	}
	h.render(w, r, http.StatusUnprocessableEntity, name, view)
}
