package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/service"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) showSignUp(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account/signup", h.view(r))
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	user, err := h.services.AccountService.SignUp(r.Context(), models.SignUpInput{
		Username:  r.PostFormValue(validators.FieldUsername),
		Email:     r.PostFormValue(validators.FieldEmail),
		Password:  r.PostFormValue(validators.FieldPassword),
		Password2: r.PostFormValue(validators.FieldPassword2),
	})
	if verr, ok := validators.AsValidationError(err); ok {
		log.Debug().Err(err).Msg("sign up form rejected")
		h.renderForm(w, r, "account/signup", formValues(r, h.view(r)), verr, noticeSignUpFailed)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	log.Info().Int64("user_id", user.UserID).Msg("user registered")
	h.flash(w, r, "/account/signin", models.FlashSuccess, "You're now registered. You can log in.")
}

func (h *Handler) showSignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account/signin", h.view(r))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	user, err := h.services.AuthService.Authenticate(ctx, r.PostFormValue(validators.FieldEmail), r.PostFormValue(validators.FieldPassword))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.flash(w, r, "/account/signin", models.FlashError, noticeBadCredentials)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	session, token, err := h.services.AuthService.SignIn(ctx, requestContext(r).Session, user)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	setSessionCookie(w, r, token)
	logger.FromRequest(r).Info().Int64("user_id", user.UserID).Msg("user signed in")

	h.redirectWithFlash(w, r, &session, "/", models.Flash{Kind: models.FlashSuccess, Message: "login successful"})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.services.AuthService.SignOut(r.Context(), requestContext(r).Session); err != nil {
		h.handleError(w, r, err)
		return
	}

	h.redirectWithFlash(w, r, nil, "/", models.Flash{Kind: models.FlashSuccess, Message: "you are logged out"})
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.AccountService.Profile(r.Context(), requestContext(r).Identity)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "account/profile", profileView(h.view(r), user))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := requestContext(r).Identity

	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	avatar, err := avatarUpload(r)
	if errors.Is(err, ErrAvatarTooLarge) {
		h.renderProfileForm(w, r, identity, validators.ValidationError{validators.FieldAvatar: {"avatar must be smaller than 5 MB"}})
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	_, err = h.services.AccountService.UpdateProfile(ctx, identity, models.ProfileInput{
		Username: r.PostFormValue(validators.FieldUsername),
		Email:    r.PostFormValue(validators.FieldEmail),
		Avatar:   avatar,
	})
	if verr, ok := validators.AsValidationError(err); ok {
		h.renderProfileForm(w, r, identity, verr)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.flash(w, r, "/account", models.FlashSuccess, "your profile has been updated")
}

func (h *Handler) renderProfileForm(w http.ResponseWriter, r *http.Request, identity models.Identity, verr validators.ValidationError) {
	user, err := h.services.AccountService.Profile(r.Context(), identity)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.renderForm(w, r, "account/profile", formValues(r, profileView(h.view(r), user)), verr, "")
}

func profileView(view View, user models.User) View {
	view["username"] = user.Username
	view["email"] = user.Email
	view["avatar"] = user.AvatarOrDefault()
	view["date_joined"] = user.DateJoined
	return view
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.services.AccountService.DeleteAccount(r.Context(), requestContext(r).Identity); err != nil {
		h.handleError(w, r, err)
		return
	}

	// the cascade dropped every session of the user, so the notice goes
	// to a new anonymous one
	h.redirectWithFlash(w, r, nil, "/", models.Flash{Kind: models.FlashSuccess, Message: "your account has been removed"})
}

func (h *Handler) showChangePassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account/password/change", h.view(r))
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	err := h.services.AccountService.ChangePassword(r.Context(), requestContext(r).Identity, models.ChangePasswordInput{
		OldPassword: r.PostFormValue(validators.FieldOldPassword),
		Password:    r.PostFormValue(validators.FieldPassword),
		Password2:   r.PostFormValue(validators.FieldPassword2),
	})
	if verr, ok := validators.AsValidationError(err); ok {
		h.renderForm(w, r, "account/password/change", h.view(r), verr, "")
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.flash(w, r, "/account", models.FlashSuccess, "password changed")
}

func (h *Handler) showForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "account/password/forgot", h.view(r))
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	err := h.services.AccountService.ForgotPassword(r.Context(), r.PostFormValue(validators.FieldEmail), r.Host)
	if verr, ok := validators.AsValidationError(err); ok {
		h.renderForm(w, r, "account/password/forgot", formValues(r, h.view(r)), verr, "")
		return
	}
	if errors.Is(err, service.ErrMailNotSent) {
		logger.FromRequest(r).Err(err).Msg("reset email not sent")
		view := formValues(r, h.view(r))
		view[models.FlashFailure] = []string{noticeMailNotSent}
		h.render(w, r, http.StatusBadGateway, "account/password/forgot", view)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "account/password/email_sent", h.view(r))
}

func (h *Handler) showResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	err := h.services.AccountService.CheckResetToken(r.Context(), token)
	if errors.Is(err, service.ErrTokenInvalid) {
		h.flash(w, r, "/account/password/forgot", models.FlashError, noticeTokenInvalid)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view := h.view(r)
	view["token"] = token
	h.render(w, r, http.StatusOK, "account/password/reset", view)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	err := h.services.AccountService.ResetPassword(r.Context(), token, models.ResetPasswordInput{
		Password:  r.PostFormValue(validators.FieldPassword),
		Password2: r.PostFormValue(validators.FieldPassword2),
	})
	if errors.Is(err, service.ErrTokenInvalid) {
		h.flash(w, r, "/account/password/forgot", models.FlashError, noticeTokenInvalid)
		return
	}
	if verr, ok := validators.AsValidationError(err); ok {
		view := h.view(r)
		view["token"] = token
		h.renderForm(w, r, "account/password/reset", view, verr, "")
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.flash(w, r, "/account/signin", models.FlashSuccess, "Password reset complete. You may login now.")
}
