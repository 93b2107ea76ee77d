package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Recoverer)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}
	router.Use(withGZip)

	router.Get("/api/version", h.getServerVersion)
	router.Get("/api/version/build", h.getBuildInfo)

	if h.uploadDir != "" {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploadDir))))
	}

	router.Group(func(r chi.Router) {
		r.Use(h.withSession)

		// pages open to everyone
		r.Get("/", h.index)
		r.Get("/post/{id}", h.showPost)
		r.Get("/post/user/{id}", h.listUserPosts)

		r.Get("/account/signup", h.showSignUp)
		r.Post("/account/signup", h.signUp)
		r.Get("/account/signin", h.showSignIn)
		r.Get("/account/password/forgot", h.showForgotPassword)
		r.Get("/account/password/reset/{token}", h.showResetPassword)

		// credential endpoints, throttled per client
		r.Group(func(r chi.Router) {
			r.Use(h.withRateLimit)
			r.Post("/account/signin", h.signIn)
			r.Post("/account/password/forgot", h.forgotPassword)
			r.Post("/account/password/reset/{token}", h.resetPassword)
		})

		// pages of a signed-in user
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/account/signout", h.signOut)
			r.Get("/account", h.showProfile)
			r.Post("/account", h.updateProfile)
			r.Post("/account/delete", h.deleteAccount)
			r.Get("/account/password/change", h.showChangePassword)
			r.Post("/account/password/change", h.changePassword)

			r.Get("/post/add", h.showAddPost)
			r.Post("/post/add", h.addPost)
			r.Get("/post/{id}/edit", h.showEditPost)
			r.Post("/post/{id}/edit", h.editPost)
			r.Get("/post/{id}/remove", h.showRemovePost)
			r.Post("/post/{id}/remove", h.removePost)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
