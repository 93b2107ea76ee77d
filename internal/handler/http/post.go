// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/service"
	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	posts, err := h.services.PostService.ListPublic(r.Context(), page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "index", listView(h.view(r), posts))
}

func (h *Handler) listUserPosts(w http.ResponseWriter, r *http.Request) {
	authorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.handleError(w, r, service.ErrInvalidIdentifier)
		return
	}
	page, limit := pageParams(r)

	posts, err := h.services.PostService.ListByAuthor(r.Context(), requestContext(r).Identity, authorID, page, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view := listView(h.view(r), posts)
	view["author_id"] = authorID
	h.render(w, r, http.StatusOK, "post/user", view)
}

func listView(view View, posts models.PostPage) View {
	view["posts"] = posts.Posts
	view["page"] = posts.Page
	return view
}

func (h *Handler) showPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.services.PostService.Get(r.Context(), requestContext(r).Identity, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view := h.view(r)
	view["post"] = post
	h.render(w, r, http.StatusOK, "post/show", view)
}

func (h *Handler) showAddPost(w http.ResponseWriter, r *http.Request) {
	view, err := h.postFormView(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "post/add", view)
}

func (h *Handler) addPost(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	post, err := h.services.PostService.Create(r.Context(), requestContext(r).Identity, models.PostInput{
		Title:       r.PostFormValue(validators.FieldTitle),
		Content:     r.PostFormValue(validators.FieldContent),
		Status:      r.PostFormValue(validators.FieldStatus),
		CategoryIDs: r.PostForm[validators.FieldCategories],
	})
	if verr, ok := validators.AsValidationError(err); ok {
		h.rerenderPostForm(w, r, "post/add", nil, verr)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Str("post_id", post.ID).Msg("post created")
	h.flash(w, r, "/post/"+post.ID, models.FlashSuccess, "post created")
}

func (h *Handler) showEditPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.services.PostService.GetForEdit(r.Context(), requestContext(r).Identity, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view, err := h.postFormView(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	view["post"] = post
	view[validators.FieldTitle] = post.Title
	view[validators.FieldContent] = post.Content
	view[validators.FieldStatus] = string(post.Status)
	view[validators.FieldCategories] = categoryIDStrings(post)
	h.render(w, r, http.StatusOK, "post/edit", view)
}

func (h *Handler) editPost(w http.ResponseWriter, r *http.Request) {
	identity := requestContext(r).Identity
	postID := chi.URLParam(r, "id")

	if err := parseForm(r); err != nil {
		h.handleError(w, r, err)
		return
	}

	post, err := h.services.PostService.Update(r.Context(), identity, postID, models.PostPatch{
		Title:       optionalField(r, validators.FieldTitle),
		Content:     optionalField(r, validators.FieldContent),
		Status:      optionalField(r, validators.FieldStatus),
		CategoryIDs: r.PostForm[validators.FieldCategories],
	})
	if verr, ok := validators.AsValidationError(err); ok {
		current, getErr := h.services.PostService.GetForEdit(r.Context(), identity, postID)
		if getErr != nil {
			h.handleError(w, r, getErr)
			return
		}
		h.rerenderPostForm(w, r, "post/edit", &current, verr)
		return
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Str("post_id", post.ID).Msg("post updated")
	h.flash(w, r, "/post/"+post.ID, models.FlashSuccess, "post updated")
}

func (h *Handler) showRemovePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.services.PostService.GetForEdit(r.Context(), requestContext(r).Identity, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	view := h.view(r)
	view["post"] = post
	h.render(w, r, http.StatusOK, "post/remove", view)
}

func (h *Handler) removePost(w http.ResponseWriter, r *http.Request) {
	rc := requestContext(r)
	postID := chi.URLParam(r, "id")

	if err := h.services.PostService.Delete(r.Context(), rc.Identity, postID); err != nil {
		h.handleError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Str("post_id", postID).Msg("post removed")
	h.flash(w, r, "/post/user/"+strconv.FormatInt(rc.Identity.UserID, 10), models.FlashSuccess, "post removed")
}

// postFormView adds the choices of the post form to the common view.
func (h *Handler) postFormView(r *http.Request) (View, error) {
	categories, err := h.services.CategoryService.List(r.Context())
	if err != nil {
		return nil, err
	}

	view := h.view(r)
	view["categories_all"] = categories
	view["statuses"] = models.PostStatuses
	return view, nil
}

func (h *Handler) rerenderPostForm(w http.ResponseWriter, r *http.Request, name string, post *models.Post, verr validators.ValidationError) {
	view, err := h.postFormView(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if post != nil {
		view["post"] = *post
	}
	h.renderForm(w, r, name, formValues(r, view), verr, "")
}

func categoryIDStrings(post models.Post) []string {
	ids := make([]string, 0, len(post.Categories))
	for _, id := range post.CategoryIDs() {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return ids
}
