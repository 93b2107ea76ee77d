package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-blog/internal/validators"
	"github.com/MKhiriev/go-blog/models"
)

const (
	// maxAvatarSize is the largest accepted avatar upload.
	maxAvatarSize = 5 << 20
	maxFormMemory = maxAvatarSize + 1<<20
)

// pageParams reads the "page" and "limit" query parameters. Missing or
// malformed values become 0 and are normalised by the service.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return nil
}

// formValues copies the submitted fields into view so a re-rendered form
// keeps what the user typed. Password fields are never echoed.
func formValues(r *http.Request, view View) View {
	for key, values := range r.PostForm {
		if strings.Contains(key, "password") || len(values) == 0 {
			continue
		}
		if key == validators.FieldCategories {
			view[key] = values
			continue
		}
		view[key] = values[0]
	}
	return view
}

// optionalField returns a pointer to the submitted value, or nil when the
// field was not part of the form.
func optionalField(r *http.Request, name string) *string {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// avatarUpload reads the optional "avatar" file of a multipart form.
func avatarUpload(r *http.Request) (*models.Upload, error) {
	file, header, err := r.FormFile(validators.FieldAvatar)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		return nil, ErrAvatarTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	if len(data) > maxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &models.Upload{Filename: header.Filename, Data: data}, nil
}
