package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/models"
)

// View is the data bag handed to a page template.
type View map[string]any

// Renderer writes the page called name with status.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, view View) error
}

const (
	layoutsDir   = "layouts"
	layoutName   = "layout"
	templateExts = ".html"
)

// NewRenderer returns an HTML renderer for the templates in dir, or a JSON
// renderer when dir is empty.
func NewRenderer(dir string) (Renderer, error) {
	if dir == "" {
		return jsonRenderer{}, nil
	}
	return newTemplateRenderer(dir)
}

// jsonRenderer answers with {"view": name, "data": view}.
type jsonRenderer struct{}

func (jsonRenderer) Render(w http.ResponseWriter, status int, name string, view View) error {
	_, err := utils.WriteJSON(w, map[string]any{"view": name, "data": view}, status)
	return err
}

// templateRenderer keeps one parsed template set per page. Every set holds
// the shared files of the "layouts" directory plus the page itself; a page
// is executed through the "layout" template when one is defined.
type templateRenderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"avatar": func(ref string) string {
		if ref == "" {
			return models.DefaultAvatar
		}
		return ref
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"join": strings.Join,
}

func newTemplateRenderer(dir string) (*templateRenderer, error) {
	base := template.New("").Funcs(templateFuncs)

	layouts, err := filepath.Glob(filepath.Join(dir, layoutsDir, "*"+templateExts))
	if err != nil {
		return nil, fmt.Errorf("error listing layouts: %w", err)
	}
	if len(layouts) > 0 {
		if base, err = base.ParseFiles(layouts...); err != nil {
			return nil, fmt.Errorf("error parsing layouts: %w", err)
		}
	}

	r := &templateRenderer{pages: make(map[string]*template.Template)}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == layoutsDir && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != templateExts {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), templateExts)

		page, cloneErr := base.Clone()
		if cloneErr != nil {
			return cloneErr
		}
		if page, err = page.ParseFiles(path); err != nil {
			return fmt.Errorf("error parsing template %s: %w", name, err)
		}
		r.pages[name] = page
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(r.pages) == 0 {
		return nil, fmt.Errorf("no templates found in %s", dir)
	}
	return r, nil
}

func (r *templateRenderer) Render(w http.ResponseWriter, status int, name string, view View) error {
	page, ok := r.pages[name]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("unknown template %q", name)
	}

	entry := filepath.Base(name) + templateExts
	if page.Lookup(layoutName) != nil {
		entry = layoutName
	}

	// nothing is written until the template has executed completely
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, entry, view); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("error executing template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
