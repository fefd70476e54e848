package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/notify"
	"github.com/jonathan/resume-parser-web/internal/types"
	"github.com/jonathan/resume-parser-web/internal/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"orNA": types.OrNA,
}

// pages holds one template set per page, each joined with the shared layout.
type pages map[string]*template.Template

func loadPages() (pages, error) {
	p := make(pages)
	for _, name := range []string{"landing", "parser", "dashboard"} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		p[name] = t
	}
	return p, nil
}

// pageData is the data every page template receives.
type pageData struct {
	Title        string
	Identity     types.Identity
	Notification *notify.Notification

	Upload     *upload.State
	ResultJSON string

	Snapshot dashboard.Snapshot
}

// render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("[render] %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[render] %s: write failed: %v", name, err)
	}
}

// prettyJSON indents raw for display, falling back to the raw text.
func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
