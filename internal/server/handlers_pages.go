package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/notify"
	"github.com/jonathan/resume-parser-web/internal/server/middleware"
	"github.com/jonathan/resume-parser-web/internal/types"
	"github.com/jonathan/resume-parser-web/internal/upload"
)

// handleLanding renders the landing page for signed-in and anonymous visitors.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)
	s.render(w, http.StatusOK, "landing", pageData{Title: "Welcome", Identity: id})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.redirectToIdentityProvider(w, r, s.cfg.SignInURL)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.redirectToIdentityProvider(w, r, s.cfg.SignUpURL)
}

// redirectToIdentityProvider sends the visitor to the hosted sign-in or
// sign-up page. Without one configured the landing page explains why.
func (s *Server) redirectToIdentityProvider(w http.ResponseWriter, r *http.Request, target string) {
	if target != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	s.render(w, http.StatusServiceUnavailable, "landing", pageData{
		Title:        "Welcome",
		Notification: notify.Failure("Sign-in unavailable.", "No identity provider is configured for this site."),
	})
}

func (s *Server) handleParserPage(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)
	s.render(w, http.StatusOK, "parser", pageData{Title: "Upload Resume", Identity: id, Upload: &upload.State{}})
}

// handleParserSubmit runs one upload attempt from the upload form.
func (s *Server) handleParserSubmit(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)
	state, err := s.runUpload(w, r, id)

	status := http.StatusOK
	if err != nil {
		status = HTTPStatus(err)
	}
	s.render(w, status, "parser", pageData{
		Title:        "Upload Resume",
		Identity:     id,
		Notification: state.Notification,
		Upload:       state,
		ResultJSON:   prettyJSON(state.Raw),
	})
}

// runUpload reads the submitted file and runs the workflow for id, holding the
// per-user guard for the duration of the attempt.
func (s *Server) runUpload(w http.ResponseWriter, r *http.Request, id types.Identity) (*upload.State, error) {
	state := &upload.State{}

	file, closeFile, err := s.readUploadedFile(w, r)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		state.Err = upload.TooLargeMessage(tooLarge.Limit)
		log.Printf("[upload] user=%s upload over %d bytes refused", id.UserID, tooLarge.Limit)
		return state, fmt.Errorf("%w: limit %d bytes", upload.ErrTooLarge, tooLarge.Limit)
	}
	if err != nil {
		state.Err = upload.MsgNoFile
		log.Printf("[upload] user=%s unreadable upload: %v", id.UserID, err)
		return state, &upload.ValidationError{Field: "file", Message: upload.MsgNoFile}
	}
	defer closeFile()

	if file != nil {
		if err := upload.SelectFile(state, file); err != nil {
			return state, err
		}
	}

	release, err := s.guard.Acquire(id.UserID)
	if err != nil {
		state.Err = upload.MsgInFlight
		return state, err
	}
	defer release()

	_, err = s.workflow.Submit(r.Context(), state, id.UserID)
	return state, err
}

// readUploadedFile returns the "file" part of a multipart form with the type
// its client declared. A form without a file yields a nil file.
func (s *Server) readUploadedFile(w http.ResponseWriter, r *http.Request) (*upload.File, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	return fileFromPart(f, header), func() {
		_ = f.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}, nil
}

func fileFromPart(f io.Reader, header *multipart.FileHeader) *upload.File {
	return &upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     f,
	}
}

// handleDashboard fetches the resumes in scope into a new view and redirects
// to it. Fetch failures are kept on the view and shown there.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)

	v := s.views.Create(id.UserID, s.authorizer.IsAdmin(id))
	_ = v.Load(r.Context(), s.parser)

	http.Redirect(w, r, "/dashboard/"+v.ID, http.StatusSeeOther)
}

// handleDashboardView applies filter and selection changes to a stored view
// and renders it. It never fetches.
func (s *Server) handleDashboardView(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)

	v, err := s.views.Get(r.PathValue("view"), id.UserID)
	if err != nil {
		http.Error(w, "Dashboard view not found. Reload the dashboard to fetch resumes again.", HTTPStatus(err))
		return
	}

	q := r.URL.Query()
	status := http.StatusOK

	if q.Has("close") {
		v.CloseDetail()
	}
	if q.Has("facet") {
		v.ApplyFilter(dashboard.ParseFacet(q.Get("facet")), q.Get("value"))
	}
	if sel := q.Get("selected"); sel != "" {
		i, convErr := strconv.Atoi(sel)
		if convErr != nil {
			i = -1
		}
		if err := v.Select(i); err != nil {
			v.CloseDetail()
			status = HTTPStatus(err)
		}
	}

	s.render(w, status, "dashboard", pageData{
		Title:    "Dashboard",
		Identity: id,
		Snapshot: v.Snapshot(),
	})
}
