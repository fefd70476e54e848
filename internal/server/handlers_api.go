package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/notify"
	"github.com/jonathan/resume-parser-web/internal/server/middleware"
	"github.com/jonathan/resume-parser-web/internal/types"
)

// UploadResponse is the body of POST /api/upload.
type UploadResponse struct {
	ExtractedData json.RawMessage      `json:"extracted_data,omitempty"`
	Error         string               `json:"error,omitempty"`
	Notification  *notify.Notification `json:"notification,omitempty"`
}

// ResumeListResponse is the body of GET /api/resumes.
type ResumeListResponse struct {
	Resumes []types.ResumeRecord `json:"resumes"`
	Total   int                  `json:"total"`
	Facet   dashboard.Facet      `json:"facet,omitempty"`
	Value   string               `json:"value,omitempty"`
	Admin   bool                 `json:"admin"`
	Facets  FacetsResponse       `json:"facets"`
	Error   string               `json:"error,omitempty"`
}

// FacetsResponse lists the values offered for each filterable field.
type FacetsResponse struct {
	CandidateNames []string `json:"candidate_names"`
	Emails         []string `json:"emails"`
}

// handleAPIUpload runs one upload attempt and returns the extracted data.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(errUnauthenticated), "Unauthorized")
		return
	}

	state, err := s.runUpload(w, r, id)
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), UploadResponse{
			Error:        state.Err,
			Notification: state.Notification,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, UploadResponse{
		ExtractedData: state.Raw,
		Notification:  state.Notification,
	})
}

// handleAPIResumes fetches the resumes in scope and applies the optional
// facet and value filter from the query string.
func (s *Server) handleAPIResumes(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(errUnauthenticated), "Unauthorized")
		return
	}

	v := dashboard.NewView(requestID(r), id.UserID, s.authorizer.IsAdmin(id))
	if err := v.Load(r.Context(), s.parser); err != nil {
		snap := v.Snapshot()
		s.jsonResponse(w, HTTPStatus(err), ResumeListResponse{
			Resumes: []types.ResumeRecord{},
			Admin:   snap.Admin,
			Facets:  FacetsResponse{CandidateNames: []string{}, Emails: []string{}},
			Error:   snap.Err,
		})
		return
	}

	q := r.URL.Query()
	v.SetFacet(dashboard.ParseFacet(q.Get("facet")))
	v.SetFacetValue(q.Get("value"))

	snap := v.Snapshot()
	s.jsonResponse(w, http.StatusOK, ResumeListResponse{
		Resumes: snap.Displayed,
		Total:   snap.FullCount,
		Facet:   snap.Facet,
		Value:   snap.Value,
		Admin:   snap.Admin,
		Facets: FacetsResponse{
			CandidateNames: snap.Facets.CandidateNames,
			Emails:         snap.Facets.Emails,
		},
	})
}
